// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging processes uploaded post images using pure Go libraries.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder
)

const (
	// MaxDimension caps the stored original; larger uploads are scaled down.
	MaxDimension = 1920
	// ThumbDimension is the bounding box for the feed thumbnail.
	ThumbDimension = 480
	// originalQuality and thumbQuality are the JPEG encoding qualities.
	originalQuality = 90
	thumbQuality    = 80
)

// ProcessResult contains the result of processing an uploaded image.
type ProcessResult struct {
	// ImagePath and ThumbPath are web paths under /uploads/.
	ImagePath string
	ThumbPath string
	Width     int
	Height    int
	Size      int64
}

// Processor handles image processing operations.
type Processor struct {
	uploadsDir string
}

// NewProcessor creates a new image processor writing into uploadsDir.
func NewProcessor(uploadsDir string) *Processor {
	return &Processor{
		uploadsDir: uploadsDir,
	}
}

// Process reads an uploaded image, fixes EXIF orientation, strips metadata
// by re-encoding, scales oversized images down and writes the original plus
// a feed thumbnail. File names are random UUIDs so uploads never collide.
func (p *Processor) Process(reader io.Reader, filename string) (*ProcessResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	format := detectFormat(data)
	if format == "" {
		return nil, fmt.Errorf("unsupported image format")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	// Read EXIF orientation and auto-rotate
	orientation := readExifOrientation(bytes.NewReader(data))
	img = applyOrientation(img, orientation)

	bounds := img.Bounds()
	if bounds.Dx() > MaxDimension || bounds.Dy() > MaxDimension {
		img = imaging.Fit(img, MaxDimension, MaxDimension, imaging.Lanczos)
		bounds = img.Bounds()
	}

	// Encode without EXIF (pure Go encoders don't preserve EXIF metadata)
	original, err := encodeImage(img, format, originalQuality)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	thumb := imaging.Fit(img, ThumbDimension, ThumbDimension, imaging.Lanczos)
	// Thumbnails are always JPEG regardless of source format.
	thumbData, err := encodeImage(thumb, "jpeg", thumbQuality)
	if err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	id := uuid.New().String()
	originalName := id + extForFormat(format)
	thumbName := id + "_thumb.jpg"

	if err := p.saveImageFile(originalName, original); err != nil {
		return nil, fmt.Errorf("failed to save original image: %w", err)
	}
	if err := p.saveImageFile(thumbName, thumbData); err != nil {
		// Keep the upload consistent: no original without its thumbnail.
		_ = os.Remove(filepath.Join(p.uploadsDir, originalName))
		return nil, fmt.Errorf("failed to save thumbnail: %w", err)
	}

	return &ProcessResult{
		ImagePath: "/uploads/" + originalName,
		ThumbPath: "/uploads/" + thumbName,
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		Size:      int64(len(original)),
	}, nil
}

// Delete removes the stored files for a post image. Missing files are
// not an error.
func (p *Processor) Delete(webPaths ...string) error {
	for _, wp := range webPaths {
		if wp == "" {
			continue
		}
		name := filepath.Base(wp)
		if name == "." || name == ".." {
			continue
		}
		if err := os.Remove(filepath.Join(p.uploadsDir, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete %s: %w", name, err)
		}
	}
	return nil
}

// DetectMimeType detects the MIME type of image data.
func DetectMimeType(data []byte) string {
	contentType := http.DetectContentType(data)
	// http.DetectContentType returns types like "image/jpeg; charset=utf-8"
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return contentType
}

// readExifOrientation reads the EXIF orientation tag from image data.
// Returns 1 (normal) if orientation cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}

	return orientation
}

// applyOrientation applies EXIF orientation transformation to an image.
// Orientation values:
// 1: Normal
// 2: Flip horizontal
// 3: Rotate 180°
// 4: Flip vertical
// 5: Rotate 90° CW + flip horizontal
// 6: Rotate 90° CW
// 7: Rotate 90° CCW + flip horizontal
// 8: Rotate 90° CCW
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// encodeImage encodes an image to bytes with the specified format and quality.
func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case "jpeg", "jpg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	case "gif":
		if err := gif.Encode(&buf, img, nil); err != nil {
			return nil, err
		}
	case "webp":
		// WebP decoding is supported but encoding is not in pure Go
		// Convert to JPEG for output
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// detectFormat detects the image format from raw bytes.
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// Explicitly reject TIFF (CVE-2023-36308 in disintegration/imaging)
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}

// extForFormat returns the stored file extension for a detected format.
func extForFormat(format string) string {
	switch format {
	case "png":
		return ".png"
	case "gif":
		return ".gif"
	default:
		// WebP sources are re-encoded to JPEG.
		return ".jpg"
	}
}

// saveImageFile creates the uploads directory if needed and writes image data.
func (p *Processor) saveImageFile(filename string, data []byte) error {
	// Sanitize filename to prevent path traversal
	safeFilename := filepath.Base(filename)
	if safeFilename == "." || safeFilename == ".." || safeFilename == "" {
		return fmt.Errorf("invalid filename")
	}

	if err := os.MkdirAll(p.uploadsDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	filePath := filepath.Join(p.uploadsDir, safeFilename)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}
