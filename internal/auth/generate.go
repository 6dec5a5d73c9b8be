// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// passwordAlphabet omits visually ambiguous characters (I, l, O, 0, 1).
const passwordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

// GeneratedPasswordLength is the length of one-time passwords created for
// new editor accounts.
const GeneratedPasswordLength = 12

// GeneratePassword returns a random URL-safe one-time password of n
// characters drawn from a crypto/rand source.
func GeneratePassword(n int) (string, error) {
	if n <= 0 {
		n = GeneratedPasswordLength
	}
	out := make([]byte, n)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generating password: %w", err)
		}
		out[i] = passwordAlphabet[idx.Int64()]
	}
	return string(out), nil
}
