// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package maintenance runs scheduled background jobs: nightly event log
// pruning and GeoIP database refresh.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bhasha-cms/bhasha/internal/geoip"
	"github.com/bhasha-cms/bhasha/internal/store"
)

// Scheduler owns the cron instance and its jobs.
type Scheduler struct {
	cron          *cron.Cron
	queries       *store.Queries
	geo           *geoip.Lookup
	log           *slog.Logger
	retentionDays int
}

// New creates a scheduler. retentionDays bounds the events table; the
// logins and activities history is never pruned.
func New(queries *store.Queries, geo *geoip.Lookup, log *slog.Logger, retentionDays int) *Scheduler {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	return &Scheduler{
		cron:          cron.New(),
		queries:       queries,
		geo:           geo,
		log:           log,
		retentionDays: retentionDays,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() {
	// Daily at 00:30: prune old events
	_, _ = s.cron.AddFunc("30 0 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := s.PruneEvents(ctx); err != nil {
			s.log.Error("event pruning failed", "error", err)
		}
	})

	// Daily at 03:00: pick up a refreshed GeoIP database if one was installed
	_, _ = s.cron.AddFunc("0 3 * * *", func() {
		if err := s.geo.Reload(); err != nil {
			s.log.Warn("geoip reload failed", "error", err)
		}
	})

	s.cron.Start()
	s.log.Debug("maintenance scheduler started")
}

// Stop halts the cron loop and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// PruneEvents deletes events older than the retention window.
func (s *Scheduler) PruneEvents(ctx context.Context) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.retentionDays)
	n, err := s.queries.DeleteEventsBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.Info("pruned old events", "deleted", n, "cutoff", cutoff)
	}
	return nil
}
