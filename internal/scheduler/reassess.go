package scheduler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/seogyeonga/auction-radar/internal/domain"
	"github.com/seogyeonga/auction-radar/internal/logger"
	"github.com/seogyeonga/auction-radar/internal/metrics"
	"github.com/seogyeonga/auction-radar/internal/risk"
	"github.com/seogyeonga/auction-radar/internal/storage"
)

const reassessPageSize = 200

// ListingStore is the part of the listing store the reassessment job needs.
type ListingStore interface {
	List(ctx context.Context, f storage.ListFilter) ([]domain.Listing, int, error)
	UpdateRisk(ctx context.Context, id string, a domain.RiskAssessment) error
}

// Invalidator drops cached views of updated listings.
type Invalidator interface {
	Invalidate(ctx context.Context, ids ...string) error
}

// ReassessJob re-classifies stored listings and persists the result where
// the stored tag is missing or disagrees with the current rules.
type ReassessJob struct {
	store ListingStore
	cache Invalidator
	log   *zap.Logger
}

func NewReassessJob(store ListingStore, cache Invalidator, log *zap.Logger) *ReassessJob {
	return &ReassessJob{store: store, cache: cache, log: logger.Component(log, "reassess")}
}

func (j *ReassessJob) Name() string { return "reassess" }

func (j *ReassessJob) Run(ctx context.Context) error {
	checked, updated, err := j.run(ctx)
	if err != nil {
		metrics.ReassessRuns.WithLabelValues("error").Inc()
		return err
	}
	metrics.ReassessRuns.WithLabelValues("ok").Inc()
	j.log.Info("reassessment finished", zap.Int("checked", checked), zap.Int("updated", updated))
	return nil
}

func (j *ReassessJob) run(ctx context.Context) (checked, updated int, err error) {
	// Offset paging stays stable because updates do not change the sort key.
	for offset := 0; ; offset += reassessPageSize {
		if err := ctx.Err(); err != nil {
			return checked, updated, err
		}

		page, total, err := j.store.List(ctx, storage.ListFilter{Limit: reassessPageSize, Offset: offset})
		if err != nil {
			return checked, updated, fmt.Errorf("list listings: %w", err)
		}

		var changed []string
		for _, l := range page {
			checked++
			fresh, stale := risk.Stale(l)
			if !stale {
				continue
			}
			if err := j.store.UpdateRisk(ctx, l.ID, fresh); err != nil {
				return checked, updated, fmt.Errorf("update risk of %s: %w", l.ID, err)
			}
			j.log.Debug("classification updated",
				zap.String("case_no", l.CaseNo),
				zap.String("from", string(l.RiskLevel)),
				zap.String("to", string(fresh.Level)),
			)
			changed = append(changed, l.ID)
			updated++
			metrics.ReassessUpdated.Inc()
		}

		if j.cache != nil && len(changed) > 0 {
			if err := j.cache.Invalidate(ctx, changed...); err != nil {
				j.log.Warn("cache invalidation failed", zap.Error(err))
			}
		}

		if len(page) == 0 || offset+len(page) >= total {
			return checked, updated, nil
		}
	}
}
