// Package janitor reclaims handshake records stuck before Completed
// past their expires_at (§3, §9): a background sweep rather than an
// on-read check, so GET /keys/exchange/pending and similar list
// endpoints never have to filter expired rows themselves.
package janitor

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/relaycore/securemsg/internal/domain"
	"github.com/relaycore/securemsg/internal/ledger"
)

type Janitor struct {
	Store    ledger.Store
	Interval time.Duration
}

func New(store ledger.Store, interval time.Duration) *Janitor {
	return &Janitor{Store: store, Interval: interval}
}

// Run sweeps on a ticker until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	recs, err := j.Store.ListExpirable(ctx)
	if err != nil {
		logrus.WithError(err).Error("janitor: list expirable failed")
		return
	}
	for _, rec := range recs {
		if rec.Terminal() || rec.Status == domain.StatusCompleted {
			continue
		}
		rec.Status = domain.StatusExpired
		if err := j.Store.Update(ctx, rec); err != nil && err != ledger.ErrVersionConflict {
			logrus.WithError(err).WithField("session_id", rec.SessionID).Error("janitor: expire failed")
		}
	}
}
