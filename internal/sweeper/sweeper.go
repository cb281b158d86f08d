// Package sweeper moves date-expired memberships from ACTIVE to EXPIRED.
package sweeper

import (
	"context"
	"fmt"
	"time"

	"sportclub/internal/logger"
	"sportclub/internal/membership"
	"sportclub/internal/metrics"
)

const expireReason = "validity period ended"

type Store interface {
	ListExpiryCandidates(ctx context.Context, asOf time.Time) ([]membership.Membership, error)
	Expire(ctx context.Context, id int, asOf time.Time, reason string) (bool, error)
}

type Failure struct {
	MembershipID int    `json:"membership_id"`
	Error        string `json:"error"`
}

type Report struct {
	AsOf        time.Time `json:"as_of"`
	Selected    int       `json:"selected"`
	Deactivated int       `json:"deactivated"`
	Skipped     int       `json:"skipped"`
	Failures    []Failure `json:"failures,omitempty"`
}

type Sweeper struct {
	store Store
}

func New(store Store) *Sweeper {
	return &Sweeper{store: store}
}

// Sweep expires every ACTIVE membership whose end date is before the day of
// asOf. The selection is date based, so a missed run is caught by the next
// one, and a second run on the same day finds nothing left to do.
func (s *Sweeper) Sweep(ctx context.Context, asOf time.Time) (*Report, error) {
	day := membership.DateOf(asOf)

	candidates, err := s.store.ListExpiryCandidates(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("list expiry candidates: %w", err)
	}

	report := &Report{AsOf: day, Selected: len(candidates)}

	for i := range candidates {
		m := &candidates[i]
		if err := ctx.Err(); err != nil {
			logger.Warn("Sweep interrupted", "remaining", len(candidates)-i, "error", err)
			return report, err
		}

		if membership.Evaluate(m, day) != membership.StatusExpired {
			report.Skipped++
			continue
		}

		ok, err := s.store.Expire(ctx, m.ID, day, expireReason)
		if err != nil {
			logger.WithError(err).Error("Failed to expire membership", "membership_id", m.ID)
			report.Failures = append(report.Failures, Failure{MembershipID: m.ID, Error: err.Error()})
			continue
		}
		if !ok {
			report.Skipped++
			continue
		}

		report.Deactivated++
		metrics.RecordTransition(string(membership.StatusExpired), "sweep")
	}

	logger.Info("Expired memberships swept",
		"as_of", membership.FormatDate(day),
		"selected", report.Selected,
		"deactivated", report.Deactivated,
		"skipped", report.Skipped,
		"failures", len(report.Failures),
	)
	return report, nil
}
