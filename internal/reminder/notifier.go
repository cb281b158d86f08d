// Package reminder sends expiry reminders for memberships ending a fixed
// number of days ahead.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sportclub/internal/email"
	"sportclub/internal/logger"
	"sportclub/internal/membership"
	"sportclub/internal/metrics"
)

const DefaultHorizonDays = 3

var ErrInvalidHorizon = errors.New("horizon must be at least one day")

type Store interface {
	ListReminderCandidates(ctx context.Context, asOf, endDate time.Time) ([]membership.ReminderCandidate, error)
	ClaimReminder(ctx context.Context, id int, day time.Time) (bool, error)
	ReleaseReminder(ctx context.Context, id int, day time.Time, previous *time.Time) error
}

// Messenger is the outbound mail collaborator. A nil error means the
// message was accepted for delivery.
type Messenger interface {
	SendTemplate(ctx context.Context, to, name, template string, data map[string]interface{}) error
}

type Notifier struct {
	store     Store
	messenger Messenger
}

func NewNotifier(store Store, messenger Messenger) *Notifier {
	return &Notifier{store: store, messenger: messenger}
}

// NotifyExpiring reminds owners of ACTIVE memberships whose end date is
// exactly horizonDays after the day of asOf. Each membership is reminded at
// most once per day; a failed dispatch leaves it eligible for a rerun on the
// same day. One failure never stops the batch.
func (n *Notifier) NotifyExpiring(ctx context.Context, asOf time.Time, horizonDays int) (*Report, error) {
	if horizonDays <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidHorizon, horizonDays)
	}

	day := membership.DateOf(asOf)
	target := day.AddDate(0, 0, horizonDays)

	candidates, err := n.store.ListReminderCandidates(ctx, day, target)
	if err != nil {
		return nil, fmt.Errorf("list reminder candidates: %w", err)
	}

	report := &Report{
		AsOf:        day,
		HorizonDays: horizonDays,
		Selected:    len(candidates),
		Results:     make([]DispatchResult, 0, len(candidates)),
	}

	for i := range candidates {
		if err := ctx.Err(); err != nil {
			logger.Warn("Reminder run interrupted", "remaining", len(candidates)-i, "error", err)
			return report, err
		}
		res := n.dispatch(ctx, &candidates[i], day)
		metrics.RecordReminder(string(res.Status))
		report.add(res)
	}

	logger.Info("Expiry reminders processed",
		"as_of", membership.FormatDate(day),
		"horizon_days", horizonDays,
		"selected", report.Selected,
		"sent", report.Sent,
		"failed", report.Failed,
		"skipped", report.Skipped,
	)
	return report, nil
}

func (n *Notifier) dispatch(ctx context.Context, c *membership.ReminderCandidate, day time.Time) DispatchResult {
	res := DispatchResult{MembershipID: c.ID, Recipient: c.MemberEmail}

	if st := membership.Evaluate(&c.Membership, day); st != membership.StatusActive {
		return res.skip("membership is " + string(st))
	}
	if c.MemberEmail == "" {
		return res.skip("member has no email")
	}

	claimed, err := n.store.ClaimReminder(ctx, c.ID, day)
	if err != nil {
		logger.WithError(err).Error("Failed to stamp reminder", "membership_id", c.ID)
		return res.fail(fmt.Errorf("claim: %w", err))
	}
	if !claimed {
		return res.skip("already reminded today")
	}

	if err := n.messenger.SendTemplate(ctx, c.MemberEmail, c.MemberName, email.TemplateExpiryReminder, reminderData(c, day)); err != nil {
		logger.WithError(err).Warn("Reminder dispatch failed", "membership_id", c.ID, "to", c.MemberEmail)
		if relErr := n.store.ReleaseReminder(ctx, c.ID, day, c.LastReminderSentDate); relErr != nil {
			logger.WithError(relErr).Error("Failed to release reminder stamp", "membership_id", c.ID)
		}
		return res.fail(err)
	}

	logger.Debug("Reminder sent", "membership_id", c.ID, "to", c.MemberEmail)
	res.Status = StatusSent
	return res
}

func reminderData(c *membership.ReminderCandidate, day time.Time) map[string]interface{} {
	data := map[string]interface{}{
		"member_name": c.MemberName,
		"type_name":   c.TypeName,
		"expiry_date": membership.FormatDate(c.EndDate),
		"days_left":   membership.DaysLeft(&c.Membership, day),
	}
	if left := membership.VisitsRemaining(&c.Membership); left != nil {
		data["visits_remaining"] = *left
	}
	return data
}
