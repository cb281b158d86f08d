package membership

import (
	"context"
	"time"
)

type Repository interface {
	CreateType(ctx context.Context, t *MembershipType) (*MembershipType, error)
	GetType(ctx context.Context, id int) (*MembershipType, error)
	ListTypes(ctx context.Context, onlyActive bool) ([]MembershipType, error)
	ArchiveType(ctx context.Context, id int) error

	Create(ctx context.Context, m *Membership) (*Membership, error)
	GetByID(ctx context.Context, id int) (*Membership, error)
	List(ctx context.Context, f ListFilter) ([]Membership, error)
	Transitions(ctx context.Context, membershipID int) ([]Transition, error)
	RecordVisit(ctx context.Context, id int, asOf time.Time) (*Membership, error)
	Cancel(ctx context.Context, id int, reason string) (*Membership, error)

	// ListExpiryCandidates returns ACTIVE memberships whose end date is
	// before the day of asOf.
	ListExpiryCandidates(ctx context.Context, asOf time.Time) ([]Membership, error)
	// Expire moves one membership ACTIVE -> EXPIRED. It reports false when
	// the record was no longer eligible.
	Expire(ctx context.Context, id int, asOf time.Time, reason string) (bool, error)

	// ListReminderCandidates returns ACTIVE memberships ending exactly on
	// endDate that have not been reminded on the day of asOf.
	ListReminderCandidates(ctx context.Context, asOf, endDate time.Time) ([]ReminderCandidate, error)
	// ClaimReminder stamps last_reminder_sent_date with day unless it already
	// holds that day. It reports whether this caller won the stamp.
	ClaimReminder(ctx context.Context, id int, day time.Time) (bool, error)
	// ReleaseReminder restores the previous stamp after a failed dispatch.
	ReleaseReminder(ctx context.Context, id int, day time.Time, previous *time.Time) error
}
