package membership

import "time"

const dateLayout = "2006-01-02"

// DateOf returns the calendar day of t, taken in t's own location, as
// midnight UTC. All lifecycle comparisons are done on these values.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD day.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.UTC)
}

func FormatDate(t time.Time) string {
	return DateOf(t).Format(dateLayout)
}

// EndDateFor is start + durationDays. It is computed once, at purchase.
func EndDateFor(start time.Time, durationDays int) time.Time {
	return DateOf(start).AddDate(0, 0, durationDays)
}

// Evaluate computes the status of m as of the given instant. Visit
// exhaustion takes precedence over date expiry. A record already in a
// terminal status is returned unchanged.
func Evaluate(m *Membership, asOf time.Time) Status {
	if m.Status.Terminal() {
		return m.Status
	}
	if m.VisitsLimit != nil && m.VisitsUsed >= *m.VisitsLimit {
		return StatusExhausted
	}
	if DateOf(asOf).After(DateOf(m.EndDate)) {
		return StatusExpired
	}
	return StatusActive
}

// VisitsRemaining is nil for unlimited memberships.
func VisitsRemaining(m *Membership) *int {
	if m.VisitsLimit == nil {
		return nil
	}
	left := *m.VisitsLimit - m.VisitsUsed
	if left < 0 {
		left = 0
	}
	return &left
}

// DaysLeft is the number of calendar days from asOf until the end date.
func DaysLeft(m *Membership, asOf time.Time) int {
	return int(DateOf(m.EndDate).Sub(DateOf(asOf)).Hours() / 24)
}

func View(m *Membership, asOf time.Time) *MembershipView {
	return &MembershipView{
		Membership:      *m,
		EffectiveStatus: Evaluate(m, asOf),
		VisitsRemaining: VisitsRemaining(m),
	}
}

type transition struct {
	from Status
	to   Status
}

var validTransitions = map[transition]bool{
	{StatusActive, StatusExpired}:   true,
	{StatusActive, StatusExhausted}: true,
	{StatusActive, StatusCancelled}: true,
}

// CanTransition reports whether the stored status may move from one value
// to another. Only ACTIVE has outgoing edges.
func CanTransition(from, to Status) bool {
	return validTransitions[transition{from, to}]
}
