package membership

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func intPtr(i int) *int {
	return &i
}

func TestEndDateFor(t *testing.T) {
	assert.Equal(t, day("2025-01-31"), EndDateFor(day("2025-01-01"), 30))
	assert.Equal(t, day("2025-03-01"), EndDateFor(day("2025-01-30"), 30))
	assert.Equal(t, day("2026-01-01"), EndDateFor(day("2025-01-01"), 365))
}

func TestEvaluate_UnlimitedScenario(t *testing.T) {
	m := &Membership{
		StartDate: day("2025-01-01"),
		EndDate:   EndDateFor(day("2025-01-01"), 30),
		Status:    StatusActive,
	}
	require.Equal(t, day("2025-01-31"), m.EndDate)

	assert.Equal(t, StatusActive, Evaluate(m, day("2025-01-31")))
	assert.Equal(t, StatusActive, Evaluate(m, day("2025-01-31").Add(23*time.Hour+59*time.Minute)))
	assert.Equal(t, StatusExpired, Evaluate(m, day("2025-02-01")))
}

func TestEvaluate_UnlimitedExpiresIffAfterEndDate(t *testing.T) {
	end := day("2025-06-15")
	m := &Membership{EndDate: end, Status: StatusActive}

	for offset := -40; offset <= 40; offset++ {
		asOf := end.AddDate(0, 0, offset)
		want := StatusActive
		if offset > 0 {
			want = StatusExpired
		}
		assert.Equal(t, want, Evaluate(m, asOf), "offset %d", offset)
	}
}

func TestEvaluate_ExhaustedScenario(t *testing.T) {
	asOf := day("2025-03-01")
	m := &Membership{
		EndDate:     asOf.AddDate(0, 0, 10),
		Status:      StatusActive,
		VisitsLimit: intPtr(8),
		VisitsUsed:  8,
	}

	assert.Equal(t, StatusExhausted, Evaluate(m, asOf))
}

func TestEvaluate_ExhaustionTakesPrecedence(t *testing.T) {
	end := day("2025-03-10")
	m := &Membership{EndDate: end, Status: StatusActive, VisitsLimit: intPtr(4), VisitsUsed: 4}

	for offset := -10; offset <= 10; offset++ {
		assert.Equal(t, StatusExhausted, Evaluate(m, end.AddDate(0, 0, offset)), "offset %d", offset)
	}
}

func TestEvaluate_LimitedWithVisitsLeft(t *testing.T) {
	m := &Membership{EndDate: day("2025-03-10"), Status: StatusActive, VisitsLimit: intPtr(8), VisitsUsed: 7}

	assert.Equal(t, StatusActive, Evaluate(m, day("2025-03-10")))
	assert.Equal(t, StatusExpired, Evaluate(m, day("2025-03-11")))
}

func TestEvaluate_TerminalStatusesUnchanged(t *testing.T) {
	asOf := day("2025-01-01")
	for _, s := range []Status{StatusCancelled, StatusExpired, StatusExhausted} {
		m := &Membership{EndDate: asOf.AddDate(0, 0, 30), Status: s}
		assert.Equal(t, s, Evaluate(m, asOf))
	}
}

func TestEvaluate_UsesCalendarDayOfLocation(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)
	m := &Membership{EndDate: day("2025-01-31"), Status: StatusActive}

	// 22:30 UTC on the 31st is already Feb 1st in Moscow.
	asOf := time.Date(2025, 1, 31, 22, 30, 0, 0, time.UTC).In(moscow)
	assert.Equal(t, StatusExpired, Evaluate(m, asOf))
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusActive, StatusExpired))
	assert.True(t, CanTransition(StatusActive, StatusExhausted))
	assert.True(t, CanTransition(StatusActive, StatusCancelled))

	for _, from := range []Status{StatusExpired, StatusExhausted, StatusCancelled} {
		for _, to := range []Status{StatusActive, StatusExpired, StatusExhausted, StatusCancelled} {
			assert.False(t, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestVisitsRemainingAndDaysLeft(t *testing.T) {
	m := &Membership{EndDate: day("2025-01-31"), VisitsLimit: intPtr(8), VisitsUsed: 3}
	require.NotNil(t, VisitsRemaining(m))
	assert.Equal(t, 5, *VisitsRemaining(m))
	assert.Equal(t, 3, DaysLeft(m, day("2025-01-28")))

	assert.Nil(t, VisitsRemaining(&Membership{}))
}

func TestView(t *testing.T) {
	m := &Membership{ID: 7, EndDate: day("2025-01-31"), Status: StatusActive}
	v := View(m, day("2025-02-02"))

	assert.Equal(t, 7, v.ID)
	assert.Equal(t, StatusActive, v.Status)
	assert.Equal(t, StatusExpired, v.EffectiveStatus)
}
