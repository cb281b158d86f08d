package membership

import "time"

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusExpired   Status = "EXPIRED"
	StatusExhausted Status = "EXHAUSTED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusExpired, StatusExhausted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no automated transition leaves s.
func (s Status) Terminal() bool {
	return s == StatusExpired || s == StatusExhausted || s == StatusCancelled
}

// MembershipType is a catalog template. Once a membership references it,
// only IsActive may change.
type MembershipType struct {
	ID           int       `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Description  string    `db:"description" json:"description"`
	PriceCents   int64     `db:"price_cents" json:"price_cents"`
	DurationDays int       `db:"duration_days" json:"duration_days"`
	VisitsLimit  *int      `db:"visits_limit" json:"visits_limit,omitempty"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Membership is a purchased entitlement. VisitsLimit and TypeName are
// snapshots of the type at purchase time.
type Membership struct {
	ID                   int        `db:"id" json:"id"`
	MemberID             int        `db:"member_id" json:"member_id"`
	TypeID               int        `db:"type_id" json:"type_id"`
	TypeName             string     `db:"type_name" json:"type_name"`
	StartDate            time.Time  `db:"start_date" json:"start_date"`
	EndDate              time.Time  `db:"end_date" json:"end_date"`
	Status               Status     `db:"status" json:"status"`
	VisitsLimit          *int       `db:"visits_limit" json:"visits_limit,omitempty"`
	VisitsUsed           int        `db:"visits_used" json:"visits_used"`
	PriceCents           int64      `db:"price_cents" json:"price_cents"`
	LastReminderSentDate *time.Time `db:"last_reminder_sent_date" json:"last_reminder_sent_date,omitempty"`
	CancelReason         string     `db:"cancel_reason" json:"cancel_reason,omitempty"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updated_at"`
}

// ReminderCandidate is a membership joined with its owner's contact data.
type ReminderCandidate struct {
	Membership
	MemberName  string `db:"member_name"`
	MemberEmail string `db:"member_email"`
}

type Transition struct {
	ID           int       `db:"id" json:"id"`
	MembershipID int       `db:"membership_id" json:"membership_id"`
	FromStatus   Status    `db:"from_status" json:"from_status"`
	ToStatus     Status    `db:"to_status" json:"to_status"`
	Reason       string    `db:"reason" json:"reason"`
	OccurredAt   time.Time `db:"occurred_at" json:"occurred_at"`
}

type ListFilter struct {
	MemberID int
	TypeID   int
	Status   Status
	// ActiveOn restricts to memberships whose validity window contains the day.
	ActiveOn *time.Time
	Limit    int
}

// MembershipView is a membership with its evaluated status.
type MembershipView struct {
	Membership
	EffectiveStatus Status `json:"effective_status"`
	VisitsRemaining *int   `json:"visits_remaining,omitempty"`
}

type CreateTypeRequest struct {
	Name         string `json:"name" binding:"required" validate:"required,max=100"`
	Description  string `json:"description"`
	PriceCents   int64  `json:"price_cents" binding:"required" validate:"gte=1"`
	DurationDays int    `json:"duration_days" binding:"required" validate:"gte=1,lte=3660"`
	VisitsLimit  *int   `json:"visits_limit,omitempty" validate:"omitempty,gte=1"`
}

type PurchaseRequest struct {
	MemberID int `json:"member_id" binding:"required"`
	TypeID   int `json:"type_id" binding:"required"`
	// StartDate is YYYY-MM-DD; empty means today.
	StartDate string `json:"start_date,omitempty"`
}

type QuoteRequest struct {
	TypeID   int `json:"type_id" binding:"required"`
	MemberID int `json:"member_id" binding:"required"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

type PurchaseResponse struct {
	Membership *MembershipView `json:"membership"`
	Price      PriceQuote      `json:"price"`
}

type VisitResponse struct {
	Message    string          `json:"message"`
	Membership *MembershipView `json:"membership"`
}
