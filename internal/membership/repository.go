package membership

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"sportclub/internal/db"
)

var membershipColumns = []string{
	"id", "member_id", "type_id", "type_name", "start_date", "end_date", "status",
	"visits_limit", "visits_used", "price_cents", "last_reminder_sent_date",
	"cancel_reason", "created_at", "updated_at",
}

var selectMembership = "SELECT " + strings.Join(membershipColumns, ", ") + " FROM memberships"

const typeColumns = "id, name, description, price_cents, duration_days, visits_limit, is_active, created_at"

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateType(ctx context.Context, t *MembershipType) (*MembershipType, error) {
	query := `
		INSERT INTO membership_types (name, description, price_cents, duration_days, visits_limit, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING ` + typeColumns

	var created MembershipType
	err := r.db.GetContext(ctx, &created, query, t.Name, t.Description, t.PriceCents, t.DurationDays, t.VisitsLimit)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *repository) GetType(ctx context.Context, id int) (*MembershipType, error) {
	var t MembershipType
	err := r.db.GetContext(ctx, &t, `SELECT `+typeColumns+` FROM membership_types WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTypeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repository) ListTypes(ctx context.Context, onlyActive bool) ([]MembershipType, error) {
	query := `SELECT ` + typeColumns + ` FROM membership_types`
	if onlyActive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY price_cents, id`

	types := []MembershipType{}
	if err := r.db.SelectContext(ctx, &types, query); err != nil {
		return nil, err
	}
	return types, nil
}

func (r *repository) ArchiveType(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `UPDATE membership_types SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTypeNotFound
	}
	return nil
}

func (r *repository) Create(ctx context.Context, m *Membership) (*Membership, error) {
	query := `
		INSERT INTO memberships (member_id, type_id, type_name, start_date, end_date, status, visits_limit, visits_used, price_cents)
		VALUES ($1, $2, $3, $4, $5, 'ACTIVE', $6, 0, $7)
		RETURNING ` + strings.Join(membershipColumns, ", ")

	var created Membership
	err := r.db.GetContext(ctx, &created, query,
		m.MemberID, m.TypeID, m.TypeName, DateOf(m.StartDate), DateOf(m.EndDate), m.VisitsLimit, m.PriceCents)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Membership, error) {
	var m Membership
	err := r.db.GetContext(ctx, &m, selectMembership+` WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]Membership, error) {
	q := sq.Select(membershipColumns...).
		From("memberships").
		PlaceholderFormat(sq.Dollar).
		OrderBy("created_at DESC", "id DESC")

	if f.MemberID != 0 {
		q = q.Where(sq.Eq{"member_id": f.MemberID})
	}
	if f.TypeID != 0 {
		q = q.Where(sq.Eq{"type_id": f.TypeID})
	}
	if f.Status != "" {
		q = q.Where(sq.Eq{"status": f.Status})
	}
	if f.ActiveOn != nil {
		d := DateOf(*f.ActiveOn)
		q = q.Where(sq.LtOrEq{"start_date": d}).Where(sq.GtOrEq{"end_date": d})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build membership query: %w", err)
	}

	memberships := []Membership{}
	if err := r.db.SelectContext(ctx, &memberships, query, args...); err != nil {
		return nil, err
	}
	return memberships, nil
}

func (r *repository) Transitions(ctx context.Context, membershipID int) ([]Transition, error) {
	transitions := []Transition{}
	err := r.db.SelectContext(ctx, &transitions, `
		SELECT id, membership_id, from_status, to_status, reason, occurred_at
		FROM membership_status_transitions
		WHERE membership_id = $1
		ORDER BY occurred_at, id
	`, membershipID)
	if err != nil {
		return nil, err
	}
	return transitions, nil
}

// RecordVisit locks the row and consumes one visit. When the evaluator
// already considers the membership expired or exhausted, that status is
// persisted and the matching error is returned along with the record.
func (r *repository) RecordVisit(ctx context.Context, id int, asOf time.Time) (*Membership, error) {
	var (
		out      Membership
		visitErr error
	)

	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		m, err := lockMembership(ctx, tx, id)
		if err != nil {
			return err
		}
		if m.Status != StatusActive {
			return fmt.Errorf("%w: status %s", ErrNotActive, m.Status)
		}

		switch Evaluate(m, asOf) {
		case StatusExpired:
			if err := transitionTx(ctx, tx, m, StatusExpired, "expired at visit check"); err != nil {
				return err
			}
			out, visitErr = *m, ErrMembershipExpired
			return nil
		case StatusExhausted:
			if err := transitionTx(ctx, tx, m, StatusExhausted, "visit limit reached"); err != nil {
				return err
			}
			out, visitErr = *m, ErrVisitsExhausted
			return nil
		}

		m.VisitsUsed++
		next := Evaluate(m, asOf)

		_, err = tx.ExecContext(ctx, `
			UPDATE memberships
			SET visits_used = $1,
			    status = $2,
			    updated_at = NOW()
			WHERE id = $3
		`, m.VisitsUsed, next, m.ID)
		if err != nil {
			return err
		}

		if next != StatusActive {
			if err := insertTransition(ctx, tx, m.ID, StatusActive, next, "visit limit reached"); err != nil {
				return err
			}
			m.Status = next
		}

		out = *m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, visitErr
}

func (r *repository) Cancel(ctx context.Context, id int, reason string) (*Membership, error) {
	var out Membership

	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		m, err := lockMembership(ctx, tx, id)
		if err != nil {
			return err
		}
		if m.Status == StatusCancelled {
			return ErrAlreadyCancelled
		}

		if !CanTransition(m.Status, StatusCancelled) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.Status, StatusCancelled)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE memberships
			SET status = 'CANCELLED',
			    cancel_reason = $1,
			    updated_at = NOW()
			WHERE id = $2
		`, reason, m.ID)
		if err != nil {
			return err
		}

		if err := insertTransition(ctx, tx, m.ID, m.Status, StatusCancelled, reason); err != nil {
			return err
		}

		m.Status = StatusCancelled
		m.CancelReason = reason
		out = *m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *repository) ListExpiryCandidates(ctx context.Context, asOf time.Time) ([]Membership, error) {
	memberships := []Membership{}
	err := r.db.SelectContext(ctx, &memberships, selectMembership+`
		WHERE status = 'ACTIVE'
		  AND end_date < $1
		ORDER BY id
	`, DateOf(asOf))
	if err != nil {
		return nil, err
	}
	return memberships, nil
}

func (r *repository) Expire(ctx context.Context, id int, asOf time.Time, reason string) (bool, error) {
	var expired bool

	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE memberships
			SET status = 'EXPIRED',
			    updated_at = NOW()
			WHERE id = $1
			  AND status = 'ACTIVE'
			  AND end_date < $2
		`, id, DateOf(asOf))
		if err != nil {
			return err
		}

		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}

		expired = true
		return insertTransition(ctx, tx, id, StatusActive, StatusExpired, reason)
	})
	return expired, err
}

func (r *repository) ListReminderCandidates(ctx context.Context, asOf, endDate time.Time) ([]ReminderCandidate, error) {
	candidates := []ReminderCandidate{}
	err := r.db.SelectContext(ctx, &candidates, `
		SELECT m.id, m.member_id, m.type_id, m.type_name, m.start_date, m.end_date, m.status,
		       m.visits_limit, m.visits_used, m.price_cents, m.last_reminder_sent_date,
		       m.cancel_reason, m.created_at, m.updated_at,
		       mb.name AS member_name, mb.email AS member_email
		FROM memberships m
		JOIN members mb ON mb.id = m.member_id
		WHERE m.status = 'ACTIVE'
		  AND m.end_date = $1
		  AND m.last_reminder_sent_date IS DISTINCT FROM $2
		ORDER BY m.id
	`, DateOf(endDate), DateOf(asOf))
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

func (r *repository) ClaimReminder(ctx context.Context, id int, day time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE memberships
		SET last_reminder_sent_date = $1,
		    updated_at = NOW()
		WHERE id = $2
		  AND status = 'ACTIVE'
		  AND last_reminder_sent_date IS DISTINCT FROM $1
	`, DateOf(day), id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *repository) ReleaseReminder(ctx context.Context, id int, day time.Time, previous *time.Time) error {
	var prev interface{}
	if previous != nil {
		prev = DateOf(*previous)
	}

	_, err := r.db.ExecContext(ctx, `
		UPDATE memberships
		SET last_reminder_sent_date = $1,
		    updated_at = NOW()
		WHERE id = $2
		  AND last_reminder_sent_date = $3
	`, prev, id, DateOf(day))
	return err
}

func lockMembership(ctx context.Context, tx *sqlx.Tx, id int) (*Membership, error) {
	var m Membership
	err := tx.GetContext(ctx, &m, selectMembership+` WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func transitionTx(ctx context.Context, tx *sqlx.Tx, m *Membership, to Status, reason string) error {
	if !CanTransition(m.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.Status, to)
	}

	_, err := tx.ExecContext(ctx, `
		UPDATE memberships
		SET status = $1,
		    updated_at = NOW()
		WHERE id = $2
	`, to, m.ID)
	if err != nil {
		return err
	}

	if err := insertTransition(ctx, tx, m.ID, m.Status, to, reason); err != nil {
		return err
	}
	m.Status = to
	return nil
}

func insertTransition(ctx context.Context, tx *sqlx.Tx, membershipID int, from, to Status, reason string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO membership_status_transitions (membership_id, from_status, to_status, reason)
		VALUES ($1, $2, $3, $4)
	`, membershipID, from, to, reason)
	return err
}
