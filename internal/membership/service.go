package membership

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/patrickmn/go-cache"

	"sportclub/internal/email"
	"sportclub/internal/logger"
	"sportclub/internal/member"
	"sportclub/internal/metrics"
)

const (
	catalogActiveKey = "catalog:active"
	catalogAllKey    = "catalog:all"
)

type Service interface {
	ListTypes(ctx context.Context, includeArchived bool) ([]MembershipType, error)
	CreateType(ctx context.Context, req CreateTypeRequest) (*MembershipType, error)
	ArchiveType(ctx context.Context, id int) error
	QuotePrice(ctx context.Context, req QuoteRequest) (*PriceQuote, error)

	Purchase(ctx context.Context, req PurchaseRequest) (*PurchaseResponse, error)
	Get(ctx context.Context, id int) (*MembershipView, error)
	ListForMember(ctx context.Context, memberID int, status Status) ([]MembershipView, error)
	ActiveForMember(ctx context.Context, memberID int) ([]MembershipView, error)
	RecordVisit(ctx context.Context, id int) (*MembershipView, error)
	Cancel(ctx context.Context, id int, reason string) (*MembershipView, error)
	History(ctx context.Context, id int) ([]Transition, error)
}

// MemberFinder resolves the owner of a membership.
type MemberFinder interface {
	FindByID(ctx context.Context, id int) (*member.Member, error)
}

// Mailer queues templated messages.
type Mailer interface {
	SendTemplate(ctx context.Context, to, name, template string, data map[string]interface{}) error
}

type service struct {
	repo     Repository
	members  MemberFinder
	mailer   Mailer
	catalog  *cache.Cache
	validate *validator.Validate
	now      func() time.Time
}

func NewService(repo Repository, members MemberFinder, mailer Mailer, loc *time.Location, catalogTTL time.Duration) Service {
	if loc == nil {
		loc = time.UTC
	}
	return &service{
		repo:     repo,
		members:  members,
		mailer:   mailer,
		catalog:  cache.New(catalogTTL, 2*catalogTTL),
		validate: validator.New(),
		now:      func() time.Time { return time.Now().In(loc) },
	}
}

func (s *service) ListTypes(ctx context.Context, includeArchived bool) ([]MembershipType, error) {
	key := catalogActiveKey
	if includeArchived {
		key = catalogAllKey
	}
	if cached, ok := s.catalog.Get(key); ok {
		return cached.([]MembershipType), nil
	}

	types, err := s.repo.ListTypes(ctx, !includeArchived)
	if err != nil {
		return nil, err
	}
	s.catalog.SetDefault(key, types)
	return types, nil
}

func (s *service) CreateType(ctx context.Context, req CreateTypeRequest) (*MembershipType, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidType, err)
	}

	t, err := s.repo.CreateType(ctx, &MembershipType{
		Name:         req.Name,
		Description:  req.Description,
		PriceCents:   req.PriceCents,
		DurationDays: req.DurationDays,
		VisitsLimit:  req.VisitsLimit,
		IsActive:     true,
	})
	if err != nil {
		return nil, err
	}

	s.catalog.Flush()
	logger.Info("Membership type created", "type_id", t.ID, "name", t.Name)
	return t, nil
}

func (s *service) ArchiveType(ctx context.Context, id int) error {
	if err := s.repo.ArchiveType(ctx, id); err != nil {
		return err
	}
	s.catalog.Flush()
	logger.Info("Membership type archived", "type_id", id)
	return nil
}

func (s *service) QuotePrice(ctx context.Context, req QuoteRequest) (*PriceQuote, error) {
	t, err := s.repo.GetType(ctx, req.TypeID)
	if err != nil {
		return nil, err
	}
	m, err := s.findMember(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}

	q := Quote(t, m.IsStudent)
	return &q, nil
}

func (s *service) Purchase(ctx context.Context, req PurchaseRequest) (*PurchaseResponse, error) {
	t, err := s.repo.GetType(ctx, req.TypeID)
	if err != nil {
		return nil, err
	}
	if !t.IsActive {
		return nil, ErrTypeInactive
	}

	owner, err := s.findMember(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}

	today := DateOf(s.now())
	start := today
	if req.StartDate != "" {
		start, err = ParseDate(req.StartDate)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidStartDate, err)
		}
		if start.Before(today) {
			return nil, fmt.Errorf("%w: %s is in the past", ErrInvalidStartDate, req.StartDate)
		}
	}

	quote := Quote(t, owner.IsStudent)

	m, err := s.repo.Create(ctx, &Membership{
		MemberID:    owner.ID,
		TypeID:      t.ID,
		TypeName:    t.Name,
		StartDate:   start,
		EndDate:     EndDateFor(start, t.DurationDays),
		Status:      StatusActive,
		VisitsLimit: t.VisitsLimit,
		PriceCents:  quote.FinalCents,
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordPurchase(t.Name)
	logger.Info("Membership purchased",
		"membership_id", m.ID,
		"member_id", owner.ID,
		"type_id", t.ID,
		"price_cents", quote.FinalCents,
	)

	s.sendConfirmation(ctx, owner, m, quote)

	return &PurchaseResponse{
		Membership: View(m, s.now()),
		Price:      quote,
	}, nil
}

// sendConfirmation never fails the purchase.
func (s *service) sendConfirmation(ctx context.Context, owner *member.Member, m *Membership, quote PriceQuote) {
	if s.mailer == nil || owner.Email == "" {
		return
	}

	data := map[string]interface{}{
		"member_name": owner.Name,
		"type_name":   m.TypeName,
		"start_date":  FormatDate(m.StartDate),
		"expiry_date": FormatDate(m.EndDate),
		"price":       FormatCents(quote.FinalCents),
	}
	if m.VisitsLimit != nil {
		data["visits_limit"] = *m.VisitsLimit
	}
	if quote.DiscountCents > 0 {
		data["discount"] = quote.Description
	}

	if err := s.mailer.SendTemplate(ctx, owner.Email, owner.Name, email.TemplatePurchased, data); err != nil {
		logger.WithError(err).Warn("Failed to queue purchase confirmation", "membership_id", m.ID)
	}
}

func (s *service) Get(ctx context.Context, id int) (*MembershipView, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return View(m, s.now()), nil
}

func (s *service) ListForMember(ctx context.Context, memberID int, status Status) ([]MembershipView, error) {
	if _, err := s.findMember(ctx, memberID); err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx, ListFilter{MemberID: memberID, Status: status})
	if err != nil {
		return nil, err
	}
	return s.views(items), nil
}

// ActiveForMember returns memberships that are usable today, judged by the
// evaluator rather than the stored status.
func (s *service) ActiveForMember(ctx context.Context, memberID int) ([]MembershipView, error) {
	if _, err := s.findMember(ctx, memberID); err != nil {
		return nil, err
	}
	today := DateOf(s.now())
	items, err := s.repo.List(ctx, ListFilter{MemberID: memberID, Status: StatusActive, ActiveOn: &today})
	if err != nil {
		return nil, err
	}

	out := make([]MembershipView, 0, len(items))
	for _, v := range s.views(items) {
		if v.EffectiveStatus == StatusActive {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *service) RecordVisit(ctx context.Context, id int) (*MembershipView, error) {
	now := s.now()
	m, err := s.repo.RecordVisit(ctx, id, now)
	switch {
	case errors.Is(err, ErrMembershipExpired):
		metrics.RecordVisit("rejected_expired")
		metrics.RecordTransition(string(StatusExpired), "visit")
		return View(m, now), err
	case errors.Is(err, ErrVisitsExhausted):
		metrics.RecordVisit("rejected_exhausted")
		metrics.RecordTransition(string(StatusExhausted), "visit")
		return View(m, now), err
	case err != nil:
		metrics.RecordVisit("rejected")
		return nil, err
	}

	metrics.RecordVisit("accepted")
	if m.Status == StatusExhausted {
		metrics.RecordTransition(string(StatusExhausted), "visit")
	}
	logger.Debug("Visit recorded", "membership_id", m.ID, "visits_used", m.VisitsUsed)
	return View(m, now), nil
}

func (s *service) Cancel(ctx context.Context, id int, reason string) (*MembershipView, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "cancelled by staff"
	}

	m, err := s.repo.Cancel(ctx, id, reason)
	if err != nil {
		return nil, err
	}

	metrics.RecordTransition(string(StatusCancelled), "manual")
	logger.Info("Membership cancelled", "membership_id", id, "reason", reason)
	return View(m, s.now()), nil
}

func (s *service) History(ctx context.Context, id int) ([]Transition, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Transitions(ctx, id)
}

func (s *service) findMember(ctx context.Context, id int) (*member.Member, error) {
	m, err := s.members.FindByID(ctx, id)
	if errors.Is(err, member.ErrNotFound) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) views(items []Membership) []MembershipView {
	now := s.now()
	out := make([]MembershipView, 0, len(items))
	for i := range items {
		out = append(out, *View(&items[i], now))
	}
	return out
}

// FormatCents renders minor units as a decimal amount.
func FormatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign, c = "-", -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}
