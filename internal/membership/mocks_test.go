package membership

import (
	"context"
	"time"

	"sportclub/internal/member"

	"github.com/stretchr/testify/mock"
)

type MockRepo struct{ mock.Mock }

func (m *MockRepo) CreateType(ctx context.Context, t *MembershipType) (*MembershipType, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MembershipType), args.Error(1)
}

func (m *MockRepo) GetType(ctx context.Context, id int) (*MembershipType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MembershipType), args.Error(1)
}

func (m *MockRepo) ListTypes(ctx context.Context, onlyActive bool) ([]MembershipType, error) {
	args := m.Called(ctx, onlyActive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]MembershipType), args.Error(1)
}

func (m *MockRepo) ArchiveType(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepo) Create(ctx context.Context, ms *Membership) (*Membership, error) {
	args := m.Called(ctx, ms)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Membership), args.Error(1)
}

func (m *MockRepo) GetByID(ctx context.Context, id int) (*Membership, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Membership), args.Error(1)
}

func (m *MockRepo) List(ctx context.Context, f ListFilter) ([]Membership, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Membership), args.Error(1)
}

func (m *MockRepo) Transitions(ctx context.Context, id int) ([]Transition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Transition), args.Error(1)
}

func (m *MockRepo) RecordVisit(ctx context.Context, id int, asOf time.Time) (*Membership, error) {
	args := m.Called(ctx, id, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Membership), args.Error(1)
}

func (m *MockRepo) Cancel(ctx context.Context, id int, reason string) (*Membership, error) {
	args := m.Called(ctx, id, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Membership), args.Error(1)
}

func (m *MockRepo) ListExpiryCandidates(ctx context.Context, asOf time.Time) ([]Membership, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Membership), args.Error(1)
}

func (m *MockRepo) Expire(ctx context.Context, id int, asOf time.Time, reason string) (bool, error) {
	args := m.Called(ctx, id, asOf, reason)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepo) ListReminderCandidates(ctx context.Context, asOf, endDate time.Time) ([]ReminderCandidate, error) {
	args := m.Called(ctx, asOf, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ReminderCandidate), args.Error(1)
}

func (m *MockRepo) ClaimReminder(ctx context.Context, id int, day time.Time) (bool, error) {
	args := m.Called(ctx, id, day)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepo) ReleaseReminder(ctx context.Context, id int, day time.Time, previous *time.Time) error {
	return m.Called(ctx, id, day, previous).Error(0)
}

type MockMembers struct{ mock.Mock }

func (m *MockMembers) FindByID(ctx context.Context, id int) (*member.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*member.Member), args.Error(1)
}

type MockMailer struct{ mock.Mock }

func (m *MockMailer) SendTemplate(ctx context.Context, to, name, template string, data map[string]interface{}) error {
	return m.Called(ctx, to, name, template, data).Error(0)
}
