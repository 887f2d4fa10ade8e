package usecase

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/assistant-dashboard/internal/entity"
)

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) ListLeads(ctx context.Context) ([]entity.Lead, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Lead), args.Error(1)
}

func (m *MockBackend) ListMessages(ctx context.Context, leadID string) ([]entity.Message, error) {
	args := m.Called(ctx, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Message), args.Error(1)
}

func (m *MockBackend) CreateLead(ctx context.Context, input CreateLeadInput) (entity.Lead, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(entity.Lead), args.Error(1)
}

func (m *MockBackend) SendMessage(ctx context.Context, input SendMessageInput) (entity.Message, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(entity.Message), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishFollowUp(ctx context.Context, payload FollowUpPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

type MockDrafter struct {
	mock.Mock
}

func (m *MockDrafter) Draft(ctx context.Context, req DraftRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// memorySnapshot is an in-memory LeadSnapshotStore.
type memorySnapshot struct {
	mu      sync.Mutex
	leads   []entity.Lead
	present bool
	saves   int
	saveErr error
}

func (s *memorySnapshot) Load(ctx context.Context) ([]entity.Lead, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.present {
		return nil, false, nil
	}
	return cloneLeads(s.leads), true, nil
}

func (s *memorySnapshot) Save(ctx context.Context, leads []entity.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.leads = cloneLeads(leads)
	s.present = true
	return nil
}

func (s *memorySnapshot) stored() []entity.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneLeads(s.leads)
}
