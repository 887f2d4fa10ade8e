package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/assistant-dashboard/internal/entity"
)

func TestCreateLeadUseCase_Execute(t *testing.T) {
	t.Run("success merges optimistically", func(t *testing.T) {
		backend := new(MockBackend)
		backend.On("ListLeads", mock.Anything).Return(leadsFixture("1"), nil).Once()
		backend.On("CreateLead", mock.Anything, mock.MatchedBy(func(in CreateLeadInput) bool {
			return in.Name == "Rita" && in.Status == "new" && in.Source == "Website"
		})).Return(entity.Lead{ID: "50", Name: "Rita", Email: "rita@example.com", Status: entity.LeadStatusNew}, nil)

		reconciler := NewLeadReconciler(backend, &memorySnapshot{}, time.Second, nil)
		reconciler.Refresh(context.Background())

		uc := NewCreateLeadUseCase(backend, reconciler, nil, -1, nil)
		out, err := uc.Execute(context.Background(), CreateLeadInput{Name: "  Rita ", Email: "rita@example.com", Notes: "met at fair"})

		require.NoError(t, err)
		assert.Equal(t, "50", out.Lead.ID)
		assert.Equal(t, "Website", out.Lead.Source)
		assert.Equal(t, "met at fair", out.Lead.Notes)
		assert.Equal(t, []string{"50", "1"}, leadIDs(out.Leads))
		assert.False(t, out.FollowUpQueued)
		assert.Contains(t, out.Msg, "created successfully")
		backend.AssertExpectations(t)
	})

	t.Run("validation error never reaches backend", func(t *testing.T) {
		backend := new(MockBackend)
		uc := NewCreateLeadUseCase(backend, NewLeadReconciler(backend, nil, time.Second, nil), nil, -1, nil)

		_, err := uc.Execute(context.Background(), CreateLeadInput{Name: "", Email: "not-an-email"})

		require.Error(t, err)
		assert.True(t, IsDomainError(err))
		assert.Contains(t, err.Error(), "name")
		assert.Contains(t, err.Error(), "email")
		backend.AssertNotCalled(t, "CreateLead", mock.Anything, mock.Anything)
	})

	t.Run("backend failure is technical", func(t *testing.T) {
		backend := new(MockBackend)
		backend.On("CreateLead", mock.Anything, mock.Anything).Return(entity.Lead{}, errors.New("500"))
		reconciler := NewLeadReconciler(backend, nil, time.Second, nil)
		uc := NewCreateLeadUseCase(backend, reconciler, nil, -1, nil)

		_, err := uc.Execute(context.Background(), CreateLeadInput{Name: "Rui", Email: "rui@example.com"})

		require.Error(t, err)
		assert.True(t, IsTechnicalError(err))
		assert.Empty(t, reconciler.Current())
	})

	t.Run("follow-up queued", func(t *testing.T) {
		backend := new(MockBackend)
		backend.On("CreateLead", mock.Anything, mock.Anything).Return(entity.Lead{ID: "9", Name: "Sara", Email: "sara@example.com"}, nil)
		queue := new(MockPublisher)
		queue.On("PublishFollowUp", mock.Anything, mock.MatchedBy(func(p FollowUpPayload) bool {
			return p.LeadID == "9" && p.Email == "sara@example.com" && p.Content == "Hi Sara" && p.ID != "" && p.Origin == "LEAD_CREATE"
		})).Return(nil)

		uc := NewCreateLeadUseCase(backend, NewLeadReconciler(backend, nil, time.Second, nil), queue, -1, nil)
		out, err := uc.Execute(context.Background(), CreateLeadInput{Name: "Sara", Email: "sara@example.com", FollowUp: "Hi Sara"})

		require.NoError(t, err)
		assert.True(t, out.FollowUpQueued)
		assert.Contains(t, out.Msg, "Follow-up email queued")
		queue.AssertExpectations(t)
	})

	t.Run("follow-up failure does not fail the create", func(t *testing.T) {
		backend := new(MockBackend)
		backend.On("CreateLead", mock.Anything, mock.Anything).Return(entity.Lead{ID: "9", Name: "Sara", Email: "sara@example.com"}, nil)
		queue := new(MockPublisher)
		queue.On("PublishFollowUp", mock.Anything, mock.Anything).Return(errors.New("channel closed"))

		uc := NewCreateLeadUseCase(backend, NewLeadReconciler(backend, nil, time.Second, nil), queue, -1, nil)
		out, err := uc.Execute(context.Background(), CreateLeadInput{Name: "Sara", Email: "sara@example.com", FollowUp: "Hi"})

		require.NoError(t, err)
		assert.False(t, out.FollowUpQueued)
		assert.Contains(t, out.Msg, "Follow-up email failed")
	})

	t.Run("schedules a reconciling refresh", func(t *testing.T) {
		created := entity.Lead{ID: "12", Name: "Tiago", Email: "tiago@example.com"}
		backend := new(MockBackend)
		backend.On("CreateLead", mock.Anything, mock.Anything).Return(created, nil)
		backend.On("ListLeads", mock.Anything).Return(append([]entity.Lead{created}, leadsFixture("1", "2")...), nil)

		reconciler := NewLeadReconciler(backend, &memorySnapshot{}, time.Second, nil)
		uc := NewCreateLeadUseCase(backend, reconciler, nil, 10*time.Millisecond, nil)

		out, err := uc.Execute(context.Background(), CreateLeadInput{Name: "Tiago", Email: "tiago@example.com"})
		require.NoError(t, err)
		assert.Equal(t, []string{"12"}, leadIDs(out.Leads))

		assert.Eventually(t, func() bool {
			return len(reconciler.Current()) == 3
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, []string{"12", "1", "2"}, leadIDs(reconciler.Current()))
	})
}

func TestValidateCreateLeadInput(t *testing.T) {
	assert.Empty(t, ValidateCreateLeadInput(CreateLeadInput{Name: "Ana", Email: "ana@example.com", Phone: "+1 (555) 010-2030"}))

	errs := ValidateCreateLeadInput(CreateLeadInput{Name: "Ana", Email: "ana@example.com", Phone: "call me", Status: "hot"})
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	assert.Equal(t, []string{"phone", "status"}, fields)
}
