package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xavierca1/assistant-dashboard/internal/entity"
)

const (
	defaultLeadSource         = "Website"
	DefaultRefreshAfterCreate = 500 * time.Millisecond
)

type CreateLeadUseCase struct {
	Backend      LeadCreator
	Reconciler   *LeadReconciler
	Queue        FollowUpPublisher
	RefreshDelay time.Duration
	Logger       *zap.Logger
}

func NewCreateLeadUseCase(
	backend LeadCreator,
	reconciler *LeadReconciler,
	queue FollowUpPublisher,
	refreshDelay time.Duration,
	logger *zap.Logger,
) *CreateLeadUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CreateLeadUseCase{
		Backend:      backend,
		Reconciler:   reconciler,
		Queue:        queue,
		RefreshDelay: refreshDelay,
		Logger:       logger,
	}
}

// Execute creates the lead on the backend, shows it immediately at the head
// of the list, and schedules a background refresh that reconciles it with the
// authoritative list.
func (uc *CreateLeadUseCase) Execute(ctx context.Context, input CreateLeadInput) (*CreateLeadOutput, error) {
	if errs := ValidateCreateLeadInput(input); len(errs) > 0 {
		return nil, validationFailure(errs)
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if input.Status == "" {
		input.Status = string(entity.LeadStatusNew)
	}
	if input.Source == "" {
		input.Source = defaultLeadSource
	}

	created, err := uc.Backend.CreateLead(ctx, input)
	if err != nil {
		return nil, &TechnicalError{
			Code:    "BACKEND_ERROR",
			Message: "failed to create lead",
			Err:     err,
		}
	}
	if created.Source == "" {
		created.Source = input.Source
	}
	if created.Notes == "" {
		created.Notes = input.Notes
	}

	leads := uc.Reconciler.MergeOptimistic(ctx, created)

	output := &CreateLeadOutput{
		Lead:  created,
		Leads: leads,
		Msg:   fmt.Sprintf("Lead %q created successfully!", created.Name),
	}

	if strings.TrimSpace(input.FollowUp) != "" {
		if err := uc.queueFollowUp(ctx, created, input.FollowUp); err != nil {
			// the lead exists; a lost follow-up must not fail the create
			uc.Logger.Warn("lead created but follow-up could not be queued",
				zap.String("lead_id", created.ID),
				zap.Error(err),
			)
			output.Msg += " Follow-up email failed: " + err.Error()
		} else {
			output.FollowUpQueued = true
			output.Msg += " Follow-up email queued."
		}
	}

	uc.scheduleRefresh(created.ID)

	return output, nil
}

func (uc *CreateLeadUseCase) queueFollowUp(ctx context.Context, lead entity.Lead, content string) error {
	if uc.Queue == nil {
		return fmt.Errorf("follow-up queue not configured")
	}
	return uc.Queue.PublishFollowUp(ctx, FollowUpPayload{
		ID:      uuid.New().String(),
		LeadID:  lead.ID,
		Name:    lead.Name,
		Email:   lead.Email,
		Subject: fmt.Sprintf("Following up, %s", lead.Name),
		Content: content,
		Origin:  "LEAD_CREATE",
	})
}

func (uc *CreateLeadUseCase) scheduleRefresh(leadID string) {
	if uc.RefreshDelay < 0 {
		return
	}
	time.AfterFunc(uc.RefreshDelay, func() {
		result := uc.Reconciler.Refresh(context.Background())
		uc.Logger.Debug("post-create lead refresh",
			zap.String("lead_id", leadID),
			zap.String("source", string(result.Source)),
			zap.Bool("discarded", result.Discarded),
		)
	})
}
