package branches

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calderacafe/brewstock-backend/pkg/db/models"
	"github.com/calderacafe/brewstock-backend/pkg/enums"
	pkgerrors "github.com/calderacafe/brewstock-backend/pkg/errors"
	"github.com/calderacafe/brewstock-backend/pkg/outbox"
	"github.com/calderacafe/brewstock-backend/pkg/outbox/payloads"
)

const activityListLimit = 100

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service manages branches. Every mutation appends a BranchActivity audit
// row in the same transaction.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Branch, error)
	List(ctx context.Context) ([]models.Branch, error)
	Get(ctx context.Context, branchID uuid.UUID) (*models.Branch, error)
	Update(ctx context.Context, input UpdateInput) (*models.Branch, error)
	Delete(ctx context.Context, branchID, actorID uuid.UUID) error
	Toggle(ctx context.Context, input ToggleInput) (*models.Branch, error)
	Activity(ctx context.Context, branchID uuid.UUID) ([]models.BranchActivity, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// CreateInput captures a new branch.
type CreateInput struct {
	Name     string
	Address  *string
	Timezone string
	OwnerID  uuid.UUID
}

// UpdateInput carries the editable branch fields. Nil means unchanged.
type UpdateInput struct {
	BranchID uuid.UUID
	ActorID  uuid.UUID
	Name     *string
	Address  *string
	Timezone *string
}

// ToggleInput flips the open flag.
type ToggleInput struct {
	BranchID  uuid.UUID
	ActorID   uuid.UUID
	ActorRole string
}

func NewService(repo Repository, tx txRunner, ob outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "branch repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if ob == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: ob}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Branch, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch name required")
	}
	if input.OwnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "owner identity missing")
	}
	timezone := strings.TrimSpace(input.Timezone)
	if timezone == "" {
		timezone = "UTC"
	}

	branch := &models.Branch{
		Name:     name,
		Address:  input.Address,
		Timezone: timezone,
		Open:     true,
		OwnerID:  input.OwnerID,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, branch); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create branch")
		}
		return s.audit(ctx, repo, branch.ID, input.OwnerID, enums.BranchActionCreated)
	})
	if err != nil {
		return nil, err
	}
	return branch, nil
}

func (s *service) List(ctx context.Context) ([]models.Branch, error) {
	branches, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list branches")
	}
	return branches, nil
}

func (s *service) Get(ctx context.Context, branchID uuid.UUID) (*models.Branch, error) {
	if branchID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch id required")
	}
	branch, err := s.repo.Find(ctx, branchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "branch not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load branch")
	}
	return branch, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*models.Branch, error) {
	if input.BranchID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Address != nil {
		updates["address"] = *input.Address
	}
	if input.Timezone != nil {
		timezone := strings.TrimSpace(*input.Timezone)
		if timezone == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "timezone cannot be empty")
		}
		updates["timezone"] = timezone
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no changes to save")
	}

	var branch *models.Branch
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.mustFind(ctx, repo, input.BranchID); err != nil {
			return err
		}
		if err := repo.Update(ctx, input.BranchID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update branch")
		}
		if err := s.audit(ctx, repo, input.BranchID, input.ActorID, enums.BranchActionUpdated); err != nil {
			return err
		}
		updated, err := repo.Find(ctx, input.BranchID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload branch")
		}
		branch = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return branch, nil
}

func (s *service) Delete(ctx context.Context, branchID, actorID uuid.UUID) error {
	if branchID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "branch id required")
	}
	if actorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.mustFind(ctx, repo, branchID); err != nil {
			return err
		}
		if err := repo.SoftDelete(ctx, branchID, time.Now().UTC()); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete branch")
		}
		return s.audit(ctx, repo, branchID, actorID, enums.BranchActionDeleted)
	})
}

// Toggle flips the open flag, records the matching audit action, and emits a
// branch status event. A branch reopening after a close records "reopened"
// rather than "opened".
func (s *service) Toggle(ctx context.Context, input ToggleInput) (*models.Branch, error) {
	if input.BranchID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var branch *models.Branch
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := s.mustFind(ctx, repo, input.BranchID)
		if err != nil {
			return err
		}

		nextOpen := !current.Open
		if err := repo.Update(ctx, input.BranchID, map[string]any{"open": nextOpen}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle branch")
		}

		action := enums.BranchActionClosed
		if nextOpen {
			action = enums.BranchActionReopened
		}
		if err := s.audit(ctx, repo, input.BranchID, input.ActorID, action); err != nil {
			return err
		}

		now := time.Now().UTC()
		branchID := input.BranchID
		event := outbox.DomainEvent{
			EventType:     enums.EventBranchStatus,
			AggregateType: enums.AggregateBranch,
			AggregateID:   input.BranchID,
			Version:       1,
			Actor: &outbox.ActorRef{
				UserID:   input.ActorID,
				BranchID: &branchID,
				Role:     input.ActorRole,
			},
			Data: payloads.BranchStatusChangedEvent{
				BranchID:  input.BranchID,
				Open:      nextOpen,
				ChangedAt: now,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue branch event")
		}

		current.Open = nextOpen
		branch = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return branch, nil
}

func (s *service) Activity(ctx context.Context, branchID uuid.UUID) ([]models.BranchActivity, error) {
	if branchID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch id required")
	}
	rows, err := s.repo.ListActivity(ctx, branchID, activityListLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list branch activity")
	}
	return rows, nil
}

func (s *service) mustFind(ctx context.Context, repo Repository, branchID uuid.UUID) (*models.Branch, error) {
	branch, err := repo.Find(ctx, branchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "branch not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load branch")
	}
	return branch, nil
}

func (s *service) audit(ctx context.Context, repo Repository, branchID, actorID uuid.UUID, action enums.BranchAction) error {
	activity := &models.BranchActivity{
		BranchID: branchID,
		ActorID:  actorID,
		Action:   action,
	}
	if err := repo.AppendActivity(ctx, activity); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append branch activity")
	}
	return nil
}
