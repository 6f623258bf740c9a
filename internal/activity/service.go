package activity

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/calderacafe/brewstock-backend/pkg/db/models"
	pkgerrors "github.com/calderacafe/brewstock-backend/pkg/errors"
	"github.com/calderacafe/brewstock-backend/pkg/logger"
)

const (
	stockCheckLimit = 100
	requestLimit    = 50

	checkPrefix   = "check-"
	requestPrefix = "request-"

	unknownStaff = "Unknown Staff"
	systemStaff  = "System"
)

// Entry is one row of the unified activity feed. The ID prefix identifies
// which ledger the entry came from.
type Entry struct {
	ID          string    `json:"id"`
	CheckedAt   time.Time `json:"checkedAt"`
	BranchName  string    `json:"branchName"`
	StaffName   string    `json:"staffName"`
	Ingredient  string    `json:"ingredient"`
	Quantity    int       `json:"quantity"`
	Unit        string    `json:"unit"`
	Source      string    `json:"source"`
	RequestedBy *string   `json:"requestedBy,omitempty"`
}

// Service projects the stock check and request ledgers into one feed.
type Service interface {
	Feed(ctx context.Context, branchID uuid.UUID) ([]Entry, error)
	DeleteEntry(ctx context.Context, entryID string) error
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the activity feed projector.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "activity repository required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// Feed merges recent stock checks and fulfilled requests into one
// time-descending list. Either ledger failing to read degrades to an empty
// contribution rather than failing the whole feed.
func (s *service) Feed(ctx context.Context, branchID uuid.UUID) ([]Entry, error) {
	if branchID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch id required")
	}
	logCtx := s.logg.WithBranchID(ctx, branchID.String())

	checks, err := s.repo.RecentStockChecks(ctx, branchID, stockCheckLimit)
	if err != nil {
		s.logg.Error(logCtx, "failed to read stock check ledger", err)
		checks = nil
	}
	requests, err := s.repo.RecentFulfilledRequests(ctx, branchID, requestLimit)
	if err != nil {
		s.logg.Error(logCtx, "failed to read request ledger", err)
		requests = nil
	}

	staffNames := s.resolveStaffNames(ctx, checks)

	entries := make([]Entry, 0, len(checks)+len(requests))
	for _, check := range checks {
		branchName := ""
		if check.Branch != nil {
			branchName = check.Branch.Name
		}
		staffName := staffNameForCheck(check, staffNames)
		for _, item := range check.Items {
			entry := Entry{
				ID:         checkPrefix + item.ID.String(),
				CheckedAt:  check.CheckedAt,
				BranchName: branchName,
				StaffName:  staffName,
				Quantity:   item.OnHandQty,
				Source:     "stock_check",
			}
			if item.Ingredient != nil {
				entry.Ingredient = item.Ingredient.Name
				entry.Unit = item.Ingredient.Unit
			}
			entries = append(entries, entry)
		}
	}
	for _, request := range requests {
		if request.FulfilledAt == nil {
			continue
		}
		branchName := ""
		if request.Branch != nil {
			branchName = request.Branch.Name
		}
		var requestedBy *string
		if request.Requester != nil {
			name := request.Requester.Name
			requestedBy = &name
		}
		for _, item := range request.Items {
			if !item.Fulfilled {
				continue
			}
			entry := Entry{
				ID:          requestPrefix + item.ID.String(),
				CheckedAt:   *request.FulfilledAt,
				BranchName:  branchName,
				StaffName:   systemStaff,
				Quantity:    item.Quantity,
				Source:      "request",
				RequestedBy: requestedBy,
			}
			if item.Ingredient != nil {
				entry.Ingredient = item.Ingredient.Name
				entry.Unit = item.Ingredient.Unit
			}
			entries = append(entries, entry)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CheckedAt.After(entries[j].CheckedAt)
	})
	return entries, nil
}

// resolveStaffNames loads display names for checks that didn't capture one.
// Lookup failures fall through to the unknown placeholder.
func (s *service) resolveStaffNames(ctx context.Context, checks []models.StockCheck) map[uuid.UUID]string {
	missing := make([]uuid.UUID, 0)
	seen := map[uuid.UUID]struct{}{}
	for _, check := range checks {
		if check.StaffName != nil && *check.StaffName != "" {
			continue
		}
		if _, ok := seen[check.UserID]; ok {
			continue
		}
		seen[check.UserID] = struct{}{}
		missing = append(missing, check.UserID)
	}
	if len(missing) == 0 {
		return nil
	}

	users, err := s.repo.UsersByIDs(ctx, missing)
	if err != nil {
		s.logg.Error(ctx, "failed to resolve staff names", err)
		return nil
	}
	names := make(map[uuid.UUID]string, len(users))
	for _, user := range users {
		if user.Name != "" {
			names[user.ID] = user.Name
			continue
		}
		if user.Email != "" {
			names[user.ID] = user.Email
		}
	}
	return names
}

func staffNameForCheck(check models.StockCheck, names map[uuid.UUID]string) string {
	if check.StaffName != nil && *check.StaffName != "" {
		return *check.StaffName
	}
	if name, ok := names[check.UserID]; ok && name != "" {
		return name
	}
	return unknownStaff
}

// DeleteEntry removes a feed entry at its source. Stock check entries hard
// delete the underlying item; request entries only clear the fulfilled flag
// so the request record itself survives.
func (s *service) DeleteEntry(ctx context.Context, entryID string) error {
	switch {
	case strings.HasPrefix(entryID, checkPrefix):
		itemID, err := uuid.Parse(strings.TrimPrefix(entryID, checkPrefix))
		if err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "malformed entry id")
		}
		deleted, err := s.repo.DeleteStockCheckItem(ctx, itemID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete stock check item")
		}
		if !deleted {
			return pkgerrors.New(pkgerrors.CodeNotFound, "activity entry not found")
		}
		return nil
	case strings.HasPrefix(entryID, requestPrefix):
		itemID, err := uuid.Parse(strings.TrimPrefix(entryID, requestPrefix))
		if err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "malformed entry id")
		}
		updated, err := s.repo.UnfulfillRequestItem(ctx, itemID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unfulfill request item")
		}
		if !updated {
			return pkgerrors.New(pkgerrors.CodeNotFound, "activity entry not found")
		}
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "unrecognized entry id")
	}
}
