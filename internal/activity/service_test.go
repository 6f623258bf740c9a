package activity

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/calderacafe/brewstock-backend/pkg/db/models"
	pkgerrors "github.com/calderacafe/brewstock-backend/pkg/errors"
	"github.com/calderacafe/brewstock-backend/pkg/logger"
)

type fakeRepository struct {
	checks      []models.StockCheck
	requests    []models.Request
	users       []models.User
	checksErr   error
	requestsErr error
	deleted     []uuid.UUID
	unfulfilled []uuid.UUID
	deleteOK    bool
	unfulfillOK bool
}

func (f *fakeRepository) RecentStockChecks(ctx context.Context, branchID uuid.UUID, limit int) ([]models.StockCheck, error) {
	if f.checksErr != nil {
		return nil, f.checksErr
	}
	return f.checks, nil
}

func (f *fakeRepository) RecentFulfilledRequests(ctx context.Context, branchID uuid.UUID, limit int) ([]models.Request, error) {
	if f.requestsErr != nil {
		return nil, f.requestsErr
	}
	return f.requests, nil
}

func (f *fakeRepository) UsersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	return f.users, nil
}

func (f *fakeRepository) DeleteStockCheckItem(ctx context.Context, itemID uuid.UUID) (bool, error) {
	f.deleted = append(f.deleted, itemID)
	return f.deleteOK, nil
}

func (f *fakeRepository) UnfulfillRequestItem(ctx context.Context, itemID uuid.UUID) (bool, error) {
	f.unfulfilled = append(f.unfulfilled, itemID)
	return f.unfulfillOK, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newFeedService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func stockCheckAt(at time.Time, staffName *string, items ...models.StockCheckItem) models.StockCheck {
	return models.StockCheck{
		ID:        uuid.New(),
		BranchID:  uuid.New(),
		UserID:    uuid.New(),
		StaffName: staffName,
		CheckedAt: at,
		Items:     items,
		Branch:    &models.Branch{Name: "Harbor"},
	}
}

func checkItem(qty int) models.StockCheckItem {
	return models.StockCheckItem{
		ID:         uuid.New(),
		OnHandQty:  qty,
		Ingredient: &models.Ingredient{Name: "Espresso Beans", Unit: "kg"},
	}
}

func fulfilledRequestAt(at time.Time, items ...models.RequestItem) models.Request {
	return models.Request{
		ID:          uuid.New(),
		BranchID:    uuid.New(),
		Status:      "fulfilled",
		FulfilledAt: &at,
		Items:       items,
		Branch:      &models.Branch{Name: "Harbor"},
		Requester:   &models.User{Name: "Dana"},
	}
}

func fulfilledItem(qty int) models.RequestItem {
	return models.RequestItem{
		ID:         uuid.New(),
		Quantity:   qty,
		Fulfilled:  true,
		Ingredient: &models.Ingredient{Name: "Oat Milk", Unit: "l"},
	}
}

func TestFeedMergesLedgersTimeDescending(t *testing.T) {
	t1 := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(2 * time.Hour)
	name := "Alex"
	repo := &fakeRepository{
		checks:   []models.StockCheck{stockCheckAt(t1, &name, checkItem(4))},
		requests: []models.Request{fulfilledRequestAt(t2, fulfilledItem(6))},
	}
	svc := newFeedService(t, repo)

	entries, err := svc.Feed(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	// request fulfilled later, so it comes first
	if entries[0].Source != "request" || entries[1].Source != "stock_check" {
		t.Fatalf("unexpected ordering: %s then %s", entries[0].Source, entries[1].Source)
	}
	if entries[0].StaffName != "System" {
		t.Fatalf("request entries carry the system staff name, got %q", entries[0].StaffName)
	}
	if entries[0].RequestedBy == nil || *entries[0].RequestedBy != "Dana" {
		t.Fatal("request entry must name the requester")
	}
	if entries[1].StaffName != "Alex" {
		t.Fatalf("expected recorded staff name, got %q", entries[1].StaffName)
	}
}

func TestFeedEntryIDsCarrySourcePrefix(t *testing.T) {
	now := time.Now().UTC()
	repo := &fakeRepository{
		checks:   []models.StockCheck{stockCheckAt(now, nil, checkItem(1))},
		requests: []models.Request{fulfilledRequestAt(now, fulfilledItem(2))},
	}
	svc := newFeedService(t, repo)

	entries, err := svc.Feed(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	var sawCheck, sawRequest bool
	for _, entry := range entries {
		switch {
		case len(entry.ID) > len("check-") && entry.ID[:len("check-")] == "check-":
			sawCheck = true
		case len(entry.ID) > len("request-") && entry.ID[:len("request-")] == "request-":
			sawRequest = true
		}
	}
	if !sawCheck || !sawRequest {
		t.Fatalf("expected both prefixes, got check=%v request=%v", sawCheck, sawRequest)
	}
}

func TestFeedResolvesStaffNameFromUsers(t *testing.T) {
	now := time.Now().UTC()
	check := stockCheckAt(now, nil, checkItem(3))
	repo := &fakeRepository{
		checks: []models.StockCheck{check},
		users:  []models.User{{ID: check.UserID, Name: "Priya"}},
	}
	svc := newFeedService(t, repo)

	entries, err := svc.Feed(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if entries[0].StaffName != "Priya" {
		t.Fatalf("expected resolved name, got %q", entries[0].StaffName)
	}
}

func TestFeedFallsBackToEmailThenUnknown(t *testing.T) {
	now := time.Now().UTC()
	withEmail := stockCheckAt(now, nil, checkItem(3))
	unknown := stockCheckAt(now.Add(-time.Minute), nil, checkItem(1))
	repo := &fakeRepository{
		checks: []models.StockCheck{withEmail, unknown},
		users:  []models.User{{ID: withEmail.UserID, Email: "sam@example.com"}},
	}
	svc := newFeedService(t, repo)

	entries, err := svc.Feed(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if entries[0].StaffName != "sam@example.com" {
		t.Fatalf("expected email fallback, got %q", entries[0].StaffName)
	}
	if entries[1].StaffName != "Unknown Staff" {
		t.Fatalf("expected unknown placeholder, got %q", entries[1].StaffName)
	}
}

func TestFeedSkipsUnfulfilledRequestItems(t *testing.T) {
	now := time.Now().UTC()
	request := fulfilledRequestAt(now, fulfilledItem(2), models.RequestItem{
		ID:         uuid.New(),
		Quantity:   5,
		Fulfilled:  false,
		Ingredient: &models.Ingredient{Name: "Sugar", Unit: "kg"},
	})
	repo := &fakeRepository{requests: []models.Request{request}}
	svc := newFeedService(t, repo)

	entries, err := svc.Feed(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
}

func TestFeedDegradesToEmptyOnLedgerFailure(t *testing.T) {
	repo := &fakeRepository{
		checksErr:   errors.New("postgres down"),
		requestsErr: errors.New("postgres down"),
	}
	svc := newFeedService(t, repo)

	entries, err := svc.Feed(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Feed must not fail on ledger errors: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty feed, got %d entries", len(entries))
	}
}

func TestDeleteEntryHardDeletesCheckItems(t *testing.T) {
	repo := &fakeRepository{deleteOK: true}
	svc := newFeedService(t, repo)

	itemID := uuid.New()
	if err := svc.DeleteEntry(context.Background(), "check-"+itemID.String()); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != itemID {
		t.Fatalf("expected hard delete of %s, got %v", itemID, repo.deleted)
	}
	if len(repo.unfulfilled) != 0 {
		t.Fatal("check entries must not touch request items")
	}
}

func TestDeleteEntryUnfulfillsRequestItems(t *testing.T) {
	repo := &fakeRepository{unfulfillOK: true}
	svc := newFeedService(t, repo)

	itemID := uuid.New()
	if err := svc.DeleteEntry(context.Background(), "request-"+itemID.String()); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}
	if len(repo.unfulfilled) != 1 || repo.unfulfilled[0] != itemID {
		t.Fatalf("expected unfulfill of %s, got %v", itemID, repo.unfulfilled)
	}
	if len(repo.deleted) != 0 {
		t.Fatal("request entries must never hard delete")
	}
}

func TestDeleteEntryRejectsUnknownPrefix(t *testing.T) {
	svc := newFeedService(t, &fakeRepository{})

	err := svc.DeleteEntry(context.Background(), "ledger-"+uuid.NewString())
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteEntryMissingRow(t *testing.T) {
	svc := newFeedService(t, &fakeRepository{})

	err := svc.DeleteEntry(context.Background(), "check-"+uuid.NewString())
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
