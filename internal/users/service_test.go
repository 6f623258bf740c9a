package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calderacafe/brewstock-backend/pkg/config"
	"github.com/calderacafe/brewstock-backend/pkg/db/models"
	"github.com/calderacafe/brewstock-backend/pkg/enums"
	pkgerrors "github.com/calderacafe/brewstock-backend/pkg/errors"
)

type fakeStaffRepo struct {
	byEmail    map[string]*models.User
	created    []*models.User
	setActive  []bool
	activeOK   bool
}

func newFakeStaffRepo() *fakeStaffRepo {
	return &fakeStaffRepo{byEmail: map[string]*models.User{}}
}

func (f *fakeStaffRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = uuid.New()
	f.created = append(f.created, user)
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeStaffRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := f.byEmail[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStaffRepo) List(ctx context.Context) ([]models.User, error) {
	result := make([]models.User, 0, len(f.created))
	for _, user := range f.created {
		result = append(result, *user)
	}
	return result, nil
}

func (f *fakeStaffRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) (bool, error) {
	f.setActive = append(f.setActive, active)
	return f.activeOK, nil
}

func fastPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newStaffService(t *testing.T, repo staffRepository) Service {
	t.Helper()
	svc, err := NewService(repo, fastPasswordConfig())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestCreateStaffHashesPasswordAndNormalizesEmail(t *testing.T) {
	repo := newFakeStaffRepo()
	svc := newStaffService(t, repo)

	branchID := uuid.New()
	dto, err := svc.CreateStaff(context.Background(), CreateStaffInput{
		Email:    " Priya@Example.com ",
		Name:     "Priya",
		Password: "house-blend-No9",
		Role:     enums.StaffRoleStaff,
		BranchID: &branchID,
	})
	if err != nil {
		t.Fatalf("CreateStaff: %v", err)
	}
	if dto.Email != "priya@example.com" {
		t.Fatalf("expected normalized email, got %q", dto.Email)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one user created, got %d", len(repo.created))
	}
	if repo.created[0].PasswordHash == "house-blend-No9" || repo.created[0].PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}
}

func TestCreateStaffRejectsDuplicateEmail(t *testing.T) {
	repo := newFakeStaffRepo()
	repo.byEmail["priya@example.com"] = &models.User{ID: uuid.New(), Email: "priya@example.com"}
	svc := newStaffService(t, repo)

	branchID := uuid.New()
	_, err := svc.CreateStaff(context.Background(), CreateStaffInput{
		Email:    "priya@example.com",
		Name:     "Priya",
		Password: "house-blend-No9",
		Role:     enums.StaffRoleStaff,
		BranchID: &branchID,
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateStaffBranchRules(t *testing.T) {
	svc := newStaffService(t, newFakeStaffRepo())
	branchID := uuid.New()

	_, err := svc.CreateStaff(context.Background(), CreateStaffInput{
		Email:    "owner@example.com",
		Name:     "Owner",
		Password: "house-blend-No9",
		Role:     enums.StaffRoleOwner,
		BranchID: &branchID,
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for owner with branch, got %v", err)
	}

	_, err = svc.CreateStaff(context.Background(), CreateStaffInput{
		Email:    "staff@example.com",
		Name:     "Staff",
		Password: "house-blend-No9",
		Role:     enums.StaffRoleStaff,
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for staff without branch, got %v", err)
	}
}

func TestCreateStaffShortPassword(t *testing.T) {
	svc := newStaffService(t, newFakeStaffRepo())
	branchID := uuid.New()

	_, err := svc.CreateStaff(context.Background(), CreateStaffInput{
		Email:    "staff@example.com",
		Name:     "Staff",
		Password: "short",
		Role:     enums.StaffRoleStaff,
		BranchID: &branchID,
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeactivateUnknownUser(t *testing.T) {
	repo := newFakeStaffRepo()
	repo.activeOK = false
	svc := newStaffService(t, repo)

	err := svc.Deactivate(context.Background(), uuid.New())
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeactivateThenReactivate(t *testing.T) {
	repo := newFakeStaffRepo()
	repo.activeOK = true
	svc := newStaffService(t, repo)

	userID := uuid.New()
	if err := svc.Deactivate(context.Background(), userID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if err := svc.Reactivate(context.Background(), userID); err != nil {
		t.Fatalf("Reactivate: %v", err)
	}
	if len(repo.setActive) != 2 || repo.setActive[0] != false || repo.setActive[1] != true {
		t.Fatalf("unexpected active transitions %v", repo.setActive)
	}
}
