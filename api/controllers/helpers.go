package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/calderacafe/brewstock-backend/api/middleware"
	"github.com/calderacafe/brewstock-backend/pkg/enums"
	pkgerrors "github.com/calderacafe/brewstock-backend/pkg/errors"
)

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}

// branchFromPath resolves the branch path segment. Actors pinned to a home
// branch may only operate on that branch; owners roam freely.
func branchFromPath(r *http.Request) (uuid.UUID, error) {
	branchID, err := pathUUID(r, "branchID")
	if err != nil {
		return uuid.Nil, err
	}
	role := enums.StaffRole(middleware.RoleFromContext(r.Context()))
	if role == enums.StaffRoleOwner {
		return branchID, nil
	}
	if home := middleware.BranchIDFromContext(r.Context()); home != "" && home != branchID.String() {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "branch out of scope")
	}
	return branchID, nil
}

func actorFromContext(r *http.Request) (uuid.UUID, string, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return userID, middleware.RoleFromContext(r.Context()), nil
}
