package controllers

import (
	"net/http"

	"github.com/calderacafe/brewstock-backend/api/responses"
	"github.com/calderacafe/brewstock-backend/api/validators"
	"github.com/calderacafe/brewstock-backend/internal/inventory"
	pkgerrors "github.com/calderacafe/brewstock-backend/pkg/errors"
	"github.com/calderacafe/brewstock-backend/pkg/logger"
)

type reorderPointRequest struct {
	ReorderPt int `json:"reorder_pt" validate:"min=0"`
}

// InventoryList returns the current stock levels for a branch.
func InventoryList(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		branchID, err := branchFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListByBranch(r.Context(), branchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// ReorderPointSet updates the low-stock threshold for one branch ingredient.
func ReorderPointSet(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		branchID, err := branchFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ingredientID, err := pathUUID(r, "ingredientID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body reorderPointRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetReorderPoint(r.Context(), branchID, ingredientID, body.ReorderPt); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"reorder_pt": body.ReorderPt})
	}
}
