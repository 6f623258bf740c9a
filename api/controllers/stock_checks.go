package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/calderacafe/brewstock-backend/api/responses"
	"github.com/calderacafe/brewstock-backend/api/validators"
	"github.com/calderacafe/brewstock-backend/internal/stockchecks"
	pkgerrors "github.com/calderacafe/brewstock-backend/pkg/errors"
	"github.com/calderacafe/brewstock-backend/pkg/logger"
)

type stockCheckItemRequest struct {
	IngredientID uuid.UUID `json:"ingredient_id" validate:"required"`
	Qty          int       `json:"qty" validate:"min=0"`
}

type stockCheckRequest struct {
	StaffName *string                 `json:"staff_name,omitempty"`
	CheckedAt *time.Time              `json:"checked_at,omitempty"`
	Items     []stockCheckItemRequest `json:"items" validate:"required,min=1,dive"`
}

// StockCheckRecord persists a counting session and the resulting inventory levels.
func StockCheckRecord(svc stockchecks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock check service unavailable"))
			return
		}

		branchID, err := branchFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, role, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body stockCheckRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		checkedAt := time.Now().UTC()
		if body.CheckedAt != nil {
			checkedAt = *body.CheckedAt
		}

		items := make([]stockchecks.RecordItemInput, 0, len(body.Items))
		for _, item := range body.Items {
			items = append(items, stockchecks.RecordItemInput{
				IngredientID: item.IngredientID,
				Qty:          item.Qty,
			})
		}

		check, err := svc.Record(r.Context(), stockchecks.RecordInput{
			BranchID:  branchID,
			UserID:    actorID,
			StaffName: body.StaffName,
			ActorRole: role,
			CheckedAt: checkedAt,
			Items:     items,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, check)
	}
}

// StockCheckList returns recent counting sessions for a branch.
func StockCheckList(svc stockchecks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock check service unavailable"))
			return
		}

		branchID, err := branchFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		checks, err := svc.List(r.Context(), branchID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, checks)
	}
}
