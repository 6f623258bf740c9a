package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/calderacafe/brewstock-backend/api/responses"
	"github.com/calderacafe/brewstock-backend/api/validators"
	"github.com/calderacafe/brewstock-backend/internal/requests"
	pkgerrors "github.com/calderacafe/brewstock-backend/pkg/errors"
	"github.com/calderacafe/brewstock-backend/pkg/logger"
)

type requestItemRequest struct {
	IngredientID   uuid.UUID `json:"ingredient_id" validate:"required"`
	Qty            int       `json:"qty" validate:"min=1"`
	CurrentQty     *int      `json:"current_qty,omitempty"`
	RecommendedQty *int      `json:"recommended_qty,omitempty"`
	Note           *string   `json:"note,omitempty"`
}

type requestCreateRequest struct {
	Comment *string              `json:"comment,omitempty"`
	Items   []requestItemRequest `json:"items" validate:"required,min=1,dive"`
}

type fulfillmentEditRequest struct {
	ItemID    uuid.UUID `json:"item_id" validate:"required"`
	Qty       *int      `json:"qty,omitempty" validate:"omitempty,min=1"`
	Fulfilled *bool     `json:"fulfilled,omitempty"`
}

type fulfillmentRequest struct {
	Edits []fulfillmentEditRequest `json:"edits" validate:"required,min=1,dive"`
}

// RequestCreate records a staff restock request for a branch.
func RequestCreate(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "request service unavailable"))
			return
		}

		branchID, err := branchFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body requestCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]requests.CreateItemInput, 0, len(body.Items))
		for _, item := range body.Items {
			items = append(items, requests.CreateItemInput{
				IngredientID:   item.IngredientID,
				Qty:            item.Qty,
				CurrentQty:     item.CurrentQty,
				RecommendedQty: item.RecommendedQty,
				Note:           item.Note,
			})
		}

		request, err := svc.Create(r.Context(), requests.CreateInput{
			BranchID: branchID,
			UserID:   actorID,
			Comment:  body.Comment,
			Items:    items,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, request)
	}
}

// RequestList returns recent requests for a branch.
func RequestList(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "request service unavailable"))
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

		list, err := svc.List(r.Context(), branchID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// RequestGet returns one request with its items.
func RequestGet(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "request service unavailable"))
			return
		}

		requestID, err := pathUUID(r, "requestID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Get(r.Context(), requestID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

// RequestFulfillment applies per-item edits and reconciles the request status.
func RequestFulfillment(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "request service unavailable"))
			return
		}

		requestID, err := pathUUID(r, "requestID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, role, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body fulfillmentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		edits := make([]requests.FulfillmentEdit, 0, len(body.Edits))
		for _, edit := range body.Edits {
			edits = append(edits, requests.FulfillmentEdit{
				ItemID:    edit.ItemID,
				Qty:       edit.Qty,
				Fulfilled: edit.Fulfilled,
			})
		}

		request, err := svc.UpdateFulfillment(r.Context(), requests.UpdateFulfillmentInput{
			RequestID:   requestID,
			ActorUserID: actorID,
			ActorRole:   role,
			Edits:       edits,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

// RequestReopen moves a fulfilled request back to pending.
func RequestReopen(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "request service unavailable"))
			return
		}

		requestID, err := pathUUID(r, "requestID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, role, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Reopen(r.Context(), requests.ReopenInput{
			RequestID:   requestID,
			ActorUserID: actorID,
			ActorRole:   role,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "pending"})
	}
}
