package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/calderacafe/brewstock-backend/api/responses"
	"github.com/calderacafe/brewstock-backend/api/validators"
	"github.com/calderacafe/brewstock-backend/internal/catalog"
	pkgerrors "github.com/calderacafe/brewstock-backend/pkg/errors"
	"github.com/calderacafe/brewstock-backend/pkg/logger"
)

type ingredientCreateRequest struct {
	Name        string           `json:"name" validate:"required,min=1,max=120"`
	Unit        string           `json:"unit" validate:"required,min=1,max=32"`
	Category    *string          `json:"category,omitempty"`
	CostPerUnit *decimal.Decimal `json:"cost_per_unit,omitempty"`
}

type ingredientUpdateRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Unit        *string          `json:"unit,omitempty" validate:"omitempty,min=1,max=32"`
	Category    *string          `json:"category,omitempty"`
	CostPerUnit *decimal.Decimal `json:"cost_per_unit,omitempty"`
}

type categoryCreateRequest struct {
	Name string `json:"name" validate:"required,min=1,max=80"`
}

// IngredientCreate registers a new ingredient, creating its category on the fly.
func IngredientCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var body ingredientCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ingredient, err := svc.CreateIngredient(r.Context(), catalog.CreateIngredientInput{
			Name:         validators.SanitizeString(body.Name, 120),
			Unit:         validators.SanitizeString(body.Unit, 32),
			CategoryName: body.Category,
			CostPerUnit:  body.CostPerUnit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, ingredient)
	}
}

// IngredientList returns all ingredients, hiding archived ones by default.
func IngredientList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		includeArchived, err := validators.ParseQueryBool(r, "includeArchived", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListIngredients(r.Context(), includeArchived)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// IngredientUpdate edits an ingredient's mutable fields.
func IngredientUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		ingredientID, err := pathUUID(r, "ingredientID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body ingredientUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ingredient, err := svc.UpdateIngredient(r.Context(), catalog.UpdateIngredientInput{
			IngredientID: ingredientID,
			Name:         body.Name,
			Unit:         body.Unit,
			CategoryName: body.Category,
			CostPerUnit:  body.CostPerUnit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ingredient)
	}
}

// IngredientArchive retires an ingredient from active use.
func IngredientArchive(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		ingredientID, err := pathUUID(r, "ingredientID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ArchiveIngredient(r.Context(), ingredientID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "archived"})
	}
}

// CategoryCreate registers a named ingredient category.
func CategoryCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var body categoryCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.CreateCategory(r.Context(), body.Name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}

// CategoryList returns every category.
func CategoryList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		list, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
