package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/calderacafe/brewstock-backend/api/responses"
	"github.com/calderacafe/brewstock-backend/internal/activity"
	pkgerrors "github.com/calderacafe/brewstock-backend/pkg/errors"
	"github.com/calderacafe/brewstock-backend/pkg/logger"
)

// ActivityFeed returns the merged stock check and request history for a branch.
func ActivityFeed(svc activity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activity service unavailable"))
			return
		}

		branchID, err := branchFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.Feed(r.Context(), branchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}

// ActivityDelete removes one feed entry by its prefixed id.
func ActivityDelete(svc activity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activity service unavailable"))
			return
		}

		entryID := strings.TrimSpace(chi.URLParam(r, "entryID"))
		if entryID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "entry id required"))
			return
		}

		if err := svc.DeleteEntry(r.Context(), entryID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
