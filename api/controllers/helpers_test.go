package controllers

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/calderacafe/brewstock-backend/api/middleware"
	"github.com/calderacafe/brewstock-backend/pkg/enums"
	"github.com/calderacafe/brewstock-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func addRouteParam(req *http.Request, name, value string) *http.Request {
	routeCtx := chi.RouteContext(req.Context())
	if routeCtx == nil {
		routeCtx = chi.NewRouteContext()
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	}
	routeCtx.URLParams.Add(name, value)
	return req
}

func asActor(req *http.Request, userID uuid.UUID, role enums.StaffRole) *http.Request {
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, string(role))
	return req.WithContext(ctx)
}

func withBranchClaim(ctx context.Context, branchID uuid.UUID) context.Context {
	return middleware.WithBranchID(ctx, branchID.String())
}
