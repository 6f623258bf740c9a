package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/calderacafe/brewstock-backend/api/controllers"
	webhookcontrollers "github.com/calderacafe/brewstock-backend/api/controllers/webhooks"
	"github.com/calderacafe/brewstock-backend/api/middleware"
	"github.com/calderacafe/brewstock-backend/internal/activity"
	"github.com/calderacafe/brewstock-backend/internal/auth"
	"github.com/calderacafe/brewstock-backend/internal/branches"
	"github.com/calderacafe/brewstock-backend/internal/catalog"
	"github.com/calderacafe/brewstock-backend/internal/inventory"
	"github.com/calderacafe/brewstock-backend/internal/notifications"
	"github.com/calderacafe/brewstock-backend/internal/purchaseorders"
	"github.com/calderacafe/brewstock-backend/internal/reorder"
	"github.com/calderacafe/brewstock-backend/internal/requests"
	"github.com/calderacafe/brewstock-backend/internal/stockchecks"
	"github.com/calderacafe/brewstock-backend/internal/users"
	"github.com/calderacafe/brewstock-backend/pkg/config"
	"github.com/calderacafe/brewstock-backend/pkg/enums"
	"github.com/calderacafe/brewstock-backend/pkg/logger"
)

// Services groups everything the router mounts.
type Services struct {
	Auth           auth.Service
	Users          users.Service
	Branches       branches.Service
	Catalog        catalog.Service
	Inventory      inventory.Service
	StockChecks    stockchecks.Service
	StockCheckRepo stockchecks.Repository
	Requests       requests.Service
	Reorder        reorder.Service
	PurchaseOrders purchaseorders.Service
	Activity       activity.Service
	Notifications  notifications.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, svcs Services) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.Login(svcs.Auth, logg))
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stock-level", webhookcontrollers.StockLevel(svcs.Reorder, svcs.StockCheckRepo, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/staff", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.StaffRoleOwner, logg))
			r.Post("/", controllers.StaffCreate(svcs.Users, logg))
			r.Get("/", controllers.StaffList(svcs.Users, logg))
			r.Post("/{userID}/deactivate", controllers.StaffDeactivate(svcs.Users, logg))
			r.Post("/{userID}/reactivate", controllers.StaffReactivate(svcs.Users, logg))
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/ingredients", controllers.IngredientList(svcs.Catalog, logg))
			r.Get("/categories", controllers.CategoryList(svcs.Catalog, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.StaffRoleManager, logg))
				r.Post("/ingredients", controllers.IngredientCreate(svcs.Catalog, logg))
				r.Patch("/ingredients/{ingredientID}", controllers.IngredientUpdate(svcs.Catalog, logg))
				r.Post("/ingredients/{ingredientID}/archive", controllers.IngredientArchive(svcs.Catalog, logg))
				r.Post("/categories", controllers.CategoryCreate(svcs.Catalog, logg))
			})
		})

		r.Route("/branches", func(r chi.Router) {
			r.Get("/", controllers.BranchList(svcs.Branches, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.StaffRoleOwner, logg))
				r.Post("/", controllers.BranchCreate(svcs.Branches, logg))
				r.Delete("/{branchID}", controllers.BranchDelete(svcs.Branches, logg))
			})

			r.Route("/{branchID}", func(r chi.Router) {
				r.Get("/", controllers.BranchGet(svcs.Branches, logg))
				r.Get("/inventory", controllers.InventoryList(svcs.Inventory, logg))
				r.Get("/activity", controllers.ActivityFeed(svcs.Activity, logg))

				r.Post("/stock-checks", controllers.StockCheckRecord(svcs.StockChecks, logg))
				r.Get("/stock-checks", controllers.StockCheckList(svcs.StockChecks, logg))

				r.Post("/requests", controllers.RequestCreate(svcs.Requests, logg))
				r.Get("/requests", controllers.RequestList(svcs.Requests, logg))

				r.Route("/notifications", func(r chi.Router) {
					r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
					r.Post("/{notificationID}/read", controllers.NotificationMarkRead(svcs.Notifications, logg))
					r.Post("/read-all", controllers.NotificationMarkAllRead(svcs.Notifications, logg))
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(enums.StaffRoleManager, logg))
					r.Patch("/", controllers.BranchUpdate(svcs.Branches, logg))
					r.Post("/toggle", controllers.BranchToggle(svcs.Branches, logg))
					r.Get("/activity-log", controllers.BranchActivityLog(svcs.Branches, logg))
					r.Put("/inventory/{ingredientID}/reorder-point", controllers.ReorderPointSet(svcs.Inventory, logg))
					r.Delete("/activity/{entryID}", controllers.ActivityDelete(svcs.Activity, logg))
					r.Get("/purchase-orders", controllers.PurchaseOrderDrafts(svcs.PurchaseOrders, logg))
				})
			})
		})

		r.Route("/requests/{requestID}", func(r chi.Router) {
			r.Get("/", controllers.RequestGet(svcs.Requests, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.StaffRoleManager, logg))
				r.Patch("/fulfillment", controllers.RequestFulfillment(svcs.Requests, logg))
				r.Post("/reopen", controllers.RequestReopen(svcs.Requests, logg))
			})
		})

		r.Route("/purchase-orders/{orderID}", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.StaffRoleManager, logg))
			r.Get("/", controllers.PurchaseOrderGet(svcs.PurchaseOrders, logg))
			r.Post("/order", controllers.PurchaseOrderMarkOrdered(svcs.PurchaseOrders, logg))
		})
	})

	return r
}
