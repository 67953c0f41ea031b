package router

import (
	"log"
	"net/http"
	"time"

	"github.com/cristijna/SaboresGo/internal/config"
	"github.com/cristijna/SaboresGo/internal/database"
	"github.com/cristijna/SaboresGo/internal/enum"
	"github.com/cristijna/SaboresGo/internal/events"
	"github.com/cristijna/SaboresGo/internal/handler"
	mw "github.com/cristijna/SaboresGo/internal/middleware"
	"github.com/cristijna/SaboresGo/internal/service"
	"github.com/cristijna/SaboresGo/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication, profile and role-based middleware as needed.
// Order events go to pub; pass events.Nop{} to drop them.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub, flow *service.Workflow, pub events.Publisher) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Services
	cartService := service.NewCartService(pool, queries,
		func(db database.DBTX) service.CartStore { return database.New(db) },
		flow, pub)
	statusService := service.NewOrderStatusService(queries, flow, pub)
	weeklyMenuService := service.NewWeeklyMenuService(pool, queries,
		func(db database.DBTX) service.WeeklyMenuStore { return database.New(db) })
	registrationService := service.NewRegistrationService(pool,
		func(db database.DBTX) service.RegistrationStore { return database.New(db) })
	agreementService := service.NewAgreementService(queries)
	reportsService := service.NewReportsService(queries, flow, cfg.Location())

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	catalogHandler := handler.NewCatalogHandler(queries)
	catalogHandler.RegisterRoutes(r)

	authHandler := handler.NewAuthHandler(queries, registrationService, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/pedidos", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	agreementHandler := handler.NewAgreementHandler(agreementService)

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Supplier panel
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleSupplier))
			r.Use(mw.RequireProfile)

			dishHandler := handler.NewDishHandler(queries)
			r.Route("/proveedor/platos", dishHandler.RegisterRoutes)

			supplierOrderHandler := handler.NewSupplierOrderHandler(queries, statusService)
			r.Route("/proveedor/pedidos", supplierOrderHandler.RegisterRoutes)
		})

		// Customer cart and profile
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleCustomer))
			r.Use(mw.RequireProfile)

			cartHandler := handler.NewCartHandler(cartService)
			cartHandler.RegisterRoutes(r)
			agreementHandler.RegisterCustomerRoutes(r)
		})

		// Weekly menu rejects non-customers itself
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireProfile)

			weeklyMenuHandler := handler.NewWeeklyMenuHandler(weeklyMenuService)
			r.Route("/menu-semanal", weeklyMenuHandler.RegisterRoutes)
		})

		// Admin panel
		r.Route("/admin", func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleAdmin))

			r.Route("/convenios", agreementHandler.RegisterRoutes)

			adminHandler := handler.NewAdminHandler(reportsService, queries, statusService)
			adminHandler.RegisterRoutes(r)
		})
	})

	log.Printf("Router initialized (order flow %v, time zone %s)", flow.States(), cfg.Location())
	return r
}

// Timeouts applied by the HTTP server in cmd/server.
const (
	ReadTimeout  = 15 * time.Second
	WriteTimeout = 15 * time.Second
	IdleTimeout  = 60 * time.Second
)
