package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ewaste-pickup/controllers"
	"ewaste-pickup/middleware"
)

// Dependencies are the handlers and middleware inputs the router needs.
type Dependencies struct {
	Users    *controllers.UserController
	Orders   *controllers.OrderController
	Health   *controllers.HealthController
	Verifier middleware.TokenVerifier
	Limiter  middleware.Limiter
	Logger   *zap.Logger
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, deps Dependencies) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	observe := func(h http.HandlerFunc) http.Handler {
		return middleware.RequestLogger(logger)(middleware.Metrics(h))
	}
	router.Use(middleware.RequestLogger(logger), middleware.Metrics)

	router.HandleFunc("/health", deps.Health.Health).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api/auth").Subrouter()

	// Public routes
	public := api.NewRoute().Subrouter()
	if deps.Limiter != nil {
		public.Use(middleware.RateLimit(deps.Limiter))
	}
	public.HandleFunc("/register", deps.Users.Register).Methods(http.MethodPost)
	public.HandleFunc("/login", deps.Users.Login).Methods(http.MethodPost)

	// Protected routes
	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.AuthMiddleware(deps.Verifier))
	protected.HandleFunc("/profile", deps.Users.GetProfile).Methods(http.MethodGet)
	protected.HandleFunc("/profile", deps.Users.UpdateProfile).Methods(http.MethodPut)
	protected.HandleFunc("/profile/picture", deps.Users.UploadProfilePicture).Methods(http.MethodPost)

	// Order routes
	protected.HandleFunc("/orders", deps.Orders.CreateOrder).Methods(http.MethodPost)
	protected.HandleFunc("/orders", deps.Orders.GetOrders).Methods(http.MethodGet)
	protected.HandleFunc("/orders/{orderId}", deps.Orders.CancelOrder).Methods(http.MethodDelete)

	// Router middleware only wraps matched routes.
	router.NotFoundHandler = observe(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not found"}`))
	})
	router.MethodNotAllowedHandler = observe(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		_, _ = w.Write([]byte(`{"message":"Method not allowed"}`))
	})
}
