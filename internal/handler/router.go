package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"skillswap/backend/internal/service"
	"skillswap/backend/pkg/auth"
	"skillswap/backend/pkg/logger"
	"skillswap/backend/pkg/metrics"
)

// RouterDeps bundles everything the HTTP surface needs.
type RouterDeps struct {
	TokenValidator auth.TokenValidator
	Users          service.UserService
	Wallet         *WalletHandler
	UserH          *UserHandler
	Sessions       *SessionHandler
	Notifications  *NotificationHandler
	Posts          *PostHandler
	Payments       *PaymentHandler
	Detections     *DetectionHandler
	WS             *WSHandler
	Logger         *logger.Logger
	Metrics        *metrics.Metrics
}

// NewRouter assembles the API. The payment callback and the health and
// metrics endpoints are public; everything else requires a bearer token.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(logger.Middleware(deps.Logger))
	r.Use(metrics.Middleware(deps.Metrics))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondData(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// The gateway redirects the payer's browser here; no bearer token.
	r.Get("/api/payments/callback", deps.Payments.Callback)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(deps.TokenValidator))

		// Detector reports carry a service token, not a user account.
		r.Route("/api/detections", deps.Detections.Routes)

		r.Group(func(r chi.Router) {
			r.Use(WithUser(deps.Users))

			r.Route("/api/users", deps.UserH.Routes)
			r.Route("/api/wallet", deps.Wallet.Routes)
			r.Route("/api/sessions", func(r chi.Router) {
				deps.Sessions.Routes(r)
				r.Get("/{id}/ws", deps.WS.Join)
			})
			r.Route("/api/notifications", deps.Notifications.Routes)
			r.Route("/api/posts", deps.Posts.Routes)
			r.Route("/api/payments", deps.Payments.Routes)
		})
	})

	return r
}
