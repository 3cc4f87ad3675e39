package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/ruralpay/minibank/internal/config"
	"github.com/ruralpay/minibank/internal/metrics"
	"github.com/ruralpay/minibank/internal/middleware"
)

const metricsPath = "/metrics"

// RouterDeps is everything NewRouter wires together.
type RouterDeps struct {
	Ledger   *LedgerHandler
	Auth     *AuthHandler
	Health   *HealthHandler
	Sessions *middleware.SessionAuth
	Limiter  *middleware.RateLimiter
	Metrics  *metrics.Collector
	CORS     config.CORSConfig
	Logger   logrus.FieldLogger
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.PeerAddr)
	r.Use(chimw.RealIP)
	r.Use(middleware.SecurityHeaders)
	if d.Logger != nil {
		r.Use(chimw.RequestLogger(&chimw.DefaultLogFormatter{Logger: d.Logger, NoColor: true}))
	}
	r.Use(middleware.Metrics(d.Metrics, metricsPath))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Get("/health", d.Health.Health)
	r.Method(http.MethodGet, metricsPath, d.Metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.With(d.Sessions.Optional).Get("/", d.Auth.Home)
	r.Get("/logout", d.Auth.Logout)

	r.Group(func(r chi.Router) {
		r.Use(d.Limiter.Handler)

		r.Post("/register", d.Auth.Register)
		r.Post("/login", d.Auth.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(d.Sessions.Require)

		r.Get("/balance", d.Ledger.GetBalance)
		r.Post("/deposit", d.Ledger.Deposit)
		r.Post("/withdraw", d.Ledger.Withdraw)
	})

	return r
}
