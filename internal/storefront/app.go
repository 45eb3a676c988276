package storefront

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"Ubermelon/internal/catalog"
	"Ubermelon/internal/session"
	"Ubermelon/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	Cookies            *session.Cookies
	LoginRatePerMinute int
	TrustProxy         bool
}

const (
	readyTimeout       = 1 * time.Second
	defaultLoginPerMin = 5
)

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	r := chi.NewRouter()

	setupMiddleware(r, deps)
	setupMetrics(r, s, deps)

	r.Get("/healthz", healthz)
	r.Get("/readyz", s.readyz)

	melons := &catalog.Server{Catalog: s.Catalog, Log: s.Log}
	r.Mount("/api/melons", melons.Routes())

	perMin := deps.LoginRatePerMinute
	if perMin <= 0 {
		perMin = defaultLoginPerMin
	}
	loginLimiter := kit.NewIPRateLimiter(perMin, time.Minute)

	r.Group(func(sr chi.Router) {
		sr.Use(deps.Cookies.Middleware)

		sr.Get("/", s.index)
		sr.Get("/melons", s.listMelons)
		sr.Get("/melon/{id}", s.showMelon)
		sr.Get("/cart", s.showCart)
		sr.Get("/add_to_cart/{id}", s.addToCart)
		sr.Post("/add_to_cart/{id}", s.addToCart)
		sr.Get("/login", s.showLogin)
		sr.With(loginLimiter.Middleware).Post("/login", s.processLogin)
		sr.Get("/checkout", s.checkout)

		sr.Route("/api/cart", func(ar chi.Router) {
			ar.Get("/", s.apiCart)
			ar.Delete("/", s.apiResetCart)
			ar.Post("/{id}", s.apiAddToCart)
		})
	})

	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	if deps.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log, "/healthz", "/readyz", "/metrics"))
}

func setupMetrics(r *chi.Mux, s *Server, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service))
	s.metrics = newShopMetrics(deps.Registry)

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.Sessions.Ping(ctx); err != nil {
		if s.Log != nil {
			s.Log.Warn("readyz failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}
