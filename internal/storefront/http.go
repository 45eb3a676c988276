package storefront

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Ubermelon/internal/cart"
	"Ubermelon/internal/catalog"
	"Ubermelon/internal/placeholder"
	"Ubermelon/internal/session"
	"Ubermelon/pkg/kit"
)

const (
	msgCheckoutUnavailable = "Sorry! Checkout will be implemented in a future version."
	msgLoginUnavailable    = "Oops! This needs to be implemented"

	maxFormBytes = 1 << 16
)

var errNoSession = errors.New("no session in request context")

type Server struct {
	Catalog  *catalog.Catalog
	Sessions session.Store
	Views    *Views
	Log      *zap.Logger

	metrics *shopMetrics
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionID(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	if err := s.Sessions.Reset(r.Context(), sid); err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "homepage", Page{Title: "Home"})
}

func (s *Server) listMelons(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "all_melons", Page{
		Title:  "All melons",
		Melons: s.Catalog.GetAll(),
	})
}

func (s *Server) showMelon(w http.ResponseWriter, r *http.Request) {
	m, err := s.Catalog.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "melon_details", Page{Title: m.CommonName, Melon: m})
}

func (s *Server) showCart(w http.ResponseWriter, r *http.Request) {
	sum, err := s.summary(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "cart", Page{Title: "Cart", Summary: sum})
}

// addToCart checks the id against the catalog before touching the session,
// so an unknown melon is a 404 here rather than a broken cart later.
func (s *Server) addToCart(w http.ResponseWriter, r *http.Request) {
	m, qty, err := s.add(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	s.flash(r, fmt.Sprintf("Melon successfully added to cart: %s (%d in cart).", m.CommonName, qty))
	kit.Redirect(w, r, "/cart")
}

func (s *Server) showLogin(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login", Page{Title: "Log in"})
}

func (s *Server) processLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		s.renderStatus(w, r, http.StatusBadRequest, "That form did not make sense to us.")
		return
	}

	err := placeholder.Login(r.Context(), placeholder.Credentials{
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
	})
	s.countUnavailable(err)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	kit.Redirect(w, r, "/melons")
}

func (s *Server) checkout(w http.ResponseWriter, r *http.Request) {
	sum, err := s.summary(r)
	if err != nil && !errors.Is(err, cart.ErrUnknownItemInCart) {
		s.renderError(w, r, err)
		return
	}

	err = placeholder.Checkout(r.Context(), sum)
	s.countUnavailable(err)
	switch {
	case errors.Is(err, placeholder.ErrNotImplemented):
		s.flash(r, msgCheckoutUnavailable)
	case err != nil:
		s.renderError(w, r, err)
		return
	}
	kit.Redirect(w, r, "/melons")
}

func (s *Server) add(r *http.Request) (catalog.Melon, int, error) {
	sid, err := sessionID(r)
	if err != nil {
		return catalog.Melon{}, 0, err
	}

	m, err := s.Catalog.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		return catalog.Melon{}, 0, err
	}

	qty, err := s.Sessions.AddItem(r.Context(), sid, m.ID)
	if err != nil {
		return catalog.Melon{}, 0, err
	}

	s.metrics.addedToCart(m.ID)
	return m, qty, nil
}

func (s *Server) summary(r *http.Request) (cart.Summary, error) {
	sid, err := sessionID(r)
	if err != nil {
		return cart.Summary{}, err
	}

	c, err := s.Sessions.Cart(r.Context(), sid)
	if err != nil {
		return cart.Summary{}, err
	}
	return cart.BuildSummary(c, s.Catalog)
}

func (s *Server) flash(r *http.Request, msg string) {
	sid, err := sessionID(r)
	if err != nil {
		return
	}
	if err := s.Sessions.AddFlash(r.Context(), sid, msg); err != nil && s.Log != nil {
		s.Log.Warn("add flash failed", zap.Error(err))
	}
}

func (s *Server) popFlashes(ctx context.Context) []string {
	sid, ok := session.IDFromContext(ctx)
	if !ok {
		return nil
	}

	msgs, err := s.Sessions.PopFlashes(ctx, sid)
	if err != nil {
		if s.Log != nil {
			s.Log.Warn("pop flashes failed", zap.Error(err))
		}
		return nil
	}
	return msgs
}

func (s *Server) countUnavailable(err error) {
	if f, ok := placeholder.FeatureOf(err); ok {
		s.metrics.featureUnavailable(string(f))
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, p Page) {
	p.Flashes = s.popFlashes(r.Context())

	if err := s.Views.Render(w, status, name, p); err != nil {
		if s.Log != nil {
			s.Log.Error("render failed", zap.Error(err), zap.String("page", name))
		}
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}

func (s *Server) renderStatus(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.render(w, r, status, "error", Page{
		Title:   http.StatusText(status),
		Status:  status,
		Message: msg,
	})
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := s.classify(r, err)
	s.renderStatus(w, r, status, msg)
}

// classify maps domain errors to a status and a message safe to show.
// Anything unrecognised is logged and reported as a 500.
func (s *Server) classify(r *http.Request, err error) (int, string) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound, "We don't sell that melon."
	case errors.Is(err, cart.ErrUnknownItemInCart):
		return http.StatusConflict, "Your cart holds a melon we no longer sell."
	case errors.Is(err, cart.ErrTotalOverflow):
		return http.StatusUnprocessableEntity, "Your cart total is too large."
	case errors.Is(err, placeholder.ErrNotImplemented):
		return http.StatusNotImplemented, msgLoginUnavailable
	}

	if s.Log != nil {
		s.Log.Error("request failed", zap.Error(err), zap.String("path", r.URL.Path))
	}
	return http.StatusInternalServerError, "Something went wrong."
}

func sessionID(r *http.Request) (string, error) {
	sid, ok := session.IDFromContext(r.Context())
	if !ok {
		return "", errNoSession
	}
	return sid, nil
}
