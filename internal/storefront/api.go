package storefront

import (
	"net/http"

	"Ubermelon/internal/cart"
	"Ubermelon/pkg/kit"
)

type cartResponse struct {
	Lines      []cart.LineItem `json:"lines"`
	TotalCents int64           `json:"total_cents"`
	Total      string          `json:"total"`
}

type addResponse struct {
	MelonID  string `json:"melon_id"`
	Quantity int    `json:"quantity"`
}

func (s *Server) apiCart(w http.ResponseWriter, r *http.Request) {
	sum, err := s.summary(r)
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}

	kit.WriteJSON(w, http.StatusOK, cartResponse{
		Lines:      sum.Lines,
		TotalCents: sum.TotalCents,
		Total:      sum.Total(),
	})
}

func (s *Server) apiAddToCart(w http.ResponseWriter, r *http.Request) {
	m, qty, err := s.add(r)
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, addResponse{MelonID: m.ID, Quantity: qty})
}

func (s *Server) apiResetCart(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionID(r)
	if err == nil {
		err = s.Sessions.Reset(r.Context(), sid)
	}
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := s.classify(r, err)
	kit.WriteError(w, r, status, msg, nil)
}
