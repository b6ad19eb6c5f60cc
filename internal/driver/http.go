package driver

import (
	"math"
	"net/http"

	"github.com/TaxiPark/TaxiPark/internal/common/apperr"
	"github.com/TaxiPark/TaxiPark/internal/common/httpx"
	"github.com/TaxiPark/TaxiPark/internal/common/logger"
	"gorm.io/gorm"
)

const defaultLowRatingThreshold = 4.0

// Handler serves the /drivers endpoints.
type Handler struct {
	svc *Service
	log logger.Logger
}

func NewHandler(db *gorm.DB, log logger.Logger) *Handler {
	return &Handler{svc: NewService(db), log: log}
}

// Register mounts the driver routes. The low-rating route is a literal and
// takes precedence over the {id} pattern.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /drivers", h.list)
	mux.HandleFunc("GET /drivers/low-rating", h.lowRating)
	mux.HandleFunc("GET /drivers/{id}", h.get)
	mux.HandleFunc("POST /drivers", h.create)
	mux.HandleFunc("PATCH /drivers/{id}", h.update)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	f, err := parseListFilter(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	drivers, err := h.svc.List(r.Context(), f)
	if err != nil {
		h.logErr(err)
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, drivers)
}

func (h *Handler) lowRating(w http.ResponseWriter, r *http.Request) {
	threshold := defaultLowRatingThreshold
	if t, err := httpx.QueryFloat(r, "threshold", 0, 5); err != nil {
		httpx.WriteError(w, err)
		return
	} else if t != nil {
		threshold = *t
	}
	drivers, err := h.svc.LowRating(r.Context(), threshold)
	if err != nil {
		h.logErr(err)
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, drivers)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	d, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.logErr(err)
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, err)
		return
	}
	d, err := h.svc.Create(r.Context(), in)
	if err != nil {
		h.logErr(err)
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, d)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var in UpdateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, err)
		return
	}
	d, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		h.logErr(err)
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	var f ListFilter
	var err error
	if f.MinRating, err = httpx.QueryFloat(r, "min_rating", 0, 5); err != nil {
		return f, err
	}
	if f.OnlyActive, err = httpx.QueryBool(r, "only_active", true); err != nil {
		return f, err
	}
	if f.Limit, err = httpx.QueryInt(r, "limit", 100, 1, 500); err != nil {
		return f, err
	}
	if f.Offset, err = httpx.QueryInt(r, "offset", 0, 0, math.MaxInt); err != nil {
		return f, err
	}
	return f, nil
}

func (h *Handler) logErr(err error) {
	if h.log == nil || err == nil {
		return
	}
	if apperr.StatusOf(err) >= 500 {
		h.log.Errorf("driver handler: %v", err)
	}
}
