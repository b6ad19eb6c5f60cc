package car

import (
	"math"
	"net/http"

	"github.com/TaxiPark/TaxiPark/internal/common/apperr"
	"github.com/TaxiPark/TaxiPark/internal/common/httpx"
	"github.com/TaxiPark/TaxiPark/internal/common/logger"
	"github.com/TaxiPark/TaxiPark/internal/model"
	"gorm.io/gorm"
)

// Handler serves the /cars endpoints.
type Handler struct {
	svc *Service
	log logger.Logger
}

func NewHandler(db *gorm.DB, log logger.Logger) *Handler {
	return &Handler{svc: NewService(db), log: log}
}

// Register mounts the car routes. The in-repair route is a literal and takes
// precedence over the {id} pattern.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /cars", h.list)
	mux.HandleFunc("GET /cars/in-repair", h.inRepair)
	mux.HandleFunc("GET /cars/{id}", h.get)
	mux.HandleFunc("POST /cars", h.create)
	mux.HandleFunc("PATCH /cars/{id}", h.update)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	f, err := parseListFilter(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	cars, err := h.svc.List(r.Context(), f)
	if err != nil {
		h.logErr(err)
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cars)
}

func (h *Handler) inRepair(w http.ResponseWriter, r *http.Request) {
	cars, err := h.svc.InRepair(r.Context())
	if err != nil {
		h.logErr(err)
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cars)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.logErr(err)
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, err)
		return
	}
	c, err := h.svc.Create(r.Context(), in)
	if err != nil {
		h.logErr(err)
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, c)
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
	c, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		h.logErr(err)
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	var f ListFilter
	if raw := r.URL.Query().Get("status"); raw != "" {
		st := model.CarStatus(raw)
		if !st.Valid() {
			return f, apperr.Validation("unknown status %q", raw)
		}
		f.Status = &st
	}
	var err error
	if f.MinDistance, err = httpx.QueryFloat(r, "min_distance", 0, math.MaxFloat64); err != nil {
		return f, err
	}
	if f.MaxDistance, err = httpx.QueryFloat(r, "max_distance", 0, math.MaxFloat64); err != nil {
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
		h.log.Errorf("car handler: %v", err)
	}
}
