package plan

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"paymentplan/internal/api"
	"paymentplan/internal/events"
	"paymentplan/internal/metrics"
	"paymentplan/internal/schedule"
	"paymentplan/pkg/config"
	"paymentplan/pkg/db"
)

const maxBodyBytes = 1 << 20

type Handlers struct {
	Cfg     config.Config
	DB      *pgxpool.Pool
	Plans   *Repository
	Service *Service
}

// Calculate previews a schedule without storing it.
func (h Handlers) Calculate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	res, cached, err := h.Service.Calculate(r.Context(), "preview", req.Params)
	if err != nil {
		writeCalcError(w, err)
		return
	}

	if cached {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	api.WriteJSON(w, http.StatusOK, res)
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	tenant := api.TenantFromContext(r.Context())
	if tenant == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing tenant identity")
		return
	}

	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	res, _, err := h.Service.Calculate(r.Context(), "create", req.Params)
	if err != nil {
		writeCalcError(w, err)
		return
	}

	var planID string
	err = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		id, err := Insert(r.Context(), tx, tenant.ID, req.Reference, req.Params, res)
		if err != nil {
			return err
		}
		planID = id

		return events.Insert(r.Context(), tx, id, events.TypePlanCreated, "Payment plan created", tenant.Actor, time.Now(), map[string]any{
			"items":      len(res.Items),
			"grandTotal": res.GrandTotal.StringFixed(schedule.Scale),
			"reference":  req.Reference,
		})
	})
	if err != nil {
		log.Printf("plan create failed tenant=%s err=%v", tenant.ID, err)
		if h.Cfg.AppEnv != "prod" {
			api.WriteError(w, http.StatusInternalServerError, "INTERNAL", fmt.Sprintf("create plan failed: %v", err))
			return
		}
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	metrics.PlansStored.Inc()

	p, err := h.Plans.GetByID(r.Context(), tenant.ID, planID)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusCreated, p)
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	tenant := api.TenantFromContext(r.Context())
	if tenant == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing tenant identity")
		return
	}

	items, err := h.Plans.ListByTenant(r.Context(), tenant.ID)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	tenant := api.TenantFromContext(r.Context())
	if tenant == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing tenant identity")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing id")
		return
	}

	p, err := h.Plans.GetByID(r.Context(), tenant.ID, id)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, p)
}

func (h Handlers) Events(w http.ResponseWriter, r *http.Request) {
	tenant := api.TenantFromContext(r.Context())
	if tenant == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing tenant identity")
		return
	}

	id := chi.URLParam(r, "id")
	// Scope check: the plan must belong to the caller.
	if _, err := h.Plans.GetByID(r.Context(), tenant.ID, id); err != nil {
		writeLookupError(w, err)
		return
	}

	evs, err := events.ListByPlan(r.Context(), h.DB, id)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": evs})
}

func (h Handlers) decode(w http.ResponseWriter, r *http.Request) (CreateRequest, bool) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.WriteError(w, http.StatusRequestEntityTooLarge, "VALIDATION_FAILED", "request body too large")
			return CreateRequest{}, false
		}
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "could not read request body")
		return CreateRequest{}, false
	}
	req, err := ParseAndValidate(raw)
	if err != nil {
		writeCalcError(w, err)
		return CreateRequest{}, false
	}
	return req, true
}

// writeLookupError maps a plan lookup failure: missing rows are 404, anything
// else is a storage problem.
func writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, pgx.ErrNoRows) {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "plan not found")
		return
	}
	log.Printf("plan lookup failed: %v", err)
	api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
}

func writeCalcError(w http.ResponseWriter, err error) {
	var ve schedule.ValidationError
	if errors.As(err, &ve) {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", ve.Error())
		return
	}
	var ae schedule.ArithmeticError
	if errors.As(err, &ae) {
		api.WriteError(w, http.StatusUnprocessableEntity, "ARITHMETIC_ERROR", ae.Error())
		return
	}
	log.Printf("plan calculation failed: %v", err)
	api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
}
