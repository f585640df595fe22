package transaction

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/tally/internal/cache"
	"github.com/MrJamesThe3rd/tally/internal/settlement"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
	"github.com/MrJamesThe3rd/tally/internal/user"
)

type Handler struct {
	svc   *transaction.Service
	cache *cache.Manager
}

func NewHandler(svc *transaction.Service, cacheManager *cache.Manager) *Handler {
	return &Handler{svc: svc, cache: cacheManager}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.cache.Wrap(cache.WrapOptions{
		Namespace:     cache.NamespaceTransaction,
		Prefix:        "list",
		IncludeParams: []string{"skip", "limit", "order_by"},
	}, h.list))
	r.Get("/{id}", h.cache.Wrap(cache.WrapOptions{
		Namespace:       cache.NamespaceTransaction,
		Prefix:          "single",
		IdentifierParam: "id",
	}, h.get))
	r.Get("/user/{userID}", h.cache.Wrap(cache.WrapOptions{
		Namespace:       cache.NamespaceTransaction,
		Prefix:          "user",
		IdentifierParam: "userID",
		IncludeParams:   []string{"skip", "limit", "start_date", "end_date"},
	}, h.listByUser))
	r.Get("/analytics/{userID}", h.cache.Wrap(cache.WrapOptions{
		Namespace:       cache.NamespaceAnalytics,
		Prefix:          "user",
		IdentifierParam: "userID",
	}, h.analytics))
	r.Delete("/{id}", h.delete)
}

type createTransactionRequest struct {
	UserID      int64            `json:"user_id"`
	Amount      int64            `json:"amount"`
	Type        transaction.Type `json:"type"`
	Description string           `json:"description"`
	Date        time.Time        `json:"date"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	date := req.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	tx, err := h.svc.Create(r.Context(), transaction.CreateParams{
		UserID:      req.UserID,
		Amount:      req.Amount,
		Type:        req.Type,
		Description: req.Description,
		Date:        date,
	})
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			http.Error(w, "user not found", http.StatusNotFound)
		case errors.Is(err, settlement.ErrInvalidType),
			errors.Is(err, transaction.ErrInvalidAmount):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}

		return
	}

	h.invalidate(r, tx.UserID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := listFilterFromQuery(r)

	txs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(txs)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) listByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	filter := listFilterFromQuery(r)
	filter.UserID = &userID
	filter.OrderBy = "date"

	txs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(txs)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	tx, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			http.Error(w, "transaction not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) analytics(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	a, err := h.svc.Analytics(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toAnalyticsResponse(a)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	tx, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			http.Error(w, "transaction not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.invalidate(r, tx.UserID)

	w.WriteHeader(http.StatusNoContent)
}

// invalidate clears every cached response the ledger change can have
// affected: the transaction namespace wholesale, plus the user's analytics
// and profile entries.
func (h *Handler) invalidate(r *http.Request, userID int64) {
	userKey := strconv.FormatInt(userID, 10)

	h.cache.Invalidate(r.Context(), cache.NamespaceTransaction, "")
	h.cache.Invalidate(r.Context(), cache.NamespaceAnalytics, userKey)
	h.cache.Invalidate(r.Context(), cache.NamespaceUser, userKey)
}

func listFilterFromQuery(r *http.Request) transaction.ListFilter {
	filter := transaction.ListFilter{Limit: 20}

	if s := r.URL.Query().Get("skip"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			filter.Skip = v
		}
	}

	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 && v <= 100 {
			filter.Limit = v
		}
	}

	if s := r.URL.Query().Get("order_by"); s != "" {
		filter.OrderBy = s
	}

	if s := r.URL.Query().Get("start_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.StartDate = &t
		}
	}

	if s := r.URL.Query().Get("end_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.EndDate = &t
		}
	}

	return filter
}
