package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apimw "github.com/ricirt/devlog-poster/internal/api/middleware"
	"github.com/ricirt/devlog-poster/internal/domain"
	"github.com/ricirt/devlog-poster/internal/service"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// ItemHandler serves read-only views of the work item queue.
type ItemHandler struct {
	svc    *service.QueueService
	logger *zap.Logger
}

func NewItemHandler(svc *service.QueueService, logger *zap.Logger) *ItemHandler {
	return &ItemHandler{svc: svc, logger: logger}
}

// List handles GET /api/v1/items
//
// @Summary  List work items in sequence order
// @Tags     items
// @Produce  json
// @Param    status  query     string  false  "pending or posted"
// @Param    limit   query     int     false  "Max items (default 50, max 500)"
// @Success  200     {object}  map[string]any
// @Failure  422     {object}  map[string]string
// @Router   /api/v1/items [get]
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := parseListFilter(r)
	items, err := h.svc.List(r.Context(), filter)
	if err != nil {
		h.logger.Warn("list work items failed",
			apimw.CorrelationField(r.Context()),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}
	if items == nil {
		items = []*domain.WorkItem{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"data":  items,
		"count": len(items),
		"limit": filter.Limit,
	})
}

// GetBySequence handles GET /api/v1/items/{sequence}
//
// @Summary  Get a work item by sequence
// @Tags     items
// @Produce  json
// @Param    sequence  path      int     true   "Day number"
// @Param    status    query     string  false  "pending (default) or posted"
// @Success  200       {object}  domain.WorkItem
// @Failure  404       {object}  map[string]string
// @Router   /api/v1/items/{sequence} [get]
func (h *ItemHandler) GetBySequence(w http.ResponseWriter, r *http.Request) {
	seq, err := strconv.Atoi(chi.URLParam(r, "sequence"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "sequence must be an integer")
		return
	}
	status := domain.StatusPending
	if s := r.URL.Query().Get("status"); s != "" {
		status = domain.Status(s)
	}

	item, err := h.svc.GetBySequence(r.Context(), seq, status)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// Stats handles GET /api/v1/stats
//
// @Summary  Pending and posted counts
// @Tags     items
// @Produce  json
// @Success  200  {object}  service.Stats
// @Router   /api/v1/stats [get]
func (h *ItemHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func parseListFilter(r *http.Request) domain.ListFilter {
	q := r.URL.Query()
	filter := domain.ListFilter{Limit: defaultListLimit}

	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 && l <= maxListLimit {
		filter.Limit = l
	}
	if s := q.Get("status"); s != "" {
		st := domain.Status(s)
		filter.Status = &st
	}
	return filter
}
