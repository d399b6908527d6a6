package orders

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/quarrylab/quarry/internal/platform/httpx"
	"github.com/quarrylab/quarry/internal/policy"
	"github.com/quarrylab/quarry/internal/shared"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Post("/{id}/cancel", h.cancel)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	var denied *policy.DeniedError
	var transition *InvalidTransitionError
	var stock *InsufficientStockError
	switch {
	case errors.As(err, &denied):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", denied.Reason)
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "order not found")
	case errors.As(err, &transition):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Transition", transition.Error())
	case errors.As(err, &stock):
		httpx.Problem(w, http.StatusConflict, "Insufficient Stock", stock.Error())
	case errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrProductInactive),
		errors.Is(err, ErrEmptyOrder),
		errors.Is(err, ErrStatusChange):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("orders handler", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func parseFilters(r *http.Request) (ListFilters, error) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	page, limit = shared.PageParams(page, limit)

	filters := ListFilters{Page: page, Limit: limit}

	if raw := q.Get("status"); raw != "" {
		status := Status(raw)
		if !status.Valid() {
			return filters, errors.New("status must be one of pending, confirmed, shipped, cancelled")
		}
		filters.Status = &status
	}
	if raw := q.Get("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return filters, errors.New("user_id must be a positive integer")
		}
		filters.UserID = &id
	}
	return filters, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p, _ := policy.PrincipalFromContext(r.Context())

	filters, err := parseFilters(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	items, total, err := h.service.List(r.Context(), p, filters)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	data := make([]orderResponse, 0, len(items))
	for i := range items {
		data = append(data, toOrderResponse(&items[i]))
	}
	httpx.JSON(w, http.StatusOK, listOrdersResponse{
		Data:       data,
		Pagination: shared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, _ := policy.PrincipalFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return
	}

	order, err := h.service.Get(r.Context(), p, id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	p, _ := policy.PrincipalFromContext(r.Context())

	var req createOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	input := CreateInput{
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
	}
	for _, it := range req.Items {
		input.Items = append(input.Items, ItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	order, err := h.service.Create(r.Context(), p, input)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	p, _ := policy.PrincipalFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return
	}

	var req updateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	order, err := h.service.Update(r.Context(), p, id, UpdateInput{
		Status:          req.Status,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	p, _ := policy.PrincipalFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return
	}

	order, err := h.service.Cancel(r.Context(), p, id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	p, _ := policy.PrincipalFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return
	}

	if err := h.service.Delete(r.Context(), p, id); err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.NoContent(w)
}
