package categories

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/quarrylab/quarry/internal/catalog/shared"
	"github.com/quarrylab/quarry/internal/platform/httpx"
	"github.com/quarrylab/quarry/internal/policy"
	internalshared "github.com/quarrylab/quarry/internal/shared"
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
	r.Delete("/{id}", h.delete)
}

type listResponse struct {
	Items      []Category                `json:"items"`
	Pagination internalshared.Pagination `json:"pagination"`
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	var denied *policy.DeniedError
	switch {
	case errors.As(err, &denied):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", denied.Reason)
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "category not found")
	case errors.Is(err, ErrNameTaken):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	default:
		h.logger.Error("categories handler", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p, _ := policy.PrincipalFromContext(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	page, limit = internalshared.PageParams(page, limit)

	filters := shared.ListFilters{
		Page:   page,
		Limit:  limit,
		Search: r.URL.Query().Get("search"),
	}
	if raw := r.URL.Query().Get("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "is_active must be a boolean")
			return
		}
		filters.IsActive = &active
	}

	items, total, err := h.service.List(r.Context(), p, filters)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	if items == nil {
		items = []Category{}
	}
	httpx.JSON(w, http.StatusOK, listResponse{
		Items:      items,
		Pagination: internalshared.NewPagination(page, limit, total),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, _ := policy.PrincipalFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid category id")
		return
	}

	category, err := h.service.Get(r.Context(), p, id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, category)
}

func (h *Handler) decodeForm(w http.ResponseWriter, r *http.Request) (CategoryForm, bool) {
	var form CategoryForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return form, false
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return form, false
	}
	return form, true
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	p, _ := policy.PrincipalFromContext(r.Context())

	form, ok := h.decodeForm(w, r)
	if !ok {
		return
	}

	category := Category{Name: form.Name, Description: form.Description, IsActive: true}
	if form.IsActive != nil {
		category.IsActive = *form.IsActive
	}

	created, err := h.service.Create(r.Context(), p, category)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	p, _ := policy.PrincipalFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid category id")
		return
	}

	form, ok := h.decodeForm(w, r)
	if !ok {
		return
	}

	category := Category{Name: form.Name, Description: form.Description, IsActive: true}
	if form.IsActive != nil {
		category.IsActive = *form.IsActive
	}

	updated, err := h.service.Update(r.Context(), p, id, category)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	p, _ := policy.PrincipalFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid category id")
		return
	}

	if err := h.service.Delete(r.Context(), p, id); err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.NoContent(w)
}
