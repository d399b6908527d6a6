package sandbox

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quarrylab/quarry/internal/platform/httpx"
	"github.com/quarrylab/quarry/internal/policy"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/reset", h.reset)
	r.Get("/stats", h.stats)
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	var denied *policy.DeniedError
	if errors.As(err, &denied) {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", denied.Reason)
		return
	}
	h.logger.Error("sandbox handler", slog.Any("error", err))
	httpx.RespondError(w, err)
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	p, _ := policy.PrincipalFromContext(r.Context())

	result, err := h.service.Reset(r.Context(), p)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	p, _ := policy.PrincipalFromContext(r.Context())

	stats, err := h.service.Stats(r.Context(), p)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}
