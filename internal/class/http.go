package class

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"educapta/internal/httputil"
	"educapta/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  Service
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewHandler(service Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
		metrics:  m,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/classes", h.ListTurmas)
	router.Post("/classes", h.CreateTurma)
	router.Get("/classes/{id}", h.GetTurma)
	router.Put("/classes/{id}", h.UpdateTurma)
	router.Delete("/classes/{id}", h.DeleteTurma)
}

type ListTurmasResponse struct {
	Data       []Turma             `json:"data"`
	Pagination httputil.Pagination `json:"pagination"`
}

func (h *Handler) ListTurmas(w http.ResponseWriter, r *http.Request) {
	page, limit := httputil.ParsePagination(r)
	filters := ListFilters{
		EscolaID: r.URL.Query().Get("escola_id"),
		Search:   r.URL.Query().Get("search"),
		Periodo:  r.URL.Query().Get("periodo"),
		Serie:    r.URL.Query().Get("serie"),
		Page:     page,
		Limit:    limit,
	}

	turmas, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if turmas == nil {
		turmas = []Turma{}
	}

	httputil.RespondWithJSON(w, http.StatusOK, ListTurmasResponse{
		Data:       turmas,
		Pagination: httputil.NewPagination(page, limit, total),
	})
}

func (h *Handler) GetTurma(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	turma, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, turma)
}

func (h *Handler) CreateTurma(w http.ResponseWriter, r *http.Request) {
	var req CreateTurmaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithValidationError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "creating class", "escola_id", req.EscolaID, "nome", req.Nome, "ano_letivo", req.AnoLetivo)
	turma, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordTurmaCreated(r.Context())

	httputil.RespondWithJSON(w, http.StatusCreated, turma)
}

func (h *Handler) UpdateTurma(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateTurmaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithValidationError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "updating class", "id", id)
	turma, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, turma)
}

func (h *Handler) DeleteTurma(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	h.logger.InfoContext(r.Context(), "retiring class", "id", id)
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordTurmaRetired(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Turma excluída com sucesso",
	})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrTurmaNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Turma não encontrada")
	case errors.Is(err, ErrEscolaNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Escola não encontrada")
	case errors.Is(err, ErrTurmaDuplicada):
		httputil.RespondWithError(w, http.StatusBadRequest, "Já existe uma turma com este nome nesta escola")
	case errors.Is(err, ErrTurmaComAlunos):
		httputil.RespondWithError(w, http.StatusBadRequest, "Não é possível excluir uma turma com alunos matriculados")
	case errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, "Dados inválidos")
	default:
		h.logger.ErrorContext(r.Context(), "class operation failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Erro interno do servidor")
	}
}
