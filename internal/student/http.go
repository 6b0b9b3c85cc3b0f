package student

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
	router.Get("/students", h.ListAlunos)
	router.Post("/students", h.CreateAluno)
	router.Get("/students/{id}", h.GetAluno)
	router.Put("/students/{id}", h.UpdateAluno)
	router.Delete("/students/{id}", h.DeleteAluno)
}

type ListAlunosResponse struct {
	Data       []Aluno             `json:"data"`
	Pagination httputil.Pagination `json:"pagination"`
}

func (h *Handler) ListAlunos(w http.ResponseWriter, r *http.Request) {
	page, limit := httputil.ParsePagination(r)
	filters := ListFilters{
		EscolaID: r.URL.Query().Get("escola_id"),
		Status:   r.URL.Query().Get("status"),
		Search:   r.URL.Query().Get("search"),
		Page:     page,
		Limit:    limit,
	}

	alunos, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if alunos == nil {
		alunos = []Aluno{}
	}

	httputil.RespondWithJSON(w, http.StatusOK, ListAlunosResponse{
		Data:       alunos,
		Pagination: httputil.NewPagination(page, limit, total),
	})
}

func (h *Handler) GetAluno(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	aluno, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, aluno)
}

func (h *Handler) CreateAluno(w http.ResponseWriter, r *http.Request) {
	var req CreateAlunoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithValidationError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "creating student", "escola_id", req.EscolaID)
	aluno, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordAlunoCreated(r.Context())

	httputil.RespondWithJSON(w, http.StatusCreated, aluno)
}

func (h *Handler) UpdateAluno(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateAlunoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithValidationError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "updating student", "id", id)
	aluno, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, aluno)
}

func (h *Handler) DeleteAluno(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	h.logger.InfoContext(r.Context(), "deleting student", "id", id)
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Aluno excluído com sucesso",
	})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrAlunoNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Aluno não encontrado")
	case errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, "Dados inválidos")
	default:
		h.logger.ErrorContext(r.Context(), "student operation failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Erro interno do servidor")
	}
}
