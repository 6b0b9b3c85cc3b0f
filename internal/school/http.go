package school

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"educapta/internal/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	repo     Repository
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(repo Repository, logger *slog.Logger) *Handler {
	return &Handler{
		repo:     repo,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/schools", h.ListEscolas)
	router.Post("/schools", h.CreateEscola)
	router.Get("/schools/{id}", h.GetEscola)
}

func (h *Handler) ListEscolas(w http.ResponseWriter, r *http.Request) {
	escolas, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list schools", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"data": escolas})
}

func (h *Handler) GetEscola(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	escola, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrEscolaNotFound) {
			httputil.RespondWithError(w, http.StatusNotFound, "Escola não encontrada")
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to fetch school", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, escola)
}

func (h *Handler) CreateEscola(w http.ResponseWriter, r *http.Request) {
	var req CreateEscolaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithValidationError(w, err)
		return
	}

	escola := &Escola{
		Nome:     req.Nome,
		CNPJ:     req.CNPJ,
		Endereco: req.Endereco,
		Telefone: req.Telefone,
		Email:    req.Email,
	}

	h.logger.InfoContext(r.Context(), "creating school", "nome", req.Nome)
	created, err := h.repo.Create(r.Context(), escola)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to create school", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	httputil.RespondWithJSON(w, http.StatusCreated, created)
}
