package auth

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
	service   *Service
	validator *validator.Validate
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewHandler(service *Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
		logger:    logger,
		metrics:   m,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/auth/register", h.Register)
	router.Post("/auth/login", h.Login)
	router.Post("/auth/refresh", h.Refresh)
	router.Post("/auth/logout", h.Logout)
}

// Register creates a new dashboard user account
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.RespondWithValidationError(w, err)
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			httputil.RespondWithError(w, http.StatusConflict, "E-mail já cadastrado")
			return
		}
		h.logger.ErrorContext(r.Context(), "registration failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	SetAuthCookie(w, resp.AccessToken, h.service.accessTokenTTL())

	httputil.RespondWithJSON(w, http.StatusCreated, resp)
}

// Login authenticates a dashboard user
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.RespondWithValidationError(w, err)
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httputil.RespondWithError(w, http.StatusUnauthorized, "E-mail ou senha inválidos")
			return
		}
		h.logger.ErrorContext(r.Context(), "login failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	h.logger.InfoContext(r.Context(), "user logged in", "email", req.Email)
	h.metrics.RecordLogin(r.Context())

	SetAuthCookie(w, resp.AccessToken, h.service.accessTokenTTL())

	httputil.RespondWithJSON(w, http.StatusOK, resp)
}

// Refresh rotates the token pair
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.RespondWithValidationError(w, err)
		return
	}

	resp, err := h.service.RefreshAccessToken(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrInvalidRefreshToken) {
			httputil.RespondWithError(w, http.StatusUnauthorized, "Sessão expirada")
			return
		}
		h.logger.ErrorContext(r.Context(), "token refresh failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	SetAuthCookie(w, resp.AccessToken, h.service.accessTokenTTL())

	httputil.RespondWithJSON(w, http.StatusOK, resp)
}

// Logout invalidates the refresh token and clears the cookie
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		h.logger.ErrorContext(r.Context(), "logout failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	ClearAuthCookie(w)

	h.logger.InfoContext(r.Context(), "user logged out")

	w.WriteHeader(http.StatusNoContent)
}
