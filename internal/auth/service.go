package auth

import (
	"context"
	"errors"
	"time"

	"educapta/internal/config"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailExists         = errors.New("email already exists")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

type Service struct {
	repo *Repository
	cfg  config.AuthConfig
}

func NewService(repo *Repository, cfg config.AuthConfig) *Service {
	return &Service{
		repo: repo,
		cfg:  cfg,
	}
}

func (s *Service) accessTokenTTL() time.Duration {
	minutes := s.cfg.AccessTokenTTL
	if minutes == 0 {
		minutes = 15
	}
	return time.Duration(minutes) * time.Minute
}

func (s *Service) refreshTokenTTL() time.Duration {
	hours := s.cfg.RefreshTokenTTL
	if hours == 0 {
		hours = 24 * 7
	}
	return time.Duration(hours) * time.Hour
}

// Register creates a new dashboard user account
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	existing, _ := s.repo.GetUsuarioByEmail(ctx, req.Email)
	if existing != nil {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Senha), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	usuario := &Usuario{
		EscolaID:  req.EscolaID,
		Nome:      req.Nome,
		Email:     req.Email,
		SenhaHash: string(hashedPassword),
		Tipo:      req.Tipo,
	}

	created, err := s.repo.CreateUsuario(ctx, usuario)
	if err != nil {
		return nil, err
	}

	return s.generateTokenPair(ctx, created)
}

// Login authenticates a user and returns tokens
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	usuario, err := s.repo.GetUsuarioByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usuario.SenhaHash), []byte(req.Senha)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.generateTokenPair(ctx, usuario)
}

// RefreshAccessToken rotates the token pair using a stored refresh token
func (s *Service) RefreshAccessToken(ctx context.Context, refreshTokenString string) (*AuthResponse, error) {
	refreshToken, err := s.repo.GetRefreshToken(ctx, refreshTokenString)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	usuario, err := s.repo.GetUsuarioByID(ctx, refreshToken.UserID)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	return s.generateTokenPair(ctx, usuario)
}

// Logout invalidates the refresh token
func (s *Service) Logout(ctx context.Context, refreshTokenString string) error {
	return s.repo.DeleteRefreshToken(ctx, refreshTokenString)
}

func (s *Service) generateTokenPair(ctx context.Context, usuario *Usuario) (*AuthResponse, error) {
	accessToken, err := GenerateAccessToken(s.cfg.JWTSecret, s.accessTokenTTL(), usuario)
	if err != nil {
		return nil, err
	}

	refreshToken, err := GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(s.refreshTokenTTL())
	if err := s.repo.CreateRefreshToken(ctx, usuario.ID, refreshToken, expiresAt); err != nil {
		return nil, err
	}

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Usuario:      usuario,
	}, nil
}
