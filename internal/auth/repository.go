package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"educapta/internal/metrics"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var ErrUsuarioNotFound = errors.New("usuario not found")

type Repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) *Repository {
	return &Repository{
		db:      db,
		metrics: m,
	}
}

func (r *Repository) CreateUsuario(ctx context.Context, usuario *Usuario) (*Usuario, error) {
	if usuario.ID == "" {
		usuario.ID = uuid.NewString()
	}
	usuario.Ativo = true

	start := time.Now()
	_, err := r.db.NewInsert().Model(usuario).Returning("*").Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "insert", "usuarios", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return usuario, nil
}

func (r *Repository) GetUsuarioByEmail(ctx context.Context, email string) (*Usuario, error) {
	start := time.Now()
	usuario := new(Usuario)
	err := r.db.NewSelect().
		Model(usuario).
		Where("u.email = ?", email).
		Where("u.ativo = TRUE").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "usuarios", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUsuarioNotFound
		}
		return nil, err
	}
	return usuario, nil
}

func (r *Repository) GetUsuarioByID(ctx context.Context, id string) (*Usuario, error) {
	start := time.Now()
	usuario := new(Usuario)
	err := r.db.NewSelect().
		Model(usuario).
		Where("u.id = ?", id).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "usuarios", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUsuarioNotFound
		}
		return nil, err
	}
	return usuario, nil
}

// CreateRefreshToken stores a new refresh token
func (r *Repository) CreateRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	refreshToken := &RefreshToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	}

	start := time.Now()
	_, err := r.db.NewInsert().Model(refreshToken).Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "insert", "refresh_tokens", time.Since(start), err)

	return err
}

// GetRefreshToken retrieves a non-expired refresh token by token string
func (r *Repository) GetRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	start := time.Now()
	refreshToken := new(RefreshToken)
	err := r.db.NewSelect().
		Model(refreshToken).
		Where("rt.token = ?", token).
		Where("rt.expires_at > ?", time.Now()).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "refresh_tokens", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return refreshToken, nil
}

// DeleteRefreshToken removes a refresh token (for logout)
func (r *Repository) DeleteRefreshToken(ctx context.Context, token string) error {
	start := time.Now()
	_, err := r.db.NewDelete().
		Model((*RefreshToken)(nil)).
		Where("token = ?", token).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "refresh_tokens", time.Since(start), err)

	return err
}

// DeleteExpiredTokens removes all expired refresh tokens (cleanup)
func (r *Repository) DeleteExpiredTokens(ctx context.Context) error {
	start := time.Now()
	_, err := r.db.NewDelete().
		Model((*RefreshToken)(nil)).
		Where("expires_at < ?", time.Now()).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "refresh_tokens", time.Since(start), err)

	return err
}
