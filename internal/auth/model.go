package auth

import (
	"time"

	"github.com/uptrace/bun"
)

// User roles within a school.
const (
	TipoSecretaria = "secretaria"
	TipoDirecao    = "direcao"
)

// Usuario is one dashboard user, scoped to a school.
type Usuario struct {
	bun.BaseModel `bun:"table:usuarios,alias:u"`

	ID        string    `bun:"id,pk" json:"id"`
	EscolaID  string    `bun:"escola_id,notnull" json:"escolaId"`
	Nome      string    `bun:"nome,notnull" json:"nome"`
	Email     string    `bun:"email,unique,notnull" json:"email"`
	SenhaHash string    `bun:"senha_hash,notnull" json:"-"`
	Tipo      string    `bun:"tipo,notnull" json:"tipo"`
	Ativo     bool      `bun:"ativo,notnull,default:true" json:"ativo"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

// RefreshToken stores refresh tokens in the database.
type RefreshToken struct {
	bun.BaseModel `bun:"table:refresh_tokens,alias:rt"`

	ID        int       `bun:"id,pk,autoincrement"`
	UserID    string    `bun:"user_id,notnull"`
	Token     string    `bun:"token,unique,notnull"`
	ExpiresAt time.Time `bun:"expires_at,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Senha string `json:"senha" validate:"required"`
}

type RegisterRequest struct {
	EscolaID string `json:"escolaId" validate:"required,min=1"`
	Nome     string `json:"nome" validate:"required,min=1"`
	Email    string `json:"email" validate:"required,email"`
	Senha    string `json:"senha" validate:"required,min=8"`
	Tipo     string `json:"tipo" validate:"required,oneof=secretaria direcao"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type AuthResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	Usuario      *Usuario `json:"usuario"`
}
