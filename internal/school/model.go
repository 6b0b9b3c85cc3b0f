package school

import (
	"time"

	"github.com/uptrace/bun"
)

// Escola is one school tenant. Every aluno and turma row is scoped to one.
type Escola struct {
	bun.BaseModel `bun:"table:escolas,alias:e"`

	ID        string    `bun:"id,pk" json:"id"`
	Nome      string    `bun:"nome,notnull" json:"nome"`
	CNPJ      string    `bun:"cnpj" json:"cnpj,omitempty"`
	Endereco  string    `bun:"endereco" json:"endereco,omitempty"`
	Telefone  string    `bun:"telefone" json:"telefone,omitempty"`
	Email     string    `bun:"email" json:"email,omitempty"`
	Ativo     bool      `bun:"ativo,notnull,default:true" json:"ativo"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

type CreateEscolaRequest struct {
	Nome     string `json:"nome" validate:"required,min=1"`
	CNPJ     string `json:"cnpj"`
	Endereco string `json:"endereco"`
	Telefone string `json:"telefone"`
	Email    string `json:"email" validate:"omitempty,email"`
}
