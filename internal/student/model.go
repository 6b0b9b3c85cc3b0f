package student

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Enrollment statuses. Occupancy projections on turmas only count
// matriculado rows.
const (
	StatusMatriculado  = "matriculado"
	StatusPreMatricula = "pre_matricula"
	StatusInativo      = "inativo"

	// StatusTodos is the sentinel that disables the status filter on List.
	StatusTodos = "todos"
)

const dateLayout = "2006-01-02"

// Aluno is one student record, scoped to a school. The class link is a
// single typed reference (TurmaID); TurmaNome is resolved at read time from
// the referenced turma and never stored.
type Aluno struct {
	bun.BaseModel `bun:"table:alunos,alias:a"`

	ID                    string     `bun:"id,pk" json:"id"`
	EscolaID              string     `bun:"escola_id,notnull" json:"escolaId"`
	Nome                  string     `bun:"nome,notnull" json:"nome"`
	DataNascimento        *time.Time `bun:"data_nascimento" json:"dataNascimento,omitempty"`
	CPF                   string     `bun:"cpf" json:"cpf,omitempty"`
	Endereco              string     `bun:"endereco" json:"endereco,omitempty"`
	TurmaID               *string    `bun:"turma_id" json:"turmaId,omitempty"`
	TurmaNome             string     `bun:"turma_nome,scanonly" json:"turma,omitempty"`
	NecessidadesEspeciais string     `bun:"necessidades_especiais" json:"necessidadesEspeciais,omitempty"`
	Medicamentos          string     `bun:"medicamentos" json:"medicamentos,omitempty"`
	Alergias              string     `bun:"alergias" json:"alergias,omitempty"`
	ContatoEmergencia     string     `bun:"contato_emergencia" json:"contatoEmergencia,omitempty"`
	Responsavel           string     `bun:"responsavel" json:"responsavel,omitempty"`
	Telefone              string     `bun:"telefone" json:"telefone,omitempty"`
	Email                 string     `bun:"email" json:"email,omitempty"`
	Status                string     `bun:"status,notnull,default:'matriculado'" json:"status"`
	CreatedAt             time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt             time.Time  `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

type CreateAlunoRequest struct {
	EscolaID              string `json:"escolaId" validate:"required,min=1"`
	Nome                  string `json:"nome" validate:"required,min=1"`
	DataNascimento        string `json:"dataNascimento" validate:"omitempty,datetime=2006-01-02"`
	CPF                   string `json:"cpf"`
	Endereco              string `json:"endereco"`
	TurmaID               string `json:"turmaId"`
	NecessidadesEspeciais string `json:"necessidadesEspeciais"`
	Medicamentos          string `json:"medicamentos"`
	Alergias              string `json:"alergias"`
	ContatoEmergencia     string `json:"contatoEmergencia"`
	Responsavel           string `json:"responsavel"`
	Telefone              string `json:"telefone"`
	Email                 string `json:"email" validate:"omitempty,email"`
	Status                string `json:"status" validate:"omitempty,oneof=matriculado pre_matricula inativo"`
}

// ToAluno builds a new Aluno from a validated create request. Absent birth
// date stays null; absent status defaults to matriculado.
func (req CreateAlunoRequest) ToAluno() (*Aluno, error) {
	aluno := &Aluno{
		EscolaID:              req.EscolaID,
		Nome:                  req.Nome,
		CPF:                   req.CPF,
		Endereco:              req.Endereco,
		NecessidadesEspeciais: req.NecessidadesEspeciais,
		Medicamentos:          req.Medicamentos,
		Alergias:              req.Alergias,
		ContatoEmergencia:     req.ContatoEmergencia,
		Responsavel:           req.Responsavel,
		Telefone:              req.Telefone,
		Email:                 req.Email,
		Status:                req.Status,
	}

	if aluno.Status == "" {
		aluno.Status = StatusMatriculado
	}

	if req.TurmaID != "" {
		turmaID := req.TurmaID
		aluno.TurmaID = &turmaID
	}

	if req.DataNascimento != "" {
		parsed, err := time.Parse(dateLayout, req.DataNascimento)
		if err != nil {
			return nil, fmt.Errorf("invalid dataNascimento: %w", err)
		}
		aluno.DataNascimento = &parsed
	}

	return aluno, nil
}

// UpdateAlunoRequest is a typed partial update: nil fields are left
// unchanged. DataNascimento and TurmaID are three-state: absent keeps the
// stored value, empty string clears it to null, anything else sets it.
type UpdateAlunoRequest struct {
	Nome                  *string `json:"nome" validate:"omitnil,min=1"`
	DataNascimento        *string `json:"dataNascimento" validate:"omitnil,omitempty,datetime=2006-01-02"`
	CPF                   *string `json:"cpf"`
	Endereco              *string `json:"endereco"`
	TurmaID               *string `json:"turmaId"`
	NecessidadesEspeciais *string `json:"necessidadesEspeciais"`
	Medicamentos          *string `json:"medicamentos"`
	Alergias              *string `json:"alergias"`
	ContatoEmergencia     *string `json:"contatoEmergencia"`
	Responsavel           *string `json:"responsavel"`
	Telefone              *string `json:"telefone"`
	Email                 *string `json:"email" validate:"omitnil,omitempty,email"`
	Status                *string `json:"status" validate:"omitnil,oneof=matriculado pre_matricula inativo"`
}

// Apply merges the patch into an existing record, only overwriting fields
// present in the request.
func (req UpdateAlunoRequest) Apply(aluno *Aluno) error {
	if req.Nome != nil {
		aluno.Nome = *req.Nome
	}
	if req.CPF != nil {
		aluno.CPF = *req.CPF
	}
	if req.Endereco != nil {
		aluno.Endereco = *req.Endereco
	}
	if req.NecessidadesEspeciais != nil {
		aluno.NecessidadesEspeciais = *req.NecessidadesEspeciais
	}
	if req.Medicamentos != nil {
		aluno.Medicamentos = *req.Medicamentos
	}
	if req.Alergias != nil {
		aluno.Alergias = *req.Alergias
	}
	if req.ContatoEmergencia != nil {
		aluno.ContatoEmergencia = *req.ContatoEmergencia
	}
	if req.Responsavel != nil {
		aluno.Responsavel = *req.Responsavel
	}
	if req.Telefone != nil {
		aluno.Telefone = *req.Telefone
	}
	if req.Email != nil {
		aluno.Email = *req.Email
	}
	if req.Status != nil {
		aluno.Status = *req.Status
	}

	if req.TurmaID != nil {
		if *req.TurmaID == "" {
			aluno.TurmaID = nil
		} else {
			turmaID := *req.TurmaID
			aluno.TurmaID = &turmaID
		}
	}

	if req.DataNascimento != nil {
		if *req.DataNascimento == "" {
			aluno.DataNascimento = nil
		} else {
			parsed, err := time.Parse(dateLayout, *req.DataNascimento)
			if err != nil {
				return fmt.Errorf("invalid dataNascimento: %w", err)
			}
			aluno.DataNascimento = &parsed
		}
	}

	return nil
}
