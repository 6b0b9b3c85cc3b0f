package class

import (
	"time"

	"github.com/uptrace/bun"
)

// Class shifts.
const (
	PeriodoMatutino   = "matutino"
	PeriodoVespertino = "vespertino"
	PeriodoIntegral   = "integral"

	// Filter sentinels that disable the periodo/serie filters on List.
	PeriodoTodos = "todos"
	SerieTodas   = "todas"
)

// Turma is one scheduled cohort within a school for an academic year.
// The composite unique constraint backs the name+year uniqueness rule so
// concurrent creates cannot both commit.
//
// VagasOcupadas, VagasDisponiveis, EscolaNome and Alunos are derived at read
// time and never stored: occupancy is the count of linked alunos with status
// matriculado.
type Turma struct {
	bun.BaseModel `bun:"table:turmas,alias:t"`

	ID         string    `bun:"id,pk" json:"id"`
	EscolaID   string    `bun:"escola_id,notnull,unique:turmas_escola_nome_ano" json:"escolaId"`
	Nome       string    `bun:"nome,notnull,unique:turmas_escola_nome_ano" json:"nome"`
	Serie      string    `bun:"serie,notnull" json:"serie"`
	Periodo    string    `bun:"periodo,notnull" json:"periodo"`
	Capacidade int       `bun:"capacidade,notnull" json:"capacidade"`
	AnoLetivo  int       `bun:"ano_letivo,notnull,unique:turmas_escola_nome_ano" json:"anoLetivo"`
	Professor  string    `bun:"professor" json:"professor,omitempty"`
	Sala       string    `bun:"sala" json:"sala,omitempty"`
	Ativo      bool      `bun:"ativo,notnull,default:true" json:"ativo"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt  time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`

	VagasOcupadas    int           `bun:"vagas_ocupadas,scanonly" json:"vagasOcupadas"`
	VagasDisponiveis int           `bun:"-" json:"vagasDisponiveis"`
	EscolaNome       string        `bun:"escola_nome,scanonly" json:"escolaNome,omitempty"`
	Alunos           []AlunoResumo `bun:"-" json:"alunos,omitempty"`
}

func (t *Turma) computeVagas() {
	t.VagasDisponiveis = t.Capacidade - t.VagasOcupadas
}

// AlunoResumo is the linked-student summary attached to a Get response.
type AlunoResumo struct {
	ID     string `json:"id"`
	Nome   string `json:"nome"`
	Status string `json:"status"`
}

type CreateTurmaRequest struct {
	EscolaID   string `json:"escolaId" validate:"required,min=1"`
	Nome       string `json:"nome" validate:"required,min=1,max=100"`
	Serie      string `json:"serie" validate:"required,min=1,max=50"`
	Periodo    string `json:"periodo" validate:"required,oneof=matutino vespertino integral"`
	Capacidade int    `json:"capacidade" validate:"required,min=1,max=100"`
	AnoLetivo  int    `json:"anoLetivo" validate:"required,min=2020,max=2030"`
	Professor  string `json:"professor"`
	Sala       string `json:"sala"`
}

func (req CreateTurmaRequest) ToTurma() *Turma {
	return &Turma{
		EscolaID:   req.EscolaID,
		Nome:       req.Nome,
		Serie:      req.Serie,
		Periodo:    req.Periodo,
		Capacidade: req.Capacidade,
		AnoLetivo:  req.AnoLetivo,
		Professor:  req.Professor,
		Sala:       req.Sala,
		Ativo:      true,
	}
}

// UpdateTurmaRequest is a typed partial update: nil fields are left
// unchanged. The active flag is deliberately absent; retiring a class goes
// through Delete only, and there is no reactivation path.
type UpdateTurmaRequest struct {
	Nome       *string `json:"nome" validate:"omitnil,min=1,max=100"`
	Serie      *string `json:"serie" validate:"omitnil,min=1,max=50"`
	Periodo    *string `json:"periodo" validate:"omitnil,oneof=matutino vespertino integral"`
	Capacidade *int    `json:"capacidade" validate:"omitnil,min=1,max=100"`
	AnoLetivo  *int    `json:"anoLetivo" validate:"omitnil,min=2020,max=2030"`
	Professor  *string `json:"professor"`
	Sala       *string `json:"sala"`
}

// Apply merges the patch into an existing record, only overwriting fields
// present in the request.
func (req UpdateTurmaRequest) Apply(turma *Turma) {
	if req.Nome != nil {
		turma.Nome = *req.Nome
	}
	if req.Serie != nil {
		turma.Serie = *req.Serie
	}
	if req.Periodo != nil {
		turma.Periodo = *req.Periodo
	}
	if req.Capacidade != nil {
		turma.Capacidade = *req.Capacidade
	}
	if req.AnoLetivo != nil {
		turma.AnoLetivo = *req.AnoLetivo
	}
	if req.Professor != nil {
		turma.Professor = *req.Professor
	}
	if req.Sala != nil {
		turma.Sala = *req.Sala
	}
}
