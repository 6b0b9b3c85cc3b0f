package student

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"educapta/internal/metrics"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ListFilters narrows a student listing. Zero values disable a filter; a
// Status of "todos" is equivalent to no status filter.
type ListFilters struct {
	EscolaID string
	Status   string
	Search   string
	Page     int
	Limit    int
}

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Aluno, int, error)
	GetByID(ctx context.Context, id string) (*Aluno, error)
	Create(ctx context.Context, aluno *Aluno) (*Aluno, error)
	Update(ctx context.Context, aluno *Aluno) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

// withTurmaNome adds the read-time class label to a student projection.
func withTurmaNome(q *bun.SelectQuery) *bun.SelectQuery {
	return q.
		ColumnExpr("a.*").
		ColumnExpr("t.nome AS turma_nome").
		Join("LEFT JOIN turmas AS t ON t.id = a.turma_id")
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Aluno, int, error) {
	start := time.Now()

	var alunos []Aluno
	q := withTurmaNome(r.db.NewSelect().Model(&alunos))

	if filters.EscolaID != "" {
		q = q.Where("a.escola_id = ?", filters.EscolaID)
	}
	if filters.Status != "" && filters.Status != StatusTodos {
		q = q.Where("a.status = ?", filters.Status)
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				WhereOr("a.nome ILIKE ?", pattern).
				WhereOr("a.responsavel ILIKE ?", pattern).
				WhereOr("a.email ILIKE ?", pattern)
		})
	}

	total, err := q.
		OrderExpr("a.created_at DESC").
		Limit(filters.Limit).
		Offset((filters.Page - 1) * filters.Limit).
		ScanAndCount(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "alunos", time.Since(start), err)

	if err != nil {
		return nil, 0, err
	}
	return alunos, total, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Aluno, error) {
	start := time.Now()
	aluno := new(Aluno)
	err := withTurmaNome(r.db.NewSelect().Model(aluno)).
		Where("a.id = ?", id).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "alunos", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAlunoNotFound
		}
		return nil, err
	}
	return aluno, nil
}

func (r *repository) Create(ctx context.Context, aluno *Aluno) (*Aluno, error) {
	if aluno.ID == "" {
		aluno.ID = uuid.NewString()
	}

	start := time.Now()
	_, err := r.db.NewInsert().Model(aluno).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "alunos", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return aluno, nil
}

func (r *repository) Update(ctx context.Context, aluno *Aluno) error {
	aluno.UpdatedAt = time.Now()

	start := time.Now()
	result, err := r.db.NewUpdate().Model(aluno).WherePK().Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "alunos", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrAlunoNotFound
	}
	return nil
}

// Delete removes the row outright. Student deletion is intentionally a hard
// delete: the student side is the source of truth for class occupancy, so
// the derived counts drop with the row.
func (r *repository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	result, err := r.db.NewDelete().
		Model((*Aluno)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "alunos", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrAlunoNotFound
	}
	return nil
}
