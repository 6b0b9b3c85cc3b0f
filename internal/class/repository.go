package class

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"educapta/internal/db"
	"educapta/internal/metrics"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ListFilters narrows a class listing. Zero values disable a filter; the
// "todos"/"todas" sentinels disable periodo/serie respectively.
type ListFilters struct {
	EscolaID string
	Search   string
	Periodo  string
	Serie    string
	Page     int
	Limit    int
}

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Turma, int, error)
	GetByID(ctx context.Context, id string) (*Turma, error)
	Create(ctx context.Context, turma *Turma) (*Turma, error)
	Update(ctx context.Context, id string, req UpdateTurmaRequest) (*Turma, error)
	SoftDelete(ctx context.Context, id string) (*Turma, error)
}

type repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(bunDB *bun.DB, m *metrics.Metrics) Repository {
	return &repository{
		db:      bunDB,
		metrics: m,
	}
}

// occupancy counts linked alunos with status matriculado, at read time.
const occupancyExpr = "(SELECT count(*) FROM alunos AS a WHERE a.turma_id = t.id AND a.status = 'matriculado')"

func withProjection(q *bun.SelectQuery) *bun.SelectQuery {
	return q.
		ColumnExpr("t.*").
		ColumnExpr(occupancyExpr+" AS vagas_ocupadas").
		ColumnExpr("e.nome AS escola_nome").
		Join("JOIN escolas AS e ON e.id = t.escola_id")
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Turma, int, error) {
	start := time.Now()

	var turmas []Turma
	q := withProjection(r.db.NewSelect().Model(&turmas)).
		Where("t.ativo = TRUE")

	if filters.EscolaID != "" {
		q = q.Where("t.escola_id = ?", filters.EscolaID)
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				WhereOr("t.nome ILIKE ?", pattern).
				WhereOr("t.serie ILIKE ?", pattern).
				WhereOr("t.professor ILIKE ?", pattern)
		})
	}
	if filters.Periodo != "" && filters.Periodo != PeriodoTodos {
		q = q.Where("t.periodo = ?", filters.Periodo)
	}
	if filters.Serie != "" && filters.Serie != SerieTodas {
		q = q.Where("t.serie = ?", filters.Serie)
	}

	total, err := q.
		OrderExpr("t.serie ASC, t.nome ASC").
		Limit(filters.Limit).
		Offset((filters.Page - 1) * filters.Limit).
		ScanAndCount(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "turmas", time.Since(start), err)

	if err != nil {
		return nil, 0, err
	}

	for i := range turmas {
		turmas[i].computeVagas()
	}
	return turmas, total, nil
}

// GetByID returns the class regardless of the active flag: retired classes
// stay readable by direct lookup, they are only excluded from List.
func (r *repository) GetByID(ctx context.Context, id string) (*Turma, error) {
	turma, err := r.selectOne(ctx, r.db, id)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var alunos []AlunoResumo
	err = r.db.NewSelect().
		TableExpr("alunos AS a").
		Column("a.id", "a.nome", "a.status").
		Where("a.turma_id = ?", id).
		OrderExpr("a.nome ASC").
		Scan(ctx, &alunos)

	r.metrics.Database.RecordQuery(ctx, "select", "alunos", time.Since(start), err)

	if err != nil {
		return nil, err
	}

	turma.Alunos = alunos
	return turma, nil
}

func (r *repository) Create(ctx context.Context, turma *Turma) (*Turma, error) {
	if turma.ID == "" {
		turma.ID = uuid.NewString()
	}

	var created *Turma
	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		// Pre-check for a friendly Conflict; the composite unique constraint
		// is the backstop against a concurrent create.
		duplicate, err := r.nameYearTaken(ctx, tx, turma.EscolaID, turma.Nome, turma.AnoLetivo, "")
		if err != nil {
			return err
		}
		if duplicate {
			return ErrTurmaDuplicada
		}

		start := time.Now()
		_, err = tx.NewInsert().Model(turma).Exec(ctx)
		r.metrics.Database.RecordQuery(ctx, "insert", "turmas", time.Since(start), err)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return ErrTurmaDuplicada
			}
			return err
		}

		created, err = r.selectOne(ctx, tx, turma.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *repository) Update(ctx context.Context, id string, req UpdateTurmaRequest) (*Turma, error) {
	var updated *Turma
	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		start := time.Now()
		existing := new(Turma)
		err := tx.NewSelect().
			Model(existing).
			Where("t.id = ?", id).
			For("UPDATE").
			Scan(ctx)
		r.metrics.Database.RecordQuery(ctx, "select", "turmas", time.Since(start), err)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTurmaNotFound
			}
			return err
		}

		// Re-check name+year uniqueness against other classes when the name
		// changes, using the new year when one is supplied.
		if req.Nome != nil && *req.Nome != existing.Nome {
			anoLetivo := existing.AnoLetivo
			if req.AnoLetivo != nil {
				anoLetivo = *req.AnoLetivo
			}
			duplicate, err := r.nameYearTaken(ctx, tx, existing.EscolaID, *req.Nome, anoLetivo, id)
			if err != nil {
				return err
			}
			if duplicate {
				return ErrTurmaDuplicada
			}
		}

		req.Apply(existing)
		existing.UpdatedAt = time.Now()

		start = time.Now()
		_, err = tx.NewUpdate().Model(existing).WherePK().Exec(ctx)
		r.metrics.Database.RecordQuery(ctx, "update", "turmas", time.Since(start), err)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return ErrTurmaDuplicada
			}
			return err
		}

		updated, err = r.selectOne(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SoftDelete retires the class, guarded by occupancy: any linked aluno,
// whatever its status, blocks the delete. Guard and write share one
// transaction.
func (r *repository) SoftDelete(ctx context.Context, id string) (*Turma, error) {
	var retired *Turma
	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		start := time.Now()
		turma := new(Turma)
		err := tx.NewSelect().
			Model(turma).
			Where("t.id = ?", id).
			For("UPDATE").
			Scan(ctx)
		r.metrics.Database.RecordQuery(ctx, "select", "turmas", time.Since(start), err)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTurmaNotFound
			}
			return err
		}

		start = time.Now()
		linked, err := tx.NewSelect().
			TableExpr("alunos AS a").
			Where("a.turma_id = ?", id).
			Count(ctx)
		r.metrics.Database.RecordQuery(ctx, "select", "alunos", time.Since(start), err)
		if err != nil {
			return err
		}
		if linked > 0 {
			return ErrTurmaComAlunos
		}

		turma.Ativo = false
		turma.UpdatedAt = time.Now()

		start = time.Now()
		_, err = tx.NewUpdate().
			Model(turma).
			Column("ativo", "updated_at").
			WherePK().
			Exec(ctx)
		r.metrics.Database.RecordQuery(ctx, "update", "turmas", time.Since(start), err)
		if err != nil {
			return err
		}

		retired = turma
		return nil
	})
	if err != nil {
		return nil, err
	}
	return retired, nil
}

// nameYearTaken reports whether another class in the school already uses
// this name for the academic year, regardless of its active flag.
func (r *repository) nameYearTaken(ctx context.Context, tx bun.Tx, escolaID, nome string, anoLetivo int, excludeID string) (bool, error) {
	start := time.Now()
	q := tx.NewSelect().
		Model((*Turma)(nil)).
		Where("t.escola_id = ?", escolaID).
		Where("t.nome = ?", nome).
		Where("t.ano_letivo = ?", anoLetivo)
	if excludeID != "" {
		q = q.Where("t.id != ?", excludeID)
	}

	exists, err := q.Exists(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "turmas", time.Since(start), err)
	return exists, err
}

func (r *repository) selectOne(ctx context.Context, idb bun.IDB, id string) (*Turma, error) {
	start := time.Now()
	turma := new(Turma)
	err := withProjection(idb.NewSelect().Model(turma)).
		Where("t.id = ?", id).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "turmas", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTurmaNotFound
		}
		return nil, err
	}

	turma.computeVagas()
	return turma, nil
}
