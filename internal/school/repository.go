package school

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"educapta/internal/metrics"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var ErrEscolaNotFound = errors.New("escola not found")

type Repository interface {
	Create(ctx context.Context, escola *Escola) (*Escola, error)
	List(ctx context.Context) ([]Escola, error)
	GetByID(ctx context.Context, id string) (*Escola, error)
	Exists(ctx context.Context, id string) (bool, error)
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

func (r *repository) Create(ctx context.Context, escola *Escola) (*Escola, error) {
	if escola.ID == "" {
		escola.ID = uuid.NewString()
	}
	escola.Ativo = true

	start := time.Now()
	_, err := r.db.NewInsert().Model(escola).Returning("*").Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "insert", "escolas", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return escola, nil
}

func (r *repository) List(ctx context.Context) ([]Escola, error) {
	start := time.Now()
	var escolas []Escola
	err := r.db.NewSelect().
		Model(&escolas).
		Where("e.ativo = TRUE").
		Order("e.nome ASC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "escolas", time.Since(start), err)

	return escolas, err
}

func (r *repository) GetByID(ctx context.Context, id string) (*Escola, error) {
	start := time.Now()
	escola := new(Escola)
	err := r.db.NewSelect().Model(escola).Where("e.id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "escolas", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEscolaNotFound
		}
		return nil, err
	}
	return escola, nil
}

func (r *repository) Exists(ctx context.Context, id string) (bool, error) {
	start := time.Now()
	exists, err := r.db.NewSelect().
		Model((*Escola)(nil)).
		Where("e.id = ?", id).
		Exists(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "escolas", time.Since(start), err)

	return exists, err
}
