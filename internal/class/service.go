package class

import (
	"context"
	"errors"

	"educapta/internal/events"
	"educapta/internal/school"
)

var (
	ErrTurmaNotFound  = errors.New("turma not found")
	ErrEscolaNotFound = errors.New("escola not found")
	ErrTurmaDuplicada = errors.New("turma with this name already exists for the school and year")
	ErrTurmaComAlunos = errors.New("turma has linked students")
	ErrInvalidInput   = errors.New("invalid input")
)

type Service interface {
	List(ctx context.Context, filters ListFilters) ([]Turma, int, error)
	Get(ctx context.Context, id string) (*Turma, error)
	Create(ctx context.Context, req CreateTurmaRequest) (*Turma, error)
	Update(ctx context.Context, id string, req UpdateTurmaRequest) (*Turma, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo    Repository
	escolas school.Repository
	events  events.Publisher
}

// NewService wires the class registry. The publisher may be nil; change
// events are then skipped.
func NewService(repo Repository, escolas school.Repository, publisher events.Publisher) Service {
	return &service{
		repo:    repo,
		escolas: escolas,
		events:  publisher,
	}
}

func (s *service) List(ctx context.Context, filters ListFilters) ([]Turma, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *service) Get(ctx context.Context, id string) (*Turma, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, req CreateTurmaRequest) (*Turma, error) {
	exists, err := s.escolas.Exists(ctx, req.EscolaID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrEscolaNotFound
	}

	created, err := s.repo.Create(ctx, req.ToTurma())
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.ActionCreated, created.ID, created.EscolaID)
	return created, nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateTurmaRequest) (*Turma, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}

	updated, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.ActionUpdated, updated.ID, updated.EscolaID)
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidInput
	}

	retired, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return err
	}

	s.publish(ctx, events.ActionRetired, retired.ID, retired.EscolaID)
	return nil
}

func (s *service) publish(ctx context.Context, action, id, escolaID string) {
	if s.events == nil {
		return
	}
	// Publish failures are logged by the producer and never block the caller.
	_ = s.events.Publish(ctx, events.NewChangeEvent("turma", action, id, escolaID))
}
