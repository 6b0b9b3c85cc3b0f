package student

import (
	"context"
	"errors"
	"fmt"

	"educapta/internal/events"
)

var (
	ErrAlunoNotFound = errors.New("aluno not found")
	ErrInvalidInput  = errors.New("invalid input")
)

type Service interface {
	List(ctx context.Context, filters ListFilters) ([]Aluno, int, error)
	Get(ctx context.Context, id string) (*Aluno, error)
	Create(ctx context.Context, req CreateAlunoRequest) (*Aluno, error)
	Update(ctx context.Context, id string, req UpdateAlunoRequest) (*Aluno, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo   Repository
	events events.Publisher
}

// NewService wires the student registry. The publisher may be nil; change
// events are then skipped.
func NewService(repo Repository, publisher events.Publisher) Service {
	return &service{
		repo:   repo,
		events: publisher,
	}
}

func (s *service) List(ctx context.Context, filters ListFilters) ([]Aluno, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *service) Get(ctx context.Context, id string) (*Aluno, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, req CreateAlunoRequest) (*Aluno, error) {
	aluno, err := req.ToAluno()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.repo.Create(ctx, aluno)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.ActionCreated, created.ID, created.EscolaID)
	return created, nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateAlunoRequest) (*Aluno, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}

	aluno, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := req.Apply(aluno); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.repo.Update(ctx, aluno); err != nil {
		return nil, err
	}

	// Re-read to refresh the derived turma label after a class change.
	updated, err := s.repo.GetByID(ctx, id)
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

	aluno, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, events.ActionDeleted, aluno.ID, aluno.EscolaID)
	return nil
}

func (s *service) publish(ctx context.Context, action, id, escolaID string) {
	if s.events == nil {
		return
	}
	// Publish failures are logged by the producer and never block the caller.
	_ = s.events.Publish(ctx, events.NewChangeEvent("aluno", action, id, escolaID))
}
