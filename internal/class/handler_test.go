package class_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"educapta/internal/class"
	"educapta/internal/httputil"
	"educapta/internal/logger"
	"educapta/internal/metrics"
	"educapta/internal/school"
	"educapta/internal/student"
	"educapta/internal/testdb"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listTurmasResponse struct {
	Data       []class.Turma       `json:"data"`
	Pagination httputil.Pagination `json:"pagination"`
}

func TestClassHandler_Shared(t *testing.T) {
	pgContainer := testdb.SetupSharedPostgres(t)
	defer pgContainer.Cleanup(t)

	pgContainer.RunMigrations(t,
		(*school.Escola)(nil),
		(*class.Turma)(nil),
		(*student.Aluno)(nil),
	)

	escolas := school.NewRepository(pgContainer.DB, metrics.NewMock())
	repo := class.NewRepository(pgContainer.DB, metrics.NewMock())
	service := class.NewService(repo, escolas, nil)
	handler := class.NewHandler(service, logger.New(), metrics.NewMock())
	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		handler.RegisterRoutes(r)
	})

	ctx := context.Background()

	seedEscola := func(t *testing.T, id, nome string) {
		t.Helper()
		_, err := escolas.Create(ctx, &school.Escola{ID: id, Nome: nome})
		require.NoError(t, err)
	}

	seedAluno := func(t *testing.T, turmaID, status string) {
		t.Helper()
		aluno := &student.Aluno{
			ID:       uuid.NewString(),
			EscolaID: "S1",
			Nome:     "Aluno " + uuid.NewString()[:8],
			Status:   status,
			TurmaID:  &turmaID,
		}
		_, err := pgContainer.DB.NewInsert().Model(aluno).Exec(ctx)
		require.NoError(t, err)
	}

	createTurma := func(t *testing.T, payload map[string]interface{}) *class.Turma {
		t.Helper()
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest(http.MethodPost, "/api/classes", bytes.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

		var turma class.Turma
		require.NoError(t, json.NewDecoder(w.Body).Decode(&turma))
		return &turma
	}

	basePayload := func() map[string]interface{} {
		return map[string]interface{}{
			"escolaId":   "S1",
			"nome":       "1A",
			"serie":      "1",
			"periodo":    "matutino",
			"capacidade": 25,
			"anoLetivo":  2024,
		}
	}

	t.Run("CreateTurma", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "escolas", "turmas", "alunos")
		seedEscola(t, "S1", "Escola Modelo")

		turma := createTurma(t, basePayload())

		assert.NotEmpty(t, turma.ID)
		assert.True(t, turma.Ativo)
		assert.Equal(t, "Escola Modelo", turma.EscolaNome)
		assert.Equal(t, 0, turma.VagasOcupadas)
		assert.Equal(t, 25, turma.VagasDisponiveis)
	})

	t.Run("CreateTurmaDuplicateNameAndYear", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "escolas", "turmas", "alunos")
		seedEscola(t, "S1", "Escola Modelo")

		createTurma(t, basePayload())

		// Same (escolaId, nome, anoLetivo) with a different serie still collides
		dup := basePayload()
		dup["serie"] = "2"
		body, _ := json.Marshal(dup)
		req := httptest.NewRequest(http.MethodPost, "/api/classes", bytes.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var errBody map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&errBody))
		assert.Equal(t, "Já existe uma turma com este nome nesta escola", errBody["error"])

		// Same name in another year is fine
		other := basePayload()
		other["anoLetivo"] = 2025
		createTurma(t, other)
	})

	t.Run("CreateTurmaUnknownSchool", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "escolas", "turmas", "alunos")

		payload := basePayload()
		payload["escolaId"] = "missing"
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest(http.MethodPost, "/api/classes", bytes.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("CreateTurmaValidation", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "escolas", "turmas", "alunos")
		seedEscola(t, "S1", "Escola Modelo")

		payload := basePayload()
		payload["capacidade"] = 0
		payload["periodo"] = "noturno"
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest(http.MethodPost, "/api/classes", bytes.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var errBody struct {
			Error   string                     `json:"error"`
			Details []httputil.ValidationIssue `json:"details"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&errBody))
		assert.Equal(t, "Dados inválidos", errBody.Error)
		assert.Len(t, errBody.Details, 2)
	})

	t.Run("GetTurmaOccupancy", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "escolas", "turmas", "alunos")
		seedEscola(t, "S1", "Escola Modelo")

		turma := createTurma(t, basePayload())

		seedAluno(t, turma.ID, "matriculado")
		seedAluno(t, turma.ID, "matriculado")
		seedAluno(t, turma.ID, "inativo")

		req := httptest.NewRequest(http.MethodGet, "/api/classes/"+turma.ID, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var fetched class.Turma
		require.NoError(t, json.NewDecoder(w.Body).Decode(&fetched))

		// Only matriculado students occupy a seat, but all linked students are listed
		assert.Equal(t, 2, fetched.VagasOcupadas)
		assert.Equal(t, 23, fetched.VagasDisponiveis)
		assert.Len(t, fetched.Alunos, 3)
	})

	t.Run("GetTurmaNotFound", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "escolas", "turmas", "alunos")

		req := httptest.NewRequest(http.MethodGet, "/api/classes/"+uuid.NewString(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("ListTurmas", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "escolas", "turmas", "alunos")
		seedEscola(t, "S1", "Escola Modelo")

		first := basePayload()
		first["nome"] = "1B"
		first["serie"] = "1"
		createTurma(t, first)

		second := basePayload()
		second["nome"] = "1A"
		createTurma(t, second)

		third := basePayload()
		third["nome"] = "2A"
		third["serie"] = "2"
		third["periodo"] = "vespertino"
		third["professor"] = "Prof. Carlos"
		createTurma(t, third)

		req := httptest.NewRequest(http.MethodGet, "/api/classes", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp listTurmasResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.Len(t, resp.Data, 3)

		// Ordered by serie, then nome
		assert.Equal(t, "1A", resp.Data[0].Nome)
		assert.Equal(t, "1B", resp.Data[1].Nome)
		assert.Equal(t, "2A", resp.Data[2].Nome)

		for _, turma := range resp.Data {
			assert.Equal(t, turma.Capacidade-turma.VagasOcupadas, turma.VagasDisponiveis)
			assert.Equal(t, "Escola Modelo", turma.EscolaNome)
		}

		// Periodo filter
		req = httptest.NewRequest(http.MethodGet, "/api/classes?periodo=vespertino", nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "2A", resp.Data[0].Nome)

		// "todas" sentinel disables the serie filter
		req = httptest.NewRequest(http.MethodGet, "/api/classes?serie=todas", nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Len(t, resp.Data, 3)

		// Search matches professor too
		req = httptest.NewRequest(http.MethodGet, "/api/classes?search=carlos", nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "2A", resp.Data[0].Nome)
	})

	t.Run("ListPagination", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "escolas", "turmas", "alunos")
		seedEscola(t, "S1", "Escola Modelo")

		for i := 0; i < 23; i++ {
			payload := basePayload()
			payload["nome"] = fmt.Sprintf("Turma %02d", i)
			createTurma(t, payload)
		}

		req := httptest.NewRequest(http.MethodGet, "/api/classes?limit=10", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var resp listTurmasResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Len(t, resp.Data, 10)
		assert.Equal(t, 23, resp.Pagination.Total)
		assert.Equal(t, 3, resp.Pagination.Pages)
	})

	t.Run("UpdateTurmaPartial", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "escolas", "turmas", "alunos")
		seedEscola(t, "S1", "Escola Modelo")

		turma := createTurma(t, basePayload())

		body, _ := json.Marshal(map[string]interface{}{"capacidade": 30})
		req := httptest.NewRequest(http.MethodPut, "/api/classes/"+turma.ID, bytes.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var updated class.Turma
		require.NoError(t, json.NewDecoder(w.Body).Decode(&updated))
		assert.Equal(t, 30, updated.Capacidade)
		assert.Equal(t, 30, updated.VagasDisponiveis)
		assert.Equal(t, "1A", updated.Nome)
		assert.Equal(t, "matutino", updated.Periodo)
	})

	t.Run("UpdateTurmaDuplicateName", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "escolas", "turmas", "alunos")
		seedEscola(t, "S1", "Escola Modelo")

		createTurma(t, basePayload())

		other := basePayload()
		other["nome"] = "1B"
		second := createTurma(t, other)

		body, _ := json.Marshal(map[string]interface{}{"nome": "1A"})
		req := httptest.NewRequest(http.MethodPut, "/api/classes/"+second.ID, bytes.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		// Keeping its own name is not a collision
		body, _ = json.Marshal(map[string]interface{}{"nome": "1B", "sala": "12"})
		req = httptest.NewRequest(http.MethodPut, "/api/classes/"+second.ID, bytes.NewReader(body))
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("DeleteTurmaGuardedByLinkedStudents", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "escolas", "turmas", "alunos")
		seedEscola(t, "S1", "Escola Modelo")

		turma := createTurma(t, basePayload())
		// Even a non-matriculado student blocks the delete
		seedAluno(t, turma.ID, "inativo")

		req := httptest.NewRequest(http.MethodDelete, "/api/classes/"+turma.ID, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var errBody map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&errBody))
		assert.Equal(t, "Não é possível excluir uma turma com alunos matriculados", errBody["error"])

		// Still active
		req = httptest.NewRequest(http.MethodGet, "/api/classes/"+turma.ID, nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var fetched class.Turma
		require.NoError(t, json.NewDecoder(w.Body).Decode(&fetched))
		assert.True(t, fetched.Ativo)
	})

	t.Run("DeleteTurmaRetires", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "escolas", "turmas", "alunos")
		seedEscola(t, "S1", "Escola Modelo")

		turma := createTurma(t, basePayload())

		req := httptest.NewRequest(http.MethodDelete, "/api/classes/"+turma.ID, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		// Gone from the listing
		req = httptest.NewRequest(http.MethodGet, "/api/classes", nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var resp listTurmasResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Empty(t, resp.Data)

		// But still readable by id
		req = httptest.NewRequest(http.MethodGet, "/api/classes/"+turma.ID, nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var fetched class.Turma
		require.NoError(t, json.NewDecoder(w.Body).Decode(&fetched))
		assert.False(t, fetched.Ativo)
	})

	t.Run("DeleteTurmaNotFound", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "escolas", "turmas", "alunos")

		req := httptest.NewRequest(http.MethodDelete, "/api/classes/"+uuid.NewString(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
