package student_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

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

type listAlunosResponse struct {
	Data       []student.Aluno     `json:"data"`
	Pagination httputil.Pagination `json:"pagination"`
}

func TestStudentHandler_Shared(t *testing.T) {
	pgContainer := testdb.SetupSharedPostgres(t)
	defer pgContainer.Cleanup(t)

	pgContainer.RunMigrations(t,
		(*school.Escola)(nil),
		(*class.Turma)(nil),
		(*student.Aluno)(nil),
	)

	// Create handler ONCE and reuse across all subtests
	repo := student.NewRepository(pgContainer.DB, metrics.NewMock())
	service := student.NewService(repo, nil)
	handler := student.NewHandler(service, logger.New(), metrics.NewMock())
	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		handler.RegisterRoutes(r)
	})

	ctx := context.Background()

	seedAluno := func(t *testing.T, aluno *student.Aluno) *student.Aluno {
		t.Helper()
		created, err := repo.Create(ctx, aluno)
		require.NoError(t, err)
		return created
	}

	t.Run("CreateAluno", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "alunos")

		payload := map[string]interface{}{
			"escolaId": "S1",
			"nome":     "Ana",
		}
		body, _ := json.Marshal(payload)

		req := httptest.NewRequest(http.MethodPost, "/api/students", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var created student.Aluno
		require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "matriculado", created.Status)

		// Id is stable across subsequent gets
		req = httptest.NewRequest(http.MethodGet, "/api/students/"+created.ID, nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var fetched student.Aluno
		require.NoError(t, json.NewDecoder(w.Body).Decode(&fetched))
		assert.Equal(t, created.ID, fetched.ID)
		assert.Equal(t, "Ana", fetched.Nome)
	})

	t.Run("CreateAlunoValidation", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "alunos")

		payload := map[string]interface{}{
			"escolaId": "S1",
			"email":    "not-an-email",
		}
		body, _ := json.Marshal(payload)

		req := httptest.NewRequest(http.MethodPost, "/api/students", bytes.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var errBody struct {
			Error   string                     `json:"error"`
			Details []httputil.ValidationIssue `json:"details"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&errBody))
		assert.NotEmpty(t, errBody.Error)
		assert.NotEmpty(t, errBody.Details)
	})

	t.Run("GetAlunoNotFound", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "alunos")

		req := httptest.NewRequest(http.MethodGet, "/api/students/"+uuid.NewString(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("UpdateAlunoPartial", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "alunos")

		created := seedAluno(t, &student.Aluno{
			EscolaID:    "S1",
			Nome:        "Ana",
			Responsavel: "Maria",
			Status:      "matriculado",
		})

		body, _ := json.Marshal(map[string]interface{}{"status": "inativo"})
		req := httptest.NewRequest(http.MethodPut, "/api/students/"+created.ID, bytes.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		req = httptest.NewRequest(http.MethodGet, "/api/students/"+created.ID, nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var fetched student.Aluno
		require.NoError(t, json.NewDecoder(w.Body).Decode(&fetched))
		assert.Equal(t, "inativo", fetched.Status)
		assert.Equal(t, "Ana", fetched.Nome)
		assert.Equal(t, "Maria", fetched.Responsavel)
	})

	t.Run("UpdateAlunoClearsBirthDate", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "alunos")

		nascimento := time.Date(2016, 6, 1, 0, 0, 0, 0, time.UTC)
		created := seedAluno(t, &student.Aluno{
			EscolaID:       "S1",
			Nome:           "Ana",
			Status:         "matriculado",
			DataNascimento: &nascimento,
		})

		body, _ := json.Marshal(map[string]interface{}{"dataNascimento": ""})
		req := httptest.NewRequest(http.MethodPut, "/api/students/"+created.ID, bytes.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var updated student.Aluno
		require.NoError(t, json.NewDecoder(w.Body).Decode(&updated))
		assert.Nil(t, updated.DataNascimento)
	})

	t.Run("UpdateAlunoNotFound", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "alunos")

		body, _ := json.Marshal(map[string]interface{}{"nome": "Novo Nome"})
		req := httptest.NewRequest(http.MethodPut, "/api/students/"+uuid.NewString(), bytes.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("DeleteAluno", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "alunos")

		created := seedAluno(t, &student.Aluno{EscolaID: "S1", Nome: "Ana", Status: "matriculado"})

		req := httptest.NewRequest(http.MethodDelete, "/api/students/"+created.ID, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.NotEmpty(t, resp["message"])

		req = httptest.NewRequest(http.MethodGet, "/api/students/"+created.ID, nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("DeleteAlunoNotFound", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "alunos")

		req := httptest.NewRequest(http.MethodDelete, "/api/students/"+uuid.NewString(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("ListPagination", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "alunos")

		for i := 0; i < 23; i++ {
			seedAluno(t, &student.Aluno{
				EscolaID: "S1",
				Nome:     fmt.Sprintf("Aluno %02d", i),
				Status:   "matriculado",
			})
		}

		req := httptest.NewRequest(http.MethodGet, "/api/students?limit=10", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp listAlunosResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Len(t, resp.Data, 10)
		assert.Equal(t, 23, resp.Pagination.Total)
		assert.Equal(t, 3, resp.Pagination.Pages)
	})

	t.Run("ListFilters", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "alunos")

		seedAluno(t, &student.Aluno{EscolaID: "S1", Nome: "Ana Souza", Responsavel: "Maria", Status: "matriculado"})
		seedAluno(t, &student.Aluno{EscolaID: "S1", Nome: "Bruno Lima", Status: "pre_matricula"})
		seedAluno(t, &student.Aluno{EscolaID: "S2", Nome: "Carla Dias", Status: "matriculado"})

		// School filter
		req := httptest.NewRequest(http.MethodGet, "/api/students?escola_id=S1", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var resp listAlunosResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Len(t, resp.Data, 2)

		// Status filter
		req = httptest.NewRequest(http.MethodGet, "/api/students?status=pre_matricula", nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "Bruno Lima", resp.Data[0].Nome)

		// The "todos" sentinel disables the status filter
		req = httptest.NewRequest(http.MethodGet, "/api/students?status=todos", nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Len(t, resp.Data, 3)

		// Case-insensitive search across nome and responsavel
		req = httptest.NewRequest(http.MethodGet, "/api/students?search=maria", nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "Ana Souza", resp.Data[0].Nome)
	})

	t.Run("TurmaLabelResolvedAtReadTime", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "alunos", "turmas")

		turma := &class.Turma{
			ID:         uuid.NewString(),
			EscolaID:   "S1",
			Nome:       "1A",
			Serie:      "1",
			Periodo:    "matutino",
			Capacidade: 25,
			AnoLetivo:  2024,
			Ativo:      true,
		}
		_, err := pgContainer.DB.NewInsert().Model(turma).Exec(ctx)
		require.NoError(t, err)

		created := seedAluno(t, &student.Aluno{
			EscolaID: "S1",
			Nome:     "Ana",
			Status:   "matriculado",
			TurmaID:  &turma.ID,
		})

		req := httptest.NewRequest(http.MethodGet, "/api/students/"+created.ID, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var fetched student.Aluno
		require.NoError(t, json.NewDecoder(w.Body).Decode(&fetched))
		assert.Equal(t, "1A", fetched.TurmaNome)
	})
}
