package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docentes/internal/auth"
	"docentes/internal/config"
	"docentes/internal/db"
	apperrors "docentes/internal/errors"
	"docentes/internal/handler"
	"docentes/internal/logger"
	"docentes/internal/model"
	"docentes/internal/repository"
	"docentes/internal/service"
)

const testSecret = "test-secret"

func fixedClock() time.Time { return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC) }

func newTestServer(t *testing.T, writeAuth bool) *echo.Echo {
	t.Helper()
	gormDB, err := db.NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB, false))

	svc := service.NewTeacherService(repository.NewTeacherRepository(gormDB), nil, 0, service.WithClock(fixedClock))
	cfg := &config.Config{WriteAuth: writeAuth, JWTSecret: testSecret, DefaultPageSize: 10}

	e := echo.New()
	Register(e, cfg, logger.Nop(), handler.NewTeacherHandler(svc, cfg.DefaultPageSize), auth.NewJWTService(testSecret))
	return e
}

func do(e *echo.Echo, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func teacherJSON(name, city, email, birth string, years int) string {
	return fmt.Sprintf(`{"full_name":%q,"address":"Av. El Sol 100","city":%q,"email":%q,"birth_date":%q,"years_of_service":%d}`,
		name, city, email, birth, years)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func TestHealthz(t *testing.T) {
	e := newTestServer(t, false)
	rec := do(e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestTeacherCRUD(t *testing.T) {
	e := newTestServer(t, false)

	rec := do(e, http.MethodPost, "/api/docentes", teacherJSON("Juan Perez", "Cusco", "juan@uni.edu.pe", "1975-03-15", 15))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created model.Teacher
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotZero(t, created.ID)
	assert.Equal(t, "1975-03-15", created.BirthDate.String())
	assert.Contains(t, rec.Body.String(), `"birth_date":"1975-03-15"`)

	path := fmt.Sprintf("/api/docentes/%d", created.ID)

	rec = do(e, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got model.Teacher
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, created, got)

	rec = do(e, http.MethodPut, path, teacherJSON("Juan Perez Lopez", "Lima", "juan@uni.edu.pe", "1975-03-15", 16))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated model.Teacher
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Lima", updated.City)
	assert.Equal(t, 16, updated.YearsOfService)

	rec = do(e, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(e, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Equal(t, "NOT_FOUND", resp.Code)
	assert.Equal(t, path, resp.Path)

	rec = do(e, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPut, path, teacherJSON("Nobody", "Lima", "nobody@uni.edu.pe", "1975-03-15", 1))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateTeacher_Errors(t *testing.T) {
	e := newTestServer(t, false)

	rec := do(e, http.MethodPost, "/api/docentes", teacherJSON("Ana Flores", "Lima", "ana@uni.edu.pe", "1970-04-20", 10))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	t.Run("duplicate email", func(t *testing.T) {
		rec := do(e, http.MethodPost, "/api/docentes", teacherJSON("Otra Ana", "Cusco", "ana@uni.edu.pe", "1971-04-20", 3))
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "DUPLICATE_EMAIL", decodeError(t, rec).Code)
	})

	t.Run("field validation", func(t *testing.T) {
		rec := do(e, http.MethodPost, "/api/docentes", `{"full_name":"","address":"x","city":"Lima","email":"nope","birth_date":"1970-01-01","years_of_service":60}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, "VALIDATION_FAILED", resp.Code)
		assert.Contains(t, resp.ValidationErrors, "full_name")
		assert.Contains(t, resp.ValidationErrors, "email")
		assert.Contains(t, resp.ValidationErrors, "years_of_service")
	})

	t.Run("malformed date", func(t *testing.T) {
		rec := do(e, http.MethodPost, "/api/docentes", teacherJSON("Luis", "Puno", "luis@uni.edu.pe", "15/03/1975", 5))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, "MALFORMED_REQUEST", resp.Code)
		assert.Equal(t, "15/03/1975", resp.InvalidValue)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := do(e, http.MethodPost, "/api/docentes", `{"full_name":`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "MALFORMED_REQUEST", decodeError(t, rec).Code)
	})

	t.Run("too old", func(t *testing.T) {
		rec := do(e, http.MethodPost, "/api/docentes", teacherJSON("Viejo", "Puno", "viejo@uni.edu.pe", "1920-01-01", 5))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, "INVALID_DATE", resp.Code)
		assert.Equal(t, "birth_date", resp.Field)
	})

	t.Run("tenure beyond working age", func(t *testing.T) {
		rec := do(e, http.MethodPost, "/api/docentes", teacherJSON("Joven", "Puno", "joven@uni.edu.pe", "1990-01-01", 10))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, "INVALID_DATE", resp.Code)
		assert.Equal(t, "years_of_service", resp.Field)
	})

	t.Run("bad id", func(t *testing.T) {
		rec := do(e, http.MethodGet, "/api/docentes/abc", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListTeachers(t *testing.T) {
	e := newTestServer(t, false)
	for i := 1; i <= 15; i++ {
		rec := do(e, http.MethodPost, "/api/docentes", teacherJSON(fmt.Sprintf("Teacher %02d", i), "Puno", fmt.Sprintf("t%d@uni.edu.pe", i), "1970-01-01", 10))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := do(e, http.MethodGet, "/api/docentes?page=1&size=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page service.TeacherPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Items, 5)
	assert.Equal(t, int64(15), page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 1, page.CurrentPage)
	assert.True(t, page.IsLast)
	assert.Equal(t, "Teacher 11", page.Items[0].FullName)

	rec = do(e, http.MethodGet, "/api/docentes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Items, 10)
	assert.Equal(t, 0, page.CurrentPage)

	rec = do(e, http.MethodGet, "/api/docentes?page=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(e, http.MethodGet, "/api/docentes?size=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(e, http.MethodGet, "/api/docentes?page=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFiltersAndAverageAge(t *testing.T) {
	e := newTestServer(t, false)

	rec := do(e, http.MethodGet, "/api/docentes/edad-promedio", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	for _, body := range []string{
		teacherJSON("Ana Quispe", "Cusco", "a@uni.edu.pe", "1985-01-01", 2),
		teacherJSON("Bruno Ccori", "Cusco", "b@uni.edu.pe", "1975-01-01", 18),
		teacherJSON("Carla Rojas", "Lima", "c@uni.edu.pe", "1980-01-01", 9),
	} {
		rec := do(e, http.MethodPost, "/api/docentes", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodGet, "/api/docentes/ciudad/Cusco", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var byCity service.CityResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &byCity))
	assert.Equal(t, 2, byCity.Total)

	rec = do(e, http.MethodGet, "/api/docentes/ciudad/lima", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodGet, "/api/docentes/experiencia/9", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var byYears service.ExperienceResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &byYears))
	require.Equal(t, 2, byYears.Total)
	assert.Equal(t, 18, byYears.Teachers[0].YearsOfService)

	rec = do(e, http.MethodGet, "/api/docentes/experiencia/40", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(e, http.MethodGet, "/api/docentes/experiencia/-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(e, http.MethodGet, "/api/docentes/experiencia/many", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodGet, "/api/docentes/edad-promedio", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var avg handler.AverageAgeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &avg))
	assert.Equal(t, 45.0, avg.AverageAge)
	assert.Equal(t, int64(3), avg.Total)
}

func TestWriteAuth(t *testing.T) {
	e := newTestServer(t, true)
	body := teacherJSON("Ana Flores", "Lima", "ana@uni.edu.pe", "1970-04-20", 10)

	rec := do(e, http.MethodPost, "/api/docentes", body)
	assert.Contains(t, []int{http.StatusBadRequest, http.StatusUnauthorized}, rec.Code)

	rec = do(e, http.MethodPost, "/api/docentes", body, echo.HeaderAuthorization, "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := auth.NewJWTService(testSecret).GenerateToken("tester", time.Hour)
	require.NoError(t, err)
	rec = do(e, http.MethodPost, "/api/docentes", body, echo.HeaderAuthorization, "Bearer "+token)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Reads stay public.
	rec = do(e, http.MethodGet, "/api/docentes", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
