package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "docentes/internal/errors"
	"docentes/internal/model"
	"docentes/internal/service"
)

// TeacherHandler handles teacher endpoints.
type TeacherHandler struct {
	teacherService  service.TeacherService
	defaultPageSize int
}

// NewTeacherHandler creates a new teacher handler.
func NewTeacherHandler(teacherService service.TeacherService, defaultPageSize int) *TeacherHandler {
	if defaultPageSize < 1 {
		defaultPageSize = 10
	}
	return &TeacherHandler{teacherService: teacherService, defaultPageSize: defaultPageSize}
}

// TeacherRequest is the payload of create and update.
type TeacherRequest struct {
	FullName       string     `json:"full_name" validate:"required,notblank,min=2,max=100" example:"Dr. Juan Carlos Perez Lopez"`
	Address        string     `json:"address" validate:"required,notblank,max=200" example:"Av. Los Incas 123, San Blas"`
	City           string     `json:"city" validate:"required,notblank,max=50" example:"Cusco"`
	Email          string     `json:"email" validate:"required,email,max=100" example:"juan.perez@universidad.edu.pe"`
	BirthDate      model.Date `json:"birth_date" validate:"required,pastdate" swaggertype:"string" example:"1975-03-15"`
	YearsOfService *int       `json:"years_of_service" validate:"required,min=0,max=50" example:"15"`
}

func (r *TeacherRequest) toModel() *model.Teacher {
	t := &model.Teacher{
		FullName:  r.FullName,
		Address:   r.Address,
		City:      r.City,
		Email:     r.Email,
		BirthDate: r.BirthDate,
	}
	if r.YearsOfService != nil {
		t.YearsOfService = *r.YearsOfService
	}
	return t
}

// AverageAgeResponse represents the average age response.
type AverageAgeResponse struct {
	AverageAge float64 `json:"average_age"`
	Total      int64   `json:"total"`
	Message    string  `json:"message"`
}

// ListTeachers godoc
// @Summary List teachers
// @Description Paginated list of teachers ordered by full name
// @Tags teachers
// @Produce json
// @Param page query int false "Zero-based page number" default(0)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} service.TeacherPage
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /docentes [get]
func (h *TeacherHandler) ListTeachers(c echo.Context) error {
	page, size := 0, h.defaultPageSize
	if err := echo.QueryParamsBinder(c).
		Int("page", &page).
		Int("size", &size).
		BindError(); err != nil {
		return apperrors.InvalidArgument("page and size must be integers")
	}
	if page < 0 || size < 1 {
		return apperrors.InvalidArgument("page must be >= 0 and size must be >= 1")
	}

	result, err := h.teacherService.List(c.Request().Context(), page, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// GetTeacher godoc
// @Summary Get teacher by id
// @Tags teachers
// @Produce json
// @Param id path int true "Teacher ID"
// @Success 200 {object} model.Teacher
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /docentes/{id} [get]
func (h *TeacherHandler) GetTeacher(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	teacher, err := h.teacherService.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, teacher)
}

// CreateTeacher godoc
// @Summary Create teacher
// @Tags teachers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param teacher body TeacherRequest true "Teacher payload"
// @Success 201 {object} model.Teacher
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /docentes [post]
func (h *TeacherHandler) CreateTeacher(c echo.Context) error {
	req, err := bindTeacher(c)
	if err != nil {
		return err
	}
	created, err := h.teacherService.Create(c.Request().Context(), req.toModel())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

// UpdateTeacher godoc
// @Summary Update teacher
// @Description Replaces every field of an existing teacher
// @Tags teachers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Teacher ID"
// @Param teacher body TeacherRequest true "Teacher payload"
// @Success 200 {object} model.Teacher
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /docentes/{id} [put]
func (h *TeacherHandler) UpdateTeacher(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	req, err := bindTeacher(c)
	if err != nil {
		return err
	}
	updated, err := h.teacherService.Update(c.Request().Context(), id, req.toModel())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteTeacher godoc
// @Summary Delete teacher
// @Tags teachers
// @Security BearerAuth
// @Param id path int true "Teacher ID"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /docentes/{id} [delete]
func (h *TeacherHandler) DeleteTeacher(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.teacherService.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListByCity godoc
// @Summary List teachers by city
// @Description Exact, case-sensitive match on city
// @Tags teachers
// @Produce json
// @Param ciudad path string true "City" example(Cusco)
// @Success 200 {object} service.CityResult
// @Failure 404 {object} errors.ErrorResponse
// @Router /docentes/ciudad/{ciudad} [get]
func (h *TeacherHandler) ListByCity(c echo.Context) error {
	result, err := h.teacherService.ListByCity(c.Request().Context(), c.Param("ciudad"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// ListByExperience godoc
// @Summary List teachers by minimum experience
// @Tags teachers
// @Produce json
// @Param anos path int true "Minimum years of service"
// @Success 200 {object} service.ExperienceResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /docentes/experiencia/{anos} [get]
func (h *TeacherHandler) ListByExperience(c echo.Context) error {
	years, err := strconv.Atoi(c.Param("anos"))
	if err != nil {
		return apperrors.InvalidArgument("years of experience must be an integer")
	}
	result, err := h.teacherService.ListByMinimumExperience(c.Request().Context(), years)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// AverageAge godoc
// @Summary Average age of all teachers
// @Tags teachers
// @Produce json
// @Success 200 {object} AverageAgeResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /docentes/edad-promedio [get]
func (h *TeacherHandler) AverageAge(c echo.Context) error {
	summary, err := h.teacherService.AverageAge(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, AverageAgeResponse{
		AverageAge: summary.AverageAge,
		Total:      summary.Total,
		Message:    fmt.Sprintf("average age computed over %d teachers", summary.Total),
	})
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperrors.InvalidArgument("invalid teacher id: %s", c.Param("id"))
	}
	return uint(id), nil
}

func bindTeacher(c echo.Context) (*TeacherRequest, error) {
	var req TeacherRequest
	if err := c.Bind(&req); err != nil {
		var dateErr *model.DateFormatError
		if errors.As(err, &dateErr) {
			return nil, apperrors.Malformed(dateErr.Error(), dateErr.Value, err)
		}
		return nil, apperrors.Malformed("request body could not be read", nil, err)
	}
	if err := c.Validate(&req); err != nil {
		return nil, err
	}
	return &req, nil
}
