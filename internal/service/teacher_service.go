package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"docentes/internal/cache"
	apperrors "docentes/internal/errors"
	"docentes/internal/model"
	"docentes/internal/repository"
)

const defaultTeacherCacheTTL = 5 * time.Minute

// TeacherService validates and orchestrates teacher operations.
type TeacherService interface {
	List(ctx context.Context, page, size int) (*TeacherPage, error)
	ListAll(ctx context.Context) ([]model.Teacher, error)
	Get(ctx context.Context, id uint) (*model.Teacher, error)
	Create(ctx context.Context, teacher *model.Teacher) (*model.Teacher, error)
	Update(ctx context.Context, id uint, teacher *model.Teacher) (*model.Teacher, error)
	Delete(ctx context.Context, id uint) error
	ListByCity(ctx context.Context, city string) (*CityResult, error)
	ListByMinimumExperience(ctx context.Context, years int) (*ExperienceResult, error)
	AverageAge(ctx context.Context) (*AgeSummary, error)
}

// TeacherPage is one page of teachers ordered by full name.
type TeacherPage struct {
	Items       []model.Teacher `json:"items"`
	CurrentPage int             `json:"current_page"`
	TotalItems  int64           `json:"total_items"`
	TotalPages  int             `json:"total_pages"`
	PageSize    int             `json:"page_size"`
	HasNext     bool            `json:"has_next"`
	HasPrevious bool            `json:"has_previous"`
	IsFirst     bool            `json:"is_first"`
	IsLast      bool            `json:"is_last"`
}

// CityResult lists the teachers living in City.
type CityResult struct {
	City     string          `json:"city"`
	Total    int             `json:"total"`
	Teachers []model.Teacher `json:"items"`
}

// ExperienceResult lists teachers with at least MinimumYears of service.
type ExperienceResult struct {
	MinimumYears int             `json:"minimum_years"`
	Total        int             `json:"total"`
	Teachers     []model.Teacher `json:"items"`
}

// AgeSummary is the average age over Total teachers, rounded to two decimals.
type AgeSummary struct {
	AverageAge float64 `json:"average_age"`
	Total      int64   `json:"total"`
}

// TeacherCache is the part of cache.Client the service relies on.
type TeacherCache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) bool
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	SetJSONIfAbsent(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Option customizes a teacher service.
type Option func(*teacherService)

// WithClock replaces time.Now as the source of "today".
func WithClock(now func() time.Time) Option {
	return func(s *teacherService) {
		s.now = now
	}
}

// WithCache replaces the redis client given to NewTeacherService.
func WithCache(c TeacherCache) Option {
	return func(s *teacherService) {
		s.cache = c
	}
}

type teacherService struct {
	repo     repository.TeacherRepository
	cache    TeacherCache
	cacheTTL time.Duration
	now      func() time.Time
}

// NewTeacherService creates a teacher service. cache may be nil.
//
// Cache entries are ordered against writes: Get only fills an absent key,
// Update overwrites the key with the committed record and Delete leaves a
// null marker, so a read that started before a write cannot cache stale data.
func NewTeacherService(repo repository.TeacherRepository, cache *cache.Client, cacheTTL time.Duration, opts ...Option) TeacherService {
	if cacheTTL <= 0 {
		cacheTTL = defaultTeacherCacheTTL
	}
	s := &teacherService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *teacherService) cacheKey(id uint) string {
	return fmt.Sprintf("teacher:%d", id)
}

// List returns the requested page of teachers.
func (s *teacherService) List(ctx context.Context, page, size int) (*TeacherPage, error) {
	p, err := s.repo.FindPage(ctx, repository.PageRequest{Page: page, Size: size})
	if err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	items := p.Items
	if items == nil {
		items = []model.Teacher{}
	}
	return &TeacherPage{
		Items:       items,
		CurrentPage: p.Number,
		TotalItems:  p.Total,
		TotalPages:  p.TotalPages(),
		PageSize:    p.Size,
		HasNext:     p.HasNext(),
		HasPrevious: p.HasPrevious(),
		IsFirst:     p.IsFirst(),
		IsLast:      p.IsLast(),
	}, nil
}

// ListAll returns every teacher, unordered.
func (s *teacherService) ListAll(ctx context.Context) ([]model.Teacher, error) {
	teachers, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all teachers: %w", err)
	}
	return teachers, nil
}

// Get retrieves a teacher by ID with caching.
func (s *teacherService) Get(ctx context.Context, id uint) (*model.Teacher, error) {
	// A cached null marks a deleted teacher; fall through to the store.
	var cached *model.Teacher
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) && cached != nil {
		return cached, nil
	}

	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get teacher %d: %w", id, err)
	}
	if teacher == nil {
		return nil, apperrors.NotFound("teacher not found with id: %d", id)
	}

	_ = s.cache.SetJSONIfAbsent(ctx, s.cacheKey(id), teacher, s.cacheTTL)
	return teacher, nil
}

// Create validates and stores a new teacher. The store assigns the ID.
func (s *teacherService) Create(ctx context.Context, teacher *model.Teacher) (*model.Teacher, error) {
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.TeacherRepository) error {
		exists, err := tx.ExistsByEmail(ctx, teacher.Email)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if exists {
			return apperrors.DuplicateEmail("a teacher with email %s already exists", teacher.Email)
		}

		if err := s.validateDates(teacher); err != nil {
			return err
		}

		teacher.ID = 0
		if err := tx.Create(ctx, teacher); err != nil {
			return translateWriteError(err, teacher.Email)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return teacher, nil
}

// Update replaces every mutable field of teacher id with the given values.
func (s *teacherService) Update(ctx context.Context, id uint, teacher *model.Teacher) (*model.Teacher, error) {
	var updated *model.Teacher
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.TeacherRepository) error {
		existing, err := tx.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get teacher %d: %w", id, err)
		}
		if existing == nil {
			return apperrors.NotFound("teacher not found with id: %d", id)
		}

		taken, err := tx.ExistsByEmailExcludingID(ctx, teacher.Email, id)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if taken {
			return apperrors.DuplicateEmail("another teacher already uses email %s", teacher.Email)
		}

		if err := s.validateDates(teacher); err != nil {
			return err
		}

		existing.FullName = teacher.FullName
		existing.Address = teacher.Address
		existing.City = teacher.City
		existing.Email = teacher.Email
		existing.BirthDate = teacher.BirthDate
		existing.YearsOfService = teacher.YearsOfService
		if err := tx.Update(ctx, existing); err != nil {
			return translateWriteError(err, teacher.Email)
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.SetJSON(ctx, s.cacheKey(id), updated, s.cacheTTL)
	return updated, nil
}

// Delete removes teacher id permanently.
func (s *teacherService) Delete(ctx context.Context, id uint) error {
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.TeacherRepository) error {
		exists, err := tx.ExistsByID(ctx, id)
		if err != nil {
			return fmt.Errorf("check teacher %d: %w", id, err)
		}
		if !exists {
			return apperrors.NotFound("cannot delete, teacher not found with id: %d", id)
		}
		if err := tx.DeleteByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("cannot delete, teacher not found with id: %d", id)
			}
			return fmt.Errorf("delete teacher %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	_ = s.cache.SetJSON(ctx, s.cacheKey(id), nil, s.cacheTTL)
	return nil
}

// ListByCity returns the teachers whose city matches exactly, case included.
func (s *teacherService) ListByCity(ctx context.Context, city string) (*CityResult, error) {
	teachers, err := s.repo.FindByCity(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("list teachers by city: %w", err)
	}
	if len(teachers) == 0 {
		return nil, apperrors.NotFound("no teachers found in city: %s", city)
	}
	return &CityResult{City: city, Total: len(teachers), Teachers: teachers}, nil
}

// ListByMinimumExperience returns teachers with at least years of service, most experienced first.
func (s *teacherService) ListByMinimumExperience(ctx context.Context, years int) (*ExperienceResult, error) {
	if years < 0 {
		return nil, apperrors.InvalidArgument("years of experience cannot be negative")
	}
	teachers, err := s.repo.FindByMinimumExperience(ctx, years)
	if err != nil {
		return nil, fmt.Errorf("list teachers by experience: %w", err)
	}
	if len(teachers) == 0 {
		return nil, apperrors.NotFound("no teachers found with at least %d years of experience", years)
	}
	return &ExperienceResult{MinimumYears: years, Total: len(teachers), Teachers: teachers}, nil
}

// AverageAge returns the mean of (current year - birth year) rounded half-up to two decimals.
func (s *teacherService) AverageAge(ctx context.Context) (*AgeSummary, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count teachers: %w", err)
	}
	if total == 0 {
		return nil, apperrors.NotFound("no teachers registered to compute the average age")
	}

	avg, err := s.repo.AverageAge(ctx, s.now().Year())
	if err != nil {
		return nil, fmt.Errorf("average age: %w", err)
	}
	summary := &AgeSummary{Total: total}
	if avg != nil {
		summary.AverageAge, _ = decimal.NewFromFloat(*avg).Round(2).Float64()
	}
	return summary, nil
}

// translateWriteError turns a unique-index violation into DuplicateEmail.
func translateWriteError(err error, email string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.DuplicateEmail("a teacher with email %s already exists", email)
	}
	return fmt.Errorf("save teacher: %w", err)
}
