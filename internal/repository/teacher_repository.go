package repository

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"docentes/internal/model"
)

// TeacherRepository defines teacher persistence operations.
type TeacherRepository interface {
	FindPage(ctx context.Context, req PageRequest) (*Page, error)
	FindAll(ctx context.Context) ([]model.Teacher, error)
	// FindByID returns (nil, nil) when no teacher has the id.
	FindByID(ctx context.Context, id uint) (*model.Teacher, error)
	FindByCity(ctx context.Context, city string) ([]model.Teacher, error)
	FindByMinimumExperience(ctx context.Context, years int) ([]model.Teacher, error)
	ExistsByID(ctx context.Context, id uint) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByEmailExcludingID(ctx context.Context, email string, id uint) (bool, error)
	// AverageAge returns nil when there are no teachers.
	AverageAge(ctx context.Context, currentYear int) (*float64, error)
	Create(ctx context.Context, teacher *model.Teacher) error
	Update(ctx context.Context, teacher *model.Teacher) error
	DeleteByID(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo TeacherRepository) error) error
}

type teacherRepository struct {
	db *gorm.DB
}

// NewTeacherRepository creates a new teacher repository.
func NewTeacherRepository(db *gorm.DB) TeacherRepository {
	return &teacherRepository{db: db}
}

// FindPage returns one page of teachers ordered by full name.
func (r *teacherRepository) FindPage(ctx context.Context, req PageRequest) (*Page, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Teacher{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var teachers []model.Teacher
	if err := r.db.WithContext(ctx).
		Order("nom_docente ASC").
		Order("id_docente ASC").
		Offset(req.Offset()).
		Limit(req.Size).
		Find(&teachers).Error; err != nil {
		return nil, err
	}

	return &Page{Items: teachers, Number: req.Page, Size: req.Size, Total: total}, nil
}

// FindAll returns every teacher in storage order.
func (r *teacherRepository) FindAll(ctx context.Context) ([]model.Teacher, error) {
	var teachers []model.Teacher
	if err := r.db.WithContext(ctx).Find(&teachers).Error; err != nil {
		return nil, err
	}
	return teachers, nil
}

// FindByID finds a teacher by ID.
func (r *teacherRepository) FindByID(ctx context.Context, id uint) (*model.Teacher, error) {
	var teacher model.Teacher
	err := r.db.WithContext(ctx).Where("id_docente = ?", id).First(&teacher).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

// FindByCity matches the city exactly, case included.
func (r *teacherRepository) FindByCity(ctx context.Context, city string) ([]model.Teacher, error) {
	var teachers []model.Teacher
	if err := r.db.WithContext(ctx).
		Where(r.caseSensitiveEquals("ciu_docente"), city).
		Find(&teachers).Error; err != nil {
		return nil, err
	}
	return teachers, nil
}

// FindByMinimumExperience lists teachers with at least years of service, most experienced first.
func (r *teacherRepository) FindByMinimumExperience(ctx context.Context, years int) ([]model.Teacher, error) {
	var teachers []model.Teacher
	if err := r.db.WithContext(ctx).
		Where("tiempo_servicio >= ?", years).
		Order("tiempo_servicio DESC").
		Find(&teachers).Error; err != nil {
		return nil, err
	}
	return teachers, nil
}

func (r *teacherRepository) ExistsByID(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Teacher{}).
		Where("id_docente = ?", id).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *teacherRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Teacher{}).
		Where("email_docente = ?", email).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// ExistsByEmailExcludingID reports whether a teacher other than id holds email.
func (r *teacherRepository) ExistsByEmailExcludingID(ctx context.Context, email string, id uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Teacher{}).
		Where("email_docente = ? AND id_docente <> ?", email, id).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// AverageAge computes mean(currentYear - birth year) in the database.
func (r *teacherRepository) AverageAge(ctx context.Context, currentYear int) (*float64, error) {
	var avg sql.NullFloat64
	row := r.db.WithContext(ctx).Model(&model.Teacher{}).
		Select("AVG("+r.ageExpr()+")", currentYear).
		Row()
	if err := row.Scan(&avg); err != nil {
		return nil, err
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

// Create inserts a teacher and populates its ID.
func (r *teacherRepository) Create(ctx context.Context, teacher *model.Teacher) error {
	return r.db.WithContext(ctx).Create(teacher).Error
}

// Update replaces every column of an existing teacher.
func (r *teacherRepository) Update(ctx context.Context, teacher *model.Teacher) error {
	return r.db.WithContext(ctx).Save(teacher).Error
}

// DeleteByID removes a teacher. It returns gorm.ErrRecordNotFound when nothing was deleted.
func (r *teacherRepository) DeleteByID(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Teacher{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *teacherRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Teacher{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// WithTransaction executes a function within a database transaction.
func (r *teacherRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo TeacherRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &teacherRepository{db: tx}
		return fn(ctx, txRepo)
	})
}

// MySQL compares with the column collation, which is case-insensitive by default.
func (r *teacherRepository) caseSensitiveEquals(column string) string {
	if r.db.Dialector.Name() == "mysql" {
		return "BINARY " + column + " = ?"
	}
	return column + " = ?"
}

// ageExpr is currentYear (the single bind parameter) minus the birth year.
func (r *teacherRepository) ageExpr() string {
	switch r.db.Dialector.Name() {
	case "mysql":
		return "? - YEAR(fec_nacimiento)"
	case "sqlite":
		return "? - CAST(strftime('%Y', fec_nacimiento) AS INTEGER)"
	default:
		return "CAST(? AS INTEGER) - EXTRACT(YEAR FROM fec_nacimiento)"
	}
}
