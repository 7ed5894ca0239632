package model

// Teacher represents a member of the university teaching staff.
// The validate tags are the field rules for records that do not arrive
// through the HTTP payload, such as seed files.
type Teacher struct {
	ID             uint   `json:"id" gorm:"column:id_docente;primaryKey;autoIncrement"`
	FullName       string `json:"full_name" gorm:"column:nom_docente;size:100;not null" validate:"required,notblank,min=2,max=100"`
	Address        string `json:"address" gorm:"column:dir_docente;size:200;not null" validate:"required,notblank,max=200"`
	City           string `json:"city" gorm:"column:ciu_docente;size:50;not null;index" validate:"required,notblank,max=50"`
	Email          string `json:"email" gorm:"column:email_docente;size:100;not null;uniqueIndex" validate:"required,email,max=100"`
	BirthDate      Date   `json:"birth_date" gorm:"column:fec_nacimiento;not null" validate:"required,pastdate" swaggertype:"string" example:"1975-03-15"`
	YearsOfService int    `json:"years_of_service" gorm:"column:tiempo_servicio;not null" validate:"min=0,max=50"`
}

// TableName keeps the historical table name.
func (Teacher) TableName() string {
	return "docentes"
}
