package service

import (
	"fmt"
	"time"

	apperrors "docentes/internal/errors"
	"docentes/internal/model"
)

const (
	maxTeacherAge     = 100
	minimumWorkingAge = 30
)

// ageOn returns the whole years elapsed between birth and today.
func ageOn(birth model.Date, today time.Time) int {
	b := birth.Time()
	age := today.Year() - b.Year()
	if today.Month() < b.Month() || (today.Month() == b.Month() && today.Day() < b.Day()) {
		age--
	}
	return age
}

func (s *teacherService) checkBirthDate(birth model.Date) error {
	if ageOn(birth, s.now()) > maxTeacherAge {
		return apperrors.InvalidDate("birth_date", birth.String(),
			fmt.Sprintf("birth date implies an invalid age (over %d years)", maxTeacherAge))
	}
	return nil
}

// checkYearsOfService rejects tenure longer than age minus the minimum working
// age. Below that age every tenure, 0 included, is rejected.
func (s *teacherService) checkYearsOfService(years int, birth model.Date) error {
	if birth.IsZero() {
		return nil
	}
	age := ageOn(birth, s.now())
	maxPossible := age - minimumWorkingAge
	if years > maxPossible {
		return apperrors.InvalidDate("years_of_service", years,
			fmt.Sprintf("years of service (%d) is not consistent with the teacher's age (%d years)", years, age))
	}
	return nil
}

func (s *teacherService) validateDates(t *model.Teacher) error {
	if err := s.checkBirthDate(t.BirthDate); err != nil {
		return err
	}
	return s.checkYearsOfService(t.YearsOfService, t.BirthDate)
}
