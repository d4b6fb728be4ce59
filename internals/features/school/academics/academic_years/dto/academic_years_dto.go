// file: internals/features/school/academics/academic_years/dto/academic_years_dto.go
package dto

import (
	"time"

	"mektebim_backend/internals/features/school/academics/academic_years/model"
)

type CreateAcademicYearRequest struct {
	Name      string    `json:"name" validate:"required,max=50"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
	IsActive  bool      `json:"is_active"`
}

func (r *CreateAcademicYearRequest) ToModel() *model.AcademicYearModel {
	return &model.AcademicYearModel{
		AcademicYearsName:      r.Name,
		AcademicYearsStartDate: r.StartDate,
		AcademicYearsEndDate:   r.EndDate,
		AcademicYearsIsActive:  r.IsActive,
	}
}
