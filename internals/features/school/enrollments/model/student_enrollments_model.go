// file: internals/features/school/enrollments/model/student_enrollments_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/* ======================================================
   ENUM: enrollment_status
====================================================== */

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentPromoted  EnrollmentStatus = "promoted"
	EnrollmentGraduated EnrollmentStatus = "graduated"
	EnrollmentRetained  EnrollmentStatus = "retained"
	EnrollmentWithdrawn EnrollmentStatus = "withdrawn"
)

/* ======================================================
   Model: student_enrollments
====================================================== */

// StudentEnrollmentModel binds one student to one grade for one academic
// year. At most one active enrollment per (student, academic year).
type StudentEnrollmentModel struct {
	// PK
	StudentEnrollmentsID uuid.UUID `gorm:"type:uuid;primaryKey;column:student_enrollments_id" json:"student_enrollments_id"`

	// Relasi wajib
	StudentEnrollmentsStudentID      uuid.UUID `gorm:"type:uuid;not null;column:student_enrollments_student_id;index:idx_enrollments_student" json:"student_enrollments_student_id"`
	StudentEnrollmentsGradeID        uuid.UUID `gorm:"type:uuid;not null;column:student_enrollments_grade_id;index:idx_enrollments_grade" json:"student_enrollments_grade_id"`
	StudentEnrollmentsAcademicYearID uuid.UUID `gorm:"type:uuid;not null;column:student_enrollments_academic_year_id;index:idx_enrollments_year" json:"student_enrollments_academic_year_id"`

	// Status & nomor
	StudentEnrollmentsStatus         EnrollmentStatus `gorm:"type:varchar(20);not null;default:'active';column:student_enrollments_status;index:idx_enrollments_status" json:"student_enrollments_status"`
	StudentEnrollmentsStudentNumber  string           `gorm:"size:50;not null;column:student_enrollments_student_number" json:"student_enrollments_student_number"`
	StudentEnrollmentsEnrollmentDate time.Time        `gorm:"not null;column:student_enrollments_enrollment_date" json:"student_enrollments_enrollment_date"`
	StudentEnrollmentsEnrollmentType *string          `gorm:"size:50;column:student_enrollments_enrollment_type" json:"student_enrollments_enrollment_type,omitempty"`

	// Veli / tibbi / lojistik metadata (carried verbatim across promotion)
	StudentEnrollmentsPrimaryGuardianID          *uuid.UUID     `gorm:"type:uuid;column:student_enrollments_primary_guardian_id" json:"student_enrollments_primary_guardian_id,omitempty"`
	StudentEnrollmentsSecondaryGuardianID        *uuid.UUID     `gorm:"type:uuid;column:student_enrollments_secondary_guardian_id" json:"student_enrollments_secondary_guardian_id,omitempty"`
	StudentEnrollmentsEmergencyContacts          datatypes.JSON `gorm:"type:jsonb;column:student_enrollments_emergency_contacts" json:"student_enrollments_emergency_contacts,omitempty"`
	StudentEnrollmentsMedicalInformation         *string        `gorm:"type:text;column:student_enrollments_medical_information" json:"student_enrollments_medical_information,omitempty"`
	StudentEnrollmentsTransportationInfo         *string        `gorm:"type:text;column:student_enrollments_transportation_info" json:"student_enrollments_transportation_info,omitempty"`
	StudentEnrollmentsSpecialRequirements        *string        `gorm:"type:text;column:student_enrollments_special_requirements" json:"student_enrollments_special_requirements,omitempty"`
	StudentEnrollmentsAttendanceTargetPercentage *int           `gorm:"column:student_enrollments_attendance_target_percentage" json:"student_enrollments_attendance_target_percentage,omitempty"`

	// Icaze/razilik bayraqlari
	StudentEnrollmentsPhotoPermission bool `gorm:"not null;default:false;column:student_enrollments_photo_permission" json:"student_enrollments_photo_permission"`
	StudentEnrollmentsMedicalConsent  bool `gorm:"not null;default:false;column:student_enrollments_medical_consent" json:"student_enrollments_medical_consent"`
	StudentEnrollmentsTripPermission  bool `gorm:"not null;default:false;column:student_enrollments_trip_permission" json:"student_enrollments_trip_permission"`

	StudentEnrollmentsExpectedGraduationDate *time.Time `gorm:"type:date;column:student_enrollments_expected_graduation_date" json:"student_enrollments_expected_graduation_date,omitempty"`

	// Cixis
	StudentEnrollmentsWithdrawalDate   *time.Time `gorm:"column:student_enrollments_withdrawal_date" json:"student_enrollments_withdrawal_date,omitempty"`
	StudentEnrollmentsWithdrawalReason *string    `gorm:"type:text;column:student_enrollments_withdrawal_reason" json:"student_enrollments_withdrawal_reason,omitempty"`
	StudentEnrollmentsEnrollmentNotes  *string    `gorm:"type:text;column:student_enrollments_enrollment_notes" json:"student_enrollments_enrollment_notes,omitempty"`

	// Timestamps (soft delete)
	StudentEnrollmentsCreatedAt time.Time      `gorm:"column:student_enrollments_created_at;autoCreateTime" json:"student_enrollments_created_at"`
	StudentEnrollmentsUpdatedAt time.Time      `gorm:"column:student_enrollments_updated_at;autoUpdateTime" json:"student_enrollments_updated_at"`
	StudentEnrollmentsDeletedAt gorm.DeletedAt `gorm:"column:student_enrollments_deleted_at;index" json:"student_enrollments_deleted_at,omitempty"`
}

func (StudentEnrollmentModel) TableName() string { return "student_enrollments" }

func (m *StudentEnrollmentModel) BeforeCreate(tx *gorm.DB) error {
	if m.StudentEnrollmentsID == uuid.Nil {
		m.StudentEnrollmentsID = uuid.New()
	}
	return nil
}

// CloneForYear builds the successor enrollment in the target grade/year,
// carrying the student number and every metadata block verbatim.
func (m *StudentEnrollmentModel) CloneForYear(targetGradeID, targetYearID uuid.UUID, enrolledAt time.Time) *StudentEnrollmentModel {
	return &StudentEnrollmentModel{
		StudentEnrollmentsStudentID:      m.StudentEnrollmentsStudentID,
		StudentEnrollmentsGradeID:        targetGradeID,
		StudentEnrollmentsAcademicYearID: targetYearID,
		StudentEnrollmentsStatus:         EnrollmentActive,
		StudentEnrollmentsStudentNumber:  m.StudentEnrollmentsStudentNumber,
		StudentEnrollmentsEnrollmentDate: enrolledAt,
		StudentEnrollmentsEnrollmentType: m.StudentEnrollmentsEnrollmentType,

		StudentEnrollmentsPrimaryGuardianID:          m.StudentEnrollmentsPrimaryGuardianID,
		StudentEnrollmentsSecondaryGuardianID:        m.StudentEnrollmentsSecondaryGuardianID,
		StudentEnrollmentsEmergencyContacts:          m.StudentEnrollmentsEmergencyContacts,
		StudentEnrollmentsMedicalInformation:         m.StudentEnrollmentsMedicalInformation,
		StudentEnrollmentsTransportationInfo:         m.StudentEnrollmentsTransportationInfo,
		StudentEnrollmentsSpecialRequirements:        m.StudentEnrollmentsSpecialRequirements,
		StudentEnrollmentsAttendanceTargetPercentage: m.StudentEnrollmentsAttendanceTargetPercentage,

		StudentEnrollmentsPhotoPermission: m.StudentEnrollmentsPhotoPermission,
		StudentEnrollmentsMedicalConsent:  m.StudentEnrollmentsMedicalConsent,
		StudentEnrollmentsTripPermission:  m.StudentEnrollmentsTripPermission,

		StudentEnrollmentsExpectedGraduationDate: m.StudentEnrollmentsExpectedGraduationDate,
	}
}
