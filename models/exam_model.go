package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExamStatus string

const (
	ExamInconcluso ExamStatus = "Inconcluso"
	ExamActivo     ExamStatus = "Activo"
	ExamDisponible ExamStatus = "Disponible"
	ExamSuspendido ExamStatus = "Suspendido"
	ExamInactivo   ExamStatus = "Inactivo"
	ExamFinalizado ExamStatus = "Finalizado"
)

// ValidExamStatus reports whether s is one of the closed status set.
func ValidExamStatus(s ExamStatus) bool {
	switch s {
	case ExamInconcluso, ExamActivo, ExamDisponible, ExamSuspendido, ExamInactivo, ExamFinalizado:
		return true
	}
	return false
}

type Exam struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title    string    `gorm:"size:255;not null" json:"title"`
	Weight   float64   `gorm:"type:numeric(5,2);not null;default:1.00" json:"weight"`
	CourseID uuid.UUID `gorm:"type:uuid;not null" json:"course_id"`

	Status   ExamStatus `gorm:"size:20;not null;default:'Inconcluso'" json:"status"`
	OpensAt  *time.Time `json:"opens_at"`
	ClosesAt *time.Time `json:"closes_at"`

	Questions []Question `gorm:"foreignKey:ExamID" json:"questions,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
