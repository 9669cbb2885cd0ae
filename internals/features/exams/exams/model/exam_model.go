// file: internals/features/exams/exams/model/exam_model.go
package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrExamDurationInvalid   = errors.New("exam_duration_seconds harus lebih besar dari 0")
	ErrExamAlreadyEvaluated  = errors.New("exam sudah pernah dievaluasi")
	ErrExamEvaluatorRequired = errors.New("evaluator wajib diisi saat evaluasi")
)

// ExamModel merepresentasikan tabel `exams` — hasil final dari satu pending request.
//
// Invarian evaluasi: exam_evaluated, exam_eval_date, exam_evaluator_id selalu
// terisi bersama-sama (atau kosong semua). exam_approved hanya bermakna
// setelah exam_evaluated = true.
type ExamModel struct {
	ExamID uuid.UUID `json:"exam_id" gorm:"column:exam_id;type:uuid;default:gen_random_uuid();primaryKey"`

	ExamNotes string `json:"exam_notes" gorm:"column:exam_notes;type:text"`

	// Durasi rekaman (detik); dijaga juga oleh CHECK constraint di DB
	ExamDurationSeconds int `json:"exam_duration_seconds" gorm:"column:exam_duration_seconds;not null;check:exam_duration_seconds > 0"`

	ExamApproved  bool       `json:"exam_approved" gorm:"column:exam_approved;not null;default:false"`
	ExamEvaluated bool       `json:"exam_evaluated" gorm:"column:exam_evaluated;not null;default:false"`
	ExamEvalDate  *time.Time `json:"exam_eval_date,omitempty" gorm:"column:exam_eval_date;type:timestamptz"`

	ExamViews int `json:"exam_views" gorm:"column:exam_views;not null;default:0"`

	// Relasi (FK)
	ExamTakerID     uuid.UUID  `json:"exam_taker_id" gorm:"column:exam_taker_id;type:uuid;not null;index"`
	ExamEvaluatorID *uuid.UUID `json:"exam_evaluator_id,omitempty" gorm:"column:exam_evaluator_id;type:uuid;index"`
	ExamExerciseID  uuid.UUID  `json:"exam_exercise_id" gorm:"column:exam_exercise_id;type:uuid;not null;index"`
	ExamDeviceID    uuid.UUID  `json:"exam_device_id" gorm:"column:exam_device_id;type:uuid;not null;index"`

	ExamCreatedAt time.Time      `json:"exam_created_at" gorm:"column:exam_created_at;type:timestamptz;autoCreateTime"`
	ExamUpdatedAt time.Time      `json:"exam_updated_at" gorm:"column:exam_updated_at;type:timestamptz;autoUpdateTime"`
	ExamDeletedAt gorm.DeletedAt `json:"exam_deleted_at" gorm:"column:exam_deleted_at;index"`

	// Anak: hasil transcode
	ExamVideos []ExamVideoModel `json:"exam_videos,omitempty" gorm:"foreignKey:ExamVideoExamID;references:ExamID"`
}

func (ExamModel) TableName() string {
	return "exams"
}

// Validate — finalizer tidak boleh percaya validasi upstream
func (m *ExamModel) Validate() error {
	if m.ExamDurationSeconds <= 0 {
		return ErrExamDurationInvalid
	}
	return nil
}

// BeforeCreate menjaga invarian sebelum insert
func (m *ExamModel) BeforeCreate(tx *gorm.DB) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if m.ExamEvaluated && (m.ExamEvaluatorID == nil || m.ExamEvalDate == nil) {
		return ErrExamEvaluatorRequired
	}
	return nil
}

// Evaluate mengisi ketiga field evaluasi sekaligus.
// Evaluasi ulang ditolak — approve/unapprove lanjutan urusan endpoint lain.
func (m *ExamModel) Evaluate(evaluatorID uuid.UUID, approved bool, notes string) error {
	if m.ExamEvaluated {
		return ErrExamAlreadyEvaluated
	}
	if evaluatorID == uuid.Nil {
		return ErrExamEvaluatorRequired
	}
	now := time.Now()
	m.ExamEvaluated = true
	m.ExamEvalDate = &now
	m.ExamEvaluatorID = &evaluatorID
	m.ExamApproved = approved
	if notes != "" {
		m.ExamNotes = notes
	}
	return nil
}

// AutoApproveTutorial — shortcut self-evaluation untuk exercise tipe tutorial:
// taker menjadi evaluator dirinya sendiri dan exam langsung disetujui.
func (m *ExamModel) AutoApproveTutorial() {
	now := time.Now()
	m.ExamApproved = true
	m.ExamEvaluated = true
	m.ExamEvalDate = &now
	evaluator := m.ExamTakerID
	m.ExamEvaluatorID = &evaluator
	m.ExamNotes = "auto-approved (tutorial)"
}
