// file: internals/features/exercises/model/exercise_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tipe exercise — angka mengikuti data lama
type ExerciseType int16

const (
	ExerciseTypeRegular  ExerciseType = 1
	ExerciseTypeTutorial ExerciseType = 2
)

// ExerciseModel merepresentasikan tabel `exercises`
type ExerciseModel struct {
	ExerciseID uuid.UUID `json:"exercise_id" gorm:"column:exercise_id;type:uuid;default:gen_random_uuid();primaryKey"`

	ExerciseTitle    string `json:"exercise_title" gorm:"column:exercise_title;type:varchar(100);not null"`
	ExerciseAbstract string `json:"exercise_abstract" gorm:"column:exercise_abstract;type:text"`

	// Durasi maksimum rekaman (detik)
	ExerciseMaxDurationSeconds int `json:"exercise_max_duration_seconds" gorm:"column:exercise_max_duration_seconds;not null;default:0"`

	ExerciseType ExerciseType `json:"exercise_type" gorm:"column:exercise_type;type:smallint;not null;default:1"`

	// Relasi (FK)
	ExerciseAuthorID *uuid.UUID `json:"exercise_author_id" gorm:"column:exercise_author_id;type:uuid;index"`
	ExerciseDeviceID *uuid.UUID `json:"exercise_device_id" gorm:"column:exercise_device_id;type:uuid;index"`

	ExerciseCreatedAt time.Time      `json:"exercise_created_at" gorm:"column:exercise_created_at;type:timestamptz;autoCreateTime"`
	ExerciseUpdatedAt time.Time      `json:"exercise_updated_at" gorm:"column:exercise_updated_at;type:timestamptz;autoUpdateTime"`
	ExerciseDeletedAt gorm.DeletedAt `json:"exercise_deleted_at" gorm:"column:exercise_deleted_at;index"`
}

func (ExerciseModel) TableName() string {
	return "exercises"
}

// IsTutorial: exercise tipe tutorial memicu auto-approve saat finalisasi
func (e *ExerciseModel) IsTutorial() bool {
	return e.ExerciseType == ExerciseTypeTutorial
}
