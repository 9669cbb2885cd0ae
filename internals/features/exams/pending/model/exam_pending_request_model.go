// file: internals/features/exams/pending/model/exam_pending_request_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ExamPendingRequestModel merepresentasikan tabel `exam_pending_requests` —
// staging area submission yang belum diproses cron ingest.
//
// Baris hanya dimutasi oleh scheduler (flag processed / attempt counter) dan
// dihapus oleh finalizer setelah exam final terbentuk. At-most-once processing
// dijamin oleh filter is_processed + lease non-overlap di scheduler.
type ExamPendingRequestModel struct {
	ExamPendingRequestID uuid.UUID `json:"exam_pending_request_id" gorm:"column:exam_pending_request_id;type:uuid;default:gen_random_uuid();primaryKey"`

	// Durasi yang dilaporkan client (detik) — divalidasi ulang oleh finalizer
	ExamPendingRequestDurationSeconds int `json:"exam_pending_request_duration_seconds" gorm:"column:exam_pending_request_duration_seconds;not null;default:0"`

	ExamPendingRequestIsProcessed bool `json:"exam_pending_request_is_processed" gorm:"column:exam_pending_request_is_processed;not null;default:false;index"`

	// Jumlah tick yang sudah mencoba memproses baris ini (untuk dead-letter opsional)
	ExamPendingRequestAttempts int `json:"exam_pending_request_attempts" gorm:"column:exam_pending_request_attempts;not null;default:0"`

	// Metadata dari upload intake (MAC device, info client, dst.)
	ExamPendingRequestMeta datatypes.JSON `json:"exam_pending_request_meta,omitempty" gorm:"column:exam_pending_request_meta;type:jsonb"`

	// Relasi (FK)
	ExamPendingRequestTakerID    uuid.UUID `json:"exam_pending_request_taker_id" gorm:"column:exam_pending_request_taker_id;type:uuid;not null;index"`
	ExamPendingRequestExerciseID uuid.UUID `json:"exam_pending_request_exercise_id" gorm:"column:exam_pending_request_exercise_id;type:uuid;not null;index"`
	ExamPendingRequestDeviceID   uuid.UUID `json:"exam_pending_request_device_id" gorm:"column:exam_pending_request_device_id;type:uuid;not null;index"`

	ExamPendingRequestCreatedAt time.Time `json:"exam_pending_request_created_at" gorm:"column:exam_pending_request_created_at;type:timestamptz;autoCreateTime"`
	ExamPendingRequestUpdatedAt time.Time `json:"exam_pending_request_updated_at" gorm:"column:exam_pending_request_updated_at;type:timestamptz;autoUpdateTime"`

	// Anak: blob mentah hasil upload (umumnya tepat satu)
	ExamPendingRequestVideos []ExamPendingRequestVideoModel `json:"exam_pending_request_videos,omitempty" gorm:"foreignKey:ExamPendingRequestVideoRequestID;references:ExamPendingRequestID;constraint:OnDelete:CASCADE"`
}

func (ExamPendingRequestModel) TableName() string {
	return "exam_pending_requests"
}
