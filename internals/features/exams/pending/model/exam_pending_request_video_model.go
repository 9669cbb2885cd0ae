// file: internals/features/exams/pending/model/exam_pending_request_video_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamPendingRequestVideoModel merepresentasikan tabel `exam_pending_request_videos` —
// referensi ke file MKV mentah di storage lokal, dimiliki tepat satu pending request.
// File mentahnya baru boleh dihapus setelah artefak pengganti ter-commit (lihat finalizer).
type ExamPendingRequestVideoModel struct {
	ExamPendingRequestVideoID uuid.UUID `json:"exam_pending_request_video_id" gorm:"column:exam_pending_request_video_id;type:uuid;default:gen_random_uuid();primaryKey"`

	ExamPendingRequestVideoRequestID uuid.UUID `json:"exam_pending_request_video_request_id" gorm:"column:exam_pending_request_video_request_id;type:uuid;not null;index"`

	// Path file mentah di filesystem lokal (hasil chunked upload)
	ExamPendingRequestVideoFilePath string `json:"exam_pending_request_video_file_path" gorm:"column:exam_pending_request_video_file_path;type:text;not null"`

	ExamPendingRequestVideoCreatedAt time.Time `json:"exam_pending_request_video_created_at" gorm:"column:exam_pending_request_video_created_at;type:timestamptz;autoCreateTime"`
	ExamPendingRequestVideoUpdatedAt time.Time `json:"exam_pending_request_video_updated_at" gorm:"column:exam_pending_request_video_updated_at;type:timestamptz;autoUpdateTime"`
}

func (ExamPendingRequestVideoModel) TableName() string {
	return "exam_pending_request_videos"
}
