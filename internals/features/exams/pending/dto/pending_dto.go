// file: internals/features/exams/pending/dto/pending_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	model "psq_backend/internals/features/exams/pending/model"
)

// CreatePendingRequest — body POST /api/exam-pending-requests.
// Dikirim device perekam setelah chunked upload MKV selesai.
type CreatePendingRequest struct {
	ExerciseID      uuid.UUID `json:"exercise_id" validate:"required"`
	DeviceMac       string    `json:"device_mac" validate:"required,len=12,alphanum"`
	DurationSeconds int       `json:"duration_seconds" validate:"required,gt=0"`
	RawFilePath     string    `json:"raw_file_path" validate:"required"`
}

type PendingResponse struct {
	ExamPendingRequestID uuid.UUID `json:"exam_pending_request_id"`
	TakerID              uuid.UUID `json:"taker_id"`
	ExerciseID           uuid.UUID `json:"exercise_id"`
	DeviceID             uuid.UUID `json:"device_id"`
	DurationSeconds      int       `json:"duration_seconds"`
	IsProcessed          bool      `json:"is_processed"`
	Attempts             int       `json:"attempts"`
	CreatedAt            time.Time `json:"created_at"`
}

func ToPendingResponse(m *model.ExamPendingRequestModel) PendingResponse {
	return PendingResponse{
		ExamPendingRequestID: m.ExamPendingRequestID,
		TakerID:              m.ExamPendingRequestTakerID,
		ExerciseID:           m.ExamPendingRequestExerciseID,
		DeviceID:             m.ExamPendingRequestDeviceID,
		DurationSeconds:      m.ExamPendingRequestDurationSeconds,
		IsProcessed:          m.ExamPendingRequestIsProcessed,
		Attempts:             m.ExamPendingRequestAttempts,
		CreatedAt:            m.ExamPendingRequestCreatedAt,
	}
}
