// file: internals/features/exams/exams/dto/exam_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	model "psq_backend/internals/features/exams/exams/model"
)

type ExamVideoResponse struct {
	ExamVideoID           uuid.UUID `json:"exam_video_id"`
	ExamVideoType         string    `json:"exam_video_type"`
	ExamVideoURL          string    `json:"exam_video_url"`
	ExamVideoThumbnailURL *string   `json:"exam_video_thumbnail_url,omitempty"`
	ExamVideoViews        int       `json:"exam_video_views"`
	ExamVideoAuthorID     uuid.UUID `json:"exam_video_author_id"`
	ExamVideoShares       []string  `json:"exam_video_shares"`
	ExamVideoCreatedAt    time.Time `json:"exam_video_created_at"`
}

type ExamResponse struct {
	ExamID              uuid.UUID  `json:"exam_id"`
	ExamNotes           string     `json:"exam_notes"`
	ExamDurationSeconds int        `json:"exam_duration_seconds"`
	ExamApproved        bool       `json:"exam_approved"`
	ExamEvaluated       bool       `json:"exam_evaluated"`
	ExamEvalDate        *time.Time `json:"exam_eval_date,omitempty"`
	ExamViews           int        `json:"exam_views"`
	ExamTakerID         uuid.UUID  `json:"exam_taker_id"`
	ExamEvaluatorID     *uuid.UUID `json:"exam_evaluator_id,omitempty"`
	ExamExerciseID      uuid.UUID  `json:"exam_exercise_id"`
	ExamDeviceID        uuid.UUID  `json:"exam_device_id"`
	ExamCreatedAt       time.Time  `json:"exam_created_at"`
	ExamUpdatedAt       time.Time  `json:"exam_updated_at"`

	ExamVideos []ExamVideoResponse `json:"exam_videos,omitempty"`
}

// EvaluateExamRequest — body POST /api/exams/:id/evaluate.
// Evaluator diambil dari token, bukan dari body.
type EvaluateExamRequest struct {
	ExamApproved *bool  `json:"exam_approved" validate:"required"`
	ExamNotes    string `json:"exam_notes" validate:"max=2000"`
}

// ShareExamVideoRequest — body POST /api/exam-videos/:id/share
type ShareExamVideoRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

func ToExamVideoResponse(m *model.ExamVideoModel) ExamVideoResponse {
	shares := []string(m.ExamVideoShares)
	if shares == nil {
		shares = []string{}
	}
	return ExamVideoResponse{
		ExamVideoID:           m.ExamVideoID,
		ExamVideoType:         m.ExamVideoType,
		ExamVideoURL:          m.ExamVideoURL,
		ExamVideoThumbnailURL: m.ExamVideoThumbnailURL,
		ExamVideoViews:        m.ExamVideoViews,
		ExamVideoAuthorID:     m.ExamVideoAuthorID,
		ExamVideoShares:       shares,
		ExamVideoCreatedAt:    m.ExamVideoCreatedAt,
	}
}

func ToExamResponse(m *model.ExamModel) ExamResponse {
	resp := ExamResponse{
		ExamID:              m.ExamID,
		ExamNotes:           m.ExamNotes,
		ExamDurationSeconds: m.ExamDurationSeconds,
		ExamApproved:        m.ExamApproved,
		ExamEvaluated:       m.ExamEvaluated,
		ExamEvalDate:        m.ExamEvalDate,
		ExamViews:           m.ExamViews,
		ExamTakerID:         m.ExamTakerID,
		ExamEvaluatorID:     m.ExamEvaluatorID,
		ExamExerciseID:      m.ExamExerciseID,
		ExamDeviceID:        m.ExamDeviceID,
		ExamCreatedAt:       m.ExamCreatedAt,
		ExamUpdatedAt:       m.ExamUpdatedAt,
	}
	for i := range m.ExamVideos {
		resp.ExamVideos = append(resp.ExamVideos, ToExamVideoResponse(&m.ExamVideos[i]))
	}
	return resp
}
