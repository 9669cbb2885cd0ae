// file: internals/features/exams/pipeline/store/pending_store.go
package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pendingModel "psq_backend/internals/features/exams/pending/model"
)

// PendingStore — akses staging area submission.
// Tidak ada locking di level store; keamanan konkurensi datang dari
// lease non-overlap scheduler + transaksi tunggal finalizer.
type PendingStore interface {
	// Semua submission dengan is_processed = false, urut created_at ASC
	// (fairness: yang paling lama menunggu diproses lebih dulu), video ikut ter-preload.
	ListUnprocessed(ctx context.Context) ([]pendingModel.ExamPendingRequestModel, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
	IncrementAttempts(ctx context.Context, id uuid.UUID) error
}

type GormPendingStore struct {
	DB *gorm.DB
}

func NewGormPendingStore(db *gorm.DB) *GormPendingStore {
	return &GormPendingStore{DB: db}
}

func (s *GormPendingStore) ListUnprocessed(ctx context.Context) ([]pendingModel.ExamPendingRequestModel, error) {
	var rows []pendingModel.ExamPendingRequestModel
	err := s.DB.WithContext(ctx).
		Preload("ExamPendingRequestVideos").
		Where("exam_pending_request_is_processed = ?", false).
		Order("exam_pending_request_created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormPendingStore) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).
		Model(&pendingModel.ExamPendingRequestModel{}).
		Where("exam_pending_request_id = ?", id).
		Update("exam_pending_request_is_processed", true).Error
}

func (s *GormPendingStore) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).
		Model(&pendingModel.ExamPendingRequestModel{}).
		Where("exam_pending_request_id = ?", id).
		Update("exam_pending_request_attempts", gorm.Expr("exam_pending_request_attempts + 1")).Error
}
