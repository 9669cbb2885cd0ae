// file: internals/features/exams/pipeline/store/exam_store.go
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	examModel "psq_backend/internals/features/exams/exams/model"
	exerciseModel "psq_backend/internals/features/exercises/model"
	pendingModel "psq_backend/internals/features/exams/pending/model"
)

// ErrExamConstraint: pelanggaran constraint DB (mis. CHECK durasi) —
// kategori error validasi, bukan error infrastruktur.
var ErrExamConstraint = errors.New("exam melanggar constraint database")

// ExamStore — sisi persistensi finalizer.
type ExamStore interface {
	// Ambil exercise untuk aturan auto-approve tutorial
	GetExercise(ctx context.Context, id uuid.UUID) (*exerciseModel.ExerciseModel, error)

	// CommitFinalized menjalankan SATU transaksi all-or-nothing:
	// insert exam, insert seluruh video row, hapus pending request + video row-nya.
	// Tidak boleh ada state setengah jadi yang terlihat dari luar transaksi.
	CommitFinalized(ctx context.Context, exam *examModel.ExamModel, videos []examModel.ExamVideoModel, pendingID uuid.UUID) error
}

type GormExamStore struct {
	DB *gorm.DB
}

func NewGormExamStore(db *gorm.DB) *GormExamStore {
	return &GormExamStore{DB: db}
}

func (s *GormExamStore) GetExercise(ctx context.Context, id uuid.UUID) (*exerciseModel.ExerciseModel, error) {
	var ex exerciseModel.ExerciseModel
	if err := s.DB.WithContext(ctx).
		Where("exercise_id = ?", id).
		First(&ex).Error; err != nil {
		return nil, fmt.Errorf("ambil exercise %s: %w", id, err)
	}
	return &ex, nil
}

func (s *GormExamStore) CommitFinalized(ctx context.Context, exam *examModel.ExamModel, videos []examModel.ExamVideoModel, pendingID uuid.UUID) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1) exam dulu supaya dapat identity untuk anak-anaknya
		if err := tx.Create(exam).Error; err != nil {
			return fmt.Errorf("insert exam: %w", err)
		}

		// 2) video rendition
		for i := range videos {
			videos[i].ExamVideoExamID = exam.ExamID
			if err := tx.Create(&videos[i]).Error; err != nil {
				return fmt.Errorf("insert exam video (%s): %w", videos[i].ExamVideoType, err)
			}
		}

		// 3) staging dibuang: video row dulu, baru request-nya
		if err := tx.Where("exam_pending_request_video_request_id = ?", pendingID).
			Delete(&pendingModel.ExamPendingRequestVideoModel{}).Error; err != nil {
			return fmt.Errorf("hapus pending videos: %w", err)
		}
		if err := tx.Where("exam_pending_request_id = ?", pendingID).
			Delete(&pendingModel.ExamPendingRequestModel{}).Error; err != nil {
			return fmt.Errorf("hapus pending request: %w", err)
		}
		return nil
	})
	if err != nil {
		return mapPgError(err)
	}
	return nil
}

// mapPgError memetakan error Postgres ke taksonomi pipeline
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23514": // check_violation (mis. exam_duration_seconds > 0)
			return fmt.Errorf("%w: %s", ErrExamConstraint, pgErr.ConstraintName)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: %s", ErrExamConstraint, pgErr.ConstraintName)
		}
	}
	return err
}
