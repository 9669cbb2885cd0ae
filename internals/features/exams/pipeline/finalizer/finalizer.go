// file: internals/features/exams/pipeline/finalizer/finalizer.go
package finalizer

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	examModel "psq_backend/internals/features/exams/exams/model"
	pendingModel "psq_backend/internals/features/exams/pending/model"
	"psq_backend/internals/features/exams/pipeline/store"
	"psq_backend/internals/features/exams/pipeline/transcoder"
	ossHelper "psq_backend/internals/helpers/oss"
)

// Output: satu hasil transcode lokal yang siap dipermanenkan
type Output struct {
	Format transcoder.Format
	Path   string
}

// Finalizer mengeksekusi transisi atomik: pending request + 3 hasil transcode
// → exam final + exam videos, staging dibuang.
//
// Persistensi berjalan dalam satu transaksi DB; upload blob yang terlanjur
// terjadi sebelum transaksi gagal dikompensasi dengan delete.
type Finalizer struct {
	Store store.ExamStore
	Blobs ossHelper.VideoBlobService
}

func New(st store.ExamStore, blobs ossHelper.VideoBlobService) *Finalizer {
	return &Finalizer{Store: st, Blobs: blobs}
}

// Finalize — all-or-nothing. thumbPath opsional (snapshot JPEG dari rekaman
// mentah); kegagalan thumbnail tidak menggagalkan finalisasi.
//
// Urutan penting: file mentah lokal baru dihapus SETELAH commit; selama
// artefak pengganti belum durable, input tidak boleh hilang.
func (f *Finalizer) Finalize(ctx context.Context, pending *pendingModel.ExamPendingRequestModel, outputs []Output, thumbPath string) (*examModel.ExamModel, error) {
	// 1) Bangun exam dari field pending; jangan percaya validasi upstream
	exam := &examModel.ExamModel{
		ExamDurationSeconds: pending.ExamPendingRequestDurationSeconds,
		ExamTakerID:         pending.ExamPendingRequestTakerID,
		ExamExerciseID:      pending.ExamPendingRequestExerciseID,
		ExamDeviceID:        pending.ExamPendingRequestDeviceID,
		ExamViews:           0,
	}
	if err := exam.Validate(); err != nil {
		return nil, err
	}

	// 2) Aturan tutorial: self-evaluation + auto-approve saat dibuat
	exercise, err := f.Store.GetExercise(ctx, pending.ExamPendingRequestExerciseID)
	if err != nil {
		return nil, err
	}
	if exercise.IsTutorial() {
		exam.AutoApproveTutorial()
	}

	// 3) Thumbnail (best effort) — dibuat sebelum upload video supaya URL-nya
	// bisa ikut di row video
	var thumbURL *string
	var thumbKey string
	if thumbPath != "" {
		if data, terr := EncodeThumbnailWebP(thumbPath); terr != nil {
			log.Printf("[FINALIZER] thumbnail gagal untuk request=%s: %v", pending.ExamPendingRequestID, terr)
		} else {
			key, url, uerr := f.Blobs.UploadBytes(ctx, "thumbnails", thumbName(thumbPath), data, "image/webp")
			if uerr != nil {
				log.Printf("[FINALIZER] upload thumbnail gagal untuk request=%s: %v", pending.ExamPendingRequestID, uerr)
			} else {
				thumbURL = &url
				thumbKey = key
			}
		}
	}

	// 4) Permanenkan tiap rendition ke blob storage, kumpulkan key untuk kompensasi
	uploadedKeys := []string{}
	if thumbKey != "" {
		uploadedKeys = append(uploadedKeys, thumbKey)
	}
	compensate := func() {
		if len(uploadedKeys) == 0 {
			return
		}
		if derr := f.Blobs.DeleteManyByKey(context.WithoutCancel(ctx), uploadedKeys); derr != nil {
			log.Printf("[FINALIZER] kompensasi blob gagal (keys=%v): %v", uploadedKeys, derr)
		}
	}

	videos := make([]examModel.ExamVideoModel, 0, len(outputs))
	for _, out := range outputs {
		key, url, uerr := f.Blobs.UploadLocalFile(ctx, "videos", out.Path, out.Format.MediaType())
		if uerr != nil {
			compensate()
			return nil, fmt.Errorf("upload rendition %s: %w", out.Format, uerr)
		}
		uploadedKeys = append(uploadedKeys, key)
		videos = append(videos, examModel.ExamVideoModel{
			ExamVideoType:         out.Format.MediaType(),
			ExamVideoObjectKey:    key,
			ExamVideoURL:          url,
			ExamVideoThumbnailURL: thumbURL,
			ExamVideoAuthorID:     pending.ExamPendingRequestTakerID,
			ExamVideoViews:        0,
		})
	}

	// 5) Satu transaksi: exam + videos masuk, staging keluar
	if err := f.Store.CommitFinalized(ctx, exam, videos, pending.ExamPendingRequestID); err != nil {
		compensate()
		return nil, err
	}
	exam.ExamVideos = videos

	// 6) Commit sudah durable → file mentah lokal boleh dibuang
	for _, pv := range pending.ExamPendingRequestVideos {
		if rerr := os.Remove(pv.ExamPendingRequestVideoFilePath); rerr != nil && !os.IsNotExist(rerr) {
			log.Printf("[FINALIZER] gagal hapus raw file %s: %v", pv.ExamPendingRequestVideoFilePath, rerr)
		}
	}

	log.Printf("[FINALIZER] exam %s dibuat dari request %s (%d video, tutorial=%v)",
		exam.ExamID, pending.ExamPendingRequestID, len(videos), exercise.IsTutorial())
	return exam, nil
}

func thumbName(thumbPath string) string {
	base := filepath.Base(thumbPath)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)] + ".webp"
}
