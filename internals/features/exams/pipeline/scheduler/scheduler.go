// file: internals/features/exams/pipeline/scheduler/scheduler.go
package scheduler

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	examModel "psq_backend/internals/features/exams/exams/model"
	pendingModel "psq_backend/internals/features/exams/pending/model"
	"psq_backend/internals/features/exams/pipeline/finalizer"
	"psq_backend/internals/features/exams/pipeline/store"
	"psq_backend/internals/features/exams/pipeline/transcoder"
	ossHelper "psq_backend/internals/helpers/oss"
)

const ingestLeaseName = "exam_pending_requests_ingest"

type Config struct {
	CronSchedule string
	LeaseTTL     time.Duration
	// 0 = retry selamanya tiap tick (perilaku baseline).
	// >0 = setelah sekian attempt, tandai processed + log dead-letter.
	MaxAttempts int
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func ConfigFromEnv() Config {
	return Config{
		CronSchedule: getEnvOrDefault("EXAM_CRON_SCHEDULE", "@every 60s"),
		LeaseTTL:     time.Duration(getEnvInt("EXAM_CRON_LEASE_TTL_SECONDS", 600)) * time.Second,
		MaxAttempts:  getEnvInt("EXAM_CRON_MAX_ATTEMPTS", 0),
	}
}

// examFinalizer — dipersempit supaya job bisa dites dengan fake
type examFinalizer interface {
	Finalize(ctx context.Context, pending *pendingModel.ExamPendingRequestModel, outputs []finalizer.Output, thumbPath string) (*examModel.ExamModel, error)
}

// IngestJob — satu tick pemrosesan pending exam request.
type IngestJob struct {
	Pending   store.PendingStore
	Leases    store.LeaseStore
	Trans     transcoder.Transcoder
	Finalizer examFinalizer
	Cfg       Config

	// identitas pemegang lease proses ini
	Owner uuid.UUID
}

// RunTick menjalankan satu tick penuh.
//
// Non-overlap dua lapis: cron chain SkipIfStillRunning menahan overlap
// in-process, lease di DB menahan overlap lintas instance. Tick yang tidak
// kebagian lease langsung selesai tanpa antre.
func (j *IngestJob) RunTick(ctx context.Context) error {
	acquired, err := j.Leases.TryAcquire(ctx, ingestLeaseName, j.Owner, j.Cfg.LeaseTTL)
	if err != nil {
		return fmt.Errorf("acquire lease: %w", err)
	}
	if !acquired {
		log.Printf("[EXAM-CRON] lease %s masih dipegang instance lain, skip tick", ingestLeaseName)
		return nil
	}
	defer func() {
		if rerr := j.Leases.Release(context.WithoutCancel(ctx), ingestLeaseName, j.Owner); rerr != nil {
			log.Printf("[EXAM-CRON] release lease gagal: %v", rerr)
		}
	}()

	pendings, err := j.Pending.ListUnprocessed(ctx)
	if err != nil {
		return fmt.Errorf("list unprocessed: %w", err)
	}
	if len(pendings) == 0 {
		return nil
	}
	log.Printf("[EXAM-CRON] %d pending request akan diproses", len(pendings))

	for i := range pendings {
		// Satu submission gagal tidak boleh menghentikan sisanya
		j.processOne(ctx, &pendings[i])
	}
	return nil
}

// processOne memproses satu submission sebagai unit kerja independen.
// Panic pun ditangkap di boundary ini.
func (j *IngestJob) processOne(ctx context.Context, pending *pendingModel.ExamPendingRequestModel) {
	id := pending.ExamPendingRequestID
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[EXAM-CRON] panic saat memproses request=%s: %v", id, r)
		}
	}()

	if len(pending.ExamPendingRequestVideos) == 0 {
		// Tidak ada blob untuk ditranscode; jangan biarkan baris kosong
		// di-retry selamanya
		log.Printf("[EXAM-CRON] request=%s tanpa video blob, tandai processed", id)
		if err := j.Pending.MarkProcessed(ctx, id); err != nil {
			log.Printf("[EXAM-CRON] mark processed gagal untuk request=%s: %v", id, err)
		}
		return
	}

	// Semua file temp attempt ini dibersihkan apa pun hasilnya
	tempPaths := []string{}
	defer func() {
		for _, p := range tempPaths {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				log.Printf("[EXAM-CRON] gagal hapus temp %s: %v", p, err)
			}
		}
	}()

	outputs := []finalizer.Output{}
	thumbPath := ""
	for _, pv := range pending.ExamPendingRequestVideos {
		raw := pv.ExamPendingRequestVideoFilePath
		log.Printf("[EXAM-CRON] transcoding request=%s file=%s duration=%ds",
			id, raw, pending.ExamPendingRequestDurationSeconds)

		for _, format := range transcoder.Formats {
			out := transcoder.OutputPath(raw, format)
			tempPaths = append(tempPaths, out)
			if err := j.Trans.Transcode(ctx, raw, out, format); err != nil {
				// Gagal satu format = batalkan submission untuk tick ini;
				// flag processed tetap false sehingga tick berikut retry
				log.Printf("[EXAM-CRON] transcode %s gagal untuk request=%s: %v", format, id, err)
				j.noteFailedAttempt(ctx, pending)
				return
			}
			outputs = append(outputs, finalizer.Output{Format: format, Path: out})
		}

		// Snapshot thumbnail dari rekaman pertama (best effort)
		if thumbPath == "" {
			tp := transcoder.ThumbnailPath(raw)
			tempPaths = append(tempPaths, tp)
			if err := j.Trans.Snapshot(ctx, raw, tp); err != nil {
				log.Printf("[EXAM-CRON] snapshot thumbnail gagal untuk request=%s: %v", id, err)
			} else {
				thumbPath = tp
			}
		}
	}

	exam, err := j.Finalizer.Finalize(ctx, pending, outputs, thumbPath)
	if err != nil {
		log.Printf("[EXAM-CRON] finalisasi gagal untuk request=%s: %v", id, err)
		j.noteFailedAttempt(ctx, pending)
		return
	}
	log.Printf("[EXAM-CRON] request=%s selesai → exam=%s", id, exam.ExamID)
}

// noteFailedAttempt menaikkan attempt counter dan, jika batas attempt
// diaktifkan dan terlampaui, memarkir baris sebagai dead letter.
func (j *IngestJob) noteFailedAttempt(ctx context.Context, pending *pendingModel.ExamPendingRequestModel) {
	id := pending.ExamPendingRequestID
	if err := j.Pending.IncrementAttempts(ctx, id); err != nil {
		log.Printf("[EXAM-CRON] increment attempts gagal untuk request=%s: %v", id, err)
		return
	}
	if j.Cfg.MaxAttempts <= 0 {
		return
	}
	if pending.ExamPendingRequestAttempts+1 >= j.Cfg.MaxAttempts {
		log.Printf("[EXAM-CRON] request=%s melewati batas %d attempt — dead letter, tidak akan di-retry",
			id, j.Cfg.MaxAttempts)
		if err := j.Pending.MarkProcessed(ctx, id); err != nil {
			log.Printf("[EXAM-CRON] mark processed (dead letter) gagal untuk request=%s: %v", id, err)
		}
	}
}

/* ========================================================
   ENTRYPOINT: panggil dari main.go
======================================================== */

func StartExamIngestCron(db *gorm.DB, blobs ossHelper.VideoBlobService) {
	cfg := ConfigFromEnv()

	trans, err := transcoder.NewGstTranscoder()
	if err != nil {
		log.Printf("[EXAM-CRON] %v — ingest cron tidak dijalankan", err)
		return
	}

	job := &IngestJob{
		Pending:   store.NewGormPendingStore(db),
		Leases:    store.NewGormLeaseStore(db),
		Trans:     trans,
		Finalizer: finalizer.New(store.NewGormExamStore(db), blobs),
		Cfg:       cfg,
		Owner:     uuid.New(),
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err = c.AddFunc(cfg.CronSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.LeaseTTL)
		defer cancel()
		if err := job.RunTick(ctx); err != nil {
			log.Printf("[EXAM-CRON] tick error: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("[EXAM-CRON] add cron gagal: %v", err)
	}
	log.Printf("[EXAM-CRON] started schedule=%q leaseTTL=%s maxAttempts=%d owner=%s",
		cfg.CronSchedule, cfg.LeaseTTL, cfg.MaxAttempts, job.Owner)
	c.Start()
}
