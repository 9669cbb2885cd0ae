// file: internals/features/exams/pipeline/scheduler/temp_reaper.go
package scheduler

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Ekstensi artefak transcode yang boleh disapu. File .mkv mentah TIDAK
// pernah disapu di sini — yang menghapus raw hanya finalizer pasca-commit.
var reapableSuffixes = []string{".ogg", ".webm", ".mp4", "_thumb.jpg"}

type TempReaperConfig struct {
	RawDir        string
	RetentionHrs  int
	CronSchedule  string
	DryRun        bool
}

func tempReaperConfigFromEnv() TempReaperConfig {
	return TempReaperConfig{
		RawDir:       getEnvOrDefault("EXAM_RAW_VIDEO_DIR", "/var/lib/psq/raw_videos"),
		RetentionHrs: getEnvInt("EXAM_TEMP_RETENTION_HOURS", 24),
		CronSchedule: getEnvOrDefault("EXAM_TEMP_REAPER_SCHEDULE", "30 3 * * *"),
		DryRun:       getEnvOrDefault("DRY_RUN", "") == "1",
	}
}

// ── ENTRYPOINT: panggil dari main.go
//
// Jaring pengaman untuk crash mid-tick: cleanup normal berjalan per-attempt
// di IngestJob, tapi proses yang mati sebelum defer jalan bisa meninggalkan
// output transcode yatim di disk. Reaper ini menyapunya setelah retensi lewat.
func StartTempReaperCron() {
	cfg := tempReaperConfigFromEnv()

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(cfg.CronSchedule, func() {
		retention := time.Duration(cfg.RetentionHrs) * time.Hour
		if err := reapTempFiles(cfg.RawDir, retention, cfg.DryRun); err != nil {
			log.Printf("[TEMP-REAPER] error: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("[TEMP-REAPER] add cron gagal: %v", err)
	}
	log.Printf("[TEMP-REAPER] started schedule=%q dir=%q retention=%dh dryRun=%v",
		cfg.CronSchedule, cfg.RawDir, cfg.RetentionHrs, cfg.DryRun)
	c.Start()
}

func reapTempFiles(dir string, retention time.Duration, dryRun bool) error {
	threshold := time.Now().Add(-retention)
	scanned, removed := 0, 0

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		scanned++
		if !isReapable(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().After(threshold) {
			return nil
		}
		if dryRun {
			log.Printf("[TEMP-REAPER] DRY-RUN would remove %s", path)
			return nil
		}
		if err := os.Remove(path); err != nil {
			log.Printf("[TEMP-REAPER] remove %s gagal: %v", path, err)
			return nil
		}
		removed++
		return nil
	})
	if err != nil {
		return err
	}
	if removed > 0 || dryRun {
		log.Printf("[TEMP-REAPER] removed %d files (scanned=%d) under %q", removed, scanned, dir)
	}
	return nil
}

func isReapable(path string) bool {
	for _, suf := range reapableSuffixes {
		if strings.HasSuffix(path, suf) {
			return true
		}
	}
	return false
}
