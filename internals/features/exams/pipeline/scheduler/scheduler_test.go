// file: internals/features/exams/pipeline/scheduler/scheduler_test.go
package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	examModel "psq_backend/internals/features/exams/exams/model"
	pendingModel "psq_backend/internals/features/exams/pending/model"
	"psq_backend/internals/features/exams/pipeline/finalizer"
	"psq_backend/internals/features/exams/pipeline/transcoder"
)

/* ========================================================
   Fakes
======================================================== */

type fakePendingStore struct {
	rows       []pendingModel.ExamPendingRequestModel
	processed  []uuid.UUID
	attempts   map[uuid.UUID]int
	listErr    error
}

func newFakePendingStore(rows ...pendingModel.ExamPendingRequestModel) *fakePendingStore {
	return &fakePendingStore{rows: rows, attempts: map[uuid.UUID]int{}}
}

func (f *fakePendingStore) ListUnprocessed(ctx context.Context) ([]pendingModel.ExamPendingRequestModel, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.rows, nil
}

func (f *fakePendingStore) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	f.processed = append(f.processed, id)
	return nil
}

func (f *fakePendingStore) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	f.attempts[id]++
	return nil
}

type fakeLeaseStore struct {
	held      bool // lease sedang dipegang pihak lain
	acquired  int
	released  int
}

func (f *fakeLeaseStore) TryAcquire(ctx context.Context, name string, owner uuid.UUID, ttl time.Duration) (bool, error) {
	if f.held {
		return false, nil
	}
	f.acquired++
	return true, nil
}

func (f *fakeLeaseStore) Release(ctx context.Context, name string, owner uuid.UUID) error {
	f.released++
	return nil
}

// fakeTranscoder menulis file output betulan supaya cleanup bisa diverifikasi;
// failOn menggagalkan format tertentu untuk path input tertentu.
type fakeTranscoder struct {
	failOn   map[string]transcoder.Format // input path → format yang gagal
	calls    []transcoder.Format
	snapshot bool
}

func (f *fakeTranscoder) Transcode(ctx context.Context, inputPath, outputPath string, format transcoder.Format) error {
	f.calls = append(f.calls, format)
	if want, ok := f.failOn[inputPath]; ok && want == format {
		// engine gagal — tinggalkan output parsial, caller yang membersihkan
		_ = os.WriteFile(outputPath, []byte("partial"), 0o644)
		return errors.New("decode error")
	}
	return os.WriteFile(outputPath, []byte(string(format)), 0o644)
}

func (f *fakeTranscoder) Snapshot(ctx context.Context, inputPath, outputPath string) error {
	f.snapshot = true
	return os.WriteFile(outputPath, []byte("jpeg"), 0o644)
}

type fakeFinalizer struct {
	calls   []finalizedCall
	err     error
}

type finalizedCall struct {
	pendingID uuid.UUID
	outputs   []finalizer.Output
	thumbPath string
}

func (f *fakeFinalizer) Finalize(ctx context.Context, pending *pendingModel.ExamPendingRequestModel, outputs []finalizer.Output, thumbPath string) (*examModel.ExamModel, error) {
	f.calls = append(f.calls, finalizedCall{
		pendingID: pending.ExamPendingRequestID,
		outputs:   outputs,
		thumbPath: thumbPath,
	})
	if f.err != nil {
		return nil, f.err
	}
	return &examModel.ExamModel{ExamID: uuid.New()}, nil
}

/* ========================================================
   Fixtures
======================================================== */

func pendingWithRaw(t *testing.T) pendingModel.ExamPendingRequestModel {
	t.Helper()
	raw := filepath.Join(t.TempDir(), "rec.mkv")
	require.NoError(t, os.WriteFile(raw, []byte("raw"), 0o644))
	return pendingModel.ExamPendingRequestModel{
		ExamPendingRequestID:              uuid.New(),
		ExamPendingRequestDurationSeconds: 120,
		ExamPendingRequestTakerID:         uuid.New(),
		ExamPendingRequestExerciseID:      uuid.New(),
		ExamPendingRequestDeviceID:        uuid.New(),
		ExamPendingRequestVideos: []pendingModel.ExamPendingRequestVideoModel{
			{ExamPendingRequestVideoID: uuid.New(), ExamPendingRequestVideoFilePath: raw},
		},
	}
}

func newJob(pending *fakePendingStore, leases *fakeLeaseStore, trans *fakeTranscoder, fin *fakeFinalizer) *IngestJob {
	return &IngestJob{
		Pending:   pending,
		Leases:    leases,
		Trans:     trans,
		Finalizer: fin,
		Cfg:       Config{CronSchedule: "@every 60s", LeaseTTL: 10 * time.Minute},
		Owner:     uuid.New(),
	}
}

/* ========================================================
   Tests
======================================================== */

func TestTickSkipsWhenLeaseHeld(t *testing.T) {
	ps := newFakePendingStore(pendingWithRaw(t))
	leases := &fakeLeaseStore{held: true}
	trans := &fakeTranscoder{}
	fin := &fakeFinalizer{}

	err := newJob(ps, leases, trans, fin).RunTick(context.Background())
	require.NoError(t, err)

	// tick kedua saat lease dipegang = nol pemrosesan, nol antrean
	assert.Empty(t, trans.calls)
	assert.Empty(t, fin.calls)
	assert.Zero(t, leases.released)
}

func TestTickReleasesLease(t *testing.T) {
	ps := newFakePendingStore()
	leases := &fakeLeaseStore{}

	err := newJob(ps, leases, &fakeTranscoder{}, &fakeFinalizer{}).RunTick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, leases.acquired)
	assert.Equal(t, 1, leases.released)
}

func TestTickSuccessfulSubmission(t *testing.T) {
	row := pendingWithRaw(t)
	raw := row.ExamPendingRequestVideos[0].ExamPendingRequestVideoFilePath
	ps := newFakePendingStore(row)
	trans := &fakeTranscoder{}
	fin := &fakeFinalizer{}

	err := newJob(ps, &fakeLeaseStore{}, trans, fin).RunTick(context.Background())
	require.NoError(t, err)

	// tiga format berurutan: ogg, webm, mp4
	assert.Equal(t, []transcoder.Format{transcoder.FormatOGG, transcoder.FormatWEBM, transcoder.FormatMP4}, trans.calls)
	assert.True(t, trans.snapshot)

	require.Len(t, fin.calls, 1)
	call := fin.calls[0]
	assert.Equal(t, row.ExamPendingRequestID, call.pendingID)
	require.Len(t, call.outputs, 3)
	assert.NotEmpty(t, call.thumbPath)

	// flag processed tidak disentuh scheduler pada jalur sukses — baris
	// pending sudah dihapus finalizer di dalam transaksi
	assert.Empty(t, ps.processed)
	assert.Empty(t, ps.attempts)

	// semua temp attempt ini hilang
	for _, f := range transcoder.Formats {
		_, statErr := os.Stat(transcoder.OutputPath(raw, f))
		assert.True(t, os.IsNotExist(statErr), "temp %s harus terhapus", f)
	}
	_, statErr := os.Stat(transcoder.ThumbnailPath(raw))
	assert.True(t, os.IsNotExist(statErr))
}

func TestTickTranscodeFailureLeavesUnprocessedAndCleansTemp(t *testing.T) {
	row := pendingWithRaw(t)
	raw := row.ExamPendingRequestVideos[0].ExamPendingRequestVideoFilePath
	ps := newFakePendingStore(row)
	// format kedua (webm) gagal
	trans := &fakeTranscoder{failOn: map[string]transcoder.Format{raw: transcoder.FormatWEBM}}
	fin := &fakeFinalizer{}

	err := newJob(ps, &fakeLeaseStore{}, trans, fin).RunTick(context.Background())
	require.NoError(t, err)

	// tidak ada exam yang dicoba dibuat
	assert.Empty(t, fin.calls)
	// submission tetap unprocessed → di-retry tick berikut dengan input sama
	assert.Empty(t, ps.processed)
	assert.Equal(t, 1, ps.attempts[row.ExamPendingRequestID])
	// mp4 tidak pernah dicoba setelah webm gagal
	assert.Equal(t, []transcoder.Format{transcoder.FormatOGG, transcoder.FormatWEBM}, trans.calls)

	// nol temp file tersisa dari attempt ini (termasuk output parsial webm)
	for _, f := range transcoder.Formats {
		_, statErr := os.Stat(transcoder.OutputPath(raw, f))
		assert.True(t, os.IsNotExist(statErr), "temp %s harus terhapus", f)
	}
	// raw file masih ada untuk retry
	_, statErr := os.Stat(raw)
	assert.NoError(t, statErr)
}

func TestTickOneFailingSubmissionDoesNotBlockOthers(t *testing.T) {
	bad := pendingWithRaw(t)
	good := pendingWithRaw(t)
	badRaw := bad.ExamPendingRequestVideos[0].ExamPendingRequestVideoFilePath

	ps := newFakePendingStore(bad, good)
	trans := &fakeTranscoder{failOn: map[string]transcoder.Format{badRaw: transcoder.FormatOGG}}
	fin := &fakeFinalizer{}

	err := newJob(ps, &fakeLeaseStore{}, trans, fin).RunTick(context.Background())
	require.NoError(t, err)

	// submission kedua tetap difinalisasi
	require.Len(t, fin.calls, 1)
	assert.Equal(t, good.ExamPendingRequestID, fin.calls[0].pendingID)
	assert.Equal(t, 1, ps.attempts[bad.ExamPendingRequestID])
}

func TestTickFinalizeFailureLeavesUnprocessed(t *testing.T) {
	row := pendingWithRaw(t)
	ps := newFakePendingStore(row)
	fin := &fakeFinalizer{err: errors.New("storage write failed")}

	err := newJob(ps, &fakeLeaseStore{}, &fakeTranscoder{}, fin).RunTick(context.Background())
	require.NoError(t, err)

	assert.Empty(t, ps.processed)
	assert.Equal(t, 1, ps.attempts[row.ExamPendingRequestID])
}

func TestTickDeadLetterAfterMaxAttempts(t *testing.T) {
	row := pendingWithRaw(t)
	row.ExamPendingRequestAttempts = 2 // attempt ke-3 adalah yang terakhir
	raw := row.ExamPendingRequestVideos[0].ExamPendingRequestVideoFilePath
	ps := newFakePendingStore(row)
	trans := &fakeTranscoder{failOn: map[string]transcoder.Format{raw: transcoder.FormatOGG}}

	job := newJob(ps, &fakeLeaseStore{}, trans, &fakeFinalizer{})
	job.Cfg.MaxAttempts = 3

	err := job.RunTick(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{row.ExamPendingRequestID}, ps.processed)
}

func TestTickNoDeadLetterWhenDisabled(t *testing.T) {
	row := pendingWithRaw(t)
	row.ExamPendingRequestAttempts = 99
	raw := row.ExamPendingRequestVideos[0].ExamPendingRequestVideoFilePath
	ps := newFakePendingStore(row)
	trans := &fakeTranscoder{failOn: map[string]transcoder.Format{raw: transcoder.FormatOGG}}

	job := newJob(ps, &fakeLeaseStore{}, trans, &fakeFinalizer{})
	// MaxAttempts 0 = baseline: retry selamanya

	require.NoError(t, job.RunTick(context.Background()))
	assert.Empty(t, ps.processed)
}

func TestTickSubmissionWithoutBlobsIsParked(t *testing.T) {
	row := pendingModel.ExamPendingRequestModel{
		ExamPendingRequestID:              uuid.New(),
		ExamPendingRequestDurationSeconds: 60,
	}
	ps := newFakePendingStore(row)
	fin := &fakeFinalizer{}

	require.NoError(t, newJob(ps, &fakeLeaseStore{}, &fakeTranscoder{}, fin).RunTick(context.Background()))
	assert.Equal(t, []uuid.UUID{row.ExamPendingRequestID}, ps.processed)
	assert.Empty(t, fin.calls)
}

func TestReapTempFiles(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "stale.webm")
	fresh := filepath.Join(dir, "fresh.mp4")
	raw := filepath.Join(dir, "rec.mkv")
	require.NoError(t, os.WriteFile(old, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(fresh, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(raw, []byte("x"), 0o644))
	// tuakan file stale
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	require.NoError(t, reapTempFiles(dir, 24*time.Hour, false))

	_, err := os.Stat(old)
	assert.True(t, os.IsNotExist(err), "artefak stale harus disapu")
	_, err = os.Stat(fresh)
	assert.NoError(t, err, "artefak baru dibiarkan")
	_, err = os.Stat(raw)
	assert.NoError(t, err, "raw .mkv tidak boleh disapu reaper")
}

func TestReapTempFilesDryRun(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "stale.ogg")
	require.NoError(t, os.WriteFile(old, []byte("x"), 0o644))
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	require.NoError(t, reapTempFiles(dir, 24*time.Hour, true))
	_, err := os.Stat(old)
	assert.NoError(t, err, "dry-run tidak menghapus apa pun")
}
