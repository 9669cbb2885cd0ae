// file: internals/features/exams/pipeline/finalizer/finalizer_test.go
package finalizer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	examModel "psq_backend/internals/features/exams/exams/model"
	exerciseModel "psq_backend/internals/features/exercises/model"
	pendingModel "psq_backend/internals/features/exams/pending/model"
	"psq_backend/internals/features/exams/pipeline/transcoder"
	ossHelper "psq_backend/internals/helpers/oss"
)

type mockExamStore struct {
	GetExerciseFn     func(ctx context.Context, id uuid.UUID) (*exerciseModel.ExerciseModel, error)
	CommitFinalizedFn func(ctx context.Context, exam *examModel.ExamModel, videos []examModel.ExamVideoModel, pendingID uuid.UUID) error
}

func (m *mockExamStore) GetExercise(ctx context.Context, id uuid.UUID) (*exerciseModel.ExerciseModel, error) {
	return m.GetExerciseFn(ctx, id)
}

func (m *mockExamStore) CommitFinalized(ctx context.Context, exam *examModel.ExamModel, videos []examModel.ExamVideoModel, pendingID uuid.UUID) error {
	return m.CommitFinalizedFn(ctx, exam, videos, pendingID)
}

func regularExercise(id uuid.UUID) *exerciseModel.ExerciseModel {
	return &exerciseModel.ExerciseModel{ExerciseID: id, ExerciseType: exerciseModel.ExerciseTypeRegular}
}

func tutorialExercise(id uuid.UUID) *exerciseModel.ExerciseModel {
	return &exerciseModel.ExerciseModel{ExerciseID: id, ExerciseType: exerciseModel.ExerciseTypeTutorial}
}

// pendingFixture membuat pending request + satu raw file betulan di temp dir
func pendingFixture(t *testing.T, duration int) (*pendingModel.ExamPendingRequestModel, string) {
	t.Helper()
	dir := t.TempDir()
	raw := filepath.Join(dir, "rec.mkv")
	require.NoError(t, os.WriteFile(raw, []byte("raw-mkv"), 0o644))

	p := &pendingModel.ExamPendingRequestModel{
		ExamPendingRequestID:              uuid.New(),
		ExamPendingRequestDurationSeconds: duration,
		ExamPendingRequestTakerID:         uuid.New(),
		ExamPendingRequestExerciseID:      uuid.New(),
		ExamPendingRequestDeviceID:        uuid.New(),
		ExamPendingRequestVideos: []pendingModel.ExamPendingRequestVideoModel{
			{
				ExamPendingRequestVideoID:       uuid.New(),
				ExamPendingRequestVideoFilePath: raw,
			},
		},
	}
	return p, raw
}

func outputsFixture(t *testing.T) []Output {
	t.Helper()
	dir := t.TempDir()
	outs := make([]Output, 0, 3)
	for _, f := range transcoder.Formats {
		p := filepath.Join(dir, "rec."+string(f))
		require.NoError(t, os.WriteFile(p, []byte(string(f)), 0o644))
		outs = append(outs, Output{Format: f, Path: p})
	}
	return outs
}

func countingBlobs(uploaded *[]string, deleted *[]string) *ossHelper.MockVideoBlobService {
	return &ossHelper.MockVideoBlobService{
		UploadLocalFileFn: func(ctx context.Context, dir, localPath, contentType string) (string, string, error) {
			key := fmt.Sprintf("%s/%s", dir, filepath.Base(localPath))
			*uploaded = append(*uploaded, key)
			return key, "https://blob.example/" + key, nil
		},
		UploadBytesFn: func(ctx context.Context, dir, filename string, data []byte, contentType string) (string, string, error) {
			key := fmt.Sprintf("%s/%s", dir, filename)
			*uploaded = append(*uploaded, key)
			return key, "https://blob.example/" + key, nil
		},
		DeleteManyByKeyFn: func(ctx context.Context, keys []string) error {
			*deleted = append(*deleted, keys...)
			return nil
		},
	}
}

func TestFinalizeRegularSuccess(t *testing.T) {
	pending, raw := pendingFixture(t, 120)
	outs := outputsFixture(t)

	var uploaded, deleted []string
	var committedVideos []examModel.ExamVideoModel
	var committedPendingID uuid.UUID

	st := &mockExamStore{
		GetExerciseFn: func(ctx context.Context, id uuid.UUID) (*exerciseModel.ExerciseModel, error) {
			return regularExercise(id), nil
		},
		CommitFinalizedFn: func(ctx context.Context, exam *examModel.ExamModel, videos []examModel.ExamVideoModel, pendingID uuid.UUID) error {
			committedVideos = videos
			committedPendingID = pendingID
			return nil
		},
	}

	f := New(st, countingBlobs(&uploaded, &deleted))
	exam, err := f.Finalize(context.Background(), pending, outs, "")
	require.NoError(t, err)
	require.NotNil(t, exam)

	// field exam dari submission; belum dievaluasi
	assert.Equal(t, 120, exam.ExamDurationSeconds)
	assert.Equal(t, pending.ExamPendingRequestTakerID, exam.ExamTakerID)
	assert.Equal(t, pending.ExamPendingRequestExerciseID, exam.ExamExerciseID)
	assert.Equal(t, pending.ExamPendingRequestDeviceID, exam.ExamDeviceID)
	assert.False(t, exam.ExamEvaluated)
	assert.False(t, exam.ExamApproved)
	assert.Nil(t, exam.ExamEvaluatorID)
	assert.Nil(t, exam.ExamEvalDate)
	assert.Equal(t, 0, exam.ExamViews)

	// 3 rendition dengan media type berbeda, author = taker
	require.Len(t, committedVideos, 3)
	types := map[string]bool{}
	for _, v := range committedVideos {
		types[v.ExamVideoType] = true
		assert.Equal(t, pending.ExamPendingRequestTakerID, v.ExamVideoAuthorID)
		assert.Equal(t, 0, v.ExamVideoViews)
		assert.NotEmpty(t, v.ExamVideoObjectKey)
		assert.NotEmpty(t, v.ExamVideoURL)
	}
	assert.Len(t, types, 3)
	assert.True(t, types["video/ogg"])
	assert.True(t, types["video/webm"])
	assert.True(t, types["video/mp4"])

	assert.Equal(t, pending.ExamPendingRequestID, committedPendingID)
	assert.Len(t, uploaded, 3)
	assert.Empty(t, deleted)

	// raw file dihapus setelah commit
	_, statErr := os.Stat(raw)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFinalizeTutorialAutoApproval(t *testing.T) {
	pending, _ := pendingFixture(t, 60)
	outs := outputsFixture(t)

	var uploaded, deleted []string
	st := &mockExamStore{
		GetExerciseFn: func(ctx context.Context, id uuid.UUID) (*exerciseModel.ExerciseModel, error) {
			return tutorialExercise(id), nil
		},
		CommitFinalizedFn: func(ctx context.Context, exam *examModel.ExamModel, videos []examModel.ExamVideoModel, pendingID uuid.UUID) error {
			return nil
		},
	}

	f := New(st, countingBlobs(&uploaded, &deleted))
	exam, err := f.Finalize(context.Background(), pending, outs, "")
	require.NoError(t, err)

	assert.True(t, exam.ExamApproved)
	assert.True(t, exam.ExamEvaluated)
	require.NotNil(t, exam.ExamEvaluatorID)
	assert.Equal(t, pending.ExamPendingRequestTakerID, *exam.ExamEvaluatorID)
	require.NotNil(t, exam.ExamEvalDate)
	assert.Equal(t, "auto-approved (tutorial)", exam.ExamNotes)
}

func TestFinalizeCommitFailureCompensatesBlobs(t *testing.T) {
	pending, raw := pendingFixture(t, 120)
	outs := outputsFixture(t)

	var uploaded, deleted []string
	st := &mockExamStore{
		GetExerciseFn: func(ctx context.Context, id uuid.UUID) (*exerciseModel.ExerciseModel, error) {
			return regularExercise(id), nil
		},
		CommitFinalizedFn: func(ctx context.Context, exam *examModel.ExamModel, videos []examModel.ExamVideoModel, pendingID uuid.UUID) error {
			return errors.New("db down")
		},
	}

	f := New(st, countingBlobs(&uploaded, &deleted))
	exam, err := f.Finalize(context.Background(), pending, outs, "")
	require.Error(t, err)
	assert.Nil(t, exam)

	// blob yang terlanjur ter-upload dihapus kembali
	assert.ElementsMatch(t, uploaded, deleted)
	// raw file TIDAK boleh hilang — tick berikutnya retry
	_, statErr := os.Stat(raw)
	assert.NoError(t, statErr)
}

func TestFinalizeUploadFailureCompensatesEarlierUploads(t *testing.T) {
	pending, raw := pendingFixture(t, 120)
	outs := outputsFixture(t)

	var uploaded, deleted []string
	calls := 0
	blobs := &ossHelper.MockVideoBlobService{
		UploadLocalFileFn: func(ctx context.Context, dir, localPath, contentType string) (string, string, error) {
			calls++
			if calls == 2 {
				return "", "", errors.New("oss unreachable")
			}
			key := fmt.Sprintf("videos/%s", filepath.Base(localPath))
			uploaded = append(uploaded, key)
			return key, "https://blob.example/" + key, nil
		},
		DeleteManyByKeyFn: func(ctx context.Context, keys []string) error {
			deleted = append(deleted, keys...)
			return nil
		},
	}

	st := &mockExamStore{
		GetExerciseFn: func(ctx context.Context, id uuid.UUID) (*exerciseModel.ExerciseModel, error) {
			return regularExercise(id), nil
		},
		CommitFinalizedFn: func(ctx context.Context, exam *examModel.ExamModel, videos []examModel.ExamVideoModel, pendingID uuid.UUID) error {
			t.Fatal("commit tidak boleh terpanggil saat upload gagal")
			return nil
		},
	}

	f := New(st, blobs)
	_, err := f.Finalize(context.Background(), pending, outs, "")
	require.Error(t, err)
	assert.ElementsMatch(t, uploaded, deleted)
	_, statErr := os.Stat(raw)
	assert.NoError(t, statErr)
}

func TestFinalizeRejectsNonPositiveDuration(t *testing.T) {
	pending, _ := pendingFixture(t, 0)
	outs := outputsFixture(t)

	uploads := 0
	blobs := &ossHelper.MockVideoBlobService{
		UploadLocalFileFn: func(ctx context.Context, dir, localPath, contentType string) (string, string, error) {
			uploads++
			return "k", "u", nil
		},
	}
	st := &mockExamStore{
		GetExerciseFn: func(ctx context.Context, id uuid.UUID) (*exerciseModel.ExerciseModel, error) {
			return regularExercise(id), nil
		},
	}

	f := New(st, blobs)
	_, err := f.Finalize(context.Background(), pending, outs, "")
	require.ErrorIs(t, err, examModel.ErrExamDurationInvalid)
	assert.Zero(t, uploads, "tidak boleh ada upload sebelum validasi lolos")
}

func TestFinalizeWithThumbnail(t *testing.T) {
	pending, _ := pendingFixture(t, 30)
	outs := outputsFixture(t)
	thumb := writeTestJPEG(t)

	var uploaded, deleted []string
	var committedVideos []examModel.ExamVideoModel
	st := &mockExamStore{
		GetExerciseFn: func(ctx context.Context, id uuid.UUID) (*exerciseModel.ExerciseModel, error) {
			return regularExercise(id), nil
		},
		CommitFinalizedFn: func(ctx context.Context, exam *examModel.ExamModel, videos []examModel.ExamVideoModel, pendingID uuid.UUID) error {
			committedVideos = videos
			return nil
		},
	}

	f := New(st, countingBlobs(&uploaded, &deleted))
	_, err := f.Finalize(context.Background(), pending, outs, thumb)
	require.NoError(t, err)

	// 3 video + 1 thumbnail ter-upload
	assert.Len(t, uploaded, 4)
	require.Len(t, committedVideos, 3)
	for _, v := range committedVideos {
		require.NotNil(t, v.ExamVideoThumbnailURL)
		assert.Contains(t, *v.ExamVideoThumbnailURL, "thumbnails/")
	}
}

func TestEncodeThumbnailWebP(t *testing.T) {
	data, err := EncodeThumbnailWebP(writeTestJPEG(t))
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	// container RIFF/WEBP
	require.True(t, len(data) > 12)
	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, "WEBP", string(data[8:12]))
}

func writeTestJPEG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 640, 480))
	for y := 0; y < 480; y++ {
		for x := 0; x < 640; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 64, A: 255})
		}
	}
	p := filepath.Join(t.TempDir(), "snap_thumb.jpg")
	fh, err := os.Create(p)
	require.NoError(t, err)
	defer fh.Close()
	require.NoError(t, jpeg.Encode(fh, img, &jpeg.Options{Quality: 85}))
	return p
}
