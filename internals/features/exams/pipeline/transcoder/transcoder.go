// file: internals/features/exams/pipeline/transcoder/transcoder.go
package transcoder

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log"
	"os/exec"
	"path/filepath"
	"strings"
)

// Format output yang didukung — set tetap, bukan parameter user.
type Format string

const (
	FormatOGG  Format = "ogg"
	FormatWEBM Format = "webm"
	FormatMP4  Format = "mp4"
)

// MediaType mengembalikan tag media type untuk kolom exam_video_type
func (f Format) MediaType() string {
	switch f {
	case FormatOGG:
		return "video/ogg"
	case FormatWEBM:
		return "video/webm"
	case FormatMP4:
		return "video/mp4"
	}
	return ""
}

// Formats — urutan proses per submission (ogg → webm → mp4, mengikuti perilaku lama)
var Formats = []Format{FormatOGG, FormatWEBM, FormatMP4}

// Resep pipeline GStreamer per format. Input selalu MKV (matroska + MJPEG)
// dari device perekam. {input}/{output} diganti saat eksekusi.
var pipelineDefs = map[Format]string{
	FormatOGG:  "filesrc location={input} ! matroskademux ! jpegdec ! videoconvert ! videorate ! video/x-raw,framerate=10/1 ! theoraenc bitrate=8000 quality=63 ! oggmux ! filesink location={output}",
	FormatWEBM: "filesrc location={input} ! matroskademux ! jpegdec ! videoconvert ! vp8enc threads=4 ! webmmux ! filesink location={output}",
	FormatMP4:  "filesrc location={input} ! matroskademux ! jpegdec ! videoconvert ! x264enc ! qtmux ! filesink location={output}",
}

// Resep snapshot thumbnail: ambil 1 frame pertama sebagai JPEG
const thumbnailDef = "filesrc location={input} ! matroskademux ! jpegdec ! videoconvert ! jpegenc ! filesink location={output}"

// Transcoder mengubah satu file media menjadi satu format output.
// Tanpa retry internal; kebijakan retry milik caller (cron ingest).
type Transcoder interface {
	Transcode(ctx context.Context, inputPath, outputPath string, format Format) error
	Snapshot(ctx context.Context, inputPath, outputPath string) error
}

// OutputPath menurunkan path output dari path input: ganti ekstensi sesuai format.
func OutputPath(inputPath string, format Format) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + "." + string(format)
}

// ThumbnailPath menurunkan path snapshot JPEG dari path input
func ThumbnailPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + "_thumb.jpg"
}

/* ========================================================
   Implementasi gst-launch
======================================================== */

// GstTranscoder menjalankan pipeline lewat binary gst-launch-1.0.
// Sukses hanya jika engine mengirim pesan EOS eksplisit di bus output;
// proses exit bersih tanpa EOS tetap dianggap gagal.
type GstTranscoder struct {
	// Path binary; kosong = "gst-launch-1.0" dari PATH
	BinPath string
}

func NewGstTranscoder() (*GstTranscoder, error) {
	bin, err := exec.LookPath("gst-launch-1.0")
	if err != nil {
		return nil, fmt.Errorf("gst-launch-1.0 tidak ditemukan di PATH: %w", err)
	}
	log.Printf("[TRANSCODER] using %s", bin)
	return &GstTranscoder{BinPath: bin}, nil
}

func (t *GstTranscoder) Transcode(ctx context.Context, inputPath, outputPath string, format Format) error {
	def, ok := pipelineDefs[format]
	if !ok {
		return fmt.Errorf("format output tidak dikenal: %q", format)
	}
	return t.run(ctx, def, inputPath, outputPath)
}

func (t *GstTranscoder) Snapshot(ctx context.Context, inputPath, outputPath string) error {
	return t.run(ctx, thumbnailDef, inputPath, outputPath)
}

func (t *GstTranscoder) run(ctx context.Context, def, inputPath, outputPath string) error {
	args := PipelineArgs(def, inputPath, outputPath)
	log.Printf("[TRANSCODER] start pipeline: %s", strings.Join(args, " "))

	// -e memaksa EOS ke downstream saat pipeline selesai, -m mencetak bus message
	cmd := exec.CommandContext(ctx, t.BinPath, append([]string{"-e", "-m"}, args...)...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	runErr := cmd.Run()
	busErr := ParseBusOutput(&out)
	if busErr != nil {
		// Output parsial dibiarkan; caller yang menghapus
		return busErr
	}
	if runErr != nil {
		return fmt.Errorf("proses transcoder berhenti abnormal: %w", runErr)
	}
	log.Printf("[TRANSCODER] EOS reached, output=%s", outputPath)
	return nil
}

/* ========================================================
   Parsing bus output (dipisah supaya testable tanpa GStreamer)
======================================================== */

// PipelineArgs mengganti placeholder resep lalu memecahnya jadi argumen exec.
// Elemen pipeline dipisah spasi persis seperti gst-launch menerimanya.
func PipelineArgs(def, inputPath, outputPath string) []string {
	s := strings.ReplaceAll(def, "{input}", inputPath)
	s = strings.ReplaceAll(s, "{output}", outputPath)
	return strings.Fields(s)
}

// ParseBusOutput membaca bus message gst-launch:
//   - baris "ERROR" → gagal, bawa alasan dari engine
//   - pesan EOS eksplisit → sukses
//   - tidak ada EOS sama sekali → gagal (bukan silent success)
func ParseBusOutput(r *bytes.Buffer) error {
	sawEOS := false
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		trimmed := strings.TrimSpace(sc.Text())
		lower := strings.ToLower(trimmed)
		if strings.HasPrefix(trimmed, "ERROR:") || strings.Contains(lower, "(error)") {
			return fmt.Errorf("engine melaporkan error: %s", trimmed)
		}
		if strings.Contains(trimmed, "Got EOS from element") || strings.Contains(lower, "(eos)") {
			sawEOS = true
		}
	}
	if !sawEOS {
		return fmt.Errorf("pipeline berakhir tanpa sinyal EOS")
	}
	return nil
}
