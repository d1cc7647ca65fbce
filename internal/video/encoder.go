package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// ErrEncoding marks canvas or encoder initialization failures. Export
// aborts with no partial file left behind.
var ErrEncoding = errors.New("video encoding failed")

// Encoder consumes composited frames.
type Encoder interface {
	WriteFrame(img image.Image) error
}

// FFmpegOptions configure one encode run.
type FFmpegOptions struct {
	Width       int
	Height      int
	FPS         int
	BitrateKbps int    // video bitrate; 0 uses the 16 Mbps default
	AudioWAV    []byte // mixed narration track, muxed alongside the frames
	OutPath     string
	Binary      string // ffmpeg executable; "ffmpeg" when empty
}

// DefaultBitrateKbps biases toward visual fidelity over file size.
const DefaultBitrateKbps = 16000

// FFmpegEncoder pipes raw RGBA frames into an ffmpeg subprocess that muxes
// them with the audio track into a VP9/Opus WebM.
type FFmpegEncoder struct {
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stderr    bytes.Buffer
	opts      FFmpegOptions
	audioPath string
	scratch   *image.RGBA
}

// StartFFmpeg writes the audio track to a temp file and launches the
// encoder. Launch failures return ErrEncoding; the caller sees no partial
// output.
func StartFFmpeg(ctx context.Context, opts FFmpegOptions) (*FFmpegEncoder, error) {
	if opts.Width < 1 || opts.Height < 1 || opts.FPS < 1 {
		return nil, fmt.Errorf("%w: invalid frame geometry %dx%d@%d", ErrEncoding, opts.Width, opts.Height, opts.FPS)
	}
	if opts.OutPath == "" {
		return nil, fmt.Errorf("%w: missing output path", ErrEncoding)
	}

	audioFile, err := os.CreateTemp("", "storyreel-audio-*.wav")
	if err != nil {
		return nil, fmt.Errorf("%w: temp audio file: %v", ErrEncoding, err)
	}
	if _, err := audioFile.Write(opts.AudioWAV); err != nil {
		audioFile.Close()
		os.Remove(audioFile.Name())
		return nil, fmt.Errorf("%w: write audio track: %v", ErrEncoding, err)
	}
	audioFile.Close()

	cmd := exec.CommandContext(ctx, ffmpegBinary(opts), buildFFmpegArgs(opts, audioFile.Name())...)
	e := &FFmpegEncoder{cmd: cmd, opts: opts, audioPath: audioFile.Name()}
	cmd.Stderr = &e.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		os.Remove(audioFile.Name())
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	e.stdin = stdin

	if err := cmd.Start(); err != nil {
		os.Remove(audioFile.Name())
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: ffmpeg executable not found", ErrEncoding)
		}
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	return e, nil
}

func ffmpegBinary(opts FFmpegOptions) string {
	if opts.Binary != "" {
		return opts.Binary
	}
	return "ffmpeg"
}

func buildFFmpegArgs(opts FFmpegOptions, audioPath string) []string {
	bitrate := opts.BitrateKbps
	if bitrate <= 0 {
		bitrate = DefaultBitrateKbps
	}
	size := fmt.Sprintf("%dx%d", opts.Width, opts.Height)
	fps := strconv.Itoa(opts.FPS)

	return []string{
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", size,
		"-r", fps,
		"-i", "-",
		"-i", audioPath,
		"-c:v", "libvpx-vp9",
		"-b:v", fmt.Sprintf("%dk", bitrate),
		"-pix_fmt", "yuv420p",
		"-c:a", "libopus",
		"-shortest",
		opts.OutPath,
	}
}

// WriteFrame streams one frame's raw RGBA bytes to the encoder.
func (e *FFmpegEncoder) WriteFrame(img image.Image) error {
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != 4*e.opts.Width {
		rgba = e.normalize(img)
	}
	if _, err := e.stdin.Write(rgba.Pix); err != nil {
		return fmt.Errorf("%w: write frame: %v", ErrEncoding, err)
	}
	return nil
}

// normalize redraws the frame into a tightly packed RGBA buffer.
func (e *FFmpegEncoder) normalize(img image.Image) *image.RGBA {
	if e.scratch == nil {
		e.scratch = image.NewRGBA(image.Rect(0, 0, e.opts.Width, e.opts.Height))
	}
	draw.Draw(e.scratch, e.scratch.Bounds(), img, img.Bounds().Min, draw.Src)
	return e.scratch
}

// Close finishes the stream and waits for the encoder. A failed encode
// removes the partial output file.
func (e *FFmpegEncoder) Close() error {
	closeErr := e.stdin.Close()
	waitErr := e.cmd.Wait()
	os.Remove(e.audioPath)

	if waitErr != nil {
		os.Remove(e.opts.OutPath)
		return fmt.Errorf("%w: ffmpeg: %v: %s", ErrEncoding, waitErr, stderrTail(e.stderr.String()))
	}
	if closeErr != nil {
		return fmt.Errorf("%w: close frame stream: %v", ErrEncoding, closeErr)
	}
	return nil
}

// Abort kills the encoder and removes all partial outputs.
func (e *FFmpegEncoder) Abort() {
	_ = e.stdin.Close()
	_ = e.cmd.Process.Kill()
	_ = e.cmd.Wait()
	os.Remove(e.audioPath)
	os.Remove(e.opts.OutPath)
}

func stderrTail(s string) string {
	s = strings.TrimSpace(s)
	lines := strings.Split(s, "\n")
	if len(lines) > 4 {
		lines = lines[len(lines)-4:]
	}
	return strings.Join(lines, " | ")
}
