package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"video-uploader/internal/domain/entities"
)

// ToolError is a non-zero exit or unusable output from an external tool.
type ToolError struct {
	Tool     string
	ExitCode int
	Stderr   string
	Reason   string
}

func (e *ToolError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Tool, e.Reason)
	}
	return fmt.Sprintf("%s exited with status %d", e.Tool, e.ExitCode)
}

type Prober struct {
	runner Runner
	bin    string
}

func NewProber(runner Runner, ffprobePath string) *Prober {
	return &Prober{runner: runner, bin: ffprobePath}
}

type ffprobeOutput struct {
	Streams []struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"streams"`
}

// Dimensions returns the width and height of the first video stream.
func (p *Prober) Dimensions(ctx context.Context, path string) (int, int, error) {
	res, err := p.runner.Run(ctx, p.bin,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "json",
		path,
	)
	if err != nil {
		return 0, 0, err
	}
	stderr := strings.TrimSpace(string(res.Stderr))
	if res.ExitCode != 0 {
		return 0, 0, &ToolError{Tool: "ffprobe", ExitCode: res.ExitCode, Stderr: stderr}
	}

	var out ffprobeOutput
	if err := json.Unmarshal(res.Stdout, &out); err != nil {
		return 0, 0, &ToolError{Tool: "ffprobe", Stderr: stderr, Reason: "unparseable output: " + err.Error()}
	}
	if len(out.Streams) == 0 {
		return 0, 0, &ToolError{Tool: "ffprobe", Stderr: stderr, Reason: "no video stream"}
	}
	w, h := out.Streams[0].Width, out.Streams[0].Height
	if w <= 0 || h <= 0 {
		return 0, 0, &ToolError{Tool: "ffprobe", Stderr: stderr, Reason: fmt.Sprintf("invalid dimensions %dx%d", w, h)}
	}
	return w, h, nil
}

func (p *Prober) ProbeOrientation(ctx context.Context, path string) (entities.Orientation, error) {
	w, h, err := p.Dimensions(ctx, path)
	if err != nil {
		return "", err
	}
	return entities.ClassifyOrientation(w, h), nil
}

// FastStartRewriter moves the moov atom to the front with a stream copy.
type FastStartRewriter struct {
	runner Runner
	bin    string
}

func NewFastStartRewriter(runner Runner, ffmpegPath string) *FastStartRewriter {
	return &FastStartRewriter{runner: runner, bin: ffmpegPath}
}

func (r *FastStartRewriter) RewriteFastStart(ctx context.Context, inputPath, outputPath string) error {
	if inputPath == outputPath {
		return errors.New("fast start output must differ from input")
	}
	res, err := r.runner.Run(ctx, r.bin,
		"-i", inputPath,
		"-movflags", "faststart",
		"-map_metadata", "0",
		"-codec", "copy",
		"-f", "mp4",
		outputPath,
	)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return &ToolError{Tool: "ffmpeg", ExitCode: res.ExitCode, Stderr: strings.TrimSpace(string(res.Stderr))}
	}
	return nil
}
