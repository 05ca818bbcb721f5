package media

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

const defaultProbeTimeout = 30 * time.Second

// FFProbe reads durations with the ffprobe binary on PATH.
type FFProbe struct {
	Timeout time.Duration
	run     func(path string, timeout time.Duration) (string, error)
}

func NewFFProbe() *FFProbe {
	return &FFProbe{
		Timeout: defaultProbeTimeout,
		run: func(path string, timeout time.Duration) (string, error) {
			return ffmpeg.ProbeWithTimeout(path, timeout, ffmpeg.KwArgs{})
		},
	}
}

func (p *FFProbe) Duration(ctx context.Context, path string) (float64, error) {
	timeout := p.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout || timeout <= 0 {
			timeout = left
		}
	}
	if timeout <= 0 {
		return 0, errors.Wrap(context.DeadlineExceeded, "ffprobe")
	}
	out, err := p.run(path, timeout)
	if err != nil {
		return 0, errors.Wrap(err, "ffprobe")
	}
	return parseProbeDuration(out)
}

// ffprobe prints numbers as strings in its JSON output.
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		Duration  string `json:"duration"`
	} `json:"streams"`
}

// parseProbeDuration prefers the container duration and falls back to the
// first video stream that reports one.
func parseProbeDuration(out string) (float64, error) {
	var po probeOutput
	if err := json.Unmarshal([]byte(out), &po); err != nil {
		return 0, errors.Wrap(err, "decode ffprobe output")
	}
	candidates := []string{po.Format.Duration}
	for _, s := range po.Streams {
		if s.CodecType == "video" {
			candidates = append(candidates, s.Duration)
		}
	}
	for _, c := range candidates {
		if c == "" || c == "N/A" {
			continue
		}
		d, err := strconv.ParseFloat(c, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "parse duration %q", c)
		}
		if d < 0 {
			d = 0
		}
		return d, nil
	}
	return 0, errors.New("ffprobe reported no duration")
}
