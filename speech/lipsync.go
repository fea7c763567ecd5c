package speech

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"policyrag/types"
)

// mouthShapes is the Preston Blair set the avatar rig understands. X is
// the rest pose and always closes the timeline.
var mouthShapes = []string{"A", "B", "C", "D", "E", "F", "G", "H"}

const cueStep = 0.1

// LipsyncEngine builds mouth-cue timelines for audio files. When a
// rhubarb binary is configured it is tried first; otherwise, and on any
// rhubarb failure, cues are synthesized over the clip duration.
type LipsyncEngine struct {
	rhubarbBin string
	logger     *slog.Logger
}

func NewLipsyncEngine(rhubarbBin string, logger *slog.Logger) *LipsyncEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &LipsyncEngine{rhubarbBin: rhubarbBin, logger: logger}
}

// Cues returns a mouth-cue timeline for the audio file. The text is used
// to estimate duration when the file cannot be measured.
func (e *LipsyncEngine) Cues(ctx context.Context, audioPath, text string) types.LipsyncData {
	if e.rhubarbBin != "" {
		if data, err := e.runRhubarb(ctx, audioPath); err == nil {
			return data
		} else {
			e.logger.Warn("rhubarb failed, synthesizing mouth cues", "error", err)
		}
	}
	return SyntheticCues(e.duration(ctx, audioPath, text))
}

func (e *LipsyncEngine) runRhubarb(ctx context.Context, audioPath string) (types.LipsyncData, error) {
	out := filepath.Join(os.TempDir(), filepath.Base(audioPath)+".json")
	defer os.Remove(out)

	cmd := exec.CommandContext(ctx, e.rhubarbBin, "-f", "json", "-o", out, audioPath)
	if err := cmd.Run(); err != nil {
		return types.LipsyncData{}, err
	}
	raw, err := os.ReadFile(out)
	if err != nil {
		return types.LipsyncData{}, err
	}
	var data types.LipsyncData
	if err := json.Unmarshal(raw, &data); err != nil {
		return types.LipsyncData{}, err
	}
	return data, nil
}

// duration measures the clip with ffprobe when available and falls back
// to a speaking-rate estimate from the text.
func (e *LipsyncEngine) duration(ctx context.Context, audioPath, text string) float64 {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		audioPath,
	)
	if out, err := cmd.Output(); err == nil {
		if d, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64); err == nil && d > 0 {
			return d
		}
	}
	return EstimateDuration(text)
}

// EstimateDuration approximates spoken length at a typical rate of
// around 150 words per minute, never less than a second.
func EstimateDuration(text string) float64 {
	words := len(strings.Fields(text))
	d := float64(words) * 0.4
	if d < 1.0 {
		d = 1.0
	}
	return d
}

// SyntheticCues tiles the duration with alternating mouth shapes every
// cueStep seconds, closing with the rest pose.
func SyntheticCues(duration float64) types.LipsyncData {
	if duration <= 0 {
		duration = 1.0
	}
	var cues []types.MouthCue
	t := 0.0
	for i := 0; t < duration; i++ {
		end := t + cueStep
		if end > duration {
			end = duration
		}
		cues = append(cues, types.MouthCue{Start: t, End: end, Value: mouthShapes[i%len(mouthShapes)]})
		t = end
	}
	if n := len(cues); n > 0 {
		cues[n-1].Value = "X"
	}
	return types.LipsyncData{
		Metadata:  types.LipsyncMetadata{Duration: duration},
		MouthCues: cues,
	}
}
