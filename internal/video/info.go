package video

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

type VideoInfo struct {
	Filepath   string
	FileSize   int64
	Width      int
	Height     int
	Duration   float64
	Format     string
	Bitrate    int64
	FrameRate  float64
	FrameCount int
	HasAudio   bool
}

type FFProbeOutput struct {
	Streams []struct {
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		Duration   string `json:"duration"`
		CodecType  string `json:"codec_type"`
		FrameRate  string `json:"r_frame_rate"`
		FrameCount string `json:"nb_frames"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
		Bitrate  string `json:"bit_rate"`
		Format   string `json:"format_name"`
	} `json:"format"`
}

func GetVideoInfo(filepath string) (*VideoInfo, error) {
	fileInfo, err := os.Stat(filepath)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command("ffprobe", "-v", "quiet", "-print_format", "json", "-show_format", "-show_streams", filepath)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to run ffprobe: %w", err)
	}

	info, err := ParseProbeOutput(output)
	if err != nil {
		return nil, err
	}
	info.Filepath = filepath
	info.FileSize = fileInfo.Size()
	return info, nil
}

// ParseProbeOutput reads the JSON printed by ffprobe -show_format -show_streams.
func ParseProbeOutput(output []byte) (*VideoInfo, error) {
	var probe FFProbeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &VideoInfo{Format: probe.Format.Format}
	foundVideo := false
	for _, stream := range probe.Streams {
		switch stream.CodecType {
		case "video":
			if foundVideo {
				continue
			}
			foundVideo = true
			info.Width = stream.Width
			info.Height = stream.Height
			info.FrameRate, _ = ParseFrameRate(stream.FrameRate)
			if n, err := strconv.Atoi(stream.FrameCount); err == nil {
				info.FrameCount = n
			}
		case "audio":
			info.HasAudio = true
		}
	}
	if !foundVideo {
		return nil, fmt.Errorf("no video stream found")
	}

	if probe.Format.Duration != "" {
		if duration, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
			info.Duration = duration
		}
	}

	if probe.Format.Bitrate != "" {
		if bitrate, err := strconv.ParseInt(probe.Format.Bitrate, 10, 64); err == nil {
			info.Bitrate = bitrate
		}
	}

	// Containers without nb_frames still give duration and rate.
	if info.FrameCount == 0 && info.Duration > 0 && info.FrameRate > 0 {
		info.FrameCount = int(info.Duration*info.FrameRate + 0.5)
	}

	return info, nil
}

// ParseFrameRate parses ffprobe rates such as "30000/1001" or "25".
func ParseFrameRate(rate string) (float64, error) {
	num, den, isFraction := strings.Cut(rate, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frame rate %q: %w", rate, err)
	}
	if !isFraction {
		return n, nil
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frame rate %q: %w", rate, err)
	}
	if d == 0 {
		return 0, fmt.Errorf("invalid frame rate %q: zero denominator", rate)
	}
	return n / d, nil
}
