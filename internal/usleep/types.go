package usleep

import (
	"fmt"
	"strconv"
	"strings"
)

// ChannelGroup is an ordered set of signal channel names scored together as
// one input stream. A prediction carries one or more independent groups.
type ChannelGroup []string

// ParseChannelGroup splits the "C3-A2++EOG" command-line form into a group.
func ParseChannelGroup(s string) (ChannelGroup, error) {
	var group ChannelGroup
	for _, ch := range strings.Split(s, "++") {
		ch = strings.TrimSpace(ch)
		if ch == "" {
			return nil, fmt.Errorf("channel group %q contains an empty channel name", s)
		}
		group = append(group, ch)
	}
	return group, nil
}

// Epoch is one fixed-duration segment of the recording with its scored
// sleep-stage label.
type Epoch struct {
	Index int
	Label string
}

// Hypnogram is the ordered sequence of staged epochs produced by a completed
// prediction.
type Hypnogram struct {
	Epochs []Epoch
}

// Labels returns just the stage labels in epoch order.
func (h Hypnogram) Labels() []string {
	labels := make([]string, len(h.Epochs))
	for i, e := range h.Epochs {
		labels[i] = e.Label
	}
	return labels
}

func (h Hypnogram) String() string {
	return strings.Join(h.Labels(), "\n")
}

// hypnogramPayload mirrors the JSON returned by the hypnogram endpoint: an
// integer stage per epoch plus a stage-index to label mapping.
type hypnogramPayload struct {
	Hypnogram []int             `json:"hypnogram"`
	Labels    map[string]string `json:"labels"`
}

func (p hypnogramPayload) toHypnogram() Hypnogram {
	epochs := make([]Epoch, len(p.Hypnogram))
	for i, stage := range p.Hypnogram {
		label, ok := p.Labels[strconv.Itoa(stage)]
		if !ok {
			label = strconv.Itoa(stage)
		}
		epochs[i] = Epoch{Index: i, Label: label}
	}
	return Hypnogram{Epochs: epochs}
}

// PredictionLog is a snapshot of the remote job's log at the time of the
// call. Finished mirrors the server's own completion marker.
type PredictionLog struct {
	Lines    []string
	Finished bool
}

func (l PredictionLog) String() string {
	return strings.Join(l.Lines, "\n")
}

// logPayload mirrors the prediction log endpoint: the full log as one string
// with "<br>" separators, plus a finished flag.
type logPayload struct {
	Lines    string `json:"lines"`
	Finished bool   `json:"finished"`
}

func (p logPayload) toLog() PredictionLog {
	text := strings.ReplaceAll(p.Lines, "<br>", "\n")
	text = strings.TrimRight(text, "\n")
	var lines []string
	if text != "" {
		lines = strings.Split(text, "\n")
	}
	return PredictionLog{Lines: lines, Finished: p.Finished}
}

// ConfigurationOptions reports what the server can do with the session's
// uploaded file: available models, inferred channel groupings, and the
// suggested samples-per-epoch value.
type ConfigurationOptions struct {
	Models            []string   `json:"models"`
	ChannelGroups     [][]string `json:"channel_groups"`
	DataPerPrediction int        `json:"data_per_prediction"`
}

// UploadResult summarizes a completed upload.
type UploadResult struct {
	Filename   string
	Size       int64
	Anonymized bool
}

// Resource names a downloadable artifact owned by a session.
type Resource int

const (
	ResourceHypnogram Resource = iota
	ResourceLog
	ResourceFile
)

// HypnogramFileTypes lists the serializations the server can produce for a
// hypnogram download.
var HypnogramFileTypes = []string{"tsv", "txt", "npy"}

// route returns the download route for the resource. fileType is only
// meaningful for hypnograms.
func (r Resource) route(fileType string) (string, error) {
	switch r {
	case ResourceHypnogram:
		ft := strings.TrimPrefix(strings.ToLower(fileType), ".")
		for _, known := range HypnogramFileTypes {
			if ft == known {
				return "download/hypnogram_" + ft, nil
			}
		}
		return "", fmt.Errorf("invalid hypnogram file type %q, must be one of %v", fileType, HypnogramFileTypes)
	case ResourceLog:
		return "download/prediction_log", nil
	case ResourceFile:
		return "download/file", nil
	}
	return "", fmt.Errorf("unknown resource %d", int(r))
}
