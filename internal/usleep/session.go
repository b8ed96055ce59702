package usleep

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/somnolab/somno/internal/edf"
)

// Session is a handle on one server-side scoring workspace: one uploaded
// file, one in-flight or completed prediction, its log, and its result. The
// client holds only the name; all data stays server-side until fetched.
//
// A Session is safe to drive from a single goroutine. Independent sessions
// may be used concurrently; they share nothing but the transport.
type Session struct {
	name string
	tr   *transport
	log  *slog.Logger

	// forget drops the owning client's reference to this session. Set by
	// Client.NewSession, nil for detached sessions.
	forget func()
}

// Name returns the session's server-side identifier.
func (s *Session) Name() string { return s.name }

// Upload replaces the session's recording with the contents of r. When
// anonymize is set the identifying EDF header fields are blanked before any
// byte leaves the machine; if the data cannot be anonymized the upload fails
// rather than transmitting identifiable data unmarked.
func (s *Session) Upload(ctx context.Context, r io.Reader, filename string, anonymize bool) (UploadResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return UploadResult{}, fmt.Errorf("read %q: %w: %v", filename, ErrUpload, err)
	}
	if anonymize {
		data, err = edf.Anonymize(data)
		if err != nil {
			return UploadResult{}, fmt.Errorf("anonymize %q: %w: %v", filename, ErrUpload, err)
		}
	}
	s.log.Info("uploading recording", "session", s.name, "file", filename,
		"bytes", len(data), "anonymized", anonymize)
	if err := s.tr.upload(ctx, "file/upload", s.name, "PSG", filename, bytes.NewReader(data), ErrUpload); err != nil {
		return UploadResult{}, err
	}
	return UploadResult{Filename: filename, Size: int64(len(data)), Anonymized: anonymize}, nil
}

// UploadFile uploads the file at path. See Upload.
func (s *Session) UploadFile(ctx context.Context, path string, anonymize bool) (UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return UploadResult{}, fmt.Errorf("%w: %v", ErrUpload, err)
	}
	defer func() { _ = f.Close() }()
	return s.Upload(ctx, f, filepath.Base(path), anonymize)
}

// DeleteFile releases the session's uploaded recording server-side.
func (s *Session) DeleteFile(ctx context.Context) error {
	return s.tr.postForm(ctx, "file/delete", s.name, nil, nil, ErrNotFound)
}

// SetModel selects the scoring model. The name is passed through as-is and
// validated server-side, so newly published models need no client update.
func (s *Session) SetModel(ctx context.Context, name string) error {
	s.log.Info("setting model", "session", s.name, "model", name)
	form := url.Values{"model": {name}}
	return s.tr.postForm(ctx, "set_model", s.name, form, nil, ErrConfiguration)
}

// ConfigurationOptions reports the models and channel groupings the server
// can apply to the session's uploaded file.
func (s *Session) ConfigurationOptions(ctx context.Context) (ConfigurationOptions, error) {
	var opts ConfigurationOptions
	if err := s.tr.get(ctx, "configuration_options", s.name, &opts, ErrConfiguration); err != nil {
		return ConfigurationOptions{}, err
	}
	return opts, nil
}

// Predict starts the scoring job. dataPerPrediction is the number of input
// samples per output epoch (sample rate times epoch seconds), passed through
// opaquely. Session readiness is the server's call: a missing upload or model
// surfaces as a rejection, and predicting while a job is running fails with
// ErrJobAlreadyRunning.
func (s *Session) Predict(ctx context.Context, groups []ChannelGroup, dataPerPrediction int) error {
	if len(groups) == 0 {
		return fmt.Errorf("%w: at least one channel group is required", ErrConfiguration)
	}
	form := url.Values{"data_per_prediction": {strconv.Itoa(dataPerPrediction)}}
	entry := 0
	for groupIdx, group := range groups {
		for _, channel := range group {
			form.Set(fmt.Sprintf("channels-%d", entry), channel)
			form.Set(fmt.Sprintf("channel_group_idx-%d", entry), strconv.Itoa(groupIdx))
			entry++
		}
	}
	s.log.Info("starting prediction", "session", s.name,
		"channel_groups", len(groups), "data_per_prediction", dataPerPrediction)
	return s.tr.postForm(ctx, "predict", s.name, form, nil, ErrConfiguration)
}

// Status reads the prediction state. Pure read with no side effect, safe at
// any polling cadence.
func (s *Session) Status(ctx context.Context) (JobStatus, error) {
	var payload struct {
		Label string `json:"label"`
	}
	if err := s.tr.get(ctx, "prediction_status", s.name, &payload, ErrTransport); err != nil {
		return StatusNotStarted, err
	}
	return ParseJobStatus(payload.Label)
}

// Hypnogram fetches the scored result. Only valid once the prediction has
// succeeded; earlier calls fail with ErrResultNotReady without issuing a
// request that could hand back stale data.
func (s *Session) Hypnogram(ctx context.Context) (Hypnogram, error) {
	status, err := s.Status(ctx)
	if err != nil {
		return Hypnogram{}, err
	}
	if status != StatusSuccess {
		return Hypnogram{}, fmt.Errorf("session %q is %s: %w", s.name, status, ErrResultNotReady)
	}
	var payload hypnogramPayload
	if err := s.tr.get(ctx, "hypnogram", s.name, &payload, ErrResultNotReady); err != nil {
		return Hypnogram{}, err
	}
	return payload.toHypnogram(), nil
}

// Log fetches the job's log snapshot. Valid at any time after Predict,
// including while the job is still running.
func (s *Session) Log(ctx context.Context) (PredictionLog, error) {
	var payload logPayload
	if err := s.tr.get(ctx, "prediction_log", s.name, &payload, ErrTransport); err != nil {
		return PredictionLog{}, err
	}
	return payload.toLog(), nil
}

// Download streams a session resource to outPath. fileType selects the
// hypnogram serialization and is ignored for other resources; when empty it
// is inferred from outPath's extension.
func (s *Session) Download(ctx context.Context, resource Resource, outPath, fileType string) error {
	if resource == ResourceHypnogram && fileType == "" {
		fileType = filepath.Ext(outPath)
	}
	route, err := resource.route(fileType)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
	s.log.Info("downloading resource", "session", s.name, "route", route, "to", outPath)
	if err := s.tr.download(ctx, route, s.name, out); err != nil {
		_ = out.Close()
		_ = os.Remove(outPath)
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
	return nil
}

// Delete tears down the session server-side, releasing the uploaded file,
// job artifacts, and logs. The owning client's reference is dropped before
// the request is issued, so a failed delete never leaves a stale local
// handle even when the server call errors.
func (s *Session) Delete(ctx context.Context) error {
	if s.forget != nil {
		s.forget()
		s.forget = nil
	}
	s.log.Info("deleting session", "session", s.name)
	return s.tr.postForm(ctx, "delete_session", s.name, nil, nil, ErrNotFound)
}
