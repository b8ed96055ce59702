package usleep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/somnolab/somno/internal/logfeed"
)

// DefaultSessionName scopes calls that never name a session explicitly.
const DefaultSessionName = "default"

// Options configure a Client. The zero value targets the public scoring
// service with the historical defaults.
type Options struct {
	BaseURL     string // default https://sleep.ai.ku.dk
	AuthScheme  string // Authorization scheme, default "JWT"
	RoutePrefix string // default "/api/v1"
	UserAgent   string
	HTTPClient  *http.Client // must be safe for concurrent use
	Logger      *slog.Logger
}

// Client is the top-level handle on the scoring service: it owns the bearer
// token and the set of locally known sessions. The token lives on the client
// rather than in any ambient scope, so one process can drive several
// independently authenticated clients.
type Client struct {
	tr  *transport
	log *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewClient builds a Client for the given API token. The token is externally
// issued and opaque; expiry is detected only by server rejection. It is never
// persisted or logged.
func NewClient(token string, opts Options) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%w: empty API token", ErrAuth)
	}
	tr, err := newTransport(token, opts)
	if err != nil {
		return nil, err
	}
	return &Client{
		tr:       tr,
		log:      tr.log,
		sessions: make(map[string]*Session),
	}, nil
}

// ValidateToken performs an authentication round-trip. A rejection means the
// token is invalid or expired and the caller must re-authenticate.
func (c *Client) ValidateToken(ctx context.Context) error {
	body, err := c.tr.getText(ctx, "token/validate", "", ErrAuth)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(body, "OK") {
		return fmt.Errorf("%w: unexpected validation response %q", ErrAuth, snippet(body))
	}
	return nil
}

// ModelNames lists the scoring models the server currently offers.
func (c *Client) ModelNames(ctx context.Context) ([]string, error) {
	var payload struct {
		Models []string `json:"models"`
	}
	if err := c.tr.get(ctx, "model_names", "", &payload, ErrTransport); err != nil {
		return nil, err
	}
	return payload.Models, nil
}

// NewSession attaches to (or implicitly creates) the named session. An empty
// name means the account default. Sessions are registered server-side on
// first use; the account's concurrent session cap is enforced there and
// surfaces as ErrSessionLimit.
func (c *Client) NewSession(name string) *Session {
	if strings.TrimSpace(name) == "" {
		name = DefaultSessionName
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.sessions[name]; ok {
		return existing
	}
	s := &Session{
		name:   name,
		tr:     c.tr,
		log:    c.log.With("session", name),
		forget: func() { c.forgetSession(name) },
	}
	c.sessions[name] = s
	return s
}

func (c *Client) forgetSession(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, name)
}

// SessionNames lists the account's active sessions server-side.
func (c *Client) SessionNames(ctx context.Context) ([]string, error) {
	var payload struct {
		SessionNames []string `json:"session_names"`
	}
	if err := c.tr.get(ctx, "session_names", "", &payload, ErrTransport); err != nil {
		return nil, err
	}
	return payload.SessionNames, nil
}

// DeleteAllSessions tears down every active session for the account. Each
// delete is attempted regardless of earlier failures.
func (c *Client) DeleteAllSessions(ctx context.Context) error {
	names, err := c.SessionNames(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, name := range names {
		if err := c.NewSession(name).Delete(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DeleteAccount removes the account and everything it owns server-side.
func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.tr.postForm(ctx, "account/delete", "", nil, nil, ErrAuth)
}

// QuickPredictOptions configure a single-shot scoring run.
type QuickPredictOptions struct {
	InputPath  string // recording to upload, required
	OutputPath string // when set, the hypnogram is downloaded here
	LogPath    string // when set, the prediction log is written here

	Anonymize bool // blank identifying EDF header fields before upload

	// Model, ChannelGroups, and DataPerPrediction are auto-selected from
	// the server's configuration options when left unset.
	Model             string
	ChannelGroups     []ChannelGroup
	DataPerPrediction int

	// SessionName overrides the generated throwaway session name.
	SessionName string

	PollInterval time.Duration
	Timeout      time.Duration
	OnLog        func(lines []string) // stream new log lines during the wait
}

// QuickPredict runs the whole pipeline against a throwaway session: upload,
// configure, predict, wait, fetch. The session is deleted on every exit path
// so failed runs do not leak one of the account's limited session slots; the
// first error still propagates.
func (c *Client) QuickPredict(ctx context.Context, opts QuickPredictOptions) (Hypnogram, PredictionLog, error) {
	name := opts.SessionName
	if name == "" {
		name = "somno-" + uuid.NewString()[:8]
	}
	session := c.NewSession(name)
	defer func() {
		// Cleanup must run even when ctx is already cancelled.
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := session.Delete(cleanupCtx); err != nil {
			c.log.Warn("session cleanup failed", "session", name, "error", err)
		}
	}()

	hyp, plog, err := c.runPredict(ctx, session, opts)
	if err != nil {
		return Hypnogram{}, plog, err
	}
	return hyp, plog, nil
}

func (c *Client) runPredict(ctx context.Context, session *Session, opts QuickPredictOptions) (Hypnogram, PredictionLog, error) {
	if _, err := session.UploadFile(ctx, opts.InputPath, opts.Anonymize); err != nil {
		return Hypnogram{}, PredictionLog{}, err
	}

	model := opts.Model
	groups := opts.ChannelGroups
	dpp := opts.DataPerPrediction
	if model == "" || len(groups) == 0 || dpp <= 0 {
		conf, err := session.ConfigurationOptions(ctx)
		if err != nil {
			return Hypnogram{}, PredictionLog{}, err
		}
		if model == "" {
			if len(conf.Models) == 0 {
				return Hypnogram{}, PredictionLog{}, fmt.Errorf("%w: server reported no models", ErrConfiguration)
			}
			model = conf.Models[0]
		}
		if len(groups) == 0 {
			for _, g := range conf.ChannelGroups {
				groups = append(groups, ChannelGroup(g))
			}
			if len(groups) == 0 {
				return Hypnogram{}, PredictionLog{}, fmt.Errorf("%w: server could not infer channel groups; pass them explicitly", ErrConfiguration)
			}
		}
		if dpp <= 0 {
			dpp = conf.DataPerPrediction
		}
	}

	if err := session.SetModel(ctx, model); err != nil {
		return Hypnogram{}, PredictionLog{}, err
	}
	if err := session.Predict(ctx, groups, dpp); err != nil {
		return Hypnogram{}, PredictionLog{}, err
	}

	poller := Poller{Interval: opts.PollInterval, Timeout: opts.Timeout, OnLog: opts.OnLog}
	ok, err := poller.Wait(ctx, session)
	if err != nil {
		return Hypnogram{}, PredictionLog{}, err
	}

	plog, logErr := session.Log(ctx)
	if !ok {
		return Hypnogram{}, plog, fmt.Errorf("session %q: %w", session.Name(), ErrPredictionFailed)
	}
	if logErr != nil {
		return Hypnogram{}, PredictionLog{}, logErr
	}

	hyp, err := session.Hypnogram(ctx)
	if err != nil {
		return Hypnogram{}, plog, err
	}
	if opts.OutputPath != "" {
		fileType := strings.TrimPrefix(filepath.Ext(opts.OutputPath), ".")
		if err := session.Download(ctx, ResourceHypnogram, opts.OutputPath, fileType); err != nil {
			return hyp, plog, err
		}
	}
	if opts.LogPath != "" {
		if err := logfeed.WriteFile(opts.LogPath, plog.Lines); err != nil {
			return hyp, plog, fmt.Errorf("save prediction log: %w", err)
		}
	}
	return hyp, plog, nil
}
