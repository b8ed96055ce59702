package usleep

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"
)

const (
	defaultBaseURL     = "https://sleep.ai.ku.dk"
	defaultAuthScheme  = "JWT"
	defaultRoutePrefix = "/api/v1"
	defaultUserAgent   = "somno/0.1"
)

// transport performs authenticated HTTP requests against the scoring
// service. Historical deployments differ on the Authorization scheme and the
// route prefix, so both are parameters rather than constants.
type transport struct {
	baseURL   *url.URL
	prefix    string
	scheme    string
	token     string
	http      *http.Client
	userAgent string
	log       *slog.Logger
}

func newTransport(token string, opts Options) (*transport, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	scheme := strings.TrimSpace(opts.AuthScheme)
	if scheme == "" {
		scheme = defaultAuthScheme
	}
	prefix := strings.TrimSpace(opts.RoutePrefix)
	if prefix == "" {
		prefix = defaultRoutePrefix
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		// No client-wide timeout: uploads of large recordings and
		// long polls are bounded by the caller's context instead.
		httpClient = &http.Client{}
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &transport{
		baseURL:   base,
		prefix:    prefix,
		scheme:    scheme,
		token:     token,
		http:      httpClient,
		userAgent: userAgent,
		log:       logger,
	}, nil
}

// request issues one authenticated call. session scopes the call via the
// session_name query parameter; an empty session means the account default.
// The response body is open on success and owned by the caller.
func (t *transport) request(ctx context.Context, method, route, session, contentType string, body io.Reader) (*http.Response, string, error) {
	rel := &url.URL{Path: path.Join(t.prefix, route)}
	if session != "" {
		rel.RawQuery = url.Values{"session_name": {session}}.Encode()
	}
	op := method + " " + rel.Path

	reqURL := t.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, op, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Authorization", t.scheme+" "+t.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := t.http.Do(req)
	if err != nil {
		t.log.Debug("request failed", "op", op, "session", session, "error", err)
		return nil, op, &APIError{Op: op, Kind: ErrTransport, Err: err}
	}
	t.log.Debug("request completed", "op", op, "session", session, "status", resp.StatusCode)
	return resp, op, nil
}

// finish consumes a response: non-2xx statuses are classified against
// fallback, otherwise the JSON body is decoded into dest when non-nil.
func (t *transport) finish(resp *http.Response, op string, dest any, fallback error) error {
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return classify(op, resp.StatusCode, string(body), fallback)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func (t *transport) get(ctx context.Context, route, session string, dest any, fallback error) error {
	resp, op, err := t.request(ctx, http.MethodGet, route, session, "", nil)
	if err != nil {
		return err
	}
	return t.finish(resp, op, dest, fallback)
}

// getText fetches a route whose success body is plain text, not JSON.
func (t *transport) getText(ctx context.Context, route, session string, fallback error) (string, error) {
	resp, op, err := t.request(ctx, http.MethodGet, route, session, "", nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", classify(op, resp.StatusCode, string(body), fallback)
	}
	if readErr != nil {
		return "", fmt.Errorf("%s: read response: %w", op, readErr)
	}
	return string(body), nil
}

func (t *transport) postForm(ctx context.Context, route, session string, form url.Values, dest any, fallback error) error {
	resp, op, err := t.request(ctx, http.MethodPost, route, session,
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	return t.finish(resp, op, dest, fallback)
}

// upload sends body as a single multipart request under the given field
// name. There is no chunked or resumable protocol; large files simply take a
// correspondingly long call.
func (t *transport) upload(ctx context.Context, route, session, field, filename string, body io.Reader, fallback error) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile(field, filename)
		if err == nil {
			_, err = io.Copy(part, body)
		}
		if err == nil {
			err = mw.Close()
		}
		_ = pw.CloseWithError(err)
	}()

	resp, op, err := t.request(ctx, http.MethodPost, route, session, mw.FormDataContentType(), pr)
	if err != nil {
		return err
	}
	return t.finish(resp, op, nil, fallback)
}

// download streams a route's success body into w.
func (t *transport) download(ctx context.Context, route, session string, w io.Writer) error {
	resp, op, err := t.request(ctx, http.MethodGet, route, session, "", nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return classify(op, resp.StatusCode, string(body), ErrDownload)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrDownload, err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse server url %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
