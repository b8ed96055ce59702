package usleep

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient("test-token", Options{
		BaseURL: baseURL,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return c
}

// fakeEDF builds a minimal valid EDF header followed by signal bytes.
func fakeEDF(patient string) []byte {
	var b bytes.Buffer
	field := func(s string, n int) {
		b.WriteString(s)
		b.WriteString(strings.Repeat(" ", n-len(s)))
	}
	field("0", 8)
	field(patient, 80)
	field("Startdate 03-MAR-2024 hosp-77 tech-9 EEG-machine", 80)
	b.WriteString("03.03.24")
	b.WriteString("21.45.00")
	b.WriteString(strings.Repeat("\x01", 64)) // pretend signal data
	return b.Bytes()
}

func TestSession_UploadSendsMultipartScopedToSession(t *testing.T) {
	t.Parallel()

	var (
		gotSession  string
		gotAuth     string
		gotFilename string
		gotBody     []byte
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/file/upload" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		gotSession = r.URL.Query().Get("session_name")
		gotAuth = r.Header.Get("Authorization")
		file, header, err := r.FormFile("PSG")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotFilename = header.Filename
		gotBody, _ = io.ReadAll(file)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL)
	session := client.NewSession("night-1")

	raw := fakeEDF("pid-123 M 01-JAN-1990 John_Doe")
	result, err := session.Upload(context.Background(), bytes.NewReader(raw), "night1.edf", false)
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if gotSession != "night-1" {
		t.Fatalf("session_name = %q, want night-1", gotSession)
	}
	if gotAuth != "JWT test-token" {
		t.Fatalf("Authorization = %q, want JWT test-token", gotAuth)
	}
	if gotFilename != "night1.edf" {
		t.Fatalf("filename = %q, want night1.edf", gotFilename)
	}
	if !bytes.Equal(gotBody, raw) {
		t.Fatalf("uploaded body differs from input (%d vs %d bytes)", len(gotBody), len(raw))
	}
	if result.Size != int64(len(raw)) || result.Anonymized {
		t.Fatalf("result = %#v, want size=%d anonymized=false", result, len(raw))
	}
}

func TestSession_UploadAnonymizesBeforeTransmission(t *testing.T) {
	t.Parallel()

	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, _, err := r.FormFile("PSG")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotBody, _ = io.ReadAll(file)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL)
	session := client.NewSession("anon")

	raw := fakeEDF("pid-123 M 01-JAN-1990 John_Doe")
	if _, err := session.Upload(context.Background(), bytes.NewReader(raw), "in.edf", true); err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if bytes.Contains(gotBody, []byte("John_Doe")) {
		t.Fatalf("patient name leaked into the uploaded body")
	}
	if !bytes.HasPrefix(gotBody[8:], []byte("X X X X_X")) {
		t.Fatalf("patient field = %q, want anonymized placeholder", gotBody[8:88])
	}
}

func TestSession_UploadFailsInsteadOfSkippingAnonymization(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("server received a request for data that could not be anonymized")
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL)
	session := client.NewSession("anon")

	_, err := session.Upload(context.Background(), strings.NewReader("not an edf file"), "in.edf", true)
	if !errors.Is(err, ErrUpload) {
		t.Fatalf("Upload error = %v, want ErrUpload", err)
	}
}

func TestSession_PredictEncodesChannelGroups(t *testing.T) {
	t.Parallel()

	var gotForm map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/predict" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotForm = r.PostForm
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL)
	session := client.NewSession("s")

	groups := []ChannelGroup{{"C3-A2", "EOG"}, {"C4-A1", "EOG"}}
	if err := session.Predict(context.Background(), groups, 3840); err != nil {
		t.Fatalf("Predict returned error: %v", err)
	}

	want := map[string]string{
		"data_per_prediction": "3840",
		"channels-0":          "C3-A2",
		"channel_group_idx-0": "0",
		"channels-1":          "EOG",
		"channel_group_idx-1": "0",
		"channels-2":          "C4-A1",
		"channel_group_idx-2": "1",
		"channels-3":          "EOG",
		"channel_group_idx-3": "1",
	}
	for key, value := range want {
		if got := gotForm[key]; len(got) != 1 || got[0] != value {
			t.Fatalf("form[%q] = %v, want %q", key, got, value)
		}
	}
}

func TestSession_PredictWhileRunningFailsAndStartsNothing(t *testing.T) {
	t.Parallel()

	predictCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/predict":
			predictCalls++
			http.Error(w, "a prediction is already running for this session", http.StatusConflict)
		case "/api/v1/prediction_status":
			_ = json.NewEncoder(w).Encode(map[string]string{"label": "running"})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL)
	session := client.NewSession("busy")

	err := session.Predict(context.Background(), []ChannelGroup{{"C3-A2"}}, 3840)
	if !errors.Is(err, ErrJobAlreadyRunning) {
		t.Fatalf("Predict error = %v, want ErrJobAlreadyRunning", err)
	}
	if predictCalls != 1 {
		t.Fatalf("predict calls = %d, want 1", predictCalls)
	}

	status, err := session.Status(context.Background())
	if err != nil || status != StatusRunning {
		t.Fatalf("Status = %v, %v, want running", status, err)
	}
}

func TestSession_HypnogramNotReadyMakesNoResultRequest(t *testing.T) {
	t.Parallel()

	hypnogramHits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/prediction_status":
			_ = json.NewEncoder(w).Encode(map[string]string{"label": "queued"})
		case "/api/v1/hypnogram":
			hypnogramHits++
			_ = json.NewEncoder(w).Encode(hypnogramPayload{})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL)
	session := client.NewSession("queued")

	_, err := session.Hypnogram(context.Background())
	if !errors.Is(err, ErrResultNotReady) {
		t.Fatalf("Hypnogram error = %v, want ErrResultNotReady", err)
	}
	if hypnogramHits != 0 {
		t.Fatalf("hypnogram endpoint hit %d times before success, want 0", hypnogramHits)
	}
}

func TestSession_DownloadWritesFile(t *testing.T) {
	t.Parallel()

	content := "Wake\tN1\tN2\n"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/download/hypnogram_tsv" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, content)
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL)
	session := client.NewSession("done")

	outPath := filepath.Join(t.TempDir(), "hypnogram.tsv")
	if err := session.Download(context.Background(), ResourceHypnogram, outPath, ""); err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(got) != content {
		t.Fatalf("downloaded content = %q, want %q", got, content)
	}
}

func TestSession_DownloadMissingResource(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL)
	session := client.NewSession("empty")

	outPath := filepath.Join(t.TempDir(), "hypnogram.tsv")
	err := session.Download(context.Background(), ResourceHypnogram, outPath, "tsv")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Download error = %v, want ErrNotFound", err)
	}
	if _, statErr := os.Stat(outPath); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("partial download left behind at %s", outPath)
	}
}

func TestSession_DeleteDropsLocalReferenceEvenOnServerFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL)
	first := client.NewSession("stale")
	if again := client.NewSession("stale"); again != first {
		t.Fatalf("NewSession returned a new handle for a live session")
	}

	if err := first.Delete(context.Background()); err == nil {
		t.Fatalf("Delete returned nil error, want server failure")
	}

	// The local reference must be gone regardless of the server outcome.
	if replacement := client.NewSession("stale"); replacement == first {
		t.Fatalf("deleted session still registered with the client")
	}

	// A second delete on the stale handle must not corrupt bookkeeping.
	if err := first.Delete(context.Background()); err == nil {
		t.Fatalf("second Delete returned nil error, want server failure")
	}
}

func TestSession_AuthRejectionClassified(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "token expired", http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL)
	session := client.NewSession("expired")

	_, err := session.Status(context.Background())
	if !errors.Is(err, ErrAuth) {
		t.Fatalf("Status error = %v, want ErrAuth", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("error = %v, want *APIError with status 401", err)
	}
}

func TestSession_SessionLimitClassified(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "session limit reached (max 5 concurrent sessions)", http.StatusForbidden)
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL)
	session := client.NewSession("sixth")

	raw := fakeEDF("p")
	_, err := session.Upload(context.Background(), bytes.NewReader(raw), "in.edf", false)
	if !errors.Is(err, ErrSessionLimit) {
		t.Fatalf("Upload error = %v, want ErrSessionLimit", err)
	}
}
