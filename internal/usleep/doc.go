// Package usleep provides an HTTP client for a remote sleep-scoring service.
//
// # Overview
//
// This package drives the full scoring pipeline against the service: upload a
// polysomnography recording, pick a model and channel groups, start the
// prediction, wait for it to finish, and fetch the resulting hypnogram and
// job log. All computation happens server-side; the client only orchestrates.
//
// # Architecture
//
// The package is split by responsibility:
//
//   - client.go: Client construction, account-level calls, QuickPredict
//   - session.go: Session handle and per-session operations
//   - poller.go: Poller, the wait-for-completion loop
//   - transport.go: HTTP plumbing, auth header, multipart upload
//   - types.go: Hypnogram, channel groups, log and payload types
//   - status.go: JobStatus enum and label parsing
//   - errors.go: Error taxonomy and response classification
//
// # Client Usage
//
// Create a client with an API token, attach to a session, and drive it:
//
//	client, err := usleep.NewClient(token, usleep.Options{})
//	if err != nil {
//		log.Fatalf("client: %v", err)
//	}
//
//	session := client.NewSession("night-1")
//	if _, err := session.UploadFile(ctx, "night1.edf", true); err != nil {
//		log.Fatalf("upload: %v", err)
//	}
//	if err := session.SetModel(ctx, "U-Sleep v2.0"); err != nil {
//		log.Fatalf("set model: %v", err)
//	}
//	if err := session.Predict(ctx, groups, 128*30); err != nil {
//		log.Fatalf("predict: %v", err)
//	}
//
//	ok, err := usleep.Poller{Interval: 2 * time.Second}.Wait(ctx, session)
//	if err != nil {
//		log.Fatalf("wait: %v", err)
//	}
//	if ok {
//		hyp, _ := session.Hypnogram(ctx)
//		fmt.Println(hyp)
//	}
//
// For the common single-recording case, Client.QuickPredict runs the whole
// pipeline against a throwaway session and cleans up after itself.
//
// # Sessions
//
// A session is a named server-side workspace holding one uploaded file, one
// prediction, its log, and its result. Sessions are created implicitly on
// first use and live until deleted; accounts have a server-enforced cap on
// concurrent sessions, which surfaces as ErrSessionLimit. Session.Delete
// drops the client's local reference before issuing the request, so a failed
// delete never leaves a stale handle behind.
//
// # Error Handling
//
// Every failure is classified into one sentinel per caller decision:
//
//   - ErrTransport: network failures and 5xx responses (retryable)
//   - ErrAuth: invalid or expired token (re-authenticate)
//   - ErrConfiguration: bad model, channels, or prediction parameters
//   - ErrJobAlreadyRunning: predict called while a job is in flight
//   - ErrResultNotReady: result requested before the job succeeded
//   - ErrPollTimeout: Poller.Wait exceeded its deadline
//   - ErrSessionLimit: account's concurrent session cap reached
//   - ErrUpload, ErrDownload, ErrNotFound: file transfer failures
//
// Sentinels are matched with errors.Is. The concrete *APIError behind them
// carries the operation, HTTP status, and a response body snippet for
// diagnostics; it never carries the token.
//
// # Polling
//
// Poller.Wait polls the job status at a fixed interval until the job reaches
// a terminal state. Transient transport failures are retried a bounded number
// of times; auth and configuration errors abort immediately. With a Timeout
// set, Wait returns ErrPollTimeout no later than one interval past the
// deadline. The optional OnLog callback streams each new log line exactly
// once as it appears.
//
// # Security Properties
//
// The API token lives on the Client and is sent only in the Authorization
// header; it is never logged or persisted. When an upload requests
// anonymization, the identifying EDF header fields are blanked before any
// byte leaves the machine, and an input that cannot be anonymized fails the
// upload rather than being transmitted unmarked.
//
// # Thread Safety
//
// A Client may be shared across goroutines. Independent sessions may be used
// concurrently; a single Session expects one goroutine at a time.
//
// # Testing Considerations
//
// The package is designed to be tested against httptest.Server: Options takes
// a base URL and an http.Client, and every operation goes through the same
// transport. See the package tests for scripted-status servers that exercise
// the poller's retry and timeout behavior.
package usleep
