package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Event types.
const (
	EventRunCompleted = "run.completed"
	EventRunFailed    = "run.failed"
)

// SignatureHeader carries the HMAC-SHA256 of the body: sha256=<hex>.
const SignatureHeader = "X-Mapsrun-Signature"

// Event is one run notification.
type Event struct {
	Type      string `json:"type"`
	RunID     string `json:"run_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data"`
}

// Backoff is the wait before each delivery try. The leading zero is the
// first send.
var Backoff = []time.Duration{0, time.Second, 5 * time.Second, 30 * time.Second}

var client = &http.Client{Timeout: 10 * time.Second}

// StatusError is an endpoint reply of 400 or above.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook: endpoint returned status %d", e.Code)
}

// permanent reports whether another try cannot succeed: any 4xx except
// 408 and 429.
func permanent(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return se.Code >= 400 && se.Code < 500
}

// Sign returns the signature header value for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func newRequest(ctx context.Context, url, secret string, ev *Event) (*http.Request, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("webhook: encode %s: %w", ev.Type, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("webhook: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mapsrun-Webhook/1.0")
	if secret != "" {
		req.Header.Set(SignatureHeader, Sign(secret, body))
	}
	return req, nil
}

// Deliver posts ev to url once. Non-empty secrets sign the body.
func Deliver(ctx context.Context, url, secret string, ev *Event) error {
	req, err := newRequest(ctx, url, secret, ev)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: post %s: %w", ev.Type, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}

// Notify delivers ev, waiting schedule[i] before try i. It stops at the
// first success, on a 4xx the endpoint will keep returning, or when ctx is
// done, and returns the last error.
func Notify(ctx context.Context, url, secret string, ev *Event, schedule []time.Duration) error {
	log := slog.With("run_id", ev.RunID, "event_type", ev.Type)

	var err error
	for i, wait := range schedule {
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		tryCtx, cancel := context.WithTimeout(ctx, client.Timeout)
		err = Deliver(tryCtx, url, secret, ev)
		cancel()

		switch {
		case err == nil:
			log.Info("run event delivered", "try", i+1)
			return nil
		case permanent(err):
			log.Warn("run event rejected", "try", i+1, "error", err)
			return err
		}
		log.Warn("run event delivery failed", "try", i+1, "error", err)
	}
	log.Error("run event undelivered", "tries", len(schedule))
	return err
}

// NotifyAsync runs Notify on Backoff in the background.
func NotifyAsync(url, secret string, ev *Event) {
	go func() {
		_ = Notify(context.Background(), url, secret, ev, Backoff)
	}()
}
