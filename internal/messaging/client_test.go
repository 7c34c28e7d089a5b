package messaging

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/beaconcdp/beacon/config"
)

func newTestClient(baseURL string) *Client {
	c := NewClient(&config.MessagingConfig{
		BaseURL:    baseURL,
		AccountSID: "AC123",
		AuthToken:  "secret",
	})
	c.retryWait = time.Millisecond
	return c
}

func TestSendMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, expected POST", r.Method)
		}
		if r.URL.Path != "/Accounts/AC123/Messages" {
			t.Errorf("path = %s", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "AC123" || pass != "secret" {
			t.Error("missing or wrong basic auth")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM1","to":"+15550000001","status":"queued"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	msg, err := client.SendMessage(context.Background(), "+15550000001", "+15559999999", "hello")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if msg.SID != "SM1" || msg.Status != "queued" {
		t.Errorf("unexpected message: %+v", msg)
	}
}

func TestRetryOnServerError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"sid":"SM2","status":"queued"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	msg, err := client.SendMessage(context.Background(), "+15550000001", "+15559999999", "hello")
	if err != nil {
		t.Fatalf("SendMessage after retries: %v", err)
	}
	if msg.SID != "SM2" {
		t.Errorf("sid = %s", msg.SID)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestRetriesExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.SendMessage(context.Background(), "+15550000001", "+15559999999", "hello")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
}

func TestClientErrorNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":"20404","message":"not found"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetMessage(context.Background(), "SMmissing")
	if err == nil {
		t.Fatal("expected error")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("4xx should not retry, got %d attempts", calls)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Message != "not found" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestListMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("To"); got != "+15550000001" {
			t.Errorf("To = %q", got)
		}
		if got := r.URL.Query().Get("PageSize"); got != "10" {
			t.Errorf("PageSize = %q", got)
		}
		w.Write([]byte(`{"messages":[{"sid":"SM1"},{"sid":"SM2"}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	messages, err := client.ListMessages(context.Background(), ListOptions{To: "+15550000001", Limit: 10})
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(messages) != 2 {
		t.Errorf("expected 2 messages, got %d", len(messages))
	}
}

func TestContextCancellationStopsRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	client.retryWait = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.SendMessage(ctx, "+15550000001", "+15559999999", "hello")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context deadline error, got %v", err)
	}
}
