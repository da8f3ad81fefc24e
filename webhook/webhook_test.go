package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestSignVerify(t *testing.T) {
	body := []byte(`{"type":"search.completed"}`)
	sig := Sign("s3cret", body)

	if len(sig) != len("sha256=")+64 {
		t.Fatalf("unexpected signature format %q", sig)
	}
	if !Verify("s3cret", body, sig) {
		t.Error("valid signature rejected")
	}
	if Verify("other", body, sig) {
		t.Error("signature accepted under the wrong secret")
	}
	if Verify("s3cret", append(body, ' '), sig) {
		t.Error("signature accepted for a modified body")
	}
}

func TestDeliver_SignsBody(t *testing.T) {
	var gotSig, gotType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get(SignatureHeader)
		gotBody, _ = io.ReadAll(r.Body)
		var ev Event
		_ = json.Unmarshal(gotBody, &ev)
		gotType = ev.Type
	}))
	defer srv.Close()

	ev := NewEvent(EventSearchCompleted, "run-1", map[string]int{"totalItems": 3})
	if err := Deliver(context.Background(), srv.URL, "k", ev); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if gotType != EventSearchCompleted {
		t.Errorf("type = %q", gotType)
	}
	if !Verify("k", gotBody, gotSig) {
		t.Errorf("signature %q does not verify", gotSig)
	}
}

func TestDeliver_NoSecretNoHeader(t *testing.T) {
	var present atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		present.Store(r.Header.Get(SignatureHeader) != "")
	}))
	defer srv.Close()

	if err := Deliver(context.Background(), srv.URL, "", NewEvent(EventSearchFailed, "r", nil)); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if present.Load() {
		t.Error("signature header sent without a secret")
	}
}

func TestDeliver_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if err := Deliver(context.Background(), srv.URL, "", NewEvent(EventSearchFailed, "r", nil)); err == nil {
		t.Error("expected an error for a 502 response")
	}
}

func TestDeliverAsync_Retries(t *testing.T) {
	saved := retryDelays
	retryDelays = []time.Duration{0, time.Millisecond, time.Millisecond}
	defer func() { retryDelays = saved }()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	select {
	case <-DeliverAsync(srv.URL, "", NewEvent(EventSearchCompleted, "r", nil)):
	case <-time.After(5 * time.Second):
		t.Fatal("delivery did not finish")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}
