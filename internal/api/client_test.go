package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testRecord() Record {
	return Record{
		KasinaType:      "breath",
		DurationSeconds: 600,
		StartedAt:       "2026-08-23T07:00:00Z",
		SessionKey:      "2026-08-23T07:00:00Z/breath",
	}
}

func TestWriteSessionOK(t *testing.T) {
	var got Record
	var gotClient string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/sessions" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotClient = r.Header.Get("X-Kasina-Client")
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := New(srv.URL, "client-1", time.Second)
	if err := c.WriteSession(context.Background(), testRecord()); err != nil {
		t.Fatal(err)
	}
	if got.SessionKey != "2026-08-23T07:00:00Z/breath" || got.DurationSeconds != 600 {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if gotClient != "client-1" {
		t.Fatalf("client header = %q", gotClient)
	}
}

func TestWriteSessionConflictIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	c := New(srv.URL, "", time.Second)
	if err := c.WriteSession(context.Background(), testRecord()); err != nil {
		t.Fatalf("duplicate key should be success: %v", err)
	}
}

func TestWriteSessionServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, "", time.Second)
	err := c.WriteSession(context.Background(), testRecord())
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestWriteSessionBadRequestIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := New(srv.URL, "", time.Second)
	err := c.WriteSession(context.Background(), testRecord())
	if !errors.Is(err, ErrPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
}

func TestWriteSessionNetworkErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := New(srv.URL, "", time.Second)
	err := c.WriteSession(context.Background(), testRecord())
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestWriteSessionTimeoutIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := New(srv.URL, "", 10*time.Millisecond)
	err := c.WriteSession(context.Background(), testRecord())
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected transient error on timeout, got %v", err)
	}
}

func TestWriteSessionNoServerConfigured(t *testing.T) {
	c := New("", "", time.Second)
	err := c.WriteSession(context.Background(), testRecord())
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("missing server should be transient (resyncable later), got %v", err)
	}
}
