package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetcher_Fetch(t *testing.T) {
	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("plain body"))
	}))
	defer server.Close()

	fetcher := NewFetcher()
	body, contentType, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "plain body" {
		t.Errorf("unexpected body: %q", body)
	}
	if contentType != "text/plain; charset=utf-8" {
		t.Errorf("unexpected content type: %q", contentType)
	}
	if gotUserAgent != DefaultUserAgent {
		t.Errorf("expected default user agent, got %q", gotUserAgent)
	}
}

func TestFetcher_CustomUserAgent(t *testing.T) {
	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	fetcher := NewFetcher(WithUserAgent("scout-test/1.0"))
	if _, _, err := fetcher.Fetch(context.Background(), server.URL); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotUserAgent != "scout-test/1.0" {
		t.Errorf("expected custom user agent, got %q", gotUserAgent)
	}
}

func TestFetcher_HTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	fetcher := NewFetcher()
	_, _, err := fetcher.Fetch(context.Background(), server.URL+"/missing")
	if err == nil {
		t.Fatal("expected error for 404 response")
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %T", err)
	}
	if fetchErr.Status != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", fetchErr.Status)
	}
}

func TestFetcher_UnreachableServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	fetcher := NewFetcher()
	_, _, err := fetcher.Fetch(context.Background(), url)
	if err == nil {
		t.Fatal("expected error for unreachable server")
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %T", err)
	}
	if fetchErr.Status != 0 {
		t.Errorf("transport failure should carry no status, got %d", fetchErr.Status)
	}
	if fetchErr.Unwrap() == nil {
		t.Error("transport failure should carry the underlying error")
	}
}

func TestFetcher_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := NewFetcher()
	_, _, err := fetcher.Fetch(ctx, server.URL)
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
}

func TestFetchError_Message(t *testing.T) {
	statusErr := &FetchError{URL: "https://example.com", Status: 503}
	if statusErr.Error() != "fetch https://example.com: status 503" {
		t.Errorf("unexpected message: %q", statusErr.Error())
	}

	wrapped := &FetchError{URL: "https://example.com", Err: errors.New("dial refused")}
	if wrapped.Error() != "fetch https://example.com: dial refused" {
		t.Errorf("unexpected message: %q", wrapped.Error())
	}
}
