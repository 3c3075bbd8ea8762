package fetch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"watchlog/internal/fetch"
)

func TestGetReturnsBodyOn200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("expected json accept header, got %q", r.Header.Get("Accept"))
		}
		_, _ = w.Write([]byte(`{"id":6}`))
	}))
	t.Cleanup(server.Close)

	resp, err := fetch.New().Get(context.Background(), server.URL+"/shows/6")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if resp.StatusCode != http.StatusOK || string(resp.Body) != `{"id":6}` {
		t.Fatalf("unexpected response: %d %q", resp.StatusCode, resp.Body)
	}
}

func TestGetReturns404WithoutError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(server.Close)

	resp, err := fetch.New().Get(context.Background(), server.URL+"/shows/999")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if !resp.NotFound() {
		t.Fatalf("expected not found, got %d", resp.StatusCode)
	}
}

func TestGetFollowsRedirectChain(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/hop/", func(w http.ResponseWriter, r *http.Request) {
		n, _ := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/hop/"))
		if n == 0 {
			_, _ = w.Write([]byte("done"))
			return
		}
		w.Header().Set("Location", "/hop/"+strconv.Itoa(n-1))
		w.WriteHeader(http.StatusMovedPermanently)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := fetch.New()
	resp, err := client.Get(context.Background(), server.URL+"/hop/3")
	if err != nil {
		t.Fatalf("expected three hops to succeed, got %v", err)
	}
	if string(resp.Body) != "done" || !strings.HasSuffix(resp.URL, "/hop/0") {
		t.Fatalf("unexpected final response: %q at %s", resp.Body, resp.URL)
	}

	if _, err := client.Get(context.Background(), server.URL+"/hop/4"); !errors.Is(err, fetch.ErrTooManyRedirects) {
		t.Fatalf("expected ErrTooManyRedirects after four hops, got %v", err)
	}

	strict := fetch.New(fetch.WithMaxRedirects(0))
	if _, err := strict.Get(context.Background(), server.URL+"/hop/1"); !errors.Is(err, fetch.ErrTooManyRedirects) {
		t.Fatalf("expected redirect to fail with zero allowance, got %v", err)
	}
}

func TestGetOtherStatusIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	_, err := fetch.New().Get(context.Background(), server.URL)
	var statusErr *fetch.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("unexpected status: %d", statusErr.StatusCode)
	}
}

func TestGetIgnoresCallerRedirectPolicy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/final" {
			_, _ = w.Write([]byte("ok"))
			return
		}
		http.Redirect(w, r, "/final", http.StatusFound)
	}))
	t.Cleanup(server.Close)

	// 302 is not part of the catalog contract, so it surfaces as a status error
	// even when the supplied client would normally follow it.
	client := fetch.New(fetch.WithHTTPClient(&http.Client{}))
	_, err := client.Get(context.Background(), server.URL+"/start")
	var statusErr *fetch.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusFound {
		t.Fatalf("expected 302 status error, got %v", err)
	}
}
