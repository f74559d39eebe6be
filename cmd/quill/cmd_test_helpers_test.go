package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"quill/internal/config"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
	Header http.Header
}

// fakeAPI answers health checks and replies to every other request with
// reply, recording what it received.
type fakeAPI struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	reply    any
}

func newFakeAPI(t *testing.T, status int, reply any) (*fakeAPI, *config.Config) {
	t.Helper()
	api := &fakeAPI{status: status, reply: reply}
	ts := httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(ts.Close)

	cfg := config.Default()
	cfg.APIURL = ts.URL
	cfg.DBPath = "/definitely/not/used.db"
	return api, &cfg
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.URL.Path == "/health" {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
		return
	}
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.RequestURI(), Body: string(body), Header: r.Header.Clone()})
	f.mu.Unlock()

	w.WriteHeader(f.status)
	_ = json.NewEncoder(w).Encode(f.reply)
}

func (f *fakeAPI) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}
