package testsupport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// UnknownSeriesFloor is the first numeric id the fake catalog answers with 404.
const UnknownSeriesFloor = 900000

// FakeEpisode is one episode served by CatalogServer.
type FakeEpisode struct {
	ID      int64
	Season  int
	Number  *int
	Name    string
	Airdate string
	Runtime *int
}

// FakeShow is a show served by CatalogServer.
type FakeShow struct {
	ID        int64
	Name      string
	Status    string
	Premiered string
	Ended     string
	IMDb      string
	Episodes  []FakeEpisode
}

// CatalogServer is an in-process stand-in for the TVMaze API. Every numeric id
// below UnknownSeriesFloor resolves to a generated show unless a custom show
// was registered with AddShow; larger ids answer 404.
type CatalogServer struct {
	*httptest.Server

	mu    sync.Mutex
	shows map[int64]FakeShow
	hits  map[string]int
}

// NewCatalogServer starts a fake catalog and closes it when the test ends.
func NewCatalogServer(t testing.TB) *CatalogServer {
	t.Helper()
	cs := &CatalogServer{shows: make(map[int64]FakeShow), hits: make(map[string]int)}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /shows/{id}", cs.handleShow)
	mux.HandleFunc("GET /shows/{id}/episodes", cs.handleEpisodes)
	mux.HandleFunc("GET /lookup/shows", cs.handleLookup)
	cs.Server = httptest.NewServer(mux)
	t.Cleanup(cs.Close)
	return cs
}

// AddShow registers a custom show, replacing the generated one for its id.
func (cs *CatalogServer) AddShow(show FakeShow) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.shows[show.ID] = show
}

// Hits returns how many requests reached path (without query string).
func (cs *CatalogServer) Hits(path string) int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.hits[path]
}

// GeneratedShow returns the show the server synthesizes for id.
func GeneratedShow(id int64) FakeShow {
	one, two := 1, 2
	runtime := 30
	return FakeShow{
		ID:        id,
		Name:      fmt.Sprintf("Show %d", id),
		Status:    "Running",
		Premiered: "2020-01-01",
		IMDb:      fmt.Sprintf("tt%07d", id),
		Episodes: []FakeEpisode{
			{ID: id*100 + 1, Season: 1, Number: &one, Name: "Pilot", Airdate: "2020-01-01", Runtime: &runtime},
			{ID: id*100 + 2, Season: 1, Number: &two, Name: "Second", Airdate: "2020-01-08", Runtime: &runtime},
			{ID: id*100 + 3, Season: 1, Name: "Holiday Special", Airdate: "2020-12-24"},
		},
	}
}

func (cs *CatalogServer) lookup(raw string) (FakeShow, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 || id >= UnknownSeriesFloor {
		return FakeShow{}, false
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if show, ok := cs.shows[id]; ok {
		return show, true
	}
	return GeneratedShow(id), true
}

func (cs *CatalogServer) record(r *http.Request) {
	cs.mu.Lock()
	cs.hits[r.URL.Path]++
	cs.mu.Unlock()
}

func (cs *CatalogServer) handleShow(w http.ResponseWriter, r *http.Request) {
	cs.record(r)
	show, ok := cs.lookup(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, showJSON(show))
}

func (cs *CatalogServer) handleEpisodes(w http.ResponseWriter, r *http.Request) {
	cs.record(r)
	show, ok := cs.lookup(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	episodes := make([]map[string]any, 0, len(show.Episodes))
	for _, ep := range show.Episodes {
		if ep.Number == nil && r.URL.Query().Get("specials") != "1" {
			continue
		}
		episodes = append(episodes, map[string]any{
			"id":      ep.ID,
			"season":  ep.Season,
			"number":  ep.Number,
			"name":    ep.Name,
			"airdate": ep.Airdate,
			"runtime": ep.Runtime,
		})
	}
	writeJSON(w, episodes)
}

func (cs *CatalogServer) handleLookup(w http.ResponseWriter, r *http.Request) {
	cs.record(r)
	imdb := r.URL.Query().Get("imdb")
	raw := strings.TrimLeft(strings.TrimPrefix(imdb, "tt"), "0")
	if _, ok := cs.lookup(raw); !ok || !strings.HasPrefix(imdb, "tt") {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Location", "/shows/"+raw)
	w.WriteHeader(http.StatusMovedPermanently)
}

func showJSON(show FakeShow) map[string]any {
	payload := map[string]any{
		"id":        show.ID,
		"name":      show.Name,
		"status":    show.Status,
		"premiered": nullable(show.Premiered),
		"ended":     nullable(show.Ended),
		"externals": map[string]any{"imdb": nullable(show.IMDb)},
	}
	return payload
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
