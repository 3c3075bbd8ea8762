package tvmaze

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type showPayload struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Status    string  `json:"status"`
	Premiered *string `json:"premiered"`
	Ended     *string `json:"ended"`
	Externals struct {
		IMDb *string `json:"imdb"`
	} `json:"externals"`
}

type episodePayload struct {
	ID      int64  `json:"id"`
	Season  int    `json:"season"`
	Number  *int   `json:"number"`
	Name    string `json:"name"`
	Airdate string `json:"airdate"`
	Runtime *int   `json:"runtime"`
}

// Episode is one entry of a show's episode list.
type Episode struct {
	ID         int64
	Season     int
	Number     int
	HasNumber  bool // false for specials
	Name       string
	AirDate    string
	Runtime    int
	HasRuntime bool
}

// Show is an immutable snapshot of a TVMaze series and its episodes.
type Show struct {
	id        string
	name      string
	status    string
	premiered string
	ended     string
	imdbID    string
	episodes  []Episode
}

// ParseShow builds a Show from the /shows/{id} and /shows/{id}/episodes payloads.
func ParseShow(showJSON, episodesJSON []byte) (*Show, error) {
	var sp showPayload
	if err := json.Unmarshal(showJSON, &sp); err != nil {
		return nil, fmt.Errorf("decode show: %w", err)
	}
	if sp.ID <= 0 {
		return nil, fmt.Errorf("decode show: missing id")
	}
	var eps []episodePayload
	if len(episodesJSON) > 0 {
		if err := json.Unmarshal(episodesJSON, &eps); err != nil {
			return nil, fmt.Errorf("decode episodes of show %d: %w", sp.ID, err)
		}
	}

	show := &Show{
		id:        strconv.FormatInt(sp.ID, 10),
		name:      sp.Name,
		status:    sp.Status,
		premiered: deref(sp.Premiered),
		ended:     deref(sp.Ended),
		imdbID:    deref(sp.Externals.IMDb),
		episodes:  make([]Episode, 0, len(eps)),
	}
	for _, ep := range eps {
		episode := Episode{ID: ep.ID, Season: ep.Season, Name: ep.Name, AirDate: ep.Airdate}
		if ep.Number != nil {
			episode.Number, episode.HasNumber = *ep.Number, true
		}
		if ep.Runtime != nil {
			episode.Runtime, episode.HasRuntime = *ep.Runtime, true
		}
		show.episodes = append(show.episodes, episode)
	}
	return show, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ID returns the native TVMaze id.
func (s *Show) ID() string { return s.id }

// Name returns the series title.
func (s *Show) Name() string { return s.name }

// Status is "Running", "Ended" or "To Be Determined".
func (s *Show) Status() string { return s.status }

// PremiereDate returns the ISO premiere date or "".
func (s *Show) PremiereDate() string { return s.premiered }

// EndedDate returns the ISO end date, or "" while the show is running.
func (s *Show) EndedDate() string { return s.ended }

// IMDbID returns the IMDb cross-reference id or "".
func (s *Show) IMDbID() string { return s.imdbID }

// NumEpisodes is the number of episodes across all seasons, specials included.
func (s *Show) NumEpisodes() int { return len(s.episodes) }

// Episode returns the episode at 1-based overall position n.
func (s *Show) Episode(n int) (Episode, error) {
	if n < 1 || n > len(s.episodes) {
		return Episode{}, fmt.Errorf("episode %d out of range 1..%d", n, len(s.episodes))
	}
	return s.episodes[n-1], nil
}

// Episodes returns a copy of the episode list in catalog order.
func (s *Show) Episodes() []Episode {
	return append([]Episode(nil), s.episodes...)
}
