package data

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// TorrentMeta holds the metadata attached to a torrent after enrichment.
type TorrentMeta struct {
	Title     string   `json:"title"`
	Tags      []string `json:"tags,omitempty"`
	Timestamp int64    `json:"timestamp"`
	Size      int64    `json:"size"`
}

// Torrent is a single entry in a search result slate.
type Torrent struct {
	Infohash string       `json:"infohash"`
	Seeders  int          `json:"seeders"`
	Leechers int          `json:"leechers"`
	Meta     *TorrentMeta `json:"meta,omitempty"`
}

// Activity is one recorded search interaction: the query, the result
// slate shown to the user, and the result the user chose.
type Activity struct {
	Query     string     `json:"query"`
	Timestamp int64      `json:"timestamp"`
	Results   []*Torrent `json:"results"`
	Chosen    *Torrent   `json:"-"`
}

// Clone returns a deep copy of the activity. The chosen pointer of the
// copy refers to the copied slate entry.
func (a *Activity) Clone() *Activity {
	c := &Activity{
		Query:     a.Query,
		Timestamp: a.Timestamp,
		Results:   make([]*Torrent, len(a.Results)),
	}
	for i, t := range a.Results {
		nt := *t
		if t.Meta != nil {
			m := *t.Meta
			m.Tags = append([]string(nil), t.Meta.Tags...)
			nt.Meta = &m
		}
		c.Results[i] = &nt
		if t == a.Chosen {
			c.Chosen = c.Results[i]
		}
	}
	return c
}

// ChosenIndex returns the position of the chosen result in the slate,
// or -1 if the chosen result is not part of the slate.
func (a *Activity) ChosenIndex() int {
	for i, t := range a.Results {
		if t == a.Chosen {
			return i
		}
	}
	return -1
}

// rawActivity is the click-log line format produced by the crawler.
// Timestamps are in milliseconds.
type rawActivity struct {
	Query       string    `json:"query"`
	Timestamp   int64     `json:"timestamp"`
	Results     []rawItem `json:"results"`
	ChosenIndex *int      `json:"chosen_index"`
}

type rawItem struct {
	Infohash string `json:"infohash"`
	Seeders  int    `json:"seeders"`
	Leechers int    `json:"leechers"`
}

// LoadClickLog reads a raw click-log file (one JSON object per line)
// into activities. Malformed lines fail the whole load.
func LoadClickLog(path string) ([]*Activity, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening click log %s: %w", path, err)
	}
	defer file.Close()

	var list []*Activity
	dec := json.NewDecoder(file)
	for line := 1; ; line++ {
		var raw rawActivity
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("decoding click log %s line %d: %w", path, line, err)
		}

		a, err := raw.toActivity()
		if err != nil {
			return nil, fmt.Errorf("click log %s line %d: %w", path, line, err)
		}
		list = append(list, a)
	}

	return list, nil
}

func (r *rawActivity) toActivity() (*Activity, error) {
	if len(r.Results) == 0 {
		return nil, errors.New("activity has no results")
	}
	if r.ChosenIndex == nil {
		return nil, errors.New("activity has no chosen_index")
	}
	if *r.ChosenIndex < 0 || *r.ChosenIndex >= len(r.Results) {
		return nil, fmt.Errorf("chosen_index %d out of range (%d results)", *r.ChosenIndex, len(r.Results))
	}

	a := &Activity{
		Query:     r.Query,
		Timestamp: r.Timestamp / 1000,
		Results:   make([]*Torrent, len(r.Results)),
	}
	for i, item := range r.Results {
		a.Results[i] = &Torrent{
			Infohash: item.Infohash,
			Seeders:  item.Seeders,
			Leechers: item.Leechers,
		}
	}
	a.Chosen = a.Results[*r.ChosenIndex]
	return a, nil
}

// enrichedActivity is the on-disk format for activities after metadata
// enrichment. Timestamps are in seconds.
type enrichedActivity struct {
	Query       string     `json:"query"`
	Timestamp   int64      `json:"timestamp"`
	Results     []*Torrent `json:"results"`
	ChosenIndex int        `json:"chosen_index"`
}

// WriteActivities persists enriched activities, one JSON object per line.
func WriteActivities(path string, list []*Activity) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating activities file %s: %w", path, err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	for i, a := range list {
		ci := a.ChosenIndex()
		if ci < 0 {
			return fmt.Errorf("activity %d: chosen result not in slate", i)
		}
		e := &enrichedActivity{
			Query:       a.Query,
			Timestamp:   a.Timestamp,
			Results:     a.Results,
			ChosenIndex: ci,
		}
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("encoding activity %d: %w", i, err)
		}
	}

	return nil
}

// ReadActivities loads activities previously written by WriteActivities.
func ReadActivities(path string) ([]*Activity, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening activities file %s: %w", path, err)
	}
	defer file.Close()

	var list []*Activity
	dec := json.NewDecoder(file)
	for line := 1; ; line++ {
		var e enrichedActivity
		if err := dec.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("decoding activities %s line %d: %w", path, line, err)
		}
		if e.ChosenIndex < 0 || e.ChosenIndex >= len(e.Results) {
			return nil, fmt.Errorf("activities %s line %d: chosen_index %d out of range", path, line, e.ChosenIndex)
		}
		a := &Activity{
			Query:     e.Query,
			Timestamp: e.Timestamp,
			Results:   e.Results,
			Chosen:    e.Results[e.ChosenIndex],
		}
		list = append(list, a)
	}

	return list, nil
}
