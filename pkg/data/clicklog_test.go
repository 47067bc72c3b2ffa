package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clicklog.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadClickLog(t *testing.T) {
	log := `{"query":"ubuntu iso","timestamp":1700000000000,"results":[` +
		`{"infohash":"aa","seeders":10,"leechers":2},` +
		`{"infohash":"bb","seeders":5,"leechers":1}],"chosen_index":1}
{"query":"debian","timestamp":1700000100000,"results":[` +
		`{"infohash":"cc","seeders":3,"leechers":0}],"chosen_index":0}
`
	list, err := LoadClickLog(writeTempLog(t, log))
	require.NoError(t, err)
	require.Len(t, list, 2)

	a := list[0]
	assert.Equal(t, "ubuntu iso", a.Query)
	assert.Equal(t, int64(1700000000), a.Timestamp) // ms converted to s
	require.Len(t, a.Results, 2)
	assert.Same(t, a.Results[1], a.Chosen)
	assert.Equal(t, 1, a.ChosenIndex())
}

func TestLoadClickLog_BadChosenIndex(t *testing.T) {
	log := `{"query":"x","timestamp":1,"results":[{"infohash":"aa","seeders":1,"leechers":0}],"chosen_index":5}`
	_, err := LoadClickLog(writeTempLog(t, log))
	assert.Error(t, err)
}

func TestLoadClickLog_MissingChosenIndex(t *testing.T) {
	log := `{"query":"x","timestamp":1,"results":[{"infohash":"aa","seeders":1,"leechers":0}]}`
	_, err := LoadClickLog(writeTempLog(t, log))
	assert.Error(t, err)
}

func TestLoadClickLog_Malformed(t *testing.T) {
	_, err := LoadClickLog(writeTempLog(t, "{not json"))
	assert.Error(t, err)
}

func TestActivitiesRoundTrip(t *testing.T) {
	list := []*Activity{testActivity("q1", "aa", "bb", 1), testActivity("q2", "cc", "dd", 0)}
	list[0].Results[0].Meta = &TorrentMeta{Title: "Title A", Tags: []string{"linux", "iso"}, Timestamp: 1600000000, Size: 42}

	path := filepath.Join(t.TempDir(), "activities.jsonl")
	require.NoError(t, WriteActivities(path, list))

	got, err := ReadActivities(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "q1", got[0].Query)
	assert.Equal(t, 1, got[0].ChosenIndex())
	require.NotNil(t, got[0].Results[0].Meta)
	assert.Equal(t, []string{"linux", "iso"}, got[0].Results[0].Meta.Tags)
	assert.Same(t, got[1].Results[0], got[1].Chosen)
}

func TestActivityClone(t *testing.T) {
	a := testActivity("q", "aa", "bb", 0)
	a.Results[0].Meta = &TorrentMeta{Title: "t", Tags: []string{"x"}}

	c := a.Clone()
	require.Len(t, c.Results, 2)
	assert.Same(t, c.Results[0], c.Chosen)

	// mutating the clone must not touch the original
	c.Results[0].Seeders = 999
	c.Results[0].Meta.Tags[0] = "changed"
	assert.Equal(t, 10, a.Results[0].Seeders)
	assert.Equal(t, "x", a.Results[0].Meta.Tags[0])
}

// testActivity builds a two-result activity with fixed swarm stats.
func testActivity(query, h1, h2 string, chosen int) *Activity {
	a := &Activity{
		Query:     query,
		Timestamp: 1700000000,
		Results: []*Torrent{
			{Infohash: h1, Seeders: 10, Leechers: 2},
			{Infohash: h2, Seeders: 5, Leechers: 1},
		},
	}
	a.Chosen = a.Results[chosen]
	return a
}
