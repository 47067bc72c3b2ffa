package data

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

const metadataBatchSize = 50000

const selectMetadata = `SELECT infohash_hex, title, tags, timestamp/1000, size
	FROM ChannelNode WHERE infohash_hex IN (%s)`

// EnrichmentResult summarizes a metadata enrichment pass.
type EnrichmentResult struct {
	Found   int `json:"found"`
	Missing int `json:"missing"`
}

// EnrichActivities resolves torrent metadata for every slate entry from
// the crawler metadata database. Lookups are batched to keep the IN
// clause bounded. Torrents without a metadata row are left bare and
// counted as missing.
func EnrichActivities(db *sql.DB, list []*Activity) (*EnrichmentResult, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	seen := make(map[string]bool)
	var hashes []string
	for _, a := range list {
		for _, t := range a.Results {
			if !seen[t.Infohash] {
				seen[t.Infohash] = true
				hashes = append(hashes, t.Infohash)
			}
		}
	}

	metas := make(map[string]*TorrentMeta, len(hashes))
	for i := 0; i < len(hashes); i += metadataBatchSize {
		end := i + metadataBatchSize
		if end > len(hashes) {
			end = len(hashes)
		}
		if err := queryMetadataBatch(db, hashes[i:end], metas); err != nil {
			return nil, err
		}
	}

	res := &EnrichmentResult{}
	for _, a := range list {
		for _, t := range a.Results {
			if m, ok := metas[t.Infohash]; ok {
				t.Meta = m
				res.Found++
			} else {
				res.Missing++
			}
		}
	}

	slog.Debug("metadata enrichment done", "found", res.Found, "missing", res.Missing)
	return res, nil
}

func queryMetadataBatch(db *sql.DB, batch []string, metas map[string]*TorrentMeta) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(batch)), ",")
	args := make([]any, len(batch))
	for i, h := range batch {
		args[i] = h
	}

	rows, err := db.Query(fmt.Sprintf(selectMetadata, placeholders), args...)
	if err != nil {
		return fmt.Errorf("querying metadata batch: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			hash  string
			title sql.NullString
			tags  sql.NullString
			ts    sql.NullInt64
			size  sql.NullInt64
		)
		if err := rows.Scan(&hash, &title, &tags, &ts, &size); err != nil {
			return fmt.Errorf("scanning metadata row: %w", err)
		}

		m := &TorrentMeta{
			Title:     title.String,
			Timestamp: ts.Int64,
			Size:      size.Int64,
		}
		if tags.Valid && tags.String != "" {
			m.Tags = strings.Split(tags.String, ",")
		}
		metas[hash] = m
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating metadata rows: %w", err)
	}
	return nil
}
