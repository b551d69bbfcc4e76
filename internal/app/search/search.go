// Package search builds an in-memory fuzzy index over a library snapshot and
// answers combined track and album queries.
package search

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/osa030/wavedeck/internal/domain/library"
)

// Result is a combined query answer. Albums contain direct name matches
// first, followed by the albums of matched tracks.
type Result struct {
	Tracks []library.Track `json:"tracks"`
	Albums []library.Album `json:"albums"`
}

type trackEntry struct {
	track library.Track
	// haystack is the track title with its album name appended so a query
	// matching either still hits the track.
	haystack string
}

type trackSource []trackEntry

func (s trackSource) String(i int) string { return s[i].haystack }
func (s trackSource) Len() int            { return len(s) }

type albumEntry struct {
	album library.Album
}

type albumSource []albumEntry

func (s albumSource) String(i int) string { return s[i].album.Name }
func (s albumSource) Len() int            { return len(s) }

// Index is an immutable search index over one snapshot. Build a new one when
// the snapshot is replaced.
type Index struct {
	snapshot *library.Snapshot
	tracks   trackSource
	albums   albumSource
}

// NewIndex builds the index. Entries are sorted by ID so ties in match score
// resolve deterministically.
func NewIndex(snapshot *library.Snapshot) *Index {
	idx := &Index{snapshot: snapshot}

	idx.tracks = make(trackSource, 0, len(snapshot.Tracks))
	for _, t := range snapshot.Tracks {
		haystack := t.Title
		if name := snapshot.AlbumName(t.AlbumID); name != library.UnknownAlbumName {
			haystack += " " + name
		}
		idx.tracks = append(idx.tracks, trackEntry{track: t, haystack: haystack})
	}
	sort.Slice(idx.tracks, func(i, j int) bool {
		return idx.tracks[i].track.ID < idx.tracks[j].track.ID
	})

	idx.albums = make(albumSource, 0, len(snapshot.Albums))
	for _, a := range snapshot.Albums {
		idx.albums = append(idx.albums, albumEntry{album: a})
	}
	sort.Slice(idx.albums, func(i, j int) bool {
		return idx.albums[i].album.ID < idx.albums[j].album.ID
	})

	return idx
}

// Query runs a fuzzy search. An empty or whitespace-only query returns an
// empty result. A limit of zero or less means unlimited.
func (idx *Index) Query(q string, limit int) Result {
	result := Result{Tracks: []library.Track{}, Albums: []library.Album{}}

	q = strings.TrimSpace(q)
	if q == "" {
		return result
	}

	for _, m := range fuzzy.FindFrom(q, idx.tracks) {
		result.Tracks = append(result.Tracks, idx.tracks[m.Index].track)
		if limit > 0 && len(result.Tracks) >= limit {
			break
		}
	}

	seen := make(map[string]bool)
	for _, m := range fuzzy.FindFrom(q, idx.albums) {
		a := idx.albums[m.Index].album
		result.Albums = append(result.Albums, a)
		seen[a.ID] = true
	}

	// Albums reached only through their tracks rank after direct matches.
	for _, t := range result.Tracks {
		if t.AlbumID == "" || seen[t.AlbumID] {
			continue
		}
		a, err := idx.snapshot.Album(t.AlbumID)
		if err != nil {
			continue
		}
		result.Albums = append(result.Albums, a)
		seen[a.ID] = true
	}

	if limit > 0 && len(result.Albums) > limit {
		result.Albums = result.Albums[:limit]
	}
	return result
}
