package ranking

import (
	"sort"
	"strings"
	"time"
)

// Limits used when mining a viewer's history and when scoring.
const (
	PreferredHashtagsLimit = 10
	InteractionUsersLimit  = 20

	scoringHashtags = 5
	scoringUsers    = 10

	hashtagAffinity = 5
	authorAffinity  = 3
)

// Interaction is one appreciation or comment the viewer left on a highlight
// by AuthorID. Events are expected in chronological order.
type Interaction struct {
	AuthorID uint
}

// Preferences is what discovery knows about a viewer.
type Preferences struct {
	Hashtags []string
	Users    []uint
}

// Empty reports whether there is no signal, in which case ranking is by
// recency alone.
func (p Preferences) Empty() bool {
	return len(p.Hashtags) == 0 && len(p.Users) == 0
}

// PreferredHashtags ranks the tags found on highlights the viewer
// appreciated by frequency, ties in first-seen order.
func PreferredHashtags(appreciated [][]string, limit int) []string {
	counts := CountHashtags(appreciated, limit)
	tags := make([]string, 0, len(counts))
	for _, c := range counts {
		tags = append(tags, c.Tag)
	}
	return tags
}

// InteractionUsers ranks authors by how often the viewer interacted with
// them, ties in first-seen order.
func InteractionUsers(events []Interaction, limit int) []uint {
	index := make(map[uint]int)
	type authorCount struct {
		id    uint
		count int
	}
	var counts []authorCount
	for _, e := range events {
		if e.AuthorID == 0 {
			continue
		}
		if i, ok := index[e.AuthorID]; ok {
			counts[i].count++
			continue
		}
		index[e.AuthorID] = len(counts)
		counts = append(counts, authorCount{id: e.AuthorID, count: 1})
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].count > counts[j].count
	})
	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	ids := make([]uint, 0, len(counts))
	for _, c := range counts {
		ids = append(ids, c.id)
	}
	return ids
}

// Score is the discovery affinity of s for a viewer with prefs: 5 when it
// carries one of the top five preferred tags, plus 3 when its author is one
// of the top ten interaction users.
func Score(s HighlightSnapshot, prefs Preferences) int {
	score := 0
	if hasAny(s.Hashtags, head(prefs.Hashtags, scoringHashtags)) {
		score += hashtagAffinity
	}
	for _, id := range headIDs(prefs.Users, scoringUsers) {
		if id == s.AuthorID {
			score += authorAffinity
			break
		}
	}
	return score
}

// Rank drops candidates that are not visible at now and orders the rest by
// affinity score, newest first within a score, then by id.
func Rank(candidates []HighlightSnapshot, prefs Preferences, now time.Time) []HighlightSnapshot {
	type scored struct {
		snap  HighlightSnapshot
		score int
	}
	items := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		if !c.Visible(now) {
			continue
		}
		items = append(items, scored{snap: c, score: Score(c, prefs)})
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if !a.snap.CreatedAt.Equal(b.snap.CreatedAt) {
			return a.snap.CreatedAt.After(b.snap.CreatedAt)
		}
		return a.snap.ID > b.snap.ID
	})
	out := make([]HighlightSnapshot, len(items))
	for i, it := range items {
		out[i] = it.snap
	}
	return out
}

func hasAny(tags, wanted []string) bool {
	if len(wanted) == 0 {
		return false
	}
	for _, t := range tags {
		t = strings.ToLower(t)
		for _, w := range wanted {
			if t == strings.ToLower(w) {
				return true
			}
		}
	}
	return false
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func headIDs(s []uint, n int) []uint {
	if len(s) > n {
		return s[:n]
	}
	return s
}
