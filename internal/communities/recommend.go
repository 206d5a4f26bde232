package communities

import (
	"sort"
	"strings"

	"github.com/ppiankov/claimcheck/internal/model"
)

// match weights
const (
	keywordWeight = 3
	nameWeight    = 3
	topicWeight   = 2
	goalWeight    = 1
)

// Recommend returns up to n communities relevant to text (claim and query).
// Entries score on keyword, name, topic and goal overlap; ties go to the
// larger community. NSFW and quarantined entries are never suggested.
func (d Directory) Recommend(text string, n int) []model.Community {
	if n <= 0 || len(d) == 0 {
		return nil
	}

	words := Tokenize(text)
	if len(words) == 0 {
		return nil
	}
	wordSet := make(map[string]struct{}, len(words))
	for _, w := range words {
		wordSet[w] = struct{}{}
	}
	claimTopics, claimGoals := matchCategories(strings.Join(words, " "))

	type scored struct {
		entry Entry
		score int
	}
	var candidates []scored
	for _, e := range d {
		if e.Over18 || e.Quarantine {
			continue
		}
		s := 0
		for _, kw := range e.Keywords {
			if _, ok := wordSet[strings.ToLower(kw)]; ok {
				s += keywordWeight
			}
		}
		name := strings.ToLower(e.Name)
		for w := range wordSet {
			if strings.Contains(name, w) {
				s += nameWeight
			}
		}
		s += topicWeight * overlap(claimTopics, e.PrimaryTopics)
		s += goalWeight * overlap(claimGoals, e.GoodFor)
		if s > 0 {
			candidates = append(candidates, scored{entry: e, score: s})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].entry.Subscribers > candidates[j].entry.Subscribers
	})

	if len(candidates) > n {
		candidates = candidates[:n]
	}
	out := make([]model.Community, len(candidates))
	for i, c := range candidates {
		out[i] = c.entry.Community()
	}
	return out
}

// matchCategories is SuggestCategories without the generic fallbacks, so
// an unrelated claim does not match every "health" community
func matchCategories(text string) (topics, goals []string) {
	for _, rule := range healthTopics {
		if strings.Contains(text, rule.pattern) {
			topics = append(topics, rule.topics...)
			goals = append(goals, rule.goodFor...)
		}
	}
	return firstUnique(topics, len(topics)), firstUnique(goals, len(goals))
}

func overlap(a, b []string) int {
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[strings.ToLower(s)] = struct{}{}
	}
	n := 0
	for _, s := range b {
		if _, ok := set[strings.ToLower(s)]; ok {
			n++
		}
	}
	return n
}
