// Package prompts tallies prompt occurrences across community images and
// ranks them into a top-N report.
package prompts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BAIKEMARK/civitai-prompt-stats/internal/civitai"
)

// NoDataText is emitted when an aggregation pass saw no prompt text at all,
// so consumers can tell "ran but found nothing" from "never ran".
const NoDataText = "no prompt data found"

// Entry is one ranked prompt with its occurrence count.
type Entry struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

// Tally counts exact prompt strings, remembering first-seen order so ties
// rank deterministically.
type Tally struct {
	counts map[string]int
	order  []string
}

// NewTally creates an empty tally.
func NewTally() *Tally {
	return &Tally{counts: make(map[string]int)}
}

// Add counts one occurrence of the given prompt text. Matching is
// exact-string on the whitespace-trimmed text, case-sensitive, with no
// punctuation normalization. Empty text is ignored.
func (t *Tally) Add(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if _, seen := t.counts[text]; !seen {
		t.order = append(t.order, text)
	}
	t.counts[text]++
}

// Len returns the number of distinct prompts seen.
func (t *Tally) Len() int {
	return len(t.counts)
}

// TopN returns up to n entries ordered by count descending; equal counts
// keep first-seen order.
func (t *Tally) TopN(n int) []Entry {
	entries := make([]Entry, 0, len(t.order))
	for _, text := range t.order {
		entries = append(entries, Entry{Text: text, Count: t.counts[text]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// Stats holds the positive and negative tallies of one aggregation pass.
// The two are independent mappings and are never merged.
type Stats struct {
	Positive *Tally
	Negative *Tally
}

// Collect tallies the positive and negative prompts of every post.
func Collect(posts []civitai.ImagePost) *Stats {
	stats := &Stats{Positive: NewTally(), Negative: NewTally()}
	for _, post := range posts {
		if post.Meta == nil {
			continue
		}
		stats.Positive.Add(post.Meta.Prompt)
		stats.Negative.Add(post.Meta.NegativePrompt)
	}
	return stats
}

// Report renders ranked entries one per line as `i : "text" (count)`.
// An empty ranking yields NoDataText rather than an empty string.
func Report(entries []Entry) string {
	if len(entries) == 0 {
		return NoDataText
	}
	lines := make([]string, 0, len(entries))
	for i, e := range entries {
		lines = append(lines, fmt.Sprintf("%d : %q (%d)", i, e.Text, e.Count))
	}
	return strings.Join(lines, "\n")
}
