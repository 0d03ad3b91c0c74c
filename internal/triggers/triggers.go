// Package triggers extracts LoRA trigger words from two independent
// sources: the tag-frequency table embedded in the model file's metadata,
// and the trained-word list published on the registry. The two lists are
// never merged.
package triggers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/BAIKEMARK/civitai-prompt-stats/internal/civitai"
	"github.com/BAIKEMARK/civitai-prompt-stats/internal/modelfile"
)

// Explicit markers so downstream text output can distinguish the two
// empty cases from each other and from "not yet fetched".
const (
	NoLocalText    = "no local triggers found"
	NoOfficialText = "no official triggers found"
)

// tagFrequencyKey is the well-known metadata key written by LoRA trainers.
const tagFrequencyKey = "ss_tag_frequency"

// Local reads the tag-frequency table from the model file's metadata and
// returns tag names sorted by descending frequency, ties in source order.
// A missing metadata block or table yields an empty list, not an error.
func Local(path string) ([]string, error) {
	metadata, err := modelfile.ReadMetadata(path)
	if err != nil {
		return nil, err
	}
	raw, ok := metadata[tagFrequencyKey]
	if !ok || raw == "" {
		return nil, nil
	}

	tags, err := parseTagFrequency([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("malformed tag-frequency table: %w", err)
	}

	sort.SliceStable(tags, func(i, j int) bool {
		return tags[i].count > tags[j].count
	})

	words := make([]string, 0, len(tags))
	for _, tag := range tags {
		words = append(words, tag.name)
	}
	return words, nil
}

// Official returns the registry's trained-word list for a model version,
// de-duplicated in source order. A nil version yields an empty list.
func Official(version *civitai.ModelVersion) []string {
	if version == nil {
		return nil
	}
	seen := make(map[string]bool, len(version.TrainedWords))
	var words []string
	for _, word := range version.TrainedWords {
		word = strings.TrimSpace(word)
		if word == "" || seen[word] {
			continue
		}
		seen[word] = true
		words = append(words, word)
	}
	return words
}

// Format renders a trigger list for text output, substituting the given
// marker when the list is empty.
func Format(words []string, emptyText string) string {
	if len(words) == 0 {
		return emptyText
	}
	return strings.Join(words, ", ")
}

type tagCount struct {
	name  string
	count float64
}

// parseTagFrequency decodes the tag-frequency JSON while preserving key
// order, which encoding/json maps would lose. The table is either flat
// ({"tag": n}) or nested one level per training dataset
// ({"dataset": {"tag": n}}); nested counts are summed per tag.
func parseTagFrequency(data []byte) ([]tagCount, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var tags []tagCount
	index := make(map[string]int)

	add := func(name string, count float64) {
		if i, ok := index[name]; ok {
			tags[i].count += count
			return
		}
		index[name] = len(tags)
		tags = append(tags, tagCount{name: name, count: count})
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key := keyTok.(string)

		valTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch v := valTok.(type) {
		case float64:
			add(key, v)
		case json.Delim:
			if v != '{' {
				return nil, fmt.Errorf("unexpected token %v for %q", v, key)
			}
			for dec.More() {
				innerKeyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				innerKey := innerKeyTok.(string)
				innerValTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				count, ok := innerValTok.(float64)
				if !ok {
					return nil, fmt.Errorf("non-numeric count for %q", innerKey)
				}
				add(innerKey, count)
			}
			if _, err := dec.Token(); err != nil { // closing }
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unexpected value for %q", key)
		}
	}
	return tags, nil
}
