package triggers

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/BAIKEMARK/civitai-prompt-stats/internal/civitai"
)

func writeLora(t *testing.T, metadata map[string]string) string {
	t.Helper()

	header := map[string]any{
		"weight": map[string]any{
			"dtype":        "F16",
			"shape":        []int{2},
			"data_offsets": []int{0, 4},
		},
	}
	if metadata != nil {
		header["__metadata__"] = metadata
	}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		t.Fatalf("failed to marshal header: %v", err)
	}

	buf := make([]byte, 8, 8+len(headerJSON)+4)
	binary.LittleEndian.PutUint64(buf, uint64(len(headerJSON)))
	buf = append(buf, headerJSON...)
	buf = append(buf, 0, 0, 0, 0)

	path := filepath.Join(t.TempDir(), "adapter.safetensors")
	if err := os.WriteFile(path, buf, 0644); err != nil {
		t.Fatalf("failed to write lora file: %v", err)
	}
	return path
}

func TestLocal(t *testing.T) {
	t.Run("flat table sorted by descending frequency", func(t *testing.T) {
		path := writeLora(t, map[string]string{
			"ss_tag_frequency": `{"tagA": 5, "tagB": 2}`,
		})
		words, err := Local(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(words, []string{"tagA", "tagB"}) {
			t.Errorf("got %v, want [tagA tagB]", words)
		}
	})

	t.Run("ties keep source order", func(t *testing.T) {
		path := writeLora(t, map[string]string{
			"ss_tag_frequency": `{"zeta": 3, "alpha": 3, "mid": 7}`,
		})
		words, err := Local(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(words, []string{"mid", "zeta", "alpha"}) {
			t.Errorf("got %v, want [mid zeta alpha]", words)
		}
	})

	t.Run("nested dataset tables are summed", func(t *testing.T) {
		path := writeLora(t, map[string]string{
			"ss_tag_frequency": `{"set1": {"shared": 2, "only1": 4}, "set2": {"shared": 3}}`,
		})
		words, err := Local(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// shared totals 5, only1 has 4.
		if !reflect.DeepEqual(words, []string{"shared", "only1"}) {
			t.Errorf("got %v, want [shared only1]", words)
		}
	})

	t.Run("absent table yields empty, not error", func(t *testing.T) {
		path := writeLora(t, map[string]string{"ss_base_model": "sd15"})
		words, err := Local(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(words) != 0 {
			t.Errorf("expected no words, got %v", words)
		}
	})

	t.Run("absent metadata block yields empty, not error", func(t *testing.T) {
		path := writeLora(t, nil)
		words, err := Local(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(words) != 0 {
			t.Errorf("expected no words, got %v", words)
		}
	})

	t.Run("malformed table is an error", func(t *testing.T) {
		path := writeLora(t, map[string]string{"ss_tag_frequency": `["not", "an", "object"]`})
		if _, err := Local(path); err == nil {
			t.Error("expected error for malformed table")
		}
	})
}

func TestOfficial(t *testing.T) {
	t.Run("dedupes preserving order", func(t *testing.T) {
		version := &civitai.ModelVersion{
			TrainedWords: []string{"style-x", "zephyr", "style-x", " ", "zephyr"},
		}
		words := Official(version)
		if !reflect.DeepEqual(words, []string{"style-x", "zephyr"}) {
			t.Errorf("got %v, want [style-x zephyr]", words)
		}
	})

	t.Run("nil version yields empty", func(t *testing.T) {
		if words := Official(nil); len(words) != 0 {
			t.Errorf("expected no words, got %v", words)
		}
	})
}

func TestFormat(t *testing.T) {
	if got := Format([]string{"a", "b"}, NoLocalText); got != "a, b" {
		t.Errorf("got %q", got)
	}
	if got := Format(nil, NoLocalText); got != NoLocalText {
		t.Errorf("got %q, want local marker", got)
	}
	if got := Format(nil, NoOfficialText); got != NoOfficialText {
		t.Errorf("got %q, want official marker", got)
	}
	if NoLocalText == NoOfficialText {
		t.Error("the two empty markers must be distinguishable")
	}
}
