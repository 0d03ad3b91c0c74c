package modelfile

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// writeSafetensors builds a minimal safetensors container with the given
// __metadata__ block.
func writeSafetensors(t *testing.T, path string, metadata map[string]string) {
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
	buf = append(buf, 0, 0, 0, 0) // tensor payload

	if err := os.WriteFile(path, buf, 0644); err != nil {
		t.Fatalf("failed to write safetensors file: %v", err)
	}
}

func TestReadMetadata(t *testing.T) {
	dir := t.TempDir()

	t.Run("metadata block round-trips", func(t *testing.T) {
		path := filepath.Join(dir, "lora.safetensors")
		writeSafetensors(t, path, map[string]string{
			"ss_tag_frequency": `{"tagA": 5, "tagB": 2}`,
			"ss_base_model":    "sd15",
		})

		meta, err := ReadMetadata(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if meta["ss_tag_frequency"] != `{"tagA": 5, "tagB": 2}` {
			t.Errorf("unexpected tag frequency: %q", meta["ss_tag_frequency"])
		}
		if meta["ss_base_model"] != "sd15" {
			t.Errorf("unexpected base model: %q", meta["ss_base_model"])
		}
	})

	t.Run("container without metadata block", func(t *testing.T) {
		path := filepath.Join(dir, "plain.safetensors")
		writeSafetensors(t, path, nil)

		meta, err := ReadMetadata(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if meta != nil {
			t.Errorf("expected nil metadata, got %v", meta)
		}
	})

	t.Run("non-safetensors file is not an error", func(t *testing.T) {
		path := filepath.Join(dir, "legacy.ckpt")
		if err := os.WriteFile(path, []byte("pickle bytes, definitely not a header"), 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		meta, err := ReadMetadata(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if meta != nil {
			t.Errorf("expected nil metadata, got %v", meta)
		}
	})

	t.Run("tiny file is not an error", func(t *testing.T) {
		path := filepath.Join(dir, "stub.safetensors")
		if err := os.WriteFile(path, []byte("abc"), 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if _, err := ReadMetadata(path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("missing file is an error", func(t *testing.T) {
		if _, err := ReadMetadata(filepath.Join(dir, "absent.safetensors")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestResolver(t *testing.T) {
	ckptDir := t.TempDir()
	loraDir := t.TempDir()

	mustWrite := func(dir, name string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}
	mustWrite(ckptDir, "Dreamshaper.safetensors")
	mustWrite(ckptDir, "analog.ckpt")
	mustWrite(ckptDir, "notes.txt")
	mustWrite(loraDir, "style-x.safetensors")

	r := NewResolver([]string{ckptDir}, []string{loraDir})

	t.Run("resolve by exact name", func(t *testing.T) {
		path, err := r.Resolve(Checkpoint, "Dreamshaper.safetensors")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if filepath.Base(path) != "Dreamshaper.safetensors" {
			t.Errorf("unexpected path: %s", path)
		}
	})

	t.Run("resolve without extension", func(t *testing.T) {
		path, err := r.Resolve(Lora, "style-x")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if filepath.Base(path) != "style-x.safetensors" {
			t.Errorf("unexpected path: %s", path)
		}
	})

	t.Run("kinds do not cross over", func(t *testing.T) {
		if _, err := r.Resolve(Lora, "Dreamshaper.safetensors"); err == nil {
			t.Error("checkpoint should not resolve as a lora")
		}
	})

	t.Run("missing name is an error", func(t *testing.T) {
		if _, err := r.Resolve(Checkpoint, "ghost.safetensors"); err == nil {
			t.Error("expected error for unknown file")
		}
	})

	t.Run("list is filtered and case-insensitively sorted", func(t *testing.T) {
		got := r.List(Checkpoint)
		want := []string{"analog.ckpt", "Dreamshaper.safetensors"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})
}
