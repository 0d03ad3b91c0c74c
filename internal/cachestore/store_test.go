package cachestore

import (
	"os"
	"path/filepath"
	"testing"
)

type testPayload struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

func TestStoreRoundTrip(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	t.Run("put then get returns identical payload", func(t *testing.T) {
		want := testPayload{Text: "masterpiece, 1girl", Count: 3}
		if err := store.Put(KindPrompts, "abc123", want); err != nil {
			t.Fatalf("put failed: %v", err)
		}

		var got testPayload
		if !store.Get(KindPrompts, "abc123", &got) {
			t.Fatal("expected cache hit")
		}
		if got != want {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	t.Run("kinds are independent namespaces", func(t *testing.T) {
		if err := store.Put(KindHash, "samekey", testPayload{Text: "hash"}); err != nil {
			t.Fatalf("put failed: %v", err)
		}
		if err := store.Put(KindTriggers, "samekey", testPayload{Text: "triggers"}); err != nil {
			t.Fatalf("put failed: %v", err)
		}

		var got testPayload
		if !store.Get(KindHash, "samekey", &got) || got.Text != "hash" {
			t.Errorf("hash kind returned %+v", got)
		}
		if !store.Get(KindTriggers, "samekey", &got) || got.Text != "triggers" {
			t.Errorf("triggers kind returned %+v", got)
		}
	})

	t.Run("missing key is a miss", func(t *testing.T) {
		var got testPayload
		if store.Get(KindPrompts, "never-written", &got) {
			t.Error("expected miss for absent key")
		}
	})

	t.Run("overwrite replaces wholesale", func(t *testing.T) {
		if err := store.Put(KindPrompts, "rewrite", testPayload{Text: "old", Count: 1}); err != nil {
			t.Fatalf("put failed: %v", err)
		}
		if err := store.Put(KindPrompts, "rewrite", testPayload{Text: "new", Count: 2}); err != nil {
			t.Fatalf("put failed: %v", err)
		}
		var got testPayload
		if !store.Get(KindPrompts, "rewrite", &got) || got.Text != "new" || got.Count != 2 {
			t.Errorf("got %+v after overwrite", got)
		}
	})
}

func TestStoreCorruptRecordIsMiss(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	if err := store.Put(KindPrompts, "broken", testPayload{Text: "ok"}); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	path := filepath.Join(dir, "prompts", "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("failed to corrupt record: %v", err)
	}

	var got testPayload
	if store.Get(KindPrompts, "broken", &got) {
		t.Error("corrupt record should read as a miss")
	}
	if store.Misses() == 0 {
		t.Error("miss counter should have advanced")
	}
}

func TestStoreClearAndStats(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	for _, key := range []string{"a", "b", "c"} {
		if err := store.Put(KindPrompts, key, testPayload{Text: key}); err != nil {
			t.Fatalf("put failed: %v", err)
		}
	}
	if err := store.Put(KindHash, "h", testPayload{Text: "h"}); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	stats := store.Stats()
	if stats[KindPrompts].Entries != 3 {
		t.Errorf("expected 3 prompt entries, got %d", stats[KindPrompts].Entries)
	}
	if stats[KindPrompts].Bytes == 0 {
		t.Error("expected nonzero byte total")
	}

	removed, err := store.Clear(KindPrompts)
	if err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if removed != 3 {
		t.Errorf("expected 3 removed, got %d", removed)
	}

	// Clearing one kind must not touch another.
	var got testPayload
	if !store.Get(KindHash, "h", &got) {
		t.Error("hash record should survive clearing prompts")
	}
}

func TestSanitizeKey(t *testing.T) {
	cases := map[string]string{
		"abc123":                     "abc123",
		"hash_Most Reactions_3_20":   "hash_Most_Reactions_3_20",
		"../escape":                  ".._escape",
		"name/with\\separators":      "name_with_separators",
	}
	for in, want := range cases {
		if got := sanitizeKey(in); got != want {
			t.Errorf("sanitizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}
