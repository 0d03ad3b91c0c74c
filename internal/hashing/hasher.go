// Package hashing computes stable SHA-256 digests for model files.
// Digests are cached keyed by (path, mtime, size) so multi-gigabyte files
// are only rehashed when they change.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BAIKEMARK/civitai-prompt-stats/internal/cachestore"
	"github.com/BAIKEMARK/civitai-prompt-stats/internal/logging"
)

// digestRecord is the persisted cache entry for one file path.
type digestRecord struct {
	Digest  string `json:"digest"`
	Size    int64  `json:"size"`
	ModTime int64  `json:"mod_time"`
}

// Hasher computes and caches file digests.
type Hasher struct {
	store *cachestore.Store
	log   *logging.Logger
}

// New creates a Hasher backed by the given cache store.
func New(store *cachestore.Store) *Hasher {
	return &Hasher{store: store, log: logging.Default()}
}

// FileDigest returns the SHA-256 hex digest of the file at path.
// An unreadable file is a hard error.
func (h *Hasher) FileDigest(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("model file not accessible: %w", err)
	}

	key := pathKey(abs)
	var rec digestRecord
	if h.store.Get(cachestore.KindHash, key, &rec) {
		if rec.Size == info.Size() && rec.ModTime == info.ModTime().UnixNano() && rec.Digest != "" {
			return rec.Digest, nil
		}
	}

	h.log.Debugf("hashing %s (%d bytes)", abs, info.Size())
	digest, err := digestFile(abs)
	if err != nil {
		return "", err
	}

	rec = digestRecord{
		Digest:  digest,
		Size:    info.Size(),
		ModTime: info.ModTime().UnixNano(),
	}
	if err := h.store.Put(cachestore.KindHash, key, rec); err != nil {
		h.log.Warnf("failed to cache digest for %s: %v", abs, err)
	}
	return digest, nil
}

// digestFile streams the file through SHA-256.
func digestFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open model file: %w", err)
	}
	defer file.Close()

	hasher := sha256.New()
	buf := make([]byte, 1024*1024)
	for {
		n, err := file.Read(buf)
		if n > 0 {
			hasher.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read model file: %w", err)
		}
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// pathKey turns an absolute path into a filename-safe cache key.
func pathKey(abs string) string {
	sum := sha256.Sum256([]byte(abs))
	return hex.EncodeToString(sum[:])
}
