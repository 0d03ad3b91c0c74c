package nodes

import (
	"time"

	"github.com/BAIKEMARK/civitai-prompt-stats/internal/cachestore"
	"github.com/BAIKEMARK/civitai-prompt-stats/internal/civitai"
	"github.com/BAIKEMARK/civitai-prompt-stats/internal/config"
	"github.com/BAIKEMARK/civitai-prompt-stats/internal/hashing"
	"github.com/BAIKEMARK/civitai-prompt-stats/internal/history"
	"github.com/BAIKEMARK/civitai-prompt-stats/internal/logging"
	"github.com/BAIKEMARK/civitai-prompt-stats/internal/modelfile"
)

// Runtime bundles the shared components every node invocation needs.
type Runtime struct {
	Config   *config.Config
	Store    *cachestore.Store
	Hasher   *hashing.Hasher
	Resolver *modelfile.Resolver
	History  *history.Store
	Log      *logging.Logger
}

// NewRuntime wires a runtime from configuration. The history store is
// optional: a failure to open it is logged, not fatal.
func NewRuntime(cfg *config.Config) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := cachestore.New(cfg.CacheDir)
	if err != nil {
		return nil, err
	}

	log := logging.Default()
	var hist *history.Store
	if cfg.HistoryDB != "" {
		hist, err = history.Open(cfg.HistoryDB)
		if err != nil {
			log.Warnf("fetch history disabled: %v", err)
			hist = nil
		}
	}

	return &Runtime{
		Config:   cfg,
		Store:    store,
		Hasher:   hashing.New(store),
		Resolver: modelfile.NewResolver(cfg.CheckpointDirs, cfg.LoraDirs),
		History:  hist,
		Log:      log,
	}, nil
}

// Close releases runtime resources.
func (rt *Runtime) Close() error {
	if rt.History != nil {
		return rt.History.Close()
	}
	return nil
}

// client builds an API client honoring the invocation's timeout and
// retry parameters.
func (rt *Runtime) client(p Params) *civitai.Client {
	return civitai.New(civitai.Options{
		BaseURL: rt.Config.APIBaseURL,
		APIKey:  rt.Config.APIKey,
		Timeout: p.Timeout(),
		Retries: p.Retries,
	})
}

// recordHistory persists one invocation outcome, best-effort.
func (rt *Runtime) recordHistory(node string, p Params, hash string, res *Result, images int, started time.Time) {
	if rt.History == nil {
		return
	}
	err := rt.History.Record(history.Entry{
		Node:           node,
		Model:          p.FileName,
		Hash:           hash,
		Sort:           string(p.SortMode()),
		PagesRequested: p.MaxPages,
		PagesFetched:   res.PagesFetched,
		PagesFailed:    res.PagesFailed,
		Images:         images,
		CacheHit:       res.CacheHit,
		DurationMs:     time.Since(started).Milliseconds(),
	})
	if err != nil {
		rt.Log.Warnf("failed to record fetch history: %v", err)
	}
}

// Result carries a node's named string outputs plus fetch diagnostics.
type Result struct {
	Values       map[string]string `json:"values"`
	CacheHit     bool              `json:"cache_hit"`
	PagesFetched int               `json:"pages_fetched"`
	PagesFailed  int               `json:"pages_failed"`
}
