// Package nodes exposes the fetch/aggregate/cache pipeline as
// host-invocable units: a checkpoint variant and a LoRA variant that adds
// trigger-word outputs.
package nodes

import (
	"errors"
	"fmt"
	"time"

	"github.com/BAIKEMARK/civitai-prompt-stats/internal/cachestore"
	"github.com/BAIKEMARK/civitai-prompt-stats/internal/civitai"
	"github.com/BAIKEMARK/civitai-prompt-stats/internal/modelfile"
	"github.com/BAIKEMARK/civitai-prompt-stats/internal/prompts"
	"github.com/BAIKEMARK/civitai-prompt-stats/internal/triggers"
)

// Node names, as the host discovers them.
const (
	NodeCKPT = "CivitaiPromptStatsCKPT"
	NodeLORA = "CivitaiPromptStatsLORA"
)

// Output names.
const (
	OutPositive         = "positive_prompt"
	OutNegative         = "negative_prompt"
	OutLocalTriggers    = "local_triggers"
	OutOfficialTriggers = "official_triggers"
)

func init() {
	mustRegister(checkpointSpec())
	mustRegister(loraSpec())
}

func mustRegister(spec Spec) {
	if err := Register(spec); err != nil {
		panic(err)
	}
}

func checkpointSpec() Spec {
	return Spec{
		Name:        NodeCKPT,
		DisplayName: "Civitai Prompt Stats (CKPT)",
		Category:    "Civitai",
		Inputs:      commonInputs(),
		Outputs:     []string{OutPositive, OutNegative},
		Run: func(rt *Runtime, p Params) (*Result, error) {
			return runPrompts(rt, p, NodeCKPT, modelfile.Checkpoint)
		},
	}
}

func loraSpec() Spec {
	return Spec{
		Name:        NodeLORA,
		DisplayName: "Civitai Prompt Stats (LORA)",
		Category:    "Civitai",
		Inputs:      commonInputs(),
		Outputs:     []string{OutPositive, OutNegative, OutLocalTriggers, OutOfficialTriggers},
		Run:         runLora,
	}
}

func commonInputs() []Input {
	sortOptions := make([]string, 0, len(civitai.SortModes))
	for _, mode := range civitai.SortModes {
		sortOptions = append(sortOptions, string(mode))
	}
	return []Input{
		{Name: "file_name", Kind: InputFile},
		{Name: "top_n", Kind: InputInt, Default: 20, Min: minTopN, Max: maxTopN},
		{Name: "max_pages", Kind: InputInt, Default: 3, Min: minPages, Max: maxPages},
		{Name: "sort", Kind: InputEnum, Default: string(civitai.SortMostReactions), Options: sortOptions},
		{Name: "timeout", Kind: InputInt, Default: 10, Min: minTimeout, Max: maxTimeout},
		{Name: "retries", Kind: InputInt, Default: 2, Min: minRetries, Max: maxRetries},
		{Name: "force_refresh", Kind: InputBool, Default: false},
	}
}

// promptRecord is the persisted prompt-stats cache payload.
type promptRecord struct {
	PositiveText string    `json:"positive_text"`
	NegativeText string    `json:"negative_text"`
	PagesFetched int       `json:"pages_fetched"`
	PagesFailed  int       `json:"pages_failed"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// triggerRecord is the persisted trigger-word cache payload.
type triggerRecord struct {
	Local     []string  `json:"local"`
	Official  []string  `json:"official"`
	FetchedAt time.Time `json:"fetched_at"`
}

// promptCacheKey includes the query shape so changing sort, pages or top_n
// never serves a record computed for a different shape.
func promptCacheKey(hash string, p Params) string {
	return fmt.Sprintf("%s_%s_%d_%d", hash, p.SortMode(), p.MaxPages, p.TopN)
}

// runPrompts executes the core pipeline:
// resolve -> hash -> cache lookup -> fetch -> aggregate -> cache write.
func runPrompts(rt *Runtime, p Params, node string, kind modelfile.Kind) (*Result, error) {
	started := time.Now()
	p.ApplyDefaults(rt.Config)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	path, err := rt.Resolver.Resolve(kind, p.FileName)
	if err != nil {
		return nil, err
	}
	hash, err := rt.Hasher.FileDigest(path)
	if err != nil {
		return nil, err
	}

	key := promptCacheKey(hash, p)
	var rec promptRecord
	if !p.ForceRefresh && rt.Store.Get(cachestore.KindPrompts, key, &rec) {
		res := &Result{
			Values: map[string]string{
				OutPositive: rec.PositiveText,
				OutNegative: rec.NegativeText,
			},
			CacheHit:     true,
			PagesFetched: rec.PagesFetched,
			PagesFailed:  rec.PagesFailed,
		}
		rt.recordHistory(node, p, hash, res, 0, started)
		return res, nil
	}

	client := rt.client(p)
	version, err := client.VersionByHash(hash)
	if err != nil {
		if errors.Is(err, civitai.ErrNotFound) {
			rt.Log.Warnf("model %s not found on registry (hash %s)", p.FileName, hash)
			res := &Result{Values: map[string]string{
				OutPositive: prompts.NoDataText,
				OutNegative: prompts.NoDataText,
			}}
			rt.recordHistory(node, p, hash, res, 0, started)
			return res, nil
		}
		return nil, err
	}

	pages := client.FetchPages(version.ID, p.MaxPages, p.SortMode())
	stats := prompts.Collect(pages.Posts)

	rec = promptRecord{
		PositiveText: prompts.Report(stats.Positive.TopN(p.TopN)),
		NegativeText: prompts.Report(stats.Negative.TopN(p.TopN)),
		PagesFetched: pages.PagesFetched,
		PagesFailed:  pages.PagesFailed,
		FetchedAt:    time.Now().UTC(),
	}
	if err := rt.Store.Put(cachestore.KindPrompts, key, rec); err != nil {
		rt.Log.Warnf("failed to write prompt-stats cache: %v", err)
	}

	res := &Result{
		Values: map[string]string{
			OutPositive: rec.PositiveText,
			OutNegative: rec.NegativeText,
		},
		PagesFetched: pages.PagesFetched,
		PagesFailed:  pages.PagesFailed,
	}
	rt.recordHistory(node, p, hash, res, len(pages.Posts), started)
	return res, nil
}

// runLora runs the prompt pipeline and adds the two trigger-word outputs,
// independently cached under the triggers kind.
func runLora(rt *Runtime, p Params) (*Result, error) {
	res, err := runPrompts(rt, p, NodeLORA, modelfile.Lora)
	if err != nil {
		return nil, err
	}

	path, err := rt.Resolver.Resolve(modelfile.Lora, p.FileName)
	if err != nil {
		return nil, err
	}
	hash, err := rt.Hasher.FileDigest(path)
	if err != nil {
		return nil, err
	}

	var trec triggerRecord
	if p.ForceRefresh || !rt.Store.Get(cachestore.KindTriggers, hash, &trec) {
		local, err := triggers.Local(path)
		if err != nil {
			rt.Log.Warnf("failed to read local triggers from %s: %v", path, err)
			local = nil
		}

		var official []string
		version, err := rt.client(p).VersionByHash(hash)
		if err != nil {
			if !errors.Is(err, civitai.ErrNotFound) {
				return nil, err
			}
		} else {
			official = triggers.Official(version)
		}

		trec = triggerRecord{Local: local, Official: official, FetchedAt: time.Now().UTC()}
		if err := rt.Store.Put(cachestore.KindTriggers, hash, trec); err != nil {
			rt.Log.Warnf("failed to write trigger cache: %v", err)
		}
	}

	res.Values[OutLocalTriggers] = triggers.Format(trec.Local, triggers.NoLocalText)
	res.Values[OutOfficialTriggers] = triggers.Format(trec.Official, triggers.NoOfficialText)
	return res, nil
}
