// Package refresh re-runs configured node invocations on a cron schedule
// so cached prompt statistics stay warm without manual force-refreshes.
package refresh

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/BAIKEMARK/civitai-prompt-stats/internal/config"
	"github.com/BAIKEMARK/civitai-prompt-stats/internal/logging"
	"github.com/BAIKEMARK/civitai-prompt-stats/internal/nodes"
)

// Refresher periodically force-refreshes the configured targets.
type Refresher struct {
	cron     *cron.Cron
	rt       *nodes.Runtime
	schedule string
	targets  []config.RefreshTarget
	log      *logging.Logger
}

// New creates a refresher for the runtime's configured schedule and targets.
func New(rt *nodes.Runtime) *Refresher {
	return &Refresher{
		cron:     cron.New(),
		rt:       rt,
		schedule: rt.Config.RefreshSchedule,
		targets:  rt.Config.RefreshTargets,
		log:      logging.Default(),
	}
}

// Start validates targets and begins the schedule. With no targets it is
// a no-op so `serve --refresh` stays safe on a default config.
func (r *Refresher) Start() error {
	if len(r.targets) == 0 {
		r.log.Info("no refresh targets configured")
		return nil
	}
	for _, target := range r.targets {
		if _, ok := nodes.Lookup(target.Node); !ok {
			return fmt.Errorf("refresh target references unknown node: %s", target.Node)
		}
		if target.File == "" {
			return fmt.Errorf("refresh target for %s has no file", target.Node)
		}
	}

	if _, err := r.cron.AddFunc(r.schedule, r.runAll); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", r.schedule, err)
	}
	r.cron.Start()
	r.log.Infof("refreshing %d target(s) on schedule %q", len(r.targets), r.schedule)
	return nil
}

// Stop halts the schedule, waiting for a running pass to finish.
func (r *Refresher) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

// RunAll force-refreshes every target once, sequentially.
func (r *Refresher) RunAll() {
	r.runAll()
}

func (r *Refresher) runAll() {
	for _, target := range r.targets {
		spec, ok := nodes.Lookup(target.Node)
		if !ok {
			r.log.Warnf("skipping unknown node %s", target.Node)
			continue
		}
		params := nodes.Params{FileName: target.File, ForceRefresh: true}
		result, err := spec.Run(r.rt, params)
		if err != nil {
			r.log.Warnf("refresh of %s (%s) failed: %v", target.File, target.Node, err)
			continue
		}
		r.log.Infof("refreshed %s (%s): %d page(s) fetched, %d failed",
			target.File, target.Node, result.PagesFetched, result.PagesFailed)
	}
}
