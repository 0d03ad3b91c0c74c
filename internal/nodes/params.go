package nodes

import (
	"errors"
	"fmt"
	"time"

	"github.com/BAIKEMARK/civitai-prompt-stats/internal/civitai"
	"github.com/BAIKEMARK/civitai-prompt-stats/internal/config"
)

// Parameter ranges, matching the widget limits the host declares.
const (
	minTopN     = 1
	maxTopN     = 200
	minPages    = 1
	maxPages    = 50
	minTimeout  = 1
	maxTimeout  = 60
	minRetries  = 0
	maxRetries  = 5
)

// Params are the validated scalar inputs of one node invocation.
type Params struct {
	FileName       string `json:"file_name"`
	TopN           int    `json:"top_n"`
	MaxPages       int    `json:"max_pages"`
	Sort           string `json:"sort"`
	TimeoutSeconds int    `json:"timeout"`
	Retries        int    `json:"retries"`
	ForceRefresh   bool   `json:"force_refresh"`

	retriesSet bool
}

// ApplyDefaults fills unset fields from configuration.
func (p *Params) ApplyDefaults(cfg *config.Config) {
	if p.TopN == 0 {
		p.TopN = cfg.TopN
	}
	if p.MaxPages == 0 {
		p.MaxPages = cfg.MaxPages
	}
	if p.Sort == "" {
		p.Sort = cfg.Sort
	}
	if p.TimeoutSeconds == 0 {
		p.TimeoutSeconds = cfg.TimeoutSeconds
	}
	if !p.retriesSet && p.Retries == 0 && cfg.Retries != nil {
		p.Retries = *cfg.Retries
	}
}

// SetRetries sets an explicit retry count, allowing zero.
func (p *Params) SetRetries(retries int) {
	p.Retries = retries
	p.retriesSet = true
}

// ErrInvalidParams marks rejected invocation parameters, so callers can
// tell a bad request from an upstream failure.
var ErrInvalidParams = errors.New("invalid parameters")

// Validate rejects out-of-range values.
func (p *Params) Validate() error {
	if p.FileName == "" {
		return fmt.Errorf("%w: file_name is required", ErrInvalidParams)
	}
	if p.TopN < minTopN || p.TopN > maxTopN {
		return fmt.Errorf("%w: top_n must be between %d and %d", ErrInvalidParams, minTopN, maxTopN)
	}
	if p.MaxPages < minPages || p.MaxPages > maxPages {
		return fmt.Errorf("%w: max_pages must be between %d and %d", ErrInvalidParams, minPages, maxPages)
	}
	if p.TimeoutSeconds < minTimeout || p.TimeoutSeconds > maxTimeout {
		return fmt.Errorf("%w: timeout must be between %d and %d seconds", ErrInvalidParams, minTimeout, maxTimeout)
	}
	if p.Retries < minRetries || p.Retries > maxRetries {
		return fmt.Errorf("%w: retries must be between %d and %d", ErrInvalidParams, minRetries, maxRetries)
	}
	return nil
}

// SortMode returns the validated sort mode, falling back as the host does.
func (p *Params) SortMode() civitai.SortMode {
	return civitai.ParseSort(p.Sort)
}

// Timeout returns the per-request timeout as a duration.
func (p *Params) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}
