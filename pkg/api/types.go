// Package api defines the JSON types exchanged over the node HTTP API.
package api

// NodeInfo describes one invocable node to the host.
type NodeInfo struct {
	Name        string      `json:"name"`
	DisplayName string      `json:"display_name"`
	Category    string      `json:"category"`
	Inputs      []NodeInput `json:"inputs"`
	Outputs     []string    `json:"outputs"`
}

// NodeInput describes one typed node parameter.
type NodeInput struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind"`
	Default any      `json:"default,omitempty"`
	Min     int      `json:"min,omitempty"`
	Max     int      `json:"max,omitempty"`
	Options []string `json:"options,omitempty"`
}

// InvokeRequest carries the scalar parameters of one node invocation.
type InvokeRequest struct {
	FileName     string `json:"file_name"`
	TopN         int    `json:"top_n,omitempty"`
	MaxPages     int    `json:"max_pages,omitempty"`
	Sort         string `json:"sort,omitempty"`
	Timeout      int    `json:"timeout,omitempty"`
	Retries      *int   `json:"retries,omitempty"`
	ForceRefresh bool   `json:"force_refresh,omitempty"`
}

// InvokeResponse carries the node's named string outputs.
type InvokeResponse struct {
	Node         string            `json:"node"`
	Outputs      map[string]string `json:"outputs"`
	CacheHit     bool              `json:"cache_hit"`
	PagesFetched int               `json:"pages_fetched"`
	PagesFailed  int               `json:"pages_failed"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
