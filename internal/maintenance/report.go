// Package maintenance inspects the on-disk cache: per-kind entry counts
// and the free space left on the volume holding it.
package maintenance

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/BAIKEMARK/civitai-prompt-stats/internal/cachestore"
)

// DiskUsage describes the volume holding the cache directory.
type DiskUsage struct {
	Path        string  `json:"path"`
	TotalBytes  uint64  `json:"total_bytes"`
	FreeBytes   uint64  `json:"free_bytes"`
	UsedPercent float64 `json:"used_percent"`
}

// Report summarizes cache state for the `cache status` command.
type Report struct {
	CacheDir string                               `json:"cache_dir"`
	Kinds    map[cachestore.Kind]cachestore.KindStats `json:"kinds"`
	Disk     *DiskUsage                           `json:"disk,omitempty"`
}

// BuildReport gathers cache statistics and disk usage. Disk usage is
// best-effort: an error there leaves Disk nil rather than failing.
func BuildReport(store *cachestore.Store) *Report {
	report := &Report{
		CacheDir: store.BaseDir(),
		Kinds:    store.Stats(),
	}

	if usage, err := disk.Usage(store.BaseDir()); err == nil {
		report.Disk = &DiskUsage{
			Path:        usage.Path,
			TotalBytes:  usage.Total,
			FreeBytes:   usage.Free,
			UsedPercent: usage.UsedPercent,
		}
	}
	return report
}

// FormatBytes renders a byte count for terminal output.
func FormatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
