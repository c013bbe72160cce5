package scanner

import (
	"sort"

	"macsweep/internal/safety"
	"macsweep/internal/types"
)

// Estimate summarizes how much space a cleanup could reclaim.
type Estimate struct {
	TotalBytes int64
	TotalItems int
	ByCategory []CategoryEstimate
}

// CategoryEstimate is the per-category slice of an Estimate.
type CategoryEstimate struct {
	Category types.Category
	Bytes    int64
	Items    int
}

// EstimateCleanable totals the scanned items a policy would allow
// deleting. Manual categories never count; the tool does not delete
// them. The policy arrives as a predicate so this package stays
// independent of the cleaner.
func EstimateCleanable(results map[string]*types.ScanResult, canDelete func(safety.Level) bool) Estimate {
	var est Estimate

	for _, result := range results {
		if result == nil || len(result.Items) == 0 {
			continue
		}
		if result.Category.Method == types.MethodManual {
			continue
		}

		var ce CategoryEstimate
		ce.Category = result.Category
		for _, item := range result.Items {
			if canDelete != nil && !canDelete(item.Level) {
				continue
			}
			ce.Bytes += item.Size
			ce.Items++
		}
		if ce.Items == 0 {
			continue
		}

		est.ByCategory = append(est.ByCategory, ce)
		est.TotalBytes += ce.Bytes
		est.TotalItems += ce.Items
	}

	sort.Slice(est.ByCategory, func(i, j int) bool {
		return est.ByCategory[i].Bytes > est.ByCategory[j].Bytes
	})

	return est
}
