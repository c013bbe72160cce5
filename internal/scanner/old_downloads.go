package scanner

import (
	"time"

	"macsweep/internal/fsutil"
	"macsweep/internal/types"
)

const defaultDaysOld = 30

// OldDownloadsTarget scans for files in the Downloads folder older than
// a cutoff. Cleaning moves them to the Trash: downloads are user files,
// so removal stays recoverable.
type OldDownloadsTarget struct {
	*PathTarget
	daysOld int
}

func NewOldDownloadsTarget(cat types.Category, deps Deps, daysOld int) *OldDownloadsTarget {
	return &OldDownloadsTarget{
		PathTarget: NewPathTarget(cat, deps),
		daysOld:    daysOld,
	}
}

// Scan returns only files older than the configured threshold.
func (s *OldDownloadsTarget) Scan() (*types.ScanResult, error) {
	result, err := s.PathTarget.Scan()
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().AddDate(0, 0, -s.daysOld)
	filtered := types.NewScanResult(s.category)
	for _, item := range result.Items {
		if item.ModifiedAt.Before(cutoff) {
			item.DisplayName = item.Name + " (" + fsutil.FormatAge(item.ModifiedAt) + ")"
			filtered.AddItem(item)
		}
	}

	return filtered, nil
}

// Clean moves the selected items to the Trash.
func (s *OldDownloadsTarget) Clean(items []types.CleanableItem) (*types.CleanResult, error) {
	result := types.NewCleanResult(s.category)

	for _, item := range items {
		if err := fsutil.MoveToTrash(item.Path); err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.FreedSpace += item.Size
		result.CleanedItems++
	}

	return result, nil
}
