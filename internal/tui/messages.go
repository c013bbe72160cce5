package tui

import (
	"macsweep/internal/cleaner"
	"macsweep/internal/types"
)

type view int

const (
	viewList view = iota
	viewConfirm
	viewCleaning
	viewReport
)

type (
	scanResultMsg   struct{ result *types.ScanResult }
	progressMsg     struct{ p cleaner.Progress }
	categoryDoneMsg struct{ r cleaner.CategoryResult }
	cleanDoneMsg    struct{ report *types.Report }
)

// scanError keeps a failed category visible after the scan finishes.
type scanError struct {
	category string
	msg      string
}
