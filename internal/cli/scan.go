package cli

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"macsweep/internal/fsutil"
	"macsweep/internal/scanner"
	"macsweep/internal/styles"
	"macsweep/internal/types"
)

var scanCmd = &cobra.Command{
	Use:   "scan [target...]",
	Short: "Scan targets and report reclaimable space",
	Long: `Scan enumerates cleanable items without touching anything. With no
arguments every available target is scanned; pass target IDs to limit
the scan.`,
	RunE: runScan,
}

func runScan(_ *cobra.Command, args []string) error {
	level, err := cleanupLevel()
	if err != nil {
		return err
	}

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	targets, err := resolveTargets(app.Registry, args)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		fmt.Println(styles.MutedStyle.Render("No targets available on this system."))
		return nil
	}

	fmt.Printf("%s", styles.MutedStyle.Render("Scanning..."))
	results := scanTargets(targets)
	fmt.Printf("\r%s\r", strings.Repeat(" ", 20))

	est := scanner.EstimateCleanable(results, level.CanDelete)
	deletableByCat := make(map[string]int64, len(est.ByCategory))
	for _, ce := range est.ByCategory {
		deletableByCat[ce.Category.ID] = ce.Bytes
	}

	rows := 0
	var totalSize int64
	var totalItems int

	fmt.Println(styles.TitleStyle.Render("Scan results"))
	fmt.Println(styles.Divider(56))

	// Render in config order so related targets stay grouped.
	for _, cat := range app.Config.Categories {
		result, ok := results[cat.ID]
		if !ok || result == nil {
			continue
		}
		if result.Error != nil {
			fmt.Printf("%s %-32s %s\n",
				styles.DangerStyle.Render("✗"), cat.Name,
				styles.MutedStyle.Render(truncateError(result.Error.Error(), 24)))
			continue
		}
		if len(result.Items) == 0 {
			continue
		}

		note := ""
		if cat.Method == types.MethodManual {
			note = styles.MutedStyle.Render("  manual")
		} else if blocked := result.TotalSize - deletableByCat[cat.ID]; blocked > 0 {
			note = styles.MutedStyle.Render("  " + fsutil.FormatBytes(blocked) + " blocked")
		}

		size := fmt.Sprintf("%10s", fsutil.FormatBytes(result.TotalSize))
		fmt.Printf("%s %-32s %s  %s%s\n",
			styles.LevelDot(cat.Safety), cat.Name,
			styles.SizeStyle.Render(size),
			styles.MutedStyle.Render(fmt.Sprintf("%d items", len(result.Items))),
			note)

		rows++
		totalSize += result.TotalSize
		totalItems += len(result.Items)
	}

	if rows == 0 {
		fmt.Println(styles.MutedStyle.Render("Nothing to clean."))
		return nil
	}

	fmt.Println(styles.Divider(56))
	fmt.Printf("Found: %s (%d items)\n",
		styles.SizeStyle.Render(fsutil.FormatBytes(totalSize)), totalItems)
	fmt.Printf("Deletable at level %s: %s (%d items)\n",
		viper.GetString("level"),
		styles.SizeStyle.Render(fsutil.FormatBytes(est.TotalBytes)), est.TotalItems)
	return nil
}

// resolveTargets maps IDs to registry targets, or returns every
// available target when ids is empty.
func resolveTargets(registry *scanner.Registry, ids []string) ([]scanner.Target, error) {
	if len(ids) == 0 {
		targets := registry.Available()
		sort.Slice(targets, func(i, j int) bool {
			return targets[i].Category().ID < targets[j].Category().ID
		})
		return targets, nil
	}

	targets := make([]scanner.Target, 0, len(ids))
	for _, id := range ids {
		t, ok := registry.Get(id)
		if !ok {
			return nil, fmt.Errorf("unknown target %q (try 'macsweep scan' to list targets)", id)
		}
		if !t.IsAvailable() {
			continue
		}
		targets = append(targets, t)
	}
	return targets, nil
}

// scanTargets scans every target concurrently and collects results by
// category ID. Scan errors land in the result, never abort the batch.
func scanTargets(targets []scanner.Target) map[string]*types.ScanResult {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]*types.ScanResult, len(targets))
	)

	for _, t := range targets {
		wg.Add(1)
		go func(t scanner.Target) {
			defer wg.Done()
			result, err := t.Scan()
			if result == nil {
				result = types.NewScanResult(t.Category())
			}
			if err != nil {
				result.Error = err
			}
			mu.Lock()
			results[t.Category().ID] = result
			mu.Unlock()
		}(t)
	}
	wg.Wait()

	return results
}
