package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"macsweep/internal/cleaner"
	"macsweep/internal/fsutil"
	"macsweep/internal/logger"
	"macsweep/internal/styles"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [target|path...]",
	Short: "Delete cleanable items, up to the cleanup level",
	Long: `Clean removes what the scan found, holding back anything classified
above the cleanup level. Danger paths are never deleted at any level.

Arguments are either target IDs (see 'macsweep scan') or filesystem
paths. Paths are swept directly: the root is classified first and each
child is re-checked before removal. With no arguments the selection
saved by the interactive mode is reused.`,
	RunE: runClean,
}

func runClean(_ *cobra.Command, args []string) error {
	level, err := cleanupLevel()
	if err != nil {
		return err
	}

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	paths, ids, err := splitArgs(args)
	if err != nil {
		return err
	}
	if len(paths) > 0 {
		return cleanPaths(app, paths, level)
	}
	return cleanTargets(app, ids, level)
}

// splitArgs separates filesystem paths from target IDs. Mixing both in
// one invocation is rejected; the two modes confirm differently.
func splitArgs(args []string) (paths, ids []string, err error) {
	for _, arg := range args {
		if strings.ContainsRune(arg, '/') || strings.HasPrefix(arg, "~") || strings.HasPrefix(arg, ".") {
			paths = append(paths, arg)
		} else {
			ids = append(ids, arg)
		}
	}
	if len(paths) > 0 && len(ids) > 0 {
		return nil, nil, errors.New("cannot mix target IDs and filesystem paths in one invocation")
	}
	return paths, ids, nil
}

// cleanPaths sweeps filesystem paths directly through the executor.
func cleanPaths(app *App, paths []string, level cleaner.CleanupLevel) error {
	cfg := cleaner.Config{Level: level, DryRun: viper.GetBool("dry-run")}

	if !cfg.DryRun && !viper.GetBool("yes") {
		fmt.Printf("Delete %d path(s) at level %s? [y/N]: ", len(paths), level)
		if !confirm() {
			fmt.Println(styles.MutedStyle.Render("Cancelled."))
			return nil
		}
	}

	exec := cleaner.NewExecutor(app.Validator, cleaner.WithJournal(app.Journal))

	verb := "freed"
	if cfg.DryRun {
		verb = "would free"
	}

	failures := 0
	for _, p := range paths {
		result, err := exec.Clean(p, cfg)
		if err != nil {
			failures++
			fmt.Printf("%s %s\n    %s\n", styles.DangerStyle.Render("✗"), p,
				styles.MutedStyle.Render(err.Error()))
			continue
		}

		mark := styles.SuccessStyle.Render("✓")
		if !result.OK() {
			mark = styles.WarningStyle.Render("△")
		}
		fmt.Printf("%s %s  %s %s (%d files, %d dirs)\n", mark, result.Path, verb,
			styles.SizeStyle.Render(fsutil.FormatBytes(result.FreedBytes)),
			result.FilesRemoved, result.DirsRemoved)

		const maxShown = 5
		for i, ce := range result.Errors {
			if i == maxShown {
				fmt.Println(styles.MutedStyle.Render(
					fmt.Sprintf("    ... and %d more", len(result.Errors)-maxShown)))
				break
			}
			fmt.Println(styles.MutedStyle.Render("    - " + truncateError(ce.Error(), 70)))
		}
	}

	if failures == len(paths) {
		return errors.New("no paths were cleaned")
	}
	return nil
}

// cleanTargets scans the selected targets and hands the results to the
// clean service.
func cleanTargets(app *App, ids []string, level cleaner.CleanupLevel) error {
	explicit := len(ids) > 0
	if !explicit {
		if !app.User.HasLastSelection() {
			return errors.New("no targets given and no saved selection; pass target IDs or run the interactive mode once")
		}
		ids = app.User.GetLastSelection()
	}

	targets, err := resolveTargets(app.Registry, ids)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		fmt.Println(styles.MutedStyle.Render("No selected targets are available on this system."))
		return nil
	}

	fmt.Printf("%s", styles.MutedStyle.Render("Scanning..."))
	results := scanTargets(targets)
	fmt.Printf("\r%s\r", strings.Repeat(" ", 20))

	selected := make(map[string]bool, len(targets))
	for _, t := range targets {
		selected[t.Category().ID] = true
	}
	jobs := app.Service.PrepareJobs(results, selected, app.ExcludedSets())
	if len(jobs) == 0 {
		fmt.Println(styles.MutedStyle.Render("Nothing to clean."))
		return nil
	}

	dryRun := viper.GetBool("dry-run")

	var deletableSize int64
	var deletable, blocked int

	fmt.Println(styles.TitleStyle.Render("Preview"))
	fmt.Println(styles.Divider(56))
	for _, job := range jobs {
		var jobSize int64
		var jobBlocked int
		for _, item := range job.Items {
			if level.CanDelete(item.Level) {
				jobSize += item.Size
				deletable++
			} else {
				jobBlocked++
			}
		}

		note := ""
		if jobBlocked > 0 {
			note = styles.MutedStyle.Render(fmt.Sprintf("  %d blocked", jobBlocked))
		}
		fmt.Printf("%s %-32s %s%s\n",
			styles.LevelDot(job.Category.Safety), job.Category.Name,
			styles.SizeStyle.Render(fmt.Sprintf("%10s", fsutil.FormatBytes(jobSize))), note)

		deletableSize += jobSize
		blocked += jobBlocked
	}
	fmt.Println(styles.Divider(56))

	fmt.Printf("Deletable: %s (%d items)\n",
		styles.SizeStyle.Render(fsutil.FormatBytes(deletableSize)), deletable)
	if blocked > 0 {
		fmt.Println(styles.MutedStyle.Render(
			fmt.Sprintf("%d items stay blocked at level %s.", blocked, level)))
	}
	fmt.Println()

	if deletable == 0 && !dryRun {
		fmt.Println(styles.MutedStyle.Render("Nothing deletable at this level."))
		return nil
	}

	if !dryRun && !viper.GetBool("yes") {
		fmt.Printf("Proceed? [y/N]: ")
		if !confirm() {
			fmt.Println(styles.MutedStyle.Render("Cancelled."))
			return nil
		}
	}

	total := 0
	for _, job := range jobs {
		total += len(job.Items)
	}
	bar := newCleanBar(total, dryRun)

	// Service.Clean runs jobs on the calling goroutine, so the slice
	// needs no locking.
	var categoryResults []cleaner.CategoryResult
	report := app.Service.Clean(jobs, cleaner.Config{Level: level, DryRun: dryRun}, cleaner.Callbacks{
		OnProgress: func(p cleaner.Progress) {
			bar.Describe(fmt.Sprintf("[cyan]%s[reset]", truncateText(p.CategoryName, 24)))
		},
		OnItemDone: func(cleaner.ItemResult) {
			_ = bar.Add(1)
		},
		OnCategoryDone: func(r cleaner.CategoryResult) {
			categoryResults = append(categoryResults, r)
		},
	})
	_ = bar.Finish()
	fmt.Println()

	for _, r := range categoryResults {
		size := fmt.Sprintf("%10s", fsutil.FormatBytes(r.FreedSpace))
		switch {
		case r.ErrorCount == 0:
			fmt.Printf("%s %-32s %s\n", styles.SuccessStyle.Render("✓"), r.CategoryName,
				styles.SizeStyle.Render(size))
		case r.CleanedItems > 0:
			fmt.Printf("%s %-32s %s\n", styles.WarningStyle.Render("△"), r.CategoryName,
				styles.SizeStyle.Render(size))
		default:
			fmt.Printf("%s %-32s %s\n", styles.DangerStyle.Render("✗"), r.CategoryName,
				styles.MutedStyle.Render("failed"))
		}
	}
	fmt.Println()
	fmt.Println(FormatReport(report, dryRun))

	if explicit && !dryRun {
		app.User.SetLastSelection(ids)
		if err := app.User.Save(); err != nil {
			logger.Warn("save selection failed", "error", err)
		}
	}
	return nil
}

func newCleanBar(total int, dryRun bool) *progressbar.ProgressBar {
	desc := "[cyan]Cleaning...[reset]"
	if dryRun {
		desc = "[cyan]Dry run...[reset]"
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
}

// confirm reads one line from stdin and accepts y/yes.
func confirm() bool {
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}
