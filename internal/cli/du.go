package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"macsweep/internal/fsutil"
	"macsweep/internal/styles"
)

var duCmd = &cobra.Command{
	Use:   "du [path]",
	Short: "Show disk usage for a volume",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDu,
}

func runDu(_ *cobra.Command, args []string) error {
	path := "/"
	if len(args) == 1 {
		path = args[0]
	}

	usage, err := fsutil.GetDiskUsage(path)
	if err != nil {
		return fmt.Errorf("disk usage for %s: %w", path, err)
	}

	used := usage.UsedBytes()
	percent := 0.0
	if usage.TotalBytes > 0 {
		percent = float64(used) / float64(usage.TotalBytes) * 100
	}

	fmt.Printf("%s %s\n", styles.TitleStyle.Render("Disk usage"), styles.MutedStyle.Render(path))
	fmt.Printf("%s %.1f%%\n", usageBar(percent, 30), percent)
	fmt.Printf("Total: %s  Used: %s  Free: %s\n",
		fsutil.FormatBytes(usage.TotalBytes),
		fsutil.FormatBytes(used),
		styles.SuccessStyle.Render(fsutil.FormatBytes(usage.FreeBytes)))
	return nil
}

// usageBar renders a fixed-width fill bar colored by pressure.
func usageBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	style := styles.SuccessStyle
	switch {
	case percent >= 90:
		style = styles.DangerStyle
	case percent >= 75:
		style = styles.WarningStyle
	}

	return "[" + style.Render(strings.Repeat("=", filled)) + strings.Repeat(" ", width-filled) + "]"
}
