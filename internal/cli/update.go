package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"macsweep/internal/styles"
	"macsweep/internal/version"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update macsweep to the latest Homebrew release",
	Args:  cobra.NoArgs,
	RunE:  runUpdate,
}

func runUpdate(_ *cobra.Command, _ []string) error {
	current := rootCmd.Version
	if current == "" || current == "dev" {
		fmt.Println("Development build; nothing to update.")
		return nil
	}

	fmt.Println("Checking Homebrew for the latest release...")
	res, err := version.Check(current)
	if err != nil {
		return fmt.Errorf("check for update: %w", err)
	}

	if res.Latest == "" {
		fmt.Println("Could not determine the latest version (is Homebrew installed?).")
		fmt.Println("Manual update: brew upgrade " + version.Formula)
		return nil
	}
	if !res.Available {
		fmt.Printf("macsweep %s is up to date.\n", current)
		return nil
	}

	fmt.Printf("Updating %s -> %s ...\n", res.Current, res.Latest)
	if err := version.Upgrade(); err != nil {
		return fmt.Errorf("brew upgrade: %w", err)
	}
	fmt.Println(styles.SuccessStyle.Render("✓") + " Updated to " + res.Latest)
	return nil
}
