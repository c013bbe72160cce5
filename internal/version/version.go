// Package version talks to Homebrew to find and install newer releases.
package version

import (
	"context"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Formula is the Homebrew formula macsweep ships under.
const Formula = "macsweep/tap/macsweep"

// brewTimeout bounds the info invocation; brew can stall on tap fetches.
const brewTimeout = 30 * time.Second

// Result is the outcome of an update check.
type Result struct {
	Current   string
	Latest    string
	Available bool
}

// Check asks Homebrew for the latest released version. Dev builds and
// hosts without brew yield a zero Result without error; only a failed
// brew invocation is an error.
func Check(current string) (Result, error) {
	r := Result{Current: current}
	if current == "" || current == "dev" {
		return r, nil
	}
	if _, err := exec.LookPath("brew"); err != nil {
		return r, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), brewTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "brew", "info", Formula).Output()
	if err != nil {
		return r, err
	}

	r.Latest = parseBrewInfo(string(out))
	r.Available = r.Latest != "" && newer(r.Latest, current)
	return r, nil
}

// Upgrade shells out to brew to install the latest release. No timeout:
// the download can legitimately take minutes and brew shows its own
// progress on the inherited stdout.
func Upgrade() error {
	cmd := exec.Command("brew", "upgrade", Formula)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// stableLine matches the header brew prints for the formula, e.g.
// "==> macsweep/tap/macsweep: stable 1.4.0 (bottled)".
var stableLine = regexp.MustCompile(`macsweep:\s*stable\s+v?(\d+(?:\.\d+)*)`)

func parseBrewInfo(output string) string {
	m := stableLine.FindStringSubmatch(output)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// newer reports whether latest is a strictly higher version than current.
// Missing segments count as zero, so "1.2" equals "1.2.0".
func newer(latest, current string) bool {
	l := strings.Split(strings.TrimPrefix(latest, "v"), ".")
	c := strings.Split(strings.TrimPrefix(current, "v"), ".")

	for i := 0; i < len(l) || i < len(c); i++ {
		var li, ci int
		if i < len(l) {
			li, _ = strconv.Atoi(l[i])
		}
		if i < len(c) {
			ci, _ = strconv.Atoi(c[i])
		}
		if li != ci {
			return li > ci
		}
	}
	return false
}
