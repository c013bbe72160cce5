package safety

import (
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// ProcessFinding identifies a running process that may be holding files
// under a path about to be cleaned. Findings are advisory: they inform
// the user, they never block deletion.
type ProcessFinding struct {
	PID  int32
	Name string
}

// listProcesses is a variable to allow stubbing in tests.
var listProcesses = func() ([]ProcessFinding, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}
	findings := make([]ProcessFinding, 0, len(procs))
	for _, p := range procs {
		name, err := p.Name()
		if err != nil || name == "" {
			continue
		}
		findings = append(findings, ProcessFinding{PID: p.Pid, Name: name})
	}
	return findings, nil
}

// ProcessSnapshot is a point-in-time process listing. Taking one
// snapshot per scan keeps the cost independent of the item count.
type ProcessSnapshot struct {
	procs []ProcessFinding
}

// SnapshotProcesses lists the currently running processes once.
func SnapshotProcesses() (*ProcessSnapshot, error) {
	procs, err := listProcesses()
	if err != nil {
		return nil, err
	}
	return &ProcessSnapshot{procs: procs}, nil
}

// Holding returns processes whose name contains the hint,
// case-insensitively. Hints shorter than 3 characters match nothing;
// they produce too much noise to be useful.
func (s *ProcessSnapshot) Holding(nameHint string) []ProcessFinding {
	if s == nil || len(nameHint) < 3 {
		return nil
	}
	hint := strings.ToLower(nameHint)
	var found []ProcessFinding
	for _, p := range s.procs {
		if strings.Contains(strings.ToLower(p.Name), hint) {
			found = append(found, p)
		}
	}
	return found
}
