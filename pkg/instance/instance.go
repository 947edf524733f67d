package instance

import (
	"github.com/mitchellh/go-ps"
	"os"
	"path/filepath"
	"strings"
)

// Lister returns a snapshot of the process table.
type Lister func() ([]ps.Process, error)

// Others returns the pids of processes running executable, other than pid.
// Names are compared case-insensitively without a ".exe" suffix.
func Others(list Lister, pid int, executable string) ([]int, error) {
	procs, err := list()
	if err != nil {
		return nil, err
	}

	want := normalize(executable)

	var pids []int
	for _, proc := range procs {
		if proc.Pid() == pid {
			continue
		}
		if normalize(proc.Executable()) == want {
			pids = append(pids, proc.Pid())
		}
	}
	return pids, nil
}

// OtherInstances looks for other running copies of the current executable.
func OtherInstances() ([]int, error) {
	self, err := os.Executable()
	if err != nil {
		return nil, err
	}
	return Others(ps.Processes, os.Getpid(), filepath.Base(self))
}

func normalize(name string) string {
	return strings.TrimSuffix(strings.ToLower(name), ".exe")
}
