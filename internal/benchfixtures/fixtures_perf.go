//go:build perf

// Package benchfixtures builds synthetic directory trees for perf runs.
// Set BENCH_DATA_DIR to reuse trees across runs instead of rebuilding
// them in a fresh temp dir every time.
package benchfixtures

import (
	"fmt"
	"os"
	"path/filepath"
)

// Spec describes one tree to build. Depth counts directory levels.
type Spec struct {
	Name  string
	Depth int
}

// Tree is a built fixture tree.
type Tree struct {
	Name string
	Root string
}

// Prepare builds one tree per spec, reusing trees that already exist.
// The cleanup func removes them only when they live in a temp dir
// created by this run.
func Prepare(envVar, tempPrefix string, specs []Spec, filesPerDir, fanout int) ([]Tree, func(), error) {
	root := os.Getenv(envVar)
	ephemeral := root == ""
	if ephemeral {
		var err error
		root, err = os.MkdirTemp("", tempPrefix)
		if err != nil {
			return nil, func() {}, err
		}
	}

	cleanup := func() {
		if ephemeral {
			_ = os.RemoveAll(root)
		}
	}

	trees := make([]Tree, len(specs))
	for i, spec := range specs {
		dir := filepath.Join(root, spec.Name)
		trees[i] = Tree{Name: spec.Name, Root: dir}

		if _, err := os.Stat(dir); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			cleanup()
			return nil, func() {}, err
		}
		if err := buildTree(dir, spec.Depth, filesPerDir, fanout); err != nil {
			cleanup()
			return nil, func() {}, err
		}
	}

	return trees, cleanup, nil
}

func buildTree(dir string, depth, filesPerDir, fanout int) error {
	payload := make([]byte, 1024)

	var build func(path string, level int) error
	build = func(path string, level int) error {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return err
		}
		for i := 0; i < filesPerDir; i++ {
			name := filepath.Join(path, fmt.Sprintf("f%03d.dat", i))
			if err := os.WriteFile(name, payload, 0o644); err != nil {
				return err
			}
		}
		if level < depth {
			for i := 0; i < fanout; i++ {
				if err := build(filepath.Join(path, fmt.Sprintf("d%d", i)), level+1); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return build(dir, 1)
}
