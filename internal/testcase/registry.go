package testcase

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed testdata/*.yaml
var embeddedCases embed.FS

// Load returns the built-in scenario definitions plus any external case files
// found in externalDir (optional). External files are YAML documents holding a
// list of test cases; a case whose ID collides with a built-in one replaces it.
func Load(externalDir string) ([]*TestCase, error) {
	byID := make(map[string]*TestCase)
	var order []string

	add := func(cases []*TestCase) {
		for _, tc := range cases {
			if _, seen := byID[tc.ID]; !seen {
				order = append(order, tc.ID)
			}
			byID[tc.ID] = tc
		}
	}

	builtin, err := loadFS(embeddedCases, "testdata")
	if err != nil {
		return nil, fmt.Errorf("failed to load built-in test cases: %w", err)
	}
	add(builtin)

	if externalDir != "" {
		if info, err := os.Stat(externalDir); err == nil && info.IsDir() {
			external, err := loadFS(os.DirFS(externalDir), ".")
			if err != nil {
				return nil, fmt.Errorf("failed to load test cases from %s: %w", externalDir, err)
			}
			add(external)
		}
	}

	cases := make([]*TestCase, 0, len(order))
	for _, id := range order {
		cases = append(cases, byID[id])
	}
	return cases, nil
}

// Get finds a test case by ID in a loaded registry.
func Get(cases []*TestCase, id string) (*TestCase, error) {
	for _, tc := range cases {
		if tc.ID == id {
			return tc, nil
		}
	}
	return nil, fmt.Errorf("test case %q not found", id)
}

func loadFS(fsys fs.FS, dir string) ([]*TestCase, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var cases []*TestCase
	for _, name := range names {
		path := name
		if dir != "." {
			path = filepath.ToSlash(filepath.Join(dir, name))
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}

		var doc struct {
			Cases []*TestCase `yaml:"cases"`
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}

		for _, tc := range doc.Cases {
			if err := tc.Validate(); err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
		}
		cases = append(cases, doc.Cases...)
	}
	return cases, nil
}
