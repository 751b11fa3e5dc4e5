// Package arcconfig locates the repository's .arcconfig.
package arcconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the name of the Arcanist configuration file.
const FileName = ".arcconfig"

// ErrNotFound indicates no usable .arcconfig exists above the start directory.
var ErrNotFound = errors.New("could not find any directory with `.arcconfig` containing `repository.callsign` in it")

type schema struct {
	Callsign       *string `json:"repository.callsign"`
	PhabricatorURI *string `json:"phabricator.uri"`
}

// ArcConfig is a discovered .arcconfig.
type ArcConfig struct {
	// Location is the directory containing the file; it is treated as the
	// repository root.
	Location       string
	Callsign       string
	PhabricatorURI string
}

// Find walks from start up to the filesystem root and returns the first
// .arcconfig that parses and sets repository.callsign. Files that don't
// parse or lack a callsign are skipped.
func Find(start string) (*ArcConfig, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("could not resolve %s: %w", start, err)
	}

	for {
		path := filepath.Join(dir, FileName)
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			var s schema
			if json.Unmarshal(data, &s) == nil && s.Callsign != nil {
				cfg := &ArcConfig{Location: dir, Callsign: *s.Callsign}
				if s.PhabricatorURI != nil {
					cfg.PhabricatorURI = *s.PhabricatorURI
				}
				return cfg, nil
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("could not open %s: %w", path, err)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, ErrNotFound
		}
		dir = parent
	}
}

// FindFromWorkingDir runs Find from the current working directory.
func FindFromWorkingDir() (*ArcConfig, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("could not obtain the current working directory: %w", err)
	}
	return Find(cwd)
}

// RelativeTo returns path relative to root when path lies under root, and
// path unchanged otherwise. An empty root leaves path unchanged.
func RelativeTo(root, path string) string {
	if root == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
