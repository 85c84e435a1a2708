// Package config loads .swd.conf, a bespoke line-oriented directive
// grammar (SPEC_FULL.md §2, §6), matching original_source/src/config.cc's
// search algorithm and directive set exactly. No ecosystem config/
// serialization library in the retrieval pack parses this grammar (it is
// neither TOML, YAML, nor JSON), so this stays on bufio.Scanner over an
// afero.Fs — justified in DESIGN.md. Field-by-field validation, not a
// generic decoder, follows the teacher's
// internal/projectintegration/engine/config/config.go style.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// ErrNotFound is returned when no .swd.conf exists in startDir or any of
// its ancestors.
var ErrNotFound = errors.New(".swd.conf not found")

// ErrInvalid wraps any malformed directive or missing required setting.
var ErrInvalid = errors.New("invalid .swd.conf")

// Config holds the parsed and defaulted settings of one .swd.conf
// (spec §6's directive table).
type Config struct {
	BashBin     string
	HashBin     string
	HashsumSize int
	CacheDir    string
	Root        string
	AddPaths    []string
	Env         map[string]string
}

func defaults() *Config {
	return &Config{
		BashBin:     "/bin/bash",
		HashBin:     "/usr/bin/sha256sum",
		HashsumSize: 64,
		Env:         map[string]string{},
	}
}

// Load walks up from startDir looking for .swd.conf, parses the first one
// found, and returns the resulting Config along with the directory it was
// found in (the process's new working directory, per spec §6).
func Load(fsys afero.Fs, startDir string) (*Config, string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, "", fmt.Errorf("%w: resolving %s: %v", ErrInvalid, startDir, err)
	}

	for {
		candidate := filepath.Join(dir, ".swd.conf")

		if ok, statErr := afero.Exists(fsys, candidate); statErr == nil && ok {
			cfg, err := parseFile(fsys, candidate, dir)
			if err != nil {
				return nil, "", err
			}
			return cfg, dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, "", ErrNotFound
		}
		dir = parent
	}
}

func parseFile(fsys afero.Fs, path, basePath string) (*Config, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrInvalid, path, err)
	}
	defer f.Close()

	cfg := defaults()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if err := applyDirective(cfg, line, basePath); err != nil {
			return nil, fmt.Errorf("%w: %s:%d: %v", ErrInvalid, path, lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrInvalid, path, err)
	}

	if cfg.Root == "" {
		return nil, fmt.Errorf("%w: missing required \"root\" directive", ErrInvalid)
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = filepath.Join(basePath, ".swd-cache")
	}

	return cfg, nil
}

func applyDirective(cfg *Config, line, basePath string) error {
	fields := strings.SplitN(line, " ", 2)
	directive := fields[0]

	var rest string
	if len(fields) > 1 {
		rest = strings.TrimSpace(fields[1])
	}

	switch directive {
	case "add_path":
		if rest == "" {
			return fmt.Errorf("add_path requires a path argument")
		}
		cfg.AddPaths = append(cfg.AddPaths, filepath.Join(basePath, rest))

	case "env":
		parts := strings.SplitN(rest, " ", 2)
		if len(parts) < 1 || parts[0] == "" {
			return fmt.Errorf("env requires a variable name")
		}
		value := ""
		if len(parts) == 2 {
			value = parts[1]
		}
		cfg.Env[parts[0]] = value

	case "bash_bin":
		if rest == "" {
			return fmt.Errorf("bash_bin requires a path argument")
		}
		cfg.BashBin = rest

	case "hash_bin":
		if rest == "" {
			return fmt.Errorf("hash_bin requires a path argument")
		}
		cfg.HashBin = rest

	case "hashsum_size":
		n, err := strconv.Atoi(rest)
		if err != nil || n <= 0 {
			return fmt.Errorf("hashsum_size requires a positive integer")
		}
		cfg.HashsumSize = n

	case "cache_dir":
		if rest == "" {
			return fmt.Errorf("cache_dir requires a path argument")
		}
		cfg.CacheDir = filepath.Join(basePath, rest)

	case "root":
		if rest == "" {
			return fmt.Errorf("root requires a path argument")
		}
		cfg.Root = filepath.Join(basePath, rest)

	default:
		return fmt.Errorf("unrecognized directive %q", directive)
	}

	return nil
}
