// Package ingest discovers contract documents on the local filesystem: one-shot
// directory scans for batch runs and an fsnotify watcher for inbox folders.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/contract-extractor/constants"
)

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned uint32
	Matched uint32
	Skipped uint32
	Failed  uint32
}

// ScanResult is one matched file, or a path the walk could not read.
type ScanResult struct {
	Path string
	Err  string
}

// ScanDirectory walks root and returns the documents with an allowed extension, sorted by
// path. Hidden files and directories are skipped when skipHidden is set. Unreadable entries
// are reported in the results with Err set and the walk continues.
func ScanDirectory(ctx context.Context, root string, skipHidden bool) ([]ScanResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root_path is required")
	}
	st, err := os.Stat(root)
	if err != nil {
		return nil, DirStats{}, err
	}
	if !st.IsDir() {
		return nil, DirStats{}, fmt.Errorf("%s is not a directory", root)
	}

	var results []ScanResult
	var stats DirStats

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, ScanResult{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			stats.Skipped++
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !AllowedExt(filepath.Ext(path)) {
			stats.Skipped++
			return nil
		}
		stats.Matched++
		results = append(results, ScanResult{Path: path})
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results, stats, nil
}

// HashFile returns the SHA-256 of the file contents.
func HashFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("hash %s: %w", path, err)
	}
	return h.Sum(nil), nil
}

// HashHex is HashFile in lowercase hex.
func HashHex(path string) (string, error) {
	sum, err := HashFile(path)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sum), nil
}

// AllowedExt reports whether ext (with or without the dot, any case) is a supported document type.
func AllowedExt(ext string) bool {
	_, ok := constants.AllowedExtensions[constants.NormalizeExt(ext)]
	return ok
}

// IsHidden reports whether the last path element starts with a dot.
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
