package patchlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path"
	"path/filepath"

	"site-data-builder/internal/feed"
	"site-data-builder/internal/titles"
)

// FromGit reads a previously committed feed with `git show rev:file`.
// file is a slash-separated path relative to the repository root.
func FromGit(ctx context.Context, rev, file string) ([]titles.Record, error) {
	spec := rev + ":" + path.Clean(filepath.ToSlash(file))
	cmd := exec.CommandContext(ctx, "git", "show", spec)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("patchlog: git show %s: %w (%s)", spec, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return decode(out, spec)
}

// FromFile reads a feed written by an earlier run.
func FromFile(p string) ([]titles.Record, error) {
	var doc titles.Document
	if err := feed.ReadJSON(p, &doc); err != nil {
		return nil, err
	}
	return doc.Items, nil
}

func decode(raw []byte, src string) ([]titles.Record, error) {
	var doc titles.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("patchlog: parse %s: %w", src, err)
	}
	return doc.Items, nil
}
