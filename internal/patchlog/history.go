package patchlog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"site-data-builder/internal/feed"
)

// RunMeta identifies the CI run that produced a history entry.
type RunMeta struct {
	RunID    string `json:"runId"`
	SHA      string `json:"sha"`
	Actor    string `json:"actor"`
	Workflow string `json:"workflow"`
}

// Entry is one run in the append-only history, newest first.
type Entry struct {
	ID   string `json:"id"`
	TS   string `json:"ts"`
	Kind string `json:"kind"`
	RunMeta
	Latest json.RawMessage `json:"latest"`
}

// History is the on-disk history document.
type History struct {
	Entries []json.RawMessage `json:"entries"`
}

// MetaFromEnv reads GITHUB_RUN_ID, GITHUB_SHA, GITHUB_ACTOR and
// GITHUB_WORKFLOW. When envFile is set it is loaded first; variables that
// are already set win over the file.
func MetaFromEnv(envFile string) (RunMeta, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return RunMeta{}, fmt.Errorf("patchlog: load env %s: %w", envFile, err)
		}
	}
	return RunMeta{
		RunID:    os.Getenv("GITHUB_RUN_ID"),
		SHA:      os.Getenv("GITHUB_SHA"),
		Actor:    os.Getenv("GITHUB_ACTOR"),
		Workflow: os.Getenv("GITHUB_WORKFLOW"),
	}, nil
}

// Appender prepends history entries. Now and NewID are replaceable for
// tests.
type Appender struct {
	Now   func() time.Time
	NewID func() string
}

// NewAppender returns an Appender using the wall clock and random UUIDs.
func NewAppender() *Appender {
	return &Appender{Now: time.Now, NewID: uuid.NewString}
}

// Append reads the latest patch log, prepends one entry for it to the
// history at historyPath and rewrites the history. Every call adds an
// entry. It returns the new number of entries.
func (a *Appender) Append(latestPath, historyPath, kind string, meta RunMeta) (int, error) {
	raw, err := os.ReadFile(latestPath)
	if err != nil {
		return 0, fmt.Errorf("patchlog: read latest %s: %w", latestPath, err)
	}
	latest, ts := normalizeLatest(raw)
	if ts == "" {
		ts = feed.Timestamp(a.Now())
	}

	hist, err := readHistory(historyPath)
	if err != nil {
		return 0, err
	}

	e := Entry{
		ID:      a.NewID(),
		TS:      ts,
		Kind:    kind,
		RunMeta: meta,
		Latest:  latest,
	}
	enc, err := json.Marshal(e)
	if err != nil {
		return 0, fmt.Errorf("patchlog: encode entry: %w", err)
	}
	hist.Entries = append([]json.RawMessage{enc}, hist.Entries...)

	if err := feed.WriteJSON(historyPath, hist); err != nil {
		return 0, err
	}
	return len(hist.Entries), nil
}

// normalizeLatest keeps an object as is and wraps anything else as
// {"value": ...}. ts is the object's generatedAt or generated_at.
func normalizeLatest(raw []byte) (json.RawMessage, string) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil && obj != nil {
		var ts string
		for _, k := range []string{"generatedAt", "generated_at"} {
			if v, ok := obj[k]; ok && json.Unmarshal(v, &ts) == nil && ts != "" {
				break
			}
		}
		return json.RawMessage(bytes.TrimSpace(raw)), ts
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil || v == nil {
		return json.RawMessage(`{}`), ""
	}
	wrapped, _ := json.Marshal(map[string]any{"value": v})
	return wrapped, ""
}

// readHistory accepts {"entries": [...]}, a bare array or a missing file.
// Any other shape starts a fresh history.
func readHistory(p string) (History, error) {
	raw, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return History{Entries: []json.RawMessage{}}, nil
	}
	if err != nil {
		return History{}, fmt.Errorf("patchlog: read history %s: %w", p, err)
	}

	var h History
	if json.Unmarshal(raw, &h) == nil && h.Entries != nil {
		return h, nil
	}
	var arr []json.RawMessage
	if json.Unmarshal(raw, &arr) == nil && arr != nil {
		return History{Entries: arr}, nil
	}
	return History{Entries: []json.RawMessage{}}, nil
}
