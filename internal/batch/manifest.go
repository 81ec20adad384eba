// Package batch converts the storefront textures listed in a title image
// manifest into lossless WEBP files, one per entitlement.
package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"site-data-builder/internal/feed"
)

// Task groups the entitlements that share one storefront texture. The
// texture is the first of DDSPaths present under the textures root.
type Task struct {
	EntitlementEDIDs []string `json:"entitlementEdids"`
	DDSPaths         []string `json:"ddsPaths"`
}

// rawTask tolerates hand-edited manifests: non-list fields and non-string
// members are ignored.
type rawTask struct {
	EntitlementEDIDs any `json:"entitlementEdids"`
	DDSPaths         any `json:"ddsPaths"`
}

// LoadManifest reads a {"tasks":[...]} image manifest. Entries that are
// not objects are skipped; string lists are trimmed and blanks dropped.
func LoadManifest(path string) ([]Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("batch: read manifest %s: %w", path, err)
	}
	var doc struct {
		Tasks []json.RawMessage `json:"tasks"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("batch: parse manifest %s: %w", path, err)
	}

	tasks := make([]Task, 0, len(doc.Tasks))
	for _, raw := range doc.Tasks {
		var rt rawTask
		if err := json.Unmarshal(raw, &rt); err != nil {
			continue
		}
		tasks = append(tasks, Task{
			EntitlementEDIDs: stringList(rt.EntitlementEDIDs),
			DDSPaths:         stringList(rt.DDSPaths),
		})
	}
	return tasks, nil
}

func stringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, x := range list {
		if s, ok := x.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

// Counts tallies the outcome of a run.
type Counts struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Failure records why one entitlement produced no image.
type Failure struct {
	EDID   string `json:"edid"`
	Reason string `json:"reason"`
}

// Report is the JSON summary written after a run.
type Report struct {
	GeneratedAt string    `json:"generatedAt"`
	Counts      Counts    `json:"counts"`
	Failures    []Failure `json:"failures"`
}

// NewReport summarizes results in manifest order.
func NewReport(generatedAt string, results []Result) Report {
	r := Report{GeneratedAt: generatedAt, Failures: []Failure{}}
	for _, res := range results {
		switch res.Status {
		case StatusCreated:
			r.Counts.Created++
		case StatusSkipped:
			r.Counts.Skipped++
		case StatusFailed:
			r.Counts.Failed++
			r.Failures = append(r.Failures, Failure{EDID: res.EDID, Reason: res.Error})
		}
	}
	return r
}

// WriteReport writes the report as indented JSON.
func WriteReport(path string, r Report) error {
	return feed.WriteJSON(path, r)
}
