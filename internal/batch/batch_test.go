package batch

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/image/webp"

	"site-data-builder/internal/feed"
	"site-data-builder/internal/texture"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// writeDDS writes a w×h uncompressed BGRA DDS filled with one color.
func writeDDS(t *testing.T, path string, w, h int) {
	t.Helper()
	b := make([]byte, 128, 128+w*h*4)
	le := binary.LittleEndian
	copy(b, "DDS ")
	le.PutUint32(b[4:], 124)
	le.PutUint32(b[12:], uint32(h))
	le.PutUint32(b[16:], uint32(w))
	le.PutUint32(b[76:], 32)
	le.PutUint32(b[80:], 0x41) // RGB | alpha pixels
	le.PutUint32(b[88:], 32)
	le.PutUint32(b[92:], 0x00ff0000)
	le.PutUint32(b[96:], 0x0000ff00)
	le.PutUint32(b[100:], 0x000000ff)
	le.PutUint32(b[104:], 0xff000000)
	for i := 0; i < w*h; i++ {
		b = append(b, 0x40, 0x80, 0xc0, 0xff)
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, b, 0644))
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

func TestLoadManifest(t *testing.T) {
	p := filepath.Join(t.TempDir(), "titles_images_manifest.json")
	writeFile(t, p, `{"tasks":[
		{"entitlementEdids":[" ATX_Title_Meat ", "", 7], "ddsPaths":["textures/atx/meat.dds"]},
		"not a task",
		{"entitlementEdids":"ATX_Wrong_Shape", "ddsPaths":null}
	]}`)

	tasks, err := LoadManifest(p)
	require.NoError(t, err)
	assert.Equal(t, []Task{
		{EntitlementEDIDs: []string{"ATX_Title_Meat"}, DDSPaths: []string{"textures/atx/meat.dds"}},
		{},
	}, tasks)

	_, err = LoadManifest(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "batch: read manifest")
}

func TestPlan(t *testing.T) {
	texRoot, out := t.TempDir(), t.TempDir()
	writeDDS(t, filepath.Join(texRoot, "good.dds"), 4, 4)
	writeFile(t, filepath.Join(out, "ent_done.webp"), "kept")
	idx, err := texture.BuildIndex(texRoot)
	require.NoError(t, err)

	tests := []struct {
		name  string
		tasks []Task
		want  []Status
	}{
		{
			name: "failed edid is retried by a later task",
			tasks: []Task{
				{EntitlementEDIDs: []string{"ENT_A"}, DDSPaths: []string{"missing.dds"}},
				{EntitlementEDIDs: []string{"ENT_A"}, DDSPaths: []string{"good.dds"}},
			},
			want: []Status{StatusFailed, ""},
		},
		{
			name: "scheduled edid is not scheduled twice",
			tasks: []Task{
				{EntitlementEDIDs: []string{"ENT_A"}, DDSPaths: []string{"good.dds"}},
				{EntitlementEDIDs: []string{"ent_a"}, DDSPaths: []string{"good.dds"}},
			},
			want: []Status{"", StatusSkipped},
		},
		{
			name: "existing output stays skipped",
			tasks: []Task{
				{EntitlementEDIDs: []string{"ENT_DONE"}, DDSPaths: []string{"good.dds"}},
				{EntitlementEDIDs: []string{"ENT_DONE"}},
			},
			want: []Status{StatusSkipped, StatusSkipped},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Plan(idx, out, tt.tasks)
			require.Len(t, got, len(tt.want))
			for i, r := range got {
				assert.Equal(t, tt.want[i], r.Status, "result %d", i)
				if r.Status == "" {
					assert.Equal(t, filepath.Join(texRoot, "good.dds"), r.Texture)
				}
			}
		})
	}
}

func TestRun(t *testing.T) {
	texRoot, out := t.TempDir(), t.TempDir()
	writeDDS(t, filepath.Join(texRoot, "ATX", "Storefront", "Meat.dds"), 64, 32)
	writeDDS(t, filepath.Join(texRoot, "ATX", "Storefront", "Fish.dds"), 8, 8)
	writeFile(t, filepath.Join(texRoot, "ATX", "Broken.dds"), "DDS but not really")
	writeFile(t, filepath.Join(out, "atx_title_old.webp"), "kept")

	tasks := []Task{
		{
			EntitlementEDIDs: []string{"ATX_Title_Meat", "ATX_Title_Meat_Bundle"},
			DDSPaths:         []string{`textures\atx\storefront\missing.dds`, `Textures\ATX\Storefront\MEAT.dds`},
		},
		{EntitlementEDIDs: []string{"ATX_Title_Fish", "atx_title_meat"}, DDSPaths: []string{"atx/storefront/fish.dds"}},
		{EntitlementEDIDs: []string{"ATX_Title_Old"}, DDSPaths: []string{"atx/storefront/fish.dds"}},
		{EntitlementEDIDs: []string{"ATX_Title_Ghost"}, DDSPaths: []string{"atx/nowhere.dds"}},
		{EntitlementEDIDs: []string{"ATX_Title_Bare"}},
		{EntitlementEDIDs: []string{"ATX_Title_Broken"}, DDSPaths: []string{"atx/broken.dds"}},
		{DDSPaths: []string{"atx/storefront/fish.dds"}},
	}

	results, err := Run(context.Background(), Config{TexturesRoot: texRoot, OutputDir: out, MaxSize: 16, Workers: 3}, tasks)
	require.NoError(t, err)

	status := make(map[string]Status)
	for _, r := range results {
		status[r.EDID] = r.Status
	}
	assert.Equal(t, map[string]Status{
		"ATX_Title_Meat":        StatusCreated,
		"ATX_Title_Meat_Bundle": StatusCreated,
		"ATX_Title_Fish":        StatusCreated,
		"atx_title_meat":        StatusSkipped,
		"ATX_Title_Old":         StatusSkipped,
		"ATX_Title_Ghost":       StatusFailed,
		"ATX_Title_Bare":        StatusFailed,
		"ATX_Title_Broken":      StatusFailed,
	}, status)

	f, err := os.Open(filepath.Join(out, "atx_title_meat.webp"))
	require.NoError(t, err)
	defer f.Close()
	cfg, err := webp.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Width)
	assert.Equal(t, 8, cfg.Height)

	old, err := os.ReadFile(filepath.Join(out, "atx_title_old.webp"))
	require.NoError(t, err)
	assert.Equal(t, "kept", string(old))

	rep := NewReport("2026-03-01T12:00:00Z", results)
	assert.Equal(t, Counts{Created: 3, Skipped: 2, Failed: 3}, rep.Counts)
	require.Len(t, rep.Failures, 3)
	assert.Equal(t, Failure{EDID: "ATX_Title_Ghost", Reason: "no matching DDS found on disk (checked 1 paths)"}, rep.Failures[0])
	assert.Equal(t, "no ddsPaths in task", rep.Failures[1].Reason)

	reportPath := filepath.Join(out, "report", "storefront.json")
	require.NoError(t, WriteReport(reportPath, rep))
	var back Report
	require.NoError(t, feed.ReadJSON(reportPath, &back))
	assert.Equal(t, rep, back)

	leftovers, err := filepath.Glob(filepath.Join(out, ".storefront-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestRun_SecondPassSkipsEverything(t *testing.T) {
	texRoot, out := t.TempDir(), t.TempDir()
	writeDDS(t, filepath.Join(texRoot, "a.dds"), 4, 4)
	tasks := []Task{{EntitlementEDIDs: []string{"A", "B"}, DDSPaths: []string{"a.dds"}}}

	first, err := Run(context.Background(), Config{TexturesRoot: texRoot, OutputDir: out}, tasks)
	require.NoError(t, err)
	assert.Equal(t, Counts{Created: 2}, NewReport("", first).Counts)

	second, err := Run(context.Background(), Config{TexturesRoot: texRoot, OutputDir: out}, tasks)
	require.NoError(t, err)
	assert.Equal(t, Counts{Skipped: 2}, NewReport("", second).Counts)
}

func TestRun_Canceled(t *testing.T) {
	texRoot, out := t.TempDir(), t.TempDir()
	writeDDS(t, filepath.Join(texRoot, "a.dds"), 4, 4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Config{TexturesRoot: texRoot, OutputDir: out, Workers: 2},
		[]Task{{EntitlementEDIDs: []string{"A"}, DDSPaths: []string{"a.dds"}}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_MissingTexturesRoot(t *testing.T) {
	_, err := Run(context.Background(), Config{TexturesRoot: filepath.Join(t.TempDir(), "nope"), OutputDir: t.TempDir()}, nil)
	assert.ErrorContains(t, err, "batch: index textures")
}
