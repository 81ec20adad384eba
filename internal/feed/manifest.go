package feed

import "path/filepath"

// Output file names written by the titles build.
const (
	FileCamp            = "titles_camp.json"
	FilePlayer          = "titles_player.json"
	FileCombined        = "titles_data.json"
	FilePatchlog        = "titles_patchlog.json"
	FileManifest        = "titles_manifest.json"
	FileCampGenerator   = "titles_camp_generator.json"
	FilePlayerGenerator = "titles_player_generator.json"
)

// OutputRef names one written feed.
type OutputRef struct {
	File  string `json:"file"`
	Count *int   `json:"count,omitempty"`
}

// Outputs lists the feeds of one titles build.
type Outputs struct {
	Camp     OutputRef `json:"camp"`
	Player   OutputRef `json:"player"`
	Patchlog OutputRef `json:"patchlog"`
}

// Sources lists the base names of every input table.
type Sources struct {
	CMPT    []string `json:"cmpt"`
	PLYT    []string `json:"plyt"`
	BOOK    []string `json:"book"`
	COBJ    []string `json:"cobj"`
	GLOB    []string `json:"glob"`
	GMRW    []string `json:"gmrw"`
	LVLI    []string `json:"lvli"`
	CHAL    []string `json:"chal"`
	CNDF    []string `json:"cndf"`
	Seasons *string  `json:"seasons"`
}

// Manifest is the shape of titles_manifest.json.
type Manifest struct {
	GeneratedAt string  `json:"generatedAt"`
	Outputs     Outputs `json:"outputs"`
	Sources     Sources `json:"sources"`
}

// NewManifest describes a build that produced campCount and playerCount
// records.
func NewManifest(generatedAt string, campCount, playerCount int, src Sources) Manifest {
	return Manifest{
		GeneratedAt: generatedAt,
		Outputs: Outputs{
			Camp:     OutputRef{File: FileCamp, Count: &campCount},
			Player:   OutputRef{File: FilePlayer, Count: &playerCount},
			Patchlog: OutputRef{File: FilePatchlog},
		},
		Sources: src,
	}
}

// BaseNames maps paths to their base names. The result is never nil.
func BaseNames(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, filepath.Base(p))
	}
	return out
}
