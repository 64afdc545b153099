package agent

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FeatureListName is the file the initializer session writes and every
// coding session updates. It is the durable record of project progress.
const FeatureListName = "feature_list.json"

// Feature is one entry in the project's feature list.
type Feature struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Passes      bool   `json:"passes"`
}

// LoadFeatureList reads the feature list from the project directory.
// A missing file returns os.ErrNotExist, which callers use to decide
// whether the initializer session still needs to run.
func LoadFeatureList(projectDir string) ([]Feature, error) {
	data, err := os.ReadFile(filepath.Join(projectDir, FeatureListName))
	if err != nil {
		return nil, err
	}
	var features []Feature
	if err := json.Unmarshal(data, &features); err != nil {
		return nil, fmt.Errorf("parse %s: %w", FeatureListName, err)
	}
	return features, nil
}

// CountPassing returns how many features pass and the total count.
func CountPassing(features []Feature) (passing, total int) {
	for _, f := range features {
		if f.Passes {
			passing++
		}
	}
	return passing, len(features)
}

// AllPassing reports whether every feature passes. An empty list does not
// count as done.
func AllPassing(features []Feature) bool {
	if len(features) == 0 {
		return false
	}
	passing, total := CountPassing(features)
	return passing == total
}

// ProgressSummary renders a one-line progress string for prompts and logs.
func ProgressSummary(features []Feature) string {
	passing, total := CountPassing(features)
	return fmt.Sprintf("%d/%d features passing", passing, total)
}
