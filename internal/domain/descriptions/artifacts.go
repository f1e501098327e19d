package descriptions

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/forPelevin/clipmaker/internal/types"
)

// ArtifactName is the workspace file name for the clip at 0-based idx.
func ArtifactName(idx int) string { return fmt.Sprintf("description_%d.txt", idx) }

// WriteArtifact writes text verbatim, replacing any previous content.
func WriteArtifact(dir string, idx int, text string) (string, error) {
	if idx < 0 {
		return "", fmt.Errorf("description index must be >= 0, got %d", idx)
	}
	p := filepath.Join(dir, ArtifactName(idx))
	if err := os.WriteFile(p, []byte(text), 0o644); err != nil {
		return "", err
	}
	return p, nil
}

func ReadArtifact(dir string, idx int) (string, error) {
	b, err := os.ReadFile(filepath.Join(dir, ArtifactName(idx)))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Records maps labels to 0-based clip indexes. Labels without a usable
// ordinal, outside [0, clipCount), or repeating an index already taken are
// returned as gaps. Records are ordered by index.
func Records(byLabel map[string]string, clipCount int) ([]types.DescriptionRecord, []string) {
	labels := make([]string, 0, len(byLabel))
	for l := range byLabel {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	var (
		recs []types.DescriptionRecord
		gaps []string
		seen = map[int]bool{}
	)
	for _, l := range labels {
		idx, ok := LabelIndex(l)
		if !ok || idx >= clipCount || seen[idx] {
			gaps = append(gaps, l)
			continue
		}
		seen[idx] = true
		recs = append(recs, types.DescriptionRecord{ClipIndex: idx, Label: l, Text: byLabel[l]})
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].ClipIndex < recs[j].ClipIndex })
	return recs, gaps
}
