package usecase

import (
	"context"

	"github.com/pkg/errors"

	"github.com/forPelevin/clipmaker/internal/domain/descriptions"
	"github.com/forPelevin/clipmaker/internal/types"
)

// describe issues exactly one LLM call for all clips and writes one
// artifact per parsed label. Unparseable labels are gaps, not failures.
func (r *run) describe(ctx context.Context) error {
	entries := make([]descriptions.Entry, 0, len(r.res.Clips))
	for _, c := range r.res.Clips {
		entries = append(entries, descriptions.Entry{
			Label:      descriptions.Label(c.Index),
			Transcript: c.TranscriptText,
		})
	}

	content, err := r.u.d.LLM.Complete(ctx, descriptions.BuildPrompt(entries))
	if err != nil {
		return types.NewStageError(types.ErrDescriptionAPI, "complete", err)
	}

	parsed := descriptions.Parse(content)
	if _, ok := parsed.(descriptions.HeuristicResult); ok {
		r.sink.Logf("response is not a JSON object, using line parser")
	}
	recs, ignored := descriptions.Records(descriptions.Normalize(parsed), len(r.res.Clips))
	for _, l := range ignored {
		r.sink.Logf("ignoring description for unknown label %q", l)
	}

	have := make(map[int]bool, len(recs))
	for i := range recs {
		p, err := descriptions.WriteArtifact(r.in.OutDir, recs[i].ClipIndex, recs[i].Text)
		if err != nil {
			return errors.Wrapf(err, "write %s", descriptions.ArtifactName(recs[i].ClipIndex))
		}
		recs[i].Path = p
		have[recs[i].ClipIndex] = true
	}
	r.res.Descriptions = recs

	for _, c := range r.res.Clips {
		if !have[c.Index-1] {
			l := descriptions.Label(c.Index)
			r.res.Gaps = append(r.res.Gaps, l)
			r.sink.Logf("no description parsed for %s", l)
		}
	}
	return nil
}
