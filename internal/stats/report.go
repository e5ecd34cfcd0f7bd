package stats

import (
	"context"

	"github.com/verte-zerg/telehud/internal/model"
	"github.com/verte-zerg/telehud/internal/store"
)

// Report contains precomputed data for stint rendering.
type Report struct {
	Stints    []model.StintAggregate
	Summaries map[int64]Summary
}

// BuildReport loads the filtered stints and summarizes their samples.
func BuildReport(ctx context.Context, st *store.Store, cfg model.SessionsConfig) (Report, error) {
	stints, err := st.ListStints(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	summaries := make(map[int64]Summary, len(stints))
	for _, s := range stints {
		samples, err := st.LoadSamples(ctx, s.StintID)
		if err != nil {
			return Report{}, err
		}
		summaries[s.StintID] = Summarize(samples)
	}
	return Report{
		Stints:    stints,
		Summaries: summaries,
	}, nil
}
