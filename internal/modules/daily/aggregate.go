package daily

import (
	"cloudpico-dailyagg/internal/modules/daily/types"
)

// Update folds one observation into prev and returns the new summary.
// A nil prev seeds the summary from the observation alone.
//
// Start and end only move on a strictly earlier or later clock time, so when two
// observations share a time of day the one folded in first is kept.
func Update(prev *types.Summary, temp float64, at types.TimeOfDay) types.Summary {
	if prev == nil {
		return types.Summary{
			StartTime: at,
			EndTime:   at,
			StartTemp: temp,
			EndTemp:   temp,
			High:      temp,
			Low:       temp,
			Count:     1,
		}
	}

	next := *prev
	if at < prev.StartTime {
		next.StartTime = at
		next.StartTemp = temp
	}
	if at > prev.EndTime {
		next.EndTime = at
		next.EndTemp = temp
	}
	next.High = max(prev.High, temp)
	next.Low = min(prev.Low, temp)
	next.Count = prev.Count + 1
	return next
}

// Fold aggregates a batch of observations, in order, into a single summary.
// Keys are not checked; callers pass observations of one station-day.
// ok is false when obs is empty.
func Fold(obs []types.Observation) (summary types.Summary, ok bool) {
	var cur *types.Summary
	for _, o := range obs {
		next := Update(cur, o.Temperature, o.Time)
		cur = &next
	}
	if cur == nil {
		return types.Summary{}, false
	}
	return *cur, true
}
