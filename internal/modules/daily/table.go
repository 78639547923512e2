package daily

import (
	"iter"

	"cloudpico-dailyagg/internal/modules/daily/types"
)

// Table maps station-days to summaries and iterates in first-seen key order.
type Table struct {
	index     map[types.GroupKey]int
	keys      []types.GroupKey
	summaries []types.Summary
}

func NewTable() *Table {
	return &Table{index: make(map[types.GroupKey]int)}
}

// Add folds obs into the summary for its station-day.
func (t *Table) Add(obs types.Observation) {
	key := obs.Key()
	i, ok := t.index[key]
	if !ok {
		t.index[key] = len(t.keys)
		t.keys = append(t.keys, key)
		t.summaries = append(t.summaries, Update(nil, obs.Temperature, obs.Time))
		return
	}
	t.summaries[i] = Update(&t.summaries[i], obs.Temperature, obs.Time)
}

func (t *Table) Len() int {
	return len(t.keys)
}

// All yields every key and its summary in first-seen order.
func (t *Table) All() iter.Seq2[types.GroupKey, types.Summary] {
	return func(yield func(types.GroupKey, types.Summary) bool) {
		for i, key := range t.keys {
			if !yield(key, t.summaries[i]) {
				return
			}
		}
	}
}
