package layout

import "go.uber.org/zap"

// Locate scans every candidate declaration and returns the most specific
// complete record whose source range contains the filter position, or nil
// when no eligible record contains it.
//
// Among containing candidates the one with the lexicographically latest
// start position wins, which selects the innermost declaration when ranges
// nest. A candidate replaces the current best only on a strictly later
// start, so the first-found candidate wins among equal starts.
//
// Source lines are 1-based: the best-match seed is (0,0), so a valid range
// never starts at line 0 and the first containing candidate always beats
// the seed.
func Locate(p Provider, filter Filter) Record {
	var (
		best       Record
		bestLine   uint32
		bestCol    uint32
		candidates int
	)

	for c := range p.Candidates() {
		candidates++

		rec := c.Record
		if rec == nil || rec.Dependent() || !rec.Complete() {
			continue
		}
		if !filter.Contains(c.Range) {
			continue
		}

		start := c.Range.Begin
		if start.Line > bestLine || (start.Line == bestLine && start.Column > bestCol) {
			best = rec
			bestLine = start.Line
			bestCol = start.Column
		}
	}

	if best != nil {
		Logger().Debug("located record",
			zap.String("record", best.Name()),
			zap.Uint32("line", bestLine),
			zap.Uint32("column", bestCol),
			zap.Int("candidates", candidates))
	}
	return best
}
