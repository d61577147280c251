package domain

// BatchRow is the per-input outcome of a batch run.
type BatchRow struct {
	Identifier BillIdentifier
	Reference  BillReference
	Details    BillDetails
	Analysis   *AnalysisResult
	Err        error
}

// Succeeded reports whether the row carries an analysis.
func (r BatchRow) Succeeded() bool {
	return r.Err == nil && r.Analysis != nil
}

// BatchSummary counts outcomes per error kind.
type BatchSummary struct {
	Total     int
	Succeeded int
	Failed    map[string]int
}

// Summarize tallies rows.
func Summarize(rows []BatchRow) BatchSummary {
	summary := BatchSummary{Total: len(rows), Failed: map[string]int{}}
	for _, row := range rows {
		if row.Succeeded() {
			summary.Succeeded++
			continue
		}
		summary.Failed[ErrorKind(row.Err)]++
	}
	return summary
}
