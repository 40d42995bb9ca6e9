package reconcile

// Summary counts verdicts over a set of ledger rows.
type Summary struct {
	TotalRows int `json:"total_rows"`
	// Pending rows have no primary verdict yet.
	Pending           int `json:"pending"`
	PartNumberMissing int `json:"part_number_missing"`
	ErrorRows         int `json:"error_rows"`
	// Verdicts counts each verdict per comparison pair.
	Verdicts map[string]map[Verdict]int `json:"verdicts"`
}

// Summarize builds a Summary from rows.
func Summarize(rows []Row) Summary {
	summary := Summary{
		TotalRows: len(rows),
		Verdicts:  make(map[string]map[Verdict]int, len(Pairs)),
	}
	for _, pair := range Pairs {
		summary.Verdicts[pair.String()] = make(map[Verdict]int)
	}

	for i := range rows {
		row := &rows[i]

		// Pending rows are not errors yet; they are counted separately
		if row.Primary().IsEmpty() {
			summary.Pending++
			continue
		}
		if row.Primary().Verdict == VerdictPartNumberMissing {
			summary.PartNumberMissing++
		}
		if row.IsError() {
			summary.ErrorRows++
		}
		for _, pair := range Pairs {
			if v := row.Results[pair].Verdict; v != "" {
				summary.Verdicts[pair.String()][v]++
			}
		}
	}

	return summary
}
