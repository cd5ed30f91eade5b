package contracts

// Record is one cleaned pitch.
// PX and PZ are finite, IsStrike is 0 or 1. Zone columns keep the raw
// cell text; the zone estimator decides which of them are usable.
type Record struct {
	PX         float64 `json:"px"`
	PZ         float64 `json:"pz"`
	IsStrike   int     `json:"is_strike"`
	ZoneTop    string  `json:"sz_top"`
	ZoneBottom string  `json:"sz_bot"`
}

// RecordSet is the cleaned output of one season's dataset
type RecordSet struct {
	Year    int      `json:"year"`
	Source  string   `json:"source"`
	RawRows int      `json:"raw_rows"`
	Records []Record `json:"records"`
	// Dropped counts rejected rows by the first column that failed coercion
	Dropped map[string]int `json:"dropped"`
}

// Len returns the number of cleaned records
func (rs *RecordSet) Len() int {
	return len(rs.Records)
}

// DroppedTotal returns the number of raw rows that did not survive cleaning
func (rs *RecordSet) DroppedTotal() int {
	return rs.RawRows - len(rs.Records)
}

// Strikes returns the number of records with IsStrike == 1
func (rs *RecordSet) Strikes() int {
	n := 0
	for _, r := range rs.Records {
		n += r.IsStrike
	}
	return n
}
