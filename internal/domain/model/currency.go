package model

// Currency is one entry of a fetched rate snapshot. Rate is expressed
// relative to the configured base currency. Entries are immutable once
// fetched; a refresh replaces the whole set.
type Currency struct {
	Code string  `json:"code"`
	Name string  `json:"name"`
	Rate float64 `json:"rate"`
}

type RateStatus string

const (
	RateStatusIdle  RateStatus = "idle"
	RateStatusFresh RateStatus = "fresh"
	RateStatusStale RateStatus = "stale"
)

func (s RateStatus) String() string {
	return string(s)
}
