// Package analytics aggregates distribution outcomes by channel and by
// score bucket, used to validate the scoring weights over time.
package analytics

import (
	"github.com/instabids/outreach/internal/types"
)

// Rates summarizes outcomes for one slice of distribution records.
type Rates struct {
	Total     int `json:"total"`
	Opened    int `json:"opened"`
	Responded int `json:"responded"`
	Declined  int `json:"declined"`

	// OpenRate is the share of records that were at least opened.
	OpenRate float64 `json:"open_rate"`
	// ResponseRate is the share of records that got a response.
	ResponseRate float64 `json:"response_rate"`
	// InterestRate is responses over opens: of those who looked, how
	// many engaged.
	InterestRate float64 `json:"interest_rate"`
}

// ScoreBuckets label the score-at-send ranges reports group by.
var ScoreBuckets = []string{"0-49", "50-69", "70-89", "90-100"}

// Summary is the aggregate report over a set of distribution records.
type Summary struct {
	Overall   Rates            `json:"overall"`
	ByChannel map[string]Rates `json:"by_channel"`
	ByBucket  map[string]Rates `json:"by_bucket"`
}

// Summarize aggregates open, response, and interest rates by channel and
// score bucket.
func Summarize(records []types.DistributionRecord) Summary {
	s := Summary{
		ByChannel: make(map[string]Rates),
		ByBucket:  make(map[string]Rates),
	}
	for i := range records {
		rec := &records[i]
		s.Overall = tally(s.Overall, rec)
		channel := string(rec.Channel)
		s.ByChannel[channel] = tally(s.ByChannel[channel], rec)
		bucket := ScoreBucket(rec.Score)
		s.ByBucket[bucket] = tally(s.ByBucket[bucket], rec)
	}
	s.Overall = finalize(s.Overall)
	for k, v := range s.ByChannel {
		s.ByChannel[k] = finalize(v)
	}
	for k, v := range s.ByBucket {
		s.ByBucket[k] = finalize(v)
	}
	return s
}

// ScoreBucket maps a score at send to its report bucket.
func ScoreBucket(score float64) string {
	switch {
	case score < 50:
		return ScoreBuckets[0]
	case score < 70:
		return ScoreBuckets[1]
	case score < 90:
		return ScoreBuckets[2]
	default:
		return ScoreBuckets[3]
	}
}

func tally(r Rates, rec *types.DistributionRecord) Rates {
	r.Total++
	switch rec.Status {
	case types.StatusOpened:
		r.Opened++
	case types.StatusResponded:
		r.Opened++
		r.Responded++
	case types.StatusDeclined:
		r.Declined++
	}
	return r
}

func finalize(r Rates) Rates {
	if r.Total > 0 {
		r.OpenRate = float64(r.Opened) / float64(r.Total)
		r.ResponseRate = float64(r.Responded) / float64(r.Total)
	}
	if r.Opened > 0 {
		r.InterestRate = float64(r.Responded) / float64(r.Opened)
	}
	return r
}
