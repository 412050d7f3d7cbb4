package domain

import "time"

// Subject is one value of the xsubject facet returned for a leaf
type Subject struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// LeafRecord is the outcome of fetching subjects for one leaf.
// Exactly one record exists per eligible leaf; failures are kept in Error.
type LeafRecord struct {
	LeafID      int64     `json:"leaf_id"`
	LeafName    string    `json:"leaf_name"`
	LeafFullURL string    `json:"leaf_full_url"`
	Subjects    []Subject `json:"subjects"`
	Error       *string   `json:"error"`
}

// NewLeafRecord starts an empty record for leaf
func NewLeafRecord(leaf LeafDescriptor) LeafRecord {
	return LeafRecord{
		LeafID:      leaf.LeafID,
		LeafName:    leaf.LeafName,
		LeafFullURL: leaf.LeafFullURL,
		Subjects:    []Subject{},
	}
}

// Fail records err and clears any subjects
func (r *LeafRecord) Fail(err error) {
	msg := err.Error()
	r.Error = &msg
	r.Subjects = []Subject{}
}

func (r LeafRecord) OK() bool {
	return r.Error == nil
}

// CrawlResult aggregates all records of one crawl run
type CrawlResult struct {
	Records   []LeafRecord  `json:"records"`
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Elapsed   time.Duration `json:"elapsed"`
}

// LeavesPerSecond is the crawl throughput
func (r *CrawlResult) LeavesPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Total) / r.Elapsed.Seconds()
}
