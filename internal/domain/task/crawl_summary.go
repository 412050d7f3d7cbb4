package task

import "time"

type CrawlSummaryTask struct {
	Total      int       `json:"total"`     // Leaves attempted
	Succeeded  int       `json:"succeeded"` // Leaves without error
	ElapsedSec float64   `json:"elapsed_sec"`
	FinishedAt time.Time `json:"finished_at"`
}

func (t *CrawlSummaryTask) TaskType() string {
	return "CrawlSummaryTask"
}

func (t *CrawlSummaryTask) TaskValue() ([]byte, error) {
	return DefaultTaskValue(t)
}
