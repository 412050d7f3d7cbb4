package task

import "wildberries/catalog/internal/domain"

// LeafRecordTask carries one completed leaf record to downstream consumers
type LeafRecordTask struct {
	Record domain.LeafRecord `json:"record"`
}

func (t *LeafRecordTask) TaskType() string {
	return "LeafRecordTask"
}

func (t *LeafRecordTask) TaskValue() ([]byte, error) {
	return DefaultTaskValue(t)
}
