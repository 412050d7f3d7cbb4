package task

import (
	"encoding/json"
	"fmt"
)

// Task is a unit published to the record stream
type Task interface {
	TaskType() string
	TaskValue() ([]byte, error)
}

// Types lists every task type the pipeline publishes
var Types = []string{
	(&LeafRecordTask{}).TaskType(),
	(&CrawlSummaryTask{}).TaskType(),
}

// DefaultTaskValue provides a common implementation for TaskValue
func DefaultTaskValue(task interface{}) ([]byte, error) {
	return json.Marshal(task)
}

func UnmarshalTask[T Task](task []byte) (T, error) {
	var t T
	err := json.Unmarshal(task, &t)
	return t, err
}

// Decode restores a task from its stream fields
func Decode(taskType string, data []byte) (Task, error) {
	switch taskType {
	case "LeafRecordTask":
		return UnmarshalTask[*LeafRecordTask](data)
	case "CrawlSummaryTask":
		return UnmarshalTask[*CrawlSummaryTask](data)
	default:
		return nil, fmt.Errorf("unknown task type: %s", taskType)
	}
}
