package task

import (
	"errors"
	"fmt"
)

// Stream entry fields written for every task.
const (
	FieldType = "task_type"
	FieldData = "task_data"
)

type Task interface {
	TaskType() string
	TaskValue() ([]byte, error)
}

// StreamValues renders a task as the field set of one stream entry.
func StreamValues(t Task) (map[string]interface{}, error) {
	taskType := t.TaskType()
	if taskType == "" {
		return nil, errors.New("task type is empty")
	}

	data, err := t.TaskValue()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s: %w", taskType, err)
	}

	return map[string]interface{}{
		FieldType: taskType,
		FieldData: string(data),
	}, nil
}
