// Package taskfile reads task lists from YAML or JSON files.
//
// A file holds either a bare list of tasks or a workflow object with a
// "tasks" key. YAML is converted to JSON before decoding so both formats
// share the task JSON rules, including typed params.
package taskfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/meikuraledutech/taskflow"
)

// Load reads the task list stored at path. The format is chosen by
// extension; anything other than .json is parsed as YAML.
func Load(path string) ([]taskflow.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading task file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return Parse(data, false)
	}
	return Parse(data, true)
}

// Parse decodes a task list from JSON, or from YAML when isYAML is set.
func Parse(data []byte, isYAML bool) ([]taskflow.Task, error) {
	if isYAML {
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing yaml: %w", err)
		}
		var err error
		if data, err = json.Marshal(doc); err != nil {
			return nil, fmt.Errorf("converting yaml: %w", err)
		}
	}

	var wrapped struct {
		Tasks []taskflow.Task `json:"tasks"`
	}
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("decoding tasks: %w", err)
		}
		return wrapped.Tasks, nil
	}

	var tasks []taskflow.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("decoding tasks: %w", err)
	}
	return tasks, nil
}
