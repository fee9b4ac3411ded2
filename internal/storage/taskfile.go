// Package storage implements the persistence gateway: task files in JSON,
// YAML or SQLite holding the full collection in display order.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/valter-silva-au/todo-list/pkg/models"
	"gopkg.in/yaml.v3"
)

// TaskFile reads and writes the whole task collection. Load on a missing
// file returns an empty collection.
type TaskFile interface {
	Load() ([]models.Task, error)
	Save(tasks []models.Task) error
	Path() string
}

// NewTaskFile returns the TaskFile for the given format.
func NewTaskFile(path string, format models.StorageFormat) (TaskFile, error) {
	switch format {
	case models.FormatJSON, "":
		return &jsonTaskFile{path: path}, nil
	case models.FormatYAML:
		return &yamlTaskFile{path: path}, nil
	case models.FormatSQLite:
		return &sqliteTaskFile{path: path}, nil
	default:
		return nil, fmt.Errorf("unknown storage format %q", format)
	}
}

// jsonTaskFile stores tasks as a JSON array, indented by two spaces, with
// non-ASCII text written as-is.
type jsonTaskFile struct {
	path string
}

func (f *jsonTaskFile) Path() string { return f.path }

func (f *jsonTaskFile) Load() ([]models.Task, error) {
	data, err := readIfExists(f.path)
	if err != nil || data == nil {
		return nil, err
	}

	var records []models.TaskRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("loading %s: parsing JSON: %w", f.path, err)
	}
	return decodeRecords(f.path, records)
}

func (f *jsonTaskFile) Save(tasks []models.Task) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(encodeRecords(tasks)); err != nil {
		return fmt.Errorf("saving %s: marshaling JSON: %w", f.path, err)
	}
	if err := writeFileAtomic(f.path, buf.Bytes()); err != nil {
		return fmt.Errorf("saving %s: %w", f.path, err)
	}
	return nil
}

// yamlTaskFile stores tasks as a top-level YAML sequence.
type yamlTaskFile struct {
	path string
}

func (f *yamlTaskFile) Path() string { return f.path }

func (f *yamlTaskFile) Load() ([]models.Task, error) {
	data, err := readIfExists(f.path)
	if err != nil || data == nil {
		return nil, err
	}

	var records []models.TaskRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("loading %s: parsing YAML: %w", f.path, err)
	}
	return decodeRecords(f.path, records)
}

func (f *yamlTaskFile) Save(tasks []models.Task) error {
	data, err := yaml.Marshal(encodeRecords(tasks))
	if err != nil {
		return fmt.Errorf("saving %s: marshaling YAML: %w", f.path, err)
	}
	if err := writeFileAtomic(f.path, data); err != nil {
		return fmt.Errorf("saving %s: %w", f.path, err)
	}
	return nil
}

// readIfExists returns nil data and a nil error when path does not exist.
func readIfExists(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return data, nil
}

func encodeRecords(tasks []models.Task) []models.TaskRecord {
	records := make([]models.TaskRecord, 0, len(tasks))
	for _, t := range tasks {
		records = append(records, t.ToRecord())
	}
	return records
}

func decodeRecords(path string, records []models.TaskRecord) ([]models.Task, error) {
	tasks := make([]models.Task, 0, len(records))
	for _, rec := range records {
		task, err := models.TaskFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
