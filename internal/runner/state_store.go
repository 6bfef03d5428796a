package runner

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const (
	stateFileNameConstant            = ".tabrun.state.json"
	stateFilePermissionsConstant     = 0o644
	stateReadErrorTemplateConstant   = "unable to read state file %q: %w"
	stateDecodeErrorTemplateConstant = "unable to decode state file %q: %w"
	stateWriteErrorTemplateConstant  = "unable to write state file %q: %w"
)

// TargetRecord captures the dependency observations taken after a target succeeded.
type TargetRecord struct {
	CompletedAt  time.Time                   `json:"completed_at"`
	Dependencies map[string]DependencyRecord `json:"dependencies,omitempty"`
}

// StateStore persists per-target dependency observations beside the task file.
// Records are written only after a fully successful invocation so that failed
// runs never mask stale dependencies.
type StateStore struct {
	filePath string
	records  map[string]TargetRecord
}

// NewStateStore loads the recorded state for the task file at the provided path.
// A missing state file yields an empty store.
func NewStateStore(taskFilePath string) (*StateStore, error) {
	stateFilePath := filepath.Join(filepath.Dir(taskFilePath), stateFileNameConstant)
	store := &StateStore{filePath: stateFilePath, records: map[string]TargetRecord{}}

	content, readError := os.ReadFile(stateFilePath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return store, nil
		}
		return nil, fmt.Errorf(stateReadErrorTemplateConstant, stateFilePath, readError)
	}

	if decodeError := json.Unmarshal(content, &store.records); decodeError != nil {
		return nil, fmt.Errorf(stateDecodeErrorTemplateConstant, stateFilePath, decodeError)
	}
	return store, nil
}

// Record returns the stored observation for the provided target and dependency path.
func (store *StateStore) Record(targetName string, dependencyPath string) (DependencyRecord, bool) {
	if store == nil {
		return DependencyRecord{}, false
	}
	targetRecord, targetExists := store.records[targetName]
	if !targetExists {
		return DependencyRecord{}, false
	}
	record, recordExists := targetRecord.Dependencies[dependencyPath]
	return record, recordExists
}

// HasCompleted reports whether the target has a recorded successful run.
func (store *StateStore) HasCompleted(targetName string) bool {
	if store == nil {
		return false
	}
	_, exists := store.records[targetName]
	return exists
}

// Update replaces the stored observations for the provided target.
func (store *StateStore) Update(targetName string, dependencies map[string]DependencyRecord) {
	if store == nil {
		return
	}
	store.records[targetName] = TargetRecord{CompletedAt: time.Now().UTC(), Dependencies: dependencies}
}

// Save persists the store to disk.
func (store *StateStore) Save() error {
	if store == nil {
		return nil
	}
	encoded, encodeError := json.MarshalIndent(store.records, "", "  ")
	if encodeError != nil {
		return fmt.Errorf(stateWriteErrorTemplateConstant, store.filePath, encodeError)
	}
	if writeError := os.WriteFile(store.filePath, encoded, stateFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(stateWriteErrorTemplateConstant, store.filePath, writeError)
	}
	return nil
}
