package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"bilifollow/pkg/bilibili"
	"bilifollow/pkg/logger"
)

// DefaultFollowingsFile is the file name the tools exchange data through
const DefaultFollowingsFile = "followings.json"

// Manager reads and writes the exported followings file
type Manager struct {
	path   string
	logger logger.Logger
}

// LoadResult is the outcome of reading a followings file. Skipped
// counts malformed entries (non-objects, missing or uncoercible mid);
// they are neither successes nor failures downstream.
type LoadResult struct {
	Records []bilibili.Following
	Skipped int
}

// NewManager creates a followings file manager for the given path
func NewManager(path string, log logger.Logger) *Manager {
	if path == "" {
		path = DefaultFollowingsFile
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Manager{path: path, logger: log}
}

// Path returns the file path the manager operates on
func (m *Manager) Path() string {
	return m.path
}

// Save writes the followings list as an indented JSON array. The write
// goes through a temporary file and an atomic rename so a failed run
// never leaves a truncated export behind.
func (m *Manager) Save(followings []bilibili.Following) error {
	// A nil slice would serialize as null; the file is always an array
	if followings == nil {
		followings = []bilibili.Following{}
	}

	data, err := json.MarshalIndent(followings, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal followings: %w", err)
	}
	data = append(data, '\n')

	tempFile := m.path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := os.Rename(tempFile, m.path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	m.logger.InfoWithFields("followings written", map[string]interface{}{
		"path":  m.path,
		"count": len(followings),
	})

	return nil
}

// Load reads the followings file, keeping entry order and duplicates.
// Each malformed entry is logged and skipped rather than aborting the
// whole run.
func (m *Manager) Load() (*LoadResult, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s does not exist, run the export first: %w", m.path, err)
		}
		return nil, fmt.Errorf("failed to read %s: %w", m.path, err)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%s is not a JSON array: %w", m.path, err)
	}

	result := &LoadResult{
		Records: make([]bilibili.Following, 0, len(entries)),
	}

	for i, entry := range entries {
		var f bilibili.Following
		if err := json.Unmarshal(entry, &f); err != nil {
			m.logger.WarnWithFields("skipping invalid entry", map[string]interface{}{
				"index": i,
				"error": err.Error(),
			})
			result.Skipped++
			continue
		}
		result.Records = append(result.Records, f)
	}

	m.logger.InfoWithFields("followings loaded", map[string]interface{}{
		"path":    m.path,
		"count":   len(result.Records),
		"skipped": result.Skipped,
	})

	return result, nil
}
