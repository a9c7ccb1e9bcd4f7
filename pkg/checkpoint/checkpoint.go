package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"bilifollow/pkg/logger"
)

// Checkpoint records the progress of one bulk-follow run so an
// interrupted run can resume without re-processing targets.
type Checkpoint struct {
	UID        int64             `json:"uid"`
	SourceFile string            `json:"source_file"`
	Processed  map[string]string `json:"processed"` // mid -> outcome
	Successful int               `json:"successful"`
	Failed     int               `json:"failed"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
	Version    int               `json:"version"`
}

// IsProcessed reports whether a target mid was already handled
func (c *Checkpoint) IsProcessed(mid int64) bool {
	if c == nil || c.Processed == nil {
		return false
	}
	_, ok := c.Processed[strconv.FormatInt(mid, 10)]
	return ok
}

// MarkProcessed records the outcome for a target mid
func (c *Checkpoint) MarkProcessed(mid int64, outcome string) {
	if c.Processed == nil {
		c.Processed = make(map[string]string)
	}
	c.Processed[strconv.FormatInt(mid, 10)] = outcome
}

// Manager handles checkpoint persistence for one account
type Manager struct {
	checkpointPath string
	logger         logger.Logger
}

// NewManager creates a checkpoint manager keyed by the account uid
func NewManager(uid int64) (*Manager, error) {
	dataDir, err := getDataDirectory()
	if err != nil {
		return nil, fmt.Errorf("failed to get data directory: %w", err)
	}

	checkpointsDir := filepath.Join(dataDir, "checkpoints")
	if err := os.MkdirAll(checkpointsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoints directory: %w", err)
	}

	return &Manager{
		checkpointPath: filepath.Join(checkpointsDir, fmt.Sprintf("%d.checkpoint.json", uid)),
		logger:         logger.GetLogger(),
	}, nil
}

// Create creates and persists a fresh checkpoint
func (m *Manager) Create(uid int64, sourceFile string) (*Checkpoint, error) {
	cp := &Checkpoint{
		UID:        uid,
		SourceFile: sourceFile,
		Processed:  make(map[string]string),
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
		Version:    1,
	}

	if err := m.Save(cp); err != nil {
		return nil, fmt.Errorf("failed to save initial checkpoint: %w", err)
	}

	m.logger.InfoWithFields("checkpoint created", map[string]interface{}{
		"uid":  uid,
		"path": m.checkpointPath,
	})

	return cp, nil
}

// Load loads an existing checkpoint; a nil checkpoint means none exists
func (m *Manager) Load() (*Checkpoint, error) {
	file, err := os.Open(m.checkpointPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open checkpoint file: %w", err)
	}
	defer file.Close()

	var cp Checkpoint
	if err := json.NewDecoder(file).Decode(&cp); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint: %w", err)
	}

	m.logger.InfoWithFields("checkpoint loaded", map[string]interface{}{
		"uid":        cp.UID,
		"processed":  len(cp.Processed),
		"successful": cp.Successful,
		"failed":     cp.Failed,
	})

	return &cp, nil
}

// Save persists the checkpoint atomically
func (m *Manager) Save(cp *Checkpoint) error {
	cp.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	tempPath := m.checkpointPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary checkpoint file: %w", err)
	}

	if err := os.Rename(tempPath, m.checkpointPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename checkpoint file: %w", err)
	}

	return nil
}

// Exists reports whether a checkpoint file is present
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.checkpointPath)
	return err == nil
}

// Delete removes the checkpoint file
func (m *Manager) Delete() error {
	if err := os.Remove(m.checkpointPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

// getDataDirectory returns the per-user data directory for run state
func getDataDirectory() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", "bilifollow"), nil
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "bilifollow"), nil
	default:
		if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
			return filepath.Join(xdgData, "bilifollow"), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", "bilifollow"), nil
	}
}
