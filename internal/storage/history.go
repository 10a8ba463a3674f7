// Package storage keeps per-character transcript journals as JSON files under
// <base>/<conf_uid>/<history_uid>.json.
package storage

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// Journal roles.
const (
	RoleMetadata = "metadata"
	RoleHuman    = "human"
	RoleAI       = "ai"
)

var (
	// ErrInvalidName rejects conf or history ids that are not plain file names.
	ErrInvalidName = errors.New("invalid history path")
	// ErrNoBaseDir means history storage is not configured.
	ErrNoBaseDir = errors.New("chat history base dir is empty")
)

// HistoryMessage represents a historyMessage.
type HistoryMessage struct {
	Role      string `json:"role"`
	Timestamp string `json:"timestamp"`
	Content   string `json:"content,omitempty"`
	Name      string `json:"name,omitempty"`
	Intent    string `json:"intent,omitempty"`
}

// HistoryInfo represents a historyInfo.
type HistoryInfo struct {
	UID           string         `json:"uid"`
	LatestMessage HistoryMessage `json:"latest_message"`
	Timestamp     string         `json:"timestamp"`
}

var safeNamePattern = regexp.MustCompile(`^[A-Za-z0-9_\-\.]+$`)

// Journal stores transcripts on disk. Writes to one journal are serialised.
type Journal struct {
	baseDir string
	now     func() time.Time
	mu      sync.Mutex
}

// NewJournal creates a journal rooted at baseDir.
func NewJournal(baseDir string) *Journal {
	return &Journal{baseDir: baseDir, now: time.Now}
}

// Create starts an empty history for confUID and returns its id.
func (j *Journal) Create(confUID string) (string, error) {
	dir, err := j.confDir(confUID)
	if err != nil {
		return "", err
	}
	now := j.now()
	uid := now.Format("2006-01-02_15-04-05") + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	meta := []HistoryMessage{{Role: RoleMetadata, Timestamp: now.Format(time.RFC3339)}}

	j.mu.Lock()
	defer j.mu.Unlock()
	if err := writeHistory(filepath.Join(dir, uid+".json"), meta); err != nil {
		return "", err
	}
	return uid, nil
}

// Append adds messages to an existing history. Empty timestamps are filled.
func (j *Journal) Append(confUID string, historyUID string, messages ...HistoryMessage) error {
	path, err := j.historyPath(confUID, historyUID)
	if err != nil {
		return err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	existing, err := readHistory(path)
	if err != nil {
		return err
	}
	stamp := j.now().Format(time.RFC3339)
	for _, msg := range messages {
		if msg.Timestamp == "" {
			msg.Timestamp = stamp
		}
		existing = append(existing, msg)
	}
	return writeHistory(path, existing)
}

// Get returns the visible messages of a history.
func (j *Journal) Get(confUID string, historyUID string) ([]HistoryMessage, error) {
	path, err := j.historyPath(confUID, historyUID)
	if err != nil {
		return nil, err
	}
	j.mu.Lock()
	messages, err := readHistory(path)
	j.mu.Unlock()
	if err != nil {
		return nil, err
	}
	filtered := []HistoryMessage{}
	for _, msg := range messages {
		if msg.Role == RoleMetadata {
			continue
		}
		filtered = append(filtered, msg)
	}
	return filtered, nil
}

// Delete removes a history and reports whether it existed.
func (j *Journal) Delete(confUID string, historyUID string) bool {
	path, err := j.historyPath(confUID, historyUID)
	if err != nil {
		return false
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return os.Remove(path) == nil
}

// List returns the non-empty histories of confUID, newest first.
func (j *Journal) List(confUID string) []HistoryInfo {
	list := []HistoryInfo{}
	dir, err := j.confDir(confUID)
	if err != nil {
		return list
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return list
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		messages, err := readHistory(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		for i := len(messages) - 1; i >= 0; i-- {
			if messages[i].Role == RoleMetadata {
				continue
			}
			list = append(list, HistoryInfo{
				UID:           strings.TrimSuffix(entry.Name(), ".json"),
				LatestMessage: messages[i],
				Timestamp:     messages[i].Timestamp,
			})
			break
		}
	}

	sort.Slice(list, func(a, b int) bool {
		if list[a].Timestamp == list[b].Timestamp {
			return list[a].UID > list[b].UID
		}
		return list[a].Timestamp > list[b].Timestamp
	})
	return list
}

func (j *Journal) confDir(confUID string) (string, error) {
	if j.baseDir == "" {
		return "", ErrNoBaseDir
	}
	if !safeNamePattern.MatchString(confUID) {
		return "", ErrInvalidName
	}
	path := filepath.Join(j.baseDir, confUID)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", err
	}
	return path, nil
}

func (j *Journal) historyPath(confUID string, historyUID string) (string, error) {
	if j.baseDir == "" {
		return "", ErrNoBaseDir
	}
	if !safeNamePattern.MatchString(confUID) || !safeNamePattern.MatchString(historyUID) {
		return "", ErrInvalidName
	}
	return filepath.Join(j.baseDir, confUID, historyUID+".json"), nil
}

func readHistory(path string) ([]HistoryMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var messages []HistoryMessage
	if err := sonic.ConfigStd.Unmarshal(data, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func writeHistory(path string, messages []HistoryMessage) error {
	data, err := sonic.ConfigStd.MarshalIndent(messages, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
