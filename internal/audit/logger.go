package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Event is one line of the audit trail. Passwords never reach it.
type Event struct {
	At        string `json:"at"`
	Actor     string `json:"actor"`
	Role      string `json:"role,omitempty"`
	Action    string `json:"action"`
	Target    string `json:"target,omitempty"`
	Outcome   string `json:"outcome"`
	SessionID string `json:"session_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	IP        string `json:"ip,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// Logger appends events as JSON lines to a file and, when a mirror is set,
// repeats them on the application log.
type Logger struct {
	path   string
	mirror *logrus.Entry
	now    func() time.Time
	mu     sync.Mutex
}

func NewLogger(path string, mirror *logrus.Entry) *Logger {
	return &Logger{path: path, mirror: mirror, now: time.Now}
}

func (l *Logger) Record(e Event) error {
	if l == nil {
		return nil
	}
	if e.At == "" {
		e.At = l.now().UTC().Format(time.RFC3339)
	}
	if l.mirror != nil {
		l.mirror.WithFields(logrus.Fields{
			"actor":      e.Actor,
			"role":       e.Role,
			"action":     e.Action,
			"target":     e.Target,
			"outcome":    e.Outcome,
			"session_id": e.SessionID,
			"request_id": e.RequestID,
		}).Info("audit")
	}
	if l.path == "" {
		return nil
	}
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("mkdir audit log dir: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("write audit log entry: %w", err)
	}
	return nil
}
