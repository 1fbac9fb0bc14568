package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/brandonhon/catbar/pkg/platform"
)

// EventType represents the type of audit event
type EventType string

const (
	EventCategoryAdd     EventType = "category_add"
	EventCategoryRename  EventType = "category_rename"
	EventCategoryReorder EventType = "category_reorder"
	EventCommitDiscarded EventType = "commit_discarded"
	EventBackupCreate    EventType = "backup_create"
	EventBackupRestore   EventType = "backup_restore"
	EventBackupDelete    EventType = "backup_delete"
	EventConfigEdit      EventType = "config_edit"
	EventImportFile      EventType = "import_file"
	EventExportFile      EventType = "export_file"
	EventValidationFail  EventType = "validation_failure"
	EventSecurityViol    EventType = "security_violation"
	EventFileAccess      EventType = "file_access"
)

// Severity represents the severity level of an audit event
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// AuditEvent represents a single audit event
type AuditEvent struct {
	Timestamp time.Time              `json:"timestamp"`
	EventType EventType              `json:"event_type"`
	Severity  Severity               `json:"severity"`
	UserID    int                    `json:"user_id"`
	Username  string                 `json:"username"`
	ProcessID int                    `json:"process_id"`
	Operation string                 `json:"operation"`
	Resource  string                 `json:"resource"`
	Success   bool                   `json:"success"`
	ErrorMsg  string                 `json:"error_message,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// Logger handles audit logging
type Logger struct {
	logPath string
	enabled bool
}

// NewLogger creates a new audit logger under the platform data directory
func NewLogger() (*Logger, error) {
	p := platform.New()
	return NewLoggerAt(filepath.Join(p.GetDataDir(), "audit", "audit.log"))
}

// NewLoggerAt creates an audit logger writing to logPath
func NewLoggerAt(logPath string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}

	return &Logger{
		logPath: logPath,
		enabled: true,
	}, nil
}

// Log records an audit event
func (l *Logger) Log(event AuditEvent) error {
	if !l.enabled {
		return nil
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if event.UserID == 0 {
		event.UserID = os.Getuid()
	}
	if event.Username == "" {
		if user := os.Getenv("USER"); user != "" {
			event.Username = user
		} else if user := os.Getenv("USERNAME"); user != "" {
			event.Username = user
		}
	}
	if event.ProcessID == 0 {
		event.ProcessID = os.Getpid()
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to serialize audit event: %w", err)
	}

	file, err := os.OpenFile(l.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(string(eventJSON) + "\n"); err != nil {
		return fmt.Errorf("failed to write audit event: %w", err)
	}

	// Flush to disk immediately for security events
	if event.Severity == SeverityCritical || event.Severity == SeverityError {
		if err := file.Sync(); err != nil {
			return fmt.Errorf("failed to sync audit log: %w", err)
		}
	}

	return nil
}

// LogSecurityViolation logs a security violation event
func (l *Logger) LogSecurityViolation(operation, resource, reason string, details map[string]interface{}) {
	event := AuditEvent{
		EventType: EventSecurityViol,
		Severity:  SeverityCritical,
		Operation: operation,
		Resource:  resource,
		Success:   false,
		ErrorMsg:  reason,
		Details:   details,
	}

	if err := l.Log(event); err != nil {
		fmt.Fprintf(os.Stderr, "AUDIT LOG FAILURE: %v - Original violation: %s on %s: %s\n",
			err, operation, resource, reason)
	}
}

// LogValidationFailure logs input validation failures
func (l *Logger) LogValidationFailure(input, inputType, reason string) {
	details := map[string]interface{}{
		"input_type":     inputType,
		"input_data":     input,
		"failure_reason": reason,
	}

	event := AuditEvent{
		EventType: EventValidationFail,
		Severity:  SeverityWarning,
		Operation: "input_validation",
		Resource:  inputType,
		Success:   false,
		ErrorMsg:  reason,
		Details:   details,
	}

	l.Log(event)
}

// LogFileOperation logs file access operations
func (l *Logger) LogFileOperation(operation, filePath string, success bool, errorMsg string) {
	severity := SeverityInfo
	if !success {
		severity = SeverityError
	}

	details := map[string]interface{}{
		"file_path":      filePath,
		"operation_type": operation,
	}

	event := AuditEvent{
		EventType: EventFileAccess,
		Severity:  severity,
		Operation: operation,
		Resource:  filePath,
		Success:   success,
		ErrorMsg:  errorMsg,
		Details:   details,
	}

	l.Log(event)
}

// LogCategoryOperation logs category mutations and discarded commits.
// Operation is one of "add", "rename", "reorder" or "discard".
func (l *Logger) LogCategoryOperation(operation, categoryID, name string, success bool, errorMsg string) {
	var eventType EventType
	switch operation {
	case "add":
		eventType = EventCategoryAdd
	case "rename":
		eventType = EventCategoryRename
	case "reorder":
		eventType = EventCategoryReorder
	case "discard":
		eventType = EventCommitDiscarded
	default:
		eventType = EventCategoryRename
	}

	severity := SeverityInfo
	if !success {
		severity = SeverityWarning
	}

	details := map[string]interface{}{
		"category_id":    categoryID,
		"category_name":  name,
		"operation_type": operation,
	}

	event := AuditEvent{
		EventType: eventType,
		Severity:  severity,
		Operation: operation,
		Resource:  "categories",
		Success:   success,
		ErrorMsg:  errorMsg,
		Details:   details,
	}

	l.Log(event)
}

// LogReorder records a drop on the category list. Nothing is persisted.
func (l *Logger) LogReorder(categoryID string, from, to int) {
	event := AuditEvent{
		EventType: EventCategoryReorder,
		Severity:  SeverityInfo,
		Operation: "reorder",
		Resource:  "categories",
		Success:   true,
		Details: map[string]interface{}{
			"category_id": categoryID,
			"from_index":  from,
			"to_index":    to,
		},
	}

	l.Log(event)
}

// LogBackupOperation logs backup-related operations
func (l *Logger) LogBackupOperation(operation, backupPath string, success bool, errorMsg string) {
	var eventType EventType
	switch operation {
	case "create":
		eventType = EventBackupCreate
	case "restore":
		eventType = EventBackupRestore
	case "delete":
		eventType = EventBackupDelete
	default:
		eventType = EventBackupCreate
	}

	severity := SeverityInfo
	if !success {
		severity = SeverityError
	}

	details := map[string]interface{}{
		"backup_path":    backupPath,
		"operation_type": operation,
	}

	event := AuditEvent{
		EventType: eventType,
		Severity:  severity,
		Operation: operation,
		Resource:  "backup_system",
		Success:   success,
		ErrorMsg:  errorMsg,
		Details:   details,
	}

	l.Log(event)
}

// GetLogPath returns the path to the audit log file
func (l *Logger) GetLogPath() string {
	return l.logPath
}

// IsEnabled returns whether audit logging is enabled
func (l *Logger) IsEnabled() bool {
	return l.enabled
}

// SetEnabled enables or disables audit logging
func (l *Logger) SetEnabled(enabled bool) {
	l.enabled = enabled
}

// GetRecentEvents returns the last limit events of the log, oldest first
func (l *Logger) GetRecentEvents(limit int) ([]AuditEvent, error) {
	file, err := os.Open(l.logPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []AuditEvent{}, nil
		}
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer file.Close()

	var events []AuditEvent
	decoder := json.NewDecoder(file)

	for decoder.More() {
		var event AuditEvent
		if err := decoder.Decode(&event); err != nil {
			break
		}
		events = append(events, event)
		if limit > 0 && len(events) > limit {
			events = events[1:]
		}
	}
	if events == nil {
		events = []AuditEvent{}
	}

	return events, nil
}
