package errors

import (
	"fmt"
	"regexp"
	"strings"
)

// SanitizedError keeps the original error for logging and a scrubbed
// message for display.
type SanitizedError struct {
	InternalError error
	UserMessage   string
}

func (e SanitizedError) Error() string {
	return e.UserMessage
}

func (e SanitizedError) Unwrap() error {
	return e.InternalError
}

func NewSanitizedError(internal error, userMsg string) *SanitizedError {
	return &SanitizedError{
		InternalError: internal,
		UserMessage:   userMsg,
	}
}

// SanitizeError returns err unchanged when its message is already safe to
// show, otherwise a SanitizedError wrapping it.
func SanitizeError(err error) error {
	if err == nil {
		return nil
	}

	errMsg := err.Error()
	sanitized := SanitizeErrorMessage(errMsg)

	if sanitized != errMsg {
		return NewSanitizedError(err, sanitized)
	}

	return err
}

// SanitizeErrorMessage scrubs paths, OS error text and store internals.
func SanitizeErrorMessage(message string) string {
	message = sanitizeStoreErrors(message)
	message = sanitizeEnvironmentInfo(message)
	message = sanitizeFilePaths(message)
	return message
}

// sanitizeFilePaths keeps only the final element of absolute paths.
func sanitizeFilePaths(message string) string {
	words := strings.Split(message, " ")
	for i, word := range words {
		words[i] = sanitizePathWord(word)
	}
	return strings.Join(words, " ")
}

func sanitizePathWord(word string) string {
	trimmed := strings.Trim(word, `"':,()`)
	sep := ""
	switch {
	case strings.HasPrefix(trimmed, "/") && strings.Count(trimmed, "/") >= 2:
		sep = "/"
	case len(trimmed) > 2 && trimmed[1] == ':' && strings.Count(trimmed, `\`) >= 2:
		sep = `\`
	default:
		return word
	}

	base := trimmed[strings.LastIndex(trimmed, sep)+1:]
	return strings.Replace(word, trimmed, "[path]"+sep+base, 1)
}

var environmentPatterns = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)permission denied.*`), "insufficient permissions"},
	{regexp.MustCompile(`(?i)no such file or directory.*`), "file not found"},
	{regexp.MustCompile(`(?i)access is denied.*`), "access denied"},
	{regexp.MustCompile(`(?i)operation not permitted.*`), "operation not allowed"},
	{regexp.MustCompile(`(?i)read-only file system.*`), "read-only file system"},
}

func sanitizeEnvironmentInfo(message string) string {
	for _, p := range environmentPatterns {
		message = p.pattern.ReplaceAllString(message, p.replacement)
	}
	return message
}

// sanitizeStoreErrors replaces driver-level detail from the category stores.
func sanitizeStoreErrors(message string) string {
	replacements := []struct {
		pattern     string
		replacement string
	}{
		{"database is locked", "category store is busy"},
		{"file is locked by another process", "category store is busy"},
		{"file is currently being written to", "category store is busy"},
		{"sql logic error", "category store error"},
		{"constraint failed", "category store constraint violated"},
		{"disk i/o error", "category store error"},
	}

	lowerMsg := strings.ToLower(message)
	for _, r := range replacements {
		if idx := strings.Index(lowerMsg, r.pattern); idx >= 0 {
			return message[:idx] + r.replacement
		}
	}

	return message
}

// FormatUserError formats an error for safe user display
func FormatUserError(operation string, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s failed: %v", operation, SanitizeError(err))
}

// IsSecuritySensitive reports errors worth a security audit entry.
func IsSecuritySensitive(err error) bool {
	if err == nil {
		return false
	}

	errMsg := strings.ToLower(err.Error())
	sensitivePatterns := []string{
		"permission denied",
		"access denied",
		"operation not permitted",
		"unauthorized",
		"outside allowed",
		"path traversal",
	}

	for _, pattern := range sensitivePatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}

	return false
}
