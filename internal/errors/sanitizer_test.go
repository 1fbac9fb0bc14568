package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestNewSanitizedError(t *testing.T) {
	internal := stderrors.New("open /home/alice/.local/share/catbar/categories.yaml: permission denied")
	err := NewSanitizedError(internal, "insufficient permissions")

	if err.Error() != "insufficient permissions" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !stderrors.Is(err, internal) {
		t.Error("expected Unwrap to expose the internal error")
	}
}

func TestSanitizeError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		expected  string
		unchanged bool
	}{
		{
			name:      "nil",
			err:       nil,
			unchanged: true,
		},
		{
			name:      "safe message passes through",
			err:       stderrors.New("category name already exists: Work"),
			expected:  "category name already exists: Work",
			unchanged: true,
		},
		{
			name:     "permission denied",
			err:      stderrors.New("failed to open /home/bob/data/categories.yaml: permission denied"),
			expected: "failed to open [path]/categories.yaml: insufficient permissions",
		},
		{
			name:     "locked sqlite",
			err:      stderrors.New("failed to insert category: database is locked (5) (SQLITE_BUSY)"),
			expected: "failed to insert category: category store is busy",
		},
		{
			name:     "locked file store",
			err:      stderrors.New("file is locked by another process: /tmp/x/categories.yaml"),
			expected: "category store is busy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeError(tt.err)
			if tt.err == nil {
				if got != nil {
					t.Errorf("SanitizeError(nil) = %v", got)
				}
				return
			}
			if tt.unchanged && got != tt.err {
				t.Errorf("expected the same error back, got %v", got)
			}
			if got.Error() != tt.expected {
				t.Errorf("SanitizeError() = %q, want %q", got.Error(), tt.expected)
			}
			if !stderrors.Is(got, tt.err) {
				t.Error("sanitized error must wrap the original")
			}
		})
	}
}

func TestSanitizeFilePaths(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"open /var/lib/catbar/categories.db", "open [path]/categories.db"},
		{`read "C:\Users\me\catbar\categories.yaml"`, `read "[path]\categories.yaml"`},
		{"relative/path/stays", "relative/path/stays"},
		{"/single", "/single"},
		{"no paths here", "no paths here"},
	}

	for _, tt := range tests {
		if got := sanitizeFilePaths(tt.input); got != tt.expected {
			t.Errorf("sanitizeFilePaths(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestIsSecuritySensitive(t *testing.T) {
	tests := []struct {
		err      error
		expected bool
	}{
		{nil, false},
		{stderrors.New("permission denied"), true},
		{stderrors.New("import path is outside allowed directories"), true},
		{stderrors.New("category not found"), false},
	}

	for _, tt := range tests {
		if got := IsSecuritySensitive(tt.err); got != tt.expected {
			t.Errorf("IsSecuritySensitive(%v) = %v, want %v", tt.err, got, tt.expected)
		}
	}
}

func TestFormatUserError(t *testing.T) {
	if FormatUserError("export", nil) != nil {
		t.Error("expected nil for nil error")
	}

	err := FormatUserError("export", stderrors.New("write /home/x/out/file.yaml: no such file or directory"))
	if !strings.HasPrefix(err.Error(), "export failed: ") {
		t.Errorf("unexpected prefix: %q", err.Error())
	}
	if strings.Contains(err.Error(), "/home/x") {
		t.Errorf("path leaked: %q", err.Error())
	}
}
