package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error in field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// ConfigValidator validates configuration values
type ConfigValidator struct {
	errors []ValidationError
}

// NewValidator creates a new configuration validator
func NewValidator() *ConfigValidator {
	return &ConfigValidator{
		errors: make([]ValidationError, 0),
	}
}

// Validate validates the entire configuration
func (v *ConfigValidator) Validate(config *Config) error {
	v.errors = make([]ValidationError, 0)

	v.validateGeneral(&config.General)
	v.validateStore(&config.Store)
	v.validateUI(&config.UI)
	v.validateAnimation(&config.Animation)
	v.validateBackup(&config.Backup)
	v.validateExport(&config.Export)

	if len(v.errors) > 0 {
		return fmt.Errorf("configuration validation failed with %d errors: %v", len(v.errors), v.errors)
	}

	return nil
}

// Errors returns the errors found by the last Validate call
func (v *ConfigValidator) Errors() []ValidationError {
	return v.errors
}

func (v *ConfigValidator) validateGeneral(general *General) {
	if general.Editor != "" && !IsValidEditor(general.Editor) {
		v.addError("general.editor", general.Editor, "invalid or potentially unsafe editor")
	}
}

func (v *ConfigValidator) validateStore(store *Store) {
	validDrivers := []string{"file", "sqlite"}
	if !contains(validDrivers, store.Driver) {
		v.addError("store.driver", store.Driver, "store driver must be 'file' or 'sqlite'")
	}

	if store.Path != "" && containsSuspiciousPath(store.Path) {
		v.addError("store.path", store.Path, "potentially unsafe store path")
	}
}

func (v *ConfigValidator) validateUI(ui *UI) {
	validColorSchemes := []string{"auto", "light", "dark", "none"}
	if !contains(validColorSchemes, ui.ColorScheme) {
		v.addError("ui.color_scheme", ui.ColorScheme, "invalid color scheme")
	}

	if ui.Width < 16 || ui.Width > 200 {
		v.addError("ui.width", ui.Width, "sidebar width must be between 16 and 200")
	}

	if ui.LinesPerRow < 1 || ui.LinesPerRow > 4 {
		v.addError("ui.lines_per_row", ui.LinesPerRow, "lines per row must be between 1 and 4")
	}

	for action, key := range ui.KeyBindings {
		if !contains(keyActions, action) {
			v.addError(fmt.Sprintf("ui.key_bindings.%s", action), action, "unknown key binding action")
			continue
		}
		if !isValidKeyBinding(key) {
			v.addError(fmt.Sprintf("ui.key_bindings.%s", action), key, "invalid key binding format")
		}
	}
}

func (v *ConfigValidator) validateAnimation(anim *Animation) {
	if anim.RowHeight <= 0 || anim.RowHeight > 1000 {
		v.addError("animation.row_height", anim.RowHeight, "row height must be greater than 0 and at most 1000")
	}

	if anim.Stiffness <= 0 || anim.Stiffness > 10000 {
		v.addError("animation.stiffness", anim.Stiffness, "stiffness must be greater than 0 and at most 10000")
	}

	if anim.Damping <= 0 || anim.Damping > 1000 {
		v.addError("animation.damping", anim.Damping, "damping must be greater than 0 and at most 1000")
	}

	if anim.FPS < 1 || anim.FPS > 240 {
		v.addError("animation.fps", anim.FPS, "fps must be between 1 and 240")
	}
}

func (v *ConfigValidator) validateBackup(backup *Backup) {
	if backup.Directory != "" && containsSuspiciousPath(backup.Directory) {
		v.addError("backup.directory", backup.Directory, "potentially unsafe directory path")
	}

	if backup.MaxBackups < 1 || backup.MaxBackups > 100 {
		v.addError("backup.max_backups", backup.MaxBackups, "max backups must be between 1 and 100")
	}

	if backup.RetentionDays < 1 || backup.RetentionDays > 3650 {
		v.addError("backup.retention_days", backup.RetentionDays, "retention days must be between 1 and 3650")
	}

	validCompressionTypes := []string{"none", "gzip"}
	if !contains(validCompressionTypes, backup.CompressionType) {
		v.addError("backup.compression_type", backup.CompressionType, "invalid compression type")
	}
}

func (v *ConfigValidator) validateExport(export *Export) {
	validFormats := []string{"yaml", "json"}
	if !contains(validFormats, export.DefaultFormat) {
		v.addError("export.default_format", export.DefaultFormat, "default format must be 'yaml' or 'json'")
	}
}

// Helper functions

func (v *ConfigValidator) addError(field string, value interface{}, message string) {
	v.errors = append(v.errors, ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	})
}

// IsValidEditor accepts known editors, optionally with arguments, and
// rejects shell metacharacters.
func IsValidEditor(editor string) bool {
	allowedEditors := map[string]bool{
		"nano":         true,
		"vim":          true,
		"vi":           true,
		"emacs":        true,
		"code":         true,
		"notepad":      true,
		"notepad++":    true,
		"sublime_text": true,
		"atom":         true,
		"gedit":        true,
		"kate":         true,
	}

	editorCmd := strings.TrimSpace(editor)

	// Check for suspicious characters
	suspiciousChars := []string{";", "&", "|", "`", "$", "&&", "||", "\n", "\r"}
	for _, char := range suspiciousChars {
		if strings.Contains(editorCmd, char) {
			return false
		}
	}

	// Extract base command name
	parts := strings.Fields(editorCmd)
	if len(parts) == 0 {
		return false
	}

	baseName := strings.ToLower(filepath.Base(parts[0]))
	if strings.HasSuffix(baseName, ".exe") {
		baseName = strings.TrimSuffix(baseName, ".exe")
	}

	return allowedEditors[baseName]
}

// keyActions are the sidebar actions that accept a binding
var keyActions = []string{"up", "down", "move_up", "move_down", "menu", "create", "rename", "copy", "submit", "cancel"}

var validKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9?/.]$|^(ctrl|alt|shift)\+([a-zA-Z0-9]|up|down|left|right)$|^F[0-9]{1,2}$|^(up|down|left|right|enter|esc|tab|space)$`)

// isValidKeyBinding accepts one key or a comma separated list of keys
func isValidKeyBinding(binding string) bool {
	if len(binding) == 0 || len(binding) > 32 {
		return false
	}
	for _, key := range strings.Split(binding, ",") {
		if !validKeyPattern.MatchString(strings.TrimSpace(key)) {
			return false
		}
	}
	return true
}

func containsSuspiciousPath(path string) bool {
	suspiciousPatterns := []string{
		"..", "/etc/", "/proc/", "/sys/", "/dev/",
		"C:\\Windows\\", "C:\\System32\\", "\\etc\\",
		"\x00", // null byte
	}

	for _, pattern := range suspiciousPatterns {
		if strings.Contains(path, pattern) {
			return true
		}
	}

	return false
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}