package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/brandonhon/catbar/internal/audit"
	"github.com/brandonhon/catbar/internal/backup"
	"github.com/brandonhon/catbar/internal/category"
	"github.com/brandonhon/catbar/internal/config"
	"github.com/brandonhon/catbar/internal/tui"
	"github.com/brandonhon/catbar/pkg/platform"
	"github.com/brandonhon/catbar/pkg/search"
)

const exportVersion = 1

// exportDocument is the import/export file layout.
type exportDocument struct {
	Version    int                 `json:"version" yaml:"version"`
	Categories []category.Category `json:"categories" yaml:"categories"`
}

func tuiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive sidebar",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			return tui.Run(cmd.Context(), s.service, cfg, s.auditor())
		},
	}

	return cmd
}

func listCmd() *cobra.Command {
	var showIDs bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			categories := s.service.Categories()
			if len(categories) == 0 {
				fmt.Fprintln(out, "No categories")
				return nil
			}

			fmt.Fprintf(out, "Categories (%d):\n", len(categories))
			for i, c := range categories {
				fmt.Fprintf(out, "  %d. %s", i+1, c.Name)
				if showIDs {
					fmt.Fprintf(out, " [%s]", c.ID)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showIDs, "ids", false, "Show category ids")

	return cmd
}

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Append a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			name, err := acceptName(s.service.Categories(), args[0])
			if err != nil {
				if s.logger != nil {
					s.logger.LogValidationFailure(args[0], "category_name", err.Error())
				}
				return err
			}

			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "Would add category: %s\n", name)
				return nil
			}

			if err := backupBeforeChange(cmd); err != nil {
				return err
			}

			c := newCategory(name)
			if err := s.service.AddCategory(cmd.Context(), c); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added category: %s\n", c.Name)
			if verbose {
				fmt.Fprintf(cmd.OutOrStdout(), "ID: %s\n", c.ID)
			}
			return nil
		},
	}

	return cmd
}

func renameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <name-or-id> <new-name>",
		Short: "Rename a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			target, err := s.find(args[0])
			if err != nil {
				return err
			}

			name, err := acceptName(s.service.Categories(), args[1])
			if err != nil {
				if s.logger != nil {
					s.logger.LogValidationFailure(args[1], "category_name", err.Error())
				}
				return err
			}

			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "Would rename category: %s -> %s\n", target.Name, name)
				return nil
			}

			if err := backupBeforeChange(cmd); err != nil {
				return err
			}

			if err := s.service.UpdateCategory(cmd.Context(), category.Category{ID: target.ID, Name: name}); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Renamed category: %s -> %s\n", target.Name, name)
			return nil
		},
	}

	return cmd
}

func searchCmd() *cobra.Command {
	var fuzzy bool
	var caseSensitive bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search category names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			results := search.NewSearcher(caseSensitive, fuzzy).Search(s.service.Categories(), args[0])
			if len(results) == 0 {
				fmt.Fprintln(out, "No categories found")
				return nil
			}

			fmt.Fprintf(out, "Found %d categories:\n\n", len(results))
			for _, result := range results {
				fmt.Fprintf(out, "  %d. %s (score: %.2f, match: %s)\n",
					result.Index+1, result.Category.Name, result.Score, result.Match)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fuzzy, "fuzzy", true, "Enable fuzzy matching")
	cmd.Flags().BoolVar(&caseSensitive, "case-sensitive", false, "Enable case-sensitive search")

	return cmd
}

func exportCmd() *cobra.Command {
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export categories",
		Long: `Export categories as yaml or json.

For security, export operations are restricted to these directories:
• the catbar data directory
• the catbar config directory
• <tmp>/catbar

Use relative paths (e.g., 'categories.json') or paths within these directories.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			data, err := encodeExport(s.service.Categories(), format)
			if err != nil {
				return err
			}

			if output == "" {
				fmt.Fprint(cmd.OutOrStdout(), string(data))
				return nil
			}

			if err := ensureSecureDirectories(); err != nil {
				return fmt.Errorf("failed to initialize secure directories: %w", err)
			}

			outputPath, err := validateFilePathStrict(output, getAllowedDirectories(), "export")
			if err != nil {
				return fmt.Errorf("export path validation failed: %w", err)
			}

			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "Would export %d categories to: %s\n", len(s.service.Categories()), outputPath)
				return nil
			}

			err = os.WriteFile(outputPath, data, 0600)
			logTransfer(s.logger, audit.EventExportFile, "export", outputPath, err)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported to: %s\n", outputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", cfg.Export.DefaultFormat, "Export format (yaml, json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path")

	return cmd
}

func encodeExport(categories []category.Category, format string) ([]byte, error) {
	doc := exportDocument{Version: exportVersion, Categories: categories}
	for i := range doc.Categories {
		doc.Categories[i].DraggedOver = false
	}

	switch format {
	case "json":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "yaml":
		return yaml.Marshal(doc)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func importCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Append categories from a file",
		Long: `Append categories from a yaml or json export. Names that are empty or
already present are skipped.

For security, import operations are restricted to these directories:
• the catbar data directory
• the catbar config directory
• <tmp>/catbar

Use relative paths (e.g., 'categories.json') or paths within these directories.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureSecureDirectories(); err != nil {
				return fmt.Errorf("failed to initialize secure directories: %w", err)
			}

			filePath, err := validateFilePathStrict(args[0], getAllowedDirectories(), "import")
			if err != nil {
				return fmt.Errorf("import path validation failed: %w", err)
			}

			data, err := os.ReadFile(filePath)
			if err != nil {
				if logger, logErr := newAuditLogger(); logErr == nil {
					logger.LogFileOperation("read", filePath, false, err.Error())
				}
				return fmt.Errorf("failed to read import file: %w", err)
			}

			if format == "" {
				format = formatFromPath(filePath)
			}
			doc, err := decodeImport(data, format)
			if err != nil {
				return fmt.Errorf("failed to parse import file: %w", err)
			}

			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			accepted, skipped := planImport(s.service.Categories(), doc.Categories)
			out := cmd.OutOrStdout()

			if verbose {
				for _, reason := range skipped {
					fmt.Fprintf(out, "Skipped: %s\n", reason)
				}
			}

			if dryRun {
				fmt.Fprintf(out, "Would import %d categories (%d skipped)\n", len(accepted), len(skipped))
				for _, c := range accepted {
					fmt.Fprintf(out, "  %s\n", c.Name)
				}
				return nil
			}

			if len(accepted) > 0 {
				if err := backupBeforeChange(cmd); err != nil {
					return err
				}
			}

			for _, c := range accepted {
				if err := s.service.AddCategory(cmd.Context(), c); err != nil {
					logTransfer(s.logger, audit.EventImportFile, "import", filePath, err)
					return err
				}
			}
			logTransfer(s.logger, audit.EventImportFile, "import", filePath, nil)

			fmt.Fprintf(out, "Imported %d categories, skipped %d\n", len(accepted), len(skipped))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Import format (yaml, json); detected from the extension when empty")

	return cmd
}

func formatFromPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return "json"
	}
	return "yaml"
}

func decodeImport(data []byte, format string) (exportDocument, error) {
	var doc exportDocument
	var err error

	switch format {
	case "json":
		err = json.Unmarshal(data, &doc)
	case "yaml":
		err = yaml.Unmarshal(data, &doc)
	default:
		return doc, fmt.Errorf("unsupported import format: %s", format)
	}
	if err != nil {
		return doc, err
	}

	if doc.Version > exportVersion {
		return doc, fmt.Errorf("unsupported export version %d", doc.Version)
	}
	return doc, nil
}

// planImport picks the incoming categories that can be appended. Ids that
// are missing or already used get a fresh one.
func planImport(existing, incoming []category.Category) ([]category.Category, []string) {
	current := make([]category.Category, len(existing))
	copy(current, existing)

	var accepted []category.Category
	var skipped []string

	for _, c := range incoming {
		name, err := acceptName(current, c.Name)
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("%q: %v", c.Name, err))
			continue
		}

		next := newCategory(name)
		if c.ID != "" && category.IndexOf(current, c.ID) < 0 {
			next.ID = c.ID
		}

		current = append(current, next)
		accepted = append(accepted, next)
	}

	return accepted, skipped
}

func logTransfer(logger *audit.Logger, eventType audit.EventType, operation, path string, err error) {
	if logger == nil {
		return
	}

	event := audit.AuditEvent{
		EventType: eventType,
		Severity:  audit.SeverityInfo,
		Operation: operation,
		Resource:  path,
		Success:   err == nil,
	}
	if err != nil {
		event.Severity = audit.SeverityError
		event.ErrorMsg = err.Error()
	}
	logger.Log(event)
}

func backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create a backup of the category store",
		RunE: func(cmd *cobra.Command, args []string) error {
			backupMgr := backup.NewManager(cfg)

			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "Would back up %s to %s\n", cfg.StorePath(), backupMgr.Dir())
				return nil
			}

			backupPath, err := backupMgr.CreateBackup()
			if logger, logErr := newAuditLogger(); logErr == nil {
				errMsg := ""
				if err != nil {
					errMsg = err.Error()
				}
				logger.LogBackupOperation("create", backupPath, err == nil, errMsg)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Backup created: %s\n", backupPath)
			return nil
		},
	}

	return cmd
}

func restoreCmd() *cobra.Command {
	var listBackups bool

	cmd := &cobra.Command{
		Use:   "restore [backup-file]",
		Short: "Restore the category store from a backup",
		RunE: func(cmd *cobra.Command, args []string) error {
			backupMgr := backup.NewManager(cfg)
			out := cmd.OutOrStdout()

			if listBackups {
				backups, err := backupMgr.ListBackups()
				if err != nil {
					return err
				}

				if len(backups) == 0 {
					fmt.Fprintln(out, "No backups found")
					return nil
				}

				fmt.Fprintln(out, "Available backups:")
				for i, b := range backups {
					fmt.Fprintf(out, "%d. %s (%s, %s)\n",
						i+1,
						filepath.Base(b.FilePath),
						b.Timestamp.Format("2006-01-02 15:04:05"),
						formatSize(b.Size))
				}
				return nil
			}

			if len(args) == 0 {
				return fmt.Errorf("backup file path required. Use --list to see available backups")
			}

			backupPath, err := validateFilePath(args[0], backupMgr.Dir())
			if err != nil {
				return fmt.Errorf("invalid backup path: %w", err)
			}

			if dryRun {
				fmt.Fprintf(out, "Would restore %s from %s\n", cfg.StorePath(), backupPath)
				return nil
			}

			previous, err := backupMgr.RestoreBackup(backupPath)
			if logger, logErr := newAuditLogger(); logErr == nil {
				errMsg := ""
				if err != nil {
					errMsg = err.Error()
				}
				logger.LogBackupOperation("restore", backupPath, err == nil, errMsg)
			}
			if err != nil {
				return err
			}

			if previous != "" {
				fmt.Fprintf(out, "Current store backed up to: %s\n", previous)
			}
			fmt.Fprintf(out, "Restored from: %s\n", backupPath)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&listBackups, "list", "l", false, "List available backups")

	return cmd
}

func configCmd() *cobra.Command {
	var show bool
	var edit bool
	var path bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case path:
				fmt.Fprintln(cmd.OutOrStdout(), config.Path())
				return nil

			case show:
				data, err := yaml.Marshal(cfg)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), string(data))
				return nil

			case edit:
				editor := cfg.General.Editor
				if editor == "" {
					editor = "nano"
				}

				if !config.IsValidEditor(editor) {
					return fmt.Errorf("editor '%s' is not allowed for security reasons. Allowed editors: nano, vim, vi, emacs, code, notepad", editor)
				}

				parts := strings.Fields(editor)
				err := runCommand(parts[0], append(parts[1:], config.Path())...)
				if logger, logErr := newAuditLogger(); logErr == nil {
					event := audit.AuditEvent{
						EventType: audit.EventConfigEdit,
						Severity:  audit.SeverityInfo,
						Operation: "edit",
						Resource:  config.Path(),
						Success:   err == nil,
					}
					if err != nil {
						event.ErrorMsg = err.Error()
					}
					logger.Log(event)
				}
				return err
			}

			return cmd.Help()
		},
	}

	cmd.Flags().BoolVar(&show, "show", false, "Show current configuration")
	cmd.Flags().BoolVar(&edit, "edit", false, "Edit configuration file")
	cmd.Flags().BoolVar(&path, "path", false, "Print the configuration file path")

	return cmd
}

func auditCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent audit log entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newAuditLogger()
			if err != nil {
				return fmt.Errorf("failed to open audit log: %w", err)
			}

			events, err := logger.GetRecentEvents(limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if verbose {
				fmt.Fprintf(out, "Log: %s\n", logger.GetLogPath())
			}
			if !logger.IsEnabled() {
				fmt.Fprintln(out, "Audit logging is disabled (general.audit_log)")
			}
			if len(events) == 0 {
				fmt.Fprintln(out, "No audit events")
				return nil
			}

			for _, e := range events {
				status := "ok"
				if !e.Success {
					status = "failed"
				}
				fmt.Fprintf(out, "%s  %-18s %-8s %s %s\n",
					e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.EventType, e.Operation, e.Resource, status)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of events to show")

	return cmd
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

// getAllowedDirectories returns the directories import and export may touch
func getAllowedDirectories() []string {
	p := platform.New()
	return []string{
		p.GetDataDir(),
		p.GetConfigDir(),
		p.GetTempDir(),
	}
}

// ensureSecureDirectories creates the allowed directories with proper permissions
func ensureSecureDirectories() error {
	for _, dir := range getAllowedDirectories() {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create secure directory %s: %w", dir, err)
		}
	}
	return nil
}

// validateFilePathStrict resolves filePath against the first allowed
// directory that contains it. Separators are normalized for the host first.
func validateFilePathStrict(filePath string, allowedDirs []string, operation string) (string, error) {
	if len(allowedDirs) == 0 {
		return "", fmt.Errorf("no allowed directories specified for %s operation", operation)
	}

	cleanPath := filepath.Clean(platform.New().SanitizePath(filePath))

	if strings.Contains(cleanPath, "\x00") {
		if logger, err := newAuditLogger(); err == nil {
			logger.LogSecurityViolation("path_validation", filePath, "null byte detected in path", map[string]interface{}{
				"operation": operation,
			})
		}
		return "", fmt.Errorf("invalid path: contains null byte")
	}

	var validationErrors []string
	for _, allowedDir := range allowedDirs {
		validatedPath, err := validateFilePath(cleanPath, allowedDir)
		if err == nil {
			return validatedPath, nil
		}
		validationErrors = append(validationErrors, fmt.Sprintf("%s: %v", allowedDir, err))
	}

	if logger, err := newAuditLogger(); err == nil {
		logger.LogSecurityViolation("path_validation", filePath, "path not in allowed directories", map[string]interface{}{
			"operation":         operation,
			"allowed_dirs":      allowedDirs,
			"validation_errors": validationErrors,
		})
	}

	return "", fmt.Errorf("%s operation denied: path '%s' is not within allowed directories: %v",
		operation, filePath, allowedDirs)
}

// validateFilePath resolves filePath inside allowedDir and rejects anything
// that escapes it
func validateFilePath(filePath string, allowedDir string) (string, error) {
	if allowedDir == "" {
		return "", fmt.Errorf("security error: allowed directory must be specified for path validation")
	}
	if strings.Contains(filePath, "\x00") {
		return "", fmt.Errorf("null byte in path")
	}

	cleanPath := filepath.Clean(filePath)

	absPath := cleanPath
	if !filepath.IsAbs(cleanPath) {
		absPath = filepath.Join(allowedDir, cleanPath)
	}
	absPath = filepath.Clean(absPath)

	allowedDirAbs, err := filepath.Abs(allowedDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve allowed directory: %w", err)
	}

	relPath, err := filepath.Rel(allowedDirAbs, absPath)
	if err != nil {
		return "", fmt.Errorf("failed to compute relative path: %w", err)
	}

	if strings.HasPrefix(relPath, ".."+string(filepath.Separator)) || relPath == ".." {
		return "", fmt.Errorf("path traversal attempt detected: %s", filePath)
	}

	return absPath, nil
}

func runCommand(name string, args ...string) error {
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("invalid command: contains null byte")
	}
	for _, arg := range args {
		if strings.ContainsRune(arg, 0) {
			return fmt.Errorf("invalid argument: contains null byte")
		}
	}

	cmd := exec.Command(name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}
