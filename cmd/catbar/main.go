package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/brandonhon/catbar/internal/audit"
	"github.com/brandonhon/catbar/internal/backup"
	"github.com/brandonhon/catbar/internal/category"
	"github.com/brandonhon/catbar/internal/category/file"
	"github.com/brandonhon/catbar/internal/category/sqlite"
	"github.com/brandonhon/catbar/internal/config"
	"github.com/brandonhon/catbar/internal/errors"
	"github.com/brandonhon/catbar/internal/sidebar"
	"github.com/brandonhon/catbar/pkg/search"
)

var (
	cfg     *config.Config
	verbose bool
	dryRun  bool
	version = "dev" // Will be overridden by ldflags during build
)

func main() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", errors.SanitizeError(err))
		os.Exit(1)
	}

	if err := ensureSecureDirectories(); err != nil {
		if logger, logErr := newAuditLogger(); logErr == nil {
			logger.LogSecurityViolation("startup", "directory_initialization", err.Error(), nil)
		}
		fmt.Fprintf(os.Stderr, "Warning: Failed to initialize secure directories: %v\n", errors.SanitizeError(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if logger, logErr := newAuditLogger(); logErr == nil && errors.IsSecuritySensitive(err) {
			logger.LogSecurityViolation("command_execution", "root_command", err.Error(), nil)
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n", errors.FormatUserError(commandName(), err))
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "catbar",
		Short: "Category sidebar for the terminal",
		Long: `catbar keeps an ordered list of named categories. It offers an
interactive sidebar with a context menu, inline create and rename, and
animated rows, plus commands for scripting, backup and import/export.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", cfg.General.Verbose, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", cfg.General.DryRun, "Show what would be done without making changes")

	rootCmd.AddCommand(
		tuiCmd(),
		listCmd(),
		addCmd(),
		renameCmd(),
		searchCmd(),
		exportCmd(),
		importCmd(),
		backupCmd(),
		restoreCmd(),
		configCmd(),
		auditCmd(),
	)

	return rootCmd
}

// session is an open store with the in-memory service on top.
type session struct {
	store   category.Store
	service *category.Service
	logger  *audit.Logger
}

func openStore() (category.Store, error) {
	path := cfg.StorePath()
	switch cfg.Store.Driver {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
		return sqlite.New(path)
	default:
		return file.New(path)
	}
}

func openSession(ctx context.Context) (*session, error) {
	store, err := openStore()
	if err != nil {
		return nil, fmt.Errorf("failed to open category store: %w", err)
	}

	s := &session{store: store}
	if logger, err := newAuditLogger(); err == nil {
		s.logger = logger
	} else if verbose {
		fmt.Fprintf(os.Stderr, "Warning: audit logging disabled: %v\n", err)
	}

	s.service, err = category.NewService(ctx, store, s.auditor())
	if err != nil {
		store.Close()
		return nil, err
	}
	return s, nil
}

// auditor is nil when no logger could be opened.
func (s *session) auditor() sidebar.Auditor {
	if s.logger == nil {
		return nil
	}
	return s.logger
}

func (s *session) Close() error {
	return s.store.Close()
}

// find resolves a category by id first, then by name.
func (s *session) find(ref string) (category.Category, error) {
	categories := s.service.Categories()
	if idx := category.IndexOf(categories, ref); idx >= 0 {
		return categories[idx], nil
	}
	if c, ok := search.NewSearcher(true, false).Lookup(categories, ref); ok {
		return c, nil
	}
	return category.Category{}, fmt.Errorf("%w: %s", category.ErrNotFound, ref)
}

// acceptName applies the commit rules plus the command line limits.
func acceptName(existing []category.Category, raw string) (string, error) {
	name, err := category.CommitName(existing, raw)
	if err != nil {
		return "", fmt.Errorf("invalid category name: %w", err)
	}
	if err := category.ValidateName(name); err != nil {
		return "", fmt.Errorf("invalid category name: %w", err)
	}
	return name, nil
}

// backupBeforeChange snapshots the store when auto backup is on and
// there is something to snapshot.
func backupBeforeChange(cmd *cobra.Command) error {
	if !cfg.General.AutoBackup {
		return nil
	}
	if _, err := os.Stat(cfg.StorePath()); os.IsNotExist(err) {
		return nil
	}

	backupPath, err := backup.NewManager(cfg).CreateBackup()
	if logger, logErr := newAuditLogger(); logErr == nil {
		errMsg := ""
		if err != nil {
			errMsg = err.Error()
		}
		logger.LogBackupOperation("create", backupPath, err == nil, errMsg)
	}
	if err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}

	if verbose {
		fmt.Fprintln(cmd.OutOrStdout(), "Backup created successfully")
	}
	return nil
}

func newCategory(name string) category.Category {
	return category.Category{ID: uuid.NewString(), Name: name}
}

// commandName is the subcommand named on the command line, for error output.
func commandName() string {
	for _, arg := range os.Args[1:] {
		if !strings.HasPrefix(arg, "-") {
			return arg
		}
	}
	return "catbar"
}

// newAuditLogger opens the audit log, muted when general.audit_log is off.
func newAuditLogger() (*audit.Logger, error) {
	logger, err := audit.NewLogger()
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		logger.SetEnabled(cfg.General.AuditLog)
	}
	return logger, nil
}
