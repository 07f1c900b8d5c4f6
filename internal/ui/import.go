package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/vendas/internal/db"
	"github.com/javiermolinar/vendas/internal/sales"
)

func (a *App) importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [database_path]",
		Short: "Import actors and records from another database",
		Long: `Import every actor and record from another Vendas database into the
current one. Entries whose ID already exists are skipped, so importing
the same file twice is harmless.

Example:
  vendas import /path/to/other.db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			sourcePath, err := resolvePath(args[0])
			if err != nil {
				return err
			}
			destPath, err := resolvePath(a.config.Storage.DBPath)
			if err != nil {
				return err
			}

			if sourcePath == destPath {
				return fmt.Errorf("source database matches current database")
			}

			info, err := os.Stat(sourcePath)
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("source database does not exist: %s", sourcePath)
				}
				return fmt.Errorf("checking source database: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("source database path is a directory: %s", sourcePath)
			}

			res, err := importData(cmd.Context(), a.repo, sourcePath)
			if err != nil {
				return err
			}
			a.reports.Purge()
			a.logger.Debug("import finished", "source", sourcePath, "actors", res.Actors, "records", res.Records, "skipped", res.Skipped)

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d actors and %d records from %s (%d already present)\n",
				res.Actors, res.Records, sourcePath, res.Skipped)
			return nil
		},
	}

	return cmd
}

// importResult counts what importData copied.
type importResult struct {
	Actors  int
	Records int
	Skipped int
}

func importData(ctx context.Context, dest sales.Repository, sourcePath string) (importResult, error) {
	var res importResult

	sourceRepo, err := db.New(sourcePath)
	if err != nil {
		return res, fmt.Errorf("opening source database: %w", err)
	}
	defer func() { _ = sourceRepo.Close() }()

	// Supervisors come first so team members can reference them.
	actors, err := sourceRepo.ListAllActors(ctx)
	if err != nil {
		return res, fmt.Errorf("listing source actors: %w", err)
	}
	for _, actor := range actors {
		_, err := dest.GetActor(ctx, actor.ID)
		if err == nil {
			res.Skipped++
			continue
		}
		if !errors.Is(err, sales.ErrActorNotFound) {
			return res, err
		}
		if err := dest.CreateActor(ctx, actor); err != nil {
			return res, fmt.Errorf("importing actor %q: %w", actor.Name, err)
		}
		res.Actors++
	}

	records, err := sourceRepo.ListAllRecords(ctx)
	if err != nil {
		return res, fmt.Errorf("listing source records: %w", err)
	}
	fresh := make([]*sales.Record, 0, len(records))
	for _, r := range records {
		_, err := dest.GetRecord(ctx, r.ID)
		if err == nil {
			res.Skipped++
			continue
		}
		if !errors.Is(err, sales.ErrRecordNotFound) {
			return res, err
		}
		fresh = append(fresh, r)
	}
	if err := dest.CreateRecords(ctx, fresh); err != nil {
		return res, fmt.Errorf("importing records: %w", err)
	}
	res.Records = len(fresh)

	return res, nil
}

func resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	return absPath, nil
}
