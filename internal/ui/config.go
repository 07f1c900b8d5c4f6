package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/vendas/internal/config"
	"github.com/javiermolinar/vendas/internal/tui/theme"
)

func (a *App) configCmd() *cobra.Command {
	var (
		initFile bool
		edit     bool
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Show the effective configuration.

With --init, writes the current values to the config file if it does not
exist yet. With --edit, prompts for the most common settings and saves them.

Example:
  vendas config --init`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			path := a.configPath
			if path == "" {
				path = config.DefaultConfigPath()
			}
			fmt.Fprintf(out, "Config file: %s\n\n", path)

			if initFile {
				if _, err := os.Stat(path); err == nil {
					fmt.Fprintln(out, "Config file already exists, leaving it unchanged.")
				} else if os.IsNotExist(err) {
					if err := a.config.SaveTo(path); err != nil {
						return fmt.Errorf("saving config: %w", err)
					}
					fmt.Fprintf(out, "Created %s\n\n", path)
				} else {
					return fmt.Errorf("checking config file: %w", err)
				}
			}

			printConfig(out, a.config)

			if !edit {
				return nil
			}
			reader := bufio.NewReader(cmd.InOrStdin())
			if err := editConfig(reader, out, a.config); err != nil {
				return err
			}
			if err := a.config.SaveTo(path); err != nil {
				return fmt.Errorf("saving config: %w", err)
			}
			fmt.Fprintln(out, "\nConfiguration saved!")
			return nil
		},
	}

	cmd.Flags().BoolVar(&initFile, "init", false, "Write the config file if it does not exist")
	cmd.Flags().BoolVar(&edit, "edit", false, "Edit common settings interactively")
	return cmd
}

func editConfig(reader *bufio.Reader, out io.Writer, cfg *config.Config) error {
	cfg.Business.Timezone = promptValue(reader, out, "Timezone", cfg.Business.Timezone)
	cfg.Schedule.DayStart = promptValue(reader, out, "Day start", cfg.Schedule.DayStart)
	cfg.Schedule.DayEnd = promptValue(reader, out, "Day end", cfg.Schedule.DayEnd)
	cfg.Schedule.Workdays = promptSlice(reader, out, "Workdays (comma-separated)", cfg.Schedule.Workdays)
	cfg.Storage.DBPath = promptValue(reader, out, "Database path", cfg.Storage.DBPath)
	cfg.Linker.MinInterval = promptValue(reader, out, "Auto-link interval", cfg.Linker.MinInterval)
	cfg.Log.Level = promptValue(reader, out, "Log level", cfg.Log.Level)
	cfg.UI.Theme = promptTheme(reader, out, cfg.UI.Theme)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func printConfig(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintln(out, "──────────────────────")
	fmt.Fprintln(out, "[business]")
	fmt.Fprintf(out, "  timezone        = %s\n", cfg.Business.Timezone)
	fmt.Fprintln(out, "\n[schedule]")
	fmt.Fprintf(out, "  workdays        = %s\n", strings.Join(cfg.Schedule.Workdays, ", "))
	fmt.Fprintf(out, "  day_start       = %s\n", cfg.Schedule.DayStart)
	fmt.Fprintf(out, "  day_end         = %s\n", cfg.Schedule.DayEnd)
	fmt.Fprintf(out, "  meeting_minutes = %d\n", cfg.Schedule.MeetingMinutes)
	fmt.Fprintln(out, "\n[storage]")
	fmt.Fprintf(out, "  db_path         = %s\n", cfg.Storage.DBPath)
	fmt.Fprintln(out, "\n[commission]")
	for _, t := range cfg.Commission.Tiers {
		fmt.Fprintf(out, "  rate >= %3.0f%%    -> %s%%\n", t.MinRate*100, t.Percent)
	}
	fmt.Fprintln(out, "\n[scoring]")
	fmt.Fprintf(out, "  per_conversion  = %d\n", cfg.Scoring.PerConversion)
	fmt.Fprintf(out, "  per_record      = %d\n", cfg.Scoring.PerRecord)
	fmt.Fprintf(out, "  bonus           = %d at %.0f%%\n", cfg.Scoring.BonusPoints, cfg.Scoring.BonusRate*100)
	fmt.Fprintln(out, "\n[cache]")
	fmt.Fprintf(out, "  size            = %d\n", cfg.Cache.Size)
	fmt.Fprintf(out, "  freshness       = %s\n", cfg.Cache.Freshness)
	fmt.Fprintln(out, "\n[refresh]")
	fmt.Fprintf(out, "  debounce        = %s\n", cfg.Refresh.Debounce)
	fmt.Fprintln(out, "\n[linker]")
	fmt.Fprintf(out, "  min_interval    = %s\n", cfg.Linker.MinInterval)
	fmt.Fprintln(out, "\n[log]")
	fmt.Fprintf(out, "  level           = %s\n", cfg.Log.Level)
	fmt.Fprintf(out, "  format          = %s\n", cfg.Log.Format)
	fmt.Fprintln(out, "\n[ui]")
	fmt.Fprintf(out, "  theme           = %s\n", cfg.UI.Theme)
}

func promptValue(reader *bufio.Reader, out io.Writer, label, current string) string {
	if current == "" {
		fmt.Fprintf(out, "  %s: ", label)
	} else {
		fmt.Fprintf(out, "  %s [%s]: ", label, current)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

func promptSlice(reader *bufio.Reader, out io.Writer, label string, current []string) []string {
	currentStr := strings.Join(current, ", ")
	fmt.Fprintf(out, "  %s [%s]: ", label, currentStr)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

func promptTheme(reader *bufio.Reader, out io.Writer, current string) string {
	options := strings.Join(theme.Available(), ", ")
	value := strings.ToLower(promptValue(reader, out, fmt.Sprintf("Dashboard theme (%s)", options), current))
	if !theme.IsAvailable(value) {
		fmt.Fprintf(out, "  Invalid theme %q, keeping %s\n", value, current)
		return current
	}
	return value
}
