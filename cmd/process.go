package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/sporesheet-cli/internal/ingest"
	"github.com/KaramelBytes/sporesheet-cli/internal/utils"
)

var (
	procSheet          string
	procSpanMode       string
	procNoBackup       bool
	procBackupDir      string
	procDryRun         bool
	procAllowDuplicate bool
	procJSON           bool
)

var processCmd = &cobra.Command{
	Use:   "process <report> <workbook>",
	Short: "Merge a report's outdoor sample into a workbook and recompute statistics",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := ingestOptions(procSheet, procSpanMode, procNoBackup, procBackupDir, procDryRun)
		if err != nil {
			return err
		}
		opts.Report = args[0]
		opts.Workbook = args[1]
		opts.AllowDuplicateSamples = procAllowDuplicate || settings().AllowDuplicateSamples
		out, err := ingest.Run(opts)
		if err != nil {
			return err
		}
		if procJSON {
			return utils.WriteJSON(cmd.OutOrStdout(), out)
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "✓ Merged sample %s into column %s (%d label(s) matched)\n",
			out.SampleID, columnName(out.Column), len(out.Matched))
		if len(out.Unmatched) > 0 {
			fmt.Fprintf(w, "⚠ Not in sheet, skipped: %s\n", strings.Join(out.Unmatched, ", "))
		}
		if len(out.Unreadable) > 0 {
			fmt.Fprintf(w, "⚠ Unreadable values, cells cleared: %s\n", strings.Join(out.Unreadable, ", "))
		}
		printSaved(w, out, opts.Workbook)
		return nil
	},
}

var (
	recSheet     string
	recSpanMode  string
	recNoBackup  bool
	recBackupDir string
	recDryRun    bool
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute <workbook>",
	Short: "Clear and recompute the statistics block of a workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := ingestOptions(recSheet, recSpanMode, recNoBackup, recBackupDir, recDryRun)
		if err != nil {
			return err
		}
		opts.Workbook = args[0]
		out, err := ingest.Recompute(opts)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "✓ Recomputed statistics for %d row(s)\n", out.Rows)
		printSaved(w, out, opts.Workbook)
		return nil
	},
}

func ingestOptions(sheetFlag, spanFlag string, noBackup bool, backupDir string, dryRun bool) (ingest.Options, error) {
	mode, err := spanMode(spanFlag)
	if err != nil {
		return ingest.Options{}, err
	}
	s := settings()
	wo := workbookOptions(sheetFlag)
	opts := ingest.Options{
		Sheet:     wo.Sheet,
		Font:      wo.Font,
		SpanMode:  mode,
		Backup:    s.Backup && !noBackup,
		BackupDir: s.BackupDir,
		DryRun:    dryRun,
		Extract:   extractOptions(),
		Logger:    logger,
	}
	if backupDir != "" {
		opts.BackupDir = backupDir
	}
	if opts.Backup && opts.BackupDir != "" && !dryRun {
		if err := utils.EnsureDir(opts.BackupDir); err != nil {
			return ingest.Options{}, fmt.Errorf("backup dir: %w", err)
		}
	}
	return opts, nil
}

func printSaved(w io.Writer, out *ingest.Outcome, path string) {
	if !out.Saved {
		fmt.Fprintln(w, "(dry run: workbook not saved)")
		return
	}
	if out.BackupPath != "" {
		fmt.Fprintf(w, "✓ Backup: %s\n", out.BackupPath)
	}
	fmt.Fprintf(w, "✓ Saved %s\n", filepath.Base(path))
}

func columnName(col int) string {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return fmt.Sprint(col)
	}
	return name
}

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().StringVar(&procSheet, "sheet", "", "worksheet name (default: configured sheet or the active one)")
	processCmd.Flags().StringVar(&procSpanMode, "span-mode", "", "sample span for order statistics: uniform or legacy")
	processCmd.Flags().BoolVar(&procNoBackup, "no-backup", false, "do not copy the workbook before saving")
	processCmd.Flags().StringVar(&procBackupDir, "backup-dir", "", "directory for backup copies (default: next to the workbook)")
	processCmd.Flags().BoolVar(&procDryRun, "dry-run", false, "compute everything but do not save")
	processCmd.Flags().BoolVar(&procAllowDuplicate, "allow-duplicate", false, "merge even if the sample id already has a column")
	processCmd.Flags().BoolVar(&procJSON, "json", false, "print the outcome as JSON")

	rootCmd.AddCommand(recomputeCmd)
	recomputeCmd.Flags().StringVar(&recSheet, "sheet", "", "worksheet name (default: configured sheet or the active one)")
	recomputeCmd.Flags().StringVar(&recSpanMode, "span-mode", "", "sample span for order statistics: uniform or legacy")
	recomputeCmd.Flags().BoolVar(&recNoBackup, "no-backup", false, "do not copy the workbook before saving")
	recomputeCmd.Flags().StringVar(&recBackupDir, "backup-dir", "", "directory for backup copies (default: next to the workbook)")
	recomputeCmd.Flags().BoolVar(&recDryRun, "dry-run", false, "compute everything but do not save")
}
