package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/sporesheet-cli/internal/report"
	"github.com/KaramelBytes/sporesheet-cli/internal/utils"
	"github.com/KaramelBytes/sporesheet-cli/internal/workbook"
)

var (
	summarySheet string
	summaryOut   string
	summaryHTML  bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary <workbook>",
	Short: "Render the statistics block as Markdown or HTML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := workbook.Open(args[0], workbookOptions(summarySheet))
		if err != nil {
			return err
		}
		defer w.Close()
		s, err := report.Build(w, filepath.Base(args[0]))
		if err != nil {
			return err
		}
		var body []byte
		if summaryHTML {
			body = s.HTML()
		} else {
			body = []byte(s.Markdown())
		}
		if summaryOut == "" {
			_, err := cmd.OutOrStdout().Write(body)
			return err
		}
		if err := utils.SafeWriteFile(summaryOut, body); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Summary written: %s\n", summaryOut)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().StringVar(&summarySheet, "sheet", "", "worksheet name (default: configured sheet or the active one)")
	summaryCmd.Flags().StringVarP(&summaryOut, "output", "o", "", "write to file instead of stdout")
	summaryCmd.Flags().BoolVar(&summaryHTML, "html", false, "render a standalone HTML page")
}
