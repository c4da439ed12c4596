package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/sporesheet-cli/internal/sheet"
	"github.com/KaramelBytes/sporesheet-cli/internal/workbook"
)

var samplesSheet string

var samplesCmd = &cobra.Command{
	Use:   "samples <workbook>",
	Short: "List the sample columns of a workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := workbook.Open(args[0], workbookOptions(samplesSheet))
		if err != nil {
			return err
		}
		defer w.Close()
		samples, err := sheet.Samples(w)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(samples) == 0 {
			fmt.Fprintln(out, "(no samples)")
			return nil
		}
		for _, s := range samples {
			fmt.Fprintf(out, "- %s: %s\n", columnName(s.Index), s.ID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(samplesCmd)
	samplesCmd.Flags().StringVar(&samplesSheet, "sheet", "", "worksheet name (default: configured sheet or the active one)")
}
