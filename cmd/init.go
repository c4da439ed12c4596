package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/sporesheet-cli/internal/extract"
	"github.com/KaramelBytes/sporesheet-cli/internal/utils"
	"github.com/KaramelBytes/sporesheet-cli/internal/workbook"
)

var (
	initLabels      string
	initFrom        string
	initSpare       int
	initTitle       string
	initSheet       string
	initLabelHeader string
)

var initCmd = &cobra.Command{
	Use:   "init <workbook.xlsx>",
	Short: "Create a new spore-count workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		// Refuse to overwrite an existing workbook.
		if utils.FileExists(path) {
			return fmt.Errorf("%s already exists; refusing to overwrite", path)
		}
		if (initLabels == "") == (initFrom == "") {
			return fmt.Errorf("specify exactly one of --labels or --from")
		}
		var labels []string
		if initFrom != "" {
			res, err := extract.File(initFrom, extractOptions())
			if err != nil {
				return err
			}
			labels = res.Labels
		} else {
			for _, l := range strings.Split(initLabels, ",") {
				if l = strings.TrimSpace(l); l != "" {
					labels = append(labels, l)
				}
			}
		}
		if len(labels) == 0 {
			return fmt.Errorf("no spore types to lay out")
		}
		if initSpare < 0 {
			return fmt.Errorf("--spare cannot be negative")
		}
		opts := workbookOptions(initSheet)
		w, err := workbook.Create(path, opts, workbook.Template{
			Title:       initTitle,
			LabelHeader: initLabelHeader,
			Spare:       initSpare,
			Labels:      labels,
		})
		if err != nil {
			return err
		}
		defer w.Close()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Workbook created: %s (%d spore types, sheet %s)\n", path, len(labels), w.Sheet())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initLabels, "labels", "", "comma-separated spore types, one row each")
	initCmd.Flags().StringVar(&initFrom, "from", "", "take the spore types from a lab report")
	initCmd.Flags().IntVar(&initSpare, "spare", 0, "blank sample columns to reserve before Total")
	initCmd.Flags().StringVar(&initTitle, "title", "", "title written to A1")
	initCmd.Flags().StringVar(&initSheet, "sheet", "", "worksheet name (default Spores)")
	initCmd.Flags().StringVar(&initLabelHeader, "label-header", "", "header of the label column (default Spore Type)")
}
