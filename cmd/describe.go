package cmd

import (
	"fmt"

	"github.com/KaramelBytes/habitlens-cli/internal/dataset"
	"github.com/spf13/cobra"
)

var (
	descMarkdown bool
	descCorr     bool
	descTop      int
	descForce    bool
)

var describeCmd = &cobra.Command{
	Use:   "describe [zip]",
	Short: "Print a per-column summary of the dataset",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(cmd.Context(), inputSource(args, descForce))
		if err != nil {
			return err
		}
		opt := dataset.DefaultDescribeOptions()
		opt.Correlations = descCorr
		if descTop > 0 {
			opt.TopValues = descTop
		}
		sum := ds.Describe(opt)
		out := cmd.OutOrStdout()
		if descMarkdown {
			fmt.Fprint(out, sum.Markdown())
			return nil
		}
		writeSummaryTable(out, sum)
		if descCorr {
			writeCorrTable(out, sum.Corr, 5)
		}
		if len(ds.NumericColumns()) == 0 {
			warning.Fprintln(out, "⚠ No numeric columns detected; the histogram grid would be empty.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().BoolVar(&descMarkdown, "markdown", false, "print the Markdown summary instead of a table")
	describeCmd.Flags().BoolVar(&descCorr, "correlations", false, "include Pearson correlations between numeric columns")
	describeCmd.Flags().IntVar(&descTop, "top", 0, "top values listed per categorical column")
	describeCmd.Flags().BoolVar(&descForce, "force", false, "re-download the remote dataset")
}
