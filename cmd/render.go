package cmd

import (
	"io"

	"github.com/KaramelBytes/habitlens-cli/internal/charts"
	"github.com/spf13/cobra"
)

var (
	renderOutputDir string
	renderFormat    string
	renderGridCols  int
	renderForce     bool
)

var renderCmd = &cobra.Command{
	Use:   "render [zip]",
	Short: "Render the four charts to image files",
	Long: `Render histograms, barplot_exam_score, regression_total_screen_time and
scatter_study_vs_exam into the output directory. Without a ZIP path the
configured remote dataset is downloaded (or the previous download reused).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := renderFormat
		if format == "" {
			format = cfg.ImageFormat
		}
		format, err := charts.ParseFormat(format)
		if err != nil {
			return err
		}
		dir := renderOutputDir
		if dir == "" {
			dir = cfg.OutputDir
		}
		opt := charts.Options{GridColumns: cfg.GridColumns}
		if renderGridCols > 0 {
			opt.GridColumns = renderGridCols
		}

		ds, err := loadDataset(cmd.Context(), inputSource(args, renderForce))
		if err != nil {
			return err
		}
		sink := reportingSink{DirSink: charts.DirSink{Dir: dir, Format: format}, out: cmd.OutOrStdout()}
		return charts.RenderAll(ds, sink, opt, logger)
	},
}

// reportingSink prints each file once it is written.
type reportingSink struct {
	charts.DirSink
	out io.Writer
}

func (s reportingSink) Write(fig *charts.Figure) error {
	if err := s.DirSink.Write(fig); err != nil {
		return err
	}
	success.Fprintf(s.out, "✓ Wrote %s\n", s.Path(fig))
	return nil
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVarP(&renderOutputDir, "output-dir", "o", "", "directory for image files (default from config)")
	renderCmd.Flags().StringVar(&renderFormat, "format", "", "image format: png, svg or pdf (default from config)")
	renderCmd.Flags().IntVar(&renderGridCols, "grid-columns", 0, "histogram grid width (default from config)")
	renderCmd.Flags().BoolVar(&renderForce, "force", false, "re-download the remote dataset")
}
