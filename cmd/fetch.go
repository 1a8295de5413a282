package cmd

import "github.com/spf13/cobra"

var (
	fetchFileID string
	fetchURL    string
	fetchDest   string
	fetchForce  bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the dataset archive",
	Long:  "Download the dataset ZIP from Google Drive (or --url). An existing file at the destination is reused unless --force is set.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r := remoteSource(fetchFileID, fetchURL, fetchDest, fetchForce)
		path, err := r.Fetch(cmd.Context())
		if err != nil {
			return err
		}
		success.Fprintf(cmd.OutOrStdout(), "✓ Dataset available at %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().StringVar(&fetchFileID, "file-id", "", "Google Drive file id (default from config)")
	fetchCmd.Flags().StringVar(&fetchURL, "url", "", "direct download URL; overrides --file-id")
	fetchCmd.Flags().StringVar(&fetchDest, "dest", "", "download path (default from config)")
	fetchCmd.Flags().BoolVar(&fetchForce, "force", false, "re-download even if the file exists")
}
