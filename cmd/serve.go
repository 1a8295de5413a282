package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/KaramelBytes/habitlens-cli/internal/cache"
	"github.com/KaramelBytes/habitlens-cli/internal/charts"
	"github.com/KaramelBytes/habitlens-cli/internal/dashboard"
	"github.com/spf13/cobra"
)

var (
	serveAddr   string
	serveRemote bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the interactive dashboard",
	Long:  "Serve a web dashboard where a ZIP can be uploaded and each chart viewed. With --remote, new sessions start with the downloaded dataset.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		addr := serveAddr
		if addr == "" {
			addr = cfg.ListenAddr
		}
		store := cache.New(ctx, cache.Options{
			Backend:   cfg.CacheBackend,
			Capacity:  cfg.CacheCapacity,
			RedisAddr: cfg.RedisAddr,
			TTL:       cfg.CacheTTL(),
		}, logger)
		srv := &dashboard.Server{
			Loader:         &cache.Loader{Cache: store, Logger: logger},
			Sessions:       dashboard.NewStore(cfg.SessionTTL()),
			Charts:         charts.Options{GridColumns: cfg.GridColumns},
			MaxUploadBytes: cfg.MaxUploadBytes(),
			Logger:         logger,
		}
		if serveRemote {
			if err := preload(ctx, srv); err != nil {
				return err
			}
		}
		success.Fprintf(cmd.OutOrStdout(), "✓ Dashboard on http://%s\n", displayAddr(addr))
		return srv.Run(ctx, addr)
	},
}

// preload downloads the configured dataset and seeds new sessions with it.
func preload(ctx context.Context, srv *dashboard.Server) error {
	r := remoteSource("", "", "", false)
	a, err := r.Open(ctx)
	if err != nil {
		return err
	}
	ds, _, err := srv.Loader.Load(ctx, a)
	if err != nil {
		return err
	}
	srv.Sessions.Seed, srv.Sessions.SeedArchive = ds, a.Name
	return nil
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveRemote, "remote", false, "preload the remote dataset for new sessions")
}
