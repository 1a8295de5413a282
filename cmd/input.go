package cmd

import (
	"context"
	"net/http"
	"time"

	"github.com/KaramelBytes/habitlens-cli/internal/cache"
	"github.com/KaramelBytes/habitlens-cli/internal/dataset"
	"github.com/KaramelBytes/habitlens-cli/internal/source"
)

// remoteSource builds the downloader from config. Empty fileID/url/dest fall back to config.
func remoteSource(fileID, url, dest string, force bool) *source.Remote {
	if fileID == "" {
		fileID = cfg.DriveFileID
	}
	if url == "" {
		url = cfg.DatasetURL
	}
	if dest == "" {
		dest = cfg.DownloadPath
	}
	return &source.Remote{
		FileID: fileID,
		URL:    url,
		Dest:   dest,
		Force:  force,
		Client: &http.Client{Timeout: cfg.HTTPTimeout()},
		Retry: source.RetryPolicy{
			MaxAttempts: cfg.RetryMaxAttempts,
			BaseDelay:   time.Duration(cfg.RetryBaseDelayMs) * time.Millisecond,
			MaxDelay:    time.Duration(cfg.RetryMaxDelayMs) * time.Millisecond,
		},
		Logger: logger,
	}
}

// inputSource picks a local archive when a path is given, otherwise the
// configured remote dataset (reusing an earlier download).
func inputSource(args []string, force bool) source.Source {
	if len(args) > 0 && args[0] != "" {
		return source.Local{Path: args[0]}
	}
	return remoteSource("", "", "", force)
}

// loadDataset opens src and parses it. The CLI loads once per run, so no cache.
func loadDataset(ctx context.Context, src source.Source) (*dataset.Dataset, error) {
	a, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	ds, _, err := (&cache.Loader{Logger: logger}).Load(ctx, a)
	return ds, err
}
