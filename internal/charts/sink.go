package charts

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/KaramelBytes/habitlens-cli/internal/dataset"
	"github.com/KaramelBytes/habitlens-cli/internal/utils"
)

// Sink receives rendered figures.
type Sink interface {
	Write(fig *Figure) error
}

// DirSink writes each figure to <Dir>/<Name>.<Format>.
type DirSink struct {
	Dir    string
	Format string
}

// Path returns the file a figure is written to.
func (s DirSink) Path(fig *Figure) string {
	format, err := ParseFormat(s.Format)
	if err != nil {
		format = s.Format
	}
	return filepath.Join(s.Dir, fig.Name+"."+format)
}

func (s DirSink) Write(fig *Figure) error {
	if err := utils.EnsureDir(s.Dir); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	var buf bytes.Buffer
	if err := fig.Render(&buf, s.Format); err != nil {
		return err
	}
	return utils.SafeWriteFile(s.Path(fig), buf.Bytes())
}

// RenderAll builds and writes every chart. A failing chart does not stop the
// others; all failures are returned joined.
func RenderAll(ds *dataset.Dataset, sink Sink, opt Options, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	var errs []error
	for _, name := range Names {
		fig, err := ByName(ds, name, opt)
		if err == nil {
			err = sink.Write(fig)
		}
		if err != nil {
			logger.Error("render chart", "chart", name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		logger.Debug("rendered chart", "chart", name)
	}
	return errors.Join(errs...)
}
