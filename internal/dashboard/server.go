// Package dashboard serves the interactive web view of a dataset.
package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/habitlens-cli/internal/cache"
	"github.com/KaramelBytes/habitlens-cli/internal/charts"
	"github.com/KaramelBytes/habitlens-cli/internal/dataset"
	"github.com/KaramelBytes/habitlens-cli/internal/source"
	"github.com/gin-gonic/gin"
)

// CookieName holds the session id.
const CookieName = "habitlens_session"

const sessionKey = "session_id"

// Server wires the routes to a session store and a dataset loader.
type Server struct {
	Loader         *cache.Loader
	Sessions       *Store
	Charts         charts.Options
	MaxUploadBytes int64
	Logger         *slog.Logger
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Router builds the gin engine.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog(), s.session())
	r.SetHTMLTemplate(pageTemplate)

	r.GET("/", s.index)
	r.POST("/upload", s.upload)
	r.GET("/charts/:name", s.chart)
	r.GET("/api/summary", s.summary)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.Sessions.Len()})
	})
	return r
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger().Info("dashboard listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger().Info("dashboard shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger().Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"took", time.Since(start).Round(time.Microsecond))
	}
}

// session resolves the cookie to a live session, creating one when needed.
func (s *Server) session() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, err := c.Cookie(CookieName); err == nil {
			if _, ok := s.Sessions.Get(id); ok {
				c.Set(sessionKey, id)
				c.Next()
				return
			}
		}
		sess := s.Sessions.Create()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CookieName, sess.ID, 0, "/", "", false, true)
		c.Set(sessionKey, sess.ID)
		c.Next()
	}
}

func (s *Server) current(c *gin.Context) Session {
	sess, _ := s.Sessions.Get(c.GetString(sessionKey))
	return sess
}

func (s *Server) index(c *gin.Context) {
	sess := s.current(c)
	data := pageData{
		Archive: sess.Archive,
		Message: sess.Message,
		MaxMB:   s.MaxUploadBytes >> 20,
	}
	for _, name := range charts.Names {
		data.Charts = append(data.Charts, chartLink{Name: name, Label: chartLabel(name)})
	}
	if sess.Dataset != nil {
		data.Summary = sess.Dataset.Describe(dataset.DefaultDescribeOptions())
		data.Selected = charts.NameHistograms
		if sel := c.Query("chart"); isChart(sel) {
			data.Selected = sel
		}
	}
	c.HTML(http.StatusOK, "index", data)
}

func (s *Server) upload(c *gin.Context) {
	id := c.GetString(sessionKey)
	if s.MaxUploadBytes > 0 {
		// allow for multipart framing around the file itself
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.MaxUploadBytes+1<<20)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		s.Sessions.Fail(id, uploadMessage(fmt.Errorf("read upload: %w", err)))
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	f, err := fh.Open()
	if err != nil {
		s.Sessions.Fail(id, uploadMessage(err))
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	defer f.Close()

	archive, err := source.Upload{Name: fh.Filename, Reader: f, MaxBytes: s.MaxUploadBytes}.Open(c.Request.Context())
	if err == nil {
		var ds *dataset.Dataset
		var hit bool
		ds, hit, err = s.Loader.Load(c.Request.Context(), archive)
		if err == nil {
			s.Sessions.Bind(id, fh.Filename, ds)
			s.logger().Info("upload loaded", "file", fh.Filename, "rows", ds.Len(), "cache_hit", hit)
			c.Redirect(http.StatusSeeOther, "/")
			return
		}
	}
	s.logger().Warn("upload rejected", "file", fh.Filename, "error", err)
	s.Sessions.Fail(id, uploadMessage(err))
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) chart(c *gin.Context) {
	name := c.Param("name")
	if !isChart(name) {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("%v: %s", charts.ErrUnknownChart, name)})
		return
	}
	sess := s.current(c)
	if sess.Dataset == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "no dataset loaded"})
		return
	}
	format, err := charts.ParseFormat(c.DefaultQuery("format", "png"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fig, err := charts.ByName(sess.Dataset, name, s.Charts)
	if err != nil {
		s.logger().Error("build chart", "chart", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	var buf bytes.Buffer
	if err := fig.Render(&buf, format); err != nil {
		s.logger().Error("render chart", "chart", fig.Name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, charts.ContentType(format), buf.Bytes())
}

func (s *Server) summary(c *gin.Context) {
	sess := s.current(c)
	if sess.Dataset == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "no dataset loaded"})
		return
	}
	opt := dataset.DefaultDescribeOptions()
	opt.Correlations = c.Query("correlations") != "false"
	c.JSON(http.StatusOK, sess.Dataset.Describe(opt))
}

// uploadMessage keeps the specific cause of a failed load.
func uploadMessage(err error) string {
	var mce *dataset.MissingColumnError
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &mce):
		return "The CSV is missing required columns: " + strings.Join(mce.Columns, ", ")
	case errors.Is(err, dataset.ErrNoCSVFound):
		return "No CSV file found in ZIP archive."
	case errors.Is(err, dataset.ErrInvalidArchive):
		return "The uploaded file is not a valid ZIP archive."
	case errors.Is(err, source.ErrTooLarge), errors.As(err, &mbe):
		return "The uploaded file is too large."
	default:
		return "Error loading file: " + err.Error()
	}
}

func isChart(name string) bool {
	for _, n := range charts.Names {
		if n == name {
			return true
		}
	}
	return false
}

func chartLabel(name string) string {
	switch name {
	case charts.NameHistograms:
		return "Distributions"
	case charts.NameBarplot:
		return "Exam Score by Job"
	case charts.NameRegression:
		return "Screen Time vs Score"
	case charts.NameScatter:
		return "Study vs Score"
	}
	return name
}

func formatNum(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
