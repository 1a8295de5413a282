package dashboard

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/habitlens-cli/internal/cache"
	"github.com/KaramelBytes/habitlens-cli/internal/dataset"
)

const studentsCSV = "student_id,age,study_hours_per_day,social_media_hours,netflix_hours,part_time_job,exam_score\n" +
	"S1,23,0.0,1.2,1.1,No,56.2\n" +
	"S2,20,6.9,2.8,2.3,No,100.0\n" +
	"S3,21,1.4,3.1,1.3,No,34.3\n" +
	"S4,23,1.0,3.9,1.0,Yes,45.1\n" +
	"S5,19,5.0,4.4,0.5,Yes,66.4\n"

func zipBytes(t *testing.T, name, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	if err != nil {
		t.Fatalf("zip: %v", err)
	}
	_, _ = io.WriteString(w, body)
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newServer(maxBytes int64) *Server {
	log := quiet()
	return &Server{
		Loader:         &cache.Loader{Cache: cache.NewMemory(1), Logger: log},
		Sessions:       NewStore(time.Hour),
		MaxUploadBytes: maxBytes,
		Logger:         log,
	}
}

// client replays the session cookie across requests.
type client struct {
	t      *testing.T
	h      http.Handler
	cookie *http.Cookie
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == CookieName {
			c.cookie = ck
		}
	}
	return rec
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) upload(filename string, data []byte) *httptest.ResponseRecorder {
	c.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		c.t.Fatalf("form file: %v", err)
	}
	_, _ = fw.Write(data)
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

func TestIndex_EmptySession(t *testing.T) {
	c := &client{t: t, h: newServer(1 << 20).Router()}
	rec := c.get("/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Upload a ZIP archive") {
		t.Fatalf("expected upload prompt: %s", rec.Body.String())
	}
	if c.cookie == nil || c.cookie.Value == "" {
		t.Fatalf("session cookie not set")
	}
	if rec := c.get("/charts/histograms"); rec.Code != http.StatusConflict {
		t.Fatalf("chart without dataset: %d", rec.Code)
	}
	if rec := c.get("/api/summary"); rec.Code != http.StatusConflict {
		t.Fatalf("summary without dataset: %d", rec.Code)
	}
}

func TestUpload_ThenChartsAndSummary(t *testing.T) {
	c := &client{t: t, h: newServer(1 << 20).Router()}
	c.get("/")
	rec := c.upload("students.zip", zipBytes(t, "students.csv", studentsCSV))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("upload: %d %s", rec.Code, rec.Header().Get("Location"))
	}

	rec = c.get("/")
	if !strings.Contains(rec.Body.String(), "students.zip") || !strings.Contains(rec.Body.String(), "total_screen_time") {
		t.Fatalf("index should show loaded dataset: %s", rec.Body.String())
	}

	rec = c.get("/charts/histograms")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("png chart: %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Fatalf("body is not a png")
	}
	rec = c.get("/charts/scatter_study_vs_exam?format=svg")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<svg") {
		t.Fatalf("svg chart: %d", rec.Code)
	}
	if rec := c.get("/charts/pie"); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown chart: %d", rec.Code)
	}
	if rec := c.get("/charts/histograms?format=gif"); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad format: %d", rec.Code)
	}

	rec = c.get("/api/summary")
	if rec.Code != http.StatusOK {
		t.Fatalf("summary: %d", rec.Code)
	}
	var sum dataset.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.Rows != 5 || sum.Corr == nil {
		t.Fatalf("summary: rows=%d corr=%v", sum.Rows, sum.Corr)
	}
}

func TestUpload_ErrorsKeepCause(t *testing.T) {
	c := &client{t: t, h: newServer(1 << 20).Router()}
	c.upload("students.zip", zipBytes(t, "students.csv", studentsCSV))

	c.upload("bad.zip", zipBytes(t, "students.csv", "a,b\n1,2\n"))
	body := c.get("/").Body.String()
	if !strings.Contains(body, "missing required columns") || !strings.Contains(body, "exam_score") {
		t.Fatalf("missing column message not shown: %s", body)
	}
	if rec := c.get("/charts/histograms"); rec.Code != http.StatusConflict {
		t.Fatalf("failed upload should discard the previous dataset: %d", rec.Code)
	}

	c.upload("notes.zip", zipBytes(t, "notes.txt", "hello"))
	if body := c.get("/").Body.String(); !strings.Contains(body, "No CSV file found in ZIP archive.") {
		t.Fatalf("no csv message not shown: %s", body)
	}

	c.upload("junk.zip", []byte("not a zip"))
	if body := c.get("/").Body.String(); !strings.Contains(body, "not a valid ZIP archive") {
		t.Fatalf("invalid archive message not shown: %s", body)
	}
}

func TestUpload_TooLarge(t *testing.T) {
	data := zipBytes(t, "students.csv", studentsCSV)
	c := &client{t: t, h: newServer(int64(len(data) - 1)).Router()}
	c.upload("students.zip", data)
	if body := c.get("/").Body.String(); !strings.Contains(body, "too large") {
		t.Fatalf("expected size error: %s", body)
	}
}

func TestSessions_AreIsolated(t *testing.T) {
	h := newServer(1 << 20).Router()
	a := &client{t: t, h: h}
	b := &client{t: t, h: h}
	a.upload("students.zip", zipBytes(t, "students.csv", studentsCSV))
	b.get("/")
	if rec := a.get("/charts/barplot_exam_score"); rec.Code != http.StatusOK {
		t.Fatalf("session a: %d", rec.Code)
	}
	if rec := b.get("/charts/barplot_exam_score"); rec.Code != http.StatusConflict {
		t.Fatalf("session b should have no dataset: %d", rec.Code)
	}
}

func TestStore_SeedAndExpiry(t *testing.T) {
	ds, err := dataset.LoadBytes(zipBytes(t, "students.csv", studentsCSV))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	st := NewStore(time.Minute)
	st.now = func() time.Time { return now }
	st.Seed, st.SeedArchive = ds, "dataset.zip"

	sess := st.Create()
	if sess.Dataset != ds || sess.Archive != "dataset.zip" {
		t.Fatalf("new session should start with the seed dataset")
	}
	now = now.Add(30 * time.Second)
	if _, ok := st.Get(sess.ID); !ok {
		t.Fatalf("session expired too early")
	}
	now = now.Add(2 * time.Minute)
	if _, ok := st.Get(sess.ID); ok {
		t.Fatalf("idle session should be dropped")
	}
	if st.Len() != 0 {
		t.Fatalf("len: %d", st.Len())
	}
}

func TestHealthz(t *testing.T) {
	c := &client{t: t, h: newServer(0).Router()}
	rec := c.get("/healthz")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("healthz: %d %s", rec.Code, rec.Body.String())
	}
}
