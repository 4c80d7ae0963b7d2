package download

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/santiagofdezg/bing-wallpaper/internal/config"
	bhttp "github.com/santiagofdezg/bing-wallpaper/internal/http"
	"github.com/santiagofdezg/bing-wallpaper/internal/metrics"
	"github.com/santiagofdezg/bing-wallpaper/internal/model"
)

// fakeBing serves an archive of numbered images and their bodies.
type fakeBing struct {
	mu            sync.Mutex
	images        int
	failImage     int // 1-based image number answered with 500, 0 = none
	archiveHits   int
	imageRequests []string
}

func (f *fakeBing) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.URL.Path {
	case "/HPImageArchive.aspx":
		f.archiveHits++
		var n int
		fmt.Sscanf(r.URL.Query().Get("n"), "%d", &n)
		if n > f.images {
			n = f.images
		}
		var entries []string
		for i := 1; i <= n; i++ {
			entries = append(entries, fmt.Sprintf(
				`{"startdate":"202301%02d","url":"/th?id=OHR.Image%d_EN-US%d_1920x1080.jpg&rf=LaDigue_1920x1080.jpg&pid=hp","title":"Image %d"}`,
				16-i, i, i, i))
		}
		fmt.Fprintf(w, `{"images":[%s]}`, strings.Join(entries, ","))
	case "/th":
		id := r.URL.Query().Get("id")
		f.imageRequests = append(f.imageRequests, id)
		if f.failImage > 0 && strings.HasPrefix(id, fmt.Sprintf("OHR.Image%d_", f.failImage)) {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, "jpeg:%s", id)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeBing) requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.imageRequests...)
}

type recorder struct {
	events []ProgressEvent
}

func (r *recorder) record(e ProgressEvent) {
	r.events = append(r.events, e)
}

func (r *recorder) lines(level ProgressLevel) []string {
	var out []string
	for _, e := range r.events {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

func newTestManager(t *testing.T, fake *fakeBing, modify func(s *config.Settings), opts ...Option) (*Manager, *recorder, *config.Settings) {
	t.Helper()

	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	settings := config.DefaultSettings()
	settings.BaseURL = srv.URL
	settings.PictureDir = filepath.Join(t.TempDir(), "pictures")
	if modify != nil {
		modify(settings)
	}
	settings.Normalize()
	if err := settings.Validate(); err != nil {
		t.Fatalf("invalid test settings: %v", err)
	}

	rec := &recorder{}
	opts = append([]Option{WithHTTPClient(bhttp.NewClient(bhttp.WithHTTPClient(srv.Client())))}, opts...)
	return NewManager(settings, rec.record, opts...), rec, settings
}

func TestManager_SingleImage(t *testing.T) {
	fake := &fakeBing{images: 8}
	m, rec, settings := newTestManager(t, fake, nil)

	downloads, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run(): %v", err)
	}

	if len(downloads) != 1 {
		t.Fatalf("got %d downloads, want 1", len(downloads))
	}
	d := downloads[0]
	if d.FileName != "Image1_EN-US1_1920x1080.jpg" {
		t.Errorf("FileName = %q", d.FileName)
	}
	if d.Outcome != model.OutcomeDownloaded {
		t.Errorf("Outcome = %v", d.Outcome)
	}
	if d.Path != filepath.Join(settings.PictureDir, d.FileName) {
		t.Errorf("Path = %q", d.Path)
	}

	data, err := os.ReadFile(d.Path)
	if err != nil {
		t.Fatalf("image not written: %v", err)
	}
	if string(data) != "jpeg:OHR.Image1_EN-US1_1920x1080.jpg" {
		t.Errorf("file contents = %q", data)
	}
	if d.Bytes != int64(len(data)) {
		t.Errorf("Bytes = %d, want %d", d.Bytes, len(data))
	}

	info := rec.lines(LevelInfo)
	if len(info) != 1 || info[0] != "Downloading: Image1_EN-US1_1920x1080.jpg" {
		t.Errorf("info lines = %q", info)
	}

	received, processed, total := m.GetProgress()
	if received != int64(len(data)) || processed != 1 || total != 1 {
		t.Errorf("GetProgress() = %d, %d, %d", received, processed, total)
	}
}

func TestManager_Resolution(t *testing.T) {
	fake := &fakeBing{images: 1}
	m, _, _ := newTestManager(t, fake, func(s *config.Settings) {
		s.Resolution = config.Resolution400x240
	})

	downloads, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run(): %v", err)
	}

	if got := fake.requests(); len(got) != 1 || got[0] != "OHR.Image1_EN-US1_400x240.jpg" {
		t.Errorf("image requests = %q", got)
	}
	if downloads[0].FileName != "Image1_EN-US1_400x240.jpg" {
		t.Errorf("FileName = %q", downloads[0].FileName)
	}
}

func TestManager_SkipExisting(t *testing.T) {
	fake := &fakeBing{images: 1}
	m, rec, settings := newTestManager(t, fake, nil)

	if err := os.MkdirAll(settings.PictureDir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(settings.PictureDir, "Image1_EN-US1_1920x1080.jpg")
	if err := os.WriteFile(path, []byte("original bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	downloads, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run(): %v", err)
	}

	if downloads[0].Outcome != model.OutcomeSkipped {
		t.Errorf("Outcome = %v, want skipped", downloads[0].Outcome)
	}
	if info := rec.lines(LevelInfo); len(info) != 1 || info[0] != "Skipping: Image1_EN-US1_1920x1080.jpg" {
		t.Errorf("info lines = %q", info)
	}
	if len(fake.requests()) != 0 {
		t.Errorf("skipped image was requested: %q", fake.requests())
	}

	data, _ := os.ReadFile(path)
	if string(data) != "original bytes" {
		t.Errorf("existing file modified: %q", data)
	}
}

func TestManager_RunTwiceIsIdempotent(t *testing.T) {
	fake := &fakeBing{images: 1}
	m, rec, _ := newTestManager(t, fake, nil)

	first, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("first Run(): %v", err)
	}
	before, _ := os.ReadFile(first[0].Path)

	second, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run(): %v", err)
	}
	after, _ := os.ReadFile(second[0].Path)

	if second[0].Outcome != model.OutcomeSkipped {
		t.Errorf("second Outcome = %v, want skipped", second[0].Outcome)
	}
	if string(before) != string(after) {
		t.Error("file changed between runs")
	}

	info := rec.lines(LevelInfo)
	want := []string{"Downloading: Image1_EN-US1_1920x1080.jpg", "Skipping: Image1_EN-US1_1920x1080.jpg"}
	if strings.Join(info, "|") != strings.Join(want, "|") {
		t.Errorf("info lines = %q, want %q", info, want)
	}
}

func TestManager_Force(t *testing.T) {
	fake := &fakeBing{images: 1}
	m, rec, settings := newTestManager(t, fake, func(s *config.Settings) {
		s.Force = true
	})

	if err := os.MkdirAll(settings.PictureDir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(settings.PictureDir, "Image1_EN-US1_1920x1080.jpg")
	if err := os.WriteFile(path, []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}

	for run := 0; run < 2; run++ {
		downloads, err := m.Run(context.Background())
		if err != nil {
			t.Fatalf("Run(): %v", err)
		}
		if downloads[0].Outcome != model.OutcomeDownloaded {
			t.Errorf("run %d: Outcome = %v, want downloaded", run, downloads[0].Outcome)
		}
	}

	for _, line := range rec.lines(LevelInfo) {
		if line != "Downloading: Image1_EN-US1_1920x1080.jpg" {
			t.Errorf("unexpected info line %q", line)
		}
	}
	if len(fake.requests()) != 2 {
		t.Errorf("got %d image requests, want 2", len(fake.requests()))
	}

	data, _ := os.ReadFile(path)
	if string(data) == "stale" {
		t.Error("existing file was not overwritten")
	}
}

func TestManager_BatchCustomName(t *testing.T) {
	fake := &fakeBing{images: 8}
	m, rec, settings := newTestManager(t, fake, func(s *config.Settings) {
		s.BatchSize = 3
		s.FileName = "pic"
	})

	downloads, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run(): %v", err)
	}

	want := []string{"pic_0.jpg", "pic_1.jpg", "pic_2.jpg"}
	if len(downloads) != len(want) {
		t.Fatalf("got %d downloads, want %d", len(downloads), len(want))
	}
	for i, d := range downloads {
		if d.FileName != want[i] {
			t.Errorf("download %d = %q, want %q", i, d.FileName, want[i])
		}
		data, err := os.ReadFile(filepath.Join(settings.PictureDir, want[i]))
		if err != nil {
			t.Fatalf("read %s: %v", want[i], err)
		}
		// API order: pic_0 is the most recent image
		if !strings.Contains(string(data), fmt.Sprintf("OHR.Image%d_", i+1)) {
			t.Errorf("%s contains %q", want[i], data)
		}
	}

	if len(rec.lines(LevelInfo)) != 3 {
		t.Errorf("info lines = %q", rec.lines(LevelInfo))
	}
}

func TestManager_BatchOfOneUsesIndex(t *testing.T) {
	fake := &fakeBing{images: 8}
	m, _, _ := newTestManager(t, fake, func(s *config.Settings) {
		s.BatchSize = 1
		s.FileName = "pic.jpg"
	})

	downloads, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run(): %v", err)
	}
	if downloads[0].FileName != "pic_0.jpg" {
		t.Errorf("FileName = %q, want pic_0.jpg", downloads[0].FileName)
	}
}

func TestManager_DatePrefix(t *testing.T) {
	fake := &fakeBing{images: 8}
	m, _, _ := newTestManager(t, fake, func(s *config.Settings) {
		s.DatePrefix = true
		s.BatchSize = 2
	})

	downloads, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run(): %v", err)
	}

	if !strings.HasPrefix(downloads[0].FileName, "2023-01-15_") {
		t.Errorf("FileName = %q, want 2023-01-15_ prefix", downloads[0].FileName)
	}
	if !strings.HasPrefix(downloads[1].FileName, "2023-01-14_") {
		t.Errorf("FileName = %q, want 2023-01-14_ prefix", downloads[1].FileName)
	}
}

func TestManager_ShortArchive(t *testing.T) {
	fake := &fakeBing{images: 2}
	m, rec, _ := newTestManager(t, fake, func(s *config.Settings) {
		s.BatchSize = 5
	})

	downloads, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run(): %v", err)
	}
	if len(downloads) != 2 {
		t.Errorf("got %d downloads, want 2", len(downloads))
	}
	if len(rec.lines(LevelWarning)) != 1 {
		t.Errorf("warnings = %q, want one", rec.lines(LevelWarning))
	}
}

func TestManager_BatchAboveArchiveMaximum(t *testing.T) {
	fake := &fakeBing{images: 8}
	m, rec, _ := newTestManager(t, fake, func(s *config.Settings) {
		s.BatchSize = 10
		s.FileName = "pic"
	})

	downloads, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run(): %v", err)
	}
	if len(downloads) != config.MaxBatchSize {
		t.Errorf("got %d downloads, want %d", len(downloads), config.MaxBatchSize)
	}
	if got := downloads[len(downloads)-1].FileName; got != "pic_7.jpg" {
		t.Errorf("last FileName = %q, want pic_7.jpg", got)
	}
	if len(rec.lines(LevelWarning)) != 1 {
		t.Errorf("warnings = %q, want one", rec.lines(LevelWarning))
	}
}

func TestManager_FailureAbortsBatch(t *testing.T) {
	fake := &fakeBing{images: 8, failImage: 2}
	m, rec, settings := newTestManager(t, fake, func(s *config.Settings) {
		s.BatchSize = 3
	})

	downloads, err := m.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}

	if len(downloads) != 2 {
		t.Fatalf("got %d downloads, want 2", len(downloads))
	}
	if downloads[0].Outcome != model.OutcomeDownloaded || downloads[1].Outcome != model.OutcomeFailed {
		t.Errorf("outcomes = %v, %v", downloads[0].Outcome, downloads[1].Outcome)
	}

	if got := fake.requests(); len(got) != 2 {
		t.Errorf("image requests = %q, third image must not be attempted", got)
	}
	if len(rec.lines(LevelError)) != 1 {
		t.Errorf("errors = %q", rec.lines(LevelError))
	}

	entries, _ := os.ReadDir(settings.PictureDir)
	if len(entries) != 1 {
		t.Errorf("picture dir holds %d entries, want only the first image", len(entries))
	}
}

func TestManager_CreatesNestedDirectory(t *testing.T) {
	fake := &fakeBing{images: 1}
	m, _, settings := newTestManager(t, fake, func(s *config.Settings) {
		s.PictureDir = filepath.Join(t.TempDir(), "a", "b", "c")
	})

	if _, err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run(): %v", err)
	}
	if info, err := os.Stat(settings.PictureDir); err != nil || !info.IsDir() {
		t.Errorf("picture dir not created: %v", err)
	}
}

func TestManager_UncreatableDirectory(t *testing.T) {
	fake := &fakeBing{images: 1}
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	m, _, _ := newTestManager(t, fake, func(s *config.Settings) {
		s.PictureDir = filepath.Join(blocker, "pictures")
	})

	if _, err := m.Run(context.Background()); err == nil {
		t.Fatal("expected error for uncreatable directory")
	}
	if fake.archiveHits != 0 {
		t.Errorf("archive requested %d times before the directory check", fake.archiveHits)
	}
}

func TestManager_Metrics(t *testing.T) {
	fake := &fakeBing{images: 8}
	rec := metrics.NewRecorder()
	m, _, settings := newTestManager(t, fake, func(s *config.Settings) {
		s.BatchSize = 2
	}, WithMetrics(rec))

	if err := os.MkdirAll(settings.PictureDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(settings.PictureDir, "Image2_EN-US2_1920x1080.jpg"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run(): %v", err)
	}

	out, err := testutil.GatherAndCount(rec.Registry(), "bing_wallpaper_images_total")
	if err != nil {
		t.Fatal(err)
	}
	if out != 3 {
		t.Errorf("outcome series = %d, want 3", out)
	}

	path := filepath.Join(t.TempDir(), "metrics.prom")
	if err := rec.WriteTextfile(path); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	for _, want := range []string{
		`bing_wallpaper_images_total{outcome="downloaded"} 1`,
		`bing_wallpaper_images_total{outcome="skipped"} 1`,
		`bing_wallpaper_last_run_success 1`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("metrics missing %q:\n%s", want, data)
		}
	}
}

func TestManager_ByteProgress(t *testing.T) {
	fake := &fakeBing{images: 1}
	var lastWritten int64
	var calls int
	m, _, _ := newTestManager(t, fake, nil, WithByteProgress(func(d *model.Download, written, total int64) {
		calls++
		lastWritten = written
	}))

	downloads, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run(): %v", err)
	}
	if calls == 0 || lastWritten != downloads[0].Bytes {
		t.Errorf("byte progress calls = %d, last = %d, want %d", calls, lastWritten, downloads[0].Bytes)
	}
}
