package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/santiagofdezg/bing-wallpaper/internal/model"
)

func TestRecorder_Observe(t *testing.T) {
	r := NewRecorder()

	r.Observe(&model.Download{Outcome: model.OutcomeDownloaded, Bytes: 1000})
	r.Observe(&model.Download{Outcome: model.OutcomeDownloaded, Bytes: 500})
	r.Observe(&model.Download{Outcome: model.OutcomeSkipped})
	r.Observe(&model.Download{Outcome: model.OutcomeFailed, Bytes: 42})

	if got := testutil.ToFloat64(r.images.WithLabelValues("downloaded")); got != 2 {
		t.Errorf("downloaded = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.images.WithLabelValues("skipped")); got != 1 {
		t.Errorf("skipped = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.images.WithLabelValues("failed")); got != 1 {
		t.Errorf("failed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.bytes); got != 1500 {
		t.Errorf("bytes = %v, want 1500", got)
	}
}

func TestRecorder_Finish(t *testing.T) {
	r := NewRecorder()
	at := time.Unix(1700000000, 0)

	r.Finish(at, nil)
	if got := testutil.ToFloat64(r.lastRun); got != 1700000000 {
		t.Errorf("last run = %v", got)
	}
	if got := testutil.ToFloat64(r.lastSuccess); got != 1 {
		t.Errorf("last success = %v, want 1", got)
	}

	r.Finish(at, errors.New("boom"))
	if got := testutil.ToFloat64(r.lastSuccess); got != 0 {
		t.Errorf("last success = %v, want 0", got)
	}
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	r.Observe(&model.Download{Outcome: model.OutcomeDownloaded})
	r.Finish(time.Now(), nil)
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.Observe(&model.Download{Outcome: model.OutcomeSkipped})

	path := filepath.Join(t.TempDir(), "bing_wallpaper.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile(): %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `bing_wallpaper_images_total{outcome="skipped"} 1`) {
		t.Errorf("textfile missing skipped counter:\n%s", data)
	}
}
