package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/santiagofdezg/bing-wallpaper/internal/model"
)

const namespace = "bing_wallpaper"

// Recorder collects per-run download metrics in its own registry.
//
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry    *prometheus.Registry
	images      *prometheus.CounterVec
	bytes       prometheus.Counter
	lastRun     prometheus.Gauge
	lastSuccess prometheus.Gauge
}

// NewRecorder creates a Recorder with all metrics registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
	}

	r.images = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "images_total",
			Help:      "Images processed, by outcome.",
		},
		[]string{"outcome"},
	)

	r.bytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloaded_bytes_total",
			Help:      "Bytes written for downloaded images.",
		},
	)

	r.lastRun = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		},
	)

	r.lastSuccess = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 if the last run completed without error, 0 otherwise.",
		},
	)

	r.registry.MustRegister(r.images, r.bytes, r.lastRun, r.lastSuccess)

	// Expose every outcome label from the start
	for _, o := range []model.Outcome{model.OutcomeDownloaded, model.OutcomeSkipped, model.OutcomeFailed} {
		r.images.WithLabelValues(o.String())
	}

	return r
}

// Observe records the outcome of one download.
func (r *Recorder) Observe(d *model.Download) {
	if r == nil {
		return
	}
	r.images.WithLabelValues(d.Outcome.String()).Inc()
	if d.Outcome == model.OutcomeDownloaded {
		r.bytes.Add(float64(d.Bytes))
	}
}

// Finish records the end of a run.
func (r *Recorder) Finish(at time.Time, err error) {
	if r == nil {
		return
	}
	r.lastRun.Set(float64(at.Unix()))
	if err != nil {
		r.lastSuccess.Set(0)
	} else {
		r.lastSuccess.Set(1)
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes the metrics in the text exposition format, suitable
// for the node exporter textfile collector. The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
