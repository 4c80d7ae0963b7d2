package download

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/santiagofdezg/bing-wallpaper/internal/bing"
	"github.com/santiagofdezg/bing-wallpaper/internal/config"
	"github.com/santiagofdezg/bing-wallpaper/internal/http"
	"github.com/santiagofdezg/bing-wallpaper/internal/metrics"
	"github.com/santiagofdezg/bing-wallpaper/internal/model"
	"github.com/santiagofdezg/bing-wallpaper/internal/storage"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
//
// LevelInfo events are the user-facing "Downloading: <name>" and
// "Skipping: <name>" lines.
type ProgressEvent struct {
	Message  string
	Level    ProgressLevel
	Download *model.Download
}

// ByteProgress is called while an image body is streamed.
// total is -1 when the server sent no Content-Length.
type ByteProgress func(d *model.Download, written, total int64)

// Option configures a Manager.
type Option func(*Manager)

// WithHTTPClient sets the client used for both the archive and the images.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) {
		m.httpClient = c
	}
}

// WithStore sets the destination store instead of deriving it from
// Settings.PictureDir.
func WithStore(s storage.Store) Option {
	return func(m *Manager) {
		m.store = s
	}
}

// WithMetrics records every outcome in rec.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(m *Manager) {
		m.metrics = rec
	}
}

// WithByteProgress reports streamed bytes for each download.
func WithByteProgress(fn ByteProgress) Option {
	return func(m *Manager) {
		m.onBytes = fn
	}
}

// Manager runs the fetch, resolve and download pipeline.
type Manager struct {
	settings   *config.Settings
	httpClient *http.Client
	archive    *bing.Archive
	resolver   *bing.Resolver
	store      storage.Store
	metrics    *metrics.Recorder

	totalFiles     int32
	processedFiles int32
	receivedBytes  int64

	onProgress func(ProgressEvent)
	onBytes    ByteProgress
}

// NewManager creates a new download Manager.
//
// settings must already be normalized and validated.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent), opts ...Option) *Manager {
	m := &Manager{
		settings:   settings,
		onProgress: onProgress,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.httpClient == nil {
		m.httpClient = http.NewClient(
			http.WithTimeout(settings.RequestTimeout()),
			http.WithUserAgent(settings.UserAgent),
		)
	}

	m.archive = bing.NewArchive(m.httpClient, settings.BaseURL, settings.Market)
	m.resolver = bing.NewResolver(settings.BaseURL, settings.Resolution, bing.Naming{
		FileName:   settings.FileName,
		Batch:      settings.BatchMode(),
		DatePrefix: settings.DatePrefix,
	})

	return m
}

// Run performs one pass: prepare the destination, fetch the image list, then
// resolve and download (or skip) each image in order.
//
// The first error aborts the remaining images. The returned downloads cover
// every image processed so far, the failed one included.
func (m *Manager) Run(ctx context.Context) (downloads []*model.Download, err error) {
	defer func() {
		m.metrics.Finish(time.Now(), err)
	}()

	store := m.store
	if store == nil {
		store, err = storage.New(ctx, m.settings.PictureDir, m.settings.S3)
		if err != nil {
			return nil, err
		}
	}

	if err := store.Prepare(ctx); err != nil {
		return nil, fmt.Errorf("failed to prepare %s: %w", m.settings.PictureDir, err)
	}

	count := m.settings.Count()
	if m.settings.BatchClamped() {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Requested %d images, the archive serves at most %d", m.settings.BatchSize, count), Level: LevelWarning})
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Fetching %d image(s) from %s", count, m.archive.URL(count)), Level: LevelVerbose})

	images, err := m.archive.Fetch(ctx, count)
	if err != nil {
		return nil, err
	}

	if len(images) < count {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Requested %d images, archive returned %d", count, len(images)), Level: LevelWarning})
	} else if len(images) > count {
		images = images[:count]
	}
	atomic.StoreInt32(&m.totalFiles, int32(len(images)))

	for i, img := range images {
		if err := ctx.Err(); err != nil {
			return downloads, err
		}

		d, err := m.resolver.Resolve(i, img)
		if err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error resolving image %d: %v", i, err), Level: LevelError})
			return downloads, fmt.Errorf("failed to resolve image %d: %w", i, err)
		}
		d.Path = store.Location(d.FileName)
		downloads = append(downloads, d)

		if err := m.process(ctx, store, d); err != nil {
			d.Outcome = model.OutcomeFailed
			m.metrics.Observe(d)
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading %s: %v", d.FileName, err), Level: LevelError, Download: d})
			return downloads, fmt.Errorf("%s: %w", d.FileName, err)
		}

		m.metrics.Observe(d)
		atomic.AddInt32(&m.processedFiles, 1)
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Processed %d image(s) into %s", len(downloads), m.settings.PictureDir), Level: LevelSuccess})
	return downloads, nil
}

// GetProgress returns current download progress.
func (m *Manager) GetProgress() (received int64, filesProcessed, filesTotal int32) {
	return atomic.LoadInt64(&m.receivedBytes),
		atomic.LoadInt32(&m.processedFiles), atomic.LoadInt32(&m.totalFiles)
}

func (m *Manager) process(ctx context.Context, store storage.Store, d *model.Download) error {
	if !m.settings.Force {
		exists, err := store.Exists(ctx, d.FileName)
		if err != nil {
			return err
		}
		if exists {
			d.Outcome = model.OutcomeSkipped
			m.progress(ProgressEvent{Message: "Skipping: " + d.FileName, Level: LevelInfo, Download: d})
			return nil
		}
	}

	m.progress(ProgressEvent{Message: "Downloading: " + d.FileName, Level: LevelInfo, Download: d})
	m.progress(ProgressEvent{Message: fmt.Sprintf("GET %s -> %s", d.URL, d.Path), Level: LevelVerbose, Download: d})

	n, err := m.download(ctx, store, d)
	if err != nil {
		return err
	}

	d.Bytes = n
	d.Outcome = model.OutcomeDownloaded
	return nil
}

func (m *Manager) download(ctx context.Context, store storage.Store, d *model.Download) (int64, error) {
	body, size, err := m.httpClient.Open(ctx, d.URL)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	var previous int64
	reader := &http.ProgressReader{
		Reader: body,
		Total:  size,
		OnUpdate: func(read, total int64) {
			atomic.AddInt64(&m.receivedBytes, read-previous)
			previous = read
			if m.onBytes != nil {
				m.onBytes(d, read, total)
			}
		},
	}

	return store.Put(ctx, d.FileName, reader)
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
