package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/santiagofdezg/bing-wallpaper/internal/config"
	"github.com/santiagofdezg/bing-wallpaper/internal/download"
	"github.com/santiagofdezg/bing-wallpaper/internal/http"
	"github.com/santiagofdezg/bing-wallpaper/internal/metrics"
	"github.com/santiagofdezg/bing-wallpaper/internal/model"
)

// Exit statuses returned by Run.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = 2
	ExitInterrupted = 130
)

const programName = "bing-wallpaper"

// Env carries the process boundary into Run.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer

	// LookupEnv reads BING_WALLPAPER_* variables. Nil skips the environment.
	LookupEnv func(string) (string, bool)

	// DotEnvDir is searched for .env and .env.local. Empty skips them.
	DotEnvDir string

	// ConfigPath is the settings file read when --config is not given.
	// Empty means built-in defaults.
	ConfigPath string

	// HTTPClient replaces the default transport, e.g. in tests.
	HTTPClient *nethttp.Client
}

type flags struct {
	set        *pflag.FlagSet
	batch      int
	datePrefix bool
	force      bool
	fileName   string
	pictureDir string
	quiet      bool
	resolution config.Resolution
	configPath string
	verbose    bool
	progress   bool
	market     string
	metrics    string
}

func newFlags(stderr io.Writer) *flags {
	f := &flags{
		set:        pflag.NewFlagSet(programName, pflag.ContinueOnError),
		resolution: config.DefaultResolution,
	}
	fs := f.set
	fs.SetOutput(stderr)
	fs.SortFlags = false

	fs.IntVarP(&f.batch, "batch", "b", 0,
		fmt.Sprintf("Download the N most recent pictures instead of only the latest one (the archive serves at most %d).", config.MaxBatchSize))
	fs.BoolVarP(&f.datePrefix, "date", "d", false,
		"Prefix the file name with the picture date (YYYY-MM-DD_). [default: False]")
	fs.BoolVarP(&f.force, "force", "f", false,
		"Force download of picture. This will overwrite the picture if the filename already exists. [default: False]")
	fs.StringVarP(&f.fileName, "filename", "n", "",
		"The name of the downloaded picture. Defaults to the upstream name.")
	fs.StringVarP(&f.pictureDir, "picturedir", "p", "",
		"The full path to the picture download directory, or s3://bucket/prefix. It will be created if it does not exist. [default: working directory]")
	fs.BoolVarP(&f.quiet, "quiet", "q", false,
		"Do not display log messages. [default: False]")
	fs.VarP(&f.resolution, "resolution", "r",
		"The resolution of the image to retrieve. Supported resolutions: 1920x1200, 1920x1080, 800x480, 400x240. Default and recommended is 1920x1080 (usually doesn't contain watermarks).")
	fs.StringVarP(&f.configPath, "config", "c", "", "Path to a JSON settings file.")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Show debug output on stderr.")
	fs.BoolVar(&f.progress, "progress", false, "Show a progress bar per download on stderr.")
	fs.StringVar(&f.market, "market", "", "Bing market to query, e.g. en-US.")
	fs.StringVar(&f.metrics, "metrics-file", "", "Write Prometheus metrics to this file after the run.")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: %s [-b N] [-d] [-f] [-n FILENAME] [-p DIR] [-q] [-r RESOLUTION]\n\n", programName)
		fmt.Fprintln(stderr, "Download the latest picture of the day from Bing.com and save it to a directory.")
		fmt.Fprintln(stderr)
		fmt.Fprint(stderr, fs.FlagUsages())
	}

	return f
}

func (f *flags) parse(args []string) error {
	if err := f.set.Parse(args); err != nil {
		return err
	}
	if f.set.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", f.set.Args())
	}
	if f.set.Changed("batch") && f.batch < 1 {
		return fmt.Errorf("%w: %d (must be a positive integer)", config.ErrInvalidBatchSize, f.batch)
	}
	return nil
}

// apply copies explicitly set flags over s.
func (f *flags) apply(s *config.Settings) {
	changed := f.set.Changed
	if changed("batch") {
		s.BatchSize = f.batch
	}
	if changed("date") {
		s.DatePrefix = f.datePrefix
	}
	if changed("force") {
		s.Force = f.force
	}
	if changed("filename") {
		s.FileName = f.fileName
	}
	if changed("picturedir") {
		s.PictureDir = f.pictureDir
	}
	if changed("quiet") {
		s.Quiet = f.quiet
	}
	if changed("resolution") {
		s.Resolution = f.resolution
	}
	if changed("verbose") {
		s.Verbose = f.verbose
	}
	if changed("progress") {
		s.Progress = f.progress
	}
	if changed("market") {
		s.Market = f.market
	}
	if changed("metrics-file") {
		s.MetricsFile = f.metrics
	}
}

// Run parses args, loads settings and performs one download pass.
// It returns the process exit status.
func Run(ctx context.Context, args []string, env Env) int {
	f := newFlags(env.Stderr)
	if err := f.parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return ExitOK
		}
		fmt.Fprintf(env.Stderr, "[PARSE ERROR] %v\n\n", err)
		f.set.Usage()
		return ExitUsage
	}

	settings, err := loadSettings(f, env)
	if err != nil {
		fmt.Fprintf(env.Stderr, "[PARSE ERROR] %v\n", err)
		return ExitUsage
	}

	log := newLogger(env.Stderr, settings)
	log.WithFields(logrus.Fields{
		"resolution": settings.Resolution,
		"count":      settings.Count(),
		"dir":        settings.PictureDir,
	}).Debug("Settings loaded")

	var opts []download.Option
	opts = append(opts, download.WithHTTPClient(newHTTPClient(settings, env.HTTPClient)))

	var rec *metrics.Recorder
	if settings.MetricsFile != "" {
		rec = metrics.NewRecorder()
		opts = append(opts, download.WithMetrics(rec))
	}

	if settings.Progress && !settings.Quiet {
		bars := &barReporter{w: env.Stderr}
		opts = append(opts, download.WithByteProgress(bars.update))
	}

	manager := download.NewManager(settings, progressPrinter(env.Stdout, log, settings.Quiet), opts...)
	downloads, runErr := manager.Run(ctx)

	status := ExitOK
	if runErr != nil {
		status = ExitFailure
		if ctx.Err() != nil {
			log.Warn("Interrupted, download cancelled")
			status = ExitInterrupted
		} else {
			log.WithError(runErr).Error("Download failed")
		}
	}

	if rec != nil {
		if err := rec.WriteTextfile(settings.MetricsFile); err != nil {
			log.WithError(err).WithField("path", settings.MetricsFile).Error("Failed to write metrics")
			if status == ExitOK {
				status = ExitFailure
			}
		}
	}

	log.WithField("images", len(downloads)).Debug("Done")
	return status
}

func loadSettings(f *flags, env Env) (*config.Settings, error) {
	path := env.ConfigPath
	if f.set.Changed("config") {
		path = f.configPath
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("settings file: %w", err)
		}
	}

	settings, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if env.DotEnvDir != "" {
		if err := config.LoadDotEnv(env.DotEnvDir); err != nil {
			return nil, err
		}
	}
	if env.LookupEnv != nil {
		if err := settings.ApplyEnv(env.LookupEnv); err != nil {
			return nil, err
		}
	}

	f.apply(settings)
	settings.Normalize()
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func newLogger(w io.Writer, settings *config.Settings) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	switch {
	case settings.Quiet:
		log.SetLevel(logrus.ErrorLevel)
	case settings.Verbose:
		log.SetLevel(logrus.DebugLevel)
	default:
		log.SetLevel(logrus.WarnLevel)
	}
	return log
}

func newHTTPClient(settings *config.Settings, injected *nethttp.Client) *http.Client {
	if injected != nil {
		return http.NewClient(http.WithHTTPClient(injected), http.WithUserAgent(settings.UserAgent))
	}
	return http.NewClient(
		http.WithTimeout(settings.RequestTimeout()),
		http.WithUserAgent(settings.UserAgent),
	)
}

// progressPrinter writes the Downloading/Skipping lines to stdout and routes
// everything else to the logger.
func progressPrinter(stdout io.Writer, log *logrus.Logger, quiet bool) func(download.ProgressEvent) {
	return func(event download.ProgressEvent) {
		entry := logrus.NewEntry(log)
		if event.Download != nil {
			entry = entry.WithField("file", event.Download.FileName)
		}

		switch event.Level {
		case download.LevelInfo:
			if !quiet {
				fmt.Fprintln(stdout, event.Message)
			}
		case download.LevelWarning:
			entry.Warn(event.Message)
		default:
			// Errors are reported once by Run
			entry.Debug(event.Message)
		}
	}
}

// barReporter renders one progress bar per download.
type barReporter struct {
	w       io.Writer
	current *model.Download
	bar     *progressbar.ProgressBar
}

func (b *barReporter) update(d *model.Download, written, total int64) {
	if b.current != d {
		b.current = d
		b.bar = progressbar.NewOptions64(
			total,
			progressbar.OptionSetDescription(d.FileName),
			progressbar.OptionSetWriter(b.w),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(15),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionShowCount(),
			progressbar.OptionOnCompletion(func() { fmt.Fprint(b.w, "\n") }),
		)
	}
	b.bar.Set64(written)
}
