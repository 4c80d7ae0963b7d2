package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "BING_WALLPAPER_"

// LoadDotEnv loads dir/.env and then dir/.env.local into the process
// environment. Both files are optional. Variables already set in the
// environment win over .env; .env.local overrides both.
func LoadDotEnv(dir string) error {
	base := filepath.Join(dir, ".env")
	if _, err := os.Stat(base); err == nil {
		if err := godotenv.Load(base); err != nil {
			return fmt.Errorf("failed to load %s: %w", base, err)
		}
	}

	local := filepath.Join(dir, ".env.local")
	if _, err := os.Stat(local); err == nil {
		if err := godotenv.Overload(local); err != nil {
			return fmt.Errorf("failed to load %s: %w", local, err)
		}
	}

	return nil
}

// ApplyEnv overrides settings with BING_WALLPAPER_* variables.
//
// lookup is usually os.LookupEnv.
func (s *Settings) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"BASE_URL":             &s.BaseURL,
		"MARKET":               &s.Market,
		"USER_AGENT":           &s.UserAgent,
		"FILENAME":             &s.FileName,
		"PICTURE_DIR":          &s.PictureDir,
		"METRICS_FILE":         &s.MetricsFile,
		"S3_REGION":            &s.S3.Region,
		"S3_ENDPOINT":          &s.S3.Endpoint,
		"S3_ACCESS_KEY_ID":     &s.S3.AccessKeyID,
		"S3_SECRET_ACCESS_KEY": &s.S3.SecretAccessKey,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"DATE_PREFIX":   &s.DatePrefix,
		"FORCE":         &s.Force,
		"QUIET":         &s.Quiet,
		"VERBOSE":       &s.Verbose,
		"PROGRESS":      &s.Progress,
		"S3_PATH_STYLE": &s.S3.UsePathStyle,
	}
	for key, dst := range bools {
		if v, ok := lookup(EnvPrefix + key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = b
		}
	}

	ints := map[string]*int{
		"BATCH":   &s.BatchSize,
		"TIMEOUT": &s.Timeout,
	}
	for key, dst := range ints {
		if v, ok := lookup(EnvPrefix + key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = n
		}
	}

	if v, ok := lookup(EnvPrefix + "RESOLUTION"); ok {
		if err := s.Resolution.Set(v); err != nil {
			return fmt.Errorf("%sRESOLUTION: %w", EnvPrefix, err)
		}
	}

	return nil
}
