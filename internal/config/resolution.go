package config

import (
	"errors"
	"fmt"
	"strings"
)

// Resolution is a supported image size in WIDTHxHEIGHT form.
//
// Resolution implements pflag.Value so invalid values are rejected while
// the command line is parsed.
type Resolution string

// Supported resolutions.
const (
	Resolution1920x1200 Resolution = "1920x1200"
	Resolution1920x1080 Resolution = "1920x1080"
	Resolution800x480   Resolution = "800x480"
	Resolution400x240   Resolution = "400x240"
)

// DefaultResolution usually comes without a watermark.
const DefaultResolution = Resolution1920x1080

// ErrInvalidResolution is returned for values outside Resolutions().
var ErrInvalidResolution = errors.New("unsupported resolution")

// Resolutions returns the supported resolutions, largest first.
func Resolutions() []Resolution {
	return []Resolution{
		Resolution1920x1200,
		Resolution1920x1080,
		Resolution800x480,
		Resolution400x240,
	}
}

// ParseResolution validates s against the supported set.
func ParseResolution(s string) (Resolution, error) {
	for _, r := range Resolutions() {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w %q (supported: %s)", ErrInvalidResolution, s, supportedList())
}

// Valid reports whether r is a supported resolution.
func (r Resolution) Valid() bool {
	_, err := ParseResolution(string(r))
	return err == nil
}

// String implements pflag.Value.
func (r *Resolution) String() string {
	return string(*r)
}

// Set implements pflag.Value.
func (r *Resolution) Set(s string) error {
	parsed, err := ParseResolution(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Type implements pflag.Value.
func (r *Resolution) Type() string {
	return "resolution"
}

// Next returns the resolution following r in Resolutions(), wrapping around.
func (r Resolution) Next() Resolution {
	all := Resolutions()
	for i, candidate := range all {
		if candidate == r {
			return all[(i+1)%len(all)]
		}
	}
	return DefaultResolution
}

func supportedList() string {
	names := make([]string, 0, len(Resolutions()))
	for _, r := range Resolutions() {
		names = append(names, string(r))
	}
	return strings.Join(names, ", ")
}
