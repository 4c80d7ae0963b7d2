package bing

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/santiagofdezg/bing-wallpaper/internal/config"
	ioutils "github.com/santiagofdezg/bing-wallpaper/internal/io"
	"github.com/santiagofdezg/bing-wallpaper/internal/model"
)

// idMarker precedes the picture identifier in image URLs.
const idMarker = "OHR."

// ErrNoImageID is returned when no picture identifier can be found in an
// image URL.
var ErrNoImageID = errors.New("no image identifier in url")

var resolutionToken = regexp.MustCompile(`[0-9]+x[0-9]+`)

// Naming controls how local file names are computed.
type Naming struct {
	// FileName overrides the upstream name. Empty keeps the upstream name.
	FileName string

	// Batch inserts _<index> before the extension of FileName for every
	// image, including the first.
	Batch bool

	// DatePrefix prepends YYYY-MM-DD_ from the image's publication date.
	DatePrefix bool
}

// Resolver turns image descriptors into concrete downloads.
type Resolver struct {
	baseURL    string
	resolution config.Resolution
	naming     Naming
}

// NewResolver creates a Resolver for images served from baseURL.
func NewResolver(baseURL string, resolution config.Resolution, naming Naming) *Resolver {
	return &Resolver{
		baseURL:    baseURL,
		resolution: resolution,
		naming:     naming,
	}
}

// Resolve computes the absolute URL and file name of the image at index.
//
// The returned Download has no Path; the caller's store decides it.
//
// Example:
//
//	r := NewResolver("https://www.bing.com", config.Resolution1920x1200, Naming{})
//	d, _ := r.Resolve(0, &model.Image{URL: "/th?id=OHR.Name_EN-US1_1920x1080.jpg&rf=x", Date: "20230115"})
//	// d.URL      = "https://www.bing.com/th?id=OHR.Name_EN-US1_1920x1200.jpg&rf=x"
//	// d.FileName = "Name_EN-US1_1920x1200.jpg"
func (r *Resolver) Resolve(index int, img *model.Image) (*model.Download, error) {
	absURL := ResolveURL(r.baseURL, img.URL, r.resolution)

	name, err := r.fileName(index, img, absURL)
	if err != nil {
		return nil, err
	}

	return &model.Download{
		Index:    index,
		URL:      absURL,
		FileName: name,
		Image:    img,
		Outcome:  model.OutcomePending,
	}, nil
}

func (r *Resolver) fileName(index int, img *model.Image, absURL string) (string, error) {
	name := r.naming.FileName
	switch {
	case name == "":
		id, err := ImageID(absURL)
		if err != nil {
			return "", err
		}
		name = ioutils.SanitizeFileName(id)
	case r.naming.Batch:
		name = WithIndex(name, index)
	}

	if r.naming.DatePrefix {
		prefix, err := img.DatePrefix()
		if err != nil {
			return "", fmt.Errorf("cannot date-prefix %s: %w", name, err)
		}
		name = prefix + name
	}

	return name, nil
}

// SubstituteResolution replaces the first WIDTHxHEIGHT token of relative
// with resolution. URLs without a token are returned unchanged.
func SubstituteResolution(relative string, resolution config.Resolution) string {
	loc := resolutionToken.FindStringIndex(relative)
	if loc == nil {
		return relative
	}
	return relative[:loc[0]] + string(resolution) + relative[loc[1]:]
}

// ResolveURL substitutes the resolution into relative and joins it to the
// API origin. Absolute URLs keep their own origin.
func ResolveURL(base, relative string, resolution config.Resolution) string {
	relative = SubstituteResolution(relative, resolution)
	if strings.HasPrefix(relative, "http://") || strings.HasPrefix(relative, "https://") {
		return relative
	}

	base = strings.TrimRight(base, "/")
	if !strings.HasPrefix(relative, "/") {
		relative = "/" + relative
	}
	return base + relative
}

// ImageID extracts the upstream picture identifier, including its
// extension, from an image URL.
//
// The identifier is the raw, undecoded id query parameter (or, for legacy
// URLs, the last path segment) up to the first '&', without its "OHR."
// marker.
//
// Example:
//
//	ImageID("https://www.bing.com/th?id=OHR.SomeName_EN-US1234567890.jpg&rf=x")
//	// "SomeName_EN-US1234567890.jpg"
func ImageID(imageURL string) (string, error) {
	u, err := url.Parse(imageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoImageID, err)
	}

	id := rawQueryValue(u.RawQuery, "id")
	if id == "" {
		id = path.Base(u.EscapedPath())
	}

	id, _, _ = strings.Cut(id, "&")
	if i := strings.Index(id, idMarker); i >= 0 {
		id = id[i+len(idMarker):]
	}

	if id == "" || id == "." || id == "/" {
		return "", fmt.Errorf("%w: %s", ErrNoImageID, imageURL)
	}
	return id, nil
}

// rawQueryValue returns the first value of key in query without
// unescaping it.
func rawQueryValue(query, key string) string {
	for _, pair := range strings.Split(query, "&") {
		if k, v, ok := strings.Cut(pair, "="); ok && k == key {
			return v
		}
	}
	return ""
}

// WithIndex inserts _<index> before the extension of name.
//
// Example:
//
//	WithIndex("pic.jpg", 2) // "pic_2.jpg"
func WithIndex(name string, index int) string {
	ext := config.ImageExtension
	if !strings.HasSuffix(name, ext) {
		ext = path.Ext(name)
	}
	return strings.TrimSuffix(name, ext) + "_" + strconv.Itoa(index) + ext
}
