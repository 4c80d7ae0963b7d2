package bing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/santiagofdezg/bing-wallpaper/internal/bing/dto"
	"github.com/santiagofdezg/bing-wallpaper/internal/http"
	"github.com/santiagofdezg/bing-wallpaper/internal/model"
)

// ArchivePath is the path of the image-of-the-day archive endpoint.
const ArchivePath = "/HPImageArchive.aspx"

// ErrNoImages is returned when the archive response carries no image.
var ErrNoImages = errors.New("no images in archive response")

// Archive fetches image descriptors from the image-of-the-day archive API.
//
// Example usage:
//
//	archive := NewArchive(http.NewClient(), "https://www.bing.com", "")
//	images, err := archive.Fetch(ctx, 3)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(images[0].URL) // most recent first
type Archive struct {
	client  *http.Client
	baseURL string
	market  string
}

// NewArchive creates an Archive for the API at baseURL.
//
// market, when not empty, is sent as the mkt query parameter (e.g. "en-US").
func NewArchive(client *http.Client, baseURL, market string) *Archive {
	return &Archive{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		market:  market,
	}
}

// URL returns the archive request URL for the n most recent images.
func (a *Archive) URL(n int) string {
	q := url.Values{}
	q.Set("format", "js")
	q.Set("idx", "0")
	q.Set("n", strconv.Itoa(n))
	if a.market != "" {
		q.Set("mkt", a.market)
	}
	return a.baseURL + ArchivePath + "?" + q.Encode()
}

// Fetch performs a single request for the n most recent images and returns
// them in API order, most recent first.
//
// The API may return fewer than n images; that is not an error. An empty
// list is (ErrNoImages).
//
// Returns an error if:
//   - The request fails or the status is not 200 OK
//   - The body is not the expected JSON object
//   - An entry has no URL
func (a *Archive) Fetch(ctx context.Context, n int) ([]*model.Image, error) {
	if n < 1 {
		return nil, fmt.Errorf("invalid image count %d", n)
	}

	body, err := a.client.Get(ctx, a.URL(n), "application/json")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image archive: %w", err)
	}

	return ParseArchive(body)
}

// ParseArchive decodes an archive response body.
func ParseArchive(body []byte) ([]*model.Image, error) {
	var archive dto.JSONArchive
	if err := json.Unmarshal(body, &archive); err != nil {
		return nil, fmt.Errorf("failed to parse image archive JSON: %w", err)
	}

	if len(archive.Images) == 0 {
		return nil, ErrNoImages
	}

	images := make([]*model.Image, 0, len(archive.Images))
	for i := range archive.Images {
		if archive.Images[i].URL == "" {
			return nil, fmt.Errorf("image %d in archive response has no url", i)
		}
		images = append(images, archive.Images[i].ToImage())
	}

	return images, nil
}
