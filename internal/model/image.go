package model

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the layout of the publication date carried by each
// image-of-the-day entry ("20230115").
const DateLayout = "20060102"

// ErrInvalidDate is returned when an image's publication date is missing
// or not in the 8-digit YYYYMMDD form.
var ErrInvalidDate = errors.New("invalid image date")

// Image describes one image-of-the-day entry as returned by the archive API.
//
// URL is relative to the API origin and embeds a resolution token such as
// "1920x1080". Date is the 8-digit publication date.
//
// Example:
//
//	img := &Image{
//	    URL:  "/th?id=OHR.SomeName_EN-US1234567890_1920x1080.jpg&rf=LaDigue_1920x1080.jpg",
//	    Date: "20230115",
//	}
//	published, _ := img.PublishedOn() // 2023-01-15
type Image struct {
	// URL is the relative URL template of the image.
	URL string

	// Date is the publication date in YYYYMMDD form.
	Date string

	// Title is the short caption of the image, if any.
	Title string

	// Copyright holds the attribution line shown under the image.
	Copyright string
}

// PublishedOn parses Date.
//
// Returns ErrInvalidDate (wrapped) if the date is empty or malformed.
func (i *Image) PublishedOn() (time.Time, error) {
	if len(i.Date) != len(DateLayout) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, i.Date)
	}
	for _, r := range i.Date {
		if r < '0' || r > '9' {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, i.Date)
		}
	}

	t, err := time.Parse(DateLayout, i.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, i.Date)
	}
	return t, nil
}

// DatePrefix returns the "YYYY-MM-DD_" prefix used when date-prefixing
// file names.
func (i *Image) DatePrefix() (string, error) {
	t, err := i.PublishedOn()
	if err != nil {
		return "", err
	}
	return t.Format("2006-01-02") + "_", nil
}
