package dto

import (
	"github.com/santiagofdezg/bing-wallpaper/internal/model"
)

// JSONArchive is the top-level object returned by HPImageArchive.aspx?format=js.
type JSONArchive struct {
	Images   []JSONImage   `json:"images"`
	Tooltips *JSONTooltips `json:"tooltips,omitempty"`
}

// JSONImage is one entry of the images array.
//
// Only URL and StartDate are required; the remaining fields are carried
// for display.
type JSONImage struct {
	StartDate     string `json:"startdate"`
	FullStartDate string `json:"fullstartdate"`
	EndDate       string `json:"enddate"`
	URL           string `json:"url"`
	URLBase       string `json:"urlbase"`
	Copyright     string `json:"copyright"`
	CopyrightLink string `json:"copyrightlink"`
	Title         string `json:"title"`
	Hash          string `json:"hsh"`
}

// JSONTooltips holds UI strings sent alongside the images.
type JSONTooltips struct {
	Loading  string `json:"loading"`
	Previous string `json:"previous"`
	Next     string `json:"next"`
}

// ToImage converts the JSON entry to a model.Image.
//
// The publication date is the entry's startdate.
func (j *JSONImage) ToImage() *model.Image {
	return &model.Image{
		URL:       j.URL,
		Date:      j.StartDate,
		Title:     j.Title,
		Copyright: j.Copyright,
	}
}
