// Package model defines the core data structures used throughout
// bing-wallpaper.
//
// # Image
//
// Image is one entry of the image-of-the-day archive:
//
//	img := &model.Image{URL: "/th?id=OHR.Name_EN-US1_1920x1080.jpg&rf=x", Date: "20230115"}
//	prefix, _ := img.DatePrefix() // "2023-01-15_"
//
// # Download
//
// Download is an Image resolved to an absolute URL and a target file name.
// Its Outcome records whether it was downloaded, skipped or failed.
package model
