// Package bing talks to the Bing image-of-the-day archive and resolves its
// entries into downloads.
//
// The package handles two steps of a run:
//
//  1. Fetching the N most recent image descriptors (Archive)
//  2. Turning each descriptor into an absolute URL and a file name (Resolver)
//
// # Fetching
//
//	archive := bing.NewArchive(client, "https://www.bing.com", "en-US")
//	images, err := archive.Fetch(ctx, 8)
//
// # Resolving
//
// Image URLs embed a resolution token ("1920x1080") which is replaced by
// the requested resolution. File names default to the upstream picture
// identifier found after "OHR." in the URL:
//
//	r := bing.NewResolver(baseURL, config.Resolution1920x1200, bing.Naming{DatePrefix: true})
//	d, err := r.Resolve(0, images[0])
//	// d.FileName = "2023-01-15_SomeName_EN-US1234567890_1920x1200.jpg"
//
// # Archive Format
//
//	{"images":[{"startdate":"20230115","url":"/th?id=OHR....jpg&rf=...","title":"..."}]}
package bing
