// Package http provides the HTTP client used to talk to the image-of-the-day
// service and to download the images themselves.
//
// The Client in this package handles:
//   - User-Agent and Accept headers
//   - Non-200 responses as errors
//   - Streaming bodies with progress tracking
//   - Timeout handling
//
// # Basic Usage
//
//	client := http.NewClient(http.WithTimeout(time.Minute))
//
//	// Fetch JSON metadata
//	data, err := client.Get(ctx, archiveURL, "application/json")
//
//	// Stream an image with a progress callback
//	body, size, err := client.Open(ctx, imageURL)
//	if err != nil {
//	    return err
//	}
//	defer body.Close()
//	r := &http.ProgressReader{Reader: body, Total: size, OnUpdate: func(read, total int64) { /* update UI */ }}
//
// Tests inject an *http.Client bound to an httptest server with WithHTTPClient.
package http
