// Package download runs the image-of-the-day pipeline.
//
// # Manager
//
// The Manager performs a single sequential pass:
//
//  1. Prepare the destination (create the picture directory)
//  2. Fetch the N most recent image descriptors
//  3. Resolve each descriptor to a URL and a file name
//  4. Download it, or skip it when it already exists and force is off
//
// # Basic Usage
//
//	manager := download.NewManager(settings, func(event download.ProgressEvent) {
//	    if event.Level == download.LevelInfo {
//	        fmt.Println(event.Message) // "Downloading: ..." / "Skipping: ..."
//	    }
//	})
//
//	downloads, err := manager.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Failures
//
// There are no retries. The first failing image stops the run and its error
// is returned; images after it are not attempted.
package download
