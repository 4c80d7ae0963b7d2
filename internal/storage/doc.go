// Package storage abstracts where downloaded images are written.
//
// Two adapters implement Store:
//   - Local writes into a directory, creating it on Prepare
//   - S3 uploads objects under s3://bucket/prefix
//
// New picks the adapter from the configured picture directory:
//
//	store, err := storage.New(ctx, settings.PictureDir, settings.S3)
//	if err != nil {
//	    return err
//	}
//	if err := store.Prepare(ctx); err != nil {
//	    return err
//	}
//	exists, err := store.Exists(ctx, "Name_EN-US1.jpg")
package storage
