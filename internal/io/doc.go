// Package ioutils provides file system utilities used by the local storage
// adapter.
//
// # File Operations
//
//	// Ensure the picture directory exists
//	err := ioutils.EnsureDir("/home/user/Pictures/Bing")
//
//	// Skip files already on disk
//	exists, err := ioutils.Exists(path)
//
//	// Write a download without leaving partial files behind
//	n, err := ioutils.WriteFileAtomic(path, body)
//
// # Filename Sanitization
//
// Names derived from upstream URLs go through SanitizeFileName:
//
//	safe := ioutils.SanitizeFileName("a/b:c.jpg") // Returns "a_b_c.jpg"
package ioutils
