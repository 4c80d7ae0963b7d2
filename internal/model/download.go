package model

// Outcome is the final state of a single download.
type Outcome int

const (
	// OutcomePending means the download has not been attempted yet.
	OutcomePending Outcome = iota

	// OutcomeDownloaded means the image was fetched and written.
	OutcomeDownloaded

	// OutcomeSkipped means the target already existed and force was off.
	OutcomeSkipped

	// OutcomeFailed means the download aborted with an error.
	OutcomeFailed
)

// String returns the lowercase outcome name, also used as a metric label.
func (o Outcome) String() string {
	switch o {
	case OutcomeDownloaded:
		return "downloaded"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Download is an image resolved to a concrete source URL and target name.
//
// Downloads are created per image by the resolver and consumed right away
// by the download manager.
type Download struct {
	// Index is the position of the image in the API response (0 = most recent).
	Index int

	// URL is the absolute URL with the requested resolution substituted.
	URL string

	// FileName is the computed local file name.
	FileName string

	// Path is the full target location (directory + file name, or an s3:// URI).
	Path string

	// Image is the descriptor this download was resolved from.
	Image *Image

	// Outcome is set once the download has been processed.
	Outcome Outcome

	// Bytes is the number of bytes written when Outcome is OutcomeDownloaded.
	Bytes int64
}
