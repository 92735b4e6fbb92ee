package catalog

// CoverStore holds book cover blobs. Store returns an opaque handle that is
// kept on the book row and later passed back to Delete; handles double as
// public file names under the uploads route.
type CoverStore interface {
	Store(data []byte, ext string) (string, error)
	Delete(handle string) error
}
