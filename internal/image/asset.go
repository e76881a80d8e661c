package image

// Asset is an in-memory emoji image prepared for upload. It lives only for
// the duration of a single emoji's processing.
type Asset struct {
	// Name is derived from the final (post-redirect) download URL.
	Name string
	// Data is the raster image payload in a Slack-accepted format.
	Data []byte
	// ContentType is the detected MIME type of Data.
	ContentType string
}
