package driven

import "context"

// Publisher posts a finished document to a content-management endpoint.
// It is an external collaborator of the retrieval pipeline, specified
// only at this interface.
type Publisher interface {
	// Publish creates a post and returns its identifier and public URL.
	Publish(ctx context.Context, post Post) (*PublishResult, error)
}

// Post is the payload for a publish call.
type Post struct {
	// Title is the post title.
	Title string

	// Content is the HTML body.
	Content string

	// Status is the publication status, e.g. "draft" or "publish".
	Status string
}

// PublishResult identifies a created post.
type PublishResult struct {
	// ID is the created resource identifier.
	ID int

	// Link is the public URL, when the endpoint returns one.
	Link string
}
