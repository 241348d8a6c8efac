package gemini

import "context"

// ImagePart is an inline image handed to the model.
type ImagePart struct {
	Data     []byte
	MimeType string
}

// ImageResult is a generated or edited image returned by the model,
// with any accompanying commentary text.
type ImageResult struct {
	Data     []byte
	MimeType string
	Text     string
}

// VideoResult is a generated video clip.
type VideoResult struct {
	Data     []byte
	MimeType string
}

// ProgressFunc receives human-readable status updates while a
// long-running generation is in flight.
type ProgressFunc func(message string)

// ClientInterface defines the contract for model backend operations.
// This interface enables mocking for testing the editor package.
type ClientInterface interface {
	// EditImage sends the primary image, any reference images, and an
	// instruction prompt to the image editing model.
	EditImage(ctx context.Context, prompt string, images []ImagePart) (*ImageResult, error)

	// GenerateImage creates a new image from a text prompt alone.
	GenerateImage(ctx context.Context, prompt string) (*ImageResult, error)

	// GenerateVideo animates the given image according to the prompt,
	// polling the long-running operation until it completes.
	GenerateVideo(ctx context.Context, prompt string, image *ImagePart, progress ProgressFunc) (*VideoResult, error)
}

// Verify that *Client implements ClientInterface at compile time
var _ ClientInterface = (*Client)(nil)
