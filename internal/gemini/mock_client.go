package gemini

import "context"

// MockClient is a mock implementation of ClientInterface for testing.
type MockClient struct {
	// EditResult is returned by EditImage when Err is unset.
	EditResult *ImageResult
	// GenerateResult is returned by GenerateImage when Err is unset.
	GenerateResult *ImageResult
	// VideoResult is returned by GenerateVideo when Err is unset.
	VideoResult *VideoResult
	// Err can be set to make methods return an error.
	Err error

	// EditCalls records the prompts passed to EditImage.
	EditCalls []string
	// EditImageCounts records how many images each EditImage call received.
	EditImageCounts []int
	// GenerateCalls records the prompts passed to GenerateImage.
	GenerateCalls []string
	// VideoCalls records the prompts passed to GenerateVideo.
	VideoCalls []string
	// VideoProgress records every progress message emitted.
	VideoProgress []string
}

// NewMockClient creates a MockClient with canned single-pixel results.
func NewMockClient() *MockClient {
	return &MockClient{
		EditResult:     &ImageResult{Data: []byte("edited"), MimeType: "image/png"},
		GenerateResult: &ImageResult{Data: []byte("generated"), MimeType: "image/png"},
		VideoResult:    &VideoResult{Data: []byte("video"), MimeType: "video/mp4"},
	}
}

// EditImage records the call and returns the canned edit result.
func (m *MockClient) EditImage(ctx context.Context, prompt string, images []ImagePart) (*ImageResult, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if len(images) == 0 {
		return nil, ErrNoImagesProvided
	}
	m.EditCalls = append(m.EditCalls, prompt)
	m.EditImageCounts = append(m.EditImageCounts, len(images))
	return m.EditResult, nil
}

// GenerateImage records the call and returns the canned generation result.
func (m *MockClient) GenerateImage(ctx context.Context, prompt string) (*ImageResult, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.GenerateCalls = append(m.GenerateCalls, prompt)
	return m.GenerateResult, nil
}

// GenerateVideo records the call, emits one progress message, and
// returns the canned video result.
func (m *MockClient) GenerateVideo(ctx context.Context, prompt string, image *ImagePart, progress ProgressFunc) (*VideoResult, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.VideoCalls = append(m.VideoCalls, prompt)
	if progress != nil {
		msg := "initializing video generation"
		progress(msg)
		m.VideoProgress = append(m.VideoProgress, msg)
	}
	return m.VideoResult, nil
}

// Verify MockClient implements ClientInterface
var _ ClientInterface = (*MockClient)(nil)
