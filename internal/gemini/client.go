// Package gemini wraps the Google GenAI SDK for the image editing,
// image generation, and video generation models the editor relies on.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// Default model identifiers. Each can be overridden through Options.
const (
	DefaultEditModel  = "gemini-2.5-flash-image-preview"
	DefaultImageModel = "imagen-4.0-generate-001"
	DefaultVideoModel = "veo-2.0-generate-001"
)

// defaultVideoPollInterval is how often a pending video operation is polled.
const defaultVideoPollInterval = 10 * time.Second

var (
	ErrMissingAPIKey    = errors.New("no API key configured")
	ErrNoImageReturned  = errors.New("the model returned no image")
	ErrNoVideoReturned  = errors.New("the model returned no video")
	ErrNoImagesProvided = errors.New("at least one image is required")
)

// videoProgressStages cycle while a video operation is pending.
var videoProgressStages = []string{
	"analyzing the source image",
	"generating video frames",
	"processing motion",
	"rendering output",
	"finishing up",
}

// Options configures a Client.
type Options struct {
	APIKey     string
	EditModel  string
	ImageModel string
	VideoModel string
	// RequestsPerMinute caps outbound model calls. Zero means the
	// default of 8.
	RequestsPerMinute int
}

// Client calls the Gemini family of models through the official SDK.
type Client struct {
	client       *genai.Client
	limiter      *rate.Limiter
	editModel    string
	imageModel   string
	videoModel   string
	pollInterval time.Duration
}

// NewClient creates a Client for the hosted Gemini API.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}

	rpm := opts.RequestsPerMinute
	if rpm <= 0 {
		rpm = 8
	}

	c := &Client{
		client:       client,
		limiter:      rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
		editModel:    opts.EditModel,
		imageModel:   opts.ImageModel,
		videoModel:   opts.VideoModel,
		pollInterval: defaultVideoPollInterval,
	}
	if c.editModel == "" {
		c.editModel = DefaultEditModel
	}
	if c.imageModel == "" {
		c.imageModel = DefaultImageModel
	}
	if c.videoModel == "" {
		c.videoModel = DefaultVideoModel
	}
	return c, nil
}

// EditImage sends the images followed by the instruction prompt and
// returns the first image part of the response.
func (c *Client) EditImage(ctx context.Context, prompt string, images []ImagePart) (*ImageResult, error) {
	if len(images) == 0 {
		return nil, ErrNoImagesProvided
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	parts := make([]*genai.Part, 0, len(images)+1)
	for _, img := range images {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: img.MimeType,
				Data:     img.Data,
			},
		})
	}
	parts = append(parts, genai.NewPartFromText(prompt))

	resp, err := c.client.Models.GenerateContent(ctx, c.editModel,
		[]*genai.Content{{Parts: parts}},
		&genai.GenerateContentConfig{
			ResponseModalities: []string{"IMAGE", "TEXT"},
		})
	if err != nil {
		return nil, wrapf(err, "image edit failed")
	}

	result := &ImageResult{}
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.InlineData != nil && result.Data == nil {
				result.Data = part.InlineData.Data
				result.MimeType = part.InlineData.MIMEType
			}
			if part.Text != "" {
				result.Text += part.Text
			}
		}
	}
	if result.Data == nil {
		return nil, ErrNoImageReturned
	}
	return result, nil
}

// GenerateImage creates a fresh PNG from a text prompt.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (*ImageResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.client.Models.GenerateImages(ctx, c.imageModel, prompt,
		&genai.GenerateImagesConfig{
			NumberOfImages: 1,
			OutputMIMEType: "image/png",
		})
	if err != nil {
		return nil, wrapf(err, "image generation failed")
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, ErrNoImageReturned
	}
	return &ImageResult{
		Data:     resp.GeneratedImages[0].Image.ImageBytes,
		MimeType: "image/png",
	}, nil
}

// GenerateVideo starts a video operation and polls until it completes.
// The optional image seeds the first frame.
func (c *Client) GenerateVideo(ctx context.Context, prompt string, image *ImagePart, progress ProgressFunc) (*VideoResult, error) {
	if progress == nil {
		progress = func(string) {}
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	progress("initializing video generation")

	var seed *genai.Image
	if image != nil {
		seed = &genai.Image{
			ImageBytes: image.Data,
			MIMEType:   image.MimeType,
		}
	}

	op, err := c.client.Models.GenerateVideos(ctx, c.videoModel, prompt, seed,
		&genai.GenerateVideosConfig{NumberOfVideos: 1})
	if err != nil {
		return nil, wrapf(err, "video generation failed")
	}

	stage := 0
	for !op.Done {
		progress(videoProgressStages[stage%len(videoProgressStages)])
		stage++

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}

		op, err = c.client.Operations.GetVideosOperation(ctx, op, nil)
		if err != nil {
			return nil, wrapf(err, "video generation failed")
		}
	}

	progress("fetching video")
	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 || op.Response.GeneratedVideos[0].Video == nil {
		return nil, ErrNoVideoReturned
	}

	video := op.Response.GeneratedVideos[0]
	data, err := c.client.Files.Download(ctx, video.Video, nil)
	if err != nil {
		return nil, wrapf(err, "video download failed")
	}
	if len(data) == 0 {
		data = video.Video.VideoBytes
	}
	if len(data) == 0 {
		return nil, ErrNoVideoReturned
	}

	mimeType := video.Video.MIMEType
	if mimeType == "" {
		mimeType = "video/mp4"
	}
	return &VideoResult{Data: data, MimeType: mimeType}, nil
}
