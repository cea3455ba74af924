package ytvideodata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	defaultOembedURL = "https://www.youtube.com/oembed"
	defaultPageURL   = "https://youtu.be/"
	thumbnailURLFmt  = "https://i.ytimg.com/vi/%s/hqdefault.jpg"
)

type VideoData struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailUrl string `json:"thumbnail_url"`
}

// ThumbnailURL is derived from the video id only, so it never needs a lookup.
func ThumbnailURL(videoId string) string {
	return fmt.Sprintf(thumbnailURLFmt, videoId)
}

type Client struct {
	httpClient *http.Client
	oembedURL  string
	pageURL    string
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithBaseURLs(oembedURL, pageURL string) Option {
	return func(c *Client) {
		c.oembedURL = oembedURL
		c.pageURL = pageURL
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		oembedURL:  defaultOembedURL,
		pageURL:    defaultPageURL,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) Get(ctx context.Context, videoId string) (*VideoData, error) {
	videoData, err := c.getWithEmbed(ctx, videoId)
	if err != nil {
		if !errors.Is(err, ErrVideoNotEmbeddable) {
			return nil, fmt.Errorf("failed to get video data with embed: %w", err)
		}

		videoData, err = c.getFromPage(ctx, videoId)
		if err != nil {
			return nil, fmt.Errorf("failed to get video data from page: %w", err)
		}
	}

	if videoData.ThumbnailUrl == "" {
		videoData.ThumbnailUrl = ThumbnailURL(videoId)
	}

	return videoData, nil
}
