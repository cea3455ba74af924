package ytvideodata

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/net/html"
)

func (c *Client) getFromPage(ctx context.Context, videoId string) (*VideoData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL+videoId, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSuffix(getTitle(doc), " - YouTube")
	if title == "" {
		return nil, ErrVideoNotFound
	}

	return &VideoData{
		Title:        title,
		ThumbnailUrl: ThumbnailURL(videoId),
		AuthorName:   getLinkContent(doc),
	}, nil
}

func getTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
		return n.FirstChild.Data
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if title := getTitle(c); title != "" {
			return title
		}
	}
	return ""
}

func getLinkContent(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "link" {
		for _, attr := range n.Attr {
			if attr.Key == "itemprop" && attr.Val == "name" {
				for _, attr := range n.Attr {
					if attr.Key == "content" {
						return attr.Val
					}
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if content := getLinkContent(c); content != "" {
			return content
		}
	}
	return ""
}
