// Package media plays a query on YouTube by opening the first search hit.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	log "log/slog"
	"net/http"
	"net/url"
	"regexp"
)

const (
	SearchURL = "https://www.youtube.com/results"
	WatchURL  = "https://www.youtube.com/watch"
)

var (
	ErrNotFound = errors.New("no video found")

	videoIDRe = regexp.MustCompile(`"videoId":"([A-Za-z0-9_-]{11})"`)
)

// Opener hands a URL to the desktop.
type Opener interface {
	OpenURL(ctx context.Context, link string) error
}

type YouTube struct {
	SearchURL string
	http      *http.Client
	opener    Opener
}

func NewYouTube(client *http.Client, opener Opener) *YouTube {
	if client == nil {
		client = http.DefaultClient
	}
	return &YouTube{SearchURL: SearchURL, http: client, opener: opener}
}

// Play finds the first video for query and opens it.
func (y *YouTube) Play(ctx context.Context, query string) error {
	id, err := y.firstVideo(ctx, query)
	if err != nil {
		return err
	}

	link := WatchURL + "?v=" + id
	log.Info("Playing", "query", query, "url", link)

	if err := y.opener.OpenURL(ctx, link); err != nil {
		return fmt.Errorf("open %s: %w", link, err)
	}
	return nil
}

func (y *YouTube) firstVideo(ctx context.Context, query string) (string, error) {
	q := url.Values{}
	q.Set("search_query", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.SearchURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9")

	resp, err := y.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("youtube search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("youtube search: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read youtube search: %w", err)
	}

	m := videoIDRe.FindSubmatch(body)
	if m == nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, query)
	}
	return string(m[1]), nil
}
