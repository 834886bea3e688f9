// Package wiki fetches short Wikipedia summaries.
package wiki

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
)

var ErrNotFound = errors.New("topic not found")

type Client struct {
	// Endpoint maps a language code to the api.php URL of that wiki.
	Endpoint func(lang string) string
	http     *http.Client
}

func New(client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{
		Endpoint: func(lang string) string {
			return fmt.Sprintf("https://%s.wikipedia.org/w/api.php", lang)
		},
		http: client,
	}
}

// Summarize searches for topic and returns the first sentences of the intro
// of the best hit as plain text.
func (c *Client) Summarize(ctx context.Context, topic, lang string, sentences int) (string, error) {
	if sentences <= 0 {
		sentences = 2
	}
	endpoint := c.Endpoint(lang)

	search := url.Values{}
	search.Set("action", "query")
	search.Set("list", "search")
	search.Set("srsearch", topic)
	search.Set("srlimit", "1")
	search.Set("format", "json")
	search.Set("formatversion", "2")

	body, err := c.get(ctx, endpoint, search)
	if err != nil {
		return "", fmt.Errorf("search %q: %w", topic, err)
	}
	title := gjson.GetBytes(body, "query.search.0.title").String()
	if title == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, topic)
	}

	extract := url.Values{}
	extract.Set("action", "query")
	extract.Set("prop", "extracts")
	extract.Set("exintro", "1")
	extract.Set("exsentences", strconv.Itoa(sentences))
	extract.Set("redirects", "1")
	extract.Set("titles", title)
	extract.Set("format", "json")
	extract.Set("formatversion", "2")

	body, err = c.get(ctx, endpoint, extract)
	if err != nil {
		return "", fmt.Errorf("extract %q: %w", title, err)
	}

	html := gjson.GetBytes(body, "query.pages.0.extract").String()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse extract: %w", err)
	}
	text := strings.Join(strings.Fields(doc.Text()), " ")
	if text == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, topic)
	}

	return text, nil
}

func (c *Client) get(ctx context.Context, endpoint string, q url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "astra/1.0 (voice assistant)")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s", resp.Status)
	}
	return body, nil
}
