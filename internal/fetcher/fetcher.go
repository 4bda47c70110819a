// Package fetcher turns a goal typed as a link into a readable description.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/pbaille/focusflow/internal/observability"
)

const (
	maxBody   = 1 << 20
	maxTitle  = 120
	userAgent = "focusflow/1.0 (goal-link)"
)

// Fetcher resolves goal links to page titles.
type Fetcher struct {
	client *http.Client
	log    *slog.Logger
}

// New creates a Fetcher. A nil client gets a 10 second timeout.
func New(client *http.Client, log *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Fetcher{client: client, log: observability.OrDefault(log)}
}

// IsURL checks if a string looks like a URL
func IsURL(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "www.")
}

// Resolve returns "title (url)" for a goal given as a link and the goal
// unchanged otherwise or when the page cannot be read.
func (f *Fetcher) Resolve(ctx context.Context, goal string) string {
	goal = strings.TrimSpace(goal)
	if !IsURL(goal) {
		return goal
	}
	title, err := f.Title(ctx, goal)
	if err != nil {
		f.log.Warn("could not resolve goal link", "url", goal, "error", err)
		return goal
	}
	return fmt.Sprintf("%s (%s)", title, goal)
}

// Title fetches rawURL and returns its document title, or the first
// heading when the page has none.
func (f *Fetcher) Title(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme == "" {
		// "www.example.com/x" parses as a path
		u, err = url.Parse("https://" + strings.TrimSpace(rawURL))
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	title := findText(doc, "title")
	if title == "" {
		title = findText(doc, "h1")
	}
	if title == "" {
		return "", fmt.Errorf("no title found")
	}
	if runes := []rune(title); len(runes) > maxTitle {
		title = string(runes[:maxTitle]) + "..."
	}
	return title, nil
}

// findText returns the collapsed text of the first element named tag.
func findText(n *html.Node, tag string) string {
	if n.Type == html.ElementNode && n.Data == tag {
		var sb strings.Builder
		collect(n, &sb)
		return strings.Join(strings.Fields(sb.String()), " ")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if text := findText(c, tag); text != "" {
			return text
		}
	}
	return ""
}

func collect(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		sb.WriteString(" ")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c, sb)
	}
}
