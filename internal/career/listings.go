// Package career fetches and filters job listings from a careers page.
package career

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// ErrListingFetch reports that the careers page could not be fetched or
// parsed. Callers surface it to the user as an apology, not a crash.
var ErrListingFetch = errors.New("job listing fetch failed")

// Listing is one open position on the careers page.
type Listing struct {
	Title    string
	Location string
	Link     string
}

// Source provides the current job listings.
type Source interface {
	Listings(ctx context.Context) ([]Listing, error)
}

// HTTPSource scrapes listings from a careers page. Each listing is a
// `div.job-title` element holding an `h6.job-title__heading` title (whose
// enclosing anchor carries the application link) and a `span.job-location`.
type HTTPSource struct {
	url    string
	client *http.Client
}

func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPSource{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSource) Listings(ctx context.Context) ([]Listing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrListingFetch, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrListingFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: careers page returned %d", ErrListingFetch, resp.StatusCode)
	}

	root, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse page: %v", ErrListingFetch, err)
	}
	return parseListings(root), nil
}

func parseListings(root *html.Node) []Listing {
	var listings []Listing
	walk(root, func(n *html.Node) {
		if !hasClass(n, "div", "job-title") {
			return
		}
		listing := Listing{Title: "N/A", Location: "N/A", Link: "N/A"}
		walk(n, func(c *html.Node) {
			switch {
			case hasClass(c, "h6", "job-title__heading"):
				listing.Title = strings.TrimSpace(textContent(c))
				if link := enclosingHref(c); link != "" {
					listing.Link = link
				}
			case hasClass(c, "span", "job-location"):
				listing.Location = strings.TrimSpace(textContent(c))
			}
		})
		listings = append(listings, listing)
	})
	return listings
}

// Filter keeps listings whose title contains jobType and whose location
// contains location, both case-insensitive. An empty parameter means no
// filter on that field.
func Filter(listings []Listing, jobType, location string) []Listing {
	jobType = strings.ToLower(jobType)
	location = strings.ToLower(location)

	var out []Listing
	for _, l := range listings {
		if jobType != "" && !strings.Contains(strings.ToLower(l.Title), jobType) {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(l.Location), location) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Format renders listings as the reply text, one block per listing.
func Format(listings []Listing) string {
	if len(listings) == 0 {
		return "No matching job openings found."
	}
	var b strings.Builder
	for i, l := range listings {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Title: %s\nLocation: %s\nApply here: %s\n", l.Title, l.Location, l.Link)
	}
	return b.String()
}

func walk(n *html.Node, fn func(*html.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		fn(c)
		walk(c, fn)
	}
}

func hasClass(n *html.Node, tag, class string) bool {
	if n.Type != html.ElementNode || n.Data != tag {
		return false
	}
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	})
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
	}
	return b.String()
}

func enclosingHref(n *html.Node) string {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type != html.ElementNode || p.Data != "a" {
			continue
		}
		for _, attr := range p.Attr {
			if attr.Key == "href" {
				return strings.TrimSpace(attr.Val)
			}
		}
	}
	return ""
}
