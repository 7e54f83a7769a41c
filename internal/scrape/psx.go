// Package scrape fetches closing prices from the PSX data portal company
// pages. There is no public quote API, so prices come out of the HTML.
package scrape

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/net/html"

	"finsum/internal/core"
)

const (
	quoteCloseClass = "quote__close"
	userAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// PSXClient scrapes quotes from the PSX data portal.
type PSXClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewPSXClient(baseURL string, timeout time.Duration) *PSXClient {
	return &PSXClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ClosingPrice fetches the latest closing price for a symbol. found is false
// when the page has no quote element, which happens for delisted or mistyped
// symbols; that is a skip, not an error.
func (c *PSXClient) ClosingPrice(ctx context.Context, symbol string) (price decimal.Decimal, found bool, err error) {
	url := fmt.Sprintf("%s/company/%s", c.baseURL, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("build request for %s: %w", symbol, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, false, fmt.Errorf("fetch %s: status %d", symbol, resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("parse page for %s: %w", symbol, err)
	}

	text, ok := findByClass(doc, quoteCloseClass)
	if !ok {
		return decimal.Zero, false, nil
	}

	price, err = core.ParseAmount(strings.TrimSpace(text))
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("quote for %s: %w", symbol, err)
	}
	return price, true, nil
}

// findByClass walks the tree depth first and returns the concatenated text
// of the first node carrying the class.
func findByClass(n *html.Node, class string) (string, bool) {
	if n.Type == html.ElementNode && hasClass(n, class) {
		return nodeText(n), true
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if text, ok := findByClass(child, class); ok {
			return text, true
		}
	}
	return "", false
}

func hasClass(n *html.Node, class string) bool {
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

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}
