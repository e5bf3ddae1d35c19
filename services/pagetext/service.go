// Package pagetext fetches a web page and reduces it to its visible text, for
// use as optional page context in an extraction request. This boundary is
// best-effort: callers degrade to "no page context" on any failure.
package pagetext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/avast/retry-go/v4"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/net/html/charset"
)

const (
	// maxBodyBytes caps how much of a page is read. Visible text for context
	// never needs more.
	maxBodyBytes = 2 << 20

	fetchAttempts = 3
)

var ErrNotHTML = errors.New("page is not HTML")

// Service fetches and extracts page text.
type Service struct {
	httpc *http.Client
}

// New creates the service. A nil httpc gets a 15 second timeout.
func New(httpc *http.Client) *Service {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Service{httpc: httpc}
}

// Extract fetches pageURL and returns its visible text with scripts, styles,
// and markup stripped. Transient fetch failures are retried a few times;
// client-side errors are not.
func (s *Service) Extract(ctx context.Context, pageURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("unsupported page url %q", pageURL)
	}

	var body []byte
	var contentType string

	err = retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}

			resp, err := s.httpc.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode >= 500 {
				return fmt.Errorf("page fetch failed: status %d", resp.StatusCode)
			}
			if resp.StatusCode != http.StatusOK {
				return retry.Unrecoverable(fmt.Errorf("page fetch failed: status %d", resp.StatusCode))
			}

			data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			if err != nil {
				return err
			}

			body = data
			contentType = resp.Header.Get("Content-Type")
			return nil
		},
		retry.Attempts(fetchAttempts),
		retry.Delay(300*time.Millisecond),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", err
	}

	if !isHTML(contentType, body) {
		return "", ErrNotHTML
	}

	return visibleText(body, contentType)
}

// isHTML accepts a declared HTML content type, falling back to sniffing the
// bytes when the server declares nothing useful.
func isHTML(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	mt := mimetype.Detect(body)
	return mt.Is("text/html") || mt.Is("application/xhtml+xml")
}

// visibleText parses the document, honoring its declared character encoding,
// and returns body text with script/style content removed and whitespace
// collapsed to single spaces.
func visibleText(body []byte, contentType string) (string, error) {
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return "", fmt.Errorf("decode page charset: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	doc.Find("script, style, noscript, template").Remove()

	text := doc.Find("body").Text()
	if strings.TrimSpace(text) == "" {
		text = doc.Text()
	}

	return strings.Join(strings.Fields(text), " "), nil
}
