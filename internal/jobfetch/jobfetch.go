// Package jobfetch downloads a job posting page and pulls out its text.
package jobfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (compatible; ResumeTailor/1.0)"

	maxBodyBytes = 2 << 20
)

var (
	// ErrEmptyPosting is returned when no description text could be found.
	ErrEmptyPosting = errors.New("job posting has no readable text")
	// ErrBlockedAddress is returned when a posting URL resolves to a
	// loopback, private or link-local address.
	ErrBlockedAddress = errors.New("address is not publicly routable")
)

// Posting is the useful content of a job page.
type Posting struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Description string `json:"description"`
}

// Error describes a failed fetch.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Fetcher retrieves job postings over HTTP.
type Fetcher struct {
	Client    *http.Client
	UserAgent string
}

// New returns a Fetcher with a bounded timeout that only connects to public
// addresses. The check runs at dial time, so redirects and DNS answers
// pointing inside the network are refused too.
func New(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second, Control: publicOnly}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	return &Fetcher{Client: &http.Client{Timeout: timeout, Transport: transport}, UserAgent: DefaultUserAgent}
}

// NewUnrestricted returns a Fetcher that may reach any address. The CLI uses
// it, where the caller already controls the network.
func NewUnrestricted(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{Client: &http.Client{Timeout: timeout}, UserAgent: DefaultUserAgent}
}

func publicOnly(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil || blockedIP(ip) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, host)
	}
	return nil
}

func blockedIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsMulticast()
}

// Fetch downloads rawURL and extracts the posting.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Posting, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return Posting{}, &Error{URL: rawURL, Message: "invalid URL", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return Posting{}, &Error{URL: rawURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Posting{}, &Error{URL: rawURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Posting{}, &Error{URL: rawURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	posting, err := Parse(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Posting{}, &Error{URL: rawURL, Message: "failed to parse page", Cause: err}
	}
	posting.URL = parsed.String()
	return posting, nil
}

var descriptionSelectors = []string{
	".job-description",
	".job-content",
	"#job-description",
	"#job-content",
	".posting-content",
	".job-details",
	"[data-testid='job-description']",
	"main",
	"article",
	".content",
	"#content",
}

// Parse extracts title, company and description from an HTML document.
func Parse(r io.Reader) (Posting, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Posting{}, err
	}

	p := Posting{
		Title:   firstNonEmpty(metaContent(doc, "og:title"), doc.Find("h1").First().Text(), doc.Find("title").First().Text()),
		Company: firstNonEmpty(metaContent(doc, "og:site_name"), doc.Find("[data-company], .company-name").First().Text()),
	}

	doc.Find("nav, footer, header, script, style, noscript, .ad, .advertisement, .sidebar, .cookie-banner, .popup").Remove()

	content := doc.Find("body")
	for _, selector := range descriptionSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			content = sel.First()
			break
		}
	}
	p.Description = cleanWhitespace(blockText(content))
	if p.Description == "" {
		return p, ErrEmptyPosting
	}
	return p, nil
}

// blockText is Selection.Text with a newline after each block element so
// list items stay on their own lines.
func blockText(sel *goquery.Selection) string {
	sel.Find("p, li, br, h1, h2, h3, h4, div, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	return sel.Text()
}

func metaContent(doc *goquery.Document, property string) string {
	v, _ := doc.Find(`meta[property="` + property + `"]`).Attr("content")
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.Join(strings.Fields(v), " "); v != "" {
			return v
		}
	}
	return ""
}

func cleanWhitespace(text string) string {
	var cleaned []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
