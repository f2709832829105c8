package jobs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"veracity/internal/errors"
)

// Defaults for outbound HTTP probes
const (
	DefaultRequestTimeout = 10 * time.Second
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	DefaultMaxRedirects   = 5
	DefaultRDAPURL        = "https://rdap.org"
	defaultMaxBodyBytes   = 5 << 20
)

// Options configures outbound requests made while verifying a posting
type Options struct {
	RequestTimeout time.Duration
	UserAgent      string
	MaxRedirects   int
	RDAPURL        string
}

// DefaultOptions returns the default probe settings
func DefaultOptions() Options {
	return Options{
		RequestTimeout: DefaultRequestTimeout,
		UserAgent:      DefaultUserAgent,
		MaxRedirects:   DefaultMaxRedirects,
		RDAPURL:        DefaultRDAPURL,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = d.RequestTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = d.UserAgent
	}
	if o.MaxRedirects <= 0 {
		o.MaxRedirects = d.MaxRedirects
	}
	return o
}

// Page is a fetched HTTP response
type Page struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
	Redirects  []string
	Secure     bool
}

// Fetcher performs bounded GET requests for the verification steps
type Fetcher struct {
	client       *http.Client
	userAgent    string
	maxRedirects int
}

// NewFetcher creates a fetcher. A nil client selects an instrumented client
// with the configured timeout.
func NewFetcher(opts Options, client *http.Client) *Fetcher {
	opts = opts.withDefaults()
	if client == nil {
		client = &http.Client{
			Timeout:   opts.RequestTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &Fetcher{client: client, userAgent: opts.UserAgent, maxRedirects: opts.MaxRedirects}
}

// Get fetches rawURL, following at most the configured number of redirects.
// Any HTTP status is returned as a Page; only transport failures are errors.
func (f *Fetcher) Get(ctx context.Context, rawURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	var redirects []string
	client := *f.client
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) > f.maxRedirects {
			return fmt.Errorf("stopped after %d redirects", f.maxRedirects)
		}
		redirects = append(redirects, via[len(via)-1].URL.String())
		return nil
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, defaultMaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if redirects == nil {
		redirects = []string{}
	}
	return &Page{
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		Redirects:  redirects,
		Secure:     resp.Request.URL.Scheme == "https",
	}, nil
}

// FetchPosting downloads a job posting and returns its visible text
func (f *Fetcher) FetchPosting(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", errors.NewValidationError(errors.ErrCodeInvalidRequest, "invalid job posting URL", err).
			WithContext("url", rawURL)
	}

	page, err := f.Get(ctx, rawURL)
	if err != nil {
		return "", errors.NewNetworkError(errors.ErrCodeFetchFailed, "failed to fetch job posting", err).
			WithContext("url", rawURL)
	}
	if page.StatusCode != http.StatusOK {
		return "", errors.NewNetworkError(errors.ErrCodeFetchFailed,
			fmt.Sprintf("job posting returned HTTP status %d", page.StatusCode), nil).
			WithContext("url", rawURL)
	}

	text, err := ExtractPostingText(page.Body)
	if err != nil {
		return "", errors.NewValidationError(errors.ErrCodeInvalidFormat, "failed to parse job posting page", err)
	}
	return text, nil
}

var multiSpace = regexp.MustCompile(`[ \t]{2,}`)

// ExtractPostingText strips markup from an HTML page and returns one text
// chunk per line
func ExtractPostingText(html []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find("script, style, noscript, iframe").Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var chunks []string
	for _, line := range strings.Split(root.Text(), "\n") {
		for _, chunk := range multiSpace.Split(line, -1) {
			if chunk = strings.TrimSpace(chunk); chunk != "" {
				chunks = append(chunks, chunk)
			}
		}
	}
	return strings.Join(chunks, "\n"), nil
}

var (
	pagePhonePattern       = regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)
	suspiciousPageKeywords = []string{"get rich quick", "make money fast", "work from home guaranteed",
		"no experience necessary", "earn thousands weekly", "financial freedom"}
	contactPageWords = []string{"contact", "address", "phone", "email"}
)

// pageQuality is what a company home page says about the company
type pageQuality struct {
	professionalDesign  bool
	contactInfoPresent  bool
	contentQualityScore float64
	suspiciousElements  []string
}

func analyzePageQuality(html []byte) (pageQuality, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return pageQuality{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	design := []bool{
		doc.Find("title").Length() > 0,
		doc.Find(`meta[name="description"]`).Length() > 0,
		doc.Find("nav").Length() > 0,
		doc.Find("footer").Length() > 0,
		doc.Find("img").Length() > 0,
		doc.Find(`link[rel="stylesheet"]`).Length() > 0,
	}
	designCount := 0
	for _, ok := range design {
		if ok {
			designCount++
		}
	}

	text := doc.Text()
	lower := strings.ToLower(text)
	suspicious := matchedPhrases(lower, suspiciousPageKeywords)

	q := pageQuality{
		professionalDesign: designCount >= 4,
		contactInfoPresent: strings.Contains(text, "@") ||
			pagePhonePattern.MatchString(text) ||
			containsAny(lower, contactPageWords),
		suspiciousElements: suspicious,
	}
	q.contentQualityScore = fraction([]bool{
		len(text) > 500,
		doc.Find("a").Length() > 5,
		doc.Find("h1").Length() > 0,
		doc.Find("h2, h3").Length() > 0,
		len(suspicious) == 0,
	}) * 100
	return q, nil
}
