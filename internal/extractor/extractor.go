// Package extractor resolves a contact email for a candidate show. It
// works through three tiers, cheapest and most trustworthy first:
//
//  1. direct — the catalog record already carries a publisher email
//  2. inferred — an LLM reads the show's own text, and its answer is
//     only accepted when the address appears verbatim in that text
//  3. scraped — deep-research runs only: the show's website is fetched
//     under an SSRF guard and the inferred tier runs over the page text
//
// Anything ambiguous, malformed, or unverifiable normalizes to no
// contact. The extractor never guesses.
package extractor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"showscout/internal/config"
	"showscout/internal/logging"
	"showscout/internal/services/llm"
	"showscout/internal/sources"
)

const (
	snippetMaxRunes  = 4000
	maxRedirectHops  = 5
	metadataHostname = "metadata.google.internal"
	metadataIPv4     = "169.254.169.254"
)

// Extraction methods recorded on the result.
const (
	MethodNone     = "none"
	MethodDirect   = "direct"
	MethodInferred = "inferred"
	MethodScraped  = "scraped"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ContactModel is the slice of the LLM client the extractor needs.
type ContactModel interface {
	Configured() bool
	ExtractContact(ctx context.Context, showName, host, snippet string) (llm.ContactGuess, error)
}

// Input describes one candidate to extract a contact for.
type Input struct {
	ShowName    string
	Host        string
	Description string
	Samples     []sources.ContentSample
	// DirectEmail is a publisher-supplied address from the catalog record.
	DirectEmail string
	// WebsiteURL enables the scrape fallback when DeepResearch is set.
	WebsiteURL   string
	DeepResearch bool
}

// Contact is the extraction outcome. Email is empty when Method is none.
type Contact struct {
	Email      string
	Confidence string
	Method     string
}

// Extractor runs the tiered contact resolution.
type Extractor struct {
	model       ContactModel
	scrapeCfg   config.Scrape
	httpClient  *http.Client
	validateURL func(ctx context.Context, target *url.URL) error
	logger      *slog.Logger
}

// Option customizes the extractor.
type Option func(*Extractor)

// WithHTTPClient overrides the scrape HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Extractor) {
		if client != nil {
			e.httpClient = client
		}
	}
}

// WithTargetValidator replaces the scrape-target guard. Tests use this to
// point the extractor at local fixtures.
func WithTargetValidator(validate func(ctx context.Context, target *url.URL) error) Option {
	return func(e *Extractor) {
		if validate != nil {
			e.validateURL = validate
		}
	}
}

// New builds an extractor. The model may be nil or unconfigured; the
// inferred and scraped tiers are then skipped and only direct contacts
// are reported.
func New(model ContactModel, scrapeCfg config.Scrape, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = logging.NewNop()
	}
	timeout := 10 * time.Second
	if scrapeCfg.TimeoutSeconds > 0 {
		timeout = time.Duration(scrapeCfg.TimeoutSeconds) * time.Second
	}
	extractor := &Extractor{
		model:       model,
		scrapeCfg:   scrapeCfg,
		logger:      logging.WithComponent(logger, "extractor"),
		validateURL: ValidateTargetURL,
	}
	extractor.httpClient = &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirectHops {
				return fmt.Errorf("too many redirects (%d)", len(via))
			}
			return extractor.validateURL(req.Context(), req.URL)
		},
	}
	for _, opt := range opts {
		opt(extractor)
	}
	return extractor
}

// Extract resolves a contact for one candidate. Failures inside a tier
// degrade to the next tier or to no contact; Extract itself never fails.
func (e *Extractor) Extract(ctx context.Context, input Input) Contact {
	if contact, ok := e.directTier(input); ok {
		return contact
	}

	if e.model == nil || !e.model.Configured() {
		return Contact{Method: MethodNone}
	}

	snippet := buildSnippet(input)
	if contact, ok := e.inferTier(ctx, input, snippet, MethodInferred); ok {
		return contact
	}

	if input.DeepResearch && strings.TrimSpace(input.WebsiteURL) != "" {
		if contact, ok := e.scrapeTier(ctx, input); ok {
			return contact
		}
	}

	return Contact{Method: MethodNone}
}

func (e *Extractor) directTier(input Input) (Contact, bool) {
	email := strings.ToLower(strings.TrimSpace(input.DirectEmail))
	if email == "" {
		return Contact{}, false
	}
	if !emailPattern.MatchString(email) {
		e.logger.Debug("direct contact rejected", "show", input.ShowName, "reason", "malformed address")
		return Contact{}, false
	}
	return Contact{Email: email, Confidence: "high", Method: MethodDirect}, true
}

func (e *Extractor) inferTier(ctx context.Context, input Input, snippet, method string) (Contact, bool) {
	if strings.TrimSpace(snippet) == "" {
		return Contact{}, false
	}
	guess, err := e.model.ExtractContact(ctx, input.ShowName, input.Host, snippet)
	if err != nil {
		e.logger.Debug("contact inference failed", "show", input.ShowName, "error", err)
		return Contact{}, false
	}
	if guess.Email == "" {
		return Contact{}, false
	}
	if !emailPattern.MatchString(guess.Email) {
		e.logger.Debug("inferred contact rejected", "show", input.ShowName, "reason", "malformed address")
		return Contact{}, false
	}
	// Anti-fabrication: the address must occur verbatim in the text the
	// model was shown.
	if !strings.Contains(strings.ToLower(snippet), guess.Email) {
		e.logger.Debug("inferred contact rejected", "show", input.ShowName, "reason", "address not present in source text")
		return Contact{}, false
	}
	confidence := guess.Confidence
	switch confidence {
	case "high", "medium", "low":
	default:
		confidence = "medium"
	}
	return Contact{Email: guess.Email, Confidence: confidence, Method: method}, true
}

func (e *Extractor) scrapeTier(ctx context.Context, input Input) (Contact, bool) {
	text, err := e.fetchPageText(ctx, input.WebsiteURL)
	if err != nil {
		e.logger.Debug("scrape fallback failed", "show", input.ShowName, "url", input.WebsiteURL, "error", err)
		return Contact{}, false
	}
	return e.inferTier(ctx, input, truncateRunes(text, snippetMaxRunes), MethodScraped)
}

func (e *Extractor) fetchPageText(ctx context.Context, rawURL string) (string, error) {
	target, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if err := e.validateURL(ctx, target); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", "showscout")
	req.Header.Set("Accept", "text/html")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch page: status %d", resp.StatusCode)
	}

	maxBytes := e.scrapeCfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 512 * 1024
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read page: %w", err)
	}
	// Oversized pages are refused outright rather than truncated into a
	// possibly misleading excerpt.
	if int64(len(body)) > maxBytes {
		return "", fmt.Errorf("page exceeds %d bytes", maxBytes)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}
	doc.Find("script, style, noscript").Remove()
	text := doc.Find("body").Text()
	if strings.TrimSpace(text) == "" {
		text = doc.Text()
	}
	return strings.Join(strings.Fields(text), " "), nil
}

// ValidateTargetURL rejects scrape targets that could reach internal
// infrastructure: non-HTTP schemes, cloud metadata endpoints, and hosts
// resolving to loopback, private, link-local, or unspecified addresses.
func ValidateTargetURL(ctx context.Context, target *url.URL) error {
	if target == nil {
		return fmt.Errorf("no target url")
	}
	scheme := strings.ToLower(target.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("refusing scheme %q", target.Scheme)
	}
	host := strings.ToLower(target.Hostname())
	if host == "" {
		return fmt.Errorf("no host in url")
	}
	if host == metadataHostname || host == metadataIPv4 {
		return fmt.Errorf("refusing metadata endpoint %q", host)
	}

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return fmt.Errorf("resolve %q: %w", host, err)
	}
	for _, addr := range addrs {
		ip := addr.IP
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
			return fmt.Errorf("refusing non-public address %s for %q", ip, host)
		}
	}
	return nil
}

func buildSnippet(input Input) string {
	var sb strings.Builder
	if desc := strings.TrimSpace(input.Description); desc != "" {
		sb.WriteString(desc)
		sb.WriteString("\n")
	}
	for _, sample := range input.Samples {
		if title := strings.TrimSpace(sample.Title); title != "" {
			sb.WriteString(title)
			sb.WriteString("\n")
		}
		if desc := strings.TrimSpace(sample.Description); desc != "" {
			sb.WriteString(desc)
			sb.WriteString("\n")
		}
	}
	return truncateRunes(strings.TrimSpace(sb.String()), snippetMaxRunes)
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
