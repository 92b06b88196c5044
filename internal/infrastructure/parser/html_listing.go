package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"QueChoisir/internal/catalog"
	"QueChoisir/internal/domain"
)

const (
	// HTMLSourceName identifies the listing strategy inside the registry.
	HTMLSourceName = "html"

	defaultCardSelector = ".product"
	cardSelectorOption  = "cardSelector"

	// decimalSeparatorOption selects "." (1,299.00) or "," (1.299,00).
	decimalSeparatorOption = "decimalSeparator"
)

var priceExpr = regexp.MustCompile(`\d(?:[\d.,]|[ \x{00a0}\x{202f}]\d)*`)

// HTMLListingSource builds products from the cards of a listing page.
type HTMLListingSource struct {
	client *http.Client
	logger *slog.Logger
}

// NewHTMLListingSource wires an HTTP client; a nil client gets a 20s timeout.
func NewHTMLListingSource(client *http.Client, logger *slog.Logger) *HTMLListingSource {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &HTMLListingSource{client: client, logger: logger}
}

// Name identifies the strategy inside the registry.
func (h *HTMLListingSource) Name() string {
	return HTMLSourceName
}

// Load fetches req.URL and extracts every valid product card.
func (h *HTMLListingSource) Load(ctx context.Context, req catalog.Request) ([]domain.Product, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("no listing url provided for source %s", req.SourceName)
	}

	decimalSep, err := decimalSeparator(req.Options[decimalSeparatorOption])
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", req.SourceName, err)
	}

	doc, err := h.fetchDocument(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", req.SourceName, err)
	}

	selector := req.Options[cardSelectorOption]
	if selector == "" {
		selector = defaultCardSelector
	}

	return h.extractProducts(doc, selector, decimalSep, req.SourceName), nil
}

func (h *HTMLListingSource) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "QueChoisir/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func (h *HTMLListingSource) extractProducts(doc *goquery.Document, selector string, decimalSep byte, sourceName string) []domain.Product {
	var collected []domain.Product

	doc.Find(selector).Each(func(i int, card *goquery.Selection) {
		product, err := parseCard(card, decimalSep)
		if err != nil {
			h.debug("skip product card", "source", sourceName, "index", i, "error", err)
			return
		}
		collected = append(collected, product)
	})

	h.debug("listing parsed", "source", sourceName, "products", len(collected))
	return collected
}

func parseCard(card *goquery.Selection, decimalSep byte) (domain.Product, error) {
	name := cleanText(card.Find(".product-name").First().Text())
	specs := cleanText(card.Find(".product-specs").First().Text())

	category, ok := card.Attr("data-category")
	if !ok || strings.TrimSpace(category) == "" {
		category = cleanText(card.Find(".product-category").First().Text())
	}

	price, err := parsePrice(card.Find(".product-price").First().Text(), decimalSep)
	if err != nil {
		return domain.Product{}, fmt.Errorf("card %q: %w", name, err)
	}

	return domain.NewProduct(name, specs, price, category)
}

func decimalSeparator(option string) (byte, error) {
	switch option {
	case "", ".":
		return '.', nil
	case ",":
		return ',', nil
	default:
		return 0, fmt.Errorf("unsupported decimal separator %q", option)
	}
}

// parsePrice reads the first number in raw. Groups of three are separated by
// spaces or by the separator opposite to decimalSep, and at most two fraction
// digits are accepted, so "1.299,00" read with "." is rejected.
func parsePrice(raw string, decimalSep byte) (decimal.Decimal, error) {
	match := strings.TrimRight(priceExpr.FindString(raw), ".,")
	if match == "" {
		return decimal.Decimal{}, fmt.Errorf("no price in %q", strings.TrimSpace(raw))
	}

	groupSep := byte(',')
	if decimalSep == ',' {
		groupSep = '.'
	}
	g := string(groupSep)
	match = strings.NewReplacer(" ", g, "\u00a0", g, "\u202f", g).Replace(match)

	intPart, fraction, hasFraction := strings.Cut(match, string(decimalSep))
	if hasFraction && (strings.IndexByte(fraction, groupSep) >= 0 || strings.IndexByte(fraction, decimalSep) >= 0) {
		return decimal.Decimal{}, fmt.Errorf("ambiguous price %q", match)
	}
	if len(fraction) > 2 {
		return decimal.Decimal{}, fmt.Errorf("ambiguous price %q: %d fraction digits", match, len(fraction))
	}

	groups := strings.Split(intPart, string(groupSep))
	for i, grp := range groups {
		if grp == "" || (i > 0 && len(grp) != 3) || (i == 0 && len(groups) > 1 && len(grp) > 3) {
			return decimal.Decimal{}, fmt.Errorf("ambiguous price %q", match)
		}
	}

	normalized := strings.Join(groups, "")
	if hasFraction {
		normalized += "." + fraction
	}
	return decimal.NewFromString(normalized)
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (h *HTMLListingSource) debug(msg string, args ...any) {
	if h.logger != nil {
		h.logger.Debug(msg, args...)
	}
}
