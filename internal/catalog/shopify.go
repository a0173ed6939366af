package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"corralon_backend/platform/apperr"
)

const shopifyPageLimit = 250

var nextPageLink = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// ShopifyProvider reads products from the Shopify Admin REST API.
type ShopifyProvider struct {
	baseURL string
	token   string
	version string
	http    *http.Client
}

// ShopifyConfig is the subset of configuration the provider needs.
type ShopifyConfig interface {
	GetShopifyShopURL() string
	GetShopifyAccessToken() string
	GetShopifyAPIVersion() string
}

// NewShopifyProvider creates a provider for the configured shop.
func NewShopifyProvider(cfg ShopifyConfig) *ShopifyProvider {
	base := strings.TrimRight(cfg.GetShopifyShopURL(), "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return &ShopifyProvider{
		baseURL: base,
		token:   cfg.GetShopifyAccessToken(),
		version: cfg.GetShopifyAPIVersion(),
		http:    &http.Client{Timeout: 20 * time.Second},
	}
}

type shopifyProductsResponse struct {
	Products []struct {
		ID       int64  `json:"id"`
		Title    string `json:"title"`
		Status   string `json:"status"`
		Variants []struct {
			ID             int64   `json:"id"`
			Title          string  `json:"title"`
			SKU            string  `json:"sku"`
			Price          string  `json:"price"`
			CompareAtPrice *string `json:"compare_at_price"`
		} `json:"variants"`
	} `json:"products"`
}

// ListCatalog pages through every active product.
func (p *ShopifyProvider) ListCatalog(ctx context.Context) ([]Item, error) {
	next := fmt.Sprintf("%s/admin/api/%s/products.json?limit=%d&status=active&fields=id,title,status,variants",
		p.baseURL, p.version, shopifyPageLimit)

	var items []Item
	for next != "" {
		page, link, err := p.fetchPage(ctx, next)
		if err != nil {
			return nil, apperr.Collaborator("catalog", err)
		}
		items = append(items, page...)
		next = link
	}
	return items, nil
}

func (p *ShopifyProvider) fetchPage(ctx context.Context, url string) ([]Item, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("X-Shopify-Access-Token", p.token)
	req.Header.Set("Accept", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("shopify request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, "", fmt.Errorf("shopify returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var body shopifyProductsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, "", fmt.Errorf("decode shopify products: %w", err)
	}

	items := make([]Item, 0, len(body.Products))
	for _, prod := range body.Products {
		if prod.Status != "" && prod.Status != "active" {
			continue
		}
		item := Item{ID: strconv.FormatInt(prod.ID, 10), Title: strings.TrimSpace(prod.Title)}
		for _, v := range prod.Variants {
			variant := Variant{
				ID:         strconv.FormatInt(v.ID, 10),
				Title:      v.Title,
				SKU:        v.SKU,
				PriceCents: parseCents(v.Price),
			}
			if v.CompareAtPrice != nil {
				variant.CompareAtCents = parseCents(*v.CompareAtPrice)
			}
			item.Variants = append(item.Variants, variant)
		}
		items = append(items, item)
	}

	var link string
	if m := nextPageLink.FindStringSubmatch(resp.Header.Get("Link")); m != nil {
		link = m[1]
	}
	return items, link, nil
}

// parseCents converts a decimal price string ("12500.00") to cents.
func parseCents(raw string) int64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v < 0 {
		return 0
	}
	return int64(math.Round(v * 100))
}
