package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/kwikflip/backend/internal/metrics"
	"github.com/kwikflip/backend/internal/models"
)

const (
	ebayFindingURL        = "https://svcs.ebay.com/services/search/FindingService/v1"
	ebayServiceVersion    = "1.13.0"
	ebayDefaultTimeout    = 15 * time.Second
	ebayDefaultLimit      = 30
	ebayMaxLimit          = 100 // Finding API caps entriesPerPage at 100
	ebayDefaultCacheSize  = 128
	ebayDefaultCacheTTL   = 10 * time.Minute
	ebayDefaultRatePerSec = 2.0
)

// SearchRequest asks a gateway for one side (active or sold) of a market
type SearchRequest struct {
	Query  string
	Status models.ListingStatus
	Filter models.ListingFilter
	Limit  int
}

// SearchGateway supplies raw listings. Implementations return *GatewayError on failure.
type SearchGateway interface {
	Search(ctx context.Context, req SearchRequest) ([]models.Listing, error)
}

// EbayOptions configures the Finding API client
type EbayOptions struct {
	AppID             string
	BaseURL           string
	ResultsLimit      int
	RequestsPerSecond float64
	CacheSize         int
	CacheTTL          time.Duration
}

type cachedSearch struct {
	listings  []models.Listing
	fetchedAt time.Time
}

// EbayService searches eBay through the Finding API.
// Requests are paced client-side and results are cached briefly per query.
type EbayService struct {
	client   *http.Client
	appID    string
	baseURL  string
	limit    int
	limiter  *rate.Limiter
	cache    *lru.Cache[string, cachedSearch]
	cacheTTL time.Duration
	now      func() time.Time
}

// NewEbayService creates a new eBay Finding API client
func NewEbayService(opts EbayOptions) *EbayService {
	if opts.BaseURL == "" {
		opts.BaseURL = ebayFindingURL
	}
	if opts.ResultsLimit <= 0 {
		opts.ResultsLimit = ebayDefaultLimit
	}
	if opts.ResultsLimit > ebayMaxLimit {
		opts.ResultsLimit = ebayMaxLimit
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = ebayDefaultRatePerSec
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = ebayDefaultCacheSize
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = ebayDefaultCacheTTL
	}

	cache, err := lru.New[string, cachedSearch](opts.CacheSize)
	if err != nil {
		log.Printf("Failed to create search cache: %v", err)
	}

	return &EbayService{
		client:   &http.Client{Timeout: ebayDefaultTimeout},
		appID:    opts.AppID,
		baseURL:  opts.BaseURL,
		limit:    opts.ResultsLimit,
		limiter:  rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		cache:    cache,
		cacheTTL: opts.CacheTTL,
		now:      time.Now,
	}
}

// Search fetches active or sold listings for a query
func (s *EbayService) Search(ctx context.Context, req SearchRequest) ([]models.Listing, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, &ValidationError{Field: "query", Reason: "is required"}
	}
	if req.Status == "" {
		req.Status = models.ListingActive
	}
	limit := req.Limit
	if limit <= 0 || limit > s.limit {
		limit = s.limit
	}

	key := cacheKey(query, req.Status, req.Filter, limit)
	if s.cache != nil {
		if hit, ok := s.cache.Get(key); ok && s.now().Sub(hit.fetchedAt) < s.cacheTTL {
			metrics.SearchCacheHits.Inc()
			return hit.listings, nil
		}
		metrics.SearchCacheMisses.Inc()
	}

	if err := s.limiter.Wait(ctx); err != nil {
		metrics.GatewayErrorsTotal.WithLabelValues("rate_limit").Inc()
		return nil, &GatewayError{Op: "rate limit", Err: err}
	}

	listings, err := s.fetch(ctx, query, req.Status, req.Filter, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Add(key, cachedSearch{listings: listings, fetchedAt: s.now()})
	}
	return listings, nil
}

func cacheKey(query string, status models.ListingStatus, f models.ListingFilter, limit int) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%d",
		status, strings.ToLower(query), f.MinPrice.Decimal.String(), f.MaxPrice.Decimal.String(),
		strings.ToLower(f.Condition), limit)
}

func operationFor(status models.ListingStatus) string {
	if status == models.ListingSold {
		return "findCompletedItems"
	}
	return "findItemsByKeywords"
}

func (s *EbayService) buildURL(query string, status models.ListingStatus, f models.ListingFilter, limit int) string {
	params := url.Values{}
	params.Set("OPERATION-NAME", operationFor(status))
	params.Set("SERVICE-VERSION", ebayServiceVersion)
	params.Set("SECURITY-APPNAME", s.appID)
	params.Set("RESPONSE-DATA-FORMAT", "JSON")
	params.Set("REST-PAYLOAD", "")
	params.Set("keywords", query)
	params.Set("paginationInput.entriesPerPage", strconv.Itoa(limit))
	params.Set("paginationInput.pageNumber", "1")

	if status == models.ListingSold {
		params.Set("sortOrder", "EndTimeSoonest")
	} else {
		params.Set("sortOrder", "BestMatch")
	}

	n := 0
	addFilter := func(name, value string, extra ...string) {
		prefix := fmt.Sprintf("itemFilter(%d)", n)
		params.Set(prefix+".name", name)
		params.Set(prefix+".value", value)
		if len(extra) == 2 {
			params.Set(prefix+".paramName", extra[0])
			params.Set(prefix+".paramValue", extra[1])
		}
		n++
	}

	if status == models.ListingSold {
		addFilter("SoldItemsOnly", "true")
	}
	if f.MinPrice.Valid {
		addFilter("MinPrice", f.MinPrice.Decimal.StringFixed(2), "Currency", "USD")
	}
	if f.MaxPrice.Valid {
		addFilter("MaxPrice", f.MaxPrice.Decimal.StringFixed(2), "Currency", "USD")
	}
	switch strings.ToLower(strings.TrimSpace(f.Condition)) {
	case "new":
		addFilter("Condition", "New")
	case "used":
		addFilter("Condition", "Used")
	}

	return s.baseURL + "?" + params.Encode()
}

func (s *EbayService) fetch(ctx context.Context, query string, status models.ListingStatus, f models.ListingFilter, limit int) ([]models.Listing, error) {
	op := operationFor(status)
	reqURL := s.buildURL(query, status, f, limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &GatewayError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-EBAY-SOA-GLOBAL-ID", "EBAY-US")

	start := time.Now()
	metrics.EbayRequestsTotal.WithLabelValues(string(status)).Inc()
	resp, err := s.client.Do(req)
	metrics.EbayRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GatewayErrorsTotal.WithLabelValues("network").Inc()
		return nil, &GatewayError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.GatewayErrorsTotal.WithLabelValues("status").Inc()
		return nil, &GatewayError{Op: op, StatusCode: resp.StatusCode, Err: errors.New("unexpected response status")}
	}

	var envelope map[string][]findingResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		metrics.GatewayErrorsTotal.WithLabelValues("decode").Inc()
		return nil, &GatewayError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	bodies := envelope[op+"Response"]
	if len(bodies) == 0 {
		metrics.GatewayErrorsTotal.WithLabelValues("decode").Inc()
		return nil, &GatewayError{Op: op, Err: fmt.Errorf("response missing %sResponse", op)}
	}
	body := bodies[0]

	if ack := first(body.Ack); ack != "Success" && ack != "Warning" {
		metrics.GatewayErrorsTotal.WithLabelValues("ack").Inc()
		msg := body.errorText()
		if msg == "" {
			msg = "ack " + ack
		}
		return nil, &GatewayError{Op: op, Err: errors.New(msg)}
	}

	listings := []models.Listing{}
	for _, result := range body.SearchResult {
		for _, item := range result.Item {
			listing, err := item.toListing(status)
			if err != nil {
				log.Printf("eBay: skipping item %s: %v", first(item.ItemID), err)
				continue
			}
			listings = append(listings, listing)
		}
	}
	return listings, nil
}

// findingValue is an amount with its currency, e.g. {"@currencyId":"USD","__value__":"19.99"}
type findingValue struct {
	CurrencyID string `json:"@currencyId"`
	Value      string `json:"__value__"`
}

// findingItem mirrors the Finding API JSON item, where every field is an array
type findingItem struct {
	ItemID          []string `json:"itemId"`
	Title           []string `json:"title"`
	ViewItemURL     []string `json:"viewItemURL"`
	GalleryURL      []string `json:"galleryURL"`
	PrimaryCategory []struct {
		CategoryName []string `json:"categoryName"`
	} `json:"primaryCategory"`
	SellingStatus []struct {
		CurrentPrice []findingValue `json:"currentPrice"`
		SellingState []string       `json:"sellingState"`
	} `json:"sellingStatus"`
	ShippingInfo []struct {
		ShippingServiceCost []findingValue `json:"shippingServiceCost"`
	} `json:"shippingInfo"`
	ListingInfo []struct {
		EndTime    []string `json:"endTime"`
		WatchCount []string `json:"watchCount"`
	} `json:"listingInfo"`
	Condition []struct {
		ConditionDisplayName []string `json:"conditionDisplayName"`
	} `json:"condition"`
}

type findingResponse struct {
	Ack          []string `json:"ack"`
	ErrorMessage []struct {
		Error []struct {
			Message []string `json:"message"`
		} `json:"error"`
	} `json:"errorMessage"`
	SearchResult []struct {
		Count string        `json:"@count"`
		Item  []findingItem `json:"item"`
	} `json:"searchResult"`
}

func (r findingResponse) errorText() string {
	var msgs []string
	for _, em := range r.ErrorMessage {
		for _, e := range em.Error {
			if m := first(e.Message); m != "" {
				msgs = append(msgs, m)
			}
		}
	}
	return strings.Join(msgs, "; ")
}

func (it findingItem) toListing(status models.ListingStatus) (models.Listing, error) {
	listing := models.Listing{
		ID:       first(it.ItemID),
		Title:    first(it.Title),
		URL:      first(it.ViewItemURL),
		ImageURL: first(it.GalleryURL),
		Status:   status,
		Shipping: decimal.Zero,
	}

	if len(it.SellingStatus) == 0 || len(it.SellingStatus[0].CurrentPrice) == 0 {
		return listing, errors.New("missing price")
	}
	price, err := decimal.NewFromString(it.SellingStatus[0].CurrentPrice[0].Value)
	if err != nil {
		return listing, fmt.Errorf("bad price: %w", err)
	}
	listing.Price = price

	if len(it.ShippingInfo) > 0 && len(it.ShippingInfo[0].ShippingServiceCost) > 0 {
		if shipping, err := decimal.NewFromString(it.ShippingInfo[0].ShippingServiceCost[0].Value); err == nil {
			listing.Shipping = shipping
		}
	}
	if len(it.PrimaryCategory) > 0 {
		listing.Category = first(it.PrimaryCategory[0].CategoryName)
	}
	if len(it.Condition) > 0 {
		listing.Condition = first(it.Condition[0].ConditionDisplayName)
	}
	if len(it.ListingInfo) > 0 {
		info := it.ListingInfo[0]
		if end, err := time.Parse(time.RFC3339, first(info.EndTime)); err == nil {
			listing.EndTime = &end
		}
		if watchers, err := strconv.Atoi(first(info.WatchCount)); err == nil {
			listing.Watchers = watchers
		}
	}

	return listing, nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
