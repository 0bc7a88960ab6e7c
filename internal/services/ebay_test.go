package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kwikflip/backend/internal/models"
)

const activeResponse = `{"findItemsByKeywordsResponse":[{
  "ack":["Success"],
  "searchResult":[{"@count":"2","item":[
    {
      "itemId":["1234"],
      "title":["Nintendo Switch OLED White"],
      "viewItemURL":["https://www.ebay.com/itm/1234"],
      "galleryURL":["https://i.ebayimg.com/1234.jpg"],
      "primaryCategory":[{"categoryName":["Video Game Consoles"]}],
      "sellingStatus":[{"currentPrice":[{"@currencyId":"USD","__value__":"249.99"}],"sellingState":["Active"]}],
      "shippingInfo":[{"shippingServiceCost":[{"@currencyId":"USD","__value__":"5.99"}]}],
      "listingInfo":[{"endTime":["2026-10-20T18:30:00.000Z"],"watchCount":["7"]}],
      "condition":[{"conditionDisplayName":["Used"]}]
    },
    {
      "itemId":["5678"],
      "title":["Listing without a price"]
    }
  ]}]
}]}`

const soldResponse = `{"findCompletedItemsResponse":[{
  "ack":["Success"],
  "searchResult":[{"@count":"1","item":[
    {
      "itemId":["9999"],
      "title":["Nintendo Switch OLED"],
      "sellingStatus":[{"currentPrice":[{"@currencyId":"USD","__value__":"230.00"}],"sellingState":["EndedWithSales"]}],
      "listingInfo":[{"endTime":["2026-10-10T12:00:00.000Z"]}]
    }
  ]}]
}]}`

func newTestEbayService(baseURL string) *EbayService {
	return NewEbayService(EbayOptions{
		AppID:             "test-app",
		BaseURL:           baseURL,
		RequestsPerSecond: 1000,
	})
}

func TestEbayServiceSearchActive(t *testing.T) {
	var got url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(activeResponse))
	}))
	defer server.Close()

	svc := newTestEbayService(server.URL)
	listings, err := svc.Search(context.Background(), SearchRequest{Query: "switch oled", Status: models.ListingActive})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if got.Get("OPERATION-NAME") != "findItemsByKeywords" {
		t.Errorf("OPERATION-NAME = %q, want findItemsByKeywords", got.Get("OPERATION-NAME"))
	}
	if got.Get("keywords") != "switch oled" {
		t.Errorf("keywords = %q, want %q", got.Get("keywords"), "switch oled")
	}
	if got.Get("SECURITY-APPNAME") != "test-app" {
		t.Errorf("SECURITY-APPNAME = %q, want test-app", got.Get("SECURITY-APPNAME"))
	}

	// The item without a price is skipped
	if len(listings) != 1 {
		t.Fatalf("got %d listings, want 1", len(listings))
	}
	l := listings[0]
	if l.ID != "1234" || l.Title != "Nintendo Switch OLED White" {
		t.Errorf("listing = %s %q", l.ID, l.Title)
	}
	if !l.Price.Equal(decimal.RequireFromString("249.99")) || !l.Shipping.Equal(decimal.RequireFromString("5.99")) {
		t.Errorf("price/shipping = %s/%s, want 249.99/5.99", l.Price, l.Shipping)
	}
	if l.Condition != "Used" || l.Category != "Video Game Consoles" {
		t.Errorf("condition/category = %q/%q", l.Condition, l.Category)
	}
	if l.Watchers != 7 {
		t.Errorf("Watchers = %d, want 7", l.Watchers)
	}
	if l.EndTime == nil || l.EndTime.Day() != 20 {
		t.Errorf("EndTime = %v, want 2026-10-20", l.EndTime)
	}
	if l.Status != models.ListingActive {
		t.Errorf("Status = %q, want active", l.Status)
	}
}

func TestEbayServiceSearchSold(t *testing.T) {
	var got url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Write([]byte(soldResponse))
	}))
	defer server.Close()

	svc := newTestEbayService(server.URL)
	filter := models.ListingFilter{
		MinPrice:  decimal.NewNullDecimal(decimal.NewFromInt(100)),
		Condition: "used",
	}
	listings, err := svc.Search(context.Background(), SearchRequest{Query: "switch", Status: models.ListingSold, Filter: filter})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if got.Get("OPERATION-NAME") != "findCompletedItems" {
		t.Errorf("OPERATION-NAME = %q, want findCompletedItems", got.Get("OPERATION-NAME"))
	}
	wantFilters := map[string]string{
		"itemFilter(0).name":       "SoldItemsOnly",
		"itemFilter(0).value":      "true",
		"itemFilter(1).name":       "MinPrice",
		"itemFilter(1).value":      "100.00",
		"itemFilter(1).paramValue": "USD",
		"itemFilter(2).name":       "Condition",
		"itemFilter(2).value":      "Used",
	}
	for k, v := range wantFilters {
		if got.Get(k) != v {
			t.Errorf("%s = %q, want %q", k, got.Get(k), v)
		}
	}

	if len(listings) != 1 || listings[0].Status != models.ListingSold {
		t.Fatalf("listings = %+v, want one sold listing", listings)
	}
	if !listings[0].Shipping.IsZero() {
		t.Errorf("missing shipping should be zero, got %s", listings[0].Shipping)
	}
}

func TestEbayServiceGatewayErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{"server error", http.StatusInternalServerError, "oops", http.StatusInternalServerError},
		{"rate limited", http.StatusTooManyRequests, "", http.StatusTooManyRequests},
		{"ack failure", http.StatusOK, `{"findItemsByKeywordsResponse":[{"ack":["Failure"],"errorMessage":[{"error":[{"message":["Invalid Application: test-app"]}]}]}]}`, 0},
		{"malformed json", http.StatusOK, `{"findItemsByKeywordsResponse":`, 0},
		{"wrong envelope", http.StatusOK, `{"somethingElse":[]}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			svc := newTestEbayService(server.URL)
			_, err := svc.Search(context.Background(), SearchRequest{Query: "switch"})

			var gatewayErr *GatewayError
			if !errors.As(err, &gatewayErr) {
				t.Fatalf("expected *GatewayError, got %v", err)
			}
			if gatewayErr.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", gatewayErr.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestEbayServiceNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	_, err := newTestEbayService(baseURL).Search(context.Background(), SearchRequest{Query: "switch"})
	var gatewayErr *GatewayError
	if !errors.As(err, &gatewayErr) {
		t.Fatalf("expected *GatewayError, got %v", err)
	}
}

func TestEbayServiceCache(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(activeResponse))
	}))
	defer server.Close()

	svc := newTestEbayService(server.URL)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Search(ctx, SearchRequest{Query: "Switch OLED"}); err != nil {
			t.Fatalf("Search failed: %v", err)
		}
	}
	// Query case does not change the cache key
	if _, err := svc.Search(ctx, SearchRequest{Query: "switch oled"}); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server called %d times, want 1", n)
	}

	// A different filter is a different query
	filter := models.ListingFilter{MaxPrice: decimal.NewNullDecimal(decimal.NewFromInt(300))}
	if _, err := svc.Search(ctx, SearchRequest{Query: "switch oled", Filter: filter}); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("server called %d times, want 2", n)
	}
}

func TestEbayServiceValidation(t *testing.T) {
	svc := newTestEbayService("http://127.0.0.1:0")
	if _, err := svc.Search(context.Background(), SearchRequest{Query: "   "}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for empty query, got %v", err)
	}
}

func TestEbayServiceCanceledContext(t *testing.T) {
	svc := newTestEbayService("http://127.0.0.1:0")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Search(ctx, SearchRequest{Query: "switch"})
	var gatewayErr *GatewayError
	if !errors.As(err, &gatewayErr) {
		t.Fatalf("expected *GatewayError, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected wrapped context.Canceled, got %v", err)
	}
}

func TestNewEbayServiceLimits(t *testing.T) {
	svc := NewEbayService(EbayOptions{ResultsLimit: 500})
	if svc.limit != ebayMaxLimit {
		t.Errorf("limit = %d, want %d", svc.limit, ebayMaxLimit)
	}
	svc = NewEbayService(EbayOptions{})
	if svc.limit != ebayDefaultLimit || svc.baseURL != ebayFindingURL {
		t.Errorf("defaults = %d %s", svc.limit, svc.baseURL)
	}
}
