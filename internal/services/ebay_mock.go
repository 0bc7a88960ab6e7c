package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kwikflip/backend/internal/models"
)

var mockConditions = []string{"New", "Used", "Like New", "For parts or not working"}

// MockGateway generates demo listings when no eBay credentials are configured.
// Output is seeded by the query so repeated searches return the same prices.
type MockGateway struct {
	count int
	now   func() time.Time
}

// NewMockGateway creates a mock gateway returning count listings per search
func NewMockGateway(count int) *MockGateway {
	if count <= 0 {
		count = ebayDefaultLimit
	}
	return &MockGateway{count: count, now: time.Now}
}

// Search returns generated listings; it never fails for a non-empty query
func (m *MockGateway) Search(_ context.Context, req SearchRequest) ([]models.Listing, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, &ValidationError{Field: "query", Reason: "is required"}
	}
	status := req.Status
	if status == "" {
		status = models.ListingActive
	}
	count := m.count
	if req.Limit > 0 && req.Limit < count {
		count = req.Limit
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToLower(query) + "|" + string(status)))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	now := m.now()
	listings := make([]models.Listing, 0, count)
	for i := 0; i < count; i++ {
		var end time.Time
		if status == models.ListingSold {
			end = now.AddDate(0, 0, -(rng.Intn(29) + 1))
		} else {
			end = now.AddDate(0, 0, rng.Intn(7)+1)
		}

		// $10-$100 price, $0-$15 shipping, in cents
		price := decimal.New(int64(1000+rng.Intn(9001)), -2)
		shipping := decimal.New(int64(rng.Intn(1501)), -2)

		listings = append(listings, models.Listing{
			ID:        fmt.Sprintf("mock-%d-%05d", i, 10000+rng.Intn(90000)),
			Title:     fmt.Sprintf("%s - Demo Listing %d", query, i+1),
			URL:       "https://www.ebay.com",
			ImageURL:  "https://via.placeholder.com/150",
			Price:     price,
			Shipping:  shipping,
			Condition: mockConditions[rng.Intn(len(mockConditions))],
			Status:    status,
			EndTime:   &end,
			Watchers:  rng.Intn(21),
		})
	}
	return listings, nil
}
