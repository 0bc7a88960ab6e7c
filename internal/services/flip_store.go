package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kwikflip/backend/internal/metrics"
	"github.com/kwikflip/backend/internal/models"
)

// FlipStore persists flip records in SQLite.
// Writes to the same id are serialized; reads take no lock.
type FlipStore struct {
	db    *gorm.DB
	calc  *ProfitCalculator
	now   func() time.Time
	locks sync.Map // flip id -> *sync.Mutex
}

// NewFlipStore creates a store over an opened database
func NewFlipStore(db *gorm.DB, calc *ProfitCalculator) *FlipStore {
	if calc == nil {
		calc = NewProfitCalculator(DefaultROIPrecision)
	}
	return &FlipStore{
		db:   db,
		calc: calc,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *FlipStore) lock(id string) func() {
	m, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// forget drops the lock entry of an id that no longer has a record.
// Holders of the old mutex finish first; later writers find no record.
func (s *FlipStore) forget(id string) {
	s.locks.Delete(id)
}

// Create validates and stores a new flip, assigning its id and timestamps
func (s *FlipStore) Create(ctx context.Context, req models.CreateFlipRequest) (models.FlipRecord, error) {
	now := s.now()

	record := models.FlipRecord{
		ID:                  uuid.New().String(),
		ItemDescription:     strings.TrimSpace(req.ItemDescription),
		Category:            strings.TrimSpace(req.Category),
		Notes:               req.Notes,
		PurchasePrice:       req.PurchasePrice,
		PurchaseDate:        req.PurchaseDate.UTC(),
		SaleOrEstimatePrice: req.SaleOrEstimatePrice,
		Fees:                req.Fees,
		Platform:            req.Platform,
		Status:              req.Status,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	// Defaults
	if record.Platform == "" {
		record.Platform = models.PlatformEbay
	} else {
		record.Platform = models.NormalizePlatform(string(record.Platform))
	}
	if record.Status == "" {
		record.Status = models.FlipResearching
	} else {
		record.Status = models.NormalizeStatus(string(record.Status))
	}
	if record.PurchaseDate.IsZero() {
		record.PurchaseDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	if err := s.prepare(&record); err != nil {
		return models.FlipRecord{}, err
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return models.FlipRecord{}, fmt.Errorf("failed to create flip: %w", err)
	}

	metrics.FlipMutationsTotal.WithLabelValues("create").Inc()
	return record, nil
}

// Get returns the flip with the given id or ErrNotFound
func (s *FlipStore) Get(ctx context.Context, id string) (models.FlipRecord, error) {
	var record models.FlipRecord
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.FlipRecord{}, ErrNotFound
		}
		return models.FlipRecord{}, fmt.Errorf("failed to load flip %s: %w", id, err)
	}
	return record, nil
}

// Update merges the non-nil fields of req into the stored flip, re-validates
// it and refreshes UpdatedAt. Nothing is written when validation fails.
func (s *FlipStore) Update(ctx context.Context, id string, req models.UpdateFlipRequest) (models.FlipRecord, error) {
	unlock := s.lock(id)
	defer unlock()

	var record models.FlipRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&record, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		applyUpdate(&record, req)
		if err := s.prepare(&record); err != nil {
			return err
		}
		record.UpdatedAt = s.now()

		return tx.Save(&record).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.forget(id)
			return models.FlipRecord{}, err
		}
		if errors.Is(err, ErrValidation) {
			return models.FlipRecord{}, err
		}
		return models.FlipRecord{}, fmt.Errorf("failed to update flip %s: %w", id, err)
	}

	metrics.FlipMutationsTotal.WithLabelValues("update").Inc()
	return record, nil
}

func applyUpdate(record *models.FlipRecord, req models.UpdateFlipRequest) {
	if req.ItemDescription != nil {
		record.ItemDescription = strings.TrimSpace(*req.ItemDescription)
	}
	if req.Category != nil {
		record.Category = strings.TrimSpace(*req.Category)
	}
	if req.Notes != nil {
		record.Notes = *req.Notes
	}
	if req.PurchasePrice != nil {
		record.PurchasePrice = *req.PurchasePrice
	}
	if req.PurchaseDate != nil {
		record.PurchaseDate = req.PurchaseDate.UTC()
	}
	if req.SaleOrEstimatePrice != nil {
		record.SaleOrEstimatePrice = *req.SaleOrEstimatePrice
	}
	if req.Fees != nil {
		record.Fees = *req.Fees
	}
	if req.Platform != nil {
		record.Platform = models.NormalizePlatform(string(*req.Platform))
	}
	if req.Status != nil {
		record.Status = models.NormalizeStatus(string(*req.Status))
	}
}

// prepare validates the record and fills in the derived profit fields
func (s *FlipStore) prepare(record *models.FlipRecord) error {
	if err := validateFlip(record); err != nil {
		return err
	}

	result, err := s.calc.Compute(record.PurchasePrice, record.Fees, record.SaleOrEstimatePrice)
	if err != nil {
		return err
	}
	record.NetProfit = result.NetProfit
	record.ROIPercent = result.ROIPercent
	return nil
}

func validateFlip(record *models.FlipRecord) error {
	if record.PurchasePrice.IsNegative() {
		return &ValidationError{Field: "purchase_price", Reason: "must not be negative"}
	}
	if record.Fees.IsNegative() {
		return &ValidationError{Field: "fees", Reason: "must not be negative"}
	}
	if record.SaleOrEstimatePrice.IsNegative() {
		return &ValidationError{Field: "sale_or_estimate_price", Reason: "must not be negative"}
	}
	if !record.Platform.Valid() {
		return &ValidationError{Field: "platform", Reason: fmt.Sprintf("unknown platform %q", record.Platform)}
	}
	if !record.Status.Valid() {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", record.Status)}
	}
	return nil
}

// List returns flips matching the filter, oldest first
func (s *FlipStore) List(ctx context.Context, filter models.FlipFilter) ([]models.FlipRecord, error) {
	query := s.db.WithContext(ctx).Model(&models.FlipRecord{})

	if filter.Status != "" {
		query = query.Where("status = ?", models.NormalizeStatus(string(filter.Status)))
	}
	if filter.Platform != "" {
		query = query.Where("platform = ?", models.NormalizePlatform(string(filter.Platform)))
	}
	if filter.From != nil {
		query = query.Where("purchase_date >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("purchase_date <= ?", filter.To.UTC())
	}

	records := []models.FlipRecord{}
	if err := query.Order("created_at ASC").Order("id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list flips: %w", err)
	}
	return records, nil
}

// Delete removes a flip. Deleting an unknown id is not an error.
func (s *FlipStore) Delete(ctx context.Context, id string) error {
	unlock := s.lock(id)
	defer func() {
		unlock()
		s.forget(id)
	}()

	result := s.db.WithContext(ctx).Delete(&models.FlipRecord{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete flip %s: %w", id, result.Error)
	}
	if result.RowsAffected > 0 {
		metrics.FlipMutationsTotal.WithLabelValues("delete").Inc()
	}
	return nil
}

// TotalProfit sums the derived net profit over the given records
func TotalProfit(records []models.FlipRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.NetProfit)
	}
	return total
}
