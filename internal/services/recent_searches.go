package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/kwikflip/backend/internal/models"
)

// MaxRecentSearches is how many queries are kept
const MaxRecentSearches = 10

// RecentSearchService remembers the last queries run from the research screen
type RecentSearchService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRecentSearchService creates a new recent search service
func NewRecentSearchService(db *gorm.DB) *RecentSearchService {
	return &RecentSearchService{db: db, now: time.Now}
}

// Record moves query to the front of the list, dropping the oldest entries
// beyond MaxRecentSearches. Queries differing only in case are the same entry.
func (s *RecentSearchService) Record(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("LOWER(query) = LOWER(?)", query).Delete(&models.RecentSearch{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.RecentSearch{Query: query, SearchedAt: s.now()}).Error; err != nil {
			return err
		}

		// Keep only the newest entries
		var keep []uint
		if err := tx.Model(&models.RecentSearch{}).
			Order("searched_at DESC").Order("id DESC").
			Limit(MaxRecentSearches).
			Pluck("id", &keep).Error; err != nil {
			return err
		}
		return tx.Where("id NOT IN ?", keep).Delete(&models.RecentSearch{}).Error
	})
}

// List returns recent searches, newest first
func (s *RecentSearchService) List(ctx context.Context) ([]models.RecentSearch, error) {
	searches := []models.RecentSearch{}
	err := s.db.WithContext(ctx).
		Order("searched_at DESC").Order("id DESC").
		Limit(MaxRecentSearches).
		Find(&searches).Error
	return searches, err
}
