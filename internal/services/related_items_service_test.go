package services

import (
	"context"
	"testing"
	"time"

	"github.com/huskymarket/HuskyMarketBack/internal/models"
	"github.com/huskymarket/HuskyMarketBack/internal/repository"
)

type stubItemLister struct {
	result     []models.ItemSummary
	err        error
	lastFilter repository.ItemListFilter
}

func (s *stubItemLister) List(_ context.Context, filter repository.ItemListFilter) ([]models.ItemSummary, int, error) {
	s.lastFilter = filter
	return s.result, len(s.result), s.err
}

func summary(id int64, category, condition, location string, price float64, createdAt time.Time) models.ItemSummary {
	return models.ItemSummary{
		Item: models.Item{
			ID:        id,
			SellerID:  id + 100,
			Title:     "listing",
			Price:     price,
			Category:  category,
			Condition: condition,
			Status:    "available",
			Location:  location,
			CreatedAt: createdAt,
		},
	}
}

func TestGetRelatedItemsRanksByOverlap(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	reference := &models.Item{
		ID:        1,
		Price:     50,
		Category:  "textbooks",
		Condition: "good",
		Location:  "Seattle",
	}
	lister := &stubItemLister{
		result: []models.ItemSummary{
			// same category, in price band, same condition and location: 3+2+1+1
			summary(2, "textbooks", "good", "Seattle", 55, now),
			// same category only: 3
			summary(3, "textbooks", "poor", "Tacoma", 200, now),
			// price band + location only: 2+1
			summary(4, "electronics", "new", "seattle", 45, now),
			// nothing in common: dropped
			summary(5, "clothing", "new", "Tacoma", 500, now),
		},
	}
	service := NewRelatedItemsService(lister)

	related, err := service.GetRelatedItems(context.Background(), reference, 10)
	if err != nil {
		t.Fatalf("GetRelatedItems: %v", err)
	}

	if len(related) != 3 {
		t.Fatalf("expected 3 scored items, got %d", len(related))
	}
	if related[0].ID != 2 || related[0].MatchScore != 7 {
		t.Fatalf("expected item 2 with score 7 first, got id=%d score=%d", related[0].ID, related[0].MatchScore)
	}
	if related[1].ID != 3 || related[2].ID != 4 {
		t.Fatalf("unexpected order: %d then %d", related[1].ID, related[2].ID)
	}

	if lister.lastFilter.Status != "available" || lister.lastFilter.ExcludeID != 1 {
		t.Fatalf("unexpected candidate filter: %+v", lister.lastFilter)
	}
}

func TestGetRelatedItemsBreaksTiesByRecency(t *testing.T) {
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(48 * time.Hour)
	reference := &models.Item{ID: 1, Price: 50, Category: "textbooks", Condition: "good", Location: "Seattle"}

	lister := &stubItemLister{
		result: []models.ItemSummary{
			summary(2, "textbooks", "poor", "Tacoma", 500, older),
			summary(3, "textbooks", "poor", "Tacoma", 500, newer),
		},
	}
	service := NewRelatedItemsService(lister)

	related, err := service.GetRelatedItems(context.Background(), reference, 10)
	if err != nil {
		t.Fatalf("GetRelatedItems: %v", err)
	}

	if len(related) != 2 || related[0].ID != 3 {
		t.Fatalf("expected newer listing first on tie, got %+v", related)
	}
}

func TestGetRelatedItemsHonorsLimit(t *testing.T) {
	now := time.Now().UTC()
	reference := &models.Item{ID: 1, Price: 50, Category: "textbooks", Condition: "good", Location: "Seattle"}

	lister := &stubItemLister{
		result: []models.ItemSummary{
			summary(2, "textbooks", "good", "Seattle", 50, now),
			summary(3, "textbooks", "good", "Seattle", 52, now),
			summary(4, "textbooks", "good", "Seattle", 48, now),
		},
	}
	service := NewRelatedItemsService(lister)

	related, err := service.GetRelatedItems(context.Background(), reference, 2)
	if err != nil {
		t.Fatalf("GetRelatedItems: %v", err)
	}
	if len(related) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(related))
	}
}
