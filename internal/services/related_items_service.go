package services

import (
	"context"
	"sort"
	"strings"

	"github.com/huskymarket/HuskyMarketBack/internal/models"
	"github.com/huskymarket/HuskyMarketBack/internal/repository"
)

// relatedCandidatePool bounds how many available listings are scored per
// request.
const relatedCandidatePool = 200

type ItemLister interface {
	List(ctx context.Context, filter repository.ItemListFilter) ([]models.ItemSummary, int, error)
}

type RelatedItemsService struct {
	itemRepo ItemLister
}

func NewRelatedItemsService(itemRepo ItemLister) *RelatedItemsService {
	return &RelatedItemsService{itemRepo: itemRepo}
}

// GetRelatedItems ranks available listings against a reference listing.
// Category is the strongest signal, then price band, condition, and campus
// location. Listings that share nothing with the reference are dropped.
func (s *RelatedItemsService) GetRelatedItems(
	ctx context.Context,
	reference *models.Item,
	limit int,
) ([]models.ItemWithScore, error) {
	candidates, _, err := s.itemRepo.List(ctx, repository.ItemListFilter{
		Status:    "available",
		ExcludeID: reference.ID,
		Sort:      "newest",
		Limit:     relatedCandidatePool,
	})
	if err != nil {
		return nil, err
	}

	scored := make([]models.ItemWithScore, 0, len(candidates))
	for _, candidate := range candidates {
		score := calculateRelatedScore(reference, &candidate.Item)
		if score == 0 {
			continue
		}
		scored = append(scored, models.ItemWithScore{
			ItemSummary: candidate,
			MatchScore:  score,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].MatchScore == scored[j].MatchScore {
			return scored[i].CreatedAt.After(scored[j].CreatedAt)
		}
		return scored[i].MatchScore > scored[j].MatchScore
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}

	return scored, nil
}

func calculateRelatedScore(reference *models.Item, candidate *models.Item) int {
	score := 0

	if candidate.Category == reference.Category {
		score += 3
	}
	if withinPriceBand(reference.Price, candidate.Price) {
		score += 2
	}
	if candidate.Condition == reference.Condition {
		score++
	}
	if sameLocation(reference.Location, candidate.Location) {
		score++
	}

	return score
}

// withinPriceBand treats prices within ±30% of the reference as comparable.
func withinPriceBand(reference, candidate float64) bool {
	if reference <= 0 {
		return false
	}
	lower := reference * 0.7
	upper := reference * 1.3
	return candidate >= lower && candidate <= upper
}

func sameLocation(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	return a != "" && a == b
}
