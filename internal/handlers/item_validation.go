package handlers

import (
	"strings"
)

var allowedCategories = map[string]struct{}{
	"textbooks":   {},
	"electronics": {},
	"furniture":   {},
	"clothing":    {},
	"tickets":     {},
	"other":       {},
}

var allowedConditions = map[string]struct{}{
	"new":      {},
	"like_new": {},
	"good":     {},
	"fair":     {},
	"poor":     {},
}

var allowedImageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
}

func validateCreateItemRequest(req createItemRequest) string {
	if strings.TrimSpace(req.Title) == "" {
		return "title is required"
	}
	if len(req.Title) > 140 {
		return "title must be at most 140 characters"
	}
	if req.Price <= 0 {
		return "price must be greater than 0"
	}
	if err := validateCategory(req.Category); err != "" {
		return err
	}
	if err := validateCondition(req.Condition); err != "" {
		return err
	}
	if strings.TrimSpace(req.Location) == "" {
		return "location is required"
	}
	return ""
}

func validateUpdateItemRequest(req updateItemRequest) string {
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return "title must not be empty"
		}
		if len(*req.Title) > 140 {
			return "title must be at most 140 characters"
		}
	}
	if req.Price != nil && *req.Price <= 0 {
		return "price must be greater than 0"
	}
	if req.Category != nil {
		if err := validateCategory(*req.Category); err != "" {
			return err
		}
	}
	if req.Condition != nil {
		if err := validateCondition(*req.Condition); err != "" {
			return err
		}
	}
	if req.Location != nil && strings.TrimSpace(*req.Location) == "" {
		return "location must not be empty"
	}
	return ""
}

func validateUpdateProfileRequest(req updateProfileRequest) string {
	if req.DisplayName != nil && strings.TrimSpace(*req.DisplayName) == "" {
		return "display_name must not be empty"
	}
	if req.CampusID != nil && strings.TrimSpace(*req.CampusID) == "" {
		return "campus_id must not be empty"
	}
	return ""
}

func validateCategory(category string) string {
	if _, ok := allowedCategories[category]; !ok {
		return "category must be one of: textbooks, electronics, furniture, clothing, tickets, other"
	}
	return ""
}

func validateCondition(condition string) string {
	if _, ok := allowedConditions[condition]; !ok {
		return "condition must be one of: new, like_new, good, fair, poor"
	}
	return ""
}

func isAllowedImageExtension(ext string) bool {
	_, ok := allowedImageExtensions[strings.ToLower(ext)]
	return ok
}
