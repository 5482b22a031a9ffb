package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/huskymarket/HuskyMarketBack/internal/models"
)

type CreateItemInput struct {
	SellerID    int64
	Title       string
	Description string
	Price       float64
	Category    string
	Condition   string
	Location    string
}

type UpdateItemInput struct {
	Title       *string
	Description *string
	Price       *float64
	Category    *string
	Condition   *string
	Location    *string
}

type ItemListFilter struct {
	Query     string
	Category  string
	Condition string
	Location  string
	Status    string
	MinPrice  float64
	MaxPrice  float64
	SellerID  int64
	ExcludeID int64
	Sort      string
	Offset    int
	Limit     int
}

type ItemRepository struct {
	db DBTX
}

func NewItemRepository(db DBTX) *ItemRepository {
	return &ItemRepository{db: db}
}

const itemColumns = `id, seller_id, title, description, price, category, condition, status, location, created_at, updated_at`

func scanItem(row interface{ Scan(dest ...any) error }, item *models.Item) error {
	return row.Scan(
		&item.ID,
		&item.SellerID,
		&item.Title,
		&item.Description,
		&item.Price,
		&item.Category,
		&item.Condition,
		&item.Status,
		&item.Location,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
}

func (r *ItemRepository) Create(ctx context.Context, input CreateItemInput) (*models.Item, error) {
	query := fmt.Sprintf(`
		INSERT INTO items (seller_id, title, description, price, category, condition, status, location)
		VALUES ($1, $2, $3, $4, $5, $6, 'available', $7)
		RETURNING %s
	`, itemColumns)

	var item models.Item
	err := scanItem(r.db.QueryRow(
		ctx,
		query,
		input.SellerID,
		input.Title,
		input.Description,
		input.Price,
		input.Category,
		input.Condition,
		input.Location,
	), &item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *ItemRepository) GetByID(ctx context.Context, itemID int64) (*models.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM items WHERE id = $1`, itemColumns)

	var item models.Item
	if err := scanItem(r.db.QueryRow(ctx, query, itemID), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *ItemRepository) GetByIDForUpdate(ctx context.Context, itemID int64) (*models.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM items WHERE id = $1 FOR UPDATE`, itemColumns)

	var item models.Item
	if err := scanItem(r.db.QueryRow(ctx, query, itemID), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// List returns one page of item summaries plus the total count for the
// filter. Summaries carry the first image and the seller's display card.
func (r *ItemRepository) List(ctx context.Context, filter ItemListFilter) ([]models.ItemSummary, int, error) {
	args := []any{}
	whereParts := []string{}

	addCondition := func(condition string, value any) {
		args = append(args, value)
		whereParts = append(whereParts, fmt.Sprintf(condition, len(args)))
	}

	if q := strings.TrimSpace(filter.Query); q != "" {
		addCondition("(i.title ILIKE $%[1]d OR i.description ILIKE $%[1]d)", "%"+q+"%")
	}
	if filter.Category != "" {
		addCondition("i.category = $%d", filter.Category)
	}
	if filter.Condition != "" {
		addCondition("i.condition = $%d", filter.Condition)
	}
	if loc := strings.TrimSpace(filter.Location); loc != "" {
		addCondition("i.location ILIKE $%d", "%"+loc+"%")
	}
	if filter.Status != "" {
		addCondition("i.status = $%d", filter.Status)
	}
	if filter.MinPrice > 0 {
		addCondition("i.price >= $%d", filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		addCondition("i.price <= $%d", filter.MaxPrice)
	}
	if filter.SellerID > 0 {
		addCondition("i.seller_id = $%d", filter.SellerID)
	}
	if filter.ExcludeID > 0 {
		addCondition("i.id <> $%d", filter.ExcludeID)
	}

	whereClause := ""
	if len(whereParts) > 0 {
		whereClause = "WHERE " + strings.Join(whereParts, " AND ")
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM items i %s`, whereClause)
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	orderClause := "i.created_at DESC, i.id DESC"
	switch filter.Sort {
	case "price_asc":
		orderClause = "i.price ASC, i.id DESC"
	case "price_desc":
		orderClause = "i.price DESC, i.id DESC"
	}

	args = append(args, filter.Limit)
	limitPos := len(args)
	args = append(args, filter.Offset)
	offsetPos := len(args)

	query := fmt.Sprintf(`
		SELECT
			i.id, i.seller_id, i.title, i.description, i.price, i.category, i.condition,
			i.status, i.location, i.created_at, i.updated_at,
			fi.url,
			u.display_name,
			u.is_verified
		FROM items i
		JOIN users u ON u.id = i.seller_id
		LEFT JOIN LATERAL (
			SELECT url
			FROM item_images
			WHERE item_id = i.id
			ORDER BY position ASC, id ASC
			LIMIT 1
		) fi ON TRUE
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, whereClause, orderClause, limitPos, offsetPos)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	summaries := make([]models.ItemSummary, 0)
	for rows.Next() {
		var summary models.ItemSummary
		if err := rows.Scan(
			&summary.ID,
			&summary.SellerID,
			&summary.Title,
			&summary.Description,
			&summary.Price,
			&summary.Category,
			&summary.Condition,
			&summary.Status,
			&summary.Location,
			&summary.CreatedAt,
			&summary.UpdatedAt,
			&summary.ThumbnailURL,
			&summary.SellerName,
			&summary.SellerVerified,
		); err != nil {
			return nil, 0, err
		}
		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return summaries, total, nil
}

func (r *ItemRepository) UpdatePartial(ctx context.Context, itemID int64, req UpdateItemInput) (*models.Item, error) {
	query := fmt.Sprintf(`
		UPDATE items
		SET title = COALESCE($1, title),
			description = COALESCE($2, description),
			price = COALESCE($3, price),
			category = COALESCE($4, category),
			condition = COALESCE($5, condition),
			location = COALESCE($6, location),
			updated_at = NOW()
		WHERE id = $7
		RETURNING %s
	`, itemColumns)

	var item models.Item
	err := scanItem(r.db.QueryRow(
		ctx,
		query,
		req.Title,
		req.Description,
		req.Price,
		req.Category,
		req.Condition,
		req.Location,
		itemID,
	), &item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *ItemRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	itemID int64,
	currentStatus string,
	nextStatus string,
) (*models.Item, error) {
	query := fmt.Sprintf(`
		UPDATE items
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING %s
	`, itemColumns)

	var item models.Item
	if err := scanItem(r.db.QueryRow(ctx, query, itemID, currentStatus, nextStatus), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *ItemRepository) Delete(ctx context.Context, itemID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM items WHERE id = $1`, itemID)
	return err
}
