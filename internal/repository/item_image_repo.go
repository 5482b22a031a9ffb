package repository

import (
	"context"

	"github.com/huskymarket/HuskyMarketBack/internal/models"
)

type ItemImageRepository struct {
	db DBTX
}

func NewItemImageRepository(db DBTX) *ItemImageRepository {
	return &ItemImageRepository{db: db}
}

func (r *ItemImageRepository) Insert(
	ctx context.Context,
	itemID int64,
	url string,
	position int,
) (*models.ItemImage, error) {
	query := `
		INSERT INTO item_images (item_id, url, position)
		VALUES ($1, $2, $3)
		RETURNING id, item_id, url, position, created_at
	`

	var image models.ItemImage
	err := r.db.QueryRow(ctx, query, itemID, url, position).Scan(
		&image.ID,
		&image.ItemID,
		&image.URL,
		&image.Position,
		&image.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *ItemImageRepository) ListByItemID(ctx context.Context, itemID int64) ([]models.ItemImage, error) {
	query := `
		SELECT id, item_id, url, position, created_at
		FROM item_images
		WHERE item_id = $1
		ORDER BY position ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := make([]models.ItemImage, 0)
	for rows.Next() {
		var image models.ItemImage
		if err := rows.Scan(
			&image.ID,
			&image.ItemID,
			&image.URL,
			&image.Position,
			&image.CreatedAt,
		); err != nil {
			return nil, err
		}
		images = append(images, image)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return images, nil
}

func (r *ItemImageRepository) GetByID(ctx context.Context, imageID int64) (*models.ItemImage, error) {
	query := `
		SELECT id, item_id, url, position, created_at
		FROM item_images
		WHERE id = $1
	`

	var image models.ItemImage
	err := r.db.QueryRow(ctx, query, imageID).Scan(
		&image.ID,
		&image.ItemID,
		&image.URL,
		&image.Position,
		&image.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *ItemImageRepository) Delete(ctx context.Context, imageID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM item_images WHERE id = $1`, imageID)
	return err
}
