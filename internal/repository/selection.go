package repository

import (
	"context"
	"errors"
	"fmt"

	"pathscategories/resolver/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("selection not found")

// Schema creates the table SelectionRepository writes to
const Schema = `
CREATE TABLE IF NOT EXISTS item_categories (
	item_slug   TEXT        NOT NULL,
	field_name  TEXT        NOT NULL,
	category_id BIGINT      NOT NULL,
	path        TEXT        NOT NULL,
	breadcrumbs JSONB       NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (item_slug, field_name)
)`

type SelectionRepository interface {
	SaveSelection(ctx context.Context, itemSlug, fieldName string, payload domain.SelectionPayload) error
	GetSelection(ctx context.Context, itemSlug, fieldName string) (*domain.SelectionPayload, error)
	DeleteSelection(ctx context.Context, itemSlug, fieldName string) error
}

type selectionRepository struct {
	db *pgxpool.Pool
}

func NewSelectionRepository(db *pgxpool.Pool) SelectionRepository {
	return &selectionRepository{
		db: db,
	}
}

// Migrate applies Schema
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create item_categories table: %w", err)
	}
	return nil
}

func (r *selectionRepository) SaveSelection(ctx context.Context, itemSlug, fieldName string, payload domain.SelectionPayload) error {
	breadcrumbs := payload.Breadcrumbs
	if breadcrumbs == nil {
		breadcrumbs = []domain.Breadcrumb{}
	}

	query := `
	INSERT INTO item_categories (item_slug, field_name, category_id, path, breadcrumbs)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (item_slug, field_name)
	DO UPDATE SET category_id = $3, path = $4, breadcrumbs = $5, updated_at = now()`
	_, err := r.db.Exec(ctx, query, itemSlug, fieldName, int64(payload.CategoryID), payload.Path, breadcrumbs)
	if err != nil {
		return fmt.Errorf("failed to save selection: %w", err)
	}

	return nil
}

func (r *selectionRepository) GetSelection(ctx context.Context, itemSlug, fieldName string) (*domain.SelectionPayload, error) {
	query := `
	SELECT category_id, path, breadcrumbs
	FROM item_categories
	WHERE item_slug = $1 AND field_name = $2`

	var (
		categoryID int64
		payload    domain.SelectionPayload
	)
	err := r.db.QueryRow(ctx, query, itemSlug, fieldName).Scan(&categoryID, &payload.Path, &payload.Breadcrumbs)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get selection: %w", err)
	}

	payload.CategoryID = domain.CategoryID(categoryID)
	return &payload, nil
}

// DeleteSelection succeeds when there is no row to delete
func (r *selectionRepository) DeleteSelection(ctx context.Context, itemSlug, fieldName string) error {
	query := `DELETE FROM item_categories WHERE item_slug = $1 AND field_name = $2`
	if _, err := r.db.Exec(ctx, query, itemSlug, fieldName); err != nil {
		return fmt.Errorf("failed to delete selection: %w", err)
	}
	return nil
}
