package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"photo-marketplace/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetPhotoByID retrieves a photo by ID
func (s *Store) GetPhotoByID(ctx context.Context, id string) (*models.Photo, error) {
	var photo models.Photo
	err := s.db.GetContext(ctx, &photo, "SELECT * FROM photos WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("photo %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get photo: %w", err)
	}
	return &photo, nil
}

// GetPhotosByIDs retrieves multiple photos by IDs
func (s *Store) GetPhotosByIDs(ctx context.Context, ids []string) ([]models.Photo, error) {
	if len(ids) == 0 {
		return []models.Photo{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM photos WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var photos []models.Photo
	err = s.db.SelectContext(ctx, &photos, query, args...)
	return photos, err
}

// GetActivePhotos retrieves all active photos for the gallery
func (s *Store) GetActivePhotos(ctx context.Context) ([]models.Photo, error) {
	var photos []models.Photo
	err := s.db.SelectContext(ctx, &photos,
		"SELECT * FROM photos WHERE is_active = TRUE ORDER BY created_at DESC")
	return photos, err
}

// DeactivatePhoto soft-deletes a photo; order lines keep referencing it
func (s *Store) DeactivatePhoto(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE photos SET is_active = FALSE, updated_at = NOW() WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("photo %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// GetPrintSpecByID retrieves a print spec by ID
func (s *Store) GetPrintSpecByID(ctx context.Context, id string) (*models.PrintSpec, error) {
	var spec models.PrintSpec
	err := s.db.GetContext(ctx, &spec, "SELECT * FROM print_specs WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("print spec %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get print spec: %w", err)
	}
	return &spec, nil
}

// GetActivePrintSpecs retrieves all orderable print specs
func (s *Store) GetActivePrintSpecs(ctx context.Context) ([]models.PrintSpec, error) {
	var specs []models.PrintSpec
	err := s.db.SelectContext(ctx, &specs,
		"SELECT * FROM print_specs WHERE is_active = TRUE ORDER BY price")
	return specs, err
}
