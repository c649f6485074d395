package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Album represents a record in the catalog.
type Album struct {
	ID        string
	Title     string
	Artist    string
	Year      string
	Genre     string
	CoverURL  string
	CreatedAt time.Time
}

// AlbumRepository provides CRUD operations for albums.
type AlbumRepository struct {
	db *sql.DB
}

// Albums returns the album repository for this store.
func (s *Store) Albums() *AlbumRepository {
	return &AlbumRepository{db: s.db}
}

// Create inserts a new album into the database.
func (r *AlbumRepository) Create(a *Album) error {
	a.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO albums (id, title, artist, year, genre, cover_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Title, a.Artist, a.Year, a.Genre, a.CoverURL, a.CreatedAt,
	)
	return err
}

// GetByID retrieves an album by its ID.
func (r *AlbumRepository) GetByID(id string) (*Album, error) {
	a := &Album{}

	err := r.db.QueryRow(
		`SELECT id, title, artist, year, genre, cover_url, created_at
		 FROM albums WHERE id = ?`,
		id,
	).Scan(&a.ID, &a.Title, &a.Artist, &a.Year, &a.Genre, &a.CoverURL, &a.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return a, nil
}

// List retrieves all albums in carousel order: by artist, case-insensitive.
func (r *AlbumRepository) List() ([]*Album, error) {
	rows, err := r.db.Query(
		`SELECT id, title, artist, year, genre, cover_url, created_at
		 FROM albums ORDER BY artist COLLATE NOCASE, created_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var albums []*Album
	for rows.Next() {
		a := &Album{}
		if err := rows.Scan(&a.ID, &a.Title, &a.Artist, &a.Year, &a.Genre, &a.CoverURL, &a.CreatedAt); err != nil {
			return nil, err
		}
		albums = append(albums, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return albums, nil
}

// Count returns the number of albums in the catalog.
func (r *AlbumRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM albums`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Delete removes an album by its ID.
func (r *AlbumRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM albums WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
