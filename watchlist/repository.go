package watchlist

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quitrk/stock-checker-sub001/database"
)

// Entry is one watched symbol.
type Entry struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Symbol    string    `gorm:"uniqueIndex;size:10;not null" json:"symbol"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName keeps the table name stable regardless of struct renames.
func (Entry) TableName() string { return "watchlist_entries" }

// Repository persists the watchlist in Postgres.
type Repository struct {
	db *database.Database
}

// NewRepository creates the repository and migrates the schema.
func NewRepository(db *database.Database) (*Repository, error) {
	if err := db.GORM().AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("watchlist migration failed: %w", err)
	}
	return &Repository{db: db}, nil
}

// List returns all watched entries, oldest first.
func (r *Repository) List() ([]Entry, error) {
	var entries []Entry
	if err := r.db.GORM().Order("created_at asc").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list watchlist: %w", err)
	}
	return entries, nil
}

// Symbols returns just the watched symbols, oldest first.
func (r *Repository) Symbols() ([]string, error) {
	entries, err := r.List()
	if err != nil {
		return nil, err
	}
	symbols := make([]string, len(entries))
	for i, e := range entries {
		symbols[i] = e.Symbol
	}
	return symbols, nil
}

// Add inserts a symbol. Adding an already-watched symbol returns the existing
// entry instead of erroring.
func (r *Repository) Add(symbol string) (*Entry, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, errors.New("empty symbol")
	}

	var existing Entry
	err := r.db.GORM().Where("symbol = ?", symbol).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check watchlist: %w", err)
	}

	entry := Entry{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.db.GORM().Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("failed to add %s to watchlist: %w", symbol, err)
	}
	return &entry, nil
}

// Remove deletes a symbol from the watchlist. Removing an unwatched symbol is
// a no-op.
func (r *Repository) Remove(symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if err := r.db.GORM().Where("symbol = ?", symbol).Delete(&Entry{}).Error; err != nil {
		return fmt.Errorf("failed to remove %s from watchlist: %w", symbol, err)
	}
	return nil
}
