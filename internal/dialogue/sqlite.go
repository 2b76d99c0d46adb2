package dialogue

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type turnRecord struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    int64  `gorm:"index;not null"`
	Role      string `gorm:"size:32;not null"`
	Text      string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

func (turnRecord) TableName() string { return "dialogue_turns" }

// SQLiteStore keeps dialogue history in a single embedded database file,
// ordered by autoincrement id per user.
type SQLiteStore struct {
	db     *gorm.DB
	budget Budget
}

func NewSQLiteStore(path string, budget Budget) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: ensure db dir: %v", ErrStorageUnavailable, err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrStorageUnavailable, path, err)
	}
	if err := db.AutoMigrate(&turnRecord{}); err != nil {
		return nil, fmt.Errorf("%w: migrate: %v", ErrStorageUnavailable, err)
	}
	return &SQLiteStore{db: db, budget: budget}, nil
}

func (s *SQLiteStore) Load(ctx context.Context, userID int64) ([]Turn, error) {
	var recs []turnRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("%w: load: %v", ErrStorageUnavailable, err)
	}
	turns := make([]Turn, 0, len(recs))
	for _, r := range recs {
		turns = append(turns, Turn{Role: r.Role, Text: r.Text, CreatedAt: r.CreatedAt})
	}
	return turns, nil
}

func (s *SQLiteStore) Append(ctx context.Context, userID int64, role, text string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := turnRecord{UserID: userID, Role: role, Text: text, CreatedAt: time.Now().UTC()}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		return s.truncate(tx, userID)
	})
	if err != nil {
		return fmt.Errorf("%w: append: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// truncate drops the oldest turns of a user until the history fits the
// budget. Runs inside the append transaction so a reader never observes an
// over-budget history.
func (s *SQLiteStore) truncate(tx *gorm.DB, userID int64) error {
	var recs []turnRecord
	if err := tx.Where("user_id = ?", userID).Order("id").Find(&recs).Error; err != nil {
		return err
	}
	turns := make([]Turn, 0, len(recs))
	for _, r := range recs {
		turns = append(turns, Turn{Role: r.Role, Text: r.Text, CreatedAt: r.CreatedAt})
	}
	i := s.budget.start(turns)
	if i == 0 {
		return nil
	}
	return tx.Where("user_id = ? AND id < ?", userID, recs[i].ID).
		Delete(&turnRecord{}).Error
}

func (s *SQLiteStore) Reset(ctx context.Context, userID int64) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&turnRecord{}).Error
	if err != nil {
		return fmt.Errorf("%w: reset: %v", ErrStorageUnavailable, err)
	}
	return nil
}
