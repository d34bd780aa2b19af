package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"optionscope/apperrors"
	"optionscope/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage persists users and trade-journal entries in SQLite.
type Storage struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewStorage opens (or creates) the SQLite database and migrates the schema.
func NewStorage(dbPath string) (*Storage, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.JournalEntry{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return &Storage{
		db:     db,
		logger: log,
	}, nil
}

// CreateUser stores a new user record.
func (s *Storage) CreateUser(user *models.User) error {
	if err := s.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByUsername looks a user up by username. Returns nil without error
// when no such user exists.
func (s *Storage) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

// CreateJournalEntry stores a new journal entry.
func (s *Storage) CreateJournalEntry(entry *models.JournalEntry) error {
	if err := s.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create journal entry: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"owner":      entry.OwnerID,
		"underlying": entry.Underlying,
	}).Info("Created journal entry")
	return nil
}

// ListJournalEntries returns a page of the owner's journal entries, newest
// first.
func (s *Storage) ListJournalEntries(ownerID uint, offset, limit int) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	err := s.db.Where("owner_id = ?", ownerID).
		Order("entry_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	return entries, nil
}

// GetJournalEntry fetches one journal entry by id, enforcing ownership.
func (s *Storage) GetJournalEntry(ownerID, entryID uint) (*models.JournalEntry, error) {
	var entry models.JournalEntry
	err := s.db.First(&entry, entryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query journal entry: %w", err)
	}
	if entry.OwnerID != ownerID {
		return nil, apperrors.ErrForbidden
	}
	return &entry, nil
}
