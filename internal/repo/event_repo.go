// Package repo – loaders for the domain events that trigger notifications.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/parishlink/go-notify-backend/internal/domain"
)

// GetMessage fetches a message with its conversation and sender preloaded.
// Returns ErrNotFound when the message does not exist.
func GetMessage(ctx context.Context, db *gorm.DB, id string) (*domain.Message, error) {
	var m domain.Message
	err := db.WithContext(ctx).
		Preload("Conversation").
		Preload("Sender").
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetPrayerCard fetches a prayer card with its author preloaded.
// Returns ErrNotFound when the card does not exist.
func GetPrayerCard(ctx context.Context, db *gorm.DB, id string) (*domain.PrayerCard, error) {
	var p domain.PrayerCard
	err := db.WithContext(ctx).
		Preload("Author").
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPastoralJournal fetches a journal entry with author and shepherd
// preloaded. Returns ErrNotFound when the entry does not exist.
func GetPastoralJournal(ctx context.Context, db *gorm.DB, id string) (*domain.PastoralJournal, error) {
	var j domain.PastoralJournal
	err := db.WithContext(ctx).
		Preload("Author").
		Preload("Shepherd").
		Where("id = ?", id).
		First(&j).Error
	if err != nil {
		return nil, err
	}
	return &j, nil
}
