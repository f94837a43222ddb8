package database

import (
	"context"

	"github.com/google/uuid"
)

// CreateHandover appends a journal entry
func (d *DB) CreateHandover(ctx context.Context, entry *Handover) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	return d.db.WithContext(ctx).Create(entry).Error
}

// GetHandover retrieves a journal entry by id
func (d *DB) GetHandover(ctx context.Context, id string) (*Handover, error) {
	var entry Handover
	err := d.db.WithContext(ctx).First(&entry, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpdateHandover updates a journal entry
func (d *DB) UpdateHandover(ctx context.Context, entry *Handover) error {
	return d.db.WithContext(ctx).Save(entry).Error
}

// DeleteHandover removes a journal entry
func (d *DB) DeleteHandover(ctx context.Context, id string) error {
	return d.db.WithContext(ctx).Delete(&Handover{}, "id = ?", id).Error
}

// ListHandovers returns all entries of a channel, oldest first so the newest
// entry sits at the bottom of the scroll.
func (d *DB) ListHandovers(ctx context.Context, channelID uint) ([]*Handover, error) {
	var entries []*Handover
	err := d.db.WithContext(ctx).
		Where("channel_id = ?", channelID).
		Order("created_at asc").
		Find(&entries).Error
	return entries, err
}
