package database

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CreateEvent creates a calendar event
func (d *DB) CreateEvent(ctx context.Context, event *CalendarEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	return d.db.WithContext(ctx).Create(event).Error
}

// GetEvent retrieves an event by id
func (d *DB) GetEvent(ctx context.Context, id string) (*CalendarEvent, error) {
	var event CalendarEvent
	err := d.db.WithContext(ctx).First(&event, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// UpdateEvent updates an existing event
func (d *DB) UpdateEvent(ctx context.Context, event *CalendarEvent) error {
	return d.db.WithContext(ctx).Save(event).Error
}

// DeleteEvent removes an event
func (d *DB) DeleteEvent(ctx context.Context, id string) error {
	return d.db.WithContext(ctx).Delete(&CalendarEvent{}, "id = ?", id).Error
}

// ListEvents returns all events of a channel starting within [from, to]
func (d *DB) ListEvents(ctx context.Context, channelID uint, from, to time.Time) ([]*CalendarEvent, error) {
	var events []*CalendarEvent
	err := d.db.WithContext(ctx).
		Where("channel_id = ? AND start_date >= ? AND start_date <= ?", channelID, from, to).
		Order("start_date asc").
		Find(&events).Error
	return events, err
}

// ListWorkScheduleEvents returns work-schedule events of a channel starting
// within [from, to]; these feed the payroll engine.
func (d *DB) ListWorkScheduleEvents(ctx context.Context, channelID uint, from, to time.Time) ([]*CalendarEvent, error) {
	var events []*CalendarEvent
	err := d.db.WithContext(ctx).
		Where("channel_id = ? AND is_work_schedule = ? AND start_date >= ? AND start_date <= ?",
			channelID, true, from, to).
		Order("start_date asc").
		Find(&events).Error
	return events, err
}

// UpdateEventWage sets the override hourly wage on the listed events
func (d *DB) UpdateEventWage(ctx context.Context, ids []string, wage float64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return d.db.WithContext(ctx).
		Model(&CalendarEvent{}).
		Where("id IN ?", ids).
		Updates(map[string]any{"hourly_wage": wage, "wage_updated_at": at}).Error
}

// CreateContract creates a labor contract
func (d *DB) CreateContract(ctx context.Context, contract *LaborContract) error {
	return d.db.WithContext(ctx).Create(contract).Error
}

// GetContract retrieves a labor contract by id
func (d *DB) GetContract(ctx context.Context, id uint) (*LaborContract, error) {
	var contract LaborContract
	err := d.db.WithContext(ctx).First(&contract, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

// ListContracts returns all labor contracts of a channel
func (d *DB) ListContracts(ctx context.Context, channelID uint) ([]*LaborContract, error) {
	var contracts []*LaborContract
	err := d.db.WithContext(ctx).
		Where("channel_id = ?", channelID).
		Order("created_at desc").
		Find(&contracts).Error
	return contracts, err
}
