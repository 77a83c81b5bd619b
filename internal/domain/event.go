package domain

import (
	"context"
	"time"
)

// DateLayout and TimeLayout are the wire formats of an event's schedule.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Event represents a scheduled event in a category.
// swagger:model Event
type Event struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Date             string    `json:"date"`
	Time             string    `json:"time"`
	Location         string    `json:"location"`
	CategoryID       string    `json:"category_id"`
	CategoryName     string    `json:"category_name,omitempty"`
	ParticipantCount int       `json:"participant_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(name, description, date, tm, location, categoryID string, createdAt time.Time) *Event {
	return &Event{
		Name:        name,
		Description: description,
		Date:        date,
		Time:        tm,
		Location:    location,
		CategoryID:  categoryID,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

// EventFilter narrows an event listing. Zero fields do not filter.
type EventFilter struct {
	Search     string
	CategoryID string
	Start      string
	End        string
	Pagination PaginationParams
}

// HasDateRange reports whether the date range applies. Both bounds must be set.
func (f EventFilter) HasDateRange() bool {
	return f.Start != "" && f.End != ""
}

// EventUpdate carries the optional fields of an event edit. Nil means unchanged.
type EventUpdate struct {
	Name        *string
	Description *string
	Date        *string
	Time        *string
	Location    *string
	CategoryID  *string
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	// Create returns ErrInvalidInput when the category does not exist.
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter EventFilter) ([]*Event, int, error)
	// ListByDay lists events relative to today: "today", "upcoming", "past" or "all".
	ListByDay(ctx context.Context, scope, today string) ([]*Event, error)
	Stats(ctx context.Context, today string) (*EventStats, error)
}

// EventService defines event management operations.
type EventService interface {
	List(ctx context.Context, filter EventFilter) ([]*Event, int, error)
	Get(ctx context.Context, id string) (*Event, error)
	Create(ctx context.Context, event *Event) error
	Update(ctx context.Context, id string, upd *EventUpdate) (*Event, error)
	Delete(ctx context.Context, id string) error
	Participants(ctx context.Context, id string) ([]*User, error)
}
