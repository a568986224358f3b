package domain

import "context"

// ShowEvent is one upcoming performance as rendered by the shows page.
type ShowEvent struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	DateLabel         string `json:"dateLabel"`
	TimeLabel         string `json:"timeLabel"`
	Location          string `json:"location,omitempty"`
	Notes             string `json:"notes,omitempty"`
	Link              string `json:"link,omitempty"`
	MapsLink          string `json:"mapsLink,omitempty"`
	AddToCalendarLink string `json:"addToCalendarLink,omitempty"`
	SortMs            int64  `json:"sortMs"`
}

type ShowUsecase interface {
	UpcomingShows(ctx context.Context) ([]ShowEvent, error)
}
