package usecase

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"jazzcoasters-backend/internal/domain"
	"jazzcoasters-backend/pkg/apperror"
	"jazzcoasters-backend/pkg/calendar"
	"jazzcoasters-backend/pkg/logger"
)

const (
	showsCacheKey  = "shows:upcoming"
	dateLabelFmt   = "Monday, January 2, 2006"
	timeLabelFmt   = "3:04 PM"
	gcalAllDayFmt  = "20060102"
	gcalInstantFmt = "20060102T150405Z"
)

// ShowFeed is the upstream calendar the listings are read from.
type ShowFeed interface {
	Fetch(ctx context.Context, loc *time.Location) ([]calendar.Event, error)
}

type ShowSettings struct {
	MaxEvents int
	CacheTTL  time.Duration
	Location  *time.Location
	Now       func() time.Time
}

type showUsecase struct {
	feed     ShowFeed
	cache    domain.Cache
	settings ShowSettings
}

// NewShowUsecase returns the listings usecase. A nil feed means the feed is not configured.
func NewShowUsecase(feed ShowFeed, cache domain.Cache, settings ShowSettings) domain.ShowUsecase {
	if settings.MaxEvents <= 0 {
		settings.MaxEvents = 25
	}
	if settings.CacheTTL <= 0 {
		settings.CacheTTL = 10 * time.Minute
	}
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.Now == nil {
		settings.Now = time.Now
	}
	return &showUsecase{feed: feed, cache: cache, settings: settings}
}

func (u *showUsecase) UpcomingShows(ctx context.Context) ([]domain.ShowEvent, error) {
	if u.feed == nil {
		return nil, apperror.NotImplemented("Shows feed not configured")
	}

	if u.cache != nil {
		var cached []domain.ShowEvent
		found, err := u.cache.Get(ctx, showsCacheKey, &cached)
		if err != nil {
			logger.Log.Warn("Shows cache read failed", "error", err)
		} else if found {
			return cached, nil
		}
	}

	events, err := u.feed.Fetch(ctx, u.settings.Location)
	if err != nil {
		logger.Log.Error("Failed to fetch shows feed", "error", err)
		return nil, apperror.BadGateway("Unable to load shows right now", err)
	}

	shows := u.upcoming(events)

	if u.cache != nil {
		if err := u.cache.Set(ctx, showsCacheKey, shows, u.settings.CacheTTL); err != nil {
			logger.Log.Warn("Shows cache write failed", "error", err)
		}
	}
	return shows, nil
}

// upcoming keeps events that have not ended yet, in start order, capped at MaxEvents.
func (u *showUsecase) upcoming(events []calendar.Event) []domain.ShowEvent {
	now := u.settings.Now()
	shows := make([]domain.ShowEvent, 0, len(events))
	for _, ev := range events {
		if eventEnd(ev).Before(now) {
			continue
		}
		shows = append(shows, toShowEvent(ev, u.settings.Location))
		if len(shows) == u.settings.MaxEvents {
			break
		}
	}
	return shows
}

func eventEnd(ev calendar.Event) time.Time {
	if !ev.End.IsZero() && ev.End.After(ev.Start) {
		return ev.End
	}
	if ev.AllDay {
		return ev.Start.AddDate(0, 0, 1)
	}
	return ev.Start
}

func toShowEvent(ev calendar.Event, loc *time.Location) domain.ShowEvent {
	start := ev.Start.In(loc)
	title := strings.TrimSpace(ev.Summary)
	if title == "" {
		title = "The Jazz Coasters Live"
	}
	id := ev.UID
	if id == "" {
		id = fmt.Sprintf("show-%d", start.UnixMilli())
	}

	show := domain.ShowEvent{
		ID:                id,
		Title:             title,
		DateLabel:         start.Format(dateLabelFmt),
		TimeLabel:         timeLabel(ev, loc),
		Location:          ev.Location,
		Notes:             ev.Description,
		Link:              ev.URL,
		AddToCalendarLink: addToCalendarLink(ev, title),
		SortMs:            start.UnixMilli(),
	}
	if ev.Location != "" {
		show.MapsLink = "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(ev.Location)
	}
	return show
}

func timeLabel(ev calendar.Event, loc *time.Location) string {
	if ev.AllDay {
		return "All day"
	}
	label := ev.Start.In(loc).Format(timeLabelFmt)
	if ev.End.After(ev.Start) {
		label += " - " + ev.End.In(loc).Format(timeLabelFmt)
	}
	return label
}

// addToCalendarLink builds a Google Calendar "create event" template URL.
func addToCalendarLink(ev calendar.Event, title string) string {
	end := eventEnd(ev)
	var dates string
	if ev.AllDay {
		dates = ev.Start.Format(gcalAllDayFmt) + "/" + end.Format(gcalAllDayFmt)
	} else {
		if !end.After(ev.Start) {
			end = ev.Start.Add(2 * time.Hour)
		}
		dates = ev.Start.UTC().Format(gcalInstantFmt) + "/" + end.UTC().Format(gcalInstantFmt)
	}

	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", title)
	q.Set("dates", dates)
	if ev.Location != "" {
		q.Set("location", ev.Location)
	}
	if ev.Description != "" {
		q.Set("details", ev.Description)
	}
	return "https://calendar.google.com/calendar/render?" + q.Encode()
}
