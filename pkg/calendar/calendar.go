// Package calendar fetches and parses the public ICS feed used for show listings.
package calendar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

const maxFeedBytes = 5 << 20

// Event is a VEVENT reduced to the fields the shows page renders.
type Event struct {
	UID         string
	Summary     string
	Location    string
	Description string
	URL         string
	Start       time.Time
	End         time.Time
	AllDay      bool
}

var textUnescaper = strings.NewReplacer(`\n`, "\n", `\N`, "\n", `\,`, ",", `\;`, ";", `\\`, `\`)

// Parse reads every VEVENT in r. All-day events start at midnight in loc.
// Events without a usable DTSTART are skipped. The result is sorted by Start.
func Parse(r io.Reader, loc *time.Location) ([]Event, error) {
	if loc == nil {
		loc = time.UTC
	}
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar: %w", err)
	}

	var events []Event
	for _, ve := range cal.Events() {
		ev, ok := convert(ve, loc)
		if !ok {
			continue
		}
		events = append(events, ev)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	return events, nil
}

func convert(ve *ics.VEvent, loc *time.Location) (Event, bool) {
	ev := Event{
		UID:         ve.Id(),
		Summary:     propText(ve, ics.ComponentPropertySummary),
		Location:    propText(ve, ics.ComponentPropertyLocation),
		Description: propText(ve, ics.ComponentPropertyDescription),
		URL:         propText(ve, ics.ComponentPropertyUrl),
	}

	dtStart := ve.GetProperty(ics.ComponentPropertyDtStart)
	if dtStart == nil {
		return Event{}, false
	}

	if isDateOnly(dtStart) {
		start, err := time.ParseInLocation("20060102", strings.TrimSpace(dtStart.Value), loc)
		if err != nil {
			return Event{}, false
		}
		ev.AllDay = true
		ev.Start = start
		ev.End = start.AddDate(0, 0, 1)
		if dtEnd := ve.GetProperty(ics.ComponentPropertyDtEnd); dtEnd != nil {
			if end, err := time.ParseInLocation("20060102", strings.TrimSpace(dtEnd.Value), loc); err == nil && end.After(start) {
				ev.End = end
			}
		}
		return ev, true
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return Event{}, false
	}
	ev.Start = start.In(loc)
	ev.End = ev.Start
	if end, err := ve.GetEndAt(); err == nil && end.After(start) {
		ev.End = end.In(loc)
	}
	return ev, true
}

func isDateOnly(p *ics.IANAProperty) bool {
	for _, v := range p.ICalParameters["VALUE"] {
		if strings.EqualFold(v, "DATE") {
			return true
		}
	}
	return len(strings.TrimSpace(p.Value)) == len("20060102")
}

func propText(ve *ics.VEvent, prop ics.ComponentProperty) string {
	p := ve.GetProperty(prop)
	if p == nil {
		return ""
	}
	return strings.TrimSpace(textUnescaper.Replace(p.Value))
}

// Client downloads the feed over HTTP.
type Client struct {
	url        string
	httpClient *http.Client
}

func NewClient(feedURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{url: feedURL, httpClient: httpClient}
}

// Fetch downloads and parses the feed.
func (c *Client) Fetch(ctx context.Context, loc *time.Location) ([]Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build calendar request: %w", err)
	}
	req.Header.Set("Accept", "text/calendar")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calendar request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("calendar feed returned status %d", resp.StatusCode)
	}
	return Parse(io.LimitReader(resp.Body, maxFeedBytes), loc)
}
