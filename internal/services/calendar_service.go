package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"marketing-ops/internal/store"
	"marketing-ops/models"

	"github.com/emersion/go-ical"
)

const (
	calendarProductID  = "-//marketing-ops//events//EN"
	defaultEventLength = time.Hour
)

type ImportReport struct {
	Parsed   int      `json:"parsed"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Dropped  []string `json:"dropped_columns,omitempty"`
}

type CalendarService struct {
	Store    *store.Store
	Location *time.Location
	Name     string
	now      func() time.Time
}

func NewCalendarService(s *store.Store, name string) *CalendarService {
	return &CalendarService{Store: s, Location: time.UTC, Name: name, now: utcNow}
}

// Feed writes all events matching filter as an iCalendar document.
func (s *CalendarService) Feed(ctx context.Context, w io.Writer, filter models.EventFilter) error {
	events, err := s.Store.ListEvents(ctx, filter)
	if err != nil {
		return err
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, calendarProductID)
	if s.Name != "" {
		cal.Props.Set(&ical.Prop{Name: "X-WR-CALNAME", Params: ical.Params{}, Value: s.Name})
	}

	stamp := s.now()
	for _, e := range events {
		ve, err := s.toVEvent(e, stamp)
		if err != nil {
			slog.Warn("Skipping event in calendar feed", "event_id", e.ID, "error", err)
			continue
		}
		cal.Children = append(cal.Children, ve)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

// toVEvent maps an event to a VEVENT. Events without a time are all-day,
// others last one hour.
func (s *CalendarService) toVEvent(e models.Event, stamp time.Time) (*ical.Component, error) {
	day, err := time.ParseInLocation(models.DateLayout, e.Date, s.Location)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", e.Date)
	}

	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, e.ID)
	ve.Props.SetText(ical.PropSummary, e.Title)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())

	if e.Time != nil && *e.Time != "" {
		start, err := time.ParseInLocation(models.DateLayout+" "+models.TimeLayout, e.Date+" "+*e.Time, s.Location)
		if err != nil {
			return nil, fmt.Errorf("invalid time %q", *e.Time)
		}
		ve.Props.SetDateTime(ical.PropDateTimeStart, start.UTC())
		ve.Props.SetDateTime(ical.PropDateTimeEnd, start.Add(defaultEventLength).UTC())
	} else {
		ve.Props.SetDate(ical.PropDateTimeStart, day)
		ve.Props.SetDate(ical.PropDateTimeEnd, day.AddDate(0, 0, 1))
	}

	var desc []string
	if e.Artist != nil && *e.Artist != "" {
		desc = append(desc, *e.Artist)
	}
	if e.Summary != nil && *e.Summary != "" {
		desc = append(desc, *e.Summary)
	}
	if len(desc) > 0 {
		ve.Props.SetText(ical.PropDescription, strings.Join(desc, "\n\n"))
	}
	if e.URL != nil && *e.URL != "" {
		ve.Props.SetText(ical.PropURL, *e.URL)
	}
	return ve, nil
}

// ParseICS converts every VEVENT in data to an event payload. Events without
// a summary or start are skipped.
func (s *CalendarService) ParseICS(data []byte) ([]models.EventInput, error) {
	if !bytes.Contains(data, []byte("BEGIN:VCALENDAR")) {
		return nil, invalidf("body is not an iCalendar document")
	}

	var inputs []models.EventInput
	dec := ical.NewDecoder(bytes.NewReader(data))
	for {
		cal, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, invalidf("failed to decode calendar: %v", err)
		}

		for _, comp := range cal.Children {
			if comp.Name != ical.CompEvent {
				continue
			}
			in, ok := s.fromVEvent(comp)
			if !ok {
				continue
			}
			inputs = append(inputs, in)
		}
	}
	return inputs, nil
}

func (s *CalendarService) fromVEvent(comp *ical.Component) (models.EventInput, bool) {
	var in models.EventInput

	summary := comp.Props.Get(ical.PropSummary)
	start := comp.Props.Get(ical.PropDateTimeStart)
	if summary == nil || strings.TrimSpace(summary.Value) == "" || start == nil {
		return in, false
	}

	title, err := summary.Text()
	if err != nil {
		title = summary.Value
	}
	title = strings.TrimSpace(title)
	in.Title = &title

	allDay := start.ValueType() == ical.ValueDate || len(start.Value) == 8
	var t time.Time
	if allDay {
		t, err = time.ParseInLocation("20060102", start.Value, s.Location)
	} else {
		t, err = start.DateTime(s.Location)
	}
	if err != nil {
		return in, false
	}
	t = t.In(s.Location)
	date := t.Format(models.DateLayout)
	in.Date = &date
	if !allDay {
		clock := t.Format(models.TimeLayout)
		in.Time = &clock
	}

	if desc := comp.Props.Get(ical.PropDescription); desc != nil {
		if text, err := desc.Text(); err == nil && strings.TrimSpace(text) != "" {
			text = strings.TrimSpace(text)
			in.Summary = &text
		}
	}
	if u := comp.Props.Get(ical.PropURL); u != nil && u.Value != "" {
		link := u.Value
		in.URL = &link
	}
	if uid := comp.Props.Get(ical.PropUID); uid != nil && uid.Value != "" {
		in.Metadata = map[string]any{"ics_uid": uid.Value}
	}
	return in, true
}

// Import inserts the events of an ICS document, skipping (date, title) pairs
// that already exist.
func (s *CalendarService) Import(ctx context.Context, data []byte) (*ImportReport, error) {
	inputs, err := s.ParseICS(data)
	if err != nil {
		return nil, err
	}

	keys, err := s.Store.EventKeys(ctx)
	if err != nil {
		return nil, err
	}

	report := &ImportReport{Parsed: len(inputs)}
	now := s.now()
	var records []models.Record
	for _, in := range inputs {
		if err := in.ValidateCreate(); err != nil {
			report.Skipped++
			continue
		}
		key := models.Event{Date: *in.Date, Title: *in.Title}.DedupeKey()
		if keys[key] {
			report.Skipped++
			continue
		}
		keys[key] = true
		records = append(records, in.Record(true, now))
	}

	if len(records) > 0 {
		result, err := s.Store.InsertMany(ctx, "events", records, false)
		if err != nil {
			return nil, fmt.Errorf("import events: %w", err)
		}
		report.Imported = len(records)
		report.Dropped = result.Dropped
	}

	slog.Info("Calendar imported", "parsed", report.Parsed, "imported", report.Imported, "skipped", report.Skipped)
	return report, nil
}
