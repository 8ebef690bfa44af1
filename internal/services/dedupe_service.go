package services

import (
	"context"
	"log/slog"
	"sort"

	"marketing-ops/internal/services/notify"
	"marketing-ops/internal/store"
	"marketing-ops/models"
	"marketing-ops/monitoring"
)

// DuplicateGroup is a set of events sharing date and title. KeptID is the
// earliest created.
type DuplicateGroup struct {
	Date       string   `json:"date"`
	Title      string   `json:"title"`
	KeptID     string   `json:"kept_id"`
	RemovedIDs []string `json:"removed_ids"`
	FailedIDs  []string `json:"failed_ids,omitempty"`
}

type DedupeReport struct {
	Groups       []DuplicateGroup `json:"groups"`
	TotalDeleted int              `json:"total_deleted"`
	TotalFailed  int              `json:"total_failed"`
	DryRun       bool             `json:"dry_run"`
}

// FindDuplicates groups events by (date, title). Titles are compared exactly.
// Groups keep the order in which their first member appears; only groups with
// more than one member are returned.
func FindDuplicates(events []models.Event) []DuplicateGroup {
	buckets := map[string][]models.Event{}
	var order []string
	for _, e := range events {
		key := e.DedupeKey()
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], e)
	}

	groups := []DuplicateGroup{}
	for _, key := range order {
		members := buckets[key]
		if len(members) < 2 {
			continue
		}
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].CreatedAt.Before(members[j].CreatedAt)
		})

		group := DuplicateGroup{
			Date:   members[0].Date,
			Title:  members[0].Title,
			KeptID: members[0].ID,
		}
		for _, m := range members[1:] {
			group.RemovedIDs = append(group.RemovedIDs, m.ID)
		}
		groups = append(groups, group)
	}
	return groups
}

type DedupeService struct {
	Store       *store.Store
	Notifier    *notify.Multi
	deleteEvent func(ctx context.Context, id string) error
}

func NewDedupeService(s *store.Store, notifier *notify.Multi) *DedupeService {
	return &DedupeService{Store: s, Notifier: notifier, deleteEvent: s.DeleteEvent}
}

// Run finds duplicate events and, unless dryRun, deletes all but the kept
// member of each group. A failed delete is recorded and the run continues.
func (s *DedupeService) Run(ctx context.Context, dryRun bool) (*DedupeReport, error) {
	events, err := s.Store.ListEventsForDedupe(ctx)
	if err != nil {
		return nil, err
	}

	report := &DedupeReport{Groups: FindDuplicates(events), DryRun: dryRun}
	if dryRun {
		for _, g := range report.Groups {
			report.TotalDeleted += len(g.RemovedIDs)
		}
		return report, nil
	}

	for i := range report.Groups {
		group := &report.Groups[i]
		var removed []string
		for _, id := range group.RemovedIDs {
			if err := s.deleteEvent(ctx, id); err != nil {
				slog.Error("Failed to delete duplicate event", "event_id", id, "date", group.Date, "title", group.Title, "error", err)
				group.FailedIDs = append(group.FailedIDs, id)
				report.TotalFailed++
				continue
			}
			removed = append(removed, id)
			report.TotalDeleted++
		}
		group.RemovedIDs = removed
	}

	monitoring.TrackDedupe("deleted", report.TotalDeleted)
	monitoring.TrackDedupe("failed", report.TotalFailed)
	slog.Info("Duplicate events removed", "groups", len(report.Groups), "deleted", report.TotalDeleted, "failed", report.TotalFailed)

	if report.TotalDeleted > 0 {
		s.Notifier.Publish(ctx, notify.Event{
			Type:  notify.EventDuplicatesFixed,
			Title: "Duplicate events removed",
			Data:  map[string]any{"deleted": report.TotalDeleted, "failed": report.TotalFailed},
		})
	}
	return report, nil
}
