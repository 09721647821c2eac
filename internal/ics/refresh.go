package ics

import (
	"context"
	"time"

	"calgrid/internal/config"
	appLog "calgrid/internal/log"
	"calgrid/internal/model"
)

// Refresher re-imports configured ICS subscriptions into the store. Each
// subscription owns one calendar, found by name or created on first refresh;
// its previous events are replaced wholesale on every run so removals in the
// feed propagate.
type Refresher struct {
	svc     model.Service
	fetcher *Fetcher
	loc     *time.Location
	subs    []config.SubscriptionConfig
}

// NewRefresher creates a Refresher feeding svc.
func NewRefresher(svc model.Service, subs []config.SubscriptionConfig, loc *time.Location) *Refresher {
	if loc == nil {
		loc = time.Local
	}
	return &Refresher{
		svc:     svc,
		fetcher: NewFetcher(),
		loc:     loc,
		subs:    subs,
	}
}

// Refresh runs one fetch+import cycle over every subscription. Individual
// feed failures are logged and skipped; the first store error aborts.
func (r *Refresher) Refresh(ctx context.Context) error {
	for _, sub := range r.subs {
		if sub.URL == "" {
			continue
		}
		if err := r.refreshOne(ctx, sub); err != nil {
			return err
		}
	}
	return nil
}

func (r *Refresher) refreshOne(ctx context.Context, sub config.SubscriptionConfig) error {
	id := sub.ID
	if id == "" {
		id = sub.Name
	}

	res, err := r.fetcher.FetchOne(ctx, Source{ID: id, URL: sub.URL})
	if err != nil {
		appLog.Error("subscription fetch failed, keeping previous import", err, "id", id)
		return nil
	}

	cal, err := r.subscriptionCalendar(ctx, sub)
	if err != nil {
		return err
	}

	parsed, err := ParseEvents(res.Body, cal.ID, r.loc)
	if err != nil {
		appLog.Error("subscription parse failed, keeping previous import", err, "id", id)
		return nil
	}

	// Replace: drop the calendar's current events, then import the fresh set.
	old, err := r.svc.ListEvents(ctx, []string{cal.ID})
	if err != nil {
		return err
	}
	for _, ev := range old {
		if err := r.svc.DeleteEvent(ctx, ev.ID); err != nil {
			return err
		}
	}
	for _, ev := range parsed {
		if _, err := r.svc.CreateEvent(ctx, ev); err != nil {
			appLog.Error("subscription event rejected", err, "id", id, "title", ev.Title)
		}
	}

	appLog.Info("subscription refreshed", "id", id, "calendar", cal.Name, "events", len(parsed), "from_cache", res.FromCache)
	return nil
}

// subscriptionCalendar finds the calendar a subscription imports into, by
// display name, creating it when missing.
func (r *Refresher) subscriptionCalendar(ctx context.Context, sub config.SubscriptionConfig) (model.Calendar, error) {
	name := sub.Name
	if name == "" {
		name = sub.URL
	}

	cals, err := r.svc.ListCalendars(ctx)
	if err != nil {
		return model.Calendar{}, err
	}
	for _, cal := range cals {
		if cal.Name == name {
			return cal, nil
		}
	}

	color, err := model.ParseColor(sub.Color)
	if err != nil {
		color = model.ColorBlue
	}
	return r.svc.CreateCalendar(ctx, name, color)
}
