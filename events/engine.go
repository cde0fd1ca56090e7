// events/engine.go
package events

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"grc/metrics"
	"grc/models"
	"grc/store"
)

// Engine routes source-record lifecycle hooks to event creation. Event
// creation is always deferred past the commit of the transaction that
// mutated the source record, deduplicated against existing open events,
// and isolated: a failing event never aborts the source mutation.
type Engine struct {
	st      store.Store
	factory *Factory
	sink    NotificationSink
}

func NewEngine(st store.Store, factory *Factory, sink NotificationSink) *Engine {
	if sink == nil {
		sink = LogSink{}
	}
	return &Engine{st: st, factory: factory, sink: sink}
}

// RecordCreated schedules the kind's created-variant trigger for after
// the enclosing transaction commits. collect, when non-nil, receives
// each event actually created.
func (e *Engine) RecordCreated(tx store.Tx, rec *models.SourceRecord, collect func(models.Event)) {
	trigger, ok := CreatedTrigger(rec.Kind)
	if !ok {
		log.Warn().Str("kind", rec.Kind).Msg("no created trigger for record kind")
		return
	}
	e.Defer(tx, rec, trigger, collect)
}

// RecordUpdated compares old and new and schedules the triggers the
// transition implies.
func (e *Engine) RecordUpdated(tx store.Tx, old, rec *models.SourceRecord, collect func(models.Event)) {
	if old.Status != rec.Status {
		switch rec.Status {
		case "Approved":
			if t, ok := approvedTriggers[rec.Kind]; ok {
				e.Defer(tx, rec, t, collect)
			}
		case "Rejected":
			if t, ok := rejectedTriggers[rec.Kind]; ok {
				e.Defer(tx, rec, t, collect)
			}
		case "Resolved":
			if rec.Kind == models.KindIncident {
				e.Defer(tx, rec, TriggerIncidentResolved, collect)
			}
		case "Published":
			if rec.Kind == models.KindPolicy {
				e.Defer(tx, rec, TriggerPolicyPublished, collect)
			}
		case "Archived":
			if rec.Kind == models.KindPolicy {
				e.Defer(tx, rec, TriggerPolicyArchived, collect)
			}
		}
	}

	if raisedTo(old, rec) {
		if t, ok := escalatedTriggers[rec.Kind]; ok {
			e.Defer(tx, rec, t, collect)
		}
	}

	if rec.Kind == models.KindRisk &&
		old.MitigationStatus != store.MitigationCompleted &&
		rec.MitigationStatus == store.MitigationCompleted {
		e.Defer(tx, rec, TriggerMitigationCompleted, collect)
	}
}

// raisedTo reports whether the record's level moved into {High, Critical}
// from below.
func raisedTo(old, rec *models.SourceRecord) bool {
	high := func(level string) bool {
		return level == models.LevelHigh || level == models.LevelCritical
	}
	return high(rec.EffectiveLevel()) && !high(old.EffectiveLevel())
}

// Defer registers event creation on the transaction's commit hook. The
// hook body swallows every failure: source-record mutations must commit
// regardless of event side effects.
func (e *Engine) Defer(tx store.Tx, rec *models.SourceRecord, trigger Trigger, collect func(models.Event)) {
	snapshot := *rec
	tx.OnCommit(func(ctx context.Context) {
		ev, err := e.Create(ctx, &snapshot, trigger)
		if err != nil {
			log.Error().Err(err).
				Str("tenant", snapshot.OrganizationID.Hex()).
				Str("kind", snapshot.Kind).
				Str("record", snapshot.ID.Hex()).
				Str("trigger", string(trigger)).
				Msg("deferred event creation failed")
			return
		}
		if ev != nil && collect != nil {
			collect(*ev)
		}
	})
}

// Create builds and persists the event for (record, trigger) unless an
// open event of the same family already exists. Returns (nil, nil) on
// dedup.
func (e *Engine) Create(ctx context.Context, rec *models.SourceRecord, trigger Trigger) (*models.Event, error) {
	org := rec.OrganizationID

	existing, err := e.st.FindOpenEvent(ctx, org, rec.Kind, rec.ID, DedupHint(trigger))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		metrics.EventsDeduplicated.WithLabelValues(rec.Kind).Inc()
		log.Debug().
			Str("tenant", org.Hex()).
			Str("kind", rec.Kind).
			Str("record", rec.ID.Hex()).
			Str("trigger", string(trigger)).
			Msg("open event exists, skipping creation")
		return nil, nil
	}

	ev, err := e.factory.Build(ctx, e.st, rec, trigger)
	if err != nil {
		return nil, err
	}
	if err := e.st.InsertEvent(ctx, org, ev); err != nil {
		return nil, err
	}
	metrics.EventsCreated.WithLabelValues(rec.Kind, string(trigger)).Inc()

	if err := e.st.InsertAuditLog(ctx, org, &models.AuditLog{
		Action:     "create_event",
		EntityType: rec.Kind,
		EntityID:   rec.ID.Hex(),
		Details:    bson.M{"eventId": ev.EventID, "trigger": string(trigger)},
	}); err != nil {
		log.Warn().Err(err).Str("tenant", org.Hex()).Msg("audit log write failed")
	}

	e.notify(ctx, org, ev)
	return ev, nil
}

// notify fans the event out to the distinct owner/reviewer/creator
// users that have an email address. Best effort per recipient.
func (e *Engine) notify(ctx context.Context, org primitive.ObjectID, ev *models.Event) {
	var creatorName string
	seen := map[string]bool{}
	var recipients []Recipient

	add := func(id *primitive.ObjectID, isCreator bool) {
		if id == nil || id.IsZero() {
			return
		}
		u, err := e.st.FindUser(ctx, org, *id)
		if err != nil || u.Email == "" {
			return
		}
		if isCreator {
			creatorName = u.DisplayName()
		}
		if seen[u.Email] {
			return
		}
		seen[u.Email] = true
		recipients = append(recipients, Recipient{Role: u.Role, Email: u.Email, Name: u.DisplayName()})
	}

	add(ev.CreatorID, true)
	add(ev.OwnerID, false)
	add(ev.ReviewerID, false)

	for _, r := range recipients {
		if err := e.sink.Send(ctx, r, ev, templateData(r, ev, creatorName)); err != nil {
			log.Warn().Err(err).
				Str("tenant", org.Hex()).
				Str("eventId", ev.EventID).
				Str("recipient", r.Email).
				Msg("event notification failed")
		}
	}
}
