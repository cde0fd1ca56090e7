// events/factory.go
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"grc/access"
	"grc/apperr"
	"grc/models"
	"grc/store"
)

// Factory builds fully populated events from a source record and a
// trigger, resolving owner/reviewer/creator against users in the same
// tenant.
type Factory struct {
	// Now is replaceable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewFactory() *Factory {
	return &Factory{Now: time.Now}
}

// Build produces the event for (kind, record, trigger). The record's
// tenant becomes the event's tenant; a trigger that does not belong to
// the record's kind is an input error.
func (f *Factory) Build(ctx context.Context, q store.Querier, rec *models.SourceRecord, trigger Trigger) (*models.Event, error) {
	spec, ok := triggerSpecs[trigger]
	if !ok {
		return nil, apperr.Newf(apperr.KindInvalidInput, "unknown trigger %q", trigger)
	}
	if spec.kind != rec.Kind {
		return nil, apperr.Newf(apperr.KindInvalidInput, "trigger %q does not apply to %s records", trigger, rec.Kind)
	}
	if rec.OrganizationID.IsZero() {
		return nil, apperr.MissingTenant("source record has no tenant")
	}

	start := f.today()
	end := start.AddDate(0, 0, spec.windowDays)
	if spec.useMitigationDue && rec.MitigationDue != nil {
		end = *rec.MitigationDue
	}

	priority := spec.priority
	if priority == "" {
		priority = rec.EffectiveLevel()
	}

	now := f.Now().UTC()
	ev := &models.Event{
		EventID:          fmt.Sprintf("EV-%s", ulid.Make()),
		OrganizationID:   rec.OrganizationID,
		Title:            fmt.Sprintf("%s: %s", spec.verb, rec.Title),
		Description:      fmt.Sprintf("%s: %s", spec.sentence, rec.Description),
		LinkedRecordType: rec.Kind,
		LinkedRecordID:   rec.ID,
		LinkedRecordName: rec.Title,
		Category:         access.ModuleFor(rec.Kind),
		Priority:         priority,
		Status:           spec.status,
		StartDate:        start,
		EndDate:          end,
		RecurrenceType:   "Non-Recurring",
		IsTemplate:       false,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	// Owner and creator come from the record's owner, the reviewer from
	// its reviewer; both must resolve inside the record's tenant or are
	// left unset.
	if u := f.resolveUser(ctx, q, rec.OrganizationID, rec.OwnerID); u != nil {
		ev.OwnerID = &u.ID
		ev.CreatorID = &u.ID
	}
	if u := f.resolveUser(ctx, q, rec.OrganizationID, rec.ReviewerID); u != nil {
		ev.ReviewerID = &u.ID
	}

	return ev, nil
}

func (f *Factory) resolveUser(ctx context.Context, q store.Querier, org, id primitive.ObjectID) *models.User {
	if id.IsZero() {
		return nil
	}
	u, err := q.FindUser(ctx, org, id)
	if err != nil {
		return nil
	}
	return u
}

func (f *Factory) today() time.Time {
	now := f.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
