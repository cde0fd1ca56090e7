// models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event statuses.
const (
	EventPendingReview = "Pending Review"
	EventUnderReview   = "Under Review"
	EventApproved      = "Approved"
	EventRejected      = "Rejected"
	EventCompleted     = "Completed"
)

// Event is a workflow item materialized from a source-record lifecycle
// occurrence. The core is its only writer.
type Event struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID        string             `bson:"eventId" json:"eventId"` // display id, EV-<ulid>
	OrganizationID primitive.ObjectID `bson:"organizationId" json:"organizationId"`
	Title          string             `bson:"title" json:"title"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`

	LinkedRecordType string             `bson:"linkedRecordType" json:"linkedRecordType"`
	LinkedRecordID   primitive.ObjectID `bson:"linkedRecordId" json:"linkedRecordId"`
	LinkedRecordName string             `bson:"linkedRecordName,omitempty" json:"linkedRecordName,omitempty"`

	Category       string     `bson:"category" json:"category"`
	Priority       string     `bson:"priority" json:"priority"`
	Status         string     `bson:"status" json:"status"`
	StartDate      time.Time  `bson:"startDate" json:"startDate"`
	EndDate        time.Time  `bson:"endDate" json:"endDate"`
	RecurrenceType string     `bson:"recurrenceType" json:"recurrenceType"`

	OwnerID    *primitive.ObjectID `bson:"ownerId,omitempty" json:"ownerId,omitempty"`
	ReviewerID *primitive.ObjectID `bson:"reviewerId,omitempty" json:"reviewerId,omitempty"`
	CreatorID  *primitive.ObjectID `bson:"creatorId,omitempty" json:"creatorId,omitempty"`

	IsTemplate bool      `bson:"isTemplate" json:"isTemplate"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Open reports whether the event still counts against the dedup key.
func (e *Event) Open() bool {
	return e.Status == EventPendingReview || e.Status == EventUnderReview
}
