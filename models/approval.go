// models/approval.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ApprovalRequest binds an opaque approval id to a risk-generation
// selection. The async entry point resolves it and refuses callers from
// another tenant.
type ApprovalRequest struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ApprovalID     string             `bson:"approvalId" json:"approvalId"`
	OrganizationID primitive.ObjectID `bson:"organizationId" json:"organizationId"`
	Entity         string             `bson:"entity" json:"entity"`
	Table          string             `bson:"table" json:"table"`
	Row            string             `bson:"row" json:"row"`
	SubmittedBy    primitive.ObjectID `bson:"submittedBy" json:"submittedBy"`
	SubmittedAt    time.Time          `bson:"submittedAt" json:"submittedAt"`
	Status         string             `bson:"status" json:"status"` // pending, processing, completed
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
