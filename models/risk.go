// models/risk.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Risk is an AI- or heuristically-derived record traceable to a
// (entity, data, row) source selection.
type Risk struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RiskID         string             `bson:"riskId" json:"riskId"` // R-####, monotonic per tenant
	OrganizationID primitive.ObjectID `bson:"organizationId" json:"organizationId"`
	Title          string             `bson:"title" json:"title"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`

	Likelihood     int     `bson:"likelihood" json:"likelihood"`         // 1..5
	Impact         int     `bson:"impact" json:"impact"`                 // 1..5
	ExposureRating int     `bson:"exposureRating" json:"exposureRating"` // 1..5
	Score          int     `bson:"score" json:"score"`                   // 0..100
	Priority       string  `bson:"priority" json:"priority"`

	Status   string `bson:"status" json:"status"`     // default Open
	RiskType string `bson:"riskType" json:"riskType"` // default Current

	AIExplanation string   `bson:"aiExplanation,omitempty" json:"aiExplanation,omitempty"`
	Mitigations   []string `bson:"mitigations" json:"mitigations"` // 1..5 entries

	// Source selection traceability.
	Entity string `bson:"entity" json:"entity"`
	Data   string `bson:"data" json:"data"`
	Row    string `bson:"row" json:"row"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// RiskFilter narrows risk listings; zero values mean "any".
type RiskFilter struct {
	Entity string
	Data   string
	Row    string
}
