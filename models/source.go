// models/source.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Source record kinds. The core observes these records; upstream
// subsystems own them.
const (
	KindRisk       = "risk"
	KindCompliance = "compliance"
	KindAudit      = "audit"
	KindIncident   = "incident"
	KindPolicy     = "policy"
)

// Criticality / priority levels shared by source records, events and risks.
const (
	LevelCritical = "Critical"
	LevelHigh     = "High"
	LevelMedium   = "Medium"
	LevelLow      = "Low"
)

// KnownKinds lists every source-record kind the core reacts to.
var KnownKinds = []string{KindRisk, KindCompliance, KindAudit, KindIncident, KindPolicy}

func IsKnownKind(kind string) bool {
	for _, k := range KnownKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// SourceRecord is the polymorphic business record the trigger engine
// reacts to. Kind selects which attributes are meaningful; the struct
// holds the union so one collection serves all five kinds.
type SourceRecord struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organizationId" json:"organizationId"`
	Kind           string             `bson:"kind" json:"kind"`
	Title          string             `bson:"title" json:"title"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`

	// Criticality for risk/compliance/audit/policy; severity for incident.
	Criticality string `bson:"criticality,omitempty" json:"criticality,omitempty"`
	Severity    string `bson:"severity,omitempty" json:"severity,omitempty"`

	Status           string     `bson:"status" json:"status"`
	MitigationStatus string     `bson:"mitigationStatus,omitempty" json:"mitigationStatus,omitempty"`
	MitigationDue    *time.Time `bson:"mitigationDue,omitempty" json:"mitigationDue,omitempty"`
	DueDate          *time.Time `bson:"dueDate,omitempty" json:"dueDate,omitempty"`

	OwnerID    primitive.ObjectID `bson:"ownerId,omitempty" json:"ownerId,omitempty"`
	ReviewerID primitive.ObjectID `bson:"reviewerId,omitempty" json:"reviewerId,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// EffectiveLevel returns the severity for incidents and the criticality
// for everything else, defaulting to Medium.
func (s *SourceRecord) EffectiveLevel() string {
	level := s.Criticality
	if s.Kind == KindIncident && s.Severity != "" {
		level = s.Severity
	}
	switch level {
	case LevelCritical, LevelHigh, LevelMedium, LevelLow:
		return level
	}
	return LevelMedium
}

// EntityRow is a raw row from one of the entity tables risk generation
// can be pointed at (vendors, plans, contracts, SLAs, RFPs and so on).
// Fields holds the full document; the prompt builder serializes it and
// the fallback generator reads its well-known flags.
type EntityRow struct {
	ID             primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID     `bson:"organizationId" json:"organizationId"`
	Entity         string                 `bson:"entity" json:"entity"`
	Table          string                 `bson:"table" json:"table"`
	Fields         map[string]interface{} `bson:"fields,omitempty" json:"fields,omitempty"`
	CreatedAt      time.Time              `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time              `bson:"updatedAt" json:"updatedAt"`
}

// Flag reads a boolean field tolerant of the loose typing entity tables
// carry (bool, numeric, or string truthiness).
func (r *EntityRow) Flag(key string) bool {
	switch v := r.Fields[key].(type) {
	case bool:
		return v
	case int:
		return v != 0
	case int32:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		return v == "true" || v == "1" || v == "yes"
	}
	return false
}

// Text reads a string field, empty when absent or non-string.
func (r *EntityRow) Text(key string) string {
	if v, ok := r.Fields[key].(string); ok {
		return v
	}
	return ""
}
