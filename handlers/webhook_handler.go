// handlers/webhook_handler.go
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"grc/access"
	"grc/apperr"
	"grc/events"
	"grc/models"
	"grc/store"
	"grc/utils"
)

type webhookRequest struct {
	TriggerType string `json:"trigger_type"`
	RecordType  string `json:"record_type"`
	RecordID    string `json:"record_id,omitempty"`

	RiskDetails       *recordDetails `json:"risk_details,omitempty"`
	ComplianceDetails *recordDetails `json:"compliance_details,omitempty"`
	AuditDetails      *recordDetails `json:"audit_details,omitempty"`
	IncidentDetails   *recordDetails `json:"incident_details,omitempty"`
	PolicyDetails     *recordDetails `json:"policy_details,omitempty"`
}

type recordDetails struct {
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Criticality      string     `json:"criticality,omitempty"`
	Severity         string     `json:"severity,omitempty"`
	Status           string     `json:"status,omitempty"`
	MitigationStatus string     `json:"mitigation_status,omitempty"`
	MitigationDue    *time.Time `json:"mitigation_due,omitempty"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	OwnerID          string     `json:"owner_id,omitempty"`
	ReviewerID       string     `json:"reviewer_id,omitempty"`
}

func (r *webhookRequest) details() *recordDetails {
	switch r.RecordType {
	case models.KindRisk:
		return r.RiskDetails
	case models.KindCompliance:
		return r.ComplianceDetails
	case models.KindAudit:
		return r.AuditDetails
	case models.KindIncident:
		return r.IncidentDetails
	case models.KindPolicy:
		return r.PolicyDetails
	}
	return nil
}

type createdEvent struct {
	EventID    string `json:"event_id"`
	EventIDGen string `json:"event_id_generated"`
	EventTitle string `json:"event_title"`
}

// IngestRiskSource accepts an upstream tool trigger, resolves or
// synthesizes the source record, and fires the trigger's event after
// the record transaction commits.
func IngestRiskSource(w http.ResponseWriter, r *http.Request) {
	scope, err := access.FromContext(r.Context())
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	var req webhookRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if req.TriggerType == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "trigger_type is required")
		return
	}
	if !models.IsKnownKind(req.RecordType) {
		utils.RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("unknown record_type %q", req.RecordType))
		return
	}
	trigger := events.Trigger(req.TriggerType)
	if !events.ValidTrigger(req.RecordType, trigger) {
		utils.RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("trigger %q is not valid for %s records", req.TriggerType, req.RecordType))
		return
	}

	var created []createdEvent
	err = st.RunTx(r.Context(), func(tx store.Tx) error {
		rec, err := resolveRecord(r, tx, scope, &req)
		if err != nil {
			return err
		}
		engine.Defer(tx, rec, trigger, func(ev models.Event) {
			created = append(created, createdEvent{
				EventID:    ev.ID.Hex(),
				EventIDGen: ev.EventID,
				EventTitle: ev.Title,
			})
		})
		return nil
	})
	if err != nil {
		log.Error().Err(err).
			Str("tenant", scope.OrgID.Hex()).
			Str("trigger", req.TriggerType).
			Msg("webhook ingest failed")
		utils.RespondWithAppError(w, err)
		return
	}

	message := "trigger processed"
	if len(created) == 0 {
		message = "trigger processed, no new events"
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"created_events": created,
		"message":        message,
	})
}

// resolveRecord loads the referenced source record, or synthesizes one
// from the kind's details block when no record_id was sent.
func resolveRecord(r *http.Request, tx store.Tx, scope access.Scope, req *webhookRequest) (*models.SourceRecord, error) {
	if req.RecordID != "" {
		recID, err := primitive.ObjectIDFromHex(req.RecordID)
		if err != nil {
			return nil, apperr.InvalidInput("malformed record_id")
		}
		return tx.FindSource(r.Context(), scope.OrgID, req.RecordType, recID)
	}

	details := req.details()
	if details == nil {
		return nil, apperr.InvalidInput(fmt.Sprintf("record_id or %s_details is required", req.RecordType))
	}
	if details.Title == "" {
		return nil, apperr.InvalidInput("details.title is required")
	}

	rec := &models.SourceRecord{
		ID:               primitive.NewObjectID(),
		OrganizationID:   scope.OrgID,
		Kind:             req.RecordType,
		Title:            details.Title,
		Description:      details.Description,
		Criticality:      details.Criticality,
		Severity:         details.Severity,
		Status:           details.Status,
		MitigationStatus: details.MitigationStatus,
		MitigationDue:    details.MitigationDue,
		DueDate:          details.DueDate,
	}
	if id, err := primitive.ObjectIDFromHex(details.OwnerID); err == nil {
		rec.OwnerID = id
	}
	if id, err := primitive.ObjectIDFromHex(details.ReviewerID); err == nil {
		rec.ReviewerID = id
	}
	if err := tx.InsertSource(r.Context(), scope.OrgID, rec); err != nil {
		return nil, err
	}
	return rec, nil
}
