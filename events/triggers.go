// Package events materializes workflow events from source-record
// lifecycle occurrences: the factory builds them, the engine defers
// them past commit and fans out notifications, the scanner sweeps for
// overdue and stale records.
package events

import (
	"grc/models"
)

// Trigger names one lifecycle occurrence on a source record.
type Trigger string

const (
	// Risk instance triggers.
	TriggerRiskDetected        Trigger = "risk_detected"
	TriggerRiskEscalated       Trigger = "risk_escalated"
	TriggerMitigationOverdue   Trigger = "mitigation_overdue"
	TriggerRiskApproved        Trigger = "risk_approved"
	TriggerRiskRejected        Trigger = "risk_rejected"
	TriggerMitigationCompleted Trigger = "mitigation_completed"

	// Compliance triggers.
	TriggerComplianceBreach         Trigger = "compliance_breach"
	TriggerComplianceOverdue        Trigger = "compliance_overdue"
	TriggerComplianceApproved       Trigger = "compliance_approved"
	TriggerComplianceRejected       Trigger = "compliance_rejected"
	TriggerComplianceReviewRequired Trigger = "compliance_review_required"

	// Audit triggers.
	TriggerAuditFinding   Trigger = "audit_finding"
	TriggerAuditOverdue   Trigger = "audit_overdue"
	TriggerAuditApproved  Trigger = "audit_approved"
	TriggerAuditRejected  Trigger = "audit_rejected"
	TriggerAuditScheduled Trigger = "audit_scheduled"

	// Incident triggers.
	TriggerIncidentDetected  Trigger = "incident_detected"
	TriggerIncidentEscalated Trigger = "incident_escalated"
	TriggerIncidentResolved  Trigger = "incident_resolved"
	TriggerIncidentOverdue   Trigger = "incident_overdue"

	// Policy triggers.
	TriggerPolicyReviewDue         Trigger = "policy_review_due"
	TriggerPolicyUpdateRequired    Trigger = "policy_update_required"
	TriggerPolicyApprovalNeeded    Trigger = "policy_approval_needed"
	TriggerPolicyExpirationWarning Trigger = "policy_expiration_warning"
	TriggerPolicyApproved          Trigger = "policy_approved"
	TriggerPolicyRejected          Trigger = "policy_rejected"
	TriggerPolicyPublished         Trigger = "policy_published"
	TriggerPolicyArchived          Trigger = "policy_archived"
)

// triggerSpec is one row of the per-kind trigger matrix.
type triggerSpec struct {
	kind     string
	verb     string // title prefix; also the default dedup hint
	sentence string // description prefix
	status   string
	// priority: empty means "verbatim from the source record's level";
	// anything else is fixed.
	priority string
	// window: end = start + windowDays, except risk triggers which use
	// the mitigation due date when present.
	windowDays       int
	useMitigationDue bool
	// dedupHint overrides the verb when the trigger family's canonical
	// phrase differs from the title prefix.
	dedupHint string
}

var triggerSpecs = map[Trigger]triggerSpec{
	// Risk: priority verbatim, end = mitigation due if present else +30d.
	TriggerRiskDetected: {
		kind: models.KindRisk, verb: "Risk Detected",
		sentence: "A new risk requires review",
		status:   models.EventPendingReview, windowDays: 30, useMitigationDue: true,
	},
	TriggerRiskEscalated: {
		kind: models.KindRisk, verb: "Risk Escalated",
		sentence: "This risk has been escalated and needs immediate attention",
		status:   models.EventUnderReview, windowDays: 30, useMitigationDue: true,
		dedupHint: "Escalated",
	},
	TriggerMitigationOverdue: {
		kind: models.KindRisk, verb: "Mitigation Overdue",
		sentence: "The mitigation for this risk is past its due date",
		status:   models.EventPendingReview, windowDays: 30, useMitigationDue: true,
	},
	TriggerRiskApproved: {
		kind: models.KindRisk, verb: "Risk Approved",
		sentence: "This risk has been approved",
		status:   models.EventApproved, windowDays: 30, useMitigationDue: true,
	},
	TriggerRiskRejected: {
		kind: models.KindRisk, verb: "Risk Rejected",
		sentence: "This risk has been rejected",
		status:   models.EventRejected, windowDays: 30, useMitigationDue: true,
	},
	TriggerMitigationCompleted: {
		kind: models.KindRisk, verb: "Mitigation Completed",
		sentence: "The mitigation for this risk has been completed",
		status:   models.EventCompleted, windowDays: 1,
	},

	// Compliance: priority verbatim (default Medium), +30d.
	TriggerComplianceBreach: {
		kind: models.KindCompliance, verb: "Compliance Breach",
		sentence: "A compliance breach has been recorded",
		status:   models.EventPendingReview, windowDays: 30,
	},
	TriggerComplianceOverdue: {
		kind: models.KindCompliance, verb: "Compliance Overdue",
		sentence: "This compliance item is past its due date",
		status:   models.EventPendingReview, windowDays: 30,
	},
	TriggerComplianceApproved: {
		kind: models.KindCompliance, verb: "Compliance Approved",
		sentence: "This compliance item has been approved",
		status:   models.EventApproved, windowDays: 30,
	},
	TriggerComplianceRejected: {
		kind: models.KindCompliance, verb: "Compliance Rejected",
		sentence: "This compliance item has been rejected",
		status:   models.EventRejected, windowDays: 30,
	},
	TriggerComplianceReviewRequired: {
		kind: models.KindCompliance, verb: "Compliance Review Required",
		sentence: "This compliance item requires review",
		status:   models.EventPendingReview, windowDays: 30,
		dedupHint: "Review Required",
	},

	// Audit: priority fixed High, +14d.
	TriggerAuditFinding: {
		kind: models.KindAudit, verb: "Audit Finding",
		sentence: "An audit finding requires remediation",
		status:   models.EventPendingReview, priority: models.LevelHigh, windowDays: 14,
	},
	TriggerAuditOverdue: {
		kind: models.KindAudit, verb: "Audit Overdue",
		sentence: "This audit is past its scheduled completion",
		status:   models.EventPendingReview, priority: models.LevelHigh, windowDays: 14,
	},
	TriggerAuditApproved: {
		kind: models.KindAudit, verb: "Audit Approved",
		sentence: "This audit has been approved",
		status:   models.EventApproved, priority: models.LevelHigh, windowDays: 14,
	},
	TriggerAuditRejected: {
		kind: models.KindAudit, verb: "Audit Rejected",
		sentence: "This audit has been rejected",
		status:   models.EventRejected, priority: models.LevelHigh, windowDays: 14,
	},
	TriggerAuditScheduled: {
		kind: models.KindAudit, verb: "Audit Scheduled",
		sentence: "An audit has been scheduled",
		status:   models.EventPendingReview, priority: models.LevelHigh, windowDays: 14,
	},

	// Incident: priority verbatim from severity, +7d.
	TriggerIncidentDetected: {
		kind: models.KindIncident, verb: "Incident Detected",
		sentence: "A new incident has been reported",
		status:   models.EventPendingReview, windowDays: 7,
	},
	TriggerIncidentEscalated: {
		kind: models.KindIncident, verb: "Incident Escalated",
		sentence: "This incident has been escalated",
		status:   models.EventUnderReview, windowDays: 7,
		dedupHint: "Escalated",
	},
	TriggerIncidentResolved: {
		kind: models.KindIncident, verb: "Incident Resolved",
		sentence: "This incident has been resolved",
		status:   models.EventCompleted, windowDays: 7,
	},
	TriggerIncidentOverdue: {
		kind: models.KindIncident, verb: "Incident Overdue",
		sentence: "This incident has exceeded its response window",
		status:   models.EventPendingReview, windowDays: 7,
	},

	// Policy: per-trigger table.
	TriggerPolicyReviewDue: {
		kind: models.KindPolicy, verb: "Policy Review Due",
		sentence: "This policy is due for periodic review",
		status:   models.EventPendingReview, priority: models.LevelMedium, windowDays: 30,
	},
	TriggerPolicyUpdateRequired: {
		kind: models.KindPolicy, verb: "Policy Update Required",
		sentence: "This policy requires an update",
		status:   models.EventPendingReview, priority: models.LevelMedium, windowDays: 30,
	},
	TriggerPolicyApprovalNeeded: {
		kind: models.KindPolicy, verb: "Policy Approval Needed",
		sentence: "This policy is awaiting approval",
		status:   models.EventUnderReview, priority: models.LevelHigh, windowDays: 14,
	},
	TriggerPolicyExpirationWarning: {
		kind: models.KindPolicy, verb: "Policy Expiration Warning",
		sentence: "This policy approaches its expiration date",
		status:   models.EventPendingReview, priority: models.LevelHigh, windowDays: 7,
	},
	TriggerPolicyApproved: {
		kind: models.KindPolicy, verb: "Policy Approved",
		sentence: "This policy has been approved",
		status:   models.EventApproved, priority: models.LevelLow, windowDays: 14,
	},
	TriggerPolicyRejected: {
		kind: models.KindPolicy, verb: "Policy Rejected",
		sentence: "This policy has been rejected",
		status:   models.EventRejected, priority: models.LevelMedium, windowDays: 14,
	},
	TriggerPolicyPublished: {
		kind: models.KindPolicy, verb: "Policy Published",
		sentence: "This policy has been published",
		status:   models.EventCompleted, priority: models.LevelLow, windowDays: 14,
	},
	TriggerPolicyArchived: {
		kind: models.KindPolicy, verb: "Policy Archived",
		sentence: "This policy has been archived",
		status:   models.EventCompleted, priority: models.LevelLow, windowDays: 14,
	},
}

// createdTriggers maps each kind to the trigger fired on record creation.
var createdTriggers = map[string]Trigger{
	models.KindRisk:       TriggerRiskDetected,
	models.KindCompliance: TriggerComplianceReviewRequired,
	models.KindAudit:      TriggerAuditScheduled,
	models.KindIncident:   TriggerIncidentDetected,
	models.KindPolicy:     TriggerPolicyApprovalNeeded,
}

var approvedTriggers = map[string]Trigger{
	models.KindRisk:       TriggerRiskApproved,
	models.KindCompliance: TriggerComplianceApproved,
	models.KindAudit:      TriggerAuditApproved,
	models.KindPolicy:     TriggerPolicyApproved,
}

var rejectedTriggers = map[string]Trigger{
	models.KindRisk:       TriggerRiskRejected,
	models.KindCompliance: TriggerComplianceRejected,
	models.KindAudit:      TriggerAuditRejected,
	models.KindPolicy:     TriggerPolicyRejected,
}

var escalatedTriggers = map[string]Trigger{
	models.KindRisk:     TriggerRiskEscalated,
	models.KindIncident: TriggerIncidentEscalated,
}

// CreatedTrigger returns the trigger fired when a record of the kind is
// created, and whether the kind is known.
func CreatedTrigger(kind string) (Trigger, bool) {
	t, ok := createdTriggers[kind]
	return t, ok
}

// ValidTrigger reports whether the trigger belongs to the kind.
func ValidTrigger(kind string, trigger Trigger) bool {
	spec, ok := triggerSpecs[trigger]
	return ok && spec.kind == kind
}

// DedupHint returns the canonical title phrase used to find an existing
// open event of the trigger's family.
func DedupHint(trigger Trigger) string {
	spec, ok := triggerSpecs[trigger]
	if !ok {
		return string(trigger)
	}
	if spec.dedupHint != "" {
		return spec.dedupHint
	}
	return spec.verb
}
