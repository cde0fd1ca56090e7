// access/rolegate.go
package access

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"grc/models"
)

// Roles that see every event regardless of kind.
var privilegedRoles = map[string]bool{
	"GRC Administrator": true,
	"Audit Manager":     true,
	"Internal Auditor":  true,
	"External Auditor":  true,
	"Audit Reviewer":    true,
}

// Per-kind role families.
var kindRoles = map[string]map[string]bool{
	models.KindCompliance: {
		"Compliance Manager":  true,
		"Compliance Officer":  true,
		"Compliance Approver": true,
	},
	models.KindPolicy: {
		"Policy Manager":  true,
		"Policy Approver": true,
	},
	models.KindAudit: {
		"Audit Manager":    true,
		"Internal Auditor": true,
		"External Auditor": true,
		"Audit Reviewer":   true,
	},
	models.KindRisk: {
		"Risk Manager":  true,
		"Risk Analyst":  true,
		"Risk Reviewer": true,
	},
	models.KindIncident: {
		"Incident Response Manager": true,
		"Incident Analyst":          true,
	},
}

// ModuleFor maps a linked-record type to its module name.
func ModuleFor(kind string) string {
	switch kind {
	case models.KindRisk:
		return "Risk Management"
	case models.KindCompliance:
		return "Compliance Management"
	case models.KindAudit:
		return "Audit Management"
	case models.KindIncident:
		return "Incident Management"
	case models.KindPolicy:
		return "Policy Management"
	}
	return ""
}

// BindingSource is the slice of the store the gate needs.
type BindingSource interface {
	FindRoleBinding(ctx context.Context, org, userID primitive.ObjectID) (*models.RoleBinding, error)
}

// RoleGate evaluates event visibility. Any failure during evaluation
// denies visibility.
type RoleGate struct {
	bindings BindingSource
}

func NewRoleGate(bindings BindingSource) *RoleGate {
	return &RoleGate{bindings: bindings}
}

// CanViewEvent reports whether the scoped user may see the event.
// Fails closed: missing binding, cross-tenant event, or lookup errors
// all deny.
func (g *RoleGate) CanViewEvent(ctx context.Context, scope Scope, ev *models.Event) bool {
	if ev.OrganizationID != scope.OrgID {
		return false
	}

	binding, err := g.bindings.FindRoleBinding(ctx, scope.OrgID, scope.UserID)
	if err != nil || binding == nil {
		return false
	}

	if binding.ViewAllEvents || privilegedRoles[binding.Role] {
		return true
	}

	if family, known := kindRoles[ev.LinkedRecordType]; known {
		return family[binding.Role]
	}

	// Unknown linked-record types fall through to module filtering.
	module := ModuleFor(ev.LinkedRecordType)
	if module == "" {
		module = ev.Category
	}
	if module == "" {
		log.Debug().Str("eventId", ev.EventID).Msg("role gate: no module derivable, denying")
		return false
	}
	for _, accessible := range binding.AccessibleModules {
		if accessible == module {
			return true
		}
	}
	return false
}

// FilterEvents returns the subset of events visible to the scope,
// preserving order.
func (g *RoleGate) FilterEvents(ctx context.Context, scope Scope, events []models.Event) []models.Event {
	visible := make([]models.Event, 0, len(events))
	for i := range events {
		if g.CanViewEvent(ctx, scope, &events[i]) {
			visible = append(visible, events[i])
		}
	}
	return visible
}
