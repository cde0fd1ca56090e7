// ai/fallback.go
package ai

import (
	"fmt"

	"grc/models"
)

// FallbackRisks emits a deterministic risk set from the row's flags,
// used whenever the completer is unusable. Vendor-style flag keys are
// read from the raw row; rows without any flag still yield the generic
// management risk, so the result always has 1..5 entries.
func FallbackRisks(row *models.EntityRow) []ParsedRisk {
	var risks []ParsedRisk

	if row.Flag("has_data_access") {
		risks = append(risks, ParsedRisk{
			Title:       "Data Access Security Risk",
			Description: "The vendor has access to organizational data, exposing it to leakage or misuse.",
			Likelihood:  3,
			Impact:      4,
			Exposure:    3,
			Explanation: "Vendor data access widens the breach surface beyond organizational controls.",
			Mitigations: []string{
				"Enforce least-privilege data access for the vendor",
				"Require encryption for data at rest and in transit",
				"Review vendor access logs quarterly",
			},
		})
	}

	if row.Flag("has_system_access") {
		risks = append(risks, ParsedRisk{
			Title:       "System Integration Risk",
			Description: "The vendor integrates with internal systems, creating a lateral-movement path.",
			Likelihood:  2,
			Impact:      4,
			Exposure:    3,
			Explanation: "System-level integration can propagate vendor compromise into internal infrastructure.",
			Mitigations: []string{
				"Segment vendor-facing systems from the core network",
				"Rotate integration credentials on a fixed schedule",
				"Monitor integration endpoints for anomalous traffic",
			},
		})
	}

	if row.Flag("is_critical_vendor") {
		risks = append(risks, ParsedRisk{
			Title:       "Critical Vendor Dependency Risk",
			Description: "Operations depend on this vendor; an outage or exit would disrupt core services.",
			Likelihood:  2,
			Impact:      5,
			Exposure:    4,
			Explanation: "Critical-vendor concentration leaves no immediate substitute for essential services.",
			Mitigations: []string{
				"Maintain a tested exit and transition plan",
				"Identify and qualify alternate suppliers",
				"Add continuity obligations to the contract",
			},
		})
	}

	if sector := row.Text("industry_sector"); sector != "" {
		risks = append(risks, ParsedRisk{
			Title:       fmt.Sprintf("%s Industry Risk", sector),
			Description: fmt.Sprintf("The vendor operates in the %s sector, which carries sector-specific regulatory and operational exposure.", sector),
			Likelihood:  3,
			Impact:      3,
			Exposure:    3,
			Explanation: fmt.Sprintf("Sector-specific obligations in %s flow down to the engaging organization.", sector),
			Mitigations: []string{
				"Map sector regulations applicable to the engagement",
				"Verify the vendor's sector certifications annually",
				"Include regulatory-change notification clauses",
			},
		})
	}

	risks = append(risks, ParsedRisk{
		Title:       "General Vendor Management Risk",
		Description: "Baseline third-party exposure from relying on an external organization.",
		Likelihood:  3,
		Impact:      3,
		Exposure:    3,
		Explanation: "Every vendor relationship carries residual performance and compliance risk.",
		Mitigations: []string{
			"Review vendor performance against the SLA quarterly",
			"Keep vendor contact and escalation paths current",
			"Reassess the vendor's risk profile annually",
		},
	})

	if len(risks) > 5 {
		risks = risks[:5]
	}
	return risks
}
