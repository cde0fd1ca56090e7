// ai/prompt.go
package ai

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Heuristic bodies per (entity, table) family. Unknown selections use
// the generic default.
var promptHeuristics = map[string]string{
	"vendor_management/temp_vendor": `Focus on third-party exposure:
- Data access and data residency obligations
- System/network integration surface
- Vendor criticality and concentration risk
- Financial viability and contract terms
- Industry- and geography-specific regulation`,
	"bcp_dr/plans": `Focus on continuity readiness:
- Plan age, last review and last test dates
- RTO/RPO feasibility against stated dependencies
- Alternate-site and personnel coverage
- Upstream vendor dependencies in recovery paths`,
	"audit_management/audits": `Focus on audit posture:
- Open findings and their aging
- Control coverage gaps against the stated framework
- Evidence completeness and reviewer backlog`,
	"compliance_management/compliance_items": `Focus on compliance posture:
- Mapping of the item to its framework clause
- Review cadence versus the item's age
- Ownership and escalation paths`,
	"contract_management/contracts": `Focus on contractual exposure:
- Renewal and termination windows
- SLA commitments versus observed performance
- Liability caps and indemnification scope`,
}

const genericHeuristic = `Assess the record for operational, compliance,
financial, and reputational exposure. Weigh recency of review, ownership
clarity, and any stated deadlines.`

// BuildPrompt renders the completion prompt for a selection: today's
// date, the serialized row, the heuristic body, and the rigid output
// schema the parser expects.
func BuildPrompt(entity, table string, row map[string]interface{}) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a GRC risk analyst. Today's date is %s.\n\n",
		time.Now().UTC().Format("2006-01-02"))
	fmt.Fprintf(&b, "Analyze the following %s record from %s and identify 2 to 5 concrete risks.\n\n", entity, table)

	b.WriteString("RECORD:\n")
	if data, err := json.MarshalIndent(row, "", "  "); err == nil {
		b.Write(data)
	} else {
		fmt.Fprintf(&b, "%v", row)
	}
	b.WriteString("\n\n")

	heuristic, ok := promptHeuristics[entity+"/"+table]
	if !ok {
		heuristic = genericHeuristic
	}
	b.WriteString(heuristic)
	b.WriteString("\n\n")

	b.WriteString(`Respond with one block per risk, exactly in this format:

RISK 1:
TITLE: <short title>
DESCRIPTION: <one or two sentences>
LIKELIHOOD: <integer 1-5>
IMPACT: <integer 1-5>
EXPOSURE: <integer 1-5>
EXPLANATION: <why this risk applies to this record>
MITIGATIONS:
- <mitigation>
- <mitigation>
`)
	return b.String()
}
