// handlers/approval_handler.go
package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"grc/access"
	"grc/models"
	"grc/utils"
)

type approvalRequestBody struct {
	Entity string `json:"entity"`
	Table  string `json:"table"`
	RowID  string `json:"row_id"`
}

// CreateRiskGenerationApproval records an approved row selection and
// hands back the opaque id risk generation accepts later.
func CreateRiskGenerationApproval(w http.ResponseWriter, r *http.Request) {
	scope, err := access.FromContext(r.Context())
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	var body approvalRequestBody
	if err := utils.ParseJSON(r, &body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if body.Entity == "" || body.Table == "" || body.RowID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "entity, table and row_id are required")
		return
	}

	now := time.Now().UTC()
	ar := &models.ApprovalRequest{
		ApprovalID:     uuid.NewString(),
		OrganizationID: scope.OrgID,
		Entity:         body.Entity,
		Table:          body.Table,
		Row:            body.RowID,
		SubmittedBy:    scope.UserID,
		SubmittedAt:    now,
		Status:         "pending",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := st.InsertApprovalRequest(r.Context(), scope.OrgID, ar); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, map[string]string{
		"approval_id": ar.ApprovalID,
		"status":      ar.Status,
	})
}
