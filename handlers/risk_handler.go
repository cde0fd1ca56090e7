// handlers/risk_handler.go
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"grc/access"
	"grc/apperr"
	"grc/models"
	"grc/utils"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListRisks returns the tenant's risks with optional entity/data/row
// filters and a pagination envelope.
func ListRisks(w http.ResponseWriter, r *http.Request) {
	scope, err := access.FromContext(r.Context())
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	q := r.URL.Query()
	filter := models.RiskFilter{
		Entity: q.Get("entity"),
		Data:   q.Get("data"),
		Row:    q.Get("row"),
	}

	page := parsePositive(q.Get("page"), 1)
	pageSize := parsePositive(q.Get("page_size"), defaultPageSize)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	total, err := st.CountRisks(r.Context(), scope.OrgID, filter)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	risks, err := st.ListRisks(r.Context(), scope.OrgID, filter, page, pageSize)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"results":      risks,
		"count":        total,
		"page":         page,
		"page_size":    pageSize,
		"total_pages":  totalPages,
		"has_next":     page < totalPages,
		"has_previous": page > 1,
	})
}

func parsePositive(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}

type generateRequest struct {
	Entity     string `json:"entity,omitempty"`
	Table      string `json:"table,omitempty"`
	RowID      string `json:"row_id,omitempty"`
	ApprovalID string `json:"approval_id,omitempty"`
}

type generationResult struct {
	RisksCreated int      `json:"risks_created"`
	RiskIDs      []string `json:"risk_ids"`
}

// GenerateRisks submits a background synthesis job for a row selection,
// given either directly or through a previously created approval.
func GenerateRisks(w http.ResponseWriter, r *http.Request) {
	scope, err := access.FromContext(r.Context())
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	var req generateRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	var entity, table, row, key string
	switch {
	case req.ApprovalID != "":
		ar, err := st.FindApprovalRequest(r.Context(), req.ApprovalID)
		if err != nil {
			utils.RespondWithAppError(w, err)
			return
		}
		if ar.OrganizationID != scope.OrgID {
			utils.RespondWithAppError(w, apperr.CrossTenant("approval belongs to another organization"))
			return
		}
		entity, table, row = ar.Entity, ar.Table, ar.Row
		key = fmt.Sprintf("%s:%s", scope.OrgID.Hex(), ar.ApprovalID)
	case req.Entity != "" && req.Table != "" && req.RowID != "":
		rowRec, err := st.FindEntityRowAny(r.Context(), req.Entity, req.Table, req.RowID)
		if err != nil {
			utils.RespondWithAppError(w, err)
			return
		}
		if rowRec.OrganizationID != scope.OrgID {
			utils.RespondWithAppError(w, apperr.CrossTenant("row belongs to another organization"))
			return
		}
		entity, table, row = req.Entity, req.Table, req.RowID
		key = fmt.Sprintf("%s:%s:%s:%s", scope.OrgID.Hex(), entity, table, row)
	default:
		utils.RespondWithError(w, http.StatusBadRequest, "either approval_id or entity, table and row_id are required")
		return
	}

	org := scope.OrgID
	approvalID := req.ApprovalID
	started := jobs.Submit(key, func(ctx context.Context) (interface{}, error) {
		if approvalID != "" {
			if err := st.UpdateApprovalStatus(ctx, org, approvalID, "processing"); err != nil {
				log.Warn().Err(err).Str("approvalId", approvalID).Msg("approval status update failed")
			}
		}
		risks, err := synthesizer.Generate(ctx, org, entity, table, row)
		if approvalID != "" {
			final := "completed"
			if err != nil {
				final = "failed"
			}
			if uerr := st.UpdateApprovalStatus(ctx, org, approvalID, final); uerr != nil {
				log.Warn().Err(uerr).Str("approvalId", approvalID).Msg("approval status update failed")
			}
		}
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(risks))
		for _, rk := range risks {
			ids = append(ids, rk.RiskID)
		}
		return generationResult{RisksCreated: len(risks), RiskIDs: ids}, nil
	})

	status := "started"
	if !started {
		status = "already_running"
	}
	log.Info().
		Str("tenant", org.Hex()).
		Str("entity", entity).
		Str("table", table).
		Str("row", row).
		Str("status", status).
		Msg("risk generation submitted")

	utils.RespondWithJSON(w, http.StatusAccepted, map[string]string{
		"status": status,
		"key":    key,
	})
}

// GetGenerationStatus reports a submitted job's state by key. Keys are
// prefixed with the owning tenant, so a key from another organization
// resolves the same as an unknown one.
func GetGenerationStatus(w http.ResponseWriter, r *http.Request) {
	scope, err := access.FromContext(r.Context())
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	key := mux.Vars(r)["key"]
	if !strings.HasPrefix(key, scope.OrgID.Hex()+":") {
		utils.RespondWithError(w, http.StatusNotFound, "unknown generation key")
		return
	}
	status, ok := jobs.Status(key)
	if !ok {
		utils.RespondWithError(w, http.StatusNotFound, "unknown generation key")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, status)
}
