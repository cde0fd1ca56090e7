// handlers/event_handler.go
package handlers

import (
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"grc/access"
	"grc/models"
	"grc/utils"
)

type eventResponse struct {
	EventID          string     `json:"event_id"`
	EventTitle       string     `json:"event_title"`
	Description      string     `json:"description,omitempty"`
	LinkedRecordType string     `json:"linked_record_type"`
	LinkedRecordID   string     `json:"linked_record_id"`
	LinkedRecordName string     `json:"linked_record_name,omitempty"`
	Priority         string     `json:"priority"`
	Status           string     `json:"status"`
	StartDate        time.Time  `json:"start_date"`
	EndDate          time.Time  `json:"end_date"`
	Owner            string     `json:"owner,omitempty"`
	Reviewer         string     `json:"reviewer,omitempty"`
	Framework        string     `json:"framework,omitempty"`
	Module           string     `json:"module"`
	CreatedAt        time.Time  `json:"created_at"`
}

// ListEvents returns the caller's visible events, newest first. The
// kinds query parameter narrows the record families; default is all.
func ListEvents(w http.ResponseWriter, r *http.Request) {
	scope, err := access.FromContext(r.Context())
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	kinds := models.KnownKinds
	if raw := r.URL.Query().Get("kinds"); raw != "" {
		kinds = nil
		for _, k := range strings.Split(raw, ",") {
			k = strings.TrimSpace(k)
			if models.IsKnownKind(k) {
				kinds = append(kinds, k)
			}
		}
		if len(kinds) == 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "no known kinds requested")
			return
		}
	}

	all, err := st.ListEventsByKinds(r.Context(), scope.OrgID, kinds)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	visible := gate.FilterEvents(r.Context(), scope, all)

	results := make([]eventResponse, 0, len(visible))
	for i := range visible {
		results = append(results, toEventResponse(&visible[i]))
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"events":      results,
		"total_count": len(results),
	})
}

func toEventResponse(ev *models.Event) eventResponse {
	hex := func(id *primitive.ObjectID) string {
		if id == nil || id.IsZero() {
			return ""
		}
		return id.Hex()
	}
	return eventResponse{
		EventID:          ev.EventID,
		EventTitle:       ev.Title,
		Description:      ev.Description,
		LinkedRecordType: ev.LinkedRecordType,
		LinkedRecordID:   ev.LinkedRecordID.Hex(),
		LinkedRecordName: ev.LinkedRecordName,
		Priority:         ev.Priority,
		Status:           ev.Status,
		StartDate:        ev.StartDate,
		EndDate:          ev.EndDate,
		Owner:            hex(ev.OwnerID),
		Reviewer:         hex(ev.ReviewerID),
		Framework:        ev.Category,
		Module:           access.ModuleFor(ev.LinkedRecordType),
		CreatedAt:        ev.CreatedAt,
	}
}
