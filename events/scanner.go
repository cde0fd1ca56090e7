// events/scanner.go
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"grc/models"
	"grc/store"
)

// Scanner sweep horizons.
const (
	escalationWindowDays = 7
	staleComplianceDays  = 90
)

// ScanResult counts the events each sweep produced for one tenant.
type ScanResult struct {
	Overdue         int `json:"overdue"`
	Escalated       int `json:"escalated"`
	StaleCompliance int `json:"stale_compliance"`
}

func (r ScanResult) Total() int {
	return r.Overdue + r.Escalated + r.StaleCompliance
}

// Scanner runs the three periodic condition sweeps: overdue mitigations,
// recent high-priority unassigned risks, and compliance items stuck in
// review. It reuses the engine's create path, so every sweep is
// deduplicated against the events an earlier sweep already raised.
type Scanner struct {
	st     store.Store
	engine *Engine
	Now    func() time.Time
}

func NewScanner(st store.Store, engine *Engine) *Scanner {
	return &Scanner{st: st, engine: engine, Now: time.Now}
}

// Run executes all sweeps for a single tenant. A failing sweep is
// logged and the remaining sweeps still run.
func (s *Scanner) Run(ctx context.Context, org primitive.ObjectID) (ScanResult, error) {
	var res ScanResult
	now := s.Now()

	overdue, err := s.sweepOverdue(ctx, org, now)
	res.Overdue = overdue
	if err != nil {
		log.Error().Err(err).Str("tenant", org.Hex()).Msg("overdue mitigation sweep failed")
	}

	escalated, err2 := s.sweepUnassigned(ctx, org, now)
	res.Escalated = escalated
	if err2 != nil {
		log.Error().Err(err2).Str("tenant", org.Hex()).Msg("unassigned risk sweep failed")
		if err == nil {
			err = err2
		}
	}

	stale, err3 := s.sweepStaleCompliance(ctx, org, now)
	res.StaleCompliance = stale
	if err3 != nil {
		log.Error().Err(err3).Str("tenant", org.Hex()).Msg("stale compliance sweep failed")
		if err == nil {
			err = err3
		}
	}

	log.Info().
		Str("tenant", org.Hex()).
		Int("overdue", res.Overdue).
		Int("escalated", res.Escalated).
		Int("staleCompliance", res.StaleCompliance).
		Msg("trigger scan complete")
	return res, err
}

// RunAll sweeps every tenant the store knows about.
func (s *Scanner) RunAll(ctx context.Context) (map[string]ScanResult, error) {
	tenants, err := s.st.ListTenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tenants: %w", err)
	}
	results := make(map[string]ScanResult, len(tenants))
	for _, org := range tenants {
		res, err := s.Run(ctx, org)
		if err != nil {
			log.Error().Err(err).Str("tenant", org.Hex()).Msg("tenant scan finished with errors")
		}
		results[org.Hex()] = res
	}
	return results, nil
}

func (s *Scanner) sweepOverdue(ctx context.Context, org primitive.ObjectID, now time.Time) (int, error) {
	recs, err := s.st.ListOverdueRisks(ctx, org, now)
	if err != nil {
		return 0, err
	}
	return s.fire(ctx, recs, TriggerMitigationOverdue), nil
}

func (s *Scanner) sweepUnassigned(ctx context.Context, org primitive.ObjectID, now time.Time) (int, error) {
	recs, err := s.st.ListHighPriorityUnassignedRisks(ctx, org, now, escalationWindowDays)
	if err != nil {
		return 0, err
	}
	return s.fire(ctx, recs, TriggerRiskEscalated), nil
}

func (s *Scanner) sweepStaleCompliance(ctx context.Context, org primitive.ObjectID, now time.Time) (int, error) {
	recs, err := s.st.ListStaleCompliance(ctx, org, now, staleComplianceDays)
	if err != nil {
		return 0, err
	}
	return s.fire(ctx, recs, TriggerComplianceReviewRequired), nil
}

func (s *Scanner) fire(ctx context.Context, recs []models.SourceRecord, trigger Trigger) int {
	created := 0
	for i := range recs {
		ev, err := s.engine.Create(ctx, &recs[i], trigger)
		if err != nil {
			log.Error().Err(err).
				Str("record", recs[i].ID.Hex()).
				Str("trigger", string(trigger)).
				Msg("scan event creation failed")
			continue
		}
		if ev != nil {
			created++
		}
	}
	return created
}
