// ai/synthesizer.go
package ai

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"grc/apperr"
	"grc/metrics"
	"grc/models"
	"grc/store"
)

// Synthesizer composes prompt building, completion, parsing, scoring,
// and persistence into one risk-generation pipeline.
type Synthesizer struct {
	store     store.Store
	completer Completer
	timeout   time.Duration
}

func NewSynthesizer(st store.Store, completer Completer, timeout time.Duration) *Synthesizer {
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &Synthesizer{store: st, completer: completer, timeout: timeout}
}

// Generate runs the pipeline for one selection and returns the created
// risks in model-output order. Completer failure selects the fallback
// generator; only errors after that point surface.
func (s *Synthesizer) Generate(ctx context.Context, org primitive.ObjectID, entity, table, row string) ([]models.Risk, error) {
	rlog := log.With().
		Str("tenant", org.Hex()).
		Str("entity", entity).
		Str("table", table).
		Str("row", row).
		Logger()

	record, err := s.store.FindEntityRow(ctx, org, entity, table, row)
	if err != nil {
		return nil, err
	}

	parsed, mode := s.analyze(ctx, record, entity, table, &rlog)
	if len(parsed) == 0 {
		rlog.Warn().Msg("analysis produced no risks, using fallback set")
		parsed = FallbackRisks(record)
		mode = "fallback"
	}

	created, err := s.persist(ctx, org, entity, table, row, parsed)
	if err != nil {
		return nil, err
	}

	metrics.RisksGenerated.WithLabelValues(mode).Add(float64(len(created)))
	rlog.Info().Int("risks", len(created)).Str("mode", mode).Msg("risk generation finished")
	return created, nil
}

func (s *Synthesizer) analyze(ctx context.Context, record *models.EntityRow, entity, table string, rlog *zerolog.Logger) ([]ParsedRisk, string) {
	prompt := BuildPrompt(entity, table, normalizeFields(record.Fields))

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	output, err := s.completer.Complete(cctx, prompt)
	if err != nil || output == "" {
		if err != nil {
			rlog.Warn().Err(err).Msg("completer unavailable, falling back to deterministic risks")
		}
		return FallbackRisks(record), "fallback"
	}
	return ParseRisks(output), "ai"
}

func (s *Synthesizer) persist(ctx context.Context, org primitive.ObjectID, entity, table, row string, parsed []ParsedRisk) ([]models.Risk, error) {
	now := time.Now().UTC()
	created := make([]models.Risk, 0, len(parsed))

	for _, p := range parsed {
		riskID, err := s.store.AllocateRiskID(ctx, org)
		if err != nil {
			return nil, err
		}

		risk := models.Risk{
			RiskID:         riskID,
			OrganizationID: org,
			Title:          truncateTitle(p.Title, 255),
			Description:    p.Description,
			Likelihood:     p.Likelihood,
			Impact:         p.Impact,
			ExposureRating: p.Exposure,
			Score:          Score(p.Likelihood, p.Impact, p.Exposure),
			Status:         "Open",
			RiskType:       "Current",
			AIExplanation:  p.Explanation,
			Mitigations:    p.Mitigations,
			Entity:         entity,
			Data:           table,
			Row:            row,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		risk.Priority = PriorityFor(risk.Score)

		if err := s.store.InsertRisk(ctx, org, &risk); err != nil {
			return nil, apperr.Internal("persist generated risk", err)
		}
		created = append(created, risk)
	}

	if err := s.store.InsertAuditLog(ctx, org, &models.AuditLog{
		Action:     "generate_risks",
		EntityType: entity,
		EntityID:   row,
		Details:    bson.M{"table": table, "count": len(created)},
	}); err != nil {
		log.Warn().Err(err).Str("tenant", org.Hex()).Msg("audit log write failed")
	}
	return created, nil
}

// normalizeFields converts dates and decimals in a raw row into
// JSON-friendly primitives for the prompt.
func normalizeFields(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.UTC().Format(time.RFC3339)
	case primitive.DateTime:
		return t.Time().UTC().Format(time.RFC3339)
	case primitive.Decimal128:
		return t.String()
	case primitive.ObjectID:
		return t.Hex()
	case map[string]interface{}:
		return normalizeFields(t)
	case bson.M:
		return normalizeFields(map[string]interface{}(t))
	case []interface{}:
		normalized := make([]interface{}, len(t))
		for i, item := range t {
			normalized[i] = normalizeValue(item)
		}
		return normalized
	default:
		return v
	}
}
