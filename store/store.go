// Package store is the persistence boundary of the core. Every query
// takes the tenant id as its first argument; adapters reject zero
// tenants so a missing scope fails before it can leak data.
package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"grc/apperr"
	"grc/models"
)

// Mitigation statuses a risk instance counts as unfinished under.
const (
	MitigationYetToStart = "Yet to Start"
	MitigationInProgress = "Work In Progress"
	MitigationCompleted  = "Completed"
)

// Querier is the tenant-scoped query surface shared by the store and
// its transactions.
type Querier interface {
	FindSource(ctx context.Context, org primitive.ObjectID, kind string, id primitive.ObjectID) (*models.SourceRecord, error)
	InsertSource(ctx context.Context, org primitive.ObjectID, rec *models.SourceRecord) error

	FindEntityRow(ctx context.Context, org primitive.ObjectID, entity, table, row string) (*models.EntityRow, error)
	// FindEntityRowAny resolves a row without a tenant filter. Callers
	// compare the row's tenant to the request scope and refuse
	// mismatches as cross-tenant; this is the only unscoped row read.
	FindEntityRowAny(ctx context.Context, entity, table, row string) (*models.EntityRow, error)
	InsertEntityRow(ctx context.Context, org primitive.ObjectID, rec *models.EntityRow) error

	InsertEvent(ctx context.Context, org primitive.ObjectID, ev *models.Event) error
	UpdateEvent(ctx context.Context, org primitive.ObjectID, ev *models.Event) error
	// FindOpenEvent returns an event of the given linkage whose title
	// contains titleHint (case-insensitive) and whose status is still
	// open, or nil when none exists. This is the sole dedup key.
	FindOpenEvent(ctx context.Context, org primitive.ObjectID, kind string, recordID primitive.ObjectID, titleHint string) (*models.Event, error)
	ListEventsByKinds(ctx context.Context, org primitive.ObjectID, kinds []string) ([]models.Event, error)

	InsertRisk(ctx context.Context, org primitive.ObjectID, risk *models.Risk) error
	ListRisks(ctx context.Context, org primitive.ObjectID, f models.RiskFilter, page, pageSize int) ([]models.Risk, error)
	CountRisks(ctx context.Context, org primitive.ObjectID, f models.RiskFilter) (int64, error)
	// AllocateRiskID atomically claims the next R-#### id for the
	// tenant. The counter starts at max(existing, 999) + 1, never hands
	// the same id to two callers, and is gap tolerant: ids claimed by
	// failed generations are simply skipped.
	AllocateRiskID(ctx context.Context, org primitive.ObjectID) (string, error)

	ListOverdueRisks(ctx context.Context, org primitive.ObjectID, now time.Time) ([]models.SourceRecord, error)
	ListHighPriorityUnassignedRisks(ctx context.Context, org primitive.ObjectID, now time.Time, withinDays int) ([]models.SourceRecord, error)
	ListStaleCompliance(ctx context.Context, org primitive.ObjectID, now time.Time, ageDays int) ([]models.SourceRecord, error)

	FindUser(ctx context.Context, org primitive.ObjectID, id primitive.ObjectID) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	InsertUser(ctx context.Context, org primitive.ObjectID, u *models.User) error
	FindRoleBinding(ctx context.Context, org primitive.ObjectID, userID primitive.ObjectID) (*models.RoleBinding, error)
	InsertRoleBinding(ctx context.Context, org primitive.ObjectID, rb *models.RoleBinding) error

	// FindApprovalRequest resolves an opaque approval id. It is not
	// tenant filtered; the caller compares tenants and fails the
	// request with a cross-tenant error on mismatch.
	FindApprovalRequest(ctx context.Context, approvalID string) (*models.ApprovalRequest, error)
	InsertApprovalRequest(ctx context.Context, org primitive.ObjectID, ar *models.ApprovalRequest) error
	UpdateApprovalStatus(ctx context.Context, org primitive.ObjectID, approvalID, status string) error

	InsertAuditLog(ctx context.Context, org primitive.ObjectID, entry *models.AuditLog) error

	// ListTenants enumerates organization ids for the periodic scanner.
	ListTenants(ctx context.Context) ([]primitive.ObjectID, error)
}

// Tx adds commit-hook registration to the query surface. Hooks run only
// after the transaction commits; an aborted transaction discards them.
// The hook is the sole bridge between source-record mutations and event
// side effects.
type Tx interface {
	Querier
	OnCommit(fn func(ctx context.Context))
}

// Store is the full persistence interface handed to the core.
type Store interface {
	Querier
	RunTx(ctx context.Context, fn func(tx Tx) error) error
	Ping(ctx context.Context) error
}

func guardTenant(org primitive.ObjectID) error {
	if org.IsZero() {
		return apperr.MissingTenant("store: query without tenant scope")
	}
	return nil
}
