// store/memory.go
package store

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"grc/apperr"
	"grc/models"
)

// Memory is an in-process Store used by tests and local development.
// Transactions stage their writes and apply them only when the
// transaction function succeeds, which gives the same commit-hook
// ordering the Mongo adapter guarantees.
type Memory struct {
	mu        sync.RWMutex
	sources   []*models.SourceRecord
	rows      []*models.EntityRow
	events    []*models.Event
	risks     []*models.Risk
	users     []*models.User
	bindings  []*models.RoleBinding
	approvals []*models.ApprovalRequest
	audits    []*models.AuditLog
	riskSeq   map[primitive.ObjectID]int
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Ping(ctx context.Context) error { return nil }

// memTx stages inserts and deferred updates; queries see staged writes
// before committed state (read-your-writes).
type memTx struct {
	m *Memory

	sources   []*models.SourceRecord
	rows      []*models.EntityRow
	events    []*models.Event
	risks     []*models.Risk
	users     []*models.User
	bindings  []*models.RoleBinding
	approvals []*models.ApprovalRequest
	audits    []*models.AuditLog

	updates []func()
	hooks   []func(ctx context.Context)
}

func (t *memTx) OnCommit(fn func(ctx context.Context)) {
	t.hooks = append(t.hooks, fn)
}

func (m *Memory) RunTx(ctx context.Context, fn func(tx Tx) error) error {
	tx := &memTx{m: m}
	if err := fn(tx); err != nil {
		return err
	}

	m.mu.Lock()
	m.sources = append(m.sources, tx.sources...)
	m.rows = append(m.rows, tx.rows...)
	m.events = append(m.events, tx.events...)
	m.risks = append(m.risks, tx.risks...)
	m.users = append(m.users, tx.users...)
	m.bindings = append(m.bindings, tx.bindings...)
	m.approvals = append(m.approvals, tx.approvals...)
	m.audits = append(m.audits, tx.audits...)
	for _, apply := range tx.updates {
		apply()
	}
	m.mu.Unlock()

	for _, hook := range tx.hooks {
		hook(ctx)
	}
	return nil
}

// ---- source records ----

func (m *Memory) FindSource(ctx context.Context, org primitive.ObjectID, kind string, id primitive.ObjectID) (*models.SourceRecord, error) {
	if err := guardTenant(org); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return findSourceIn(m.sources, org, kind, id)
}

func (t *memTx) FindSource(ctx context.Context, org primitive.ObjectID, kind string, id primitive.ObjectID) (*models.SourceRecord, error) {
	if err := guardTenant(org); err != nil {
		return nil, err
	}
	if rec, err := findSourceIn(t.sources, org, kind, id); err == nil {
		return rec, nil
	}
	t.m.mu.RLock()
	defer t.m.mu.RUnlock()
	return findSourceIn(t.m.sources, org, kind, id)
}

func findSourceIn(recs []*models.SourceRecord, org primitive.ObjectID, kind string, id primitive.ObjectID) (*models.SourceRecord, error) {
	for _, r := range recs {
		if r.OrganizationID == org && r.Kind == kind && r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, apperr.Newf(apperr.KindNotFound, "source record %s/%s not found", kind, id.Hex())
}

func prepareSource(org primitive.ObjectID, rec *models.SourceRecord) {
	rec.OrganizationID = org
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
}

func (m *Memory) InsertSource(ctx context.Context, org primitive.ObjectID, rec *models.SourceRecord) error {
	if err := guardTenant(org); err != nil {
		return err
	}
	prepareSource(org, rec)
	cp := *rec
	m.mu.Lock()
	m.sources = append(m.sources, &cp)
	m.mu.Unlock()
	return nil
}

func (t *memTx) InsertSource(ctx context.Context, org primitive.ObjectID, rec *models.SourceRecord) error {
	if err := guardTenant(org); err != nil {
		return err
	}
	prepareSource(org, rec)
	cp := *rec
	t.sources = append(t.sources, &cp)
	return nil
}

// ---- entity rows ----

func (m *Memory) FindEntityRow(ctx context.Context, org primitive.ObjectID, entity, table, row string) (*models.EntityRow, error) {
	if err := guardTenant(org); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return findRowIn(m.rows, org, entity, table, row)
}

func (t *memTx) FindEntityRow(ctx context.Context, org primitive.ObjectID, entity, table, row string) (*models.EntityRow, error) {
	if err := guardTenant(org); err != nil {
		return nil, err
	}
	if rec, err := findRowIn(t.rows, org, entity, table, row); err == nil {
		return rec, nil
	}
	t.m.mu.RLock()
	defer t.m.mu.RUnlock()
	return findRowIn(t.m.rows, org, entity, table, row)
}

func (m *Memory) FindEntityRowAny(ctx context.Context, entity, table, row string) (*models.EntityRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rows {
		if r.Entity == entity && r.Table == table && r.ID.Hex() == row {
			cp := *r
			return &cp, nil
		}
	}
	return nil, apperr.Newf(apperr.KindNotFound, "row %s/%s/%s not found", entity, table, row)
}

func (t *memTx) FindEntityRowAny(ctx context.Context, entity, table, row string) (*models.EntityRow, error) {
	for _, r := range t.rows {
		if r.Entity == entity && r.Table == table && r.ID.Hex() == row {
			cp := *r
			return &cp, nil
		}
	}
	return t.m.FindEntityRowAny(ctx, entity, table, row)
}

func findRowIn(rows []*models.EntityRow, org primitive.ObjectID, entity, table, row string) (*models.EntityRow, error) {
	for _, r := range rows {
		if r.OrganizationID == org && r.Entity == entity && r.Table == table && r.ID.Hex() == row {
			cp := *r
			return &cp, nil
		}
	}
	return nil, apperr.Newf(apperr.KindNotFound, "row %s/%s/%s not found", entity, table, row)
}

func prepareRow(org primitive.ObjectID, rec *models.EntityRow) {
	rec.OrganizationID = org
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
}

func (m *Memory) InsertEntityRow(ctx context.Context, org primitive.ObjectID, rec *models.EntityRow) error {
	if err := guardTenant(org); err != nil {
		return err
	}
	prepareRow(org, rec)
	cp := *rec
	m.mu.Lock()
	m.rows = append(m.rows, &cp)
	m.mu.Unlock()
	return nil
}

func (t *memTx) InsertEntityRow(ctx context.Context, org primitive.ObjectID, rec *models.EntityRow) error {
	if err := guardTenant(org); err != nil {
		return err
	}
	prepareRow(org, rec)
	cp := *rec
	t.rows = append(t.rows, &cp)
	return nil
}

// ---- events ----

func prepareEvent(org primitive.ObjectID, ev *models.Event) error {
	if ev.OrganizationID != org {
		return apperr.CrossTenant("event tenant does not match scope")
	}
	if ev.ID.IsZero() {
		ev.ID = primitive.NewObjectID()
	}
	return nil
}

func (m *Memory) InsertEvent(ctx context.Context, org primitive.ObjectID, ev *models.Event) error {
	if err := guardTenant(org); err != nil {
		return err
	}
	if err := prepareEvent(org, ev); err != nil {
		return err
	}
	cp := *ev
	m.mu.Lock()
	m.events = append(m.events, &cp)
	m.mu.Unlock()
	return nil
}

func (t *memTx) InsertEvent(ctx context.Context, org primitive.ObjectID, ev *models.Event) error {
	if err := guardTenant(org); err != nil {
		return err
	}
	if err := prepareEvent(org, ev); err != nil {
		return err
	}
	cp := *ev
	t.events = append(t.events, &cp)
	return nil
}

func (m *Memory) UpdateEvent(ctx context.Context, org primitive.ObjectID, ev *models.Event) error {
	if err := guardTenant(org); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.events {
		if existing.OrganizationID == org && existing.ID == ev.ID {
			cp := *ev
			cp.UpdatedAt = time.Now().UTC()
			m.events[i] = &cp
			return nil
		}
	}
	return apperr.NotFound("event not found")
}

func (t *memTx) UpdateEvent(ctx context.Context, org primitive.ObjectID, ev *models.Event) error {
	if err := guardTenant(org); err != nil {
		return err
	}
	cp := *ev
	t.updates = append(t.updates, func() {
		for i, existing := range t.m.events {
			if existing.OrganizationID == org && existing.ID == cp.ID {
				cp.UpdatedAt = time.Now().UTC()
				t.m.events[i] = &cp
				return
			}
		}
	})
	return nil
}

func matchOpenEvent(ev *models.Event, org primitive.ObjectID, kind string, recordID primitive.ObjectID, titleHint string) bool {
	return ev.OrganizationID == org &&
		ev.LinkedRecordType == kind &&
		ev.LinkedRecordID == recordID &&
		ev.Open() &&
		strings.Contains(strings.ToLower(ev.Title), strings.ToLower(titleHint))
}

func (m *Memory) FindOpenEvent(ctx context.Context, org primitive.ObjectID, kind string, recordID primitive.ObjectID, titleHint string) (*models.Event, error) {
	if err := guardTenant(org); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ev := range m.events {
		if matchOpenEvent(ev, org, kind, recordID, titleHint) {
			cp := *ev
			return &cp, nil
		}
	}
	return nil, nil
}

func (t *memTx) FindOpenEvent(ctx context.Context, org primitive.ObjectID, kind string, recordID primitive.ObjectID, titleHint string) (*models.Event, error) {
	if err := guardTenant(org); err != nil {
		return nil, err
	}
	for _, ev := range t.events {
		if matchOpenEvent(ev, org, kind, recordID, titleHint) {
			cp := *ev
			return &cp, nil
		}
	}
	return t.m.FindOpenEvent(ctx, org, kind, recordID, titleHint)
}

func (m *Memory) ListEventsByKinds(ctx context.Context, org primitive.ObjectID, kinds []string) ([]models.Event, error) {
	if err := guardTenant(org); err != nil {
		return nil, err
	}
	wanted := map[string]bool{}
	for _, k := range kinds {
		wanted[k] = true
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Event
	for _, ev := range m.events {
		if ev.OrganizationID != org {
			continue
		}
		if len(kinds) > 0 && !wanted[ev.LinkedRecordType] {
			continue
		}
		out = append(out, *ev)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (t *memTx) ListEventsByKinds(ctx context.Context, org primitive.ObjectID, kinds []string) ([]models.Event, error) {
	return t.m.ListEventsByKinds(ctx, org, kinds)
}

// ---- risks ----

func prepareRisk(org primitive.ObjectID, r *models.Risk) error {
	if r.OrganizationID != org {
		return apperr.CrossTenant("risk tenant does not match scope")
	}
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	return nil
}

func (m *Memory) InsertRisk(ctx context.Context, org primitive.ObjectID, r *models.Risk) error {
	if err := guardTenant(org); err != nil {
		return err
	}
	if err := prepareRisk(org, r); err != nil {
		return err
	}
	cp := *r
	m.mu.Lock()
	m.risks = append(m.risks, &cp)
	m.mu.Unlock()
	return nil
}

func (t *memTx) InsertRisk(ctx context.Context, org primitive.ObjectID, r *models.Risk) error {
	if err := guardTenant(org); err != nil {
		return err
	}
	if err := prepareRisk(org, r); err != nil {
		return err
	}
	cp := *r
	t.risks = append(t.risks, &cp)
	return nil
}

func matchRisk(r *models.Risk, org primitive.ObjectID, f models.RiskFilter) bool {
	if r.OrganizationID != org {
		return false
	}
	if f.Entity != "" && r.Entity != f.Entity {
		return false
	}
	if f.Data != "" && r.Data != f.Data {
		return false
	}
	if f.Row != "" && r.Row != f.Row {
		return false
	}
	return true
}

func (m *Memory) ListRisks(ctx context.Context, org primitive.ObjectID, f models.RiskFilter, page, pageSize int) ([]models.Risk, error) {
	if err := guardTenant(org); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	m.mu.RLock()
	var all []models.Risk
	for _, r := range m.risks {
		if matchRisk(r, org, f) {
			all = append(all, *r)
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	start := (page - 1) * pageSize
	if start >= len(all) {
		return []models.Risk{}, nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (t *memTx) ListRisks(ctx context.Context, org primitive.ObjectID, f models.RiskFilter, page, pageSize int) ([]models.Risk, error) {
	return t.m.ListRisks(ctx, org, f, page, pageSize)
}

func (m *Memory) CountRisks(ctx context.Context, org primitive.ObjectID, f models.RiskFilter) (int64, error) {
	if err := guardTenant(org); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, r := range m.risks {
		if matchRisk(r, org, f) {
			n++
		}
	}
	return n, nil
}

func (t *memTx) CountRisks(ctx context.Context, org primitive.ObjectID, f models.RiskFilter) (int64, error) {
	return t.m.CountRisks(ctx, org, f)
}

var memRiskIDPattern = regexp.MustCompile(`^R-(\d+)$`)

func (m *Memory) AllocateRiskID(ctx context.Context, org primitive.ObjectID) (string, error) {
	if err := guardTenant(org); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allocateLocked(org, nil), nil
}

func (t *memTx) AllocateRiskID(ctx context.Context, org primitive.ObjectID) (string, error) {
	if err := guardTenant(org); err != nil {
		return "", err
	}
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	return t.m.allocateLocked(org, t.risks), nil
}

// allocateLocked claims the next suffix under the store lock. The
// per-tenant counter is seeded from (and never falls behind) the ids
// already present, so directly inserted risks cannot collide with
// allocated ones.
func (m *Memory) allocateLocked(org primitive.ObjectID, staged []*models.Risk) string {
	if m.riskSeq == nil {
		m.riskSeq = make(map[primitive.ObjectID]int)
	}
	next := nextSeqIn(m.risks, staged, org)
	if c := m.riskSeq[org]; c > next {
		next = c
	}
	m.riskSeq[org] = next + 1
	return fmt.Sprintf("R-%04d", next)
}

func nextSeqIn(committed, staged []*models.Risk, org primitive.ObjectID) int {
	max := 999
	scan := func(risks []*models.Risk) {
		for _, r := range risks {
			if r.OrganizationID != org {
				continue
			}
			if mch := memRiskIDPattern.FindStringSubmatch(r.RiskID); mch != nil {
				if n, err := strconv.Atoi(mch[1]); err == nil && n > max {
					max = n
				}
			}
		}
	}
	scan(committed)
	scan(staged)
	return max + 1
}

// ---- scanner queries ----

func (m *Memory) ListOverdueRisks(ctx context.Context, org primitive.ObjectID, now time.Time) ([]models.SourceRecord, error) {
	if err := guardTenant(org); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.SourceRecord
	for _, r := range m.sources {
		if r.OrganizationID != org || r.Kind != models.KindRisk {
			continue
		}
		if r.MitigationDue == nil || !r.MitigationDue.Before(now) {
			continue
		}
		if r.MitigationStatus != MitigationYetToStart && r.MitigationStatus != MitigationInProgress {
			continue
		}
		if r.Status != "Approved" {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (t *memTx) ListOverdueRisks(ctx context.Context, org primitive.ObjectID, now time.Time) ([]models.SourceRecord, error) {
	return t.m.ListOverdueRisks(ctx, org, now)
}

func (m *Memory) ListHighPriorityUnassignedRisks(ctx context.Context, org primitive.ObjectID, now time.Time, withinDays int) ([]models.SourceRecord, error) {
	if err := guardTenant(org); err != nil {
		return nil, err
	}
	cutoff := now.AddDate(0, 0, -withinDays)
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.SourceRecord
	for _, r := range m.sources {
		if r.OrganizationID != org || r.Kind != models.KindRisk {
			continue
		}
		if r.Criticality != models.LevelCritical && r.Criticality != models.LevelHigh {
			continue
		}
		if r.Status != "Not Assigned" || r.CreatedAt.Before(cutoff) {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (t *memTx) ListHighPriorityUnassignedRisks(ctx context.Context, org primitive.ObjectID, now time.Time, withinDays int) ([]models.SourceRecord, error) {
	return t.m.ListHighPriorityUnassignedRisks(ctx, org, now, withinDays)
}

func (m *Memory) ListStaleCompliance(ctx context.Context, org primitive.ObjectID, now time.Time, ageDays int) ([]models.SourceRecord, error) {
	if err := guardTenant(org); err != nil {
		return nil, err
	}
	cutoff := now.AddDate(0, 0, -ageDays)
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.SourceRecord
	for _, r := range m.sources {
		if r.OrganizationID != org || r.Kind != models.KindCompliance {
			continue
		}
		if r.Status != "Under Review" || !r.CreatedAt.Before(cutoff) {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (t *memTx) ListStaleCompliance(ctx context.Context, org primitive.ObjectID, now time.Time, ageDays int) ([]models.SourceRecord, error) {
	return t.m.ListStaleCompliance(ctx, org, now, ageDays)
}

// ---- users, bindings, approvals, audits, tenants ----

func (m *Memory) FindUser(ctx context.Context, org primitive.ObjectID, id primitive.ObjectID) (*models.User, error) {
	if err := guardTenant(org); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.OrganizationID == org && u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (t *memTx) FindUser(ctx context.Context, org primitive.ObjectID, id primitive.ObjectID) (*models.User, error) {
	for _, u := range t.users {
		if u.OrganizationID == org && u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return t.m.FindUser(ctx, org, id)
}

func (m *Memory) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (t *memTx) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return t.m.FindUserByEmail(ctx, email)
}

func prepareUser(org primitive.ObjectID, u *models.User) {
	u.OrganizationID = org
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
}

func (m *Memory) InsertUser(ctx context.Context, org primitive.ObjectID, u *models.User) error {
	if err := guardTenant(org); err != nil {
		return err
	}
	prepareUser(org, u)
	cp := *u
	m.mu.Lock()
	m.users = append(m.users, &cp)
	m.mu.Unlock()
	return nil
}

func (t *memTx) InsertUser(ctx context.Context, org primitive.ObjectID, u *models.User) error {
	if err := guardTenant(org); err != nil {
		return err
	}
	prepareUser(org, u)
	cp := *u
	t.users = append(t.users, &cp)
	return nil
}

func (m *Memory) FindRoleBinding(ctx context.Context, org primitive.ObjectID, userID primitive.ObjectID) (*models.RoleBinding, error) {
	if err := guardTenant(org); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, rb := range m.bindings {
		if rb.OrganizationID == org && rb.UserID == userID && rb.Active {
			cp := *rb
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("no active role binding")
}

func (t *memTx) FindRoleBinding(ctx context.Context, org primitive.ObjectID, userID primitive.ObjectID) (*models.RoleBinding, error) {
	return t.m.FindRoleBinding(ctx, org, userID)
}

func prepareBinding(org primitive.ObjectID, rb *models.RoleBinding) {
	rb.OrganizationID = org
	if rb.ID.IsZero() {
		rb.ID = primitive.NewObjectID()
	}
	if rb.CreatedAt.IsZero() {
		rb.CreatedAt = time.Now().UTC()
	}
}

func (m *Memory) InsertRoleBinding(ctx context.Context, org primitive.ObjectID, rb *models.RoleBinding) error {
	if err := guardTenant(org); err != nil {
		return err
	}
	prepareBinding(org, rb)
	cp := *rb
	m.mu.Lock()
	m.bindings = append(m.bindings, &cp)
	m.mu.Unlock()
	return nil
}

func (t *memTx) InsertRoleBinding(ctx context.Context, org primitive.ObjectID, rb *models.RoleBinding) error {
	if err := guardTenant(org); err != nil {
		return err
	}
	prepareBinding(org, rb)
	cp := *rb
	t.bindings = append(t.bindings, &cp)
	return nil
}

func (m *Memory) FindApprovalRequest(ctx context.Context, approvalID string) (*models.ApprovalRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ar := range m.approvals {
		if ar.ApprovalID == approvalID {
			cp := *ar
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("approval request not found")
}

func (t *memTx) FindApprovalRequest(ctx context.Context, approvalID string) (*models.ApprovalRequest, error) {
	for _, ar := range t.approvals {
		if ar.ApprovalID == approvalID {
			cp := *ar
			return &cp, nil
		}
	}
	return t.m.FindApprovalRequest(ctx, approvalID)
}

func prepareApproval(org primitive.ObjectID, ar *models.ApprovalRequest) {
	ar.OrganizationID = org
	if ar.ID.IsZero() {
		ar.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if ar.CreatedAt.IsZero() {
		ar.CreatedAt = now
	}
	ar.UpdatedAt = now
}

func (m *Memory) InsertApprovalRequest(ctx context.Context, org primitive.ObjectID, ar *models.ApprovalRequest) error {
	if err := guardTenant(org); err != nil {
		return err
	}
	prepareApproval(org, ar)
	cp := *ar
	m.mu.Lock()
	m.approvals = append(m.approvals, &cp)
	m.mu.Unlock()
	return nil
}

func (t *memTx) InsertApprovalRequest(ctx context.Context, org primitive.ObjectID, ar *models.ApprovalRequest) error {
	if err := guardTenant(org); err != nil {
		return err
	}
	prepareApproval(org, ar)
	cp := *ar
	t.approvals = append(t.approvals, &cp)
	return nil
}

func (m *Memory) UpdateApprovalStatus(ctx context.Context, org primitive.ObjectID, approvalID, status string) error {
	if err := guardTenant(org); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ar := range m.approvals {
		if ar.OrganizationID == org && ar.ApprovalID == approvalID {
			ar.Status = status
			ar.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return apperr.NotFound("approval request not found")
}

func (t *memTx) UpdateApprovalStatus(ctx context.Context, org primitive.ObjectID, approvalID, status string) error {
	if err := guardTenant(org); err != nil {
		return err
	}
	t.updates = append(t.updates, func() {
		for _, ar := range t.m.approvals {
			if ar.OrganizationID == org && ar.ApprovalID == approvalID {
				ar.Status = status
				ar.UpdatedAt = time.Now().UTC()
				return
			}
		}
	})
	return nil
}

func prepareAudit(org primitive.ObjectID, entry *models.AuditLog) {
	entry.OrganizationID = org
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
}

func (m *Memory) InsertAuditLog(ctx context.Context, org primitive.ObjectID, entry *models.AuditLog) error {
	if err := guardTenant(org); err != nil {
		return err
	}
	prepareAudit(org, entry)
	cp := *entry
	m.mu.Lock()
	m.audits = append(m.audits, &cp)
	m.mu.Unlock()
	return nil
}

func (t *memTx) InsertAuditLog(ctx context.Context, org primitive.ObjectID, entry *models.AuditLog) error {
	if err := guardTenant(org); err != nil {
		return err
	}
	prepareAudit(org, entry)
	cp := *entry
	t.audits = append(t.audits, &cp)
	return nil
}

func (m *Memory) ListTenants(ctx context.Context) ([]primitive.ObjectID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := map[primitive.ObjectID]bool{}
	var out []primitive.ObjectID
	for _, r := range m.sources {
		if !seen[r.OrganizationID] {
			seen[r.OrganizationID] = true
			out = append(out, r.OrganizationID)
		}
	}
	return out, nil
}

func (t *memTx) ListTenants(ctx context.Context) ([]primitive.ObjectID, error) {
	return t.m.ListTenants(ctx)
}
