// store/mongo.go
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"grc/apperr"
	"grc/models"
)

// Mongo implements Store on top of the mongo driver. One collection per
// entity; every filter starts with the tenant id.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongo(client *mongo.Client, dbName string) *Mongo {
	return &Mongo{client: client, db: client.Database(dbName)}
}

func (m *Mongo) sources() *mongo.Collection   { return m.db.Collection("sourceRecords") }
func (m *Mongo) rows() *mongo.Collection      { return m.db.Collection("entityRows") }
func (m *Mongo) events() *mongo.Collection    { return m.db.Collection("events") }
func (m *Mongo) risks() *mongo.Collection     { return m.db.Collection("risks") }
func (m *Mongo) users() *mongo.Collection     { return m.db.Collection("users") }
func (m *Mongo) bindings() *mongo.Collection  { return m.db.Collection("roleBindings") }
func (m *Mongo) approvals() *mongo.Collection { return m.db.Collection("approvalRequests") }
func (m *Mongo) audits() *mongo.Collection    { return m.db.Collection("auditLogs") }
func (m *Mongo) counters() *mongo.Collection  { return m.db.Collection("counters") }

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *Mongo) FindSource(ctx context.Context, org primitive.ObjectID, kind string, id primitive.ObjectID) (*models.SourceRecord, error) {
	if err := guardTenant(org); err != nil {
		return nil, err
	}
	var rec models.SourceRecord
	err := m.sources().FindOne(ctx, bson.M{"organizationId": org, "kind": kind, "_id": id}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.Newf(apperr.KindNotFound, "source record %s/%s not found", kind, id.Hex())
	}
	if err != nil {
		return nil, apperr.Internal("find source record", err)
	}
	return &rec, nil
}

func (m *Mongo) InsertSource(ctx context.Context, org primitive.ObjectID, rec *models.SourceRecord) error {
	if err := guardTenant(org); err != nil {
		return err
	}
	rec.OrganizationID = org
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	if _, err := m.sources().InsertOne(ctx, rec); err != nil {
		return apperr.Internal("insert source record", err)
	}
	return nil
}

func (m *Mongo) FindEntityRow(ctx context.Context, org primitive.ObjectID, entity, table, row string) (*models.EntityRow, error) {
	if err := guardTenant(org); err != nil {
		return nil, err
	}
	rowID, err := primitive.ObjectIDFromHex(row)
	if err != nil {
		return nil, apperr.InvalidInput("invalid row id")
	}
	var rec models.EntityRow
	err = m.rows().FindOne(ctx, bson.M{"organizationId": org, "entity": entity, "table": table, "_id": rowID}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.Newf(apperr.KindNotFound, "row %s/%s/%s not found", entity, table, row)
	}
	if err != nil {
		return nil, apperr.Internal("find entity row", err)
	}
	return &rec, nil
}

func (m *Mongo) FindEntityRowAny(ctx context.Context, entity, table, row string) (*models.EntityRow, error) {
	rowID, err := primitive.ObjectIDFromHex(row)
	if err != nil {
		return nil, apperr.InvalidInput("invalid row id")
	}
	var rec models.EntityRow
	err = m.rows().FindOne(ctx, bson.M{"entity": entity, "table": table, "_id": rowID}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.Newf(apperr.KindNotFound, "row %s/%s/%s not found", entity, table, row)
	}
	if err != nil {
		return nil, apperr.Internal("find entity row", err)
	}
	return &rec, nil
}

func (m *Mongo) InsertEntityRow(ctx context.Context, org primitive.ObjectID, rec *models.EntityRow) error {
	if err := guardTenant(org); err != nil {
		return err
	}
	rec.OrganizationID = org
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	if _, err := m.rows().InsertOne(ctx, rec); err != nil {
		return apperr.Internal("insert entity row", err)
	}
	return nil
}

func (m *Mongo) InsertEvent(ctx context.Context, org primitive.ObjectID, ev *models.Event) error {
	if err := guardTenant(org); err != nil {
		return err
	}
	if ev.OrganizationID != org {
		return apperr.CrossTenant("event tenant does not match scope")
	}
	if ev.ID.IsZero() {
		ev.ID = primitive.NewObjectID()
	}
	if _, err := m.events().InsertOne(ctx, ev); err != nil {
		return apperr.Internal("insert event", err)
	}
	return nil
}

func (m *Mongo) UpdateEvent(ctx context.Context, org primitive.ObjectID, ev *models.Event) error {
	if err := guardTenant(org); err != nil {
		return err
	}
	ev.UpdatedAt = time.Now().UTC()
	res, err := m.events().UpdateOne(ctx,
		bson.M{"organizationId": org, "_id": ev.ID},
		bson.M{"$set": ev})
	if err != nil {
		return apperr.Internal("update event", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("event not found")
	}
	return nil
}

func (m *Mongo) FindOpenEvent(ctx context.Context, org primitive.ObjectID, kind string, recordID primitive.ObjectID, titleHint string) (*models.Event, error) {
	if err := guardTenant(org); err != nil {
		return nil, err
	}
	filter := bson.M{
		"organizationId":   org,
		"linkedRecordType": kind,
		"linkedRecordId":   recordID,
		"status":           bson.M{"$in": []string{models.EventPendingReview, models.EventUnderReview}},
		"title":            bson.M{"$regex": regexp.QuoteMeta(titleHint), "$options": "i"},
	}
	var ev models.Event
	err := m.events().FindOne(ctx, filter).Decode(&ev)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal("find open event", err)
	}
	return &ev, nil
}

func (m *Mongo) ListEventsByKinds(ctx context.Context, org primitive.ObjectID, kinds []string) ([]models.Event, error) {
	if err := guardTenant(org); err != nil {
		return nil, err
	}
	filter := bson.M{"organizationId": org}
	if len(kinds) > 0 {
		filter["linkedRecordType"] = bson.M{"$in": kinds}
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := m.events().Find(ctx, filter, opts)
	if err != nil {
		return nil, apperr.Internal("list events", err)
	}
	defer cursor.Close(ctx)

	var events []models.Event
	if err = cursor.All(ctx, &events); err != nil {
		return nil, apperr.Internal("decode events", err)
	}
	return events, nil
}

func (m *Mongo) InsertRisk(ctx context.Context, org primitive.ObjectID, risk *models.Risk) error {
	if err := guardTenant(org); err != nil {
		return err
	}
	if risk.OrganizationID != org {
		return apperr.CrossTenant("risk tenant does not match scope")
	}
	if risk.ID.IsZero() {
		risk.ID = primitive.NewObjectID()
	}
	if _, err := m.risks().InsertOne(ctx, risk); err != nil {
		return apperr.Internal("insert risk", err)
	}
	return nil
}

func riskQuery(org primitive.ObjectID, f models.RiskFilter) bson.M {
	filter := bson.M{"organizationId": org}
	if f.Entity != "" {
		filter["entity"] = f.Entity
	}
	if f.Data != "" {
		filter["data"] = f.Data
	}
	if f.Row != "" {
		filter["row"] = f.Row
	}
	return filter
}

func (m *Mongo) ListRisks(ctx context.Context, org primitive.ObjectID, f models.RiskFilter, page, pageSize int) ([]models.Risk, error) {
	if err := guardTenant(org); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := m.risks().Find(ctx, riskQuery(org, f), opts)
	if err != nil {
		return nil, apperr.Internal("list risks", err)
	}
	defer cursor.Close(ctx)

	var risks []models.Risk
	if err = cursor.All(ctx, &risks); err != nil {
		return nil, apperr.Internal("decode risks", err)
	}
	return risks, nil
}

func (m *Mongo) CountRisks(ctx context.Context, org primitive.ObjectID, f models.RiskFilter) (int64, error) {
	if err := guardTenant(org); err != nil {
		return 0, err
	}
	n, err := m.risks().CountDocuments(ctx, riskQuery(org, f))
	if err != nil {
		return 0, apperr.Internal("count risks", err)
	}
	return n, nil
}

var (
	riskIDPattern         = regexp.MustCompile(`^R-(\d+)$`)
	errRiskCounterMissing = errors.New("risk counter missing")
)

func riskCounterID(org primitive.ObjectID) string { return "riskSeq:" + org.Hex() }

// AllocateRiskID claims the next R-#### suffix through a per-tenant
// counter document, so concurrent generations never share an id. The
// counter is seeded lazily from the ids already present; a losing
// concurrent seeder falls back to the atomic bump.
func (m *Mongo) AllocateRiskID(ctx context.Context, org primitive.ObjectID) (string, error) {
	if err := guardTenant(org); err != nil {
		return "", err
	}

	seq, err := m.bumpRiskCounter(ctx, org)
	if err == nil {
		return fmt.Sprintf("R-%04d", seq), nil
	}
	if err != errRiskCounterMissing {
		return "", err
	}

	max, err := m.maxRiskSeq(ctx, org)
	if err != nil {
		return "", err
	}
	_, insErr := m.counters().InsertOne(ctx, bson.M{"_id": riskCounterID(org), "seq": max + 1})
	if insErr == nil {
		return fmt.Sprintf("R-%04d", max+1), nil
	}
	if !mongo.IsDuplicateKeyError(insErr) {
		return "", apperr.Internal("seed risk counter", insErr)
	}
	seq, err = m.bumpRiskCounter(ctx, org)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("R-%04d", seq), nil
}

// bumpRiskCounter increments the tenant's counter and returns the
// freshly issued suffix.
func (m *Mongo) bumpRiskCounter(ctx context.Context, org primitive.ObjectID) (int, error) {
	var doc struct {
		Seq int `bson:"seq"`
	}
	err := m.counters().FindOneAndUpdate(ctx,
		bson.M{"_id": riskCounterID(org)},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return 0, errRiskCounterMissing
	}
	if err != nil {
		return 0, apperr.Internal("bump risk counter", err)
	}
	return doc.Seq, nil
}

// maxRiskSeq scans existing ids for the floor the counter seeds from.
// Lexicographic sort misorders ids once the suffix outgrows four
// digits, so take the max numerically.
func (m *Mongo) maxRiskSeq(ctx context.Context, org primitive.ObjectID) (int, error) {
	opts := options.Find().SetProjection(bson.M{"riskId": 1})
	cursor, err := m.risks().Find(ctx, bson.M{"organizationId": org}, opts)
	if err != nil {
		return 0, apperr.Internal("read risk ids", err)
	}
	defer cursor.Close(ctx)

	max := 999
	for cursor.Next(ctx) {
		var doc struct {
			RiskID string `bson:"riskId"`
		}
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		if mch := riskIDPattern.FindStringSubmatch(doc.RiskID); mch != nil {
			if n, err := strconv.Atoi(mch[1]); err == nil && n > max {
				max = n
			}
		}
	}
	return max, nil
}

func (m *Mongo) ListOverdueRisks(ctx context.Context, org primitive.ObjectID, now time.Time) ([]models.SourceRecord, error) {
	if err := guardTenant(org); err != nil {
		return nil, err
	}
	filter := bson.M{
		"organizationId":   org,
		"kind":             models.KindRisk,
		"mitigationDue":    bson.M{"$lt": now},
		"mitigationStatus": bson.M{"$in": []string{MitigationYetToStart, MitigationInProgress}},
		"status":           "Approved",
	}
	return m.findSources(ctx, filter)
}

func (m *Mongo) ListHighPriorityUnassignedRisks(ctx context.Context, org primitive.ObjectID, now time.Time, withinDays int) ([]models.SourceRecord, error) {
	if err := guardTenant(org); err != nil {
		return nil, err
	}
	filter := bson.M{
		"organizationId": org,
		"kind":           models.KindRisk,
		"criticality":    bson.M{"$in": []string{models.LevelCritical, models.LevelHigh}},
		"status":         "Not Assigned",
		"createdAt":      bson.M{"$gte": now.AddDate(0, 0, -withinDays)},
	}
	return m.findSources(ctx, filter)
}

func (m *Mongo) ListStaleCompliance(ctx context.Context, org primitive.ObjectID, now time.Time, ageDays int) ([]models.SourceRecord, error) {
	if err := guardTenant(org); err != nil {
		return nil, err
	}
	filter := bson.M{
		"organizationId": org,
		"kind":           models.KindCompliance,
		"status":         "Under Review",
		"createdAt":      bson.M{"$lt": now.AddDate(0, 0, -ageDays)},
	}
	return m.findSources(ctx, filter)
}

func (m *Mongo) findSources(ctx context.Context, filter bson.M) ([]models.SourceRecord, error) {
	cursor, err := m.sources().Find(ctx, filter)
	if err != nil {
		return nil, apperr.Internal("scan source records", err)
	}
	defer cursor.Close(ctx)

	var recs []models.SourceRecord
	if err = cursor.All(ctx, &recs); err != nil {
		return nil, apperr.Internal("decode source records", err)
	}
	return recs, nil
}

func (m *Mongo) FindUser(ctx context.Context, org primitive.ObjectID, id primitive.ObjectID) (*models.User, error) {
	if err := guardTenant(org); err != nil {
		return nil, err
	}
	var u models.User
	err := m.users().FindOne(ctx, bson.M{"organizationId": org, "_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal("find user", err)
	}
	return &u, nil
}

func (m *Mongo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := m.users().FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal("find user by email", err)
	}
	return &u, nil
}

func (m *Mongo) InsertUser(ctx context.Context, org primitive.ObjectID, u *models.User) error {
	if err := guardTenant(org); err != nil {
		return err
	}
	u.OrganizationID = org
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if _, err := m.users().InsertOne(ctx, u); err != nil {
		return apperr.Internal("insert user", err)
	}
	return nil
}

func (m *Mongo) FindRoleBinding(ctx context.Context, org primitive.ObjectID, userID primitive.ObjectID) (*models.RoleBinding, error) {
	if err := guardTenant(org); err != nil {
		return nil, err
	}
	var rb models.RoleBinding
	err := m.bindings().FindOne(ctx, bson.M{"organizationId": org, "userId": userID, "active": true}).Decode(&rb)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("no active role binding")
	}
	if err != nil {
		return nil, apperr.Internal("find role binding", err)
	}
	return &rb, nil
}

func (m *Mongo) InsertRoleBinding(ctx context.Context, org primitive.ObjectID, rb *models.RoleBinding) error {
	if err := guardTenant(org); err != nil {
		return err
	}
	rb.OrganizationID = org
	if rb.ID.IsZero() {
		rb.ID = primitive.NewObjectID()
	}
	if rb.CreatedAt.IsZero() {
		rb.CreatedAt = time.Now().UTC()
	}
	if _, err := m.bindings().InsertOne(ctx, rb); err != nil {
		return apperr.Internal("insert role binding", err)
	}
	return nil
}

func (m *Mongo) FindApprovalRequest(ctx context.Context, approvalID string) (*models.ApprovalRequest, error) {
	var ar models.ApprovalRequest
	err := m.approvals().FindOne(ctx, bson.M{"approvalId": approvalID}).Decode(&ar)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("approval request not found")
	}
	if err != nil {
		return nil, apperr.Internal("find approval request", err)
	}
	return &ar, nil
}

func (m *Mongo) InsertApprovalRequest(ctx context.Context, org primitive.ObjectID, ar *models.ApprovalRequest) error {
	if err := guardTenant(org); err != nil {
		return err
	}
	ar.OrganizationID = org
	if ar.ID.IsZero() {
		ar.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if ar.CreatedAt.IsZero() {
		ar.CreatedAt = now
	}
	ar.UpdatedAt = now
	if _, err := m.approvals().InsertOne(ctx, ar); err != nil {
		return apperr.Internal("insert approval request", err)
	}
	return nil
}

func (m *Mongo) UpdateApprovalStatus(ctx context.Context, org primitive.ObjectID, approvalID, status string) error {
	if err := guardTenant(org); err != nil {
		return err
	}
	res, err := m.approvals().UpdateOne(ctx,
		bson.M{"organizationId": org, "approvalId": approvalID},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}})
	if err != nil {
		return apperr.Internal("update approval status", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("approval request not found")
	}
	return nil
}

func (m *Mongo) InsertAuditLog(ctx context.Context, org primitive.ObjectID, entry *models.AuditLog) error {
	if err := guardTenant(org); err != nil {
		return err
	}
	entry.OrganizationID = org
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if _, err := m.audits().InsertOne(ctx, entry); err != nil {
		return apperr.Internal("insert audit log", err)
	}
	return nil
}

func (m *Mongo) ListTenants(ctx context.Context) ([]primitive.ObjectID, error) {
	raw, err := m.sources().Distinct(ctx, "organizationId", bson.M{})
	if err != nil {
		return nil, apperr.Internal("list tenants", err)
	}
	tenants := make([]primitive.ObjectID, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(primitive.ObjectID); ok {
			tenants = append(tenants, id)
		}
	}
	return tenants, nil
}

// mongoTx routes every operation through the session context so writes
// join the transaction regardless of the context the caller passes in.
// Commit hooks accumulate and run only after the transaction commits.
type mongoTx struct {
	m     *Mongo
	sc    mongo.SessionContext
	hooks []func(ctx context.Context)
}

func (t *mongoTx) OnCommit(fn func(ctx context.Context)) {
	t.hooks = append(t.hooks, fn)
}

// RunTx executes fn inside a driver session: when fn fails, every write
// it already made is aborted with it, and no hooks run. Transactions
// require a replica set or mongos; standalone servers reject them.
func (m *Mongo) RunTx(ctx context.Context, fn func(tx Tx) error) error {
	session, err := m.client.StartSession()
	if err != nil {
		return apperr.Internal("start session", err)
	}
	defer session.EndSession(ctx)

	var hooks []func(ctx context.Context)
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		tx := &mongoTx{m: m, sc: sc}
		if err := fn(tx); err != nil {
			return nil, err
		}
		hooks = tx.hooks
		return nil, nil
	})
	if err != nil {
		return err
	}

	for _, hook := range hooks {
		hook(ctx)
	}
	if len(hooks) > 0 {
		log.Debug().Int("hooks", len(hooks)).Msg("commit hooks executed")
	}
	return nil
}

func (t *mongoTx) FindSource(ctx context.Context, org primitive.ObjectID, kind string, id primitive.ObjectID) (*models.SourceRecord, error) {
	return t.m.FindSource(t.sc, org, kind, id)
}

func (t *mongoTx) InsertSource(ctx context.Context, org primitive.ObjectID, rec *models.SourceRecord) error {
	return t.m.InsertSource(t.sc, org, rec)
}

func (t *mongoTx) FindEntityRow(ctx context.Context, org primitive.ObjectID, entity, table, row string) (*models.EntityRow, error) {
	return t.m.FindEntityRow(t.sc, org, entity, table, row)
}

func (t *mongoTx) FindEntityRowAny(ctx context.Context, entity, table, row string) (*models.EntityRow, error) {
	return t.m.FindEntityRowAny(t.sc, entity, table, row)
}

func (t *mongoTx) InsertEntityRow(ctx context.Context, org primitive.ObjectID, rec *models.EntityRow) error {
	return t.m.InsertEntityRow(t.sc, org, rec)
}

func (t *mongoTx) InsertEvent(ctx context.Context, org primitive.ObjectID, ev *models.Event) error {
	return t.m.InsertEvent(t.sc, org, ev)
}

func (t *mongoTx) UpdateEvent(ctx context.Context, org primitive.ObjectID, ev *models.Event) error {
	return t.m.UpdateEvent(t.sc, org, ev)
}

func (t *mongoTx) FindOpenEvent(ctx context.Context, org primitive.ObjectID, kind string, recordID primitive.ObjectID, titleHint string) (*models.Event, error) {
	return t.m.FindOpenEvent(t.sc, org, kind, recordID, titleHint)
}

func (t *mongoTx) ListEventsByKinds(ctx context.Context, org primitive.ObjectID, kinds []string) ([]models.Event, error) {
	return t.m.ListEventsByKinds(t.sc, org, kinds)
}

func (t *mongoTx) InsertRisk(ctx context.Context, org primitive.ObjectID, risk *models.Risk) error {
	return t.m.InsertRisk(t.sc, org, risk)
}

func (t *mongoTx) ListRisks(ctx context.Context, org primitive.ObjectID, f models.RiskFilter, page, pageSize int) ([]models.Risk, error) {
	return t.m.ListRisks(t.sc, org, f, page, pageSize)
}

func (t *mongoTx) CountRisks(ctx context.Context, org primitive.ObjectID, f models.RiskFilter) (int64, error) {
	return t.m.CountRisks(t.sc, org, f)
}

func (t *mongoTx) AllocateRiskID(ctx context.Context, org primitive.ObjectID) (string, error) {
	return t.m.AllocateRiskID(t.sc, org)
}

func (t *mongoTx) ListOverdueRisks(ctx context.Context, org primitive.ObjectID, now time.Time) ([]models.SourceRecord, error) {
	return t.m.ListOverdueRisks(t.sc, org, now)
}

func (t *mongoTx) ListHighPriorityUnassignedRisks(ctx context.Context, org primitive.ObjectID, now time.Time, withinDays int) ([]models.SourceRecord, error) {
	return t.m.ListHighPriorityUnassignedRisks(t.sc, org, now, withinDays)
}

func (t *mongoTx) ListStaleCompliance(ctx context.Context, org primitive.ObjectID, now time.Time, ageDays int) ([]models.SourceRecord, error) {
	return t.m.ListStaleCompliance(t.sc, org, now, ageDays)
}

func (t *mongoTx) FindUser(ctx context.Context, org primitive.ObjectID, id primitive.ObjectID) (*models.User, error) {
	return t.m.FindUser(t.sc, org, id)
}

func (t *mongoTx) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return t.m.FindUserByEmail(t.sc, email)
}

func (t *mongoTx) InsertUser(ctx context.Context, org primitive.ObjectID, u *models.User) error {
	return t.m.InsertUser(t.sc, org, u)
}

func (t *mongoTx) FindRoleBinding(ctx context.Context, org primitive.ObjectID, userID primitive.ObjectID) (*models.RoleBinding, error) {
	return t.m.FindRoleBinding(t.sc, org, userID)
}

func (t *mongoTx) InsertRoleBinding(ctx context.Context, org primitive.ObjectID, rb *models.RoleBinding) error {
	return t.m.InsertRoleBinding(t.sc, org, rb)
}

func (t *mongoTx) FindApprovalRequest(ctx context.Context, approvalID string) (*models.ApprovalRequest, error) {
	return t.m.FindApprovalRequest(t.sc, approvalID)
}

func (t *mongoTx) InsertApprovalRequest(ctx context.Context, org primitive.ObjectID, ar *models.ApprovalRequest) error {
	return t.m.InsertApprovalRequest(t.sc, org, ar)
}

func (t *mongoTx) UpdateApprovalStatus(ctx context.Context, org primitive.ObjectID, approvalID, status string) error {
	return t.m.UpdateApprovalStatus(t.sc, org, approvalID, status)
}

func (t *mongoTx) InsertAuditLog(ctx context.Context, org primitive.ObjectID, entry *models.AuditLog) error {
	return t.m.InsertAuditLog(t.sc, org, entry)
}

func (t *mongoTx) ListTenants(ctx context.Context) ([]primitive.ObjectID, error) {
	return t.m.ListTenants(t.sc)
}
