package gormrepo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bonafide-backend/internal/domain/certificate"
)

type CertificateRepository struct{ db *gorm.DB }

func NewCertificateRepository(db *gorm.DB) *CertificateRepository {
	return &CertificateRepository{db: db}
}

const viewColumns = "certificate_requests.*, " +
	"profiles.first_name, profiles.last_name, profiles.register_number, profiles.department, profiles.tutor_id"

func (r *CertificateRepository) Create(ctx context.Context, req *certificate.Request) error {
	return certificate.WrapStore("create request", r.db.WithContext(ctx).Create(req).Error)
}

func (r *CertificateRepository) GetByRequestID(ctx context.Context, requestID string) (*certificate.Request, error) {
	return r.get(r.db.WithContext(ctx), requestID)
}

// GetByRequestIDForUpdate locks the row until the surrounding tx ends.
// sqlite has no row locks; the clause is skipped there.
func (r *CertificateRepository) GetByRequestIDForUpdate(ctx context.Context, requestID string) (*certificate.Request, error) {
	q := r.db.WithContext(ctx)
	if !isSQLite(r.db) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.get(q, requestID)
}

func (r *CertificateRepository) get(q *gorm.DB, requestID string) (*certificate.Request, error) {
	var out certificate.Request
	err := q.Where("request_id = ?", requestID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, certificate.ErrNotFound
	}
	if err != nil {
		return nil, certificate.WrapStore("get request", err)
	}
	return &out, nil
}

func (r *CertificateRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("certificate_requests").
		Joins("LEFT JOIN profiles ON profiles.id = certificate_requests.owner_id")
}

func (r *CertificateRepository) GetView(ctx context.Context, requestID string) (*certificate.View, error) {
	var rows []certificate.View
	err := r.joined(ctx).
		Select(viewColumns).
		Where("certificate_requests.request_id = ?", requestID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, certificate.WrapStore("get request view", err)
	}
	if len(rows) == 0 {
		return nil, certificate.ErrNotFound
	}
	return &rows[0], nil
}

func (r *CertificateRepository) Query(ctx context.Context, c certificate.Criteria) ([]certificate.View, int64, error) {
	if c.Statuses != nil && len(c.Statuses) == 0 {
		return []certificate.View{}, 0, nil
	}

	q := r.joined(ctx)
	if c.Statuses != nil {
		q = q.Where("certificate_requests.status IN ?", c.Statuses)
	}
	if c.Scope.OwnerID != "" {
		q = q.Where("certificate_requests.owner_id = ?", c.Scope.OwnerID)
	}
	if c.Scope.TutorID != "" {
		q = q.Where("profiles.tutor_id = ?", c.Scope.TutorID)
	}
	if c.Scope.Department != "" {
		q = q.Where("profiles.department = ?", c.Scope.Department)
	}
	if d := strings.TrimSpace(c.Department); d != "" && !strings.EqualFold(d, certificate.DepartmentAll) {
		q = q.Where("LOWER(profiles.department) = ?", strings.ToLower(d))
	}
	if s := strings.TrimSpace(c.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where(
			"LOWER(profiles.first_name) LIKE ? OR LOWER(profiles.last_name) LIKE ? OR "+
				"LOWER(profiles.register_number) LIKE ? OR LOWER(profiles.department) LIKE ? OR "+
				"LOWER(certificate_requests.reason) LIKE ?",
			like, like, like, like, like)
	}
	if c.From != nil {
		q = q.Where("certificate_requests.created_at >= ?", c.From.UTC())
	}
	if c.To != nil {
		q = q.Where("certificate_requests.created_at <= ?", c.To.UTC())
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, certificate.WrapStore("count requests", err)
	}
	if total == 0 {
		return []certificate.View{}, 0, nil
	}

	page := q.Select(viewColumns).
		Order(orderBy(r.db, c.Sort)).
		Order("certificate_requests.id ASC")
	if c.Limit > 0 {
		page = page.Offset(c.Offset).Limit(c.Limit)
	}
	rows := []certificate.View{}
	if err := page.Scan(&rows).Error; err != nil {
		return nil, 0, certificate.WrapStore("query requests", err)
	}
	return rows, total, nil
}

func orderBy(db *gorm.DB, s certificate.Sort) string {
	s = s.Normalize()
	var expr string
	switch s.Key {
	case certificate.SortUpdatedAt:
		expr = "certificate_requests.updated_at"
	case certificate.SortStatus:
		expr = "certificate_requests.status"
	case certificate.SortReason:
		expr = "LOWER(certificate_requests.reason)"
	case certificate.SortDepartment:
		expr = "LOWER(COALESCE(profiles.department, ''))"
	case certificate.SortRegisterNumber:
		expr = "COALESCE(profiles.register_number, '')"
	case certificate.SortStudentName:
		expr = "LOWER(" + nameExpr(db) + ")"
	default:
		expr = "certificate_requests.created_at"
	}
	if s.Desc {
		return expr + " DESC"
	}
	return expr + " ASC"
}

// mysql treats || as OR unless PIPES_AS_CONCAT is set.
func nameExpr(db *gorm.DB) string {
	first, last := "COALESCE(profiles.first_name, '')", "COALESCE(profiles.last_name, '')"
	if isSQLite(db) {
		return first + " || ' ' || " + last
	}
	return "CONCAT(" + first + ", ' ', " + last + ")"
}

func (r *CertificateRepository) CompareAndSetStatus(ctx context.Context, requestID string, expected certificate.Status, p certificate.Patch) error {
	updates := map[string]any{
		"status":           p.Status,
		"rejection_reason": p.RejectionReason,
		"updated_at":       time.Now().UTC(),
	}
	if p.Reason != nil {
		updates["reason"] = *p.Reason
	}
	res := r.db.WithContext(ctx).
		Model(&certificate.Request{}).
		Where("request_id = ? AND status = ?", requestID, expected).
		Updates(updates)
	if res.Error != nil {
		return certificate.WrapStore("update status", res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}
	return r.explain(ctx, requestID, expected)
}

// explain turns a zero-row conditional write into NotFound or Conflict.
func (r *CertificateRepository) explain(ctx context.Context, requestID string, expected certificate.Status) error {
	cur, err := r.GetByRequestID(ctx, requestID)
	if err != nil {
		return err
	}
	return &certificate.ConflictError{RequestID: requestID, Expected: expected, Actual: cur.Status}
}

func (r *CertificateRepository) UpdateReason(ctx context.Context, requestID, ownerID, reason string) error {
	res := r.db.WithContext(ctx).
		Model(&certificate.Request{}).
		Where("request_id = ? AND owner_id = ? AND status = ?", requestID, ownerID, certificate.StatusPending).
		Updates(map[string]any{"reason": reason, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return certificate.WrapStore("update reason", res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}
	cur, err := r.GetByRequestID(ctx, requestID)
	if err != nil {
		return err
	}
	if cur.OwnerID != ownerID {
		return certificate.ErrForbidden
	}
	return &certificate.TransitionError{From: cur.Status, Role: "student", Action: "edit"}
}

func (r *CertificateRepository) DeleteIfStatus(ctx context.Context, requestID string, expected certificate.Status) error {
	res := r.db.WithContext(ctx).
		Where("request_id = ? AND status = ?", requestID, expected).
		Delete(&certificate.Request{})
	if res.Error != nil {
		return certificate.WrapStore("delete request", res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}
	return r.explain(ctx, requestID, expected)
}

func isSQLite(db *gorm.DB) bool {
	return db.Dialector != nil && db.Dialector.Name() == "sqlite"
}
