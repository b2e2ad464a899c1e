package gormrepo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"bonafide-backend/internal/domain/certificate"
	"bonafide-backend/internal/domain/profile"
)

type ProfileRepository struct{ db *gorm.DB }

func NewProfileRepository(db *gorm.DB) *ProfileRepository { return &ProfileRepository{db: db} }

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*profile.Profile, error) {
	var out profile.Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, profile.ErrNotFound
	}
	if err != nil {
		return nil, certificate.WrapStore("get profile", err)
	}
	return &out, nil
}

func (r *ProfileRepository) GetByIDs(ctx context.Context, ids []string) ([]profile.Profile, error) {
	out := []profile.Profile{}
	if len(ids) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, certificate.WrapStore("get profiles", err)
}

func (r *ProfileRepository) List(ctx context.Context, f profile.ListFilter) ([]profile.Profile, error) {
	q := r.db.WithContext(ctx).Model(&profile.Profile{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if d := strings.TrimSpace(f.Department); d != "" && !strings.EqualFold(d, certificate.DepartmentAll) {
		q = q.Where("LOWER(department) = ?", strings.ToLower(d))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(register_number) LIKE ?",
			like, like, like, like)
	}
	out := []profile.Profile{}
	err := q.Order("created_at DESC").Order("id ASC").Find(&out).Error
	return out, certificate.WrapStore("list profiles", err)
}

func (r *ProfileRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&profile.Profile{}).Count(&n).Error
	return n, certificate.WrapStore("count profiles", err)
}

func (r *ProfileRepository) Create(ctx context.Context, p *profile.Profile) error {
	return certificate.WrapStore("create profile", r.db.WithContext(ctx).Create(p).Error)
}

func (r *ProfileRepository) UpdateSelf(ctx context.Context, id string, u profile.SelfUpdate) error {
	updates := map[string]any{}
	if u.FirstName != nil {
		updates["first_name"] = *u.FirstName
	}
	if u.LastName != nil {
		updates["last_name"] = *u.LastName
	}
	if u.AvatarURL != nil {
		updates["avatar_url"] = nullable(*u.AvatarURL)
	}
	return r.update(ctx, id, updates)
}

func (r *ProfileRepository) UpdateAdmin(ctx context.Context, id string, u profile.AdminUpdate) error {
	updates := map[string]any{}
	if u.Role != nil {
		updates["role"] = *u.Role
	}
	if u.Department != nil {
		updates["department"] = nullable(*u.Department)
	}
	if u.RegisterNumber != nil {
		updates["register_number"] = nullable(*u.RegisterNumber)
	}
	if u.TutorID != nil {
		updates["tutor_id"] = nullable(*u.TutorID)
	}
	return r.update(ctx, id, updates)
}

// update checks existence first: mysql reports zero affected rows for no-op writes.
func (r *ProfileRepository) update(ctx context.Context, id string, updates map[string]any) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&profile.Profile{}).Where("id = ?", id).Updates(updates).Error
	return certificate.WrapStore("update profile", err)
}

// Delete removes the profile and detaches any tutees assigned to it.
func (r *ProfileRepository) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(&profile.Profile{}).Where("tutor_id = ?", id).Update("tutor_id", nil).Error; err != nil {
		return certificate.WrapStore("detach tutees", err)
	}
	res := db.Where("id = ?", id).Delete(&profile.Profile{})
	if res.Error != nil {
		return certificate.WrapStore("delete profile", res.Error)
	}
	if res.RowsAffected == 0 {
		return profile.ErrNotFound
	}
	return nil
}

// empty strings clear optional columns
func nullable(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
