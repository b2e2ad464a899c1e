package gormrepo

import (
	"context"
	"errors"
	"testing"

	"bonafide-backend/internal/domain/profile"
)

func TestProfileRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	tutor := seedProfile(t, db, profile.Profile{Role: profile.RoleTutor, FirstName: "Tara", Email: "tara@college.edu"})
	s := seedProfile(t, db, profile.Profile{FirstName: "Asha", LastName: "Rao", Email: "asha@college.edu", Department: strp("Computer Science"), TutorID: &tutor.ID})

	got, err := repo.GetByID(ctx, s.ID)
	if err != nil || got.FullName() != "Asha Rao" {
		t.Fatalf("GetByID = %+v, %v", got, err)
	}
	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, profile.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	many, err := repo.GetByIDs(ctx, []string{s.ID, tutor.ID, "missing"})
	if err != nil || len(many) != 2 {
		t.Fatalf("GetByIDs = %d, %v", len(many), err)
	}

	list, err := repo.List(ctx, profile.ListFilter{Role: profile.RoleStudent})
	if err != nil || len(list) != 1 || list[0].ID != s.ID {
		t.Fatalf("List by role = %+v, %v", list, err)
	}
	list, _ = repo.List(ctx, profile.ListFilter{Search: "TARA@"})
	if len(list) != 1 || list[0].ID != tutor.ID {
		t.Fatalf("List by search = %+v", list)
	}
	list, _ = repo.List(ctx, profile.ListFilter{Department: "computer science"})
	if len(list) != 1 {
		t.Fatalf("List by department = %+v", list)
	}

	if n, _ := repo.Count(ctx); n != 2 {
		t.Fatalf("Count = %d", n)
	}

	first := "Ashwini"
	if err := repo.UpdateSelf(ctx, s.ID, profile.SelfUpdate{FirstName: &first}); err != nil {
		t.Fatalf("UpdateSelf: %v", err)
	}
	role := profile.RoleHOD
	empty := ""
	if err := repo.UpdateAdmin(ctx, s.ID, profile.AdminUpdate{Role: &role, TutorID: &empty}); err != nil {
		t.Fatalf("UpdateAdmin: %v", err)
	}
	got, _ = repo.GetByID(ctx, s.ID)
	if got.FirstName != "Ashwini" || got.Role != profile.RoleHOD || got.TutorID != nil || got.LastName != "Rao" {
		t.Fatalf("after updates: %+v", got)
	}
	if err := repo.UpdateSelf(ctx, "missing", profile.SelfUpdate{FirstName: &first}); !errors.Is(err, profile.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestProfileRepository_DeleteDetachesTutees(t *testing.T) {
	db := openTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	tutor := seedProfile(t, db, profile.Profile{Role: profile.RoleTutor})
	s := seedProfile(t, db, profile.Profile{TutorID: &tutor.ID})

	if err := repo.Delete(ctx, tutor.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, _ := repo.GetByID(ctx, s.ID)
	if got.TutorID != nil {
		t.Fatalf("tutee still assigned: %v", *got.TutorID)
	}
	if err := repo.Delete(ctx, tutor.ID); !errors.Is(err, profile.ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}
}
