package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"vidaleve/coaching-app/internal/domain"
	"vidaleve/coaching-app/internal/service"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newAdmin() *domain.User {
	return &domain.User{
		ID:    primitive.NewObjectID(),
		Name:  "Coach Ana",
		Email: "ana@vidaleve.app",
		Role:  domain.RoleAdmin,
	}
}

func newClient(admin *domain.User) *domain.User {
	c := &domain.User{
		ID:    primitive.NewObjectID(),
		Name:  "Maria Silva",
		Email: "maria@vidaleve.app",
		Role:  domain.RoleClient,
	}
	if admin != nil {
		c.AdminID = &admin.ID
		admin.ClientIDs = append(admin.ClientIDs, c.ID)
	}
	return c
}

func TestAddClientByEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	admin := newAdmin()
	client := &domain.User{
		ID:    primitive.NewObjectID(),
		Name:  "Joana",
		Email: "joana@vidaleve.app",
		Role:  domain.RoleClient,
	}
	users := newFakeUserRepo(admin, client)
	svc := service.NewAdminService(users, &fakeWeighInRepo{}, newFakeDailyRepo(), newFakeGoalRepo(), 0)

	got, err := svc.AddClientByEmail(ctx, admin.ID, "joana@vidaleve.app")
	if err != nil {
		t.Fatalf("AddClientByEmail: %v", err)
	}
	if got.AdminID == nil || *got.AdminID != admin.ID {
		t.Fatalf("client not linked to admin")
	}

	// Adding again is idempotent for the same admin.
	if _, err := svc.AddClientByEmail(ctx, admin.ID, "joana@vidaleve.app"); err != nil {
		t.Fatalf("re-adding own client should succeed, got %v", err)
	}

	// A second admin cannot poach.
	other := newAdmin()
	other.ID = primitive.NewObjectID()
	other.Email = "outro@vidaleve.app"
	users2 := newFakeUserRepo(admin, other, got)
	svc2 := service.NewAdminService(users2, &fakeWeighInRepo{}, newFakeDailyRepo(), newFakeGoalRepo(), 0)
	if _, err := svc2.AddClientByEmail(ctx, other.ID, "joana@vidaleve.app"); !errors.Is(err, service.ErrClientAlreadyCoached) {
		t.Fatalf("got %v, want ErrClientAlreadyCoached", err)
	}
}

func TestAddClientByEmailRejectsAdmins(t *testing.T) {
	t.Parallel()

	admin := newAdmin()
	other := &domain.User{
		ID:    primitive.NewObjectID(),
		Email: "chefe@vidaleve.app",
		Role:  domain.RoleAdmin,
	}
	users := newFakeUserRepo(admin, other)
	svc := service.NewAdminService(users, &fakeWeighInRepo{}, newFakeDailyRepo(), newFakeGoalRepo(), 0)

	if _, err := svc.AddClientByEmail(context.Background(), admin.ID, "chefe@vidaleve.app"); !errors.Is(err, service.ErrClientNotRole) {
		t.Fatalf("got %v, want ErrClientNotRole", err)
	}
}

func TestRecordWeighInDerivesIMC(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	admin := newAdmin()
	client := newClient(admin)
	client.HeightCm = 170
	users := newFakeUserRepo(admin, client)
	weighIns := &fakeWeighInRepo{}
	svc := service.NewAdminService(users, weighIns, newFakeDailyRepo(), newFakeGoalRepo(), 0)

	w, err := svc.RecordWeighIn(ctx, admin.ID, client.ID, service.WeighInInput{
		WeightKg:   72.5,
		MeasuredAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("RecordWeighIn: %v", err)
	}
	if w.IMC == nil {
		t.Fatalf("IMC not derived despite recorded height")
	}
	// 72.5 / 1.70^2 = 25.08...
	if *w.IMC < 25.0 || *w.IMC > 25.2 {
		t.Fatalf("IMC = %v, want ~25.1", *w.IMC)
	}
	if w.Source != "manual" {
		t.Fatalf("Source = %q, want default manual", w.Source)
	}
}

func TestRecordWeighInWithoutHeightSkipsIMC(t *testing.T) {
	t.Parallel()

	admin := newAdmin()
	client := newClient(admin)
	users := newFakeUserRepo(admin, client)
	svc := service.NewAdminService(users, &fakeWeighInRepo{}, newFakeDailyRepo(), newFakeGoalRepo(), 0)

	w, err := svc.RecordWeighIn(context.Background(), admin.ID, client.ID, service.WeighInInput{
		WeightKg:   80,
		MeasuredAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("RecordWeighIn: %v", err)
	}
	if w.IMC != nil {
		t.Fatalf("IMC = %v, want nil when no height is recorded", *w.IMC)
	}
}

func TestRecordWeighInValidation(t *testing.T) {
	t.Parallel()

	admin := newAdmin()
	client := newClient(admin)
	stranger := newClient(nil)
	stranger.Email = "outra@vidaleve.app"
	users := newFakeUserRepo(admin, client, stranger)
	svc := service.NewAdminService(users, &fakeWeighInRepo{}, newFakeDailyRepo(), newFakeGoalRepo(), 0)
	ctx := context.Background()

	if _, err := svc.RecordWeighIn(ctx, admin.ID, client.ID, service.WeighInInput{WeightKg: 0}); !errors.Is(err, service.ErrInvalidWeighIn) {
		t.Fatalf("zero weight: got %v, want ErrInvalidWeighIn", err)
	}
	if _, err := svc.RecordWeighIn(ctx, admin.ID, stranger.ID, service.WeighInInput{WeightKg: 70}); !errors.Is(err, service.ErrClientNotManaged) {
		t.Fatalf("unmanaged client: got %v, want ErrClientNotManaged", err)
	}
}

func TestDeleteWeighInNotFound(t *testing.T) {
	t.Parallel()

	admin := newAdmin()
	client := newClient(admin)
	users := newFakeUserRepo(admin, client)
	svc := service.NewAdminService(users, &fakeWeighInRepo{}, newFakeDailyRepo(), newFakeGoalRepo(), 0)

	err := svc.DeleteWeighIn(context.Background(), admin.ID, client.ID, primitive.NewObjectID())
	if !errors.Is(err, service.ErrWeighInNotFound) {
		t.Fatalf("got %v, want ErrWeighInNotFound", err)
	}
}

func TestSetGoalProgressBounds(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	admin := newAdmin()
	client := newClient(admin)
	users := newFakeUserRepo(admin, client)
	goals := newFakeGoalRepo()
	svc := service.NewAdminService(users, &fakeWeighInRepo{}, newFakeDailyRepo(), goals, 0)

	goal, err := svc.CreateGoal(ctx, admin.ID, client.ID, &domain.Goal{Name: "Perder 5kg", Type: "peso"})
	if err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}

	for _, p := range []int{-1, 101} {
		if err := svc.SetGoalProgress(ctx, admin.ID, goal.ID, p); !errors.Is(err, service.ErrInvalidGoalProgress) {
			t.Fatalf("progress %d: got %v, want ErrInvalidGoalProgress", p, err)
		}
	}
	if err := svc.SetGoalProgress(ctx, admin.ID, goal.ID, 60); err != nil {
		t.Fatalf("SetGoalProgress(60): %v", err)
	}
	stored, _ := goals.GetByID(ctx, goal.ID)
	if stored.Progress != 60 {
		t.Fatalf("Progress = %d, want 60", stored.Progress)
	}
}

func TestDeleteGoalChecksOwnership(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	admin := newAdmin()
	other := newAdmin()
	client := newClient(admin)
	users := newFakeUserRepo(admin, other, client)
	goals := newFakeGoalRepo()
	svc := service.NewAdminService(users, &fakeWeighInRepo{}, newFakeDailyRepo(), goals, 0)

	goal, err := svc.CreateGoal(ctx, admin.ID, client.ID, &domain.Goal{Name: "Beber 2L de água", Type: "habito"})
	if err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}

	if err := svc.DeleteGoal(ctx, other.ID, goal.ID); !errors.Is(err, service.ErrClientNotManaged) {
		t.Fatalf("other admin delete: got %v, want ErrClientNotManaged", err)
	}
	if err := svc.DeleteGoal(ctx, admin.ID, goal.ID); err != nil {
		t.Fatalf("DeleteGoal: %v", err)
	}
	if err := svc.DeleteGoal(ctx, admin.ID, goal.ID); !errors.Is(err, service.ErrGoalNotFound) {
		t.Fatalf("second delete: got %v, want ErrGoalNotFound", err)
	}
}

func TestEngagementOverviewBoundedFanout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	admin := newAdmin()
	repoUsers := []*domain.User{admin}
	for i := 0; i < 20; i++ {
		c := &domain.User{
			ID:      primitive.NewObjectID(),
			Name:    "Cliente",
			Role:    domain.RoleClient,
			AdminID: &admin.ID,
		}
		repoUsers = append(repoUsers, c)
	}
	users := newFakeUserRepo(repoUsers...)
	daily := newFakeDailyRepo()
	daily.delay = 5 * time.Millisecond

	const limit = 3
	svc := service.NewAdminService(users, &fakeWeighInRepo{}, daily, newFakeGoalRepo(), limit)

	results, err := svc.EngagementOverview(ctx, admin.ID)
	if err != nil {
		t.Fatalf("EngagementOverview: %v", err)
	}
	if len(results) != 20 {
		t.Fatalf("got %d results, want 20", len(results))
	}
	// Each goroutine issues two sequential daily fetches, so at most `limit`
	// are in flight at once.
	if daily.maxInflight > limit {
		t.Fatalf("max concurrent daily fetches = %d, want <= %d", daily.maxInflight, limit)
	}
	for _, r := range results {
		if r.ClientID.IsZero() {
			t.Fatalf("result with zero client id")
		}
	}
}

func TestExportClientWeighInsCSV(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	admin := newAdmin()
	client := newClient(admin)
	users := newFakeUserRepo(admin, client)
	weighIns := &fakeWeighInRepo{}
	svc := service.NewAdminService(users, weighIns, newFakeDailyRepo(), newFakeGoalRepo(), 0)

	if _, err := svc.RecordWeighIn(ctx, admin.ID, client.ID, service.WeighInInput{
		WeightKg:   81.3,
		MeasuredAt: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("RecordWeighIn: %v", err)
	}

	doc, err := svc.ExportClientWeighInsCSV(ctx, admin.ID, client.ID)
	if err != nil {
		t.Fatalf("ExportClientWeighInsCSV: %v", err)
	}
	if doc.ContentType != "text/csv; charset=utf-8" {
		t.Fatalf("ContentType = %q", doc.ContentType)
	}
	if doc.Filename == "" || doc.Content == "" {
		t.Fatalf("empty export document")
	}
}
