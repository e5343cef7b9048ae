package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"vidaleve/coaching-app/internal/apperr"
	"vidaleve/coaching-app/internal/domain"
	"vidaleve/coaching-app/internal/service"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type clientFixture struct {
	svc      service.ClientService
	users    *fakeUserRepo
	weighIns *fakeWeighInRepo
	daily    *fakeDailyRepo
	goals    *fakeGoalRepo
	sessions *fakeSessionRepo
	courses  *fakeCourseRepo
	progress *fakeProgressStore
}

func newClientFixture(users ...*domain.User) *clientFixture {
	f := &clientFixture{
		users:    newFakeUserRepo(users...),
		weighIns: &fakeWeighInRepo{},
		daily:    newFakeDailyRepo(),
		goals:    newFakeGoalRepo(),
		sessions: newFakeSessionRepo(),
		courses:  newFakeCourseRepo(),
		progress: newFakeProgressStore(),
	}
	f.svc = service.NewClientService(f.users, f.weighIns, f.daily, f.goals, f.sessions, f.courses, &fakeMediaStorage{}, f.progress)
	return f
}

func sentSession(adminID, clientID primitive.ObjectID, title string) *domain.Session {
	return &domain.Session{
		ID:         primitive.NewObjectID(),
		Title:      title,
		AssignedTo: clientID,
		CreatedBy:  adminID,
		IsActive:   true,
		Status:     domain.SessionSent,
		SentAt:     time.Now().Add(-time.Hour),
	}
}

func testCourse() *domain.Course {
	return &domain.Course{
		ID:    primitive.NewObjectID(),
		Title: "Reeducação Alimentar",
		Modules: []domain.CourseModule{
			{Title: "Fundamentos", Lessons: []domain.Lesson{
				{ID: "l1", Title: "Boas-vindas"},
				{ID: "l2", Title: "Como pesar"},
			}},
			{Title: "Prática", Lessons: []domain.Lesson{
				{ID: "l3", Title: "Montando o prato"},
				{ID: "l4", Title: "Diário alimentar"},
			}},
		},
	}
}

func TestGetMySessionsMarksViewed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	admin := newAdmin()
	client := newClient(admin)
	f := newClientFixture(admin, client)
	s1 := sentSession(admin.ID, client.ID, "Semana 1")
	f.sessions.sessions[s1.ID] = s1

	got, err := f.svc.GetMySessions(ctx, client.ID)
	if err != nil {
		t.Fatalf("GetMySessions: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d sessions, want 1", len(got))
	}
	if got[0].Status != domain.SessionViewed {
		t.Fatalf("Status = %q, want viewed after listing", got[0].Status)
	}
	if got[0].ViewedAt == nil {
		t.Fatalf("ViewedAt not set")
	}

	// The advance is persisted, not just decorated on the response.
	stored, _ := f.sessions.GetByID(ctx, s1.ID)
	if stored.Status != domain.SessionViewed {
		t.Fatalf("stored Status = %q, want viewed", stored.Status)
	}
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	admin := newAdmin()
	client := newClient(admin)
	f := newClientFixture(admin, client)
	s1 := sentSession(admin.ID, client.ID, "Semana 1")
	f.sessions.sessions[s1.ID] = s1

	started, err := f.svc.StartSession(ctx, client.ID, s1.ID)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if started.Status != domain.SessionInProgress {
		t.Fatalf("Status = %q, want in_progress", started.Status)
	}
	// Starting straight from "sent" implies the client saw it.
	if started.ViewedAt == nil || started.StartedAt == nil {
		t.Fatalf("transition timestamps missing: %+v", started)
	}

	done, err := f.svc.CompleteSession(ctx, client.ID, s1.ID)
	if err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}
	if done.Status != domain.SessionCompleted || done.CompletedAt == nil {
		t.Fatalf("completion not recorded: %+v", done)
	}

	// Completed is terminal.
	_, err = f.svc.StartSession(ctx, client.ID, s1.ID)
	if apperr.KindOf(err) != apperr.Conflict {
		t.Fatalf("restarting a completed session: got %v, want Conflict", err)
	}
}

func TestSessionAccessIsPerClient(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	admin := newAdmin()
	client := newClient(admin)
	intruder := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleClient, AdminID: &admin.ID}
	f := newClientFixture(admin, client, intruder)
	s1 := sentSession(admin.ID, client.ID, "Semana 1")
	f.sessions.sessions[s1.ID] = s1

	if _, err := f.svc.StartSession(ctx, intruder.ID, s1.ID); !errors.Is(err, service.ErrSessionNotAssigned) {
		t.Fatalf("got %v, want ErrSessionNotAssigned", err)
	}
}

func TestGetSessionMediaURLs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	admin := newAdmin()
	client := newClient(admin)
	f := newClientFixture(admin, client)
	s1 := sentSession(admin.ID, client.ID, "Semana 1")
	s1.VideoKey = "sessions/abc/videos/v1"
	f.sessions.sessions[s1.ID] = s1

	urls, err := f.svc.GetSessionMediaURLs(ctx, client.ID, s1.ID)
	if err != nil {
		t.Fatalf("GetSessionMediaURLs: %v", err)
	}
	if !strings.Contains(urls.VideoURL, s1.VideoKey) {
		t.Fatalf("VideoURL = %q", urls.VideoURL)
	}
	if urls.PDFURL != "" {
		t.Fatalf("PDFURL = %q, want empty when no PDF attached", urls.PDFURL)
	}
}

func TestGetCourseWithProgress(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	admin := newAdmin()
	client := newClient(admin)
	f := newClientFixture(admin, client)
	course := testCourse()
	f.courses.courses[course.ID] = course

	if _, err := f.svc.ToggleLessonComplete(ctx, client.ID, course.ID, "l1"); err != nil {
		t.Fatalf("ToggleLessonComplete: %v", err)
	}
	if _, err := f.svc.ToggleLessonComplete(ctx, client.ID, course.ID, "l3"); err != nil {
		t.Fatalf("ToggleLessonComplete: %v", err)
	}

	got, err := f.svc.GetCourseWithProgress(ctx, client.ID, course.ID)
	if err != nil {
		t.Fatalf("GetCourseWithProgress: %v", err)
	}
	if got.CompletionPct != 50 {
		t.Fatalf("CompletionPct = %v, want 50", got.CompletionPct)
	}
	if !got.Progress.IsCompleted("l1") || got.Progress.IsCompleted("l2") {
		t.Fatalf("progress record wrong: %+v", got.Progress)
	}
}

func TestToggleLessonCompleteUnknownLesson(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	admin := newAdmin()
	client := newClient(admin)
	f := newClientFixture(admin, client)
	course := testCourse()
	f.courses.courses[course.ID] = course

	if _, err := f.svc.ToggleLessonComplete(ctx, client.ID, course.ID, "nope"); !errors.Is(err, service.ErrLessonNotFound) {
		t.Fatalf("got %v, want ErrLessonNotFound", err)
	}
	if err := f.svc.SaveLessonNote(ctx, client.ID, course.ID, "nope", "x"); !errors.Is(err, service.ErrLessonNotFound) {
		t.Fatalf("got %v, want ErrLessonNotFound", err)
	}
}

func TestSaveLessonNoteRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	admin := newAdmin()
	client := newClient(admin)
	f := newClientFixture(admin, client)
	course := testCourse()
	f.courses.courses[course.ID] = course

	if err := f.svc.SaveLessonNote(ctx, client.ID, course.ID, "l2", "rever balança"); err != nil {
		t.Fatalf("SaveLessonNote: %v", err)
	}
	got, err := f.svc.GetCourseWithProgress(ctx, client.ID, course.ID)
	if err != nil {
		t.Fatalf("GetCourseWithProgress: %v", err)
	}
	if got.Progress.Notes["l2"] != "rever balança" {
		t.Fatalf("note = %q", got.Progress.Notes["l2"])
	}
}

func TestGetDashboard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	admin := newAdmin()
	client := newClient(admin)
	client.HeightCm = 165
	f := newClientFixture(admin, client)

	now := time.Now()
	for i, kg := range []float64{78.0, 78.6, 79.4} { // newest first
		f.weighIns.weighIns = append(f.weighIns.weighIns, domain.WeighIn{
			ID:         primitive.NewObjectID(),
			UserID:     client.ID,
			WeightKg:   kg,
			MeasuredAt: now.AddDate(0, 0, -i),
		})
	}

	dash, err := f.svc.GetDashboard(ctx, client.ID)
	if err != nil {
		t.Fatalf("GetDashboard: %v", err)
	}
	if dash.Stats == nil {
		t.Fatalf("Stats missing despite weigh-in history")
	}
	if dash.Trend == nil || *dash.Trend >= 0 {
		t.Fatalf("Trend = %v, want negative (losing weight)", dash.Trend)
	}
	if dash.IMC == nil {
		t.Fatalf("IMC missing despite recorded height")
	}
	// 78.0 / 1.65^2 = 28.65 -> sobrepeso
	if dash.IMCBand == "" {
		t.Fatalf("IMCBand missing")
	}
	if len(dash.WeighIns) != 3 {
		t.Fatalf("WeighIns = %d, want 3", len(dash.WeighIns))
	}
}
