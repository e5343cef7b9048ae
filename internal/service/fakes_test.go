package service_test

import (
	"context"
	"sync"
	"time"

	"vidaleve/coaching-app/internal/domain"
	"vidaleve/coaching-app/internal/progress"
	"vidaleve/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory fakes for the repository interfaces. They hold slices guarded by
// a mutex so the fan-out tests can hit them concurrently.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	r.users[user.ID] = user
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) AddClientIDToAdmin(ctx context.Context, adminID, clientID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	admin, ok := r.users[adminID]
	if !ok {
		return repository.ErrNotFound
	}
	admin.ClientIDs = append(admin.ClientIDs, clientID)
	return nil
}

func (r *fakeUserRepo) GetClientsByAdminID(ctx context.Context, adminID primitive.ObjectID) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, u := range r.users {
		if u.AdminID != nil && *u.AdminID == adminID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) SetAdminForClient(ctx context.Context, clientID, adminID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	client, ok := r.users[clientID]
	if !ok {
		return repository.ErrNotFound
	}
	client.AdminID = &adminID
	return nil
}

func (r *fakeUserRepo) UpdateHeight(ctx context.Context, userID primitive.ObjectID, heightCm float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.HeightCm = heightCm
	return nil
}

type fakeWeighInRepo struct {
	mu       sync.Mutex
	weighIns []domain.WeighIn
}

func (r *fakeWeighInRepo) Create(ctx context.Context, w *domain.WeighIn) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w.ID = primitive.NewObjectID()
	r.weighIns = append(r.weighIns, *w)
	return w.ID, nil
}

func (r *fakeWeighInRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID, limit int64) ([]domain.WeighIn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.WeighIn
	for _, w := range r.weighIns {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeWeighInRepo) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, w := range r.weighIns {
		if w.ID == id && w.UserID == userID {
			r.weighIns = append(r.weighIns[:i], r.weighIns[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeDailyRepo struct {
	mu       sync.Mutex
	missions map[primitive.ObjectID][]domain.DailyMission
	scores   map[primitive.ObjectID][]domain.DailyScore

	// Concurrency probe for the fan-out tests.
	inflight    int
	maxInflight int
	delay       time.Duration
}

func newFakeDailyRepo() *fakeDailyRepo {
	return &fakeDailyRepo{
		missions: make(map[primitive.ObjectID][]domain.DailyMission),
		scores:   make(map[primitive.ObjectID][]domain.DailyScore),
	}
}

func (r *fakeDailyRepo) enter() {
	r.mu.Lock()
	r.inflight++
	if r.inflight > r.maxInflight {
		r.maxInflight = r.inflight
	}
	d := r.delay
	r.mu.Unlock()
	if d > 0 {
		time.Sleep(d)
	}
}

func (r *fakeDailyRepo) exit() {
	r.mu.Lock()
	r.inflight--
	r.mu.Unlock()
}

func (r *fakeDailyRepo) GetMissionsByUserID(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]domain.DailyMission, error) {
	r.enter()
	defer r.exit()
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.missions[userID], nil
}

func (r *fakeDailyRepo) GetScoresByUserID(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]domain.DailyScore, error) {
	r.enter()
	defer r.exit()
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scores[userID], nil
}

type fakeGoalRepo struct {
	mu    sync.Mutex
	goals map[primitive.ObjectID]*domain.Goal
}

func newFakeGoalRepo() *fakeGoalRepo {
	return &fakeGoalRepo{goals: make(map[primitive.ObjectID]*domain.Goal)}
}

func (r *fakeGoalRepo) Create(ctx context.Context, goal *domain.Goal) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	goal.ID = primitive.NewObjectID()
	cp := *goal
	r.goals[goal.ID] = &cp
	return goal.ID, nil
}

func (r *fakeGoalRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.goals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (r *fakeGoalRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Goal
	for _, g := range r.goals {
		if g.UserID == userID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *fakeGoalRepo) UpdateProgress(ctx context.Context, id primitive.ObjectID, p int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.goals[id]
	if !ok {
		return repository.ErrNotFound
	}
	g.Progress = p
	return nil
}

func (r *fakeGoalRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.goals[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.goals, id)
	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[primitive.ObjectID]*domain.Session

	inflight    int
	maxInflight int
	delay       time.Duration
}

func newFakeSessionRepo(sessions ...*domain.Session) *fakeSessionRepo {
	r := &fakeSessionRepo{sessions: make(map[primitive.ObjectID]*domain.Session)}
	for _, s := range sessions {
		r.sessions[s.ID] = s
	}
	return r
}

func (r *fakeSessionRepo) Create(ctx context.Context, s *domain.Session) (primitive.ObjectID, error) {
	r.mu.Lock()
	r.inflight++
	if r.inflight > r.maxInflight {
		r.maxInflight = r.inflight
	}
	d := r.delay
	r.mu.Unlock()
	if d > 0 {
		time.Sleep(d)
	}

	r.mu.Lock()
	defer func() {
		r.inflight--
		r.mu.Unlock()
	}()
	s.ID = primitive.NewObjectID()
	if s.Status == "" {
		s.Status = domain.SessionSent
		s.SentAt = time.Now()
	}
	cp := *s
	r.sessions[s.ID] = &cp
	return s.ID, nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) GetByAssignee(ctx context.Context, clientID primitive.ObjectID) ([]domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Session
	for _, s := range r.sessions {
		if s.AssignedTo == clientID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) GetByCreator(ctx context.Context, adminID primitive.ObjectID) ([]domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Session
	for _, s := range r.sessions {
		if s.CreatedBy == adminID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

type fakeSaboteurRepo struct {
	mu        sync.Mutex
	saboteurs map[primitive.ObjectID]*domain.Saboteur
}

func newFakeSaboteurRepo() *fakeSaboteurRepo {
	return &fakeSaboteurRepo{saboteurs: make(map[primitive.ObjectID]*domain.Saboteur)}
}

func (r *fakeSaboteurRepo) Create(ctx context.Context, s *domain.Saboteur) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.saboteurs {
		if existing.Name == s.Name {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	s.ID = primitive.NewObjectID()
	cp := *s
	r.saboteurs[s.ID] = &cp
	return s.ID, nil
}

func (r *fakeSaboteurRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Saboteur, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.saboteurs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSaboteurRepo) GetAll(ctx context.Context, activeOnly bool) ([]domain.Saboteur, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Saboteur
	for _, s := range r.saboteurs {
		if activeOnly && !s.IsActive {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (r *fakeSaboteurRepo) Update(ctx context.Context, s *domain.Saboteur) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.saboteurs[s.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, existing := range r.saboteurs {
		if id != s.ID && existing.Name == s.Name {
			return repository.ErrDuplicate
		}
	}
	cp := *s
	r.saboteurs[s.ID] = &cp
	return nil
}

func (r *fakeSaboteurRepo) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.saboteurs[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.IsActive = active
	return nil
}

func (r *fakeSaboteurRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.saboteurs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.saboteurs, id)
	return nil
}

type fakeAIConfigRepo struct {
	mu      sync.Mutex
	configs map[string]*domain.AIConfiguration
}

func newFakeAIConfigRepo() *fakeAIConfigRepo {
	return &fakeAIConfigRepo{configs: make(map[string]*domain.AIConfiguration)}
}

func (r *fakeAIConfigRepo) Upsert(ctx context.Context, cfg *domain.AIConfiguration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *cfg
	if existing, ok := r.configs[cfg.Functionality]; ok {
		cp.ID = existing.ID
	} else {
		cp.ID = primitive.NewObjectID()
	}
	r.configs[cfg.Functionality] = &cp
	return nil
}

func (r *fakeAIConfigRepo) GetByFunctionality(ctx context.Context, functionality string) (*domain.AIConfiguration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg, ok := r.configs[functionality]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *cfg
	return &cp, nil
}

func (r *fakeAIConfigRepo) GetAll(ctx context.Context) ([]domain.AIConfiguration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AIConfiguration
	for _, cfg := range r.configs {
		out = append(out, *cfg)
	}
	return out, nil
}

type fakeCourseRepo struct {
	mu      sync.Mutex
	courses map[primitive.ObjectID]*domain.Course
}

func newFakeCourseRepo(courses ...*domain.Course) *fakeCourseRepo {
	r := &fakeCourseRepo{courses: make(map[primitive.ObjectID]*domain.Course)}
	for _, c := range courses {
		r.courses[c.ID] = c
	}
	return r
}

func (r *fakeCourseRepo) Create(ctx context.Context, c *domain.Course) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = primitive.NewObjectID()
	cp := *c
	r.courses[c.ID] = &cp
	return c.ID, nil
}

func (r *fakeCourseRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCourseRepo) GetAll(ctx context.Context) ([]domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Course
	for _, c := range r.courses {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCourseRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.courses, id)
	return nil
}

type fakeMediaRepo struct {
	mu      sync.Mutex
	uploads map[primitive.ObjectID]*domain.MediaUpload
}

func newFakeMediaRepo() *fakeMediaRepo {
	return &fakeMediaRepo{uploads: make(map[primitive.ObjectID]*domain.MediaUpload)}
}

func (r *fakeMediaRepo) Create(ctx context.Context, u *domain.MediaUpload) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = primitive.NewObjectID()
	cp := *u
	r.uploads[u.ID] = &cp
	return u.ID, nil
}

func (r *fakeMediaRepo) GetBySessionID(ctx context.Context, sessionID primitive.ObjectID) ([]domain.MediaUpload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.MediaUpload
	for _, u := range r.uploads {
		if u.SessionID != nil && *u.SessionID == sessionID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeMediaRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.uploads[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.uploads, id)
	return nil
}

// fakeMediaStorage fabricates predictable URLs instead of talking to S3.
type fakeMediaStorage struct {
	mu      sync.Mutex
	deleted []string
}

func (s *fakeMediaStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey, contentType string, expires time.Duration) (string, error) {
	return "https://media.test/upload/" + objectKey, nil
}

func (s *fakeMediaStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	return "https://media.test/download/" + objectKey, nil
}

func (s *fakeMediaStorage) DeleteObject(ctx context.Context, objectKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, objectKey)
	return nil
}

// fakeProgressStore is an in-memory progress.Store.
type fakeProgressStore struct {
	mu      sync.Mutex
	records map[string]*progress.Record
}

func newFakeProgressStore() *fakeProgressStore {
	return &fakeProgressStore{records: make(map[string]*progress.Record)}
}

func (s *fakeProgressStore) key(userID, courseID primitive.ObjectID) string {
	return userID.Hex() + "/" + courseID.Hex()
}

func (s *fakeProgressStore) Load(userID, courseID primitive.ObjectID) *progress.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[s.key(userID, courseID)]
	if !ok {
		return progress.NewRecord()
	}
	cp := progress.NewRecord()
	for k, v := range r.Completed {
		cp.Completed[k] = v
	}
	for k, v := range r.Notes {
		cp.Notes[k] = v
	}
	return cp
}

func (s *fakeProgressStore) ToggleComplete(userID, courseID primitive.ObjectID, lessonID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := s.key(userID, courseID)
	r, ok := s.records[k]
	if !ok {
		r = progress.NewRecord()
		s.records[k] = r
	}
	if r.Completed[lessonID] {
		delete(r.Completed, lessonID)
		return false, nil
	}
	r.Completed[lessonID] = true
	return true, nil
}

func (s *fakeProgressStore) SaveNote(userID, courseID primitive.ObjectID, lessonID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := s.key(userID, courseID)
	r, ok := s.records[k]
	if !ok {
		r = progress.NewRecord()
		s.records[k] = r
	}
	if text == "" {
		delete(r.Notes, lessonID)
		return nil
	}
	r.Notes[lessonID] = text
	return nil
}
