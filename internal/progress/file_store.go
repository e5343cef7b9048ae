package progress

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fileStore keeps one JSON document per (user, course) under a data
// directory, mirrored in memory. When a write fails (full disk, read-only
// volume) the in-memory state keeps serving for the lifetime of the process
// instead of crashing the course view; the failure is logged and reported.
type fileStore struct {
	dir string

	mu    sync.Mutex
	cache map[string]*Record // key -> record, authoritative once loaded
}

// NewFileStore creates (if needed) the data directory and returns a Store
// backed by it.
func NewFileStore(dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create progress dir: %w", err)
	}
	return &fileStore{
		dir:   dir,
		cache: make(map[string]*Record),
	}, nil
}

// key matches the legacy browser-storage naming so exported data stays
// recognizable: course_progress_{userId}_{courseId}.
func key(userID, courseID primitive.ObjectID) string {
	return fmt.Sprintf("course_progress_%s_%s", userID.Hex(), courseID.Hex())
}

func (s *fileStore) path(k string) string {
	return filepath.Join(s.dir, k+".json")
}

// load returns the cached record, reading it from disk on first access.
// Missing or unparseable files yield an empty record.
func (s *fileStore) load(k string) *Record {
	if rec, ok := s.cache[k]; ok {
		return rec
	}
	rec := NewRecord()
	data, err := os.ReadFile(s.path(k))
	if err == nil {
		if err := json.Unmarshal(data, rec); err != nil {
			log.Printf("WARN: progress record %s is corrupt, resetting: %v", k, err)
			rec = NewRecord()
		}
	}
	if rec.Completed == nil {
		rec.Completed = make(map[string]bool)
	}
	if rec.Notes == nil {
		rec.Notes = make(map[string]string)
	}
	s.cache[k] = rec
	return rec
}

// persist writes the whole record. The in-memory state is already updated by
// the caller, so a failed write degrades to memory-only.
func (s *fileStore) persist(k string, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode progress record: %w", err)
	}
	if err := os.WriteFile(s.path(k), data, 0o644); err != nil {
		log.Printf("WARN: failed to persist progress record %s, keeping in-memory state: %v", k, err)
		return fmt.Errorf("persist progress record: %w", err)
	}
	return nil
}

func (s *fileStore) Load(userID, courseID primitive.ObjectID) *Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.load(key(userID, courseID))
	// Return a copy so callers cannot mutate the cache without persisting.
	out := NewRecord()
	for id, done := range rec.Completed {
		out.Completed[id] = done
	}
	for id, note := range rec.Notes {
		out.Notes[id] = note
	}
	return out
}

func (s *fileStore) ToggleComplete(userID, courseID primitive.ObjectID, lessonID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(userID, courseID)
	rec := s.load(k)
	if rec.Completed[lessonID] {
		delete(rec.Completed, lessonID)
	} else {
		rec.Completed[lessonID] = true
	}
	return rec.Completed[lessonID], s.persist(k, rec)
}

func (s *fileStore) SaveNote(userID, courseID primitive.ObjectID, lessonID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(userID, courseID)
	rec := s.load(k)
	if text == "" {
		delete(rec.Notes, lessonID)
	} else {
		rec.Notes[lessonID] = text
	}
	return s.persist(k, rec)
}
