// Package store provides storage backends for CoachPipe.
//
// It persists one SessionRecord per participant and session number, and
// includes an in-memory store plus SQLite and PostgreSQL implementations.
package store

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/BTreeMap/CoachPipe/internal/models"
	"github.com/google/uuid"
)

// Opts holds configuration for store constructors.
type Opts struct {
	DSN string
}

// Option configures a store constructor.
type Option func(*Opts)

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// Store is the persistence surface the session runner depends on. Loads
// for a missing record return models.ErrSessionNotFound.
type Store interface {
	SaveSessionRecord(rec models.SessionRecord) error
	GetSessionRecord(uid string, session int) (*models.SessionRecord, error)
	// LatestSessionRecord returns the record with the highest session
	// number for the participant; it seeds the next session.
	LatestSessionRecord(uid string) (*models.SessionRecord, error)
	ListSessions(uid string) ([]models.SessionInfo, error)
	Close() error
}

// NewUID mints a participant identifier for first-time users.
func NewUID() string {
	return uuid.NewString()
}

// DetectDSNType reports "postgres" for PostgreSQL connection strings and
// "sqlite" for anything else (assumed to be a file path).
func DetectDSNType(dsn string) string {
	if strings.Contains(dsn, "postgres://") || strings.Contains(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// InMemoryStore keeps session records in a map, for tests and the
// interactive runner.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]map[int]models.SessionRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]map[int]models.SessionRecord)}
}

func (s *InMemoryStore) SaveSessionRecord(rec models.SessionRecord) error {
	if err := rec.Validate(); err != nil {
		slog.Error("InMemoryStore SaveSessionRecord validation failed", "error", err, "uid", rec.UserProfile.UID)
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	uid := rec.UserProfile.UID
	if s.records[uid] == nil {
		s.records[uid] = make(map[int]models.SessionRecord)
	}
	s.records[uid][rec.SessionInfo.SessionNumber] = rec
	slog.Debug("InMemoryStore SaveSessionRecord succeeded", "uid", uid, "session", rec.SessionInfo.SessionNumber)
	return nil
}

func (s *InMemoryStore) GetSessionRecord(uid string, session int) (*models.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[uid][session]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	return &rec, nil
}

func (s *InMemoryStore) LatestSessionRecord(uid string) (*models.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *models.SessionRecord
	for n := range s.records[uid] {
		if latest == nil || n > latest.SessionInfo.SessionNumber {
			rec := s.records[uid][n]
			latest = &rec
		}
	}
	if latest == nil {
		return nil, models.ErrSessionNotFound
	}
	return latest, nil
}

func (s *InMemoryStore) ListSessions(uid string) ([]models.SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var infos []models.SessionInfo
	for _, rec := range s.records[uid] {
		infos = append(infos, rec.SessionInfo)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].SessionNumber < infos[j].SessionNumber })
	return infos, nil
}

func (s *InMemoryStore) Close() error { return nil }
