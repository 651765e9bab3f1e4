// Package memory provides an in-process repository.Store. Multi-step
// mutations run against a cloned state that replaces the live one only when
// the transaction function succeeds.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"devrush/internal/model"
	"devrush/internal/repository"
)

type state struct {
	users       []model.User
	teams       map[uuid.UUID]*model.Team
	teamOrder   []uuid.UUID
	codes       map[string]uuid.UUID
	memberIndex map[uuid.UUID]uuid.UUID // user id -> team id
	submissions map[uuid.UUID]model.Submission
	subOrder    []uuid.UUID // team ids in submission order
	nextMember  uint
}

func newState() *state {
	return &state{
		teams:       map[uuid.UUID]*model.Team{},
		codes:       map[string]uuid.UUID{},
		memberIndex: map[uuid.UUID]uuid.UUID{},
		submissions: map[uuid.UUID]model.Submission{},
	}
}

func (s *state) clone() *state {
	c := &state{
		users:       slices.Clone(s.users),
		teams:       make(map[uuid.UUID]*model.Team, len(s.teams)),
		teamOrder:   slices.Clone(s.teamOrder),
		codes:       make(map[string]uuid.UUID, len(s.codes)),
		memberIndex: make(map[uuid.UUID]uuid.UUID, len(s.memberIndex)),
		submissions: make(map[uuid.UUID]model.Submission, len(s.submissions)),
		subOrder:    slices.Clone(s.subOrder),
		nextMember:  s.nextMember,
	}
	for id, t := range s.teams {
		cp := copyTeam(t)
		c.teams[id] = &cp
	}
	for k, v := range s.codes {
		c.codes[k] = v
	}
	for k, v := range s.memberIndex {
		c.memberIndex[k] = v
	}
	for k, v := range s.submissions {
		c.submissions[k] = copySubmission(v)
	}
	return c
}

func copyTeam(t *model.Team) model.Team {
	cp := *t
	cp.Members = slices.Clone(t.Members)
	return cp
}

func copySubmission(s model.Submission) model.Submission {
	s.TechStack = slices.Clone(s.TechStack)
	return s
}

// access abstracts over the locked live state and an unlocked transaction clone.
type access interface {
	read(fn func(st *state) error) error
	write(fn func(st *state) error) error
}

// Store is an in-memory repository.Store safe for concurrent use.
type Store struct {
	mu sync.RWMutex
	st *state
}

var _ repository.Store = (*Store)(nil)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{st: newState()}
}

func (s *Store) read(fn func(st *state) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.st)
}

func (s *Store) write(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.st.clone()
	if err := fn(next); err != nil {
		return err
	}
	s.st = next
	return nil
}

func (s *Store) Users() repository.UserRepository { return &userRepository{a: s} }
func (s *Store) Teams() repository.TeamRepository { return &teamRepository{a: s} }
func (s *Store) Submissions() repository.SubmissionRepository { return &submissionRepository{a: s} }

// WithTransaction holds the write lock for the duration of fn.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	return s.write(func(st *state) error {
		return fn(ctx, &txStore{st: st})
	})
}

// txStore operates on a clone owned by a running transaction.
type txStore struct {
	st *state
}

func (t *txStore) read(fn func(st *state) error) error { return fn(t.st) }
func (t *txStore) write(fn func(st *state) error) error { return fn(t.st) }

func (t *txStore) Users() repository.UserRepository { return &userRepository{a: t} }
func (t *txStore) Teams() repository.TeamRepository { return &teamRepository{a: t} }
func (t *txStore) Submissions() repository.SubmissionRepository { return &submissionRepository{a: t} }

// WithTransaction joins the running transaction.
func (t *txStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	return fn(ctx, t)
}
