package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/99minutos/project-registry/internal/core/domain"
	"github.com/99minutos/project-registry/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory store
// ---------------------------------------------------------------------------

type memStore struct {
	mu         sync.Mutex
	identities map[int64]*domain.Identity
	projects   map[int64]*domain.Project
	nextID     int64
	findErr    error // if set, identity lookups return this error
	txCalls    int
}

func newMemStore() *memStore {
	return &memStore{
		identities: make(map[int64]*domain.Identity),
		projects:   make(map[int64]*domain.Project),
	}
}

func (s *memStore) Identities() ports.IdentityRepository { return memIdentities{s} }
func (s *memStore) Projects() ports.ProjectRepository    { return memProjects{s} }
func (s *memStore) Ping(context.Context) error           { return nil }
func (s *memStore) Close() error                         { return nil }

func (s *memStore) WithTx(_ context.Context, fn func(tx ports.Store) error) error {
	s.mu.Lock()
	s.txCalls++
	s.mu.Unlock()
	return fn(s)
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

type memIdentities struct{ s *memStore }

func (r memIdentities) Create(_ context.Context, identity *domain.Identity) (*domain.Identity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.identities {
		if existing.Username == identity.Username {
			return nil, domain.ErrDuplicateUsername
		}
	}
	clone := *identity
	clone.ID = r.s.id()
	r.s.identities[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r memIdentities) FindByUsername(_ context.Context, username string) (*domain.Identity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.findErr != nil {
		return nil, r.s.findErr
	}
	for _, existing := range r.s.identities {
		if existing.Username == username {
			clone := *existing
			return &clone, nil
		}
	}
	return nil, domain.ErrIdentityNotFound
}

func (r memIdentities) FindByID(_ context.Context, id int64) (*domain.Identity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.findErr != nil {
		return nil, r.s.findErr
	}
	existing, ok := r.s.identities[id]
	if !ok {
		return nil, domain.ErrIdentityNotFound
	}
	clone := *existing
	return &clone, nil
}

func (r memIdentities) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.identities[id]; !ok {
		return domain.ErrIdentityNotFound
	}
	delete(r.s.identities, id)
	return nil
}

type memProjects struct{ s *memStore }

func (r memProjects) Create(_ context.Context, p *domain.Project) (*domain.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	clone := *p
	clone.ID = r.s.id()
	r.s.projects[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r memProjects) FindByID(_ context.Context, id int64) (*domain.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	clone := *existing
	return &clone, nil
}

func (r memProjects) List(context.Context) ([]*domain.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*domain.Project, 0, len(r.s.projects))
	for _, p := range r.s.projects {
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memProjects) Update(_ context.Context, p *domain.Project) (*domain.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.projects[p.ID]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	existing.Name = p.Name
	existing.Description = p.Description
	existing.UpdatedAt = p.UpdatedAt
	clone := *existing
	return &clone, nil
}

func (r memProjects) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[id]; !ok {
		return domain.ErrProjectNotFound
	}
	delete(r.s.projects, id)
	return nil
}

// ---------------------------------------------------------------------------
// Security stubs
// ---------------------------------------------------------------------------

// prefixHasher "hashes" by prefixing; "corrupt" hashes fail verification.
type prefixHasher struct{}

func (prefixHasher) Hash(plaintext string) (string, error) { return "hashed:" + plaintext, nil }

func (prefixHasher) Verify(plaintext, hash string) (bool, error) {
	if !strings.HasPrefix(hash, "hashed:") {
		return false, domain.ErrCorruptCredential
	}
	return hash == "hashed:"+plaintext, nil
}

// stubTokens encodes "<sub>|<role>|<unix exp>" and checks expiry against now.
type stubTokens struct {
	now func() time.Time
}

func (t stubTokens) Issue(subjectID int64, role domain.Role, ttl time.Duration) (string, time.Time, error) {
	exp := t.now().Add(ttl)
	return fmt.Sprintf("%d|%s|%d", subjectID, role, exp.Unix()), exp, nil
}

func (t stubTokens) Verify(token string) (domain.Claims, error) {
	parts := strings.Split(token, "|")
	if len(parts) != 3 {
		return domain.Claims{}, domain.ErrInvalidToken
	}
	sub, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return domain.Claims{}, domain.ErrInvalidToken
	}
	exp, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || !t.now().Before(time.Unix(exp, 0)) {
		return domain.Claims{}, domain.ErrInvalidToken
	}
	return domain.Claims{Subject: sub, Role: domain.Role(parts[1]), ExpiresAt: time.Unix(exp, 0)}, nil
}

// ---------------------------------------------------------------------------
// Cache and event stubs
// ---------------------------------------------------------------------------

type memCache struct {
	mu          sync.Mutex
	list        []*domain.Project
	ok          bool
	gen         int64
	getErr      error
	gets        int
	invalidated int
	staleSets   int
}

func (c *memCache) GetList(context.Context) ([]*domain.Project, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.getErr != nil {
		return nil, 0, false, c.getErr
	}
	return c.list, c.gen, c.ok, nil
}

func (c *memCache) SetList(_ context.Context, gen int64, projects []*domain.Project) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		c.staleSets++
		return nil
	}
	c.list, c.ok = projects, true
	return nil
}

func (c *memCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	c.gen++
	c.list, c.ok = nil, false
	return nil
}

// pausingStore wraps memStore so a List can be held after it has read the
// table and before it returns.
type pausingStore struct {
	*memStore
	listed chan struct{}
	resume chan struct{}
}

func newPausingStore() *pausingStore {
	return &pausingStore{
		memStore: newMemStore(),
		listed:   make(chan struct{}),
		resume:   make(chan struct{}),
	}
}

func (s *pausingStore) Projects() ports.ProjectRepository {
	return pausingProjects{ProjectRepository: s.memStore.Projects(), s: s}
}

type pausingProjects struct {
	ports.ProjectRepository
	s *pausingStore
}

func (r pausingProjects) List(ctx context.Context) ([]*domain.Project, error) {
	projects, err := r.ProjectRepository.List(ctx)
	if r.s.listed != nil {
		listed := r.s.listed
		r.s.listed = nil
		close(listed)
		<-r.s.resume
	}
	return projects, err
}

type memQueue struct {
	events []domain.ProjectEvent
}

func (q *memQueue) Enqueue(event domain.ProjectEvent) bool {
	q.events = append(q.events, event)
	return true
}

var errStorageDown = errors.New("storage down")
