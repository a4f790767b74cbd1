// Package session holds the logged-in user of one browser session. The user
// record is mirrored into key/value storage under StorageKey so it survives
// restarts, and an idle timer logs the user out after a period without
// activity.
package session

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"animehub/internal/apperror"
	"animehub/internal/storage"
	"animehub/pkg/models"
)

const (
	StorageKey         = "user"
	DefaultIdleTimeout = 30 * time.Minute

	EventExpired   = "session.expired"
	ExpiredMessage = "You were logged out after a long period of inactivity."
)

// Users is the remote user collection.
type Users interface {
	List(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, u models.User) (*models.User, error)
	Replace(ctx context.Context, id string, u models.User) (*models.User, error)
}

// Notifier pushes an event to the pages open in a browser session.
type Notifier interface {
	Notify(sessionID string, event any)
}

type Event struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

type Notice struct {
	Kind string // "info" or "error"
	Text string
}

type Store struct {
	id       string
	users    Users
	storage  storage.Store
	notifier Notifier
	idle     time.Duration

	mu       sync.Mutex
	user     *models.User
	timer    *time.Timer
	gen      uint64
	notices  []Notice
	verified bool
	lastSeen time.Time
}

func NewStore(id string, users Users, st storage.Store, n Notifier, idle time.Duration) *Store {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &Store{
		id:       id,
		users:    users,
		storage:  st,
		notifier: n,
		idle:     idle,
		lastSeen: time.Now(),
	}
}

func (s *Store) ID() string { return s.id }

// Restore loads the stored user, if any. It makes no network call. A record
// that does not decode is removed from storage.
func (s *Store) Restore(ctx context.Context) error {
	raw, ok, err := s.storage.Get(ctx, s.id, StorageKey)
	if err != nil {
		return apperror.NewInternalError("read session storage", err)
	}
	if !ok {
		return nil
	}

	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u.UserID == "" {
		log.Printf("[session] %s: dropping malformed stored user", s.short())
		_ = s.storage.Delete(ctx, s.id, StorageKey)
		return nil
	}
	if u.Favorite == nil {
		u.Favorite = []string{}
	}

	s.mu.Lock()
	s.user = &u
	s.armLocked()
	s.mu.Unlock()
	return nil
}

// Login looks the user up in the remote collection by exact id and password.
func (s *Store) Login(ctx context.Context, userID, password string) error {
	all, err := s.users.List(ctx)
	if err != nil {
		log.Printf("[session] login: %v", err)
		return err
	}

	var found *models.User
	for i := range all {
		if all[i].UserID == userID && all[i].Password == password {
			found = &all[i]
			break
		}
	}
	if found == nil {
		return apperror.NewAuthError("invalid id or password")
	}
	if found.Favorite == nil {
		found.Favorite = []string{}
	}

	s.set(ctx, *found)
	return nil
}

// Signup creates a remote user with no favorites. It does not log in.
func (s *Store) Signup(ctx context.Context, userID, password, email, profileImage string) error {
	all, err := s.users.List(ctx)
	if err != nil {
		log.Printf("[session] signup: %v", err)
		return err
	}
	for _, u := range all {
		if u.UserID == userID {
			return apperror.NewConflictError("that id is already taken")
		}
	}

	_, err = s.users.Create(ctx, models.User{
		UserID:       userID,
		Password:     password,
		Email:        email,
		ProfileImage: profileImage,
		Favorite:     []string{},
	})
	if err != nil {
		log.Printf("[session] signup create: %v", err)
		return err
	}
	return nil
}

// IDAvailable reports whether no remote user has userID.
func (s *Store) IDAvailable(ctx context.Context, userID string) (bool, error) {
	all, err := s.users.List(ctx)
	if err != nil {
		return false, err
	}
	for _, u := range all {
		if u.UserID == userID {
			return false, nil
		}
	}
	return true, nil
}

// UpdateCurrentUser merges p into the current user and PUTs the whole
// record. The session only changes once the service accepts it.
func (s *Store) UpdateCurrentUser(ctx context.Context, p models.UserPatch) error {
	cur, ok := s.Current()
	if !ok {
		return apperror.NewAuthError("login required")
	}

	merged := cur.Apply(p)
	saved, err := s.users.Replace(ctx, cur.ID, merged)
	if err != nil {
		log.Printf("[session] update %s: %v", cur.UserID, err)
		return err
	}
	if saved.Favorite == nil {
		saved.Favorite = []string{}
	}

	s.mu.Lock()
	// a logout while the PUT was in flight wins
	if s.user == nil || s.user.ID != cur.ID {
		s.mu.Unlock()
		return apperror.NewAuthError("login required")
	}
	s.user = saved
	s.mu.Unlock()

	s.persist(ctx, *saved)
	return nil
}

// Logout clears the user from memory and storage. Calling it when nobody is
// logged in is a no-op.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.clearLocked()
	s.mu.Unlock()

	if err := s.storage.Delete(ctx, s.id, StorageKey); err != nil {
		log.Printf("[session] %s: clear storage: %v", s.short(), err)
	}
}

// Touch records activity and restarts the idle countdown.
func (s *Store) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	if s.user != nil {
		s.armLocked()
	}
}

func (s *Store) Current() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return models.User{}, false
	}
	return s.user.Apply(models.UserPatch{}), true
}

func (s *Store) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

func (s *Store) AddNotice(kind, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, Notice{Kind: kind, Text: text})
}

// Notices returns and clears the queued notices.
func (s *Store) Notices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notices
	s.notices = nil
	return out
}

// Verified reports whether the password was re-entered for profile editing.
func (s *Store) Verified() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verified && s.user != nil
}

func (s *Store) SetVerified(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verified = v
}

func (s *Store) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Store) set(ctx context.Context, u models.User) {
	s.mu.Lock()
	s.user = &u
	s.verified = false
	s.armLocked()
	s.mu.Unlock()

	s.persist(ctx, u)
}

func (s *Store) persist(ctx context.Context, u models.User) {
	b, err := json.Marshal(u)
	if err != nil {
		log.Printf("[session] %s: encode user: %v", s.short(), err)
		return
	}
	if err := s.storage.Set(ctx, s.id, StorageKey, string(b)); err != nil {
		log.Printf("[session] %s: write storage: %v", s.short(), err)
	}
}

func (s *Store) armLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(s.idle, func() { s.expire(gen) })
}

func (s *Store) clearLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	s.user = nil
	s.verified = false
}

// expire runs on the timer goroutine. A stale generation means the timer was
// re-armed or stopped after it fired.
func (s *Store) expire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.user == nil {
		s.mu.Unlock()
		return
	}
	who := s.user.UserID
	s.clearLocked()
	s.notices = append(s.notices, Notice{Kind: "error", Text: ExpiredMessage})
	s.mu.Unlock()

	log.Printf("[session] %s: %s logged out after %s idle", s.short(), who, s.idle)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.storage.Delete(ctx, s.id, StorageKey); err != nil {
		log.Printf("[session] %s: clear storage: %v", s.short(), err)
	}

	if s.notifier != nil {
		s.notifier.Notify(s.id, Event{Type: EventExpired, Message: ExpiredMessage})
	}
}

func (s *Store) short() string {
	if len(s.id) > 8 {
		return s.id[:8]
	}
	return s.id
}
