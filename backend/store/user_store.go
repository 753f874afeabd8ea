package store

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"ailearn/backend/models"
)

var (
	ErrDuplicateUser = errors.New("username already exists")
	ErrUnknownUser   = errors.New("unknown user")
	// ErrCorruptStore is returned when the users file exists but cannot be
	// decoded. The store continues with an empty map; callers decide whether
	// to log or ignore.
	ErrCorruptStore = errors.New("users file is corrupt")
)

// UserStore persists user records in a single JSON file keyed by username.
// Every read reloads the file first so edits made outside the process are
// picked up. Writes marshal the whole map back out. Concurrent writers in
// separate processes can still lose updates; acceptable for a local
// single-user tool.
type UserStore struct {
	mu     sync.Mutex
	path   string
	users  map[string]*models.User
	logger *log.Logger
}

// NewUserStore opens the store at path. A missing file means no users yet;
// a corrupt file is reported via ErrCorruptStore but the store stays usable.
func NewUserStore(path string) (*UserStore, error) {
	s := &UserStore{
		path:  path,
		users: make(map[string]*models.User),
	}
	if err := s.load(); err != nil {
		return s, err
	}
	return s, nil
}

// SetLogger enables warnings for reload failures during mutations.
func (s *UserStore) SetLogger(logger *log.Logger) {
	s.logger = logger
}

func (s *UserStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.users = make(map[string]*models.User)
			return nil
		}
		// An unreadable file is an I/O problem, not corruption.
		s.users = make(map[string]*models.User)
		return err
	}

	users := make(map[string]*models.User)
	if err := json.Unmarshal(data, &users); err != nil {
		s.users = make(map[string]*models.User)
		return errors.Join(ErrCorruptStore, err)
	}
	s.users = users
	return nil
}

// reload refreshes the map from disk ahead of an operation. If the file
// went bad under us the operation proceeds on an empty map, and the failure
// is logged rather than swallowed.
func (s *UserStore) reload() {
	if err := s.load(); err != nil && s.logger != nil {
		s.logger.Printf("warning: reloading %s: %v", s.path, err)
	}
}

func (s *UserStore) save() error {
	data, err := json.MarshalIndent(s.users, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, data, 0600)
}

// CreateUser stores a new record with a bcrypt hash of password. Returns
// ErrDuplicateUser if the username is taken. Password policy (minimum
// length) is the caller's job.
func (s *UserStore) CreateUser(username, password, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reload()
	if _, exists := s.users[username]; exists {
		return ErrDuplicateUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	s.users[username] = &models.User{
		Username:     username,
		PasswordHash: string(hash),
		Email:        email,
		CreatedAt:    time.Now().UTC(),
	}
	return s.save()
}

// VerifyUser reports whether the password matches the stored hash.
// Unknown users verify false.
func (s *UserStore) VerifyUser(username, password string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reload()
	user, exists := s.users[username]
	if !exists {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// TouchLogin records a successful login timestamp.
func (s *UserStore) TouchLogin(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reload()
	user, exists := s.users[username]
	if !exists {
		return ErrUnknownUser
	}
	now := time.Now().UTC()
	user.LastLogin = &now
	return s.save()
}

// SaveAPIKey writes the key into the user's record and reloads the file so
// the next read sees exactly what was persisted.
func (s *UserStore) SaveAPIKey(username, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reload()
	user, exists := s.users[username]
	if !exists {
		return ErrUnknownUser
	}
	user.APIKey = key
	if err := s.save(); err != nil {
		return err
	}
	return s.load()
}

// GetAPIKey returns the user's saved provider key, if any.
func (s *UserStore) GetAPIKey(username string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reload()
	user, exists := s.users[username]
	if !exists || user.APIKey == "" {
		return "", false
	}
	return user.APIKey, true
}

// Get returns a snapshot of the user's record.
func (s *UserStore) Get(username string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reload()
	user, exists := s.users[username]
	if !exists {
		return models.User{}, false
	}
	return *user, true
}
