package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Store persists one credential record per user as a JSON file under
// a single directory. File names follow the `.oauth2.<user_id>.json`
// convention so existing credential directories keep working.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates a store rooted at dir. The directory is created
// lazily on the first Save.
func NewStore(dir string) *Store {
	return &Store{
		dir:    dir,
		logger: slog.Default(),
	}
}

// SetLogger sets a custom logger for the store.
func (s *Store) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Dir returns the directory the store writes to.
func (s *Store) Dir() string {
	return s.dir
}

// path returns the credential file path for a user. The user id is
// sanitized so a crafted id cannot escape the store directory.
func (s *Store) path(userID string) string {
	name := strings.NewReplacer("/", "_", "\\", "_").Replace(userID)
	return filepath.Join(s.dir, fmt.Sprintf(".oauth2.%s.json", name))
}

// Load reads the persisted credential for a user. It returns
// ErrNotFound when no record exists and a *CorruptRecordError when a
// record exists but cannot be parsed; the two are never conflated.
func (s *Store) Load(userID string) (*Credential, error) {
	p := s.path(userID)

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read credential file: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, &CorruptRecordError{UserID: userID, Path: p, Err: err}
	}
	if cred.AccessToken == "" && cred.RefreshToken == "" {
		return nil, &CorruptRecordError{UserID: userID, Path: p, Err: errors.New("record contains no tokens")}
	}

	cred.UserID = userID
	return &cred, nil
}

// Save writes the credential record for a user atomically: the
// record is written to a temporary file and renamed into place, so a
// crash mid-write never leaves a torn record behind.
func (s *Store) Save(userID string, cred *Credential) error {
	if cred == nil {
		return errors.New("credential cannot be nil")
	}

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credential: %w", err)
	}

	p := s.path(userID)
	tmp, err := os.CreateTemp(s.dir, ".oauth2.*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write credential: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set credential file mode: %w", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace credential file: %w", err)
	}

	s.logger.Debug("saved credential record", "path", p, "expiry", cred.Expiry)
	return nil
}

// Delete removes the persisted record for a user and reports whether
// a record existed.
func (s *Store) Delete(userID string) (bool, error) {
	p := s.path(userID)
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete credential file: %w", err)
	}
	s.logger.Debug("deleted credential record", "path", p)
	return true, nil
}
