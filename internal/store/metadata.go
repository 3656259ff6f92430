package store

import (
	"database/sql"
)

const (
	metaAdminPasswordHash = "admin_password_hash"
	metaRosterFilePrefix  = "imported_roster:"
)

// SetMetadata upserts a key-value pair in the exam_metadata table.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO exam_metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = ?`,
		key, value, value,
	)
	return err
}

// GetMetadata returns the value for a metadata key.
// Returns empty string and nil error if the key is missing.
func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM exam_metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetAdminPasswordHash stores the administrator credential hash.
func (s *Store) SetAdminPasswordHash(hash string) error {
	return s.SetMetadata(metaAdminPasswordHash, hash)
}

// GetAdminPasswordHash returns the administrator credential hash, or ""
// when no admin has been seeded yet.
func (s *Store) GetAdminPasswordHash() (string, error) {
	return s.GetMetadata(metaAdminPasswordHash)
}

// GetImportedRosterHash returns the content hash recorded for a roster
// file path, or "" if the file was never imported.
func (s *Store) GetImportedRosterHash(path string) (string, error) {
	return s.GetMetadata(metaRosterFilePrefix + path)
}

// SetImportedRosterHash records the content hash for an imported roster file.
func (s *Store) SetImportedRosterHash(path, hash string) error {
	return s.SetMetadata(metaRosterFilePrefix+path, hash)
}
