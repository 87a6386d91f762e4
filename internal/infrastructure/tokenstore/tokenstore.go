// Package tokenstore persists the session token pair on disk.
package tokenstore

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/expertchat/expertchat/internal/domain/session"
	"github.com/expertchat/expertchat/internal/utils/apperrors"
)

// Store keeps both tokens in one JSON file so they are saved and cleared as
// a pair. Writes go through a temp file and rename.
type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

var _ session.Storage = (*Store)(nil)

type tokenFile struct {
	AuthToken    string `json:"authToken"`
	RefreshToken string `json:"refreshToken"`
}

func (s *Store) SaveTokens(access, refresh string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return apperrors.New(apperrors.LayerStorage, apperrors.KindStorage, "unable to create token directory", err)
	}

	data, err := json.Marshal(tokenFile{AuthToken: access, RefreshToken: refresh})
	if err != nil {
		return apperrors.New(apperrors.LayerStorage, apperrors.KindStorage, "unable to encode tokens", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".tokens-*")
	if err != nil {
		return apperrors.New(apperrors.LayerStorage, apperrors.KindStorage, "unable to create token file", err)
	}
	tmpName := tmp.Name()
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperrors.New(apperrors.LayerStorage, apperrors.KindStorage, "unable to restrict token file", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperrors.New(apperrors.LayerStorage, apperrors.KindStorage, "unable to write tokens", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperrors.New(apperrors.LayerStorage, apperrors.KindStorage, "unable to close token file", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return apperrors.New(apperrors.LayerStorage, apperrors.KindStorage, "unable to commit token file", err)
	}
	return nil
}

// LoadTokens returns empty strings with a nil error when no pair has been
// saved yet.
func (s *Store) LoadTokens() (string, string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", "", nil
	}
	if err != nil {
		return "", "", apperrors.New(apperrors.LayerStorage, apperrors.KindStorage, "unable to read token file", err)
	}

	var file tokenFile
	if err := json.Unmarshal(data, &file); err != nil {
		return "", "", apperrors.New(apperrors.LayerStorage, apperrors.KindParsing, "token file is corrupt", err)
	}
	return file.AuthToken, file.RefreshToken, nil
}

func (s *Store) ClearTokens() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperrors.New(apperrors.LayerStorage, apperrors.KindStorage, "unable to remove token file", err)
	}
	return nil
}
