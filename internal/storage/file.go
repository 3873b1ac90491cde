package storage

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dense-analysis/coinvault/internal/model"
)

const usersFilename = "users.json"
const catalogFilename = "catalog.json"

// FileRepository stores users and catalog snapshots as JSON documents in a
// single directory.
type FileRepository struct {
	directory string
}

// NewFileRepository creates a repository rooted at a directory, creating the
// directory when it doesn't exist yet.
func NewFileRepository(directory string) (*FileRepository, error) {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, err
	}

	return &FileRepository{directory: directory}, nil
}

func (repository *FileRepository) readFile(filename string, ptr any) (bool, error) {
	content, err := os.ReadFile(filepath.Join(repository.directory, filename))

	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}

		return false, err
	}

	if len(content) == 0 {
		return false, nil
	}

	return true, json.Unmarshal(content, ptr)
}

func (repository *FileRepository) writeFile(filename string, data any) error {
	content, err := json.Marshal(data)

	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(repository.directory, filename), content, 0o644)
}

// LoadUsers reads every saved user, or none when nothing was saved yet.
func (repository *FileRepository) LoadUsers() ([]*model.User, error) {
	var users []*model.User

	found, err := repository.readFile(usersFilename, &users)

	if err != nil {
		return nil, err
	}

	if !found {
		return nil, nil
	}

	// Users saved before making any investment have no position map yet.
	for _, user := range users {
		if user.Positions == nil {
			user.Positions = map[string]model.Position{}
		}
	}

	return users, nil
}

// SaveUsers replaces the saved user set.
func (repository *FileRepository) SaveUsers(users []*model.User) error {
	return repository.writeFile(usersFilename, users)
}

// LoadCatalog reads the saved quote snapshot, or nil when there is none.
func (repository *FileRepository) LoadCatalog() (*model.Catalog, error) {
	var snapshot model.Catalog

	found, err := repository.readFile(catalogFilename, &snapshot)

	if err != nil || !found {
		return nil, err
	}

	return &snapshot, nil
}

// SaveCatalog replaces the saved quote snapshot.
func (repository *FileRepository) SaveCatalog(snapshot *model.Catalog) error {
	return repository.writeFile(catalogFilename, snapshot)
}
