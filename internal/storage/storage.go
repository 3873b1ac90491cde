// Package storage persists wallet users and catalog snapshots.
package storage

import (
	"github.com/dense-analysis/coinvault/internal/model"
)

// Repository loads and saves the full user set and the quote catalog.
//
// The wallet writes users through on registration and disconnect, and writes
// catalog snapshots after every successful refresh.
type Repository interface {
	LoadUsers() ([]*model.User, error)
	SaveUsers(users []*model.User) error
	// LoadCatalog returns nil with no error when no snapshot was saved yet.
	LoadCatalog() (*model.Catalog, error)
	SaveCatalog(snapshot *model.Catalog) error
}
