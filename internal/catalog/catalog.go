// Package catalog holds the latest set of asset quotes and refreshes it from
// a price source once its snapshot grows too old.
package catalog

import (
	"fmt"
	"log"
	"time"

	"github.com/dense-analysis/coinvault/internal/coinapi"
	"github.com/dense-analysis/coinvault/internal/model"
)

// FreshnessWindow is the maximum age a quote snapshot may have before the
// next read that needs prices triggers a refresh.
const FreshnessWindow = 30 * time.Minute

// Saver persists catalog snapshots after a successful refresh.
type Saver interface {
	SaveCatalog(snapshot *model.Catalog) error
}

// Catalog is the current set of quotes keyed by asset ID.
//
// Catalog is not safe for concurrent use; the wallet serializes access to it.
type Catalog struct {
	source    coinapi.Source
	saver     Saver
	quotes    map[string]model.Quote
	fetchedAt time.Time
}

// New creates an empty, stale catalog. The saver may be nil.
func New(source coinapi.Source, saver Saver) *Catalog {
	return &Catalog{
		source: source,
		saver:  saver,
		quotes: map[string]model.Quote{},
	}
}

// Restore replaces the catalog contents with a previously saved snapshot.
func (catalog *Catalog) Restore(snapshot *model.Catalog) {
	quotes := make(map[string]model.Quote, len(snapshot.Quotes))

	for _, quote := range snapshot.Quotes {
		quotes[quote.AssetID] = quote
	}

	catalog.quotes = quotes
	catalog.fetchedAt = snapshot.FetchedAt
}

// Snapshot copies the catalog contents for persistence.
func (catalog *Catalog) Snapshot() *model.Catalog {
	return &model.Catalog{
		Quotes:    catalog.Quotes(),
		FetchedAt: catalog.fetchedAt,
	}
}

// Stale reports whether the snapshot is older than the freshness window.
func (catalog *Catalog) Stale() bool {
	return time.Since(catalog.fetchedAt) > FreshnessWindow
}

// Refresh replaces every quote with a fresh set from the price source.
func (catalog *Catalog) Refresh() error {
	quotes, fetchedAt, err := catalog.source.Fetch()

	if err != nil {
		return fmt.Errorf("price refresh failed: %w", err)
	}

	replacement := make(map[string]model.Quote, len(quotes))

	for _, quote := range quotes {
		replacement[quote.AssetID] = quote
	}

	catalog.quotes = replacement
	catalog.fetchedAt = fetchedAt

	if catalog.saver != nil {
		// A failed save doesn't invalidate the quotes we just fetched.
		if err := catalog.saver.SaveCatalog(catalog.Snapshot()); err != nil {
			log.Printf("catalog save error: %s\n", err)
		}
	}

	return nil
}

// RefreshIfStale refreshes the catalog only when the snapshot is stale.
func (catalog *Catalog) RefreshIfStale() error {
	if catalog.Stale() {
		return catalog.Refresh()
	}

	return nil
}

// Lookup finds the quote for an asset ID without refreshing.
func (catalog *Catalog) Lookup(assetID string) (model.Quote, bool) {
	quote, ok := catalog.quotes[assetID]

	return quote, ok
}

// Quotes lists every quote in the catalog in no guaranteed order.
func (catalog *Catalog) Quotes() []model.Quote {
	quotes := make([]model.Quote, 0, len(catalog.quotes))

	for _, quote := range catalog.quotes {
		quotes = append(quotes, quote)
	}

	return quotes
}
