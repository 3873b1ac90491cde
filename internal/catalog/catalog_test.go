package catalog

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dense-analysis/coinvault/internal/model"
)

type fakeSource struct {
	quotes []model.Quote
	err    error
	calls  int
}

func (source *fakeSource) Fetch() ([]model.Quote, time.Time, error) {
	source.calls++

	if source.err != nil {
		return nil, time.Time{}, source.err
	}

	return source.quotes, time.Now(), nil
}

type fakeSaver struct {
	saved *model.Catalog
	err   error
}

func (saver *fakeSaver) SaveCatalog(snapshot *model.Catalog) error {
	saver.saved = snapshot

	return saver.err
}

func btcQuote() model.Quote {
	return model.Quote{AssetID: "BTC", Name: "Bitcoin", Price: decimal.RequireFromString("20253")}
}

func TestStale(t *testing.T) {
	priceCatalog := New(&fakeSource{}, nil)

	assert.True(t, priceCatalog.Stale(), "an empty catalog starts out stale")

	priceCatalog.Restore(&model.Catalog{FetchedAt: time.Now()})
	assert.False(t, priceCatalog.Stale())

	priceCatalog.Restore(&model.Catalog{
		FetchedAt: time.Now().Add(-FreshnessWindow - time.Minute),
	})
	assert.True(t, priceCatalog.Stale())
}

func TestRestoreAndSnapshotRoundTrip(t *testing.T) {
	priceCatalog := New(&fakeSource{}, nil)
	fetchedAt := time.Now().Add(-time.Minute)

	priceCatalog.Restore(&model.Catalog{
		Quotes:    []model.Quote{btcQuote()},
		FetchedAt: fetchedAt,
	})

	snapshot := priceCatalog.Snapshot()

	require.Len(t, snapshot.Quotes, 1)
	assert.Equal(t, "BTC", snapshot.Quotes[0].AssetID)
	assert.Equal(t, fetchedAt, snapshot.FetchedAt)

	quote, ok := priceCatalog.Lookup("BTC")
	require.True(t, ok)
	assert.Equal(t, "Bitcoin", quote.Name)

	_, ok = priceCatalog.Lookup("ETH")
	assert.False(t, ok)
}

func TestRefreshReplacesQuotesWholesale(t *testing.T) {
	source := &fakeSource{quotes: []model.Quote{
		{AssetID: "DOGE", Name: "Dogecoin", Price: decimal.RequireFromString("0.06")},
	}}
	priceCatalog := New(source, nil)
	priceCatalog.Restore(&model.Catalog{Quotes: []model.Quote{btcQuote()}})

	require.NoError(t, priceCatalog.Refresh())

	_, ok := priceCatalog.Lookup("BTC")
	assert.False(t, ok, "quotes absent from the refresh should be gone")

	_, ok = priceCatalog.Lookup("DOGE")
	assert.True(t, ok)
	assert.Len(t, priceCatalog.Quotes(), 1)
	assert.False(t, priceCatalog.Stale())
}

func TestRefreshSavesTheNewSnapshot(t *testing.T) {
	saver := &fakeSaver{}
	priceCatalog := New(&fakeSource{quotes: []model.Quote{btcQuote()}}, saver)

	require.NoError(t, priceCatalog.Refresh())

	require.NotNil(t, saver.saved)
	assert.Len(t, saver.saved.Quotes, 1)
}

func TestRefreshSurvivesSaveFailure(t *testing.T) {
	saver := &fakeSaver{err: errors.New("disk full")}
	priceCatalog := New(&fakeSource{quotes: []model.Quote{btcQuote()}}, saver)

	require.NoError(t, priceCatalog.Refresh())

	_, ok := priceCatalog.Lookup("BTC")
	assert.True(t, ok, "fetched quotes should be kept even when saving fails")
}

func TestRefreshKeepsQuotesOnSourceFailure(t *testing.T) {
	source := &fakeSource{err: errors.New("connection refused")}
	priceCatalog := New(source, nil)
	priceCatalog.Restore(&model.Catalog{Quotes: []model.Quote{btcQuote()}})

	err := priceCatalog.Refresh()
	require.Error(t, err)

	_, ok := priceCatalog.Lookup("BTC")
	assert.True(t, ok)
}

func TestRefreshIfStaleSkipsFreshSnapshots(t *testing.T) {
	source := &fakeSource{quotes: []model.Quote{btcQuote()}}
	priceCatalog := New(source, nil)

	require.NoError(t, priceCatalog.RefreshIfStale())
	assert.Equal(t, 1, source.calls)

	require.NoError(t, priceCatalog.RefreshIfStale())
	assert.Equal(t, 1, source.calls)
}
