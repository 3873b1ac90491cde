package storage

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dense-analysis/coinvault/internal/model"
)

func TestFileRepositoryStartsEmpty(t *testing.T) {
	repository, err := NewFileRepository(t.TempDir())
	require.NoError(t, err)

	users, err := repository.LoadUsers()
	require.NoError(t, err)
	assert.Nil(t, users)

	snapshot, err := repository.LoadCatalog()
	require.NoError(t, err)
	assert.Nil(t, snapshot)
}

func TestFileRepositoryRoundTripsUsers(t *testing.T) {
	directory := t.TempDir()

	repository, err := NewFileRepository(directory)
	require.NoError(t, err)

	user := model.NewUser("mellody", "not-a-real-hash")
	user.Money = decimal.RequireFromString("250.75")
	user.Positions["BTC"] = model.Position{
		AssetID:   "BTC",
		Name:      "Bitcoin",
		Purchased: decimal.NewFromInt(1250),
		Amount:    decimal.RequireFromString("0.0617"),
	}
	user.Sales = []model.Sale{{
		AssetID:      "ETH",
		Name:         "Ethereum",
		SellingPrice: decimal.NewFromInt(500),
		Profit:       decimal.NewFromInt(100),
	}}

	require.NoError(t, repository.SaveUsers([]*model.User{user}))

	// A second repository over the same directory sees the same data.
	reopened, err := NewFileRepository(directory)
	require.NoError(t, err)

	users, err := reopened.LoadUsers()
	require.NoError(t, err)
	require.Len(t, users, 1)

	loaded := users[0]
	assert.Equal(t, "mellody", loaded.Username)
	assert.Equal(t, "not-a-real-hash", loaded.PasswordHash)
	assert.True(t, loaded.Money.Equal(user.Money))

	require.Contains(t, loaded.Positions, "BTC")
	assert.True(t, loaded.Positions["BTC"].Purchased.Equal(decimal.NewFromInt(1250)))

	require.Len(t, loaded.Sales, 1)
	assert.True(t, loaded.Sales[0].Profit.Equal(decimal.NewFromInt(100)))
}

func TestLoadUsersRestoresMissingPositionMaps(t *testing.T) {
	repository, err := NewFileRepository(t.TempDir())
	require.NoError(t, err)

	// Saved before any investment was made.
	require.NoError(t, repository.SaveUsers([]*model.User{
		{Username: "mellody", PasswordHash: "not-a-real-hash"},
	}))

	users, err := repository.LoadUsers()
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.NotNil(t, users[0].Positions)
}

func TestFileRepositoryRoundTripsCatalog(t *testing.T) {
	repository, err := NewFileRepository(t.TempDir())
	require.NoError(t, err)

	fetchedAt := time.Now().Round(0).UTC()

	require.NoError(t, repository.SaveCatalog(&model.Catalog{
		Quotes: []model.Quote{
			{AssetID: "BTC", Name: "Bitcoin", Price: decimal.RequireFromString("20253")},
		},
		FetchedAt: fetchedAt,
	}))

	snapshot, err := repository.LoadCatalog()
	require.NoError(t, err)
	require.NotNil(t, snapshot)

	require.Len(t, snapshot.Quotes, 1)
	assert.Equal(t, "BTC", snapshot.Quotes[0].AssetID)
	assert.True(t, snapshot.Quotes[0].Price.Equal(decimal.RequireFromString("20253")))
	assert.True(t, snapshot.FetchedAt.Equal(fetchedAt))
}

func TestNewFileRepositoryCreatesTheDirectory(t *testing.T) {
	directory := t.TempDir() + "/nested/data"

	repository, err := NewFileRepository(directory)
	require.NoError(t, err)

	require.NoError(t, repository.SaveUsers(nil))

	users, err := repository.LoadUsers()
	require.NoError(t, err)
	assert.Nil(t, users)
}
