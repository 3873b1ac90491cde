package board

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dense-analysis/coinvault/internal/database"
)

type fakeRows struct {
	rows  [][]any
	index int
}

func (rows *fakeRows) Next() bool {
	rows.index++

	return rows.index <= len(rows.rows)
}

func (rows *fakeRows) Scan(dest ...any) error {
	row := rows.rows[rows.index-1]

	*dest[0].(*time.Time) = row[0].(time.Time)
	*dest[1].(*string) = row[1].(string)
	*dest[2].(*string) = row[2].(string)
	*dest[3].(*decimal.Decimal) = row[3].(decimal.Decimal)

	return nil
}

func (rows *fakeRows) Close() error { return nil }
func (rows *fakeRows) Err() error   { return nil }

type fakeConn struct {
	rows      *fakeRows
	arguments []any
}

func (conn *fakeConn) Exec(sql string, arguments ...any) error { return nil }

func (conn *fakeConn) Query(sql string, arguments ...any) (database.Rows, error) {
	conn.arguments = arguments

	return conn.rows, nil
}

func (conn *fakeConn) QueryRow(sql string, arguments ...any) database.Row { return nil }

func TestLoadHistory(t *testing.T) {
	newest := time.Date(2022, 11, 9, 12, 0, 0, 0, time.UTC)
	conn := &fakeConn{rows: &fakeRows{rows: [][]any{
		{newest, "BTC", "Bitcoin", decimal.RequireFromString("20253")},
		{newest.Add(-time.Hour), "BTC", "Bitcoin", decimal.RequireFromString("20100.50")},
	}}}

	quotes, err := loadHistory(conn, "BTC")
	require.NoError(t, err)

	require.Len(t, quotes, 2)
	assert.Equal(t, newest, quotes[0].Time)
	assert.True(t, quotes[0].Price.Equal(decimal.RequireFromString("20253")))

	// The page size bounds the query, not just the rendering.
	assert.Equal(t, []any{"BTC", historyPageSize}, conn.arguments)
}
