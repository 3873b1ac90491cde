// Package history archives every fetched quote in ClickHouse so price
// movements can be inspected later.
package history

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dense-analysis/coinvault/internal/database"
	"github.com/dense-analysis/coinvault/internal/model"
)

// HistoricQuote is one archived price point.
type HistoricQuote struct {
	Time    time.Time
	AssetID string
	Name    string
	Price   decimal.Decimal
}

// CreateTable creates the history table when it doesn't exist yet.
func CreateTable(conn *database.Conn) error {
	return conn.Exec(
		`create table if not exists crypto_quote_history (
			time DateTime64(9),
			asset_id String,
			name String,
			price_usd Decimal128(12)
		)
		engine = MergeTree()
		order by (asset_id, time)`,
	)
}

// Record appends one row per quote to the history.
func Record(conn *database.Conn, quotes []model.Quote, fetchedAt time.Time) error {
	if len(quotes) == 0 {
		return nil
	}

	batch, err := conn.PrepareBatch(
		`insert into crypto_quote_history (time, asset_id, name, price_usd)
		values (?, ?, ?, ?)`,
	)

	if err != nil {
		return err
	}

	for _, quote := range quotes {
		if err := batch.Append(fetchedAt, quote.AssetID, quote.Name, quote.Price); err != nil {
			return err
		}
	}

	return batch.Send()
}

func scanHistoricQuote(row database.Row, quote *HistoricQuote) error {
	return row.Scan(&quote.Time, &quote.AssetID, &quote.Name, &quote.Price)
}

// RecentQuotes loads the archived price points for one asset, newest first.
func RecentQuotes(conn database.Queryable, assetID string, limit int, quoteList *[]HistoricQuote) error {
	return model.LoadList(
		conn,
		quoteList,
		limit,
		scanHistoricQuote,
		`select time, asset_id, name, price_usd
		from crypto_quote_history
		where asset_id = ?
		order by time desc
		limit ?`,
		assetID,
		limit,
	)
}

// LatestSnapshotTime finds when quotes were last archived, or the zero time
// when the history is empty.
func LatestSnapshotTime(conn *database.Conn) (time.Time, error) {
	row := conn.QueryRow("select max(time) from crypto_quote_history")

	var latest time.Time

	if err := row.Scan(&latest); err != nil {
		return time.Time{}, err
	}

	return latest, nil
}
