package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v4"
	"github.com/shopspring/decimal"

	"github.com/dense-analysis/coinvault/internal/model"
)

// PostgresRepository stores users and catalog snapshots in Postgres.
type PostgresRepository struct {
	conn *pgx.Conn
}

// ConnectPostgres connects to Postgres with the project environment variables.
func ConnectPostgres() (*PostgresRepository, error) {
	conn, err := pgx.Connect(
		context.Background(),
		fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s",
			os.Getenv("DB_USERNAME"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_HOST"),
			os.Getenv("DB_PORT"),
			os.Getenv("DB_NAME"),
		),
	)

	if err != nil {
		return nil, err
	}

	return &PostgresRepository{conn: conn}, nil
}

// Close closes the database connection.
func (repository *PostgresRepository) Close() error {
	return repository.conn.Close(context.Background())
}

func scanDecimal(value string) (decimal.Decimal, error) {
	return decimal.NewFromString(value)
}

// LoadUsers reads every user with their positions and sales.
func (repository *PostgresRepository) LoadUsers() ([]*model.User, error) {
	ctx := context.Background()
	userMap := map[string]*model.User{}
	var users []*model.User

	rows, err := repository.conn.Query(
		ctx,
		"select username, password, money::text from wallet_user",
	)

	if err != nil {
		return nil, err
	}

	for rows.Next() {
		var username, password, money string

		if err := rows.Scan(&username, &password, &money); err != nil {
			rows.Close()

			return nil, err
		}

		user := model.NewUser(username, password)

		if user.Money, err = scanDecimal(money); err != nil {
			rows.Close()

			return nil, err
		}

		userMap[username] = user
		users = append(users, user)
	}

	rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := repository.loadPositions(ctx, userMap); err != nil {
		return nil, err
	}

	if err := repository.loadSales(ctx, userMap); err != nil {
		return nil, err
	}

	return users, nil
}

func (repository *PostgresRepository) loadPositions(ctx context.Context, userMap map[string]*model.User) error {
	rows, err := repository.conn.Query(
		ctx,
		`select username, asset_id, name, purchased::text, amount::text
		from wallet_position`,
	)

	if err != nil {
		return err
	}

	defer rows.Close()

	for rows.Next() {
		var username, purchased, amount string
		var position model.Position

		if err := rows.Scan(&username, &position.AssetID, &position.Name, &purchased, &amount); err != nil {
			return err
		}

		if position.Purchased, err = scanDecimal(purchased); err != nil {
			return err
		}

		if position.Amount, err = scanDecimal(amount); err != nil {
			return err
		}

		if user, ok := userMap[username]; ok {
			user.Positions[position.AssetID] = position
		}
	}

	return rows.Err()
}

func (repository *PostgresRepository) loadSales(ctx context.Context, userMap map[string]*model.User) error {
	rows, err := repository.conn.Query(
		ctx,
		`select username, asset_id, name, selling_price::text, profit::text
		from wallet_sale
		order by id`,
	)

	if err != nil {
		return err
	}

	defer rows.Close()

	for rows.Next() {
		var username, sellingPrice, profit string
		var sale model.Sale

		if err := rows.Scan(&username, &sale.AssetID, &sale.Name, &sellingPrice, &profit); err != nil {
			return err
		}

		if sale.SellingPrice, err = scanDecimal(sellingPrice); err != nil {
			return err
		}

		if sale.Profit, err = scanDecimal(profit); err != nil {
			return err
		}

		if user, ok := userMap[username]; ok {
			user.Sales = append(user.Sales, sale)
		}
	}

	return rows.Err()
}

// SaveUsers replaces the saved user set in one transaction.
func (repository *PostgresRepository) SaveUsers(users []*model.User) error {
	ctx := context.Background()
	tx, err := repository.conn.Begin(ctx)

	if err != nil {
		return err
	}

	defer tx.Rollback(ctx)

	for _, table := range []string{"wallet_sale", "wallet_position", "wallet_user"} {
		if _, err := tx.Exec(ctx, "delete from "+table); err != nil {
			return err
		}
	}

	for _, user := range users {
		if _, err := tx.Exec(
			ctx,
			`insert into wallet_user (username, password, money)
			values ($1, $2, $3::numeric)`,
			user.Username,
			user.PasswordHash,
			user.Money.String(),
		); err != nil {
			return err
		}

		for _, position := range user.Positions {
			if _, err := tx.Exec(
				ctx,
				`insert into wallet_position (username, asset_id, name, purchased, amount)
				values ($1, $2, $3, $4::numeric, $5::numeric)`,
				user.Username,
				position.AssetID,
				position.Name,
				position.Purchased.String(),
				position.Amount.String(),
			); err != nil {
				return err
			}
		}

		for _, sale := range user.Sales {
			if _, err := tx.Exec(
				ctx,
				`insert into wallet_sale (username, asset_id, name, selling_price, profit)
				values ($1, $2, $3, $4::numeric, $5::numeric)`,
				user.Username,
				sale.AssetID,
				sale.Name,
				sale.SellingPrice.String(),
				sale.Profit.String(),
			); err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

// InsertUser adds a single new user without touching the rest of the set.
func (repository *PostgresRepository) InsertUser(username string, passwordHash string) error {
	_, err := repository.conn.Exec(
		context.Background(),
		`insert into wallet_user (username, password, money)
		values ($1, $2, 0)`,
		username,
		passwordHash,
	)

	return err
}

// LoadUser reads one user by username, or nil when no user matches.
func (repository *PostgresRepository) LoadUser(username string) (*model.User, error) {
	ctx := context.Background()
	row := repository.conn.QueryRow(
		ctx,
		"select username, password, money::text from wallet_user where username = $1",
		username,
	)

	var name, password, money string

	if err := row.Scan(&name, &password, &money); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	user := model.NewUser(name, password)
	var err error

	if user.Money, err = scanDecimal(money); err != nil {
		return nil, err
	}

	userMap := map[string]*model.User{user.Username: user}

	if err := repository.loadPositions(ctx, userMap); err != nil {
		return nil, err
	}

	if err := repository.loadSales(ctx, userMap); err != nil {
		return nil, err
	}

	return user, nil
}

// LoadCatalog reads the saved quote snapshot, or nil when there is none.
func (repository *PostgresRepository) LoadCatalog() (*model.Catalog, error) {
	ctx := context.Background()
	row := repository.conn.QueryRow(ctx, "select fetched_at from wallet_catalog where id = 1")

	var snapshot model.Catalog

	if err := row.Scan(&snapshot.FetchedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	rows, err := repository.conn.Query(
		ctx,
		"select asset_id, name, price::text from wallet_quote",
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var price string
		var quote model.Quote

		if err := rows.Scan(&quote.AssetID, &quote.Name, &price); err != nil {
			return nil, err
		}

		if quote.Price, err = scanDecimal(price); err != nil {
			return nil, err
		}

		snapshot.Quotes = append(snapshot.Quotes, quote)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &snapshot, nil
}

// SaveCatalog replaces the saved quote snapshot in one transaction.
func (repository *PostgresRepository) SaveCatalog(snapshot *model.Catalog) error {
	ctx := context.Background()
	tx, err := repository.conn.Begin(ctx)

	if err != nil {
		return err
	}

	defer tx.Rollback(ctx)

	if _, err := tx.Exec(
		ctx,
		`insert into wallet_catalog (id, fetched_at) values (1, $1)
		on conflict (id) do update set fetched_at = excluded.fetched_at`,
		snapshot.FetchedAt,
	); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, "delete from wallet_quote"); err != nil {
		return err
	}

	for _, quote := range snapshot.Quotes {
		if _, err := tx.Exec(
			ctx,
			`insert into wallet_quote (asset_id, name, price)
			values ($1, $2, $3::numeric)`,
			quote.AssetID,
			quote.Name,
			quote.Price.String(),
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
