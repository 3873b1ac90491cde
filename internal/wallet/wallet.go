// Package wallet owns every registered user and their investments, and binds
// live connections to logged-in users.
package wallet

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/dense-analysis/coinvault/internal/catalog"
	"github.com/dense-analysis/coinvault/internal/model"
	"github.com/dense-analysis/coinvault/internal/storage"
)

// Domain failures, worded exactly as they are sent back to clients.
var (
	ErrDuplicateUser     = errors.New("User with this name already existed")
	ErrLoginFailed       = errors.New("User didn't logged successfully")
	ErrNotLoggedIn       = errors.New("User is not currently logged in")
	ErrInsufficientFunds = errors.New("You don't have enough money")
	ErrUnknownAsset      = errors.New("Current cryptocurrency is missing")
	ErrInvalidSale       = errors.New("You can't sell cryptocurrency that you haven't bought")
)

var bcryptCost = 14

// ActiveInvestment is an open position marked to the current price.
type ActiveInvestment struct {
	Position     model.Position
	CurrentPrice decimal.Decimal
	Profit       decimal.Decimal
}

// OverallSummary values every open position at current prices and totals the
// profit across open and finished investments.
type OverallSummary struct {
	Active        []ActiveInvestment
	Finished      []model.Sale
	OverallProfit decimal.Decimal
}

// Wallet is the in-memory ledger of users, their money and their investments.
//
// Every operation takes the wallet lock, so all reads and mutations are
// serialized regardless of how many connections issue commands.
type Wallet struct {
	mu         sync.Mutex
	users      map[string]*model.User
	sessions   map[string]*model.User
	catalog    *catalog.Catalog
	repository storage.Repository
}

// New creates a wallet from previously saved users and catalog data.
func New(repository storage.Repository, priceCatalog *catalog.Catalog) (*Wallet, error) {
	users, err := repository.LoadUsers()

	if err != nil {
		return nil, fmt.Errorf("loading users: %w", err)
	}

	userMap := make(map[string]*model.User, len(users))

	for _, user := range users {
		userMap[user.Username] = user
	}

	snapshot, err := repository.LoadCatalog()

	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	if snapshot != nil {
		priceCatalog.Restore(snapshot)
	}

	return &Wallet{
		users:      userMap,
		sessions:   map[string]*model.User{},
		catalog:    priceCatalog,
		repository: repository,
	}, nil
}

func (wallet *Wallet) userList() []*model.User {
	users := make([]*model.User, 0, len(wallet.users))

	for _, user := range wallet.users {
		users = append(users, user)
	}

	return users
}

// Register creates a user with no money and persists the updated user set.
func (wallet *Wallet) Register(username string, password string) error {
	wallet.mu.Lock()
	defer wallet.mu.Unlock()

	if _, ok := wallet.users[username]; ok {
		return ErrDuplicateUser
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)

	if err != nil {
		return err
	}

	wallet.users[username] = model.NewUser(username, string(passwordHash))

	return wallet.repository.SaveUsers(wallet.userList())
}

// Login binds a session to a user.
//
// An unknown username and a wrong password fail identically on purpose, so a
// failed login doesn't reveal whether the username exists.
func (wallet *Wallet) Login(sessionID string, username string, password string) error {
	wallet.mu.Lock()
	defer wallet.mu.Unlock()

	user, ok := wallet.users[username]

	if !ok {
		return ErrLoginFailed
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return ErrLoginFailed
	}

	wallet.sessions[sessionID] = user

	return nil
}

// Deposit adds money to the logged-in user's balance.
//
// The command layer rejects non-positive amounts before they get here.
func (wallet *Wallet) Deposit(sessionID string, amount decimal.Decimal) error {
	wallet.mu.Lock()
	defer wallet.mu.Unlock()

	user, ok := wallet.sessions[sessionID]

	if !ok {
		return ErrNotLoggedIn
	}

	user.Money = user.Money.Add(amount)

	return nil
}

// ListOfferings returns every quote, refreshing the catalog when stale.
//
// The quotes come back in no guaranteed order.
func (wallet *Wallet) ListOfferings() ([]model.Quote, error) {
	wallet.mu.Lock()
	defer wallet.mu.Unlock()

	if err := wallet.catalog.RefreshIfStale(); err != nil {
		return nil, err
	}

	return wallet.catalog.Quotes(), nil
}

// Buy exchanges money for an amount of one asset at its catalog price.
//
// Buying uses the catalog as-is without a refresh, so the purchase happens at
// the last listed price. A repeat buy of the same asset folds into the
// existing position, summing cost and amount.
func (wallet *Wallet) Buy(sessionID string, assetID string, investedMoney decimal.Decimal) error {
	wallet.mu.Lock()
	defer wallet.mu.Unlock()

	user, ok := wallet.sessions[sessionID]

	if !ok {
		return ErrNotLoggedIn
	}

	if investedMoney.GreaterThan(user.Money) {
		return ErrInsufficientFunds
	}

	quote, ok := wallet.catalog.Lookup(assetID)

	if !ok {
		return ErrUnknownAsset
	}

	boughtAmount := investedMoney.Div(quote.Price)
	position := model.Position{
		AssetID:   quote.AssetID,
		Name:      quote.Name,
		Purchased: investedMoney,
		Amount:    boughtAmount,
	}

	if existing, ok := user.Positions[quote.AssetID]; ok {
		position.Purchased = existing.Purchased.Add(investedMoney)
		position.Amount = existing.Amount.Add(boughtAmount)
	}

	user.Money = user.Money.Sub(investedMoney)
	user.Positions[quote.AssetID] = position

	return nil
}

// Sell closes the position in one asset at its current price.
//
// The whole position is sold at once; the realized profit is the proceeds
// minus everything invested in the asset. Nothing changes when the user never
// bought the asset.
func (wallet *Wallet) Sell(sessionID string, assetID string) (model.Sale, error) {
	wallet.mu.Lock()
	defer wallet.mu.Unlock()

	user, ok := wallet.sessions[sessionID]

	if !ok {
		return model.Sale{}, ErrNotLoggedIn
	}

	if err := wallet.catalog.RefreshIfStale(); err != nil {
		return model.Sale{}, err
	}

	quote, ok := wallet.catalog.Lookup(assetID)

	if !ok {
		return model.Sale{}, ErrUnknownAsset
	}

	position, ok := user.Positions[quote.AssetID]

	if !ok {
		return model.Sale{}, ErrInvalidSale
	}

	delete(user.Positions, quote.AssetID)

	proceeds := position.Amount.Mul(quote.Price)
	sale := model.Sale{
		AssetID:      quote.AssetID,
		Name:         quote.Name,
		SellingPrice: proceeds,
		Profit:       proceeds.Sub(position.Purchased),
	}

	user.Money = user.Money.Add(proceeds)
	user.Sales = append(user.Sales, sale)

	return sale, nil
}

// Summary returns the user's money and open positions without touching
// prices.
func (wallet *Wallet) Summary(sessionID string) (decimal.Decimal, []model.Position, error) {
	wallet.mu.Lock()
	defer wallet.mu.Unlock()

	user, ok := wallet.sessions[sessionID]

	if !ok {
		return decimal.Zero, nil, ErrNotLoggedIn
	}

	positions := make([]model.Position, 0, len(user.Positions))

	for _, position := range user.Positions {
		positions = append(positions, position)
	}

	return user.Money, positions, nil
}

// OverallSummary marks every open position to the current price and totals
// profit across open and finished investments.
//
// Positions whose asset no longer appears in the catalog are skipped from the
// detail and from the total.
func (wallet *Wallet) OverallSummary(sessionID string) (OverallSummary, error) {
	wallet.mu.Lock()
	defer wallet.mu.Unlock()

	user, ok := wallet.sessions[sessionID]

	if !ok {
		return OverallSummary{}, ErrNotLoggedIn
	}

	if err := wallet.catalog.RefreshIfStale(); err != nil {
		return OverallSummary{}, err
	}

	summary := OverallSummary{
		Finished:      user.Sales,
		OverallProfit: decimal.Zero,
	}

	for _, position := range user.Positions {
		quote, ok := wallet.catalog.Lookup(position.AssetID)

		if !ok {
			continue
		}

		currentValue := quote.Price.Mul(position.Amount)
		profit := currentValue.Sub(position.Purchased)
		summary.OverallProfit = summary.OverallProfit.Add(profit)

		summary.Active = append(summary.Active, ActiveInvestment{
			Position:     position,
			CurrentPrice: currentValue,
			Profit:       profit,
		})
	}

	for _, sale := range user.Sales {
		summary.OverallProfit = summary.OverallProfit.Add(sale.Profit)
	}

	return summary, nil
}

// Disconnect unbinds the session and persists the full user set.
func (wallet *Wallet) Disconnect(sessionID string) error {
	wallet.mu.Lock()
	defer wallet.mu.Unlock()

	if _, ok := wallet.sessions[sessionID]; !ok {
		return ErrNotLoggedIn
	}

	delete(wallet.sessions, sessionID)

	return wallet.repository.SaveUsers(wallet.userList())
}

// DropSession removes a session without persisting, for connections that
// vanish without a disconnect command.
func (wallet *Wallet) DropSession(sessionID string) {
	wallet.mu.Lock()
	defer wallet.mu.Unlock()

	delete(wallet.sessions, sessionID)
}

// Username names the user bound to a session, for logging.
func (wallet *Wallet) Username(sessionID string) string {
	wallet.mu.Lock()
	defer wallet.mu.Unlock()

	if user, ok := wallet.sessions[sessionID]; ok {
		return user.Username
	}

	return ""
}
