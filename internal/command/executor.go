package command

import (
	"errors"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dense-analysis/coinvault/internal/coinapi"
	"github.com/dense-analysis/coinvault/internal/model"
	"github.com/dense-analysis/coinvault/internal/wallet"
)

// Fixed response lines, matching what clients are written to expect.
const (
	InvalidRequestResponse = "This request is invalid, please check help menu!"
	InvalidInputResponse   = "User's input is invalid, check the help menu"
	// DisconnectResponse is the sentinel after which the server closes the
	// connection.
	DisconnectResponse = "User saved and disconnected successfully"

	registeredResponse     = "User is registered successfully"
	loggedInResponse       = "User logged successfully"
	depositedResponse      = "User's deposit was successful"
	invalidDepositResponse = "Deposited amount of money must be positive"
	boughtResponse         = "You successfully bought"
	soldResponse           = "You successfully sold"
)

// Executor validates command arguments, runs wallet operations and renders
// every outcome as one response line.
type Executor struct {
	wallet *wallet.Wallet
}

// NewExecutor creates an executor for one wallet.
func NewExecutor(userWallet *wallet.Wallet) *Executor {
	return &Executor{wallet: userWallet}
}

// Execute runs one line of client input and returns the response text.
//
// Domain failures come back as response text and never close the connection;
// only the disconnect sentinel does.
func (executor *Executor) Execute(sessionID string, line string) string {
	cmd, err := Parse(line)

	if err != nil {
		log.Printf("invalid command from %s: %q\n", sessionID, strings.TrimSpace(line))

		return InvalidRequestResponse
	}

	switch cmd.Type {
	case Register:
		return executor.register(cmd.Arguments)
	case Login:
		return executor.login(sessionID, cmd.Arguments)
	case DepositMoney:
		return executor.deposit(sessionID, cmd.Arguments)
	case ListOfferings:
		return executor.listOfferings(cmd.Arguments)
	case Buy:
		return executor.buy(sessionID, cmd.Arguments)
	case Sell:
		return executor.sell(sessionID, cmd.Arguments)
	case GetWalletSummary:
		return executor.walletSummary(sessionID, cmd.Arguments)
	case GetWalletOverallSummary:
		return executor.walletOverallSummary(sessionID, cmd.Arguments)
	case Disconnect:
		return executor.disconnect(sessionID, cmd.Arguments)
	}

	return InvalidRequestResponse
}

var domainFailures = []error{
	wallet.ErrDuplicateUser,
	wallet.ErrLoginFailed,
	wallet.ErrNotLoggedIn,
	wallet.ErrInsufficientFunds,
	wallet.ErrUnknownAsset,
	wallet.ErrInvalidSale,
}

var priceSourceFailures = []error{
	coinapi.ErrBadRequest,
	coinapi.ErrUnauthorized,
	coinapi.ErrRateLimited,
}

// failureText renders a wallet error as a response line.
//
// Domain failures and price source failures carry their own message; anything
// else is unexpected and reported generically so internals never leak.
func failureText(err error) string {
	for _, domainErr := range domainFailures {
		if errors.Is(err, domainErr) {
			return domainErr.Error()
		}
	}

	for _, priceErr := range priceSourceFailures {
		if errors.Is(err, priceErr) {
			return err.Error()
		}
	}

	log.Printf("internal error: %+v\n", err)

	return InvalidRequestResponse
}

func anyBlank(arguments []string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == "" {
			return true
		}
	}

	return false
}

func (executor *Executor) register(arguments []string) string {
	if len(arguments) != 2 || anyBlank(arguments) {
		return InvalidInputResponse
	}

	if err := executor.wallet.Register(arguments[0], arguments[1]); err != nil {
		return failureText(err)
	}

	return registeredResponse
}

func (executor *Executor) login(sessionID string, arguments []string) string {
	if len(arguments) != 2 || anyBlank(arguments) {
		return InvalidInputResponse
	}

	if err := executor.wallet.Login(sessionID, arguments[0], arguments[1]); err != nil {
		return failureText(err)
	}

	return loggedInResponse
}

func (executor *Executor) deposit(sessionID string, arguments []string) string {
	if len(arguments) != 1 {
		return InvalidInputResponse
	}

	amount, err := decimal.NewFromString(arguments[0])

	if err != nil {
		return InvalidInputResponse
	}

	if !amount.IsPositive() {
		return invalidDepositResponse
	}

	if err := executor.wallet.Deposit(sessionID, amount); err != nil {
		return failureText(err)
	}

	return depositedResponse
}

func (executor *Executor) listOfferings(arguments []string) string {
	if len(arguments) != 0 {
		return InvalidInputResponse
	}

	quotes, err := executor.wallet.ListOfferings()

	if err != nil {
		return failureText(err)
	}

	var builder strings.Builder

	for _, quote := range quotes {
		writeQuote(&builder, quote)
	}

	return builder.String()
}

func (executor *Executor) buy(sessionID string, arguments []string) string {
	if len(arguments) != 2 || anyBlank(arguments) {
		return InvalidInputResponse
	}

	investedMoney, err := decimal.NewFromString(arguments[1])

	if err != nil || !investedMoney.IsPositive() {
		return InvalidInputResponse
	}

	if err := executor.wallet.Buy(sessionID, arguments[0], investedMoney); err != nil {
		return failureText(err)
	}

	return boughtResponse + " " + arguments[0]
}

func (executor *Executor) sell(sessionID string, arguments []string) string {
	if len(arguments) != 1 || anyBlank(arguments) {
		return InvalidInputResponse
	}

	if _, err := executor.wallet.Sell(sessionID, arguments[0]); err != nil {
		return failureText(err)
	}

	return soldResponse + " " + arguments[0]
}

func (executor *Executor) walletSummary(sessionID string, arguments []string) string {
	if len(arguments) != 0 {
		return InvalidInputResponse
	}

	money, positions, err := executor.wallet.Summary(sessionID)

	if err != nil {
		return failureText(err)
	}

	var builder strings.Builder
	builder.WriteString("Money: ")
	builder.WriteString(money.String())
	builder.WriteString(" ActiveInvestments:  ")

	for _, position := range positions {
		builder.WriteString("ID:")
		builder.WriteString(position.AssetID)
		builder.WriteString(" Name:")
		builder.WriteString(position.Name)
		builder.WriteString(" boughtPrice:")
		builder.WriteString(position.Purchased.String())
		builder.WriteString(" boughtCount:")
		builder.WriteString(position.Amount.String())
		builder.WriteString("  ")
	}

	return builder.String()
}

func (executor *Executor) walletOverallSummary(sessionID string, arguments []string) string {
	if len(arguments) != 0 {
		return InvalidInputResponse
	}

	summary, err := executor.wallet.OverallSummary(sessionID)

	if err != nil {
		return failureText(err)
	}

	var builder strings.Builder
	builder.WriteString("ActiveInvestments:  ")

	for _, investment := range summary.Active {
		builder.WriteString("ID:")
		builder.WriteString(investment.Position.AssetID)
		builder.WriteString(" Name:")
		builder.WriteString(investment.Position.Name)
		builder.WriteString(" boughtPrice:")
		builder.WriteString(investment.Position.Purchased.String())
		builder.WriteString(" currentPrice:")
		builder.WriteString(investment.CurrentPrice.String())
		builder.WriteString(" currentProfit:")
		builder.WriteString(investment.Profit.String())
		builder.WriteString("  ")
	}

	builder.WriteString("FinishedInvestments: ")

	for _, sale := range summary.Finished {
		builder.WriteString("ID:")
		builder.WriteString(sale.AssetID)
		builder.WriteString(" Name:")
		builder.WriteString(sale.Name)
		builder.WriteString(" currentProfit:")
		builder.WriteString(sale.Profit.String())
		builder.WriteString("  ")
	}

	builder.WriteString("overallProfit:")
	builder.WriteString(summary.OverallProfit.String())
	builder.WriteString("  ")

	return builder.String()
}

func (executor *Executor) disconnect(sessionID string, arguments []string) string {
	if len(arguments) != 0 {
		return InvalidInputResponse
	}

	if err := executor.wallet.Disconnect(sessionID); err != nil {
		return failureText(err)
	}

	return DisconnectResponse
}

func writeQuote(builder *strings.Builder, quote model.Quote) {
	builder.WriteString("ID:")
	builder.WriteString(quote.AssetID)
	builder.WriteString(" Name:")
	builder.WriteString(quote.Name)
	builder.WriteString(" Price:")
	builder.WriteString(quote.Price.String())
	builder.WriteString("  ")
}
