// Package command parses client command lines and executes them against the
// wallet.
package command

import (
	"errors"
	"strings"
)

// Type is one of the fixed command verbs a client may send.
type Type string

const (
	Register                Type = "register"
	Login                   Type = "login"
	DepositMoney            Type = "deposit_money"
	ListOfferings           Type = "list_offerings"
	Buy                     Type = "buy"
	Sell                    Type = "sell"
	GetWalletSummary        Type = "get_wallet_summary"
	GetWalletOverallSummary Type = "get_wallet_overall_summary"
	Disconnect              Type = "disconnect"
)

var commandTypes = map[string]Type{
	string(Register):                Register,
	string(Login):                   Login,
	string(DepositMoney):            DepositMoney,
	string(ListOfferings):           ListOfferings,
	string(Buy):                     Buy,
	string(Sell):                    Sell,
	string(GetWalletSummary):        GetWalletSummary,
	string(GetWalletOverallSummary): GetWalletOverallSummary,
	string(Disconnect):              Disconnect,
}

// ErrInvalidCommand marks input that doesn't start with a known verb.
var ErrInvalidCommand = errors.New("unknown command")

// Command is one parsed client request: a verb plus positional arguments.
type Command struct {
	Type      Type
	Arguments []string
}

// Parse splits one line of client input into a typed command.
func Parse(line string) (Command, error) {
	words := strings.Fields(line)

	if len(words) == 0 {
		return Command{}, ErrInvalidCommand
	}

	commandType, ok := commandTypes[words[0]]

	if !ok {
		return Command{}, ErrInvalidCommand
	}

	return Command{Type: commandType, Arguments: words[1:]}, nil
}
