// Interactive command line client for the wallet server
package main

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/dense-analysis/coinvault/internal/command"
	"github.com/dense-analysis/coinvault/internal/env"
)

var helpText = strings.Join([]string{
	"register <username> <password> - Register into the system",
	"login <username> <password> - Login into your profile",
	"deposit_money <amount_of_money> - Deposit money into your account",
	"list_offerings - See information about currently available cryptocurrencies",
	"buy <cryptoID> <invested_money> - Buy cryptocurrency into your wallet",
	"sell <cryptoID> - Sell cryptocurrency from your wallet",
	"get_wallet_summary - See your amount of money and currently active investments",
	"get_wallet_overall_summary - See all your Active and Finished investments and your currently profit/loss",
	"disconnect - Save your current activity and exit",
}, "\n")

// multiLineReply reports whether a reply reads better with one field per
// line, which is how listing and summary replies come back.
func multiLineReply(message string, reply string) bool {
	switch {
	case reply == command.InvalidInputResponse,
		reply == command.InvalidRequestResponse,
		strings.HasPrefix(reply, "User is not currently logged"):
		return false
	}

	verb := strings.Fields(message)[0]

	return verb == string(command.ListOfferings) ||
		verb == string(command.GetWalletSummary) ||
		verb == string(command.GetWalletOverallSummary)
}

func formatReply(message string, reply string) string {
	if multiLineReply(message, reply) {
		return strings.ReplaceAll(reply, " ", "\n")
	}

	return reply
}

func main() {
	address := env.Get("WALLET_HOST", "localhost") + ":" + env.Get("WALLET_PORT", "7777")
	conn, err := net.Dial("tcp", address)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %s\n", err)
		os.Exit(1)
	}

	defer conn.Close()

	serverReader := bufio.NewReader(conn)
	inputScanner := bufio.NewScanner(os.Stdin)

	fmt.Println("Connected to the server.")
	fmt.Println("You can enter help to see the instructions")

	for {
		fmt.Print("Enter message: ")

		if !inputScanner.Scan() {
			return
		}

		message := strings.TrimSpace(inputScanner.Text())

		if message == "" {
			continue
		}

		if message == "help" {
			fmt.Println(helpText)

			continue
		}

		if _, err := fmt.Fprintln(conn, message); err != nil {
			fmt.Fprintf(os.Stderr, "Write error: %s\n", err)
			os.Exit(1)
		}

		reply, err := serverReader.ReadString('\n')

		if err != nil {
			fmt.Fprintf(os.Stderr, "The server closed the connection\n")
			os.Exit(1)
		}

		reply = strings.TrimRight(reply, "\r\n")

		if reply == command.DisconnectResponse {
			fmt.Println(reply)

			return
		}

		fmt.Println("The server replied:")
		fmt.Println(formatReply(message, reply))
	}
}
