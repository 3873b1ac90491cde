package server

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dense-analysis/coinvault/internal/catalog"
	"github.com/dense-analysis/coinvault/internal/command"
	"github.com/dense-analysis/coinvault/internal/model"
	"github.com/dense-analysis/coinvault/internal/storage"
	"github.com/dense-analysis/coinvault/internal/wallet"
)

type fakeSource struct {
	quotes []model.Quote
}

func (source *fakeSource) Fetch() ([]model.Quote, time.Time, error) {
	return source.quotes, time.Now(), nil
}

func startTestServer(t *testing.T) (*Server, string) {
	t.Helper()

	repository, err := storage.NewFileRepository(t.TempDir())
	require.NoError(t, err)

	quotes := []model.Quote{
		{AssetID: "BTC", Name: "Bitcoin", Price: decimal.RequireFromString("20253")},
	}
	require.NoError(t, repository.SaveCatalog(&model.Catalog{
		Quotes:    quotes,
		FetchedAt: time.Now(),
	}))

	userWallet, err := wallet.New(repository, catalog.New(&fakeSource{quotes: quotes}, repository))
	require.NoError(t, err)

	testServer := New(command.NewExecutor(userWallet), userWallet)
	require.NoError(t, testServer.Listen("127.0.0.1:0"))

	go testServer.Serve()
	t.Cleanup(testServer.Stop)

	return testServer, testServer.Addr().String()
}

type testClient struct {
	conn   net.Conn
	reader *bufio.Reader
}

func connect(t *testing.T, address string) *testClient {
	t.Helper()

	conn, err := net.Dial("tcp", address)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return &testClient{conn: conn, reader: bufio.NewReader(conn)}
}

func (client *testClient) send(t *testing.T, line string) string {
	t.Helper()

	_, err := fmt.Fprintf(client.conn, "%s\n", line)
	require.NoError(t, err)

	response, err := client.reader.ReadString('\n')
	require.NoError(t, err)

	return strings.TrimSuffix(response, "\n")
}

func TestServerRunsAFullSession(t *testing.T) {
	_, address := startTestServer(t)
	client := connect(t, address)

	assert.Equal(t, "User is registered successfully",
		client.send(t, "register mellody hunter2"))
	assert.Equal(t, "User logged successfully",
		client.send(t, "login mellody hunter2"))
	assert.Equal(t, "User's deposit was successful",
		client.send(t, "deposit_money 1500"))
	assert.Contains(t,
		client.send(t, "list_offerings"), "ID:BTC Name:Bitcoin Price:20253")
	assert.Equal(t, "You successfully bought BTC",
		client.send(t, "buy BTC 1250"))
	assert.Contains(t,
		client.send(t, "get_wallet_summary"), "Money: 250 ActiveInvestments:")
	assert.Equal(t, "You successfully sold BTC",
		client.send(t, "sell BTC"))
	assert.Equal(t, "User saved and disconnected successfully",
		client.send(t, "disconnect"))

	// The disconnect sentinel is the one response that closes the connection.
	_, err := client.reader.ReadString('\n')
	assert.Error(t, err)
}

func TestServerKeepsServingAfterBadInput(t *testing.T) {
	_, address := startTestServer(t)
	client := connect(t, address)

	assert.Equal(t, command.InvalidRequestResponse, client.send(t, "hack the planet"))
	assert.Equal(t, command.InvalidInputResponse, client.send(t, "sell"))
	assert.Contains(t, client.send(t, "list_offerings"), "ID:BTC")
}

func TestServerServesConnectionsIndependently(t *testing.T) {
	_, address := startTestServer(t)

	first := connect(t, address)
	second := connect(t, address)

	require.Equal(t, "User is registered successfully",
		first.send(t, "register mellody hunter2"))
	require.Equal(t, "User logged successfully",
		first.send(t, "login mellody hunter2"))

	// The second connection has its own session and is not logged in.
	assert.Equal(t, "User is not currently logged in",
		second.send(t, "deposit_money 100"))
	assert.Equal(t, "User's deposit was successful",
		first.send(t, "deposit_money 100"))
}

func TestServerDropsSessionsOnAbruptDisconnect(t *testing.T) {
	testServer, address := startTestServer(t)
	client := connect(t, address)

	require.Equal(t, "User is registered successfully",
		client.send(t, "register mellody hunter2"))
	require.Equal(t, "User logged successfully",
		client.send(t, "login mellody hunter2"))

	sessionID := client.conn.LocalAddr().String()
	require.NoError(t, client.conn.Close())

	assert.Eventually(t, func() bool {
		return testServer.wallet.Username(sessionID) == ""
	}, time.Second, 10*time.Millisecond, "a vanished peer should lose its session")
}

func TestWaitBlocksUntilClientsLeave(t *testing.T) {
	testServer, address := startTestServer(t)
	client := connect(t, address)

	require.Equal(t, command.InvalidInputResponse, client.send(t, "sell"))

	testServer.Stop()

	waited := make(chan struct{})

	go func() {
		testServer.Wait()
		close(waited)
	}()

	select {
	case <-waited:
		t.Fatal("Wait returned while a connection was still open")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, client.conn.Close())

	select {
	case <-waited:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after the last client left")
	}
}

func TestServerStopDoesNotSeverOpenConnections(t *testing.T) {
	testServer, address := startTestServer(t)
	client := connect(t, address)

	require.Equal(t, "User is registered successfully",
		client.send(t, "register mellody hunter2"))

	testServer.Stop()

	// New connections are refused, but the open one keeps working.
	_, err := net.Dial("tcp", address)
	assert.Error(t, err)

	assert.Equal(t, "User logged successfully",
		client.send(t, "login mellody hunter2"))
	assert.Equal(t, "User's deposit was successful",
		client.send(t, "deposit_money 100"))
}
