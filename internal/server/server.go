// Package server runs the TCP front of the wallet: it accepts client
// connections, reads one command per line and writes one response per
// command.
package server

import (
	"bufio"
	"log"
	"net"
	"strings"
	"sync"

	"github.com/dense-analysis/coinvault/internal/command"
	"github.com/dense-analysis/coinvault/internal/wallet"
)

// maxLineSize bounds the per-connection read buffer.
const maxLineSize = 10000

// Server accepts wallet client connections and serves commands on them.
//
// Each connection runs on its own goroutine; the wallet serializes all state
// changes internally, so the observable behavior matches a single command
// loop.
type Server struct {
	executor *command.Executor
	wallet   *wallet.Wallet
	listener net.Listener
	quit     chan struct{}
	stopOnce sync.Once
	handlers sync.WaitGroup
}

// New creates a server for one wallet and its command executor.
func New(executor *command.Executor, userWallet *wallet.Wallet) *Server {
	return &Server{
		executor: executor,
		wallet:   userWallet,
		quit:     make(chan struct{}),
	}
}

// Listen binds the listening socket.
func (server *Server) Listen(address string) error {
	listener, err := net.Listen("tcp", address)

	if err != nil {
		return err
	}

	server.listener = listener

	return nil
}

// ListenAndServe binds the listening socket and serves until Stop is called.
func (server *Server) ListenAndServe(address string) error {
	if err := server.Listen(address); err != nil {
		return err
	}

	return server.Serve()
}

// Addr returns the bound listener address.
func (server *Server) Addr() net.Addr {
	return server.listener.Addr()
}

// Serve accepts connections until Stop is called.
func (server *Server) Serve() error {
	for {
		conn, err := server.listener.Accept()

		if err != nil {
			select {
			case <-server.quit:
				return nil
			default:
				return err
			}
		}

		server.handlers.Add(1)

		go server.handleConnection(conn)
	}
}

// Stop makes the server stop accepting connections.
//
// Connections already open are not severed: each one keeps being served
// until its client disconnects, and a command in flight always gets its
// response.
func (server *Server) Stop() {
	server.stopOnce.Do(func() {
		close(server.quit)

		if server.listener != nil {
			server.listener.Close()
		}
	})
}

// Wait blocks until every open connection has been served to completion.
func (server *Server) Wait() {
	server.handlers.Wait()
}

func (server *Server) handleConnection(conn net.Conn) {
	sessionID := conn.RemoteAddr().String()

	defer server.handlers.Done()
	defer conn.Close()
	// A vanished peer loses its session without a save, same as the
	// disconnect command never arriving.
	defer server.wallet.DropSession(sessionID)

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, maxLineSize), maxLineSize)

	for scanner.Scan() {
		line := scanner.Text()
		log.Printf("Client %s: %s\n", sessionID, line)

		response := server.executor.Execute(sessionID, line)

		if !strings.HasSuffix(response, "\n") {
			response += "\n"
		}

		if _, err := conn.Write([]byte(response)); err != nil {
			log.Printf("write error for %s: %s\n", sessionID, err)

			return
		}

		if response == command.DisconnectResponse+"\n" {
			return
		}
	}

	if err := scanner.Err(); err != nil {
		log.Printf("read error for %s: %s\n", sessionID, err)

		return
	}

	log.Printf("Client %s has closed the connection\n", sessionID)
}
