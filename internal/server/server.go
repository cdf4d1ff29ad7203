// Package server implements the TCP arbiter for naval-combat sessions
package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"naval-combat/internal/config"
	"naval-combat/internal/game"
	"naval-combat/internal/network"
	"naval-combat/pkg/logger"
)

// Server represents the TCP server.
//
// mu serialises every session mutation together with the frames it
// produces, so broadcasts for one inbound frame reach every recipient before
// the next frame is handled.
type Server struct {
	cfg       *config.ServerConfig
	listener  net.Listener
	clients   map[string]*Client
	session   *game.Session
	validate  *validator.Validate
	newID     func() string
	mu        sync.Mutex
	isRunning atomic.Bool
	wg        sync.WaitGroup
	logger    *logger.Logger
}

// Client represents a connected player
type Client struct {
	ID        string
	Conn      net.Conn
	Writer    *bufio.Writer
	mu        sync.Mutex
	closeOnce sync.Once
}

// NewServer creates a new TCP server instance
func NewServer(cfg *config.ServerConfig) *Server {
	return &Server{
		cfg:      cfg,
		clients:  make(map[string]*Client),
		session:  game.NewSession(),
		validate: network.NewValidator(),
		newID:    generatePlayerID,
		logger:   logger.Server,
	}
}

// SetLogger replaces the server logger
func (s *Server) SetLogger(l *logger.Logger) {
	s.logger = l
}

// Listen binds the listening socket
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.cfg.Address())
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.listener = listener
	s.isRunning.Store(true)
	s.logger.Info("Server started and listening on %s", listener.Addr())
	return nil
}

// Addr returns the bound address, or nil before Listen
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections until Stop is called
func (s *Server) Serve() error {
	if s.listener == nil {
		return errors.New("server is not listening")
	}

	for s.isRunning.Load() {
		conn, err := s.listener.Accept()
		if err != nil {
			if !s.isRunning.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Error("Failed to accept connection: %v", err)
			continue
		}

		if !s.track() {
			conn.Close()
			return nil
		}
		go s.handleClient(conn)
	}
	return nil
}

// track reserves a connection goroutine slot. It fails once Stop has begun,
// so wg.Add never races the Wait in Stop.
func (s *Server) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning.Load() {
		return false
	}
	s.wg.Add(1)
	return true
}

// Start binds and serves; it blocks until Stop
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Stop closes the listener and every connection, then waits for the
// connection goroutines to finish
func (s *Server) Stop() error {
	s.mu.Lock()
	wasRunning := s.isRunning.Swap(false)
	s.mu.Unlock()
	if !wasRunning {
		return nil
	}

	if s.listener != nil {
		s.listener.Close()
	}

	s.mu.Lock()
	for _, client := range s.clients {
		client.close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("Server stopped")
	return nil
}

// handleClient manages one connection from accept to disconnect
func (s *Server) handleClient(conn net.Conn) {
	defer s.wg.Done()

	client, ok := s.registerClient(conn)
	if !ok {
		return
	}

	s.readLoop(client)
	s.removeClient(client)
}

// registerClient admits a connection into the session, or rejects it when
// the table is full
func (s *Server) registerClient(conn net.Conn) (*Client, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.IsFull() {
		rejected := newClient("", conn)
		s.logger.Warn("Rejecting connection from %s: session full", conn.RemoteAddr())
		s.sendMessage(rejected, network.CreateErrorMessage(network.TextServerFull))
		rejected.close()
		return nil, false
	}

	id := s.newID()
	for s.clients[id] != nil {
		id = s.newID()
	}

	if _, err := s.session.AddPlayer(id); err != nil {
		s.logger.Error("Failed to register player %s: %v", id, err)
		conn.Close()
		return nil, false
	}

	client := newClient(id, conn)
	s.clients[id] = client
	s.logger.Info("New player connected: %s from %s", id, conn.RemoteAddr())

	s.sendMessage(client, network.CreatePlayerConnectMessage(id))
	s.broadcastPlayersReady()
	return client, true
}

// readLoop feeds frames to the controller until the connection ends. The
// read deadline only lets the loop notice shutdown; expiry is not an error.
func (s *Server) readLoop(client *Client) {
	frames := network.NewFrameReader(client.Conn)

	for s.isRunning.Load() {
		client.Conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))

		data, err := frames.ReadFrame()
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				s.logger.Warn("Read error from %s: %v", client.ID, err)
			}
			return
		}

		if !s.safeProcessMessage(client, data) {
			return
		}
	}
}

// safeProcessMessage keeps a panicking handler from taking the process down;
// the offending connection is dropped instead
func (s *Server) safeProcessMessage(client *Client, data []byte) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Panic while handling message from %s: %v", client.ID, r)
			ok = false
		}
	}()

	s.processMessage(client, data)
	return true
}

// removeClient runs the disconnect path. It is idempotent per client.
func (s *Server) removeClient(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer client.close()

	if s.clients[client.ID] != client {
		return
	}
	delete(s.clients, client.ID)

	interrupted := s.session.RemovePlayer(client.ID)
	s.logger.Info("Player disconnected: %s", client.ID)

	if !s.isRunning.Load() {
		return
	}

	if interrupted {
		notice := network.CreatePlayerDisconnectMessage(client.ID)
		for _, id := range s.session.PlayerIDs() {
			s.sendMessage(s.clients[id], notice)
		}
		s.logger.Info("Game aborted: %s left, session back to %s", client.ID, s.session.Phase())
	}
	s.broadcastPlayersReady()
}

// Helper methods

func newClient(id string, conn net.Conn) *Client {
	return &Client{
		ID:     id,
		Conn:   conn,
		Writer: bufio.NewWriter(conn),
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.Conn.Close()
	})
}

// sendMessage writes one frame. A failed write closes the connection, which
// sends the reader down the disconnect path.
func (s *Server) sendMessage(client *Client, msg *network.Message) error {
	if client == nil {
		return errors.New("client is nil")
	}

	client.mu.Lock()
	defer client.mu.Unlock()

	client.Conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	s.logger.Debug("Sending message to %s: %s", client.ID, msg.Type)

	err := network.WriteFrame(client.Writer, msg)
	if err == nil {
		err = client.Writer.Flush()
	}
	if err != nil {
		s.logger.Warn("Failed to send %s to %s: %v", msg.Type, client.ID, err)
		client.close()
	}
	return err
}

func (s *Server) sendError(client *Client, text string) error {
	return s.sendMessage(client, network.CreateErrorMessage(text))
}

// broadcast sends msg to every registered player in join order
func (s *Server) broadcast(msg *network.Message) {
	for _, id := range s.session.PlayerIDs() {
		s.sendMessage(s.clients[id], msg)
	}
}

func (s *Server) broadcastPlayersReady() {
	s.broadcast(network.CreatePlayersReadyMessage(
		s.session.PlayerCount(), s.session.MaxPlayers(), s.session.Phase()))
}

// generatePlayerID returns 8 hex characters (32 random bits) of a v4 UUID
func generatePlayerID() string {
	return uuid.NewString()[:8]
}
