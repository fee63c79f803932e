package main

import (
	"bufio"
	"crypto/tls"
	"fmt"
	"io"
	"log"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/goombaio/namegenerator"
	"github.com/nickyhof/MemDB"
	"github.com/nickyhof/MemDB/core"
	"github.com/nickyhof/MemDB/db"
)

// Server is a TCP SQL server that exposes one MemDB instance. Every
// connection gets its own session and engine; statements from all sessions
// are serialised by a single mutex because the engine takes no locks.
type Server struct {
	listener   net.Listener
	instance   *MemDB.Instance
	identity   core.Identity
	authConfig *AuthConfig
	names      namegenerator.Generator
	tlsEnabled bool
	mu         sync.Mutex
	done       chan struct{}
	wg         sync.WaitGroup
}

// Session is the per-connection state.
type Session struct {
	Id            string
	Name          string
	identity      core.Identity
	authenticated bool
	tokenExpiry   time.Time
	engine        *db.Engine
}

// NewServer creates a server without authentication. Anonymous sessions
// are named by a generator and author commits as that name with the email
// of identity.
func NewServer(instance *MemDB.Instance, identity core.Identity) *Server {
	return &Server{
		instance: instance,
		identity: identity,
		names:    namegenerator.NewNameGenerator(time.Now().UTC().UnixNano()),
		done:     make(chan struct{}),
	}
}

// NewServerWithAuth creates a server that requires AUTH before queries
// when authConfig is enabled.
func NewServerWithAuth(instance *MemDB.Instance, authConfig *AuthConfig) *Server {
	server := NewServer(instance, core.Identity{Name: "MemDB Server", Email: "server@memdb.local"})
	server.authConfig = authConfig
	return server
}

func (s *Server) authRequired() bool {
	return s.authConfig != nil && s.authConfig.Enabled
}

// Start begins listening for connections on the specified address.
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.listener = listener

	log.Printf("SQL Server listening on %s", listener.Addr())

	go s.acceptLoop()
	return nil
}

// StartTLS is Start over TLS with the given certificate and key files.
func (s *Server) StartTLS(addr, certFile, keyFile string) error {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return fmt.Errorf("failed to load TLS certificate: %w", err)
	}

	listener, err := tls.Listen("tcp", addr, &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	})
	if err != nil {
		return fmt.Errorf("failed to start TLS server: %w", err)
	}
	s.listener = listener
	s.tlsEnabled = true

	log.Printf("SQL Server listening on %s (TLS)", listener.Addr())

	go s.acceptLoop()
	return nil
}

// TLSEnabled reports whether the server was started with StartTLS.
func (s *Server) TLSEnabled() bool {
	return s.tlsEnabled
}

// Stop closes the listener and waits for open connections to finish.
func (s *Server) Stop() error {
	close(s.done)
	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	return nil
}

// Addr returns the server's listening address.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				log.Printf("Accept error: %v", err)
				continue
			}
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// newSession starts an anonymous session. Without authentication it can run
// queries right away.
func (s *Server) newSession() *Session {
	// the generator's random source is not safe for concurrent use
	s.mu.Lock()
	name := s.names.Generate()
	s.mu.Unlock()

	session := &Session{
		Id:   uuid.NewString(),
		Name: name,
	}
	session.identity = core.Identity{Name: session.Name, Email: s.identity.Email}
	if !s.authRequired() {
		session.engine = s.instance.Engine(session.identity)
	}
	return session
}

func (session *Session) authenticate(instance *MemDB.Instance, identity core.Identity, expiresAt time.Time) {
	session.identity = identity
	session.authenticated = true
	session.tokenExpiry = expiresAt
	session.engine = instance.Engine(identity)
}

func (session *Session) expired() bool {
	return !session.tokenExpiry.IsZero() && time.Now().After(session.tokenExpiry)
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	session := s.newSession()
	log.Printf("Client connected: %s (session %s, %s)", conn.RemoteAddr(), session.Id, session.Name)

	// unblock the read below on shutdown
	closed := make(chan struct{})
	defer close(closed)
	go func() {
		select {
		case <-s.done:
			conn.SetReadDeadline(time.Now())
		case <-closed:
		}
	}()

	reader := bufio.NewReader(conn)

	for {
		// a final line without a newline arrives together with io.EOF
		line, readErr := reader.ReadString('\n')
		complete := readErr == nil || readErr == io.EOF
		if line != "" && complete && !s.handleRequest(conn, session, line) {
			return
		}

		if readErr != nil {
			if readErr != io.EOF {
				select {
				case <-s.done:
				default:
					log.Printf("Read error from %s: %v", conn.RemoteAddr(), readErr)
				}
			}
			return
		}
	}
}

// handleRequest answers one request line. It returns false when the
// connection should close.
func (s *Server) handleRequest(conn net.Conn, session *Session, line string) bool {
	req, err := DecodeRequest([]byte(line))
	if err != nil {
		return s.write(conn, session, errorResponse("", fmt.Errorf("invalid request: %w", err)))
	}
	if req.Query == "" {
		return true
	}

	if strings.EqualFold(req.Query, "quit") || strings.EqualFold(req.Query, "exit") {
		log.Printf("Client disconnected: %s (session %s)", conn.RemoteAddr(), session.Id)
		return false
	}

	return s.write(conn, session, s.handleLine(req.Query, session))
}

func (s *Server) write(conn net.Conn, session *Session, response Response) bool {
	response.Session = session.Id
	data, err := EncodeResponse(response)
	if err != nil {
		log.Printf("Failed to encode response: %v", err)
		return true
	}
	if _, err := conn.Write(data); err != nil {
		log.Printf("Write error to %s: %v", conn.RemoteAddr(), err)
		return false
	}
	return true
}

// handleLine dispatches one protocol line: AUTH, SESSION or a statement.
func (s *Server) handleLine(line string, session *Session) Response {
	if isAuthCommand(line) {
		if s.authConfig == nil {
			return errorResponse("auth", fmt.Errorf("authentication not configured"))
		}
		return s.handleAuth(line, session)
	}

	if strings.EqualFold(line, "SESSION") {
		return resultResponse("session", SessionResponse{
			Id:            session.Id,
			Name:          session.Name,
			Identity:      session.identity.String(),
			Authenticated: session.authenticated,
		})
	}

	if s.authRequired() {
		if !session.authenticated {
			return errorResponse("", ErrAuthRequired)
		}
		if session.expired() {
			return errorResponse("", ErrTokenExpired)
		}
	}

	return s.executeQuery(session, line)
}

func (s *Server) executeQuery(session *Session, query string) Response {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := session.engine.Execute(query)
	if err != nil {
		return errorResponse("", err)
	}

	switch r := result.(type) {
	case db.QueryResult:
		return resultResponse("query", QueryResponse{
			Columns:     r.Columns,
			Data:        r.Data(),
			RecordsRead: r.RecordsRead,
			TimeMs:      r.ExecutionTimeSec * 1000,
		})

	case db.CommitResult:
		return resultResponse("commit", CommitResponse{
			TablesCreated:  r.TablesCreated,
			RecordsWritten: r.RecordsWritten,
			RecordsUpdated: r.RecordsUpdated,
			RecordsDeleted: r.RecordsDeleted,
			Transaction:    r.Transaction.Id,
			TimeMs:         r.ExecutionTimeSec * 1000,
		})

	default:
		return Response{
			Success: true,
			Type:    "unknown",
		}
	}
}
