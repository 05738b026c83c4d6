// Package oxidbtest runs an in-process stand-in for oxidb-server that speaks
// the length-prefixed JSON protocol. It keeps inserted documents in memory.
package oxidbtest

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"net"
	"strconv"
	"sync"
	"testing"
)

// Handler answers one command. Returning a non-empty errMsg sends ok=false;
// returning nil data and no errMsg falls through to the default handling.
type Handler func(cmd map[string]any) (data any, errMsg string)

// Server is a fake oxidb-server bound to a loopback port.
type Server struct {
	Host string
	Port int

	ln       net.Listener
	mu       sync.Mutex
	docs     map[string][]map[string]any
	commands []string
	override Handler
	conns    map[net.Conn]struct{}
	closed   bool
	wg       sync.WaitGroup
}

// NewServer starts a server and stops it when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("oxidbtest: listen: %v", err)
	}
	addr := ln.Addr().(*net.TCPAddr)
	s := &Server{Host: "127.0.0.1", Port: addr.Port, ln: ln, docs: map[string][]map[string]any{}, conns: map[net.Conn]struct{}{}}
	s.wg.Add(1)
	go s.serve()
	t.Cleanup(s.Close)
	return s
}

// Handle replaces the default command handling.
func (s *Server) Handle(h Handler) {
	s.mu.Lock()
	s.override = h
	s.mu.Unlock()
}

// Docs returns the documents inserted into collection.
func (s *Server) Docs(collection string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.docs[collection]...)
}

// Commands returns the cmd names received, in order.
func (s *Server) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.commands...)
}

// Close stops accepting and drops every open connection.
func (s *Server) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.ln.Close()
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Server) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
		s.wg.Add(1)
		s.mu.Unlock()
		go func() {
			defer s.wg.Done()
			defer func() {
				s.mu.Lock()
				delete(s.conns, conn)
				s.mu.Unlock()
				conn.Close()
			}()
			s.handleConn(conn)
		}()
	}
}

func (s *Server) handleConn(conn net.Conn) {
	for {
		var lenBuf [4]byte
		if _, err := io.ReadFull(conn, lenBuf[:]); err != nil {
			return
		}
		payload := make([]byte, binary.LittleEndian.Uint32(lenBuf[:]))
		if _, err := io.ReadFull(conn, payload); err != nil {
			return
		}
		var cmd map[string]any
		resp := map[string]any{"ok": true}
		if err := json.Unmarshal(payload, &cmd); err != nil {
			resp = map[string]any{"ok": false, "error": "bad json"}
		} else if data, errMsg := s.dispatch(cmd); errMsg != "" {
			resp = map[string]any{"ok": false, "error": errMsg}
		} else {
			resp["data"] = data
		}
		out, _ := json.Marshal(resp)
		frame := make([]byte, 4+len(out))
		binary.LittleEndian.PutUint32(frame, uint32(len(out)))
		copy(frame[4:], out)
		if _, err := conn.Write(frame); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(cmd map[string]any) (any, string) {
	name, _ := cmd["cmd"].(string)
	s.mu.Lock()
	s.commands = append(s.commands, name)
	override := s.override
	s.mu.Unlock()

	// The override runs unlocked so a slow handler stalls only its own
	// connection.
	if override != nil {
		if data, errMsg := override(cmd); data != nil || errMsg != "" {
			return data, errMsg
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	collection, _ := cmd["collection"].(string)
	switch name {
	case "ping":
		return "pong", ""
	case "create_collection":
		if _, ok := s.docs[collection]; ok {
			return nil, "collection already exists"
		}
		s.docs[collection] = nil
		return "ok", ""
	case "insert":
		doc, _ := cmd["doc"].(map[string]any)
		s.docs[collection] = append(s.docs[collection], doc)
		return map[string]any{"id": len(s.docs[collection])}, ""
	case "count":
		return map[string]any{"count": len(s.docs[collection])}, ""
	default:
		return nil, "unknown command: " + strconv.Quote(name)
	}
}
