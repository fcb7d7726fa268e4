package server

import (
	"bufio"
	"context"
	"net"
	"strings"
	"time"
)

const tcpReadDeadline = 5 * time.Minute

// serveTCP handles the line protocol: one request line in, one
// newline-flattened response line out, quit/exit closes.
func (s *Server) serveTCP(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Config.TCPBind)
	if err != nil {
		return err
	}
	s.Logger.Info("tcp_server_start", "bind", s.Config.TCPBind)

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go s.handleTCPConn(ctx, conn)
	}
}

func (s *Server) handleTCPConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	for {
		_ = conn.SetReadDeadline(time.Now().Add(tcpReadDeadline))
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lowered := strings.ToLower(line)
		if lowered == "quit" || lowered == "exit" {
			return
		}

		response, err := s.Agent.Execute(ctx, line, "tcp")
		if err != nil {
			response = "error: " + err.Error()
		}
		flat := strings.ReplaceAll(response, "\n", " ")
		if _, err := conn.Write([]byte(flat + "\n")); err != nil {
			return
		}
	}
}
