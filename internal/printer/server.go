package printer

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/chensy618/HoneyFarm/internal/eventlog"
)

// uel is the PJL Universal Exit Language escape; stripped before parsing.
const uel = "\x1b%-12345X"

// ServerConfig carries the runtime knobs for the listener.
type ServerConfig struct {
	Bind      string        // host to bind, default localhost
	Port      int           // default 9100 (JetDirect)
	Timeout   time.Duration // idle read timeout per connection
	MaxConns  int           // concurrent connection cap
	UploadDir string        // where captured jobs land
}

// Server accepts raw JetDirect connections and runs one printer session per
// connection. No state is shared between sessions except the log stream.
type Server struct {
	cfg      ServerConfig
	log      *eventlog.Logger
	identity *IdentityPool
	alerter  Alerter

	ln   net.Listener
	seq  atomic.Uint64
	stop chan struct{}
}

func NewServer(cfg ServerConfig, log *eventlog.Logger, identity *IdentityPool, alerter Alerter) *Server {
	if cfg.Port == 0 {
		cfg.Port = 9100
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.MaxConns == 0 {
		cfg.MaxConns = 512
	}
	return &Server{
		cfg:      cfg,
		log:      log,
		identity: identity,
		alerter:  alerter,
		stop:     make(chan struct{}),
	}
}

// ListenAndServe binds the configured address and serves until Close.
func (s *Server) ListenAndServe() error {
	addr := net.JoinHostPort(s.cfg.Bind, strconv.Itoa(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln. Exposed separately so tests can bind
// port 0.
func (s *Server) Serve(ln net.Listener) error {
	s.ln = ln
	s.log.Log("Server started", eventlog.Event{Action: "start", Event: "server_start"})

	sem := make(chan struct{}, s.cfg.MaxConns)
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.stop:
				return nil
			default:
				return err
			}
		}
		select {
		case sem <- struct{}{}:
			go func() {
				defer func() { <-sem }()
				s.handleConn(conn)
			}()
		default:
			s.log.Log("Connection limit reached", eventlog.Event{Action: "reject", Event: "connection"})
			conn.Close()
		}
	}
}

// Addr returns the bound listener address.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Close stops the accept loop. In-flight sessions finish on their own
// timeouts.
func (s *Server) Close() error {
	close(s.stop)
	if s.ln != nil {
		return s.ln.Close()
	}
	return nil
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	srcIP := conn.RemoteAddr().String()
	if host, _, err := net.SplitHostPort(srcIP); err == nil {
		srcIP = host
	}
	srcPort := 0
	if _, portStr, err := net.SplitHostPort(conn.RemoteAddr().String()); err == nil {
		srcPort, _ = strconv.Atoi(portStr)
	}

	clog := s.log.ForConn(srcIP, s.cfg.Port)
	clog.Log("Connection opened", eventlog.Event{Action: "open_conn", Event: "connection"})

	sessionID := fmt.Sprintf("mp-%d", s.seq.Add(1))
	printer := NewPrinter(s.identity.Get(), s.cfg.UploadDir, clog)
	if s.alerter != nil {
		printer.SetAlerter(s.alerter, sessionID, srcIP, srcPort)
	}

	buf := make([]byte, 1024)
	for {
		conn.SetReadDeadline(time.Now().Add(s.cfg.Timeout)) //nolint:errcheck
		n, err := conn.Read(buf)
		if err != nil {
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				break // idle client; close from our side
			}
			if errors.Is(err, io.EOF) {
				break
			}
			clog.Log("Possible port scan", eventlog.Event{Action: "receive", Event: "port_scan"})
			break
		}

		request := strings.TrimSpace(string(buf[:n]))
		if !utf8.ValidString(request) {
			clog.Log("Possible port scan", eventlog.Event{Action: "receive", Event: "port_scan"})
			break
		}
		request = strings.ReplaceAll(request, uel, "")

		// PostScript start wins over everything, including a raw job in
		// progress.
		if strings.HasPrefix(request, "%!") {
			printer.StartPostScript(request)
			clog.Log("Received first postscript request of file", eventlog.Event{Action: "postscript", Event: "print_job"})
			continue
		}
		if printer.ReceivingPostScript() {
			printer.AppendPostScript(request)
			continue
		}

		commands := SplitCommands(request)
		clog.Log("Request received", eventlog.Event{Action: "request", Event: "command_received"})
		if len(commands) == 0 {
			break
		}

		response := s.processCommands(printer, clog, commands)
		clog.Log("Response sent", eventlog.Event{Action: "response", Event: "response_sent"})
		if _, err := conn.Write([]byte(response)); err != nil {
			break
		}
	}

	if printer.PrintingRawJob() {
		printer.SaveRawJob()
	}
	clog.Log("Connection closed", eventlog.Event{Action: "close_conn", Event: "connection_closed"})
}

// processCommands runs one request's commands in arrival order. A panic in
// any command handler is contained here so the connection loop survives it.
func (s *Server) processCommands(printer *Printer, clog *eventlog.ConnLogger, commands []string) (response string) {
	defer func() {
		if r := recover(); r != nil {
			clog.Log("Error occurred while processing request", eventlog.Event{
				Action: "error_caught", Event: "error", Error: fmt.Sprint(r),
			})
		}
	}()

	for _, raw := range commands {
		cmd := Parse(raw)
		if cmd.Kind == KindRawData {
			response += printer.AppendRawJob(cmd.Body)
			continue
		}
		// A genuine PJL command is the raw-job boundary: flush before
		// computing the command's response.
		if printer.PrintingRawJob() {
			printer.SaveRawJob()
		}
		response += printer.Execute(cmd)
	}
	return response
}
