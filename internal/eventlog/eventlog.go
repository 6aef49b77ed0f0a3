// Package eventlog writes the JSON-lines audit log consumed by the
// downstream dashboards. The record shape is a compatibility contract:
// timestamp and info always, src_ip/dest_port when the record belongs to a
// connection, then only the event-specific fields that are actually set.
package eventlog

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"
)

// Event is one log record. Field order here is field order on the wire.
type Event struct {
	Timestamp    string `json:"timestamp"`
	Info         string `json:"info"`
	SrcIP        string `json:"src_ip,omitempty"`
	DestPort     int    `json:"dest_port,omitempty"`
	Action       string `json:"action,omitempty"`
	Command      string `json:"command,omitempty"`
	Dir          string `json:"dir,omitempty"`
	Event        string `json:"event,omitempty"`
	Error        string `json:"error,omitempty"`
	FileContents string `json:"file_contents,omitempty"`
	FileName     string `json:"file_name,omitempty"`
	Item         string `json:"item,omitempty"`
	JobText      string `json:"job_text,omitempty"`
	Rdymsg       string `json:"rdymsg,omitempty"`
	Response     string `json:"response,omitempty"`
	UploadFile   string `json:"upload_file,omitempty"`
}

// Logger appends records to the log file and mirrors them to stdout. Safe
// for concurrent use from multiple connection handlers: each record is one
// self-contained line.
type Logger struct {
	mu  sync.Mutex
	w   io.Writer
	f   *os.File
	now func() time.Time
}

// Open creates or appends to the log file at path.
func Open(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}
	return &Logger{w: io.MultiWriter(f, os.Stdout), f: f, now: time.Now}, nil
}

// NewWriter returns a logger writing to w; used by tests.
func NewWriter(w io.Writer) *Logger {
	return &Logger{w: w, now: time.Now}
}

func (l *Logger) Close() error {
	if l.f != nil {
		return l.f.Close()
	}
	return nil
}

// Log stamps and writes one record. Write errors are swallowed: losing a log
// line must never take down a connection handler.
func (l *Logger) Log(info string, ev Event) {
	ev.Info = info
	ev.Timestamp = l.now().UTC().Format("2006-01-02T15:04:05.999999") + "Z"
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	l.mu.Lock()
	l.w.Write(append(b, '\n')) //nolint:errcheck
	l.mu.Unlock()
}

// ConnLogger stamps src_ip and dest_port onto every record for one
// connection.
type ConnLogger struct {
	base     *Logger
	srcIP    string
	destPort int
}

// ForConn returns a connection-scoped view of the logger.
func (l *Logger) ForConn(srcIP string, destPort int) *ConnLogger {
	return &ConnLogger{base: l, srcIP: srcIP, destPort: destPort}
}

func (c *ConnLogger) Log(info string, ev Event) {
	ev.SrcIP = c.srcIP
	ev.DestPort = c.destPort
	c.base.Log(info, ev)
}
