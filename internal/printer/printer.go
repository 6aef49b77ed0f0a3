// Package printer emulates an HP JetDirect printer speaking PJL and
// PostScript over a raw TCP socket, persisting whatever attackers try to
// print.
package printer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chensy618/HoneyFarm/internal/eventlog"
)

// Alerter is the honeytoken side channel. Implementations must be
// best-effort: they are called inline from the connection handler.
type Alerter interface {
	HoneytokenAccessed(filename, sessionID, srcIP string, srcPort int, ts time.Time)
}

// Printer holds one connection's protocol state. Exactly one of
// printingRawJob / receivingPostscript is active at a time: PostScript
// detection wins when both could apply.
type Printer struct {
	id       string
	code     int
	readyMsg string
	online   bool

	fs  *FS
	log *eventlog.ConnLogger

	printingRawJob bool
	currentRawJob  strings.Builder
	receivingPS    bool
	postscriptData strings.Builder

	uploadDir string
	alerter   Alerter
	sessionID string
	srcIP     string
	srcPort   int
	now       func() time.Time
}

// NewPrinter builds the per-connection printer with a freshly seeded
// simulated filesystem.
func NewPrinter(ident Identity, uploadDir string, log *eventlog.ConnLogger) *Printer {
	return &Printer{
		id:        ident.Model,
		code:      ident.Code,
		readyMsg:  ident.ReadyMsg,
		online:    ident.Online,
		fs:        newPrinterFS(),
		log:       log,
		uploadDir: uploadDir,
		now:       time.Now,
	}
}

// SetAlerter attaches the honeytoken side channel with the connection
// attribution the alert needs.
func (p *Printer) SetAlerter(a Alerter, sessionID, srcIP string, srcPort int) {
	p.alerter = a
	p.sessionID = sessionID
	p.srcIP = srcIP
	p.srcPort = srcPort
}

func (p *Printer) PrintingRawJob() bool      { return p.printingRawJob }
func (p *Printer) ReceivingPostScript() bool { return p.receivingPS }

// Execute runs one parsed PJL command and returns the wire response. Raw
// data is not handled here; the session loop routes it to AppendRawJob.
func (p *Printer) Execute(cmd Command) string {
	switch cmd.Kind {
	case KindEcho:
		return p.commandEcho(cmd.Body)
	case KindUstatusOff:
		return p.commandUstatusOff(cmd.Body)
	case KindInfoID:
		return p.commandInfoID(cmd.Body)
	case KindInfoStatus:
		return p.commandInfoStatus(cmd.Body)
	case KindFSDirList:
		return p.commandFSDirList(cmd.Body)
	case KindFSQuery:
		return p.commandFSQuery(cmd.Body)
	case KindFSMkdir:
		return p.commandFSMkdir(cmd.Body)
	case KindFSUpload:
		return p.commandFSUpload(cmd.Body)
	case KindFSDownload:
		return p.commandFSDownload(cmd.Body)
	case KindRdyMsg:
		return p.commandRdyMsg(cmd.Body)
	default:
		p.log.Log("Unknown command received", eventlog.Event{Action: "cmd_unknown", Command: cmd.Body})
		return ""
	}
}

// AppendRawJob accumulates non-PJL text as print-job payload. The printer
// sends nothing back for job data.
func (p *Printer) AppendRawJob(text string) string {
	p.log.Log("Appending raw print job", eventlog.Event{
		Action: "append", Event: "append_raw_print_job", JobText: fmt.Sprintf("%q", text),
	})
	p.printingRawJob = true
	p.currentRawJob.WriteString(text)
	p.log.Log("Sending empty response", eventlog.Event{Action: "response", Event: "empty_response"})
	return ""
}

// SaveRawJob flushes the accumulated job to a timestamped .txt file and
// returns the printer to idle.
func (p *Printer) SaveRawJob() {
	if p.currentRawJob.Len() == 0 {
		p.log.Log("Nothing to save", eventlog.Event{Action: "saving", Event: "save_raw_print_job"})
		return
	}
	name := p.jobFileName("txt")
	p.log.Log("Saving raw print job", eventlog.Event{
		Action: "saving", Event: "save_raw_print_job", FileName: name,
	})
	p.persistJob(name, p.currentRawJob.String())
	p.currentRawJob.Reset()
	p.printingRawJob = false
}

// StartPostScript begins PostScript capture with the chunk carrying the %!
// magic. Any half-accumulated raw job stays buffered until the session ends.
func (p *Printer) StartPostScript(chunk string) {
	p.receivingPS = true
	p.postscriptData.Reset()
	p.postscriptData.WriteString(chunk)
}

// AppendPostScript buffers a continuation chunk. When the chunk carries the
// %%EOF marker the capture is flushed and the printer returns to idle.
func (p *Printer) AppendPostScript(chunk string) {
	p.postscriptData.WriteString(chunk)
	if strings.Contains(chunk, "%%EOF") {
		p.SavePostScript()
	}
}

// SavePostScript flushes the PostScript buffer to a timestamped .ps file.
func (p *Printer) SavePostScript() {
	if !p.receivingPS {
		p.log.Log("Nothing to save", eventlog.Event{Action: "saving", Event: "save_postscript"})
		return
	}
	name := p.jobFileName("ps")
	p.log.Log("Saving postscript file", eventlog.Event{
		Action: "saving", Event: "save_postscript", FileName: name,
	})
	p.persistJob(name, p.postscriptData.String())
	p.postscriptData.Reset()
	p.receivingPS = false
}

func (p *Printer) jobFileName(ext string) string {
	t := p.now().UTC()
	return fmt.Sprintf("%s-%06d.%s", t.Format("2006-01-02_15-04-05"), t.Nanosecond()/1000, ext)
}

func (p *Printer) persistJob(name, contents string) {
	if err := os.MkdirAll(p.uploadDir, 0700); err != nil {
		p.log.Log("Failed to save job", eventlog.Event{Action: "error_caught", Event: "save_failed", Error: err.Error()})
		return
	}
	if err := os.WriteFile(filepath.Join(p.uploadDir, name), []byte(contents), 0600); err != nil {
		p.log.Log("Failed to save job", eventlog.Event{Action: "error_caught", Event: "save_failed", Error: err.Error()})
	}
}

func (p *Printer) commandEcho(body string) string {
	p.log.Log("Received request for delimiter", eventlog.Event{Action: "request", Event: "echo"})
	response := "@PJL " + body + "\x1b"
	p.log.Log("Responding with echo", eventlog.Event{Action: "response", Event: "echo", Response: response})
	return response
}

func (p *Printer) commandUstatusOff(string) string {
	p.log.Log("Request received", eventlog.Event{Action: "request", Event: "ustatusoff"})
	p.log.Log("Sending empty reply", eventlog.Event{Action: "response", Event: "ustatusoff"})
	return ""
}

func (p *Printer) commandInfoID(string) string {
	p.log.Log("ID requested", eventlog.Event{Action: "request", Event: "info_id"})
	response := "@PJL INFO ID\r\n" + p.id + "\r\n\x1b"
	p.log.Log("ID response", eventlog.Event{Action: "response", Event: "info_id", Response: response})
	return response
}

func (p *Printer) commandInfoStatus(string) string {
	p.log.Log("Client requests status", eventlog.Event{Action: "request", Event: "info_status"})
	// HP firmware reports Python-style booleans on the wire: ONLINE=True
	online := "False"
	if p.online {
		online = "True"
	}
	response := fmt.Sprintf("@PJL INFO STATUS\r\nCODE=%d\r\nDISPLAY=\"%s\"\r\nONLINE=%s", p.code, p.readyMsg, online)
	p.log.Log("Status response", eventlog.Event{Action: "response", Event: "info_status", Response: response})
	return response
}

func (p *Printer) commandFSDirList(body string) string {
	params := ParseParams(body)
	dir := pathParam(params["NAME"])
	p.log.Log("Requested directory listing", eventlog.Event{Action: "request", Event: "fsdirlist", Dir: dir})

	var entries string
	if dir != "" && p.fs.IsDir(dir) {
		entries = " ENTRY=1\r\n. TYPE=DIR\r\n.. TYPE=DIR"
		for _, e := range p.fs.List(dir) {
			if e.IsDir {
				entries += "\r\n" + e.Name + " TYPE=DIR"
			} else {
				entries += fmt.Sprintf("\r\n%s TYPE=FILE SIZE=%d", e.Name, e.Size)
			}
		}
	} else {
		entries = "FILEERROR = 3" // file not found
	}

	response := "@PJL FSDIRLIST NAME=" + params["NAME"] + entries
	p.log.Log("Directory listing response", eventlog.Event{Action: "response", Event: "fsdirlist", Response: response})
	return response
}

func (p *Printer) commandFSQuery(body string) string {
	params := ParseParams(body)
	item := pathParam(params["NAME"])
	p.log.Log("Requested item", eventlog.Event{Action: "request", Event: "fsquery", Item: item})

	var data string
	switch {
	case item != "" && p.fs.IsFile(item):
		data = fmt.Sprintf("NAME=%s TYPE=FILE SIZE=%d", params["NAME"], p.fs.Size(item))
	case item != "" && p.fs.IsDir(item):
		data = "NAME=" + params["NAME"] + " TYPE=DIR"
	default:
		data = "NAME=" + params["NAME"] + " FILEERROR=3\r\n" // file not found
	}

	response := "@PJL FSQUERY " + data
	p.log.Log("FSQUERY response", eventlog.Event{Action: "response", Event: "fsquery", Response: data})
	return response
}

func (p *Printer) commandFSMkdir(body string) string {
	params := ParseParams(body)
	dir := pathParam(params["NAME"])
	p.log.Log("Creating directory", eventlog.Event{Action: "request", Event: "fsmkdir", Dir: dir})

	if dir != "" && !p.fs.Exists(dir) {
		p.fs.MkdirAll(dir)
	}
	p.log.Log("Directory created", eventlog.Event{Action: "response", Event: "fsmkdir"})
	return ""
}

func (p *Printer) commandFSUpload(body string) string {
	params := ParseParams(body)
	file := pathParam(params["NAME"])
	p.log.Log("Upload file", eventlog.Event{Action: "request", Event: "fsupload", UploadFile: file})

	var data string
	if contents, ok := p.fs.ReadFile(file); ok {
		data = fmt.Sprintf("FORMAT:BINARY NAME=%s OFFSET=0 SIZE=%d\r\n%s", params["NAME"], len(contents), contents)
		p.checkHoneytoken(file)
	} else {
		data = "NAME=" + params["NAME"] + "\r\nFILEERROR=3\r\n"
	}

	response := "@PJL FSUPLOAD " + data
	p.log.Log("Upload response", eventlog.Event{Action: "response", Event: "fsupload", Response: response})
	return response
}

func (p *Printer) commandFSDownload(body string) string {
	params := ParseParams(body)
	name, ok := params["NAME"]
	if !ok {
		p.log.Log("Download without NAME", eventlog.Event{Action: "process", Event: "fsdownload"})
		return ""
	}
	// Everything after the NAME parameter is the file payload.
	contents := ""
	if idx := strings.Index(body, name); idx >= 0 {
		contents = body[idx+len(name):]
	}
	file := pathParam(name)

	p.log.Log("Processing download", eventlog.Event{Action: "process", Event: "fsdownload", FileContents: contents})

	if strings.HasPrefix(contents, "\r\n") {
		p.log.Log("Leading newline found", eventlog.Event{Action: "process", Event: "fsdownload"})
		contents = contents[2:]
	}
	if strings.HasSuffix(contents, "\r\n") {
		p.log.Log("Trailing newline found", eventlog.Event{Action: "process", Event: "fsdownload"})
		contents = contents[:len(contents)-2]
	}

	if file != "" {
		p.fs.WriteFile(file, []byte(contents))
	}
	p.log.Log("Sending empty response", eventlog.Event{Action: "response", Event: "fsdownload"})
	return ""
}

func (p *Printer) commandRdyMsg(body string) string {
	params := ParseParams(body)
	rdymsg := params["DISPLAY"]
	p.log.Log("Ready message", eventlog.Event{Action: "request", Event: "rdymsg", Rdymsg: rdymsg})

	p.readyMsg = strings.ReplaceAll(rdymsg, `"`, "")
	p.log.Log("Ready message response", eventlog.Event{Action: "response", Event: "rdymsg"})
	return ""
}

func (p *Printer) checkHoneytoken(file string) {
	if !honeytokenPaths[file] || p.alerter == nil {
		return
	}
	p.log.Log("Honeytoken accessed", eventlog.Event{Action: "honeytoken", Event: "honeytoken_access", FileName: file})
	p.alerter.HoneytokenAccessed(file, p.sessionID, p.srcIP, p.srcPort, p.now().UTC())
}
