package printer

import (
	"regexp"
	"strings"
)

// Kind identifies a parsed PJL sub-command. Dispatching over a closed enum
// instead of startswith-chains removes prefix-collision ordering hazards
// (INFO vs INFO ID vs INFO STATUS).
type Kind int

const (
	// KindRawData is text with no @PJL prefix: print-job payload.
	KindRawData Kind = iota
	KindUnknown
	KindEcho
	KindUstatusOff
	KindInfoID
	KindInfoStatus
	KindFSDirList
	KindFSQuery
	KindFSMkdir
	KindFSUpload
	KindFSDownload
	KindRdyMsg
)

// Command is one logical command cut from an inbound chunk.
type Command struct {
	Kind Kind
	// Body is the text after the "@PJL " prefix; for raw data it is the
	// payload itself.
	Body string
}

// SplitCommands cuts a request chunk into logical commands at each @PJL
// boundary. Text arriving before any @PJL token is a single raw-data
// command.
//
//	"@PJL USTATUSOFF\r\n@PJL INFO ID\r\n" -> ["@PJL USTATUSOFF\r\n", "@PJL INFO ID\r\n"]
//	"This is my print job"               -> ["This is my print job"]
func SplitCommands(text string) []string {
	parts := strings.Split(text, "@PJL")
	var commands []string
	if parts[0] != "" {
		commands = append(commands, parts[0])
	}
	for _, part := range parts[1:] {
		if part == "" {
			continue
		}
		commands = append(commands, "@PJL"+part)
	}
	return commands
}

// Parse classifies one command string.
func Parse(chunk string) Command {
	chunk = strings.TrimLeft(chunk, " \t\r\n")
	if !strings.HasPrefix(chunk, "@PJL ") {
		return Command{Kind: KindRawData, Body: chunk}
	}
	body := chunk[len("@PJL "):]

	kind := KindUnknown
	switch {
	case strings.HasPrefix(body, "ECHO"):
		kind = KindEcho
	case strings.HasPrefix(body, "USTATUSOFF"):
		kind = KindUstatusOff
	case strings.HasPrefix(body, "INFO ID"):
		kind = KindInfoID
	case strings.HasPrefix(body, "INFO STATUS"):
		kind = KindInfoStatus
	case strings.HasPrefix(body, "FSDIRLIST"):
		kind = KindFSDirList
	case strings.HasPrefix(body, "FSQUERY"):
		kind = KindFSQuery
	case strings.HasPrefix(body, "FSMKDIR"):
		kind = KindFSMkdir
	case strings.HasPrefix(body, "FSUPLOAD"):
		kind = KindFSUpload
	case strings.HasPrefix(body, "FSDOWNLOAD"):
		kind = KindFSDownload
	case strings.HasPrefix(body, "RDYMSG"):
		kind = KindRdyMsg
	}
	return Command{Kind: kind, Body: body}
}

// paramRe matches `key = "value"` and `key = value` pairs with whitespace
// around the equal sign. Compiled once; reused across every request.
var paramRe = regexp.MustCompile(`\s+(\S+)\s+=\s+(?:"([^=]+)"|(\S+))`)

// ParseParams extracts KEY=VALUE pairs from a command body. Two strategies
// run in order, first match per key wins: a naive split for tightly-packed
// pairs (A=1, NAME="x"), then the regex for pairs with whitespace around the
// equal sign. Quoted values keep their quotes; callers strip them.
func ParseParams(command string) map[string]string {
	params := make(map[string]string)

	for _, tok := range strings.Split(command, " ") {
		if !strings.Contains(tok, "=") || len(tok) <= 1 {
			continue
		}
		pieces := strings.Split(tok, "=")
		key, value := pieces[0], pieces[1]
		if key == "" {
			continue
		}
		if strings.HasPrefix(value, `"`) {
			// Quoted values may run past the token: KEY="VALUE"\r\nmore
			if end := strings.Index(value[1:], `"`); end >= 0 {
				value = value[:end+2]
			}
		}
		params[key] = value
	}

	for _, m := range paramRe.FindAllStringSubmatch(command, -1) {
		key := m[1]
		if _, ok := params[key]; ok {
			continue
		}
		if m[2] != "" {
			params[key] = m[2]
		} else {
			params[key] = m[3]
		}
	}
	return params
}

// pathParam turns a PJL NAME parameter like `"0:/webServer/home"` into a
// filesystem path, dropping quotes and the volume prefix.
func pathParam(value string) string {
	value = strings.ReplaceAll(value, `"`, "")
	if idx := strings.Index(value, ":"); idx >= 0 {
		value = value[idx+1:]
	}
	return value
}
