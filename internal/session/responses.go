package session

import (
	mrand "math/rand"

	"github.com/chensy618/HoneyFarm/internal/emotion"
	"github.com/chensy618/HoneyFarm/internal/personality"
)

// ResponseTable is the static (trait, emotion) → flavor-text mapping a faked
// command ships. A cell may hold several variants; one is picked at random,
// so two identical lookups can legitimately differ. A missing cell yields ""
// and leaves the emotion untouched. When a cell matches, the table's
// Transitions advance the session emotion before the line is returned.
type ResponseTable struct {
	Variants    map[personality.Trait]map[emotion.Emotion][]string
	Transitions emotion.Transitions
}

// Outputs returns the declared variant set for a cell. Tests assert
// membership against this rather than exact strings.
func (t ResponseTable) Outputs(trait personality.Trait, e emotion.Emotion) []string {
	return t.Variants[trait][e]
}

// Func adapts the table to the dispatch contract.
func (t ResponseTable) Func() ResponseFunc {
	return func(s *Session, trait personality.Trait, e emotion.Emotion) string {
		cell, ok := t.Variants[trait][e]
		if !ok || len(cell) == 0 {
			return ""
		}
		trans := t.Transitions
		if trans == nil {
			trans = emotion.Cycle
		}
		s.Emotion.Set(trans.Next(e))
		if len(cell) == 1 {
			return cell[0]
		}
		return cell[mrand.Intn(len(cell))]
	}
}

// cycle builds the common single-variant table shape: per trait, one line for
// each stop of the canonical Confidence→…→SelfDoubt cycle, in that order.
// Empty strings leave a deliberate gap.
func cycle(lines ...string) map[emotion.Emotion][]string {
	order := []emotion.Emotion{
		emotion.Confidence, emotion.Surprise, emotion.Confusion,
		emotion.Frustration, emotion.SelfDoubt,
	}
	m := make(map[emotion.Emotion][]string, len(order))
	for i, e := range order {
		if i < len(lines) && lines[i] != "" {
			m[e] = []string{lines[i]}
		}
	}
	return m
}

// PingTable mirrors the original ping shim's per-trait error flavor.
var PingTable = ResponseTable{
	Transitions: emotion.Cycle,
	Variants: map[personality.Trait]map[emotion.Emotion][]string{
		personality.Openness: cycle(
			"ping: All sent packets received (no packet loss).",
			"ping: Find packet lost",
			"ping: connect: Network is unreachable",
			"ping: No response from host",
			"ping: Host is reachable",
		),
		personality.Conscientiousness: cycle(
			"ping: Invalid option or syntax",
			"ping: unknown host",
			"ping: unresolved host",
			"ping: Host not found",
			"",
		),
		personality.LowExtraversion: cycle(
			"ping: Host down / 100% 'loss'",
			"ping: Operation not permitted",
			"ping: No route to host",
			"ping: Network unreachable",
			"",
		),
		personality.LowAgreeableness: cycle(
			"ping: 64 bytes from ...",
			"ping: Request timeout",
			"ping: Network is unreachable",
			"ping: Destination host unreachable",
			"ping: Operation not permitted",
		),
		personality.LowNeuroticism: cycle(
			"ping: Response received...",
			"ping: Request timeout",
			"ping: Operation not permitted",
			"ping: Network is unreachable",
			"",
		),
	},
}

// CatTable carries multiple variants in several cells; the picked line varies
// between identical lookups.
var CatTable = ResponseTable{
	Transitions: emotion.Cycle,
	Variants: map[personality.Trait]map[emotion.Emotion][]string{
		personality.Openness: {
			emotion.Confidence: {
				"cat: no such file or directory",
				"cat: read error: Is a directory",
			},
			emotion.Surprise: {
				"cat: sensitive file content\nusername=admin\npassword=1234",
			},
			emotion.Confusion:   {"cat: /etc/passwd: No such file or directory"},
			emotion.Frustration: {"cat: input/output error"},
			emotion.SelfDoubt:   {"Try 'cat --help' for more information"},
		},
		personality.Conscientiousness: {
			emotion.Confidence:  {"cat: end of file reached unexpectedly"},
			emotion.Surprise:    {"cat: permission denied"},
			emotion.Confusion:   {"cat: file corrupted or partially truncated"},
			emotion.Frustration: {"cat: file not found, re-run advised"},
			emotion.SelfDoubt:   {"cat: file read successfully, but unexpected end of file"},
		},
		personality.LowExtraversion: {
			emotion.Confidence: {"cat: username=admin\npassword=1234"},
			emotion.Surprise:   {"cat: file ends abruptly"},
			emotion.Confusion: {
				"cat: expected 4096 bytes, found 4092 bytes.",
				"cat: short read: expected 4096 bytes",
			},
			emotion.Frustration: {"cat: file header unreadable, re-run advised."},
			emotion.SelfDoubt:   {"cat: file read successfully, but unexpected end of file"},
		},
		personality.LowAgreeableness: {
			emotion.Confidence:  {"cat: access granted"},
			emotion.Surprise:    {"cat: file locked during read"},
			emotion.Confusion:   {"cat: file read interrupted, please try again"},
			emotion.Frustration: {"cat: were you supposed to see this at all?"},
			emotion.SelfDoubt:   {"cat: file read successfully, but unexpected end of file"},
		},
		personality.LowNeuroticism: {
			emotion.Confidence:  {"cat: timestamp: 1970-01-01."},
			emotion.Surprise:    {"cat: line mismatch detected, file corrupted"},
			emotion.Confusion:   {"cat: file header unreadable, re-run advised."},
			emotion.Frustration: {"cat: file read successfully, but unexpected end of file"},
		},
	},
}

var LsTable = ResponseTable{
	Transitions: emotion.Cycle,
	Variants: map[personality.Trait]map[emotion.Emotion][]string{
		personality.Openness: cycle(
			"ls: hidden entries not shown, use -a",
			"ls: .secrets  .backup  .config",
			"ls: cannot open directory '.': Permission denied",
			"ls: reading directory '.': Input/output error",
			"ls: directory listing complete",
		),
		personality.Conscientiousness: cycle(
			"ls: cannot access 'backup': No such file or directory",
			"ls: unexpected inode count",
			"ls: stale NFS file handle",
			"ls: cannot open directory '.': Too many open files",
			"",
		),
		personality.LowExtraversion: cycle(
			"ls: total 0",
			"ls: cannot access '.': Operation not permitted",
			"ls: directory entries changed during read",
			"ls: reading directory '.': Bad message",
			"",
		),
		personality.LowAgreeableness: cycle(
			"ls: lost+found  snap  .cache",
			"ls: cannot open directory 'root': Permission denied",
			"ls: '.': No such file or directory",
			"ls: memory exhausted",
			"ls: listing truncated",
		),
		personality.LowNeuroticism: cycle(
			"ls: 4 entries",
			"ls: cannot access 'core': Structure needs cleaning",
			"ls: directory modified while listing",
			"ls: Input/output error",
			"",
		),
	},
}

var UnameTable = ResponseTable{
	Transitions: emotion.Cycle,
	Variants: map[personality.Trait]map[emotion.Emotion][]string{
		personality.Openness: cycle(
			"uname: extra operand ignored",
			"uname: kernel version mismatch detected",
			"uname: cannot determine machine type",
			"uname: unknown option",
			"uname: system identity verified",
		),
		personality.Conscientiousness: cycle(
			"uname: invalid option -- 'z'",
			"uname: unexpected kernel string",
			"uname: /proc/version: Permission denied",
			"uname: cannot read system information",
			"",
		),
		personality.LowExtraversion: cycle(
			"uname: (none)",
			"uname: hostname lookup failed",
			"uname: machine type unavailable",
			"uname: Operation not permitted",
			"",
		),
		personality.LowAgreeableness: cycle(
			"uname: Linux",
			"uname: release string truncated",
			"uname: version query timed out",
			"uname: cannot open /proc/sys/kernel/osrelease",
			"uname: did you expect something else?",
		),
		personality.LowNeuroticism: cycle(
			"uname: ok",
			"uname: unexpected build date",
			"uname: cannot determine processor type",
			"uname: Input/output error",
			"",
		),
	},
}

var WgetTable = ResponseTable{
	Transitions: emotion.Cycle,
	Variants: map[personality.Trait]map[emotion.Emotion][]string{
		personality.Openness: cycle(
			"wget: download completed (200 OK)",
			"wget: unexpected redirect followed",
			"wget: unable to resolve host address",
			"wget: connection timed out",
			"wget: retrying in 1s...",
		),
		personality.Conscientiousness: cycle(
			"wget: missing URL",
			"wget: server returned 403 Forbidden",
			"wget: certificate verification failed",
			"wget: read error (Connection reset by peer)",
			"",
		),
		personality.LowExtraversion: cycle(
			"wget: 0% [                    ] 0  --.-KB/s",
			"wget: Network is unreachable",
			"wget: no route to host",
			"wget: connection refused",
			"",
		),
		personality.LowAgreeableness: cycle(
			"wget: saved to '/dev/null'",
			"wget: server returned 429 Too Many Requests",
			"wget: partial download, file truncated",
			"wget: disk quota exceeded",
			"wget: download blocked by policy",
		),
		personality.LowNeuroticism: cycle(
			"wget: 'index.html' saved",
			"wget: length mismatch, file may be corrupt",
			"wget: server closed connection mid-transfer",
			"wget: Input/output error writing file",
			"",
		),
	},
}

var GrepTable = ResponseTable{
	Transitions: emotion.Cycle,
	Variants: map[personality.Trait]map[emotion.Emotion][]string{
		personality.Openness: cycle(
			"grep: 3 matches found",
			"grep: binary file matches",
			"grep: (standard input): Invalid argument",
			"grep: memory exhausted",
			"grep: no matches",
		),
		personality.Conscientiousness: cycle(
			"grep: invalid option -- 'q'",
			"grep: unexpected pattern match in binary data",
			"grep: recursive directory loop",
			"grep: input file is also the output",
			"",
		),
		personality.LowExtraversion: cycle(
			"grep: no such file or directory",
			"grep: Permission denied",
			"grep: pattern not found",
			"grep: Input/output error",
			"",
		),
		personality.LowAgreeableness: cycle(
			"grep: matches suppressed",
			"grep: line too long",
			"grep: file skipped: Is a directory",
			"grep: aborted: too many errors",
			"grep: results withheld",
		),
		personality.LowNeuroticism: cycle(
			"grep: done",
			"grep: NUL byte in pattern",
			"grep: locale not supported",
			"grep: Input/output error",
			"",
		),
	},
}

// Builtin registers the built-in response tables on a registry.
func Builtin(r *Registry) {
	r.Register("ping", PingTable.Func())
	r.Register("cat", CatTable.Func())
	r.Register("ls", LsTable.Func())
	r.Register("uname", UnameTable.Func())
	r.Register("wget", WgetTable.Func())
	r.Register("grep", GrepTable.Func())
}
