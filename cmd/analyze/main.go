// analyze — printer honeypot log analyzer
// Usage: go run ./cmd/analyze [--top N] [--log-file PATH] [--db PATH]
//
// Ingests the miniprint JSON-lines log into SQLite, then reports traffic
// volume, command mix, captured jobs and honeytoken touches. With
// --commands FILE it instead profiles the listed shell commands.
package main

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/chensy618/HoneyFarm/internal/eventlog"
	"github.com/chensy618/HoneyFarm/internal/personality"
)

// ── Formatting ─────────────────────────────────────────────────────────────────

func printTable(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	sep := make([]string, len(headers))
	for i, w := range widths {
		sep[i] = strings.Repeat("─", w)
	}
	row2line := func(cells []string) string {
		parts := make([]string, len(headers))
		for i := range headers {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
		}
		return strings.Join(parts, "  ")
	}
	fmt.Println(row2line(headers))
	fmt.Println(strings.Join(sep, "  "))
	for _, row := range rows {
		fmt.Println(row2line(row))
	}
}

func section(title string) {
	fmt.Printf("\n%s\n%s\n", title, strings.Repeat("─", len(title)))
}

// ── Ingest ─────────────────────────────────────────────────────────────────────

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	info      TEXT NOT NULL,
	src_ip    TEXT,
	dest_port INTEGER,
	action    TEXT,
	command   TEXT,
	event     TEXT,
	file_name TEXT,
	job_text  TEXT,
	upload_file TEXT
);
CREATE INDEX IF NOT EXISTS idx_events_src ON events(src_ip);
CREATE INDEX IF NOT EXISTS idx_events_action ON events(action);
`

func ingest(db *sql.DB, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	stmt, err := tx.Prepare(`INSERT INTO events
		(timestamp, info, src_ip, dest_port, action, command, event, file_name, job_text, upload_file)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return 0, err
	}
	defer stmt.Close()

	n := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var ev eventlog.Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			continue // tolerate truncated lines from a live log
		}
		if _, err := stmt.Exec(ev.Timestamp, ev.Info, ev.SrcIP, ev.DestPort,
			ev.Action, ev.Command, ev.Event, ev.FileName, ev.JobText, ev.UploadFile); err != nil {
			tx.Rollback() //nolint:errcheck
			return 0, err
		}
		n++
	}
	if err := sc.Err(); err != nil {
		tx.Rollback() //nolint:errcheck
		return 0, err
	}
	return n, tx.Commit()
}

// ── Queries ────────────────────────────────────────────────────────────────────

func topRows(db *sql.DB, query string, n int) [][]string {
	rows, err := db.Query(query, n)
	if err != nil {
		log.Printf("query: %v", err)
		return nil
	}
	defer rows.Close()
	var out [][]string
	for rows.Next() {
		var k string
		var v int
		if err := rows.Scan(&k, &v); err != nil {
			continue
		}
		out = append(out, []string{k, fmt.Sprint(v)})
	}
	return out
}

func listRows(db *sql.DB, query string) [][]string {
	rows, err := db.Query(query)
	if err != nil {
		log.Printf("query: %v", err)
		return nil
	}
	defer rows.Close()
	var out [][]string
	for rows.Next() {
		var ts, ip, file string
		if err := rows.Scan(&ts, &ip, &file); err != nil {
			continue
		}
		if len(ts) > 19 {
			ts = ts[:19]
		}
		out = append(out, []string{ts, ip, file})
	}
	return out
}

func countWhere(db *sql.DB, where string) int {
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM events WHERE " + where).Scan(&n); err != nil {
		return 0
	}
	return n
}

func report(db *sql.DB, topN int) {
	now := time.Now().UTC()
	fmt.Printf("\n%s\n", strings.Repeat("═", 62))
	fmt.Printf("  PRINTER HONEYPOT REPORT  —  %s UTC\n", now.Format("2006-01-02 15:04"))
	fmt.Printf("%s\n", strings.Repeat("═", 62))

	section("Traffic")
	fmt.Printf("Total events      : %d\n", countWhere(db, "1=1"))
	fmt.Printf("Connections       : %d\n", countWhere(db, "action = 'open_conn'"))
	fmt.Printf("Port scans        : %d\n", countWhere(db, "event = 'port_scan'"))
	fmt.Printf("Errors caught     : %d\n", countWhere(db, "action = 'error_caught'"))

	section(fmt.Sprintf("Top %d Source IPs", topN))
	printTable([]string{"IP", "Connections"}, topRows(db, `
		SELECT src_ip, COUNT(*) FROM events
		WHERE action = 'open_conn' AND src_ip != ''
		GROUP BY src_ip ORDER BY COUNT(*) DESC LIMIT ?`, topN))

	section(fmt.Sprintf("Top %d PJL Commands", topN))
	printTable([]string{"Command", "Count"}, topRows(db, `
		SELECT command, COUNT(*) FROM events
		WHERE command != ''
		GROUP BY command ORDER BY COUNT(*) DESC LIMIT ?`, topN))

	section("Captured Jobs")
	jobs := listRows(db, `
		SELECT timestamp, src_ip, upload_file FROM events
		WHERE upload_file != '' ORDER BY timestamp`)
	if len(jobs) == 0 {
		fmt.Println("No print jobs captured.")
	} else {
		printTable([]string{"Timestamp", "IP", "File"}, jobs)
	}

	section("Honeytoken Filesystem Reads")
	reads := listRows(db, `
		SELECT timestamp, src_ip, file_name FROM events
		WHERE action = 'fsupload'
		  AND (file_name LIKE '%/lib/keys' OR file_name LIKE '%/lib/security')
		ORDER BY timestamp`)
	if len(reads) == 0 {
		fmt.Println("No honeytoken reads recorded.")
	} else {
		printTable([]string{"Timestamp", "IP", "File"}, reads)
	}

	fmt.Printf("\n%s\n\n", strings.Repeat("═", 62))
}

// ── Personality mode ───────────────────────────────────────────────────────────

func profileCommands(path, taxonomyPath string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var commands []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		commands = append(commands, line)
	}
	if err := sc.Err(); err != nil {
		return err
	}

	tax := personality.Default()
	if taxonomyPath != "" {
		tax, err = personality.LoadFile(taxonomyPath)
		if err != nil {
			return err
		}
	}
	fmt.Println(tax.Report(commands))
	return nil
}

// ── Main ───────────────────────────────────────────────────────────────────────

func main() {
	topN := flag.Int("top", 20, "Number of top entries to show")
	logFile := flag.String("log-file", "./miniprint.log", "Path to miniprint JSON log")
	dbPath := flag.String("db", "", "SQLite database path (default in-memory)")
	cmdFile := flag.String("commands", "", "Profile the shell commands listed in FILE instead")
	taxFile := flag.String("taxonomy", "", "YAML taxonomy override for --commands mode")
	flag.Parse()

	if *cmdFile != "" {
		if err := profileCommands(*cmdFile, *taxFile); err != nil {
			log.Fatal(err)
		}
		return
	}

	dsn := *dbPath
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if _, err := db.Exec(schema); err != nil {
		log.Fatal(err)
	}

	n, err := ingest(db, *logFile)
	if err != nil {
		log.Fatal(err)
	}
	if n == 0 {
		fmt.Println("No events logged yet.")
		return
	}
	report(db, *topN)
}
