// Package alert sends the honeytoken email side channel. Everything here is
// best-effort: failures are logged and swallowed, never returned to the
// triggering connection handler.
package alert

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/smtp"
	"time"
)

// geoEndpoint is queried for best-effort attacker geolocation.
const geoEndpoint = "http://ip-api.com/json/%s?fields=country,regionName,city,zip,lat,lon,org,query"

// SMTPConfig is the relay used for honeytoken notifications.
type SMTPConfig struct {
	Server   string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// Emailer implements printer.Alerter over an SMTP relay.
type Emailer struct {
	cfg    SMTPConfig
	client *http.Client
	geoURL string
	// send is swappable for tests; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailer(cfg SMTPConfig) *Emailer {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &Emailer{
		cfg:    cfg,
		client: &http.Client{Timeout: 3 * time.Second},
		geoURL: geoEndpoint,
		send:   smtp.SendMail,
	}
}

// HoneytokenAccessed composes and sends the alert. Geolocation lookup and
// SMTP delivery are both allowed to fail silently (logged only).
func (e *Emailer) HoneytokenAccessed(filename, sessionID, srcIP string, srcPort int, ts time.Time) {
	body := fmt.Sprintf(`ALERT: Honeytoken file accessed!

Filename: %s
Session ID: %s
Source IP-Port: %s : %d
Timestamp (UTC): %s
%s
`, filename, sessionID, srcIP, srcPort, ts.Format(time.RFC3339), e.locate(srcIP))

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Honeypot Honeytoken Alert\r\n\r\n%s",
		e.cfg.From, e.cfg.To, body)

	addr := fmt.Sprintf("%s:%d", e.cfg.Server, e.cfg.Port)
	var auth smtp.Auth
	if e.cfg.Username != "" {
		auth = smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.Server)
	}
	if err := e.send(addr, auth, e.cfg.From, []string{e.cfg.To}, []byte(msg)); err != nil {
		log.Printf("honeytoken email failed: %v", err)
		return
	}
	log.Printf("honeytoken alert email sent for %s", filename)
}

type geoResponse struct {
	Country    string  `json:"country"`
	RegionName string  `json:"regionName"`
	City       string  `json:"city"`
	Zip        string  `json:"zip"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Org        string  `json:"org"`
	Query      string  `json:"query"`
}

// locate formats the geolocation block for the alert body.
func (e *Emailer) locate(ip string) string {
	resp, err := e.client.Get(fmt.Sprintf(e.geoURL, ip))
	if err != nil {
		return fmt.Sprintf("IP Geolocation failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "IP Geolocation unavailable"
	}
	var geo geoResponse
	if err := json.NewDecoder(resp.Body).Decode(&geo); err != nil {
		return fmt.Sprintf("IP Geolocation failed: %v", err)
	}
	return fmt.Sprintf(`
IP Address: %s
Location: %s, %s, %s %s
Coordinates: %g, %g
ISP/Org: %s
`, geo.Query, geo.City, geo.RegionName, geo.Country, geo.Zip, geo.Lat, geo.Lon, geo.Org)
}
