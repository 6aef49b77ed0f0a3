package alert

import (
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func captureEmailer(cfg SMTPConfig) (*Emailer, *[]sentMail) {
	e := NewEmailer(cfg)
	var sent []sentMail
	e.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		sent = append(sent, sentMail{addr, from, to, string(msg)})
		return nil
	}
	return e, &sent
}

func TestHoneytokenAccessed_SendsMail(t *testing.T) {
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"country":"Norway","regionName":"Oslo","city":"Oslo",` +
			`"zip":"0150","lat":59.91,"lon":10.75,"org":"Example AS","query":"203.0.113.7"}`))
	}))
	defer geo.Close()

	e, sent := captureEmailer(SMTPConfig{
		Server: "relay.example.com",
		From:   "honeypot@example.com",
		To:     "soc@example.com",
	})
	e.geoURL = geo.URL + "/json/%s"

	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	e.HoneytokenAccessed("/webServer/lib/keys", "mp-3", "203.0.113.7", 51234, ts)

	require.Len(t, *sent, 1)
	m := (*sent)[0]
	assert.Equal(t, "relay.example.com:587", m.addr)
	assert.Equal(t, "honeypot@example.com", m.from)
	assert.Equal(t, []string{"soc@example.com"}, m.to)
	assert.Contains(t, m.msg, "Subject: Honeypot Honeytoken Alert")
	assert.Contains(t, m.msg, "ALERT: Honeytoken file accessed!")
	assert.Contains(t, m.msg, "Filename: /webServer/lib/keys")
	assert.Contains(t, m.msg, "Session ID: mp-3")
	assert.Contains(t, m.msg, "203.0.113.7 : 51234")
	assert.Contains(t, m.msg, "Location: Oslo, Oslo, Norway 0150")
	assert.Contains(t, m.msg, "ISP/Org: Example AS")
}

func TestHoneytokenAccessed_GeoFailureStillSends(t *testing.T) {
	e, sent := captureEmailer(SMTPConfig{Server: "relay", To: "soc@example.com"})
	e.geoURL = "http://127.0.0.1:1/json/%s" // nothing listens here

	e.HoneytokenAccessed("/webServer/lib/security", "mp-4", "198.51.100.2", 40000, time.Now())

	require.Len(t, *sent, 1)
	assert.Contains(t, (*sent)[0].msg, "IP Geolocation failed")
}

func TestHoneytokenAccessed_NonOKGeo(t *testing.T) {
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer geo.Close()

	e, sent := captureEmailer(SMTPConfig{Server: "relay", To: "soc@example.com"})
	e.geoURL = geo.URL + "/json/%s"

	e.HoneytokenAccessed("/webServer/lib/keys", "mp-5", "198.51.100.2", 40000, time.Now())
	require.Len(t, *sent, 1)
	assert.Contains(t, (*sent)[0].msg, "IP Geolocation unavailable")
}

func TestNewEmailer_DefaultPort(t *testing.T) {
	e := NewEmailer(SMTPConfig{Server: "relay"})
	assert.Equal(t, 587, e.cfg.Port)
}
