// miniprint — network printer honeypot speaking PJL/PostScript on port 9100.
// Usage: go run ./cmd/miniprint [-b HOST] [-l FILE] [-t SECONDS] [--config FILE]
package main

import (
	"flag"
	"log"
	"time"

	"github.com/chensy618/HoneyFarm/internal/alert"
	"github.com/chensy618/HoneyFarm/internal/config"
	"github.com/chensy618/HoneyFarm/internal/eventlog"
	"github.com/chensy618/HoneyFarm/internal/printer"
)

func main() {
	bind := flag.String("b", "", "Address to bind the virtual printer to")
	flag.StringVar(bind, "bind", "", "Address to bind the virtual printer to")
	logFile := flag.String("l", "", "Path to the JSON-lines log file")
	flag.StringVar(logFile, "log-file", "", "Path to the JSON-lines log file")
	timeout := flag.Int("t", 0, "Seconds to wait before disconnecting an idle client")
	flag.IntVar(timeout, "timeout", 0, "Seconds to wait before disconnecting an idle client")
	cfgPath := flag.String("config", "", "Path to TOML config file")
	uploads := flag.String("uploads", "", "Directory for captured print jobs")
	maxConns := flag.Int("max-conns", 0, "Maximum concurrent connections")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			log.Fatal(err)
		}
	}

	// Flags win over the file.
	if *bind != "" {
		cfg.Bind = *bind
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}
	if *timeout != 0 {
		cfg.Timeout = *timeout
	}
	if *uploads != "" {
		cfg.Uploads = *uploads
	}
	if *maxConns != 0 {
		cfg.MaxConns = *maxConns
	}

	elog, err := eventlog.Open(cfg.LogFile)
	if err != nil {
		log.Fatal(err)
	}
	defer elog.Close()

	identity := printer.NewIdentityPool(cfg.Printer.RotateIdentity)
	if cfg.Printer.ReadyMsg != "" {
		identity.SetReadyMsg(cfg.Printer.ReadyMsg)
	}

	var alerter printer.Alerter
	if cfg.Alert.Enabled {
		alerter = alert.NewEmailer(alert.SMTPConfig{
			Server:   cfg.Alert.Server,
			Port:     cfg.Alert.Port,
			Username: cfg.Alert.Username,
			Password: cfg.Alert.Password,
			From:     cfg.Alert.From,
			To:       cfg.Alert.To,
		})
	}

	if *cfgPath != "" {
		stop := make(chan struct{})
		defer close(stop)
		err := config.Watch(*cfgPath, func(next config.Config) {
			if next.Printer.ReadyMsg != "" {
				identity.SetReadyMsg(next.Printer.ReadyMsg)
				log.Printf("ready message now %q", next.Printer.ReadyMsg)
			}
		}, stop)
		if err != nil {
			log.Printf("config watch disabled: %v", err)
		}
	}

	srv := printer.NewServer(printer.ServerConfig{
		Bind:      cfg.Bind,
		Port:      cfg.Port,
		Timeout:   time.Duration(cfg.Timeout) * time.Second,
		MaxConns:  cfg.MaxConns,
		UploadDir: cfg.Uploads,
	}, elog, identity, alerter)

	log.Printf("miniprint listening on %s:%d", cfg.Bind, cfg.Port)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
