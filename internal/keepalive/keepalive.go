// Package keepalive pings the service's own public URL on a schedule so
// free-tier hosts that idle out inactive containers keep the process warm.
// It never affects request handling; ping failures are only logged.
package keepalive

import (
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Pinger GETs a URL every ten minutes.
type Pinger struct {
	url  string
	http *resty.Client
	cron *cron.Cron
	log  zerolog.Logger
}

// New builds a Pinger for url. An empty url yields a no-op pinger so callers
// can start/stop it unconditionally.
func New(url string, log zerolog.Logger) *Pinger {
	return &Pinger{
		url:  url,
		http: resty.New().SetTimeout(30 * time.Second),
		cron: cron.New(),
		log:  log.With().Str("component", "keepalive").Logger(),
	}
}

// Start schedules the ping job and launches the cron scheduler.
func (p *Pinger) Start() {
	if p.url == "" {
		return
	}
	_, err := p.cron.AddFunc("*/10 * * * *", p.ping)
	if err != nil {
		p.log.Error().Err(err).Msg("keepalive schedule failed")
		return
	}
	p.cron.Start()
	p.log.Info().Str("url", p.url).Msg("keepalive pinger started")
}

// Stop halts the scheduler; a running ping finishes on its own.
func (p *Pinger) Stop() {
	if p.url == "" {
		return
	}
	p.cron.Stop()
}

func (p *Pinger) ping() {
	resp, err := p.http.R().Get(p.url)
	if err != nil {
		p.log.Warn().Err(err).Msg("keepalive ping failed")
		return
	}
	p.log.Debug().Int("status", resp.StatusCode()).Msg("keepalive ping")
}
