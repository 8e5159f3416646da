// Package events announces committed batches on NATS. Publishing happens
// after the store commit and never changes a run's outcome.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	StreamName = "CLASSBOARD"

	SubjectNotificationsCreated = "classboard.notifications.created"
	SubjectNewsCreated          = "classboard.news.created"
)

type Event struct {
	Job   string   `json:"job"`
	Date  string   `json:"date"`
	Count int      `json:"count"`
	IDs   []string `json:"ids"`
}

// Publisher sends events to JetStream when the server supports it and to
// core NATS otherwise. A nil *Publisher drops every event.
type Publisher struct {
	nc *nats.Conn
	js nats.JetStreamContext
}

func Connect(url string) (*Publisher, error) {
	nc, err := nats.Connect(url, nats.Name("classboard"), nats.Timeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	p := &Publisher{nc: nc}

	js, err := nc.JetStream()
	if err == nil {
		err = setupStream(js)
	}
	if err != nil {
		slog.Warn("JetStream unavailable, publishing to core NATS", "error", err)
	} else {
		p.js = js
	}

	slog.Info("Connected to NATS", "url", url, "jetstream", p.js != nil)

	return p, nil
}

func setupStream(js nats.JetStreamContext) error {
	_, err := js.AddStream(&nats.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{"classboard.>"},
		Retention: nats.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   nats.FileStorage,
	})
	if err != nil && !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
		return err
	}
	return nil
}

func (p *Publisher) Publish(subject string, e Event) error {
	if p == nil {
		return nil
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	if p.js != nil {
		if _, err := p.js.Publish(subject, data); err != nil {
			return fmt.Errorf("failed to publish %s: %w", subject, err)
		}
		return nil
	}

	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	return p.nc.Flush()
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.nc.Close()
}
