package changelog

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
)

// JetStreamPublisher writes events to a JetStream subject. The stream is
// expected to exist; EnsureStream creates it on first use.
type JetStreamPublisher struct {
	js      nats.JetStreamContext
	subject string
}

func NewJetStreamPublisher(js nats.JetStreamContext, subject string) *JetStreamPublisher {
	return &JetStreamPublisher{js: js, subject: subject}
}

func EnsureStream(js nats.JetStreamContext, stream, subject string) error {
	_, err := js.AddStream(&nats.StreamConfig{
		Name:     stream,
		Subjects: []string{subject},
	})
	return err
}

func (p *JetStreamPublisher) Publish(_ context.Context, ev *Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(p.subject, data)
	return err
}
