package changelog

import (
	"context"
	"encoding/json"

	"github.com/joripage/exchange-engine/pkg/kafkawrapper"
)

// KafkaPublisher is the Kafka flavor of the changelog, keyed by ticker so
// one security's deltas stay ordered within a partition.
type KafkaPublisher struct {
	producer *kafkawrapper.Producer
	topic    string
}

func NewKafkaPublisher(producer *kafkawrapper.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev *Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, p.topic, []byte(ev.Ticker), data, nil)
}
