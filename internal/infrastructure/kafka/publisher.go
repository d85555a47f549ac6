package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"finmgmt/internal/domain/event"
)

// Publisher implements event.Publisher on a Kafka sync producer
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewPublisher connects to brokers, retrying while Kafka starts up.
func NewPublisher(brokers []string, topic string, attempts int) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Partitioner = sarama.NewHashPartitioner

	if attempts < 1 {
		attempts = 1
	}

	var producer sarama.SyncProducer
	var err error
	for i := 1; i <= attempts; i++ {
		producer, err = sarama.NewSyncProducer(brokers, config)
		if err == nil {
			log.Printf("Kafka producer initialized for topic %s", topic)
			return newPublisher(producer, topic), nil
		}

		log.Printf("Waiting for Kafka... (%d/%d) Error: %v", i, attempts, err)
		if i < attempts {
			time.Sleep(5 * time.Second)
		}
	}

	return nil, fmt.Errorf("failed to start Kafka producer: %w", err)
}

func newPublisher(producer sarama.SyncProducer, topic string) *Publisher {
	return &Publisher{producer: producer, topic: topic}
}

// Publish sends e keyed by the document id so changes to one document stay ordered.
func (p *Publisher) Publish(ctx context.Context, e event.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", e.Name, err)
	}

	key := e.EntityID
	if key == "" {
		key = uuid.NewString()
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event"), Value: []byte(e.Name)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send %s message: %w", e.Name, err)
	}

	log.Printf("Published %s event for %s (partition %d, offset %d)", e.Name, e.EntityID, partition, offset)
	return nil
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}
