package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"

	"finmgmt/internal/domain/event"
)

func TestPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var e event.Event
		if err := json.Unmarshal(val, &e); err != nil {
			return err
		}
		if e.Name != event.TransactionCreated || e.EntityID != "tx-1" {
			return fmt.Errorf("unexpected event %+v", e)
		}
		return nil
	})

	p := newPublisher(producer, "financial.events")
	err := p.Publish(context.Background(), event.Event{
		Name:       event.TransactionCreated,
		EntityID:   "tx-1",
		OccurredAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if err := p.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestPublisher_PublishFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := newPublisher(producer, "financial.events")
	err := p.Publish(context.Background(), event.Event{Name: event.PaymentDeleted, EntityID: "p-1"})
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Errorf("Publish() error = %v, want ErrOutOfBrokers", err)
	}

	if err := p.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
