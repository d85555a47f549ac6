package firebase

import (
	"context"
	"fmt"
	"log"
	"slices"

	"firebase.google.com/go/v4/messaging"
)

// fcmBatchLimit is the most tokens FCM takes in one multicast.
const fcmBatchLimit = 500

// Messenger is the part of *messaging.Client the notifier uses.
type Messenger interface {
	Send(ctx context.Context, msg *messaging.Message) (string, error)
	SendEachForMulticast(ctx context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// Notifier pushes finance alerts to an FCM topic and to a fixed list of
// device tokens.
type Notifier struct {
	fcm    Messenger
	topic  string
	tokens []string
}

func NewNotifier(fcm Messenger, topic string, tokens []string) *Notifier {
	return &Notifier{fcm: fcm, topic: topic, tokens: tokens}
}

// Notify delivers one alert to the topic, then to each configured token.
// A topic failure stops delivery.
func (n *Notifier) Notify(ctx context.Context, title, body string, data map[string]string) error {
	note := &messaging.Notification{Title: title, Body: body}
	android := &messaging.AndroidConfig{Priority: "high"}

	if n.topic != "" {
		id, err := n.fcm.Send(ctx, &messaging.Message{
			Topic:        n.topic,
			Notification: note,
			Android:      android,
			Data:         data,
		})
		if err != nil {
			return fmt.Errorf("fcm topic %s: %w", n.topic, err)
		}
		log.Printf("FCM topic %s: sent %s", n.topic, id)
	}

	if len(n.tokens) == 0 {
		return nil
	}

	var sent, failed, stale int
	for batch := range slices.Chunk(n.tokens, fcmBatchLimit) {
		resp, err := n.fcm.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens:       batch,
			Notification: note,
			Android:      android,
			Data:         data,
		})
		if err != nil {
			return fmt.Errorf("fcm multicast: %w", err)
		}
		sent += resp.SuccessCount
		failed += resp.FailureCount
		for i, r := range resp.Responses {
			if r.Error == nil {
				continue
			}
			if messaging.IsUnregistered(r.Error) {
				stale++
				continue
			}
			log.Printf("FCM token %s: %v", batch[i], r.Error)
		}
	}

	log.Printf("FCM multicast: %d sent, %d failed (%d unregistered)", sent, failed, stale)
	if sent == 0 && failed > 0 {
		return fmt.Errorf("fcm multicast: all %d deliveries failed", failed)
	}
	return nil
}
