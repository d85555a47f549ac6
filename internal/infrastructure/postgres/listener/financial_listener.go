package listener

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/lib/pq"
)

const (
	channelName = "financial_changed"

	minReconnect = 5 * time.Second
	maxReconnect = time.Minute
	pingInterval = 90 * time.Second

	// OperationResync is delivered after a reconnect, when notifications sent
	// while disconnected are lost.
	OperationResync = "RESYNC"
)

// ChangeNotification is the payload of the notify_financial_changed trigger.
type ChangeNotification struct {
	Table     string `json:"table"`
	Operation string `json:"operation"`
	ID        string `json:"id"`

	// Merged counts the notifications folded into this one.
	Merged int `json:"-"`
}

// FinancialListener follows LISTEN financial_changed and calls onChange at
// most once per debounce window, with the latest change in that window.
type FinancialListener struct {
	connStr  string
	onChange func(ChangeNotification)
	debounce time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

func NewFinancialListener(connStr string, onChange func(ChangeNotification)) *FinancialListener {
	return &FinancialListener{
		connStr:  connStr,
		onChange: onChange,
		debounce: 500 * time.Millisecond,
		done:     make(chan struct{}),
	}
}

// Start connects in the background. pq reconnects on its own with backoff.
func (l *FinancialListener) Start(ctx context.Context) {
	ctx, l.cancel = context.WithCancel(ctx)

	ln := pq.NewListener(l.connStr, minReconnect, maxReconnect, logEvent)
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	go func() {
		defer close(l.done)
		if err := ln.Listen(channelName); err != nil {
			if ctx.Err() == nil {
				log.Printf("LISTEN %s failed: %v", channelName, err)
			}
			return
		}
		log.Printf("Listening on %s", channelName)
		l.loop(ctx, ln.Notify, func() {
			if err := ln.Ping(); err != nil {
				log.Printf("Listener ping failed: %v", err)
			}
		})
	}()
}

// Stop closes the connection and waits for the loop to exit.
func (l *FinancialListener) Stop() {
	if l.cancel == nil {
		return
	}
	l.cancel()
	<-l.done
	log.Println("Financial change listener stopped")
}

func (l *FinancialListener) loop(ctx context.Context, notify <-chan *pq.Notification, ping func()) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	var (
		pending ChangeNotification
		flush   <-chan time.Time
	)
	queue := func(c ChangeNotification) {
		c.Merged = pending.Merged + 1
		pending = c
		if flush == nil {
			flush = time.After(l.debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case n, ok := <-notify:
			if !ok {
				return
			}
			if n == nil {
				queue(ChangeNotification{Operation: OperationResync})
				continue
			}
			change, err := parseNotification(n.Extra)
			if err != nil {
				log.Printf("Ignoring malformed %s payload: %v", channelName, err)
				continue
			}
			queue(change)

		case <-flush:
			log.Printf("Financial change: %s %s %s (%d merged)", pending.Operation, pending.Table, pending.ID, pending.Merged)
			l.onChange(pending)
			pending, flush = ChangeNotification{}, nil

		case <-ticker.C:
			go ping()
		}
	}
}

func logEvent(ev pq.ListenerEventType, err error) {
	switch ev {
	case pq.ListenerEventConnected:
		log.Printf("Connected to %s", channelName)
	case pq.ListenerEventDisconnected:
		log.Printf("Lost %s connection: %v", channelName, err)
	case pq.ListenerEventReconnected:
		log.Printf("Reconnected to %s", channelName)
	case pq.ListenerEventConnectionAttemptFailed:
		log.Printf("Connecting to %s failed: %v", channelName, err)
	}
}

func parseNotification(payload string) (ChangeNotification, error) {
	var change ChangeNotification
	err := json.Unmarshal([]byte(payload), &change)
	return change, err
}
