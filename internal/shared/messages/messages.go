package messages

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

type MessageText struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Format substitutes args into Body.
func (m MessageText) Format(args ...any) MessageText {
	return MessageText{Title: m.Title, Body: fmt.Sprintf(m.Body, args...)}
}

type Messages struct {
	// OverdueAlert body receives the number of swept transactions and the total outstanding.
	OverdueAlert   MessageText `json:"overdue_alert"`
	SummaryFailure MessageText `json:"summary_failure"`
}

// Default returns the built-in notification texts.
func Default() *Messages {
	return &Messages{
		OverdueAlert: MessageText{
			Title: "Overdue transactions",
			Body:  "%d transaction(s) became overdue, %s outstanding.",
		},
		SummaryFailure: MessageText{
			Title: "Financial summary not updated",
			Body:  "The dashboard summary could not be rebuilt: %s",
		},
	}
}

// Load reads the notifications JSON file. An empty path yields the defaults,
// and texts missing from the file keep their default value.
func Load(path string) (*Messages, error) {
	msgs := Default()
	if strings.TrimSpace(path) == "" {
		return msgs, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read messages file: %w", err)
	}
	if err := json.Unmarshal(data, msgs); err != nil {
		return nil, fmt.Errorf("failed to parse messages file: %w", err)
	}
	return msgs, nil
}
