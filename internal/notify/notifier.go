package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/flight-deals/internal/itinerary"
)

type Sender interface {
	Send(ctx context.Context, m Message) error
}

// Notifier emails one alert per itinerary.
type Notifier struct {
	Sender Sender
	From   string
	To     []string
	Log    *slog.Logger
}

// Notify sends the alerts in order and stops at the first failure. It returns
// how many were sent.
func (n *Notifier) Notify(ctx context.Context, its []itinerary.Itinerary) (int, error) {
	log := n.Log
	if log == nil {
		log = slog.Default()
	}
	sent := 0
	for _, it := range its {
		m, err := NewMessage(n.From, n.To, Subject(it), it.String(), "plain")
		if err != nil {
			return sent, err
		}
		if err := n.Sender.Send(ctx, m); err != nil {
			return sent, fmt.Errorf("notify %s: %w", it.CityCodeTo, err)
		}
		log.Info("alert sent", "to", it.CityCodeTo, "recipients", len(n.To))
		sent++
	}
	return sent, nil
}
