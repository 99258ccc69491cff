package kafka

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/IBM/sarama"
)

// NotificationHandler is the delivery side of the transition event stream.
// Actual channels (email, push) live elsewhere; this logs what would be
// dispatched and acknowledges the message.
type NotificationHandler struct {
	Logger *slog.Logger
}

type transitionEnvelope struct {
	Type string `json:"type"`
	Data struct {
		ReservationID string `json:"ReservationID"`
		From          string `json:"From"`
		To            string `json:"To"`
		ActorID       string `json:"ActorID"`
	} `json:"data"`
}

func (h NotificationHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var env transitionEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		if h.Logger != nil {
			h.Logger.Warn("undecodable reservation event", "topic", msg.Topic, "error", err)
		}
		return nil
	}
	if h.Logger != nil {
		h.Logger.Info("notification dispatched",
			"event", env.Type,
			"reservation_id", env.Data.ReservationID,
			"from", env.Data.From,
			"to", env.Data.To,
			"actor_id", env.Data.ActorID)
	}
	return nil
}
