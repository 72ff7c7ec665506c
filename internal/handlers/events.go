package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Lllllllleong/healthportal/internal/models"
	"github.com/Lllllllleong/healthportal/internal/session"
	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// pubSubEnvelope is the data of a Pub/Sub message published CloudEvent.
type pubSubEnvelope struct {
	Message struct {
		Data       []byte            `json:"data"`
		Attributes map[string]string `json:"attributes"`
		MessageID  string            `json:"messageId"`
	} `json:"message"`
}

// RecordPredictionEvent persists a prediction result published on Pub/Sub.
// The owning user is named by the message's "uid" attribute. Messages that
// can never be recorded (no uid, undecodable data) are logged and
// acknowledged so Pub/Sub does not redeliver them.
func (h *Handlers) RecordPredictionEvent(ctx context.Context, e cloudevents.Event) error {
	var envelope pubSubEnvelope
	if err := json.Unmarshal(e.Data(), &envelope); err != nil {
		slog.Error("Failed to unmarshal event data; dropping.", "error", err, "eventId", e.ID())
		return nil
	}
	logCtx := slog.With("eventId", e.ID(), "messageId", envelope.Message.MessageID)

	uid := envelope.Message.Attributes["uid"]
	if uid == "" {
		logCtx.Warn("Prediction event has no uid attribute; dropping.")
		return nil
	}
	var result models.PredictionResult
	if err := json.Unmarshal(envelope.Message.Data, &result); err != nil {
		logCtx.Error("Failed to unmarshal prediction result; dropping.", "error", err, "uid", uid)
		return nil
	}

	sessions := session.NewNotifier()
	sessions.Publish(&models.Session{UID: uid})
	report := h.portal.Recorder.Save(ctx, sessions, result)

	logCtx.Info("Prediction event recorded.",
		"uid", uid,
		"predictionType", report.Type,
		"saved", report.Saved,
		"failed", report.Failed,
	)
	return nil
}
