package outbox

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	appoutbox "staybook/internal/app/outbox"
)

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Relay wraps event records into CloudEvents and publishes them to
// "<prefix><aggregate kind>.events.v1" topics, keyed by aggregate id.
type Relay struct {
	Producer    Producer
	TopicPrefix string
	Source      string
}

// Deliver publishes one record.
func (r Relay) Deliver(ctx context.Context, rec appoutbox.EventRecord) error {
	payload, headers, err := r.format(rec)
	if err != nil {
		return err
	}
	return r.Producer.Publish(ctx, r.TopicFor(rec.Name), rec.Aggregate, payload, headers)
}

func (r Relay) format(rec appoutbox.EventRecord) ([]byte, map[string]string, error) {
	data := map[string]any{}
	if err := json.Unmarshal(rec.Payload, &data); err != nil {
		return nil, nil, err
	}
	evt := map[string]any{
		"specversion":     "1.0",
		"id":              rec.ID,
		"type":            rec.Name + ".v1",
		"source":          r.source(),
		"time":            rec.OccurredAt,
		"datacontenttype": "application/json",
		"data":            data,
	}
	if rec.ID == "" {
		evt["id"] = uuid.NewString()
	}
	if tenant, ok := rec.Headers["tenant_id"]; ok {
		evt["tenantid"] = tenant
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, err
	}
	headers := map[string]string{"content-type": "application/cloudevents+json"}
	for k, v := range rec.Headers {
		headers[k] = v
	}
	return payload, headers, nil
}

// TopicFor derives the topic from the event name prefix: "wallet.debited"
// goes to "wallet.events.v1".
func (r Relay) TopicFor(name string) string {
	base := name
	if idx := strings.IndexRune(name, '.'); idx > 0 {
		base = name[:idx]
	}
	return r.TopicPrefix + base + ".events.v1"
}

func (r Relay) source() string {
	if r.Source != "" {
		return r.Source
	}
	return "app://staybook"
}
