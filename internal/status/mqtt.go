package status

import (
	"time"

	"github.com/nerrad567/gray-logic-sensor/internal/infrastructure/mqtt"
)

// Status values published on the device topic.
const (
	statusOK     = "ok"
	statusFailed = "failed"
)

// retainedPublisher is implemented by *mqtt.Client.
type retainedPublisher interface {
	PublishRetained(topic string, payload []byte) error
}

// MQTT publishes the last cycle outcome as a retained message.
type MQTT struct {
	pub      retainedPublisher
	clientID string
	topic    string
	log      Logger
	now      func() time.Time
}

// NewMQTT creates an indicator publishing through client.
func NewMQTT(client *mqtt.Client, log Logger) *MQTT {
	return newMQTT(client, client.ClientID(), log)
}

func newMQTT(pub retainedPublisher, clientID string, log Logger) *MQTT {
	return &MQTT{
		pub:      pub,
		clientID: clientID,
		topic:    mqtt.Topics{}.Status(clientID),
		log:      log,
		now:      time.Now,
	}
}

// SignalSuccess publishes {"status":"ok"}.
func (m *MQTT) SignalSuccess() { m.publish(statusOK) }

// SignalFailure publishes {"status":"failed"}.
func (m *MQTT) SignalFailure() { m.publish(statusFailed) }

func (m *MQTT) publish(status string) {
	payload := mqtt.NewStatusPayload(status, m.clientID, "", m.now())
	if err := m.pub.PublishRetained(m.topic, payload); err != nil && m.log != nil {
		m.log.Warn("status publish failed", "topic", m.topic, "error", err)
	}
}
