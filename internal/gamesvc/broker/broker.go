package broker

import (
	"encoding/json"

	"github.com/avvvet/gamemate-services/internal/comm"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// Broker publishes game service events to NATS.
type Broker struct {
	Conn *nats.Conn
}

func NewBroker(nc *nats.Conn) *Broker {
	return &Broker{Conn: nc}
}

// Emit wraps data in an event envelope and publishes it on subject.
// Failures are logged only; the state change that produced the event has
// already been committed.
func (b *Broker) Emit(subject string, data any) {
	evt, err := comm.NewEvent(subject, data)
	if err != nil {
		log.Errorf("unable to build event for %s: %s", subject, err)
		return
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		log.Errorf("unable to marshal event %s: %s", evt.ID, err)
		return
	}

	if err := b.Publish(subject, payload); err != nil {
		return
	}
	log.WithFields(log.Fields{"subject": subject, "event_id": evt.ID}).Debug("event published")
}

func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}

// Subscribe decodes every event on subject and hands it to fn.
func (b *Broker) Subscribe(subject string, fn func(*comm.Event)) (*nats.Subscription, error) {
	return b.Conn.Subscribe(subject, func(msg *nats.Msg) {
		evt := &comm.Event{}
		if err := json.Unmarshal(msg.Data, evt); err != nil {
			log.Errorf("Error decoding event on %s: %s", msg.Subject, err)
			return
		}
		fn(evt)
	})
}
