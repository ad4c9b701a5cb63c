package main

import (
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	config "github.com/avvvet/gamemate-services/configs"
	"github.com/avvvet/gamemate-services/internal/comm"
	"github.com/avvvet/gamemate-services/internal/gamesvc/broker"
	natscli "github.com/avvvet/gamemate-services/internal/nats"
)

const SERVICE_NAME = "audit"

var instanceId string

func init() {
	config.LoadEnv(SERVICE_NAME)
	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
}

// auditsvc tails every game service event and writes it to the log, one
// structured line per event.
func main() {
	// Connect to NATS
	n, err := natscli.Connect(os.Getenv("NATS_URL"), os.Getenv("NATS_TOKEN"))
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(1)
	}
	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	b := broker.NewBroker(n.Conn)
	sub, err := b.Subscribe(comm.SubjectAll, func(evt *comm.Event) {
		log.WithFields(log.Fields{
			"event_id":    evt.ID,
			"type":        evt.Type,
			"occurred_at": evt.OccurredAt,
			"data":        string(evt.Data),
		}).Info("event")
	})
	if err != nil {
		log.Errorf("Error: unable to subscribe to %s %v", comm.SubjectAll, err)
		os.Exit(1)
	}
	log.Infof("%s service listening on %s", SERVICE_NAME, comm.SubjectAll)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	if err := sub.Unsubscribe(); err != nil {
		log.Warnf("unsubscribe failed: %v", err)
	}
	log.Infof("%s service stopped", SERVICE_NAME)
}
