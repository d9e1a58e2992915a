/*
natshandler.go Datastream handler that relays generator status and simulation
results onto a NATS server. Status publishes on "generator.status.<pid>" and
results on "generator.results.<pid>".
*/

package natshandler

import (
	"encoding/json"
	"io/ioutil"
	"log"
	"sync"

	"github.com/google/uuid"
	nats "github.com/nats-io/nats.go"

	"github.com/avercast/pse_core/internal/pkg/msg"
)

type Handler struct {
	mux    *sync.Mutex
	inbox  <-chan msg.Msg
	pid    uuid.UUID
	config config
	stop   chan bool
}

type config struct {
	Server string `json:"Server"`
}

func (h Handler) PID() uuid.UUID {
	return h.pid
}

func redirectMsg(chIn <-chan msg.Msg, chOut chan<- msg.Msg) {
	for m := range chIn {
		chOut <- m
	}
}

func New(configPath string, system msg.Publisher) (Handler, error) {
	jsonConfig, err := ioutil.ReadFile(configPath)
	if err != nil {
		return Handler{}, err
	}
	cfg := config{}
	if err := json.Unmarshal(jsonConfig, &cfg); err != nil {
		return Handler{}, err
	}

	pid, _ := uuid.NewUUID()

	inbox := make(chan msg.Msg, 50)

	chStatus, err := system.Subscribe(pid, msg.Status)
	if err != nil {
		return Handler{}, err
	}
	go redirectMsg(chStatus, inbox)

	chResult, err := system.Subscribe(pid, msg.Result)
	if err != nil {
		return Handler{}, err
	}
	go redirectMsg(chResult, inbox)

	stop := make(chan bool)

	return Handler{
		mux:    &sync.Mutex{},
		inbox:  inbox,
		pid:    pid,
		config: cfg,
		stop:   stop,
	}, nil
}

// Stop closes the stop channel so shutdown cannot block when Process has
// already returned, e.g. after a failed connect.
func (h *Handler) Stop() {
	close(h.stop)
}

func (h Handler) Process() {
	log.Println("[NATS client] Process Started")
	nc, err := nats.Connect(h.config.Server)
	if err != nil {
		log.Printf("[NATS client] connect: %v", err)
		return
	}
	defer nc.Close()

loop:
	for {
		select {
		case m := <-h.inbox:
			data, err := json.Marshal(m.Payload())
			if err != nil {
				continue
			}
			switch m.Topic() {
			case msg.Status:
				if err = nc.Publish("generator.status."+m.PID().String(), data); err != nil {
					log.Printf("unable to publish to nats server: %v", err)
				}
			case msg.Result:
				if err = nc.Publish("generator.results."+m.PID().String(), data); err != nil {
					log.Printf("unable to publish to nats server: %v", err)
				}
			}

		case <-h.stop:
			break loop
		}
	}
	log.Println("[NATS client] Process Shutdown")
}
