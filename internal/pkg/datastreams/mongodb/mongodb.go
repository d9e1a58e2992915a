/*
mongodb.go Datastream handler that mirrors generator status and simulation
results into MongoDB. Status messages upsert the live document for the
sending generator; result messages append to the results collection.
*/

package mongodb

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"log"
	"sync"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

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
	URI      string `json:"URI"`
	Database string `json:"Database"`
	Port     string `json:"Port"`
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

func statusToBSON(m msg.Msg) bson.D {
	//TODO: PID should be written as a binary of subtype 0x04 (UUID standard).
	// currently written as a string.
	return bson.D{
		{Key: "$set", Value: bson.M{
			"pid":  m.PID().String(),
			"data": m.Payload(),
		}},
	}
}

func resultToBSON(m msg.Msg) bson.M {
	return bson.M{
		"pid":  m.PID().String(),
		"data": m.Payload(),
	}
}

// Stop closes the stop channel so shutdown cannot block when Process has
// already returned.
func (h *Handler) Stop() {
	close(h.stop)
}

func (h Handler) Process() {
	//TODO: Handle reconnection to the MongoDB resource
	client, err := mongo.NewClient(options.Client().ApplyURI(h.config.URI + ":" + h.config.Port))
	if err != nil {
		log.Println(err)
	}

	ctx := context.TODO()
	err = client.Connect(ctx)
	if err != nil {
		log.Println(err)
	}
	defer client.Disconnect(ctx)

	client.Database(h.config.Database).Collection("generatorStatus").Drop(ctx)
loop:
	for {
		select {
		case m := <-h.inbox:
			switch m.Topic() {
			case msg.Status:
				opts := options.Update().SetUpsert(true)
				_, err = client.Database(h.config.Database).Collection("generatorStatus").UpdateOne(
					ctx,
					bson.M{"pid": m.PID().String()},
					statusToBSON(m),
					opts,
				)
				if err != nil {
					log.Printf("[Mongo] status upsert: %v", err)
				}

			case msg.Result:
				_, err = client.Database(h.config.Database).Collection("generatorResults").InsertOne(
					ctx,
					resultToBSON(m),
				)
				if err != nil {
					log.Printf("[Mongo] result insert: %v", err)
				}
			}
		case <-h.stop:
			break loop
		}
	}
	log.Println("[Mongo] Process Shutdown")
}
