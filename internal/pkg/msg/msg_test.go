package msg

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"gotest.tools/v3/assert"
)

func TestSubscribe(t *testing.T) {
	pidPub, err := uuid.NewUUID()
	assert.NilError(t, err)

	pidSub1, err := uuid.NewUUID()
	assert.NilError(t, err)

	pidSub2, err := uuid.NewUUID()
	assert.NilError(t, err)

	pubsub := NewPublisher(pidPub)
	ch1, err := pubsub.Subscribe(pidSub1, Status)
	assert.NilError(t, err)
	ch2, err := pubsub.Subscribe(pidSub2, Status)
	assert.NilError(t, err)

	rand.Seed(time.Now().UnixNano())
	randValue := rand.Float64()

	done := make(chan bool)

	go func(ch <-chan Msg) {
		t.Log("#1 WAITING")
		incoming := <-ch
		assert.Equal(t, incoming.Payload(), randValue, "First subscriber did not recieve the correct published value")
		assert.Equal(t, incoming.PID(), pidPub)
		assert.Equal(t, incoming.Topic(), Status)
		t.Log("#1 FINISH")
		done <- true
	}(ch1)

	go func(ch <-chan Msg) {
		t.Log("#2 WAITING")
		incoming := <-ch
		assert.Equal(t, incoming.Payload(), randValue, "Second subscriber did not recieve the correct published value")
		t.Log("#2 FINISH")
		done <- true
	}(ch2)

	pubsub.Publish(Status, randValue)
	<-done
	<-done
}

func TestUnsubscribe(t *testing.T) {
	pidPub, _ := uuid.NewUUID()
	pidSub, _ := uuid.NewUUID()

	pubsub := NewPublisher(pidPub)
	ch, err := pubsub.Subscribe(pidSub, Status)
	assert.NilError(t, err)

	pubsub.Unsubscribe(pidSub)
	_, ok := <-ch
	assert.Assert(t, !ok, "Channel was not closed on unsubscribe")

	pubsub.Publish(Status, 1.0)
}

func TestPublishTopicIsolation(t *testing.T) {
	pidPub, _ := uuid.NewUUID()
	pidSub, _ := uuid.NewUUID()

	pubsub := NewPublisher(pidPub)
	chStatus, err := pubsub.Subscribe(pidSub, Status)
	assert.NilError(t, err)
	chResult, err := pubsub.Subscribe(pidSub, Result)
	assert.NilError(t, err)

	pubsub.Publish(Result, 2.0)

	incoming := <-chResult
	assert.Equal(t, incoming.Payload(), 2.0)
	assert.Equal(t, incoming.Topic(), Result)

	select {
	case m := <-chStatus:
		t.Fatalf("status subscriber recieved off-topic message: %v", m)
	default:
	}
}

func TestForward(t *testing.T) {
	pidOrigin, _ := uuid.NewUUID()
	pidRelay, _ := uuid.NewUUID()
	pidSub, _ := uuid.NewUUID()

	relay := NewPublisher(pidRelay)
	ch, err := relay.Subscribe(pidSub, Status)
	assert.NilError(t, err)

	relay.Forward(New(pidOrigin, Status, 3.0))

	incoming := <-ch
	assert.Equal(t, incoming.Payload(), 3.0)
	assert.Equal(t, incoming.PID(), pidOrigin, "Forward did not preserve the origin sender")
}
