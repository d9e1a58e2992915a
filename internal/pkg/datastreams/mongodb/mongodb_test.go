package mongodb

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gotest.tools/v3/assert"

	"github.com/avercast/pse_core/internal/pkg/msg"
)

func newHandler() (Handler, *msg.PubSub, error) {
	pid, _ := uuid.NewUUID()
	pub := msg.NewPublisher(pid)
	h, err := New("./mongo_config_test.json", pub)
	return h, pub, err
}

func TestGetConfig(t *testing.T) {
	h, _, err := newHandler()
	assert.NilError(t, err)

	assert.Equal(t, h.config.URI, "mongodb://localhost")
	assert.Equal(t, h.config.Port, "27017")
	assert.Equal(t, h.config.Database, "pse")
}

func TestStatusToBSON(t *testing.T) {
	pid, _ := uuid.NewUUID()
	m := msg.New(pid, msg.Status, 42.0)

	doc := statusToBSON(m)
	assert.Equal(t, doc[0].Key, "$set")

	result := resultToBSON(m)
	assert.Equal(t, result["pid"], pid.String())
	assert.Equal(t, result["data"], 42.0)
}

func TestInboxReceivesPublished(t *testing.T) {
	h, pub, err := newHandler()
	assert.NilError(t, err)

	pub.Publish(msg.Status, 42.0)
	m := <-h.inbox
	assert.Equal(t, m.Topic(), msg.Status)
	assert.Equal(t, m.Payload(), 42.0)
}

func TestStopWithoutReceiver(t *testing.T) {
	h, _, err := newHandler()
	assert.NilError(t, err)

	done := make(chan bool)
	go func() {
		h.Stop()
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked with no Process receiver")
	}
}
