package msg

import (
	"sync"

	"github.com/google/uuid"
)

// Topic classifies a published message
type Topic int

const (
	// Status messages carry model measurements
	Status Topic = iota
	// Result messages carry simulation result records
	Result
	// Config messages carry configuration updates
	Config
)

// Publisher is an interface for objects that allow subscription to their events
type Publisher interface {
	Subscribe(uuid.UUID, Topic) (<-chan Msg, error)
	Unsubscribe(uuid.UUID)
}

// Msg is a published event
type Msg struct {
	sender  uuid.UUID
	topic   Topic
	payload interface{}
}

// New is the Msg factory function
func New(sender uuid.UUID, topic Topic, payload interface{}) Msg {
	return Msg{sender, topic, payload}
}

// PID returns the sender's PID
func (v Msg) PID() uuid.UUID {
	return v.sender
}

// Topic returns the message classification
func (v Msg) Topic() Topic {
	return v.topic
}

// Payload returns the message data
func (v Msg) Payload() interface{} {
	return v.payload
}

// PubSub broadcasts messages to subscribers by topic
type PubSub struct {
	mux  *sync.Mutex
	pid  uuid.UUID
	subs map[Topic]map[uuid.UUID]chan Msg
}

// NewPublisher is the PubSub factory function
func NewPublisher(pid uuid.UUID) *PubSub {
	return &PubSub{
		mux:  &sync.Mutex{},
		pid:  pid,
		subs: make(map[Topic]map[uuid.UUID]chan Msg),
	}
}

// PID process id
func (p *PubSub) PID() uuid.UUID {
	return p.pid
}

// Subscribe returns a channel on which the specified topic is broadcast
func (p *PubSub) Subscribe(pid uuid.UUID, topic Topic) (<-chan Msg, error) {
	p.mux.Lock()
	defer p.mux.Unlock()
	if _, ok := p.subs[topic]; !ok {
		p.subs[topic] = make(map[uuid.UUID]chan Msg)
	}
	ch := make(chan Msg, 50)
	p.subs[topic][pid] = ch
	return ch, nil
}

// Unsubscribe pid from all topic broadcasts
func (p *PubSub) Unsubscribe(pid uuid.UUID) {
	p.mux.Lock()
	defer p.mux.Unlock()
	for _, subs := range p.subs {
		if ch, ok := subs[pid]; ok {
			close(ch)
			delete(subs, pid)
		}
	}
}

// Publish broadcasts the payload to all subscribers of the topic. Subscribers
// with a full channel miss the message.
func (p *PubSub) Publish(topic Topic, payload interface{}) {
	p.mux.Lock()
	defer p.mux.Unlock()
	for _, ch := range p.subs[topic] {
		select {
		case ch <- New(p.pid, topic, payload):
		default:
		}
	}
}

// Forward rebroadcasts a message from another publisher, preserving the sender
func (p *PubSub) Forward(m Msg) {
	p.mux.Lock()
	defer p.mux.Unlock()
	for _, ch := range p.subs[m.Topic()] {
		select {
		case ch <- m:
		default:
		}
	}
}

// Stop closes all subscriber channels
func (p *PubSub) Stop() {
	p.mux.Lock()
	defer p.mux.Unlock()
	for topic, subs := range p.subs {
		for pid, ch := range subs {
			close(ch)
			delete(subs, pid)
		}
		delete(p.subs, topic)
	}
}
