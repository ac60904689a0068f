package testutils

import (
	"context"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
)

// MessageCapture collects the messages published to one topic.
type MessageCapture struct {
	mu       sync.Mutex
	messages []*message.Message
}

// CaptureTopic subscribes to topic and records every message until ctx ends.
func CaptureTopic(ctx context.Context, sub message.Subscriber, topic string) (*MessageCapture, error) {
	ch, err := sub.Subscribe(ctx, topic)
	if err != nil {
		return nil, err
	}
	c := &MessageCapture{}
	go func() {
		for msg := range ch {
			c.mu.Lock()
			c.messages = append(c.messages, msg)
			c.mu.Unlock()
			msg.Ack()
		}
	}()
	return c, nil
}

// WaitFor blocks until n messages arrived or timeout passed, and returns what arrived.
func (c *MessageCapture) WaitFor(n int, timeout time.Duration) []*message.Message {
	deadline := time.Now().Add(timeout)
	for {
		c.mu.Lock()
		got := len(c.messages)
		c.mu.Unlock()
		if got >= n || time.Now().After(deadline) {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*message.Message, len(c.messages))
	copy(out, c.messages)
	return out
}
