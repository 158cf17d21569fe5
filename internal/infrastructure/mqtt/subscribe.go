package mqtt

import (
	"fmt"
)

// Subscribe registers handler for topic and remembers it so the
// subscription survives a broker reconnect.
//
// huestream subscribes to a single topic, {prefix}/command/color, through
// CommandProducer. Commands arriving while disconnected are lost; the
// stream keeps showing the last colour until the subscription is restored.
//
// The handler runs on the paho delivery goroutine and must not block.
//
// Parameters:
//   - topic: Exact topic or MQTT wildcard pattern
//   - qos: Maximum QoS level for received messages (0, 1, or 2)
//   - handler: Invoked for each message; a returned error is logged
//
// Returns:
//   - error: ErrInvalidTopic, ErrInvalidQoS, ErrNotConnected or ErrSubscribeFailed
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if handler == nil {
		return fmt.Errorf("%w: handler cannot be nil", ErrSubscribeFailed)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	sub := subscription{topic: topic, qos: qos, handler: handler}
	if err := c.subscribe(sub); err != nil {
		return err
	}

	c.subMu.Lock()
	c.subscriptions[topic] = sub
	c.subMu.Unlock()
	return nil
}

// subscribe sends one SUBSCRIBE and waits for the broker's acknowledgement.
func (c *Client) subscribe(sub subscription) error {
	token := c.client.Subscribe(sub.topic, sub.qos, c.wrapHandler(sub.handler))
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: %s: timeout after %v", ErrSubscribeFailed, sub.topic, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSubscribeFailed, sub.topic, err)
	}
	return nil
}

// restoreSubscriptions replays remembered subscriptions after a reconnect.
// It runs on the paho connect callback goroutine. Failures are logged and
// the subscription stays remembered for the next reconnect.
func (c *Client) restoreSubscriptions() {
	c.subMu.RLock()
	subs := make([]subscription, 0, len(c.subscriptions))
	for _, sub := range c.subscriptions {
		subs = append(subs, sub)
	}
	c.subMu.RUnlock()

	for _, sub := range subs {
		if err := c.subscribe(sub); err != nil {
			if logger := c.getLogger(); logger != nil {
				logger.Warn("MQTT subscription not restored", "topic", sub.topic, "error", err)
			}
		}
	}
}

// Unsubscribe drops the subscription for topic and forgets it.
//
// The subscription is forgotten even when the broker cannot be reached, so
// a later reconnect does not bring it back.
//
// Returns:
//   - error: ErrInvalidTopic, ErrNotConnected or ErrUnsubscribeFailed
func (c *Client) Unsubscribe(topic string) error {
	if topic == "" {
		return ErrInvalidTopic
	}

	c.subMu.Lock()
	delete(c.subscriptions, topic)
	c.subMu.Unlock()

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Unsubscribe(topic)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: %s: timeout after %v", ErrUnsubscribeFailed, topic, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnsubscribeFailed, topic, err)
	}
	return nil
}
