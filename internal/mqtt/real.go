package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// offlineBufferSize is how many messages are held while the broker is
// unreachable.
const offlineBufferSize = 256

// commandQueueSize bounds the inbound command channel; the polling loop
// drains it every tick.
const commandQueueSize = 16

// RealPublisher publishes to an actual MQTT broker and subscribes to the
// device's command topic. Messages published while disconnected are held
// in a ring buffer and replayed on reconnect.
type RealPublisher struct {
	client paho.Client
	device string

	mu  sync.Mutex
	buf *ringBuffer

	commands chan Command

	// BadCommand, if set, is called whenever an inbound payload fails
	// to parse. Set before the broker connection comes up.
	BadCommand func()
}

// NewRealPublisher creates a publisher connected to the given broker,
// using the device name as client id and topic scope.
func NewRealPublisher(broker, device string) (*RealPublisher, error) {
	p := &RealPublisher{
		device:   device,
		buf:      newRingBuffer(offlineBufferSize),
		commands: make(chan Command, commandQueueSize),
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(device).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(p.onConnect)

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// Commands returns the stream of decoded inbound commands. The polling
// loop is the intended sole consumer.
func (p *RealPublisher) Commands() <-chan Command {
	return p.commands
}

// onConnect runs on every (re)connect: re-establish the command
// subscription and replay anything buffered while offline.
func (p *RealPublisher) onConnect(c paho.Client) {
	token := c.Subscribe(CommandTopic(p.device), 1, p.onCommand)
	if token.WaitTimeout(5*time.Second) && token.Error() != nil {
		log.Printf("mqtt: subscribe %s: %v", CommandTopic(p.device), token.Error())
	}

	p.mu.Lock()
	msgs := p.buf.drainAll()
	p.mu.Unlock()
	for _, m := range msgs {
		c.Publish(m.topic, m.qos, m.retained, m.payload)
	}
}

// onCommand decodes an inbound command and queues it for the polling loop.
func (p *RealPublisher) onCommand(_ paho.Client, msg paho.Message) {
	cmd, err := ParseCommand(msg.Payload())
	if err != nil {
		log.Printf("mqtt: ignoring command on %s: %v", msg.Topic(), err)
		if p.BadCommand != nil {
			p.BadCommand()
		}
		return
	}

	select {
	case p.commands <- cmd:
	default:
		log.Printf("mqtt: command queue full, dropping %q", cmd.Command)
	}
}

// publish sends one message, buffering it if the broker is unreachable.
func (p *RealPublisher) publish(topic string, qos byte, retained bool, payload []byte) error {
	if !p.client.IsConnected() {
		p.mu.Lock()
		p.buf.push(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		p.mu.Unlock()
		return nil
	}

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// PublishInput sends a classified input event.
func (p *RealPublisher) PublishInput(event InputEvent) error {
	payload, err := FormatInputPayload(event)
	if err != nil {
		return fmt.Errorf("format input payload: %w", err)
	}
	// QoS 0 (at-most-once), not retained
	return p.publish(InputTopic(p.device), 0, false, payload)
}

// PublishOutput sends an output level change.
func (p *RealPublisher) PublishOutput(event OutputEvent) error {
	payload, err := FormatOutputPayload(event)
	if err != nil {
		return fmt.Errorf("format output payload: %w", err)
	}
	// QoS 1: actuation reports should not be lost
	return p.publish(OutputTopic(p.device), 1, false, payload)
}

// PublishSystem sends a system lifecycle event.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	// QoS 1 (at-least-once) for lifecycle events - we want to ensure delivery
	return p.publish(SystemTopic(p.device), 1, event.Retained, payload)
}

// PublishSystemRaw sends a pre-rendered document on the system topic.
func (p *RealPublisher) PublishSystemRaw(event SystemEvent, payload []byte) error {
	return p.publish(SystemTopic(p.device), 1, event.Retained, payload)
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
