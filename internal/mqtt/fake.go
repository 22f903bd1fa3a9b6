package mqtt

// FakePublisher records published events for test assertions and provides
// a command channel tests can feed.
type FakePublisher struct {
	// InputEvents contains all input events that were published.
	InputEvents []InputEvent

	// OutputEvents contains all output events that were published.
	OutputEvents []OutputEvent

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// InputPayloads, OutputPayloads and SystemPayloads contain the
	// corresponding JSON payloads.
	InputPayloads  [][]byte
	OutputPayloads [][]byte
	SystemPayloads [][]byte

	// CommandQueue stands in for the broker's command topic; tests push
	// commands into it.
	CommandQueue chan Command

	// PublishError, if set, will be returned by all Publish methods.
	PublishError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{
		CommandQueue: make(chan Command, commandQueueSize),
	}
}

// Commands returns the injectable command stream.
func (f *FakePublisher) Commands() <-chan Command {
	return f.CommandQueue
}

// PublishInput records the input event.
func (f *FakePublisher) PublishInput(event InputEvent) error {
	if f.PublishError != nil {
		return f.PublishError
	}

	f.InputEvents = append(f.InputEvents, event)

	payload, err := FormatInputPayload(event)
	if err != nil {
		return err
	}
	f.InputPayloads = append(f.InputPayloads, payload)
	return nil
}

// PublishOutput records the output event.
func (f *FakePublisher) PublishOutput(event OutputEvent) error {
	if f.PublishError != nil {
		return f.PublishError
	}

	f.OutputEvents = append(f.OutputEvents, event)

	payload, err := FormatOutputPayload(event)
	if err != nil {
		return err
	}
	f.OutputPayloads = append(f.OutputPayloads, payload)
	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishError != nil {
		return f.PublishError
	}

	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

// PublishSystemRaw records the system event with the given payload.
func (f *FakePublisher) PublishSystemRaw(event SystemEvent, payload []byte) error {
	if f.PublishError != nil {
		return f.PublishError
	}

	f.SystemEvents = append(f.SystemEvents, event)
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Reset clears recorded events.
func (f *FakePublisher) Reset() {
	f.InputEvents = nil
	f.OutputEvents = nil
	f.SystemEvents = nil
	f.InputPayloads = nil
	f.OutputPayloads = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.PublishError = nil
	f.Connected = false
}
