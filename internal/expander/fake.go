package expander

import "errors"

// FakeBank is a test double that returns scripted input samples and
// records output writes.
type FakeBank struct {
	// Samples contains scripted input values. Each call to Read consumes
	// the next sample; the last one repeats once exhausted.
	Samples []uint16

	// Writes records every value passed to Write.
	Writes []uint16

	// index tracks current position in Samples.
	index int

	// Closed tracks if Close was called.
	Closed bool

	// ReadError, if set, will be returned by Read.
	ReadError error

	// WriteError, if set, will be returned by Write.
	WriteError error
}

// NewFakeBank creates a FakeBank with the given input samples.
func NewFakeBank(samples []uint16) *FakeBank {
	return &FakeBank{Samples: samples}
}

// Read returns the next scripted sample.
func (f *FakeBank) Read() (uint16, error) {
	if f.ReadError != nil {
		return 0, f.ReadError
	}

	if len(f.Samples) == 0 {
		return 0, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// Write records the value.
func (f *FakeBank) Write(value uint16) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Writes = append(f.Writes, value)
	return nil
}

// Close marks the bank as closed.
func (f *FakeBank) Close() error {
	f.Closed = true
	return nil
}

// LastWrite returns the most recent written value, or 0 if none.
func (f *FakeBank) LastWrite() uint16 {
	if len(f.Writes) == 0 {
		return 0
	}
	return f.Writes[len(f.Writes)-1]
}

// Reset rewinds the samples and clears recorded writes.
func (f *FakeBank) Reset() {
	f.index = 0
	f.Writes = nil
	f.Closed = false
}
