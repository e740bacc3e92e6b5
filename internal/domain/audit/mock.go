package audit

import "context"

// MockRecorder keeps entries in memory for unit tests.
type MockRecorder struct {
	Entries []Entry
}

// Record implements Recorder.
func (m *MockRecorder) Record(_ context.Context, entry Entry) error {
	m.Entries = append(m.Entries, entry)
	return nil
}

// Last returns the most recent entry, or nil.
func (m *MockRecorder) Last() *Entry {
	if len(m.Entries) == 0 {
		return nil
	}
	return &m.Entries[len(m.Entries)-1]
}
