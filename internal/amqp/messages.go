package amqp

import (
	"encoding/json"
	"time"
)

// IngestRequestMessage asks the worker to perform a full truncate-and-reload
// of the record store.
type IngestRequestMessage struct {
	RunID       string    `json:"run_id"`
	RequestedBy string    `json:"requested_by,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// IngestCompletedMessage announces a finished ingestion run.
type IngestCompletedMessage struct {
	RunID       string    `json:"run_id"`
	Records     int       `json:"records"`
	CompletedAt time.Time `json:"completed_at"`
}

func NewIngestRequestMessage(runID, requestedBy string) *IngestRequestMessage {
	return &IngestRequestMessage{
		RunID:       runID,
		RequestedBy: requestedBy,
		RequestedAt: time.Now(),
	}
}

func NewIngestCompletedMessage(runID string, records int) *IngestCompletedMessage {
	return &IngestCompletedMessage{
		RunID:       runID,
		Records:     records,
		CompletedAt: time.Now(),
	}
}

func (m *IngestRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func IngestRequestMessageFromJSON(data []byte) (*IngestRequestMessage, error) {
	var msg IngestRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (m *IngestCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func IngestCompletedMessageFromJSON(data []byte) (*IngestCompletedMessage, error) {
	var msg IngestCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
