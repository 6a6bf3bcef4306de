package amqp

import (
	"encoding/json"
	"time"
)

// DonationRecordedMessage tells the export worker a donation landed in the
// ledger. It carries only the id; the worker refetches the full row so the
// queue never holds stale donation data.
type DonationRecordedMessage struct {
	ID         string    `json:"id"`
	RecordedAt time.Time `json:"recordedAt"`
}

func NewDonationRecordedMessage(id string) *DonationRecordedMessage {
	return &DonationRecordedMessage{
		ID:         id,
		RecordedAt: time.Now().UTC(),
	}
}

func (m *DonationRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func DonationRecordedMessageFromJSON(data []byte) (*DonationRecordedMessage, error) {
	var msg DonationRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
