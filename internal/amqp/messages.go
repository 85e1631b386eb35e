package amqp

import (
	"encoding/json"
	"time"
)

const EventOccurrenceMaterialized = "occurrence.materialized"

// OccurrenceMessage announces a receivable or payable generated from a
// recurring template. Consumers use it to drop cached report data for the company.
type OccurrenceMessage struct {
	Event       string    `json:"event"`
	CompanyID   string    `json:"company_id"`
	RecurringID string    `json:"recurring_id"`
	RecordID    string    `json:"record_id"`
	RecordType  string    `json:"record_type"` // receivable | payable
	DueDate     string    `json:"due_date"`
	Amount      string    `json:"amount"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewOccurrenceMessage(companyID, recurringID, recordID, recordType, dueDate, amount string) *OccurrenceMessage {
	return &OccurrenceMessage{
		Event:       EventOccurrenceMaterialized,
		CompanyID:   companyID,
		RecurringID: recurringID,
		RecordID:    recordID,
		RecordType:  recordType,
		DueDate:     dueDate,
		Amount:      amount,
		Timestamp:   time.Now().UTC(),
	}
}

func (m *OccurrenceMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func OccurrenceMessageFromJSON(data []byte) (*OccurrenceMessage, error) {
	var msg OccurrenceMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
