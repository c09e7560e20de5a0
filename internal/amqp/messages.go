package amqp

import (
	"encoding/json"
	"time"
)

// MetricsMessage carries the anonymized aggregates pushed to the
// leaderboard backend. It deliberately contains no raw transactions,
// notes or account names.
type MetricsMessage struct {
	Points            int64     `json:"points"`
	Level             int       `json:"level"`
	Streak            int       `json:"streak"`
	MonthExpenseCents int64     `json:"month_expense_cents"`
	Timestamp         time.Time `json:"timestamp"`
}

func (m *MetricsMessage) ToJSON() ([]byte, error) { return json.Marshal(m) }

func MetricsMessageFromJSON(data []byte) (*MetricsMessage, error) {
	var msg MetricsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ExportRequestMessage asks the worker to export one month's summary
// to the configured spreadsheet.
type ExportRequestMessage struct {
	Year      int       `json:"year"`
	Month     int       `json:"month"` // 1-12
	AccountID string    `json:"account_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExportRequestMessage(year, month int, accountID string) *ExportRequestMessage {
	return &ExportRequestMessage{Year: year, Month: month, AccountID: accountID, Timestamp: time.Now()}
}

func (m *ExportRequestMessage) ToJSON() ([]byte, error) { return json.Marshal(m) }

func ExportRequestMessageFromJSON(data []byte) (*ExportRequestMessage, error) {
	var msg ExportRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
