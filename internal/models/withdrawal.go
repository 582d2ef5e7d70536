package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	WithdrawalStatusPending   = "pending"
	WithdrawalStatusCompleted = "completed"
	WithdrawalStatusCanceled  = "canceled"
)

// WithdrawalTargetStatuses статусы, в которые заявку может перевести администратор.
var WithdrawalTargetStatuses = map[string]struct{}{
	WithdrawalStatusCompleted: {},
	WithdrawalStatusCanceled:  {},
}

// Withdrawal описывает заявку на вывод баллов.
// Заявки создаются мобильным приложением, консоль меняет только статус.
type Withdrawal struct {
	ID          uuid.UUID         `db:"id" json:"id"`
	Email       *string           `db:"email" json:"email,omitempty"`
	Type        *string           `db:"type" json:"type,omitempty"`
	Amount      *float64          `db:"amount" json:"amount,omitempty"`
	Details     WithdrawalDetails `db:"details" json:"details"`
	Status      string            `db:"status" json:"status"`
	RequestedAt *time.Time        `db:"requested_at" json:"requested_at,omitempty"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
}

// IsPending сообщает, ожидает ли заявка решения администратора.
// Заявка без статуса считается ожидающей.
func (w *Withdrawal) IsPending() bool {
	return w.Status == "" || w.Status == WithdrawalStatusPending
}

// WithdrawalDetails хранит реквизиты выплаты из jsonb колонки.
// Обычно это объект ключ→значение, но старые заявки содержат просто строку.
type WithdrawalDetails struct {
	Fields map[string]any
	Text   string
}

// IsEmpty сообщает, что реквизиты отсутствуют.
func (d WithdrawalDetails) IsEmpty() bool {
	return len(d.Fields) == 0 && d.Text == ""
}

// Scan реализует sql.Scanner.
func (d *WithdrawalDetails) Scan(src any) error {
	*d = WithdrawalDetails{}

	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("withdrawal details: неподдерживаемый тип %T", src)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return fmt.Errorf("withdrawal details: %w", err)
	}

	switch v := value.(type) {
	case map[string]any:
		d.Fields = v
	case string:
		d.Text = v
	default:
		d.Text = fmt.Sprint(v)
	}
	return nil
}

// Value реализует driver.Valuer.
func (d WithdrawalDetails) Value() (driver.Value, error) {
	if d.IsEmpty() {
		return nil, nil
	}
	if d.Fields != nil {
		return json.Marshal(d.Fields)
	}
	return json.Marshal(d.Text)
}

// MarshalJSON отдаёт реквизиты в исходной форме: объект, строка или null.
func (d WithdrawalDetails) MarshalJSON() ([]byte, error) {
	switch {
	case d.Fields != nil:
		return json.Marshal(d.Fields)
	case d.Text != "":
		return json.Marshal(d.Text)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON принимает объект, строку или null.
func (d *WithdrawalDetails) UnmarshalJSON(data []byte) error {
	return d.Scan(data)
}
