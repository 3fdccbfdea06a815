package core

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/volatiletech/null/v8"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// Date is a nullable calendar date serialized as "YYYY-MM-DD".
type Date struct {
	null.Time
}

func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{null.TimeFrom(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))}
}

func Today() Date {
	return NewDate(time.Now())
}

func (d Date) String() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Time.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		d.Valid = false
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		d.Valid = false
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return err
	}
	*d = NewDate(t)
	return nil
}
