package models

import (
	"bytes"
	"fmt"
	"time"
)

// DateLayout 日期格式（YYYY-MM-DD）
const DateLayout = "2006-01-02"

// Date 日曆日期，不含時間與時區
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate 建立日期
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf 取得時間在其所屬時區的日期
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate 解析 YYYY-MM-DD
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Time 回傳 UTC 午夜時間
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays 加上天數
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// DaysSince 回傳 d 與 from 相差的天數，d 早於 from 時為負數
func (d Date) DaysSince(from Date) int {
	return int(d.Time().Sub(from.Time()).Hours() / 24)
}

func (d Date) String() string {
	return d.Time().Format(DateLayout)
}

// MarshalJSON 實作 json.Marshaler
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON 實作 json.Unmarshaler
func (d *Date) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	parsed, err := ParseDate(string(data))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
