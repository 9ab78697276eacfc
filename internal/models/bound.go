package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Bound 上限值：Unbounded 或 Max(n)
// 零值即為 Unbounded，避免把缺少的上限誤當成 0
type Bound struct {
	max int
	set bool
}

// Unbounded 無上限
func Unbounded() Bound {
	return Bound{}
}

// Max 上限為 n（含）
func Max(n int) Bound {
	return Bound{max: n, set: true}
}

// BoundFrom 由可為 nil 的整數建立上限
func BoundFrom(v *int) Bound {
	if v == nil {
		return Unbounded()
	}
	return Max(*v)
}

// IsSet 是否設定了上限
func (b Bound) IsSet() bool {
	return b.set
}

// Value 回傳上限值與是否設定
func (b Bound) Value() (int, bool) {
	return b.max, b.set
}

// Allows 值缺少或不超過上限時回傳 true
func (b Bound) Allows(v *int) bool {
	if !b.set || v == nil {
		return true
	}
	return *v <= b.max
}

// AllowsCount 用於一定存在的計數值
func (b Bound) AllowsCount(n int) bool {
	return !b.set || n <= b.max
}

func (b Bound) String() string {
	if !b.set {
		return "unbounded"
	}
	return "max(" + strconv.Itoa(b.max) + ")"
}

// MarshalJSON null 代表無上限
func (b Bound) MarshalJSON() ([]byte, error) {
	if !b.set {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(b.max)), nil
}

// UnmarshalJSON 實作 json.Unmarshaler
func (b *Bound) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*b = Unbounded()
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*b = Max(n)
	return nil
}
