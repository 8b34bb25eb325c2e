package entities

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ObservedValue is a snapshot of a textual or numeric quantity read from the page
type ObservedValue struct {
	Text       string    `json:"text"`
	Number     float64   `json:"number,omitempty"`
	Numeric    bool      `json:"numeric"`
	CapturedAt time.Time `json:"captured_at"`
}

var nonPriceChars = regexp.MustCompile(`[^0-9.]`)

// TextValue - captures a textual value
func TextValue(text string) ObservedValue {
	return ObservedValue{Text: text, CapturedAt: time.Now()}
}

// NumberValue - captures a numeric value
func NumberValue(n float64) ObservedValue {
	return ObservedValue{
		Text:       strconv.FormatFloat(n, 'f', -1, 64),
		Number:     n,
		Numeric:    true,
		CapturedAt: time.Now(),
	}
}

// PriceValue - captures a price label such as "$1,025.50", keeping the label as text.
// When the label carries no parseable amount the value stays textual.
func PriceValue(label string) ObservedValue {
	v := TextValue(strings.TrimSpace(label))
	if n, err := ParsePrice(label); err == nil {
		v.Number = n
		v.Numeric = true
	}
	return v
}

// ParsePrice - strips everything but digits and dots and parses the remainder
func ParsePrice(label string) (float64, error) {
	cleaned := nonPriceChars.ReplaceAllString(label, "")
	if cleaned == "" {
		return 0, fmt.Errorf("no amount in %q", label)
	}
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse amount in %q: %w", label, err)
	}
	return n, nil
}

// Equal compares by value: numerically when both sides are numeric, textually otherwise
func (v ObservedValue) Equal(other ObservedValue) bool {
	if v.Numeric && other.Numeric {
		return v.Number == other.Number
	}
	return v.Text == other.Text
}

func (v ObservedValue) String() string {
	return v.Text
}

// Change is the before/after pair certified by a change observation
type Change struct {
	Before ObservedValue `json:"before"`
	After  ObservedValue `json:"after"`
}
