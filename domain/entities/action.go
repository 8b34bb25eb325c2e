package entities

import "fmt"

// ActionType represents the type of interaction performed on an element
type ActionType string

const (
	ActionClick        ActionType = "click"
	ActionFill         ActionType = "fill"
	ActionPress        ActionType = "press"
	ActionSelectOption ActionType = "select_option"
)

// Action represents a single interaction with an element
type Action struct {
	Type  ActionType `json:"type"`
	Value string     `json:"value,omitempty"`
}

// Click - action that clicks the element
func Click() Action {
	return Action{Type: ActionClick}
}

// Fill - action that replaces the element's value with text
func Fill(text string) Action {
	return Action{Type: ActionFill, Value: text}
}

// Press - action that presses a keyboard key while the element is focused
func Press(key string) Action {
	return Action{Type: ActionPress, Value: key}
}

// SelectOption - action that selects an option of a <select> by value
func SelectOption(value string) Action {
	return Action{Type: ActionSelectOption, Value: value}
}

func (a Action) String() string {
	if a.Value == "" {
		return string(a.Type)
	}
	return fmt.Sprintf("%s(%q)", a.Type, a.Value)
}

// ActionOutcome represents the result of one resilient actuation
type ActionOutcome struct {
	Succeeded    bool  `json:"succeeded"`
	AttemptsUsed int   `json:"attempts_used"`
	LastError    error `json:"-"`
}

// Err returns nil on success and the failure cause otherwise
func (o ActionOutcome) Err() error {
	if o.Succeeded {
		return nil
	}
	return o.LastError
}
