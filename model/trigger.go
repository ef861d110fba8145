package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type Trigger int

const TRIGGER_AUTO_START Trigger = 3
const TRIGGER_PARALLEL Trigger = 4
const TRIGGER_CALL Trigger = 5

var triggerNames = map[Trigger]string{
	TRIGGER_AUTO_START: "auto_start",
	TRIGGER_PARALLEL:   "parallel",
	TRIGGER_CALL:       "call",
}

func (t Trigger) String() string {
	if name, ok := triggerNames[t]; ok {
		return name
	}
	return fmt.Sprintf("trigger(%d)", int(t))
}

func (t Trigger) IsValid() bool {
	_, ok := triggerNames[t]
	return ok
}

// ToTrigger accepts either a trigger name or its numeric value.
func ToTrigger(s string) (Trigger, error) {
	s = strings.TrimSpace(s)
	for t, name := range triggerNames {
		if strings.EqualFold(s, name) {
			return t, nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid trigger %s", s)
	}
	t := Trigger(n)
	if !t.IsValid() {
		return 0, fmt.Errorf("invalid trigger %s", s)
	}
	return t, nil
}

func (t Trigger) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Trigger) UnmarshalText(text []byte) error {
	parsed, err := ToTrigger(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// UnmarshalJSON accepts both `4` and `"parallel"`.
func (t *Trigger) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		parsed := Trigger(n)
		if !parsed.IsValid() {
			return fmt.Errorf("invalid trigger %d", n)
		}
		*t = parsed
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid trigger %s", string(data))
	}
	return t.UnmarshalText([]byte(s))
}
