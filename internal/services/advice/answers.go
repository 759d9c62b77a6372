package advice

import (
	"encoding/json"
	"fmt"
)

// Answer is one form value. Clients may send it as a JSON string or, for
// number questions, as a JSON number; either way it is kept as text.
type Answer string

func (a *Answer) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = Answer(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("answer must be a string or a number, got %s", data)
	}
	*a = Answer(n.String())
	return nil
}

// Answers maps a step or question id to its value.
type Answers map[string]string

func (a *Answers) UnmarshalJSON(data []byte) error {
	var raw map[string]Answer
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Answers, len(raw))
	for k, v := range raw {
		out[k] = string(v)
	}
	*a = out
	return nil
}
