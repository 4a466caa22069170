package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Params maps parameter names to the values entered for them, keeping the
// order the inputs were rendered in.
type Params struct {
	values *orderedmap.OrderedMap[string, string]
}

// Param is a single name/value pair of a step.
type Param struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func NewParams(pairs ...Param) Params {
	p := Params{values: orderedmap.New[string, string]()}
	for _, pair := range pairs {
		p.values.Set(pair.Name, pair.Value)
	}
	return p
}

// Set assigns a value, appending the name if it is new.
func (p *Params) Set(name, value string) {
	if p.values == nil {
		p.values = orderedmap.New[string, string]()
	}
	p.values.Set(name, value)
}

func (p Params) Get(name string) (string, bool) {
	if p.values == nil {
		return "", false
	}
	return p.values.Get(name)
}

func (p Params) Len() int {
	if p.values == nil {
		return 0
	}
	return p.values.Len()
}

// Pairs returns the params in insertion order.
func (p Params) Pairs() []Param {
	if p.values == nil {
		return nil
	}
	pairs := make([]Param, 0, p.values.Len())
	for pair := p.values.Oldest(); pair != nil; pair = pair.Next() {
		pairs = append(pairs, Param{Name: pair.Key, Value: pair.Value})
	}
	return pairs
}

// Clone returns an independent copy.
func (p Params) Clone() Params {
	return NewParams(p.Pairs()...)
}

// String renders "name: value" pairs joined by ", ".
func (p Params) String() string {
	parts := make([]string, 0, p.Len())
	for _, pair := range p.Pairs() {
		parts = append(parts, fmt.Sprintf("%s: %s", pair.Name, pair.Value))
	}
	return strings.Join(parts, ", ")
}

// Indented renders the params as a JSON object indented by two spaces.
// Values are written as typed, without HTML escaping.
func (p Params) Indented() (string, error) {
	pairs := p.Pairs()
	if len(pairs) == 0 {
		return "{}", nil
	}

	var b strings.Builder
	b.WriteString("{\n")
	for i, pair := range pairs {
		key, err := quote(pair.Name)
		if err != nil {
			return "", err
		}
		value, err := quote(pair.Value)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "  %s: %s", key, value)
		if i < len(pairs)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String(), nil
}

func quote(s string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func (p Params) MarshalJSON() ([]byte, error) {
	if p.values == nil {
		return []byte("{}"), nil
	}
	return p.values.MarshalJSON()
}

func (p *Params) UnmarshalJSON(data []byte) error {
	p.values = orderedmap.New[string, string]()
	if string(data) == "null" {
		return nil
	}
	return p.values.UnmarshalJSON(data)
}

// Step is one logged action with its filled-in parameter values.
//
// Example JSON:
//
//	{
//	  "action_type": "swap",
//	  "params": {"tokenInAddress": "0xabc", "tokenOutAddress": "0xdef", "amountIn": "10", "dexRouterAddress": "0x111"}
//	}
type Step struct {
	ActionType ActionType `json:"action_type"`
	Params     Params     `json:"params"`
}

// Line renders the step the way the step list shows it, 1-indexed.
func (s Step) Line(index int) string {
	return fmt.Sprintf("%d. Action: %s, Params: { %s }", index, s.ActionType, s.Params.String())
}

// SummaryBlock renders the step for the verification view, 1-indexed.
func (s Step) SummaryBlock(index int) (string, error) {
	params, err := s.Params.Indented()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Step %d: %s\nParams:\n%s", index, s.ActionType, params), nil
}
