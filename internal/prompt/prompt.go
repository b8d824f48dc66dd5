// Package prompt assembles few-shot conversations from a preamble and a pool
// of labeled examples.
package prompt

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/mwiater/fewshot/internal/dataset"
)

// Conversation roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message of a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation is an ordered, immutable list of turns with one leading
// system turn.
type Conversation struct {
	turns []Turn
}

// RenderPreamble replaces each {key} in template with cond[key]. Placeholders
// naming keys outside cond are left as they are.
func RenderPreamble(template string, cond dataset.Condition) string {
	if len(cond) == 0 {
		return template
	}
	pairs := make([]string, 0, 2*len(cond))
	for _, k := range cond.Keys() {
		pairs = append(pairs, "{"+k+"}", cond[k])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Build selects examples from pool under budget characters and returns the
// resulting conversation.
//
// The pool is scanned in order. An example whose input and output would push
// the running total past budget is skipped and the scan continues. Selected
// examples appear in reverse scan order, each as a user turn followed by its
// assistant answer, after the system turn.
func Build(preamble string, pool []dataset.Example, budget int) Conversation {
	var shots []Turn
	total := 0
	for _, ex := range pool {
		size := utf8.RuneCountInString(ex.Input) + utf8.RuneCountInString(ex.Output)
		if total+size > budget {
			continue
		}
		shots = append(shots,
			Turn{Role: RoleAssistant, Content: ex.Output},
			Turn{Role: RoleUser, Content: ex.Input},
		)
		total += size
	}

	turns := make([]Turn, 0, len(shots)+1)
	turns = append(turns, Turn{Role: RoleSystem, Content: preamble})
	for i := len(shots) - 1; i >= 0; i-- {
		turns = append(turns, shots[i])
	}
	return Conversation{turns: turns}
}

// Turns returns a copy of the conversation's turns.
func (c Conversation) Turns() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of turns.
func (c Conversation) Len() int { return len(c.turns) }

// Shots returns the number of examples included after the system turn.
func (c Conversation) Shots() int {
	if len(c.turns) == 0 {
		return 0
	}
	return (len(c.turns) - 1) / 2
}

// WithQuery returns a new conversation ending in a user turn carrying input.
// The receiver is not modified.
func (c Conversation) WithQuery(input string) Conversation {
	turns := make([]Turn, len(c.turns), len(c.turns)+1)
	copy(turns, c.turns)
	return Conversation{turns: append(turns, Turn{Role: RoleUser, Content: input})}
}

// Serialize renders the conversation as a JSON array indented by four spaces
// without HTML escaping. The output is stable for equal conversations and is
// used as part of the completion cache key.
func (c Conversation) Serialize() string {
	turns := c.turns
	if turns == nil {
		turns = []Turn{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	// Encoding a slice of string pairs cannot fail.
	_ = enc.Encode(turns)
	return strings.TrimSuffix(buf.String(), "\n")
}

// MarshalJSON encodes the conversation as its list of turns.
func (c Conversation) MarshalJSON() ([]byte, error) {
	if c.turns == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.turns)
}

// UnmarshalJSON decodes a list of turns.
func (c *Conversation) UnmarshalJSON(data []byte) error {
	var turns []Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return err
	}
	c.turns = turns
	return nil
}
