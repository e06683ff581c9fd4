package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// ChoiceValue is a string flag restricted to a fixed set of tokens.
// Invalid tokens are rejected while flags are parsed.
type ChoiceValue struct {
	value   string
	choices []string
}

var _ pflag.Value = (*ChoiceValue)(nil)

// NewChoiceValue returns a ChoiceValue set to def.
func NewChoiceValue(def string, choices ...string) *ChoiceValue {
	return &ChoiceValue{value: def, choices: choices}
}

func (c *ChoiceValue) String() string { return c.value }

// Set implements pflag.Value.
func (c *ChoiceValue) Set(s string) error {
	for _, choice := range c.choices {
		if s == choice {
			c.value = s
			return nil
		}
	}
	return fmt.Errorf("must be one of %s", strings.Join(c.choices, ", "))
}

// Type implements pflag.Value.
func (c *ChoiceValue) Type() string { return "string" }

// Choices returns the accepted tokens.
func (c *ChoiceValue) Choices() []string { return c.choices }

// ChoiceVarP defines a choice flag on fs. The usage string lists the choices
// so the help renderer can print them one per line.
func ChoiceVarP(fs *pflag.FlagSet, name, shorthand, usage, def string, choices ...string) *ChoiceValue {
	v := NewChoiceValue(def, choices...)
	fs.VarP(v, name, shorthand, fmt.Sprintf("%s: %s", usage, strings.Join(choices, ", ")))
	return v
}
