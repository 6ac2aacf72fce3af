package story

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Option is a labeled choice on a node.
type Option struct {
	Text   string `json:"text" yaml:"text"`     // Raw option text, may carry metadata suffixes
	Target string `json:"target" yaml:"target"` // Raw target node id, may carry a trailing win glyph
}

// Options keeps a node's choices in payload order.
type Options = orderedmap.OrderedMap[string, Option]

// KeyedOption pairs an option with its key in the node's option map.
type KeyedOption struct {
	Key    string
	Option Option
}

// Node is a single narrative beat.
type Node struct {
	Description string   `json:"description" yaml:"description"`            // Free-form text, may embed labeled sections
	Options     *Options `json:"options,omitempty" yaml:"options,omitempty"` // nil or empty means terminal
}

// Graph maps node ids to nodes, as returned by the backend.
type Graph map[string]Node

// NewOptions builds an ordered option map from pairs, keeping their order.
func NewOptions(pairs ...KeyedOption) *Options {
	opts := orderedmap.New[string, Option](len(pairs))
	for _, p := range pairs {
		opts.Set(p.Key, p.Option)
	}
	return opts
}

// Choice is shorthand for a KeyedOption literal.
func Choice(key, text, target string) KeyedOption {
	return KeyedOption{Key: key, Option: Option{Text: text, Target: target}}
}

// OptionCount returns the number of options on the node.
func (n Node) OptionCount() int {
	if n.Options == nil {
		return 0
	}
	return n.Options.Len()
}

// IsTerminal reports whether the node has no options.
func (n Node) IsTerminal() bool {
	return n.OptionCount() == 0
}

// Option returns the option stored under key.
func (n Node) Option(key string) (Option, bool) {
	if n.Options == nil {
		return Option{}, false
	}
	return n.Options.Get(key)
}

// KeyedOptions lists the node's options in insertion order.
func (n Node) KeyedOptions() []KeyedOption {
	if n.Options == nil {
		return nil
	}
	out := make([]KeyedOption, 0, n.Options.Len())
	for pair := n.Options.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, KeyedOption{Key: pair.Key, Option: pair.Value})
	}
	return out
}
