package detect

import (
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// InputType is the verdict for a piece of user input.
type InputType uint8

const (
	Invalid InputType = iota
	Chinese
	Pinyin
	Mixed
)

// InvalidInputMessage is shown to users when their text is neither Chinese nor pinyin.
const InvalidInputMessage = "Please enter Chinese characters or pinyin"

var typeNames = [...]string{
	Invalid: "invalid",
	Chinese: "chinese",
	Pinyin:  "pinyin",
	Mixed:   "mixed",
}

func (t InputType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("InputType(%d)", t)
}

// MarshalText encodes the type by name, so JSON carries "pinyin" rather than 2.
func (t InputType) MarshalText() ([]byte, error) {
	if int(t) >= len(typeNames) {
		return nil, fmt.Errorf("unknown input type %d", t)
	}
	return []byte(typeNames[t]), nil
}

// UnmarshalText decodes a type name.
func (t *InputType) UnmarshalText(b []byte) error {
	name := strings.ToLower(string(b))
	for i, n := range typeNames {
		if n == name {
			*t = InputType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown input type %q", b)
}

// EncodeMsgpack writes the type name as a msgpack string.
func (t InputType) EncodeMsgpack(enc *msgpack.Encoder) error {
	b, err := t.MarshalText()
	if err != nil {
		return err
	}
	return enc.EncodeString(string(b))
}

// DecodeMsgpack reads a type name.
func (t *InputType) DecodeMsgpack(dec *msgpack.Decoder) error {
	s, err := dec.DecodeString()
	if err != nil {
		return err
	}
	return t.UnmarshalText([]byte(s))
}

// DetectInputType classifies text. Every input gets a verdict:
//
//   - empty or whitespace only: Invalid
//   - ideographs without Latin letters: Chinese
//   - ideographs with Latin letters: Mixed
//   - no ideographs and IsRomanized: Pinyin
//   - anything else: Invalid
func DetectInputType(text string) InputType {
	if strings.TrimSpace(text) == "" {
		return Invalid
	}
	hasHan := ContainsIdeograph(text)
	hasLatin := ContainsLatin(text)
	switch {
	case hasHan && !hasLatin:
		return Chinese
	case hasHan:
		return Mixed
	case IsRomanized(text):
		return Pinyin
	}
	return Invalid
}

// IsIdeograph reports whether r is in the CJK Unified Ideographs block (U+4E00–U+9FFF).
func IsIdeograph(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FFF
}

// ContainsIdeograph reports whether s has at least one CJK ideograph.
func ContainsIdeograph(s string) bool {
	return strings.IndexFunc(s, IsIdeograph) >= 0
}

// ContainsLatin reports whether s has an ASCII letter.
func ContainsLatin(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	}) >= 0
}
