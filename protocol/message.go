// Package protocol implements the flat text envelope shared by every module
// of an organism and the evolver.
//
// A message is a bracketed tag followed by KEY=VALUE fields, each terminated
// by Delimiter:
//
//	[GENOME_SPREAD_MESSAGE]ID=7;FITNESS=3.5;
//
// Values are not escaped, so a value must never contain Delimiter. Genome
// text is space separated and satisfies this.
package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Delimiter terminates every field.
const Delimiter = ";"

// ErrMissingKey is returned by the typed getters when a key is absent.
var ErrMissingKey = errors.New("protocol: missing key")

// ErrWrongTag is returned when a typed reader is given a message of another kind.
var ErrWrongTag = errors.New("protocol: unexpected tag")

// New starts a message with the given tag, e.g. "[ANGLES]".
func New(tag string) string { return tag }

// Add appends a field. Keys are expected to be unique within a message.
func Add(msg, key, value string) string {
	var b strings.Builder
	b.Grow(len(msg) + len(key) + len(value) + 2)
	b.WriteString(msg)
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(value)
	b.WriteString(Delimiter)
	return b.String()
}

// Get returns the value of the first field named key. A key only matches at
// the start of a field, so looking up "ID" never returns the value of "ID1".
// The second result is false when the key is absent.
func Get(msg, key string) (string, bool) {
	body := msg[len(TagOf(msg)):]
	prefix := key + "="
	for len(body) > 0 {
		field, rest, _ := strings.Cut(body, Delimiter)
		if v, ok := strings.CutPrefix(field, prefix); ok {
			return v, true
		}
		body = rest
	}
	return "", false
}

// TagOf returns the leading bracketed tag of msg, or "" when there is none.
func TagOf(msg string) string {
	if !strings.HasPrefix(msg, "[") {
		return ""
	}
	end := strings.IndexByte(msg, ']')
	if end < 0 {
		return ""
	}
	return msg[:end+1]
}

// Is reports whether msg carries tag.
func Is(msg, tag string) bool { return TagOf(msg) == tag }

// GetString is Get with ErrMissingKey in place of the boolean.
func GetString(msg, key string) (string, error) {
	v, ok := Get(msg, key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingKey, key)
	}
	return v, nil
}

func GetInt(msg, key string) (int, error) {
	v, err := GetString(msg, key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("protocol: key %s: %w", key, err)
	}
	return n, nil
}

func GetFloat(msg, key string) (float64, error) {
	v, err := GetString(msg, key)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("protocol: key %s: %w", key, err)
	}
	return f, nil
}

// FormatFloat renders a float the way every message field carries it.
func FormatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
