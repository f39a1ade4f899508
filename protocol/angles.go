package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// TagOrganismAngles marks the root's broadcast of every module's angles.
const TagOrganismAngles = "[ORGANISM_ANGLES]"

const (
	KeyIndex     = "INDEX"
	KeyTimestamp = "TIMESTAMP"
	KeyModules   = "MODULES"
)

// ModuleAngles is what a non-root module reports to its root every tick:
// its position in the organism and the current angle of each motor.
type ModuleAngles struct {
	Index     int
	Timestamp float64
	Values    []float64
}

// Encode writes the packet as
//
//	[ANGLES]INDEX=<i>;TIMESTAMP=<t>;A0=<v>;A1=<v>;...
func (a ModuleAngles) Encode() string {
	msg := Add(New(TagAngles), KeyIndex, strconv.Itoa(a.Index))
	msg = Add(msg, KeyTimestamp, FormatFloat(a.Timestamp))
	for i, v := range a.Values {
		msg = Add(msg, "A"+strconv.Itoa(i), FormatFloat(v))
	}
	return msg
}

// ParseModuleAngles reads a module packet, filling motors values. Motors
// missing from the packet read as 0.
func ParseModuleAngles(msg string, motors int) (ModuleAngles, error) {
	if !Is(msg, TagAngles) {
		return ModuleAngles{}, fmt.Errorf("%w: %q", ErrWrongTag, TagOf(msg))
	}
	idx, err := GetInt(msg, KeyIndex)
	if err != nil {
		return ModuleAngles{}, err
	}
	a := ModuleAngles{Index: idx, Values: make([]float64, motors)}
	if ts, err := GetFloat(msg, KeyTimestamp); err == nil {
		a.Timestamp = ts
	}
	for i := range a.Values {
		v, err := GetFloat(msg, "A"+strconv.Itoa(i))
		if err != nil {
			continue
		}
		a.Values[i] = v
	}
	return a, nil
}

// OrganismAngles is the root's broadcast: one row of motor angles per module.
type OrganismAngles struct {
	Timestamp float64
	Rows      [][]float64
}

// Encode writes the packet as
//
//	[ORGANISM_ANGLES]TIMESTAMP=<t>;MODULES=<n>;M0=<v>,<v>;M1=...;
func (o OrganismAngles) Encode() string {
	msg := Add(New(TagOrganismAngles), KeyTimestamp, FormatFloat(o.Timestamp))
	msg = Add(msg, KeyModules, strconv.Itoa(len(o.Rows)))
	for i, row := range o.Rows {
		vals := make([]string, len(row))
		for j, v := range row {
			vals[j] = FormatFloat(v)
		}
		msg = Add(msg, "M"+strconv.Itoa(i), strings.Join(vals, ","))
	}
	return msg
}

// Row extracts the angles addressed to module index from a root broadcast.
// The boolean is false when the message is not a broadcast or carries no
// row for index. Motors beyond the row's length read as 0.
func Row(msg string, index, motors int) ([]float64, bool) {
	if !Is(msg, TagOrganismAngles) {
		return nil, false
	}
	raw, ok := Get(msg, "M"+strconv.Itoa(index))
	if !ok {
		return nil, false
	}
	out := make([]float64, motors)
	if raw == "" {
		return out, true
	}
	for j, field := range strings.Split(raw, ",") {
		if j >= motors {
			break
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, false
		}
		out[j] = v
	}
	return out, true
}
