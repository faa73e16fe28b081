package node

import (
	"math"
	"strings"
)

// UnitKind groups units by the physical dimension they measure.
type UnitKind int

const (
	UnitNone UnitKind = iota
	UnitLength
	UnitAngle
	UnitTime
	UnitFrequency
	UnitResolution
	UnitFlex
	UnitPercentage
	UnitUnknown
)

var units = map[string]UnitKind{
	"px": UnitLength, "em": UnitLength, "rem": UnitLength, "ex": UnitLength,
	"ch": UnitLength, "vw": UnitLength, "vh": UnitLength, "vmin": UnitLength,
	"vmax": UnitLength, "cm": UnitLength, "mm": UnitLength, "q": UnitLength,
	"in": UnitLength, "pt": UnitLength, "pc": UnitLength,
	"deg": UnitAngle, "rad": UnitAngle, "grad": UnitAngle, "turn": UnitAngle,
	"s": UnitTime, "ms": UnitTime,
	"hz": UnitFrequency, "khz": UnitFrequency,
	"dpi": UnitResolution, "dpcm": UnitResolution, "dppx": UnitResolution,
	"fr": UnitFlex,
	"%":  UnitPercentage,
}

// ClassifyUnit returns dimension of unit, units are case insensitive.
func ClassifyUnit(unit string) UnitKind {
	if unit == "" {
		return UnitNone
	}
	if k, ok := units[strings.ToLower(unit)]; ok {
		return k
	}
	return UnitUnknown
}

// ToRadians converts angle expressed in unit to radians, unitless values are
// degrees.
func ToRadians(v float64, unit string) (float64, bool) {
	switch strings.ToLower(unit) {
	case "", "deg":
		return v * math.Pi / 180, true
	case "rad":
		return v, true
	case "grad":
		return v * math.Pi / 200, true
	case "turn":
		return v * 2 * math.Pi, true
	}
	return 0, false
}
