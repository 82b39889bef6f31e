// Package tool interprets pointer and keyboard input according to the
// selected tool and commits finished shapes to an annotation.Store.
package tool

import (
	"fmt"
	"strings"

	"github.com/example/xrayview/internal/calibration"
)

// Tool is an interaction mode.
type Tool int

const (
	Pan Tool = iota
	Ruler
	Angle
	Arrow
	Text
	Freehand
)

// All lists the tools in shortcut order; tool i is selected with digit i+1.
var All = []Tool{Pan, Ruler, Angle, Arrow, Text, Freehand}

func (t Tool) String() string {
	switch t {
	case Pan:
		return "Pan"
	case Ruler:
		return "Ruler"
	case Angle:
		return "Angle"
	case Arrow:
		return "Arrow"
	case Text:
		return "Text"
	case Freehand:
		return "Freehand"
	}
	return fmt.Sprintf("Tool(%d)", int(t))
}

// Parse returns the tool with the given case-insensitive name.
func Parse(name string) (Tool, error) {
	for _, t := range All {
		if strings.EqualFold(t.String(), strings.TrimSpace(name)) {
			return t, nil
		}
	}
	return Pan, fmt.Errorf("unknown tool %q", name)
}

// Mode is either Normal or Calibrating.
type Mode interface{ mode() }

// Normal dispatches input to the selected tool.
type Normal struct{ Tool Tool }

// Calibrating suspends tool dispatch while the two calibration clicks and
// the millimetre prompt are collected.
type Calibrating struct{ Capture *calibration.Capture }

func (Normal) mode()      {}
func (Calibrating) mode() {}

// Result tells the caller what an input produced.
type Result int

const (
	None Result = iota
	Committed
	Calibrated
	CalibrationDiscarded
	Cancelled
	PromptOpened
)
