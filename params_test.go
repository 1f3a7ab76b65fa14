package main

import "testing"

func TestFrameParamsValidate(t *testing.T) {
	good := frameParams{dt: 1.0 / 60, viscosity: 0.0001, inkDecay: 0.999, velDamping: 0.998}
	if err := good.validate(); err != nil {
		t.Fatalf("valid params rejected: %v", err)
	}

	for name, p := range map[string]frameParams{
		"zero dt":            {dt: 0, inkDecay: 1, velDamping: 1},
		"negative dt":        {dt: -0.01, inkDecay: 1, velDamping: 1},
		"negative viscosity": {dt: 0.01, viscosity: -0.1, inkDecay: 1, velDamping: 1},
		"zero ink decay":     {dt: 0.01, inkDecay: 0, velDamping: 1},
		"ink decay above 1":  {dt: 0.01, inkDecay: 1.01, velDamping: 1},
		"zero damping":       {dt: 0.01, inkDecay: 1, velDamping: 0},
		"damping above 1":    {dt: 0.01, inkDecay: 1, velDamping: 2},
	} {
		if err := p.validate(); err == nil {
			t.Errorf("%s: validate accepted %+v", name, p)
		}
	}
}

func TestBrushModeString(t *testing.T) {
	if got := brushPaint.String(); got != "paint" {
		t.Errorf("brushPaint.String() = %q", got)
	}
	if got := brushSmudge.String(); got != "smudge" {
		t.Errorf("brushSmudge.String() = %q", got)
	}
	if got := brushMode(7).String(); got != "brushMode(7)" {
		t.Errorf("unknown mode String() = %q", got)
	}
}
