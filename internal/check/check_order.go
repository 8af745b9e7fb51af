package check

import (
	"nnetcheck/internal/computation"
	"nnetcheck/internal/errors"
)

// checkOrder verifies phase ordering: there is exactly one phase
// marker, every forward-pass command (propagate, store_stats) occurs at
// or before it, and every backward-pass command occurs at or after it.
func (c *Checker) checkOrder() error {
	numMarkers, markerLocation := 0, 0
	for ci, cmd := range c.comp.Commands {
		if cmd.Kind == computation.NoOpMarker {
			markerLocation = ci
			numMarkers++
		}
	}
	if numMarkers != 1 {
		return errors.Newf(errors.CodeOrderingViolation,
			"expected exactly one phase marker, found %d", numMarkers)
	}
	for ci, cmd := range c.comp.Commands {
		switch cmd.Kind {
		case computation.Backprop:
			if ci < markerLocation {
				return errors.New(errors.CodeOrderingViolation,
					"backprop occurs before the phase marker").AtCommand(ci)
			}
		case computation.Propagate:
			if ci > markerLocation {
				return errors.New(errors.CodeOrderingViolation,
					"propagate occurs after the phase marker").AtCommand(ci)
			}
		case computation.StoreStats:
			if ci > markerLocation {
				return errors.New(errors.CodeOrderingViolation,
					"store_stats occurs after the phase marker").AtCommand(ci)
			}
		}
	}
	return nil
}
