package decode

import (
	"github.com/qtpeek/qtpeek/errors"
)

// The two safety gates every decoder must pass before touching element data.
// Both are pure reads of the shared-buffer header; neither dereferences
// payload memory.

// checkRef validates the reference count stored at dAddr+refOff. A count
// outside [0, RefLimit] means the header is garbage or the object was never
// constructed; the memory must not be traversed.
func (e *Engine) checkRef(typeName string, dAddr uint64, refOff uint32) error {
	count, err := e.readI32(dAddr + uint64(refOff))
	if err != nil {
		return errors.TraversalFault(errors.PhaseValidate, dAddr+uint64(refOff), err)
	}
	if count < 0 || count > e.opts.RefLimit {
		return errors.InvalidReference(errors.PhaseValidate, typeName, dAddr, count)
	}
	return nil
}

// checkSize validates the element count stored at dAddr+sizeOff and returns
// it. A negative count is invalid; a count above SizeLimit is distinct — the
// object may be healthy but is too large to enumerate interactively. Both
// outcomes block traversal.
func (e *Engine) checkSize(typeName string, dAddr uint64, sizeOff uint32) (int64, error) {
	size, err := e.readI32(dAddr + uint64(sizeOff))
	if err != nil {
		return 0, errors.TraversalFault(errors.PhaseValidate, dAddr+uint64(sizeOff), err)
	}
	if size < 0 {
		return 0, errors.InvalidSize(errors.PhaseValidate, typeName, dAddr, size)
	}
	if size > e.opts.SizeLimit {
		return 0, errors.Oversized(errors.PhaseValidate, typeName, dAddr, size, e.opts.SizeLimit)
	}
	return size, nil
}
