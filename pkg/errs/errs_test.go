package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCodeForNilIsOK(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCodeFor(nil))
}

func TestExitCodeForComparisonErrorIsMismatch(t *testing.T) {
	err := &ComparisonError{Mismatches: []Mismatch{{Pointer: "v"}}}
	assert.Equal(t, ExitMismatch, ExitCodeFor(err))
}

func TestExitCodeForConfigErrorIsConfigError(t *testing.T) {
	err := errors.New(`configuration error: option "cs": unknown policy "bogus"`)
	assert.Equal(t, ExitConfigError, ExitCodeFor(err))
}

func TestExitCodeForGenericErrorIsInternal(t *testing.T) {
	assert.Equal(t, ExitInternal, ExitCodeFor(errors.New("boom")))
}

func TestPluginErrorUnwrapsToCause(t *testing.T) {
	cause := errors.New("underlying failure")
	err := &PluginError{Plugin: "taint", Event: "HandleNewCallEdge", Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "taint")
	assert.Contains(t, err.Error(), "HandleNewCallEdge")
}

func TestMismatchStringFormatsAbsentSidesAsNull(t *testing.T) {
	m := Mismatch{Pointer: "v", Expected: nil, Given: []string{"o1"}}
	s := m.String()
	assert.Contains(t, s, "v")
	assert.Contains(t, s, "null")
	assert.Contains(t, s, "o1")
}

func TestComparisonErrorCountsMismatches(t *testing.T) {
	err := &ComparisonError{Mismatches: []Mismatch{{Pointer: "a"}, {Pointer: "b"}}}
	assert.Contains(t, err.Error(), "2 points-to mismatch")
}
