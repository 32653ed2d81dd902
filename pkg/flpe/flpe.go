// Package flpe models the discharge parameters produced by the FLPE
// (flow law parameter estimation) algorithms for one reach.
//
// A Record always holds both run types, and each run type always holds all
// six algorithms, so downstream integration can read any parameter without
// checking for presence. Parameters that were not computed carry a sentinel:
// NonRunSentinel for the run type that was not requested, NaN when the
// reach has no algorithm output at all.
package flpe

import (
	"fmt"
	"strings"

	"github.com/swot-confluence/offline/pkg/constants"
	"github.com/swot-confluence/offline/pkg/errors"
)

// RunType is the mode an FLPE algorithm was executed in.
type RunType string

// Run types.
const (
	Constrained   RunType = "constrained"
	Unconstrained RunType = "unconstrained"
)

// RunTypes returns both run types in record order.
func RunTypes() []RunType {
	return []RunType{Unconstrained, Constrained}
}

// ParseRunType parses a run type name, ignoring case and surrounding space.
func ParseRunType(s string) (RunType, error) {
	switch RunType(strings.ToLower(strings.TrimSpace(s))) {
	case Constrained:
		return Constrained, nil
	case Unconstrained:
		return Unconstrained, nil
	default:
		return "", errors.NewValidationError("run_type", s, "must be constrained or unconstrained")
	}
}

// Valid reports whether r is one of the two run types.
func (r RunType) Valid() bool {
	return r == Constrained || r == Unconstrained
}

// Other returns the run type that was not requested.
func (r RunType) Other() RunType {
	if r == Unconstrained {
		return Constrained
	}
	return Unconstrained
}

// String implements fmt.Stringer.
func (r RunType) String() string {
	return string(r)
}

// Algorithm identifies an FLPE algorithm.
type Algorithm string

// Algorithms, named as they appear in the reach database.
const (
	AlgMetroMan Algorithm = "MetroMan"
	AlgBAM      Algorithm = "BAM"
	AlgHiVDI    Algorithm = "HiVDI"
	AlgMOMMA    Algorithm = "MOMMA"
	AlgSADS     Algorithm = "SADS"
	AlgSIC4DVar Algorithm = "SIC4DVar"
)

// Algorithms returns the six algorithms in record order.
func Algorithms() []Algorithm {
	return []Algorithm{AlgMetroMan, AlgBAM, AlgHiVDI, AlgMOMMA, AlgSADS, AlgSIC4DVar}
}

// ParseAlgorithm parses an algorithm name case-insensitively.
func ParseAlgorithm(s string) (Algorithm, error) {
	for _, a := range Algorithms() {
		if strings.EqualFold(string(a), strings.TrimSpace(s)) {
			return a, nil
		}
	}
	return "", errors.NewValidationError("algorithm", s, fmt.Sprintf("unknown algorithm %q", s))
}

// Availability records whether a reach's algorithm outputs were present.
type Availability string

// Availability values.
const (
	Available   Availability = "available"
	Unavailable Availability = "unavailable"
)

// NonRunSentinel is the value carried by every primary parameter of the run
// type that was not computed.
const NonRunSentinel = constants.NonRunSentinel
