package engine

import (
	"github.com/pjsaksa/swd/internal/artifact"
	"github.com/pjsaksa/swd/internal/unit"
)

// toArtifactLink converts a unit.LinkType (declared on unit.Step to avoid an
// import cycle with internal/artifact) into the artifact package's own
// LinkType, which this package is free to import.
func toArtifactLink(l unit.LinkType) artifact.LinkType {
	switch l {
	case unit.LinkAggregate:
		return artifact.LinkAggregate
	case unit.LinkPost:
		return artifact.LinkPost
	default:
		return artifact.LinkSimple
	}
}
