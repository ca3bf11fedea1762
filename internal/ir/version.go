package ir

// Version constants for the annotation schema and checker.
const (
	// IRVersion is the annotation schema version.
	IRVersion = "1"

	// CheckerVersion is the tsg checker version.
	CheckerVersion = "0.1.0"
)
