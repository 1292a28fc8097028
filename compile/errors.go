package compile

import "github.com/pkg/errors"

// Errors returned by Compile. Each is fatal to the query that
// triggered it, but never to the process.
var (
	// ErrAmbiguousDay is returned when a weekday prefix matches more
	// than one weekday name (e.g. "t" matches both Tuesday and
	// Thursday).
	ErrAmbiguousDay = errors.New("ambiguous day")

	// ErrUnknownDay is returned when a day value is neither an
	// integer 1..7 nor a prefix of any weekday name.
	ErrUnknownDay = errors.New("unknown day")

	// ErrNoRoutesMatch is returned when a route_pattern (or its
	// negation) matches zero routes.
	ErrNoRoutesMatch = errors.New("no routes match")

	// ErrSillyPattern is returned for the literal route_pattern "!".
	ErrSillyPattern = errors.New("silly pattern")

	// ErrNoServicesOnDay is returned when, after day and route
	// filtering, zero trips survive.
	ErrNoServicesOnDay = errors.New("no services on day")
)
