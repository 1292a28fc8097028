package journey

import "github.com/pkg/errors"

// errTripNotFound/errRouteNotFound signal a Feed that is inconsistent
// with the compiled IdMaps it was compiled from -- a programming
// error, not a user-facing query error.
func errTripNotFound(tripID string) error {
	return errors.Errorf("trip '%s' missing from feed", tripID)
}

func errRouteNotFound(routeID string) error {
	return errors.Errorf("route '%s' missing from feed", routeID)
}
