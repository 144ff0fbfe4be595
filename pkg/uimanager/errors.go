package uimanager

import "errors"

// Sentinel errors for view manager operations.
var (
	// ErrControllerNotFound is returned when no controller is registered for
	// a class name.
	ErrControllerNotFound = errors.New("uimanager: controller not registered")

	// ErrViewNotFound indicates no live view exists for an id.
	ErrViewNotFound = errors.New("uimanager: view not found")

	// ErrNotContainer indicates a parent view cannot hold children.
	ErrNotContainer = errors.New("uimanager: parent is not a container")

	// ErrIncompatiblePackage indicates a controller package was built for a
	// different major API version.
	ErrIncompatiblePackage = errors.New("uimanager: incompatible controller package")

	// ErrInvalidRegistration indicates a registration without names or
	// factory.
	ErrInvalidRegistration = errors.New("uimanager: invalid controller registration")

	// ErrRejected wraps every rejection delivered through a ChanPromise.
	ErrRejected = errors.New("promise rejected")
)
