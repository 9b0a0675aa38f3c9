package kernel

import (
	"errors"
	"fmt"
	"math"

	"tracking/internal/pkg/errs"
	"tracking/internal/pkg/guard"
)

const (
	// LocationMinLatitude is the minimum valid latitude in decimal degrees.
	LocationMinLatitude float64 = -90
	// LocationMaxLatitude is the maximum valid latitude in decimal degrees.
	LocationMaxLatitude float64 = 90
	// LocationMinLongitude is the minimum valid longitude in decimal degrees.
	LocationMinLongitude float64 = -180
	// LocationMaxLongitude is the maximum valid longitude in decimal degrees.
	LocationMaxLongitude float64 = 180

	// earthRadiusMeters is the mean Earth radius used by the haversine formula.
	earthRadiusMeters = 6_371_000.0
)

// ErrLocationIsNotConstructed is returned when attempting to use an improperly initialized Location.
// Locations must be created using the NewLocation or NewAddressedLocation constructors.
var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError(
	"location must be created via NewLocation or NewAddressedLocation constructors")

// Location represents a geographic point in decimal degrees, optionally
// carrying the human-readable address it was resolved from.
//
// Location is an immutable value object. The zero value is invalid and fails
// validation - use the constructors to create instances.
//
// Example:
//
//	loc, err := kernel.NewLocation(6.9000, 79.8500)
//	if err != nil {
//	    // Handle validation error
//	}
//	fmt.Printf("Location: %s", loc) // Output: Location(6.900000,79.850000)
type Location struct { //nolint:recvcheck //using for validation
	latitude  float64
	longitude float64
	address   string
	guard     guard.ConstructorGuard
}

// NewLocation creates a Location from latitude and longitude in decimal degrees.
// Latitude must be within [-90..90] and longitude within [-180..180].
// Returns an error if either coordinate is outside the valid bounds.
func NewLocation(latitude float64, longitude float64) (Location, error) {
	loc := Location{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(loc.setLatitude(latitude), loc.setLongitude(longitude)); err != nil {
		return Location{}, err
	}

	return loc, nil
}

// NewAddressedLocation creates a Location that also carries the street address
// the coordinates were resolved from. The address is informational only and
// does not participate in equality or distance computations.
func NewAddressedLocation(latitude float64, longitude float64, address string) (Location, error) {
	loc, err := NewLocation(latitude, longitude)
	if err != nil {
		return Location{}, err
	}

	loc.address = address
	return loc, nil
}

// Validate checks if the Location was properly constructed using a constructor.
// The zero value of Location fails this validation.
func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

// Latitude returns the latitude in decimal degrees.
func (l Location) Latitude() float64 {
	return l.latitude
}

// Longitude returns the longitude in decimal degrees.
func (l Location) Longitude() float64 {
	return l.longitude
}

// Address returns the human-readable address, or an empty string when the
// location was created from bare coordinates.
func (l Location) Address() string {
	return l.address
}

// String returns a representation in the format "Location(lat,lng)".
// This method implements the fmt.Stringer interface.
func (l Location) String() string {
	return fmt.Sprintf("Location(%f,%f)", l.latitude, l.longitude)
}

// IsEqual compares two locations by coordinates. Addresses are ignored.
// Both locations must be properly constructed for the comparison to succeed.
func (l Location) IsEqual(other Location) (bool, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return l.latitude == other.latitude && l.longitude == other.longitude, nil
}

// DistanceTo calculates the great-circle distance in meters between two
// locations using the haversine formula.
//
// Both locations must be properly constructed for the calculation to succeed.
//
// Example:
//
//	restaurant, _ := kernel.NewLocation(6.9000, 79.8500)
//	driver, _ := kernel.NewLocation(6.9005, 79.8500)
//
//	meters, err := driver.DistanceTo(restaurant)
//	// meters ≈ 55.6, err = nil
func (l Location) DistanceTo(other Location) (float64, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	dLat := degreesToRadians(other.latitude - l.latitude)
	dLng := degreesToRadians(other.longitude - l.longitude)

	rLat1 := degreesToRadians(l.latitude)
	rLat2 := degreesToRadians(other.latitude)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c, nil
}

// setLatitude sets the latitude with bounds validation.
// Note: We intentionally use a pointer receiver here while other methods use
// value receivers, to enable self-encapsulated validation during construction.
func (l *Location) setLatitude(latitude float64) error {
	if latitude < LocationMinLatitude || latitude > LocationMaxLatitude {
		return errs.NewValueIsOutOfRangeError("latitude", latitude, LocationMinLatitude, LocationMaxLatitude)
	}

	l.latitude = latitude
	return nil
}

// setLongitude sets the longitude with bounds validation.
// Note: We intentionally use a pointer receiver here while other methods use
// value receivers, to enable self-encapsulated validation during construction.
func (l *Location) setLongitude(longitude float64) error {
	if longitude < LocationMinLongitude || longitude > LocationMaxLongitude {
		return errs.NewValueIsOutOfRangeError("longitude", longitude, LocationMinLongitude, LocationMaxLongitude)
	}

	l.longitude = longitude
	return nil
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
