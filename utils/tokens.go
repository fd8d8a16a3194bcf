package utils

import "github.com/google/uuid"

// GenerateReservationToken returns the opaque bearer string handed to a
// guest at booking time. It is the guest's only credential, so it must be
// unguessable; a v4 UUID gives 122 random bits.
func GenerateReservationToken() string {
	return uuid.NewString()
}
