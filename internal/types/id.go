// README: Opaque identifier shared by quotes and bookings.
package types

import "github.com/google/uuid"

type ID string

func NewID() ID {
	return ID(uuid.NewString())
}

func (id ID) Valid() bool {
	_, err := uuid.Parse(string(id))
	return err == nil
}
