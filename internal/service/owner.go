package service

import "fmt"

// Owner identifies whose cart or wishlist an operation touches. A signed-in
// user always wins over the guest id carried by the same request.
type Owner struct {
	UserID  string
	GuestID string
}

func (o Owner) IsGuest() bool {
	return o.UserID == ""
}

func (o Owner) ID() string {
	if o.IsGuest() {
		return o.GuestID
	}
	return o.UserID
}

func (o Owner) validate() error {
	if o.UserID == "" && o.GuestID == "" {
		return fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	return nil
}
