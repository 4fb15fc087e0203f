package service

import (
	"strings"

	"github.com/google/uuid"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
)

const maxGuestIDLength = 100

var (
	ErrIdentityRequired = apperrors.Validation("identity required")
	ErrInvalidGuestID   = apperrors.Validation("Invalid guest ID")
	ErrIdentityMismatch = apperrors.Forbidden("Not authorized to access another user's cart")
	ErrLoginRequired    = apperrors.Unauthorized("Not authorized, no token")
)

// Identity selects one cart: UserID for a signed-in shopper, otherwise GuestID
type Identity struct {
	UserID  string
	GuestID string
}

func (i Identity) IsUser() bool {
	return i.UserID != ""
}

// LogFields is the identity as structured log fields
func (i Identity) LogFields() map[string]interface{} {
	return map[string]interface{}{
		"user_id":  i.UserID,
		"guest_id": i.GuestID,
	}
}

// ResolveIdentity picks the cart owner for a request. The authenticated
// principal always wins; a userId supplied by the client must match it.
// Without a principal only a guest id is accepted.
func ResolveIdentity(principalID, requestedUserID, guestID string) (Identity, error) {
	requestedUserID = strings.TrimSpace(requestedUserID)
	guestID = strings.TrimSpace(guestID)

	if principalID != "" {
		if requestedUserID != "" && requestedUserID != principalID {
			return Identity{}, ErrIdentityMismatch
		}
		return Identity{UserID: principalID}, nil
	}

	if guestID != "" {
		if len(guestID) > maxGuestIDLength {
			return Identity{}, ErrInvalidGuestID
		}
		return Identity{GuestID: guestID}, nil
	}
	if requestedUserID != "" {
		return Identity{}, ErrLoginRequired
	}
	return Identity{}, ErrIdentityRequired
}

// validID reports whether id looks like a document id
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
