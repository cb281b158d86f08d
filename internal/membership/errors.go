package membership

import "errors"

var (
	ErrNotFound          = errors.New("membership not found")
	ErrTypeNotFound      = errors.New("membership type not found")
	ErrTypeInactive      = errors.New("membership type is not available for purchase")
	ErrMemberNotFound    = errors.New("member not found")
	ErrNotActive         = errors.New("membership is not active")
	ErrMembershipExpired = errors.New("membership has expired")
	ErrVisitsExhausted   = errors.New("membership visit limit reached")
	ErrAlreadyCancelled  = errors.New("membership already cancelled")
	ErrInvalidTransition = errors.New("invalid membership status transition")
	ErrInvalidStartDate  = errors.New("invalid start date")
)

var ErrInvalidType = errors.New("invalid membership type")
