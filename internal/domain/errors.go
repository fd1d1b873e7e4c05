package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrCampaignNotFound  = errors.New("campaign not found")
	ErrAccountNotFound   = errors.New("account not found")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrAccountDisabled   = errors.New("account disabled")
	ErrEmailTaken        = errors.New("email already registered")
	ErrResetTokenInvalid = errors.New("reset token invalid or expired")
	ErrTransientStore    = errors.New("transient store error")
)
