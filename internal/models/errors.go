package models

import "errors"

var (
	ErrInvalidWorkingHours = errors.New("invalid working hours")
	ErrInvalidHoliday      = errors.New("invalid holiday date")
	ErrMissingToken        = errors.New("GITHUB_TOKEN is not set")
	ErrUserNotMapped       = errors.New("user not found in username map")
	ErrInvalidArgument     = errors.New("invalid argument")
)
