package app

import (
	"errors"

	"github.com/khrees2412/pathweiz/internal/api"
	"github.com/khrees2412/pathweiz/internal/auth"
)

// Sentinel errors for common application errors
var (
	ErrAuthRequired      = auth.ErrAuthRequired
	ErrNetwork           = api.ErrNetwork
	ErrNoRecommendations = errors.New("no recommendations yet. Run: pathweiz survey")
	ErrNotFound          = errors.New("not found")
	ErrInvalidArgument   = errors.New("invalid argument")
)
