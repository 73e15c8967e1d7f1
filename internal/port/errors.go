package port

import "errors"

// Sentinel errors used across ports.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrRepoNotFound = errors.New("repository not found")
	ErrRateLimited  = errors.New("hosting service rate limit exhausted")
	ErrFileTooLarge = errors.New("file exceeds size limit")
)
