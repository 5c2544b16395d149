package service

import (
	"errors"

	"github.com/cwmbran-celtic/clubsocial/internal/repository"
)

var (
	ErrPostNotFound            = errors.New("social post not found")
	ErrPostInvalid             = errors.New("social post invalid")
	ErrPostTextRequired        = errors.New("social post text is required")
	ErrPostPlatformsRequired   = errors.New("at least one platform is required")
	ErrPlatformUnsupported     = errors.New("platform not supported")
	ErrDuplicateSource         = repository.ErrDuplicateSource
	ErrPostContentFrozen       = errors.New("social post content is frozen after a publish attempt")
	ErrPostNotPublishable      = errors.New("social post cannot be published in its current status")
	ErrPublishInProgress       = errors.New("social post publish already in progress")
	ErrPublishPersistFailed    = errors.New("publish results could not be saved after sending")
	ErrStatusTransitionInvalid = errors.New("social post status transition not allowed")
	ErrGenerateTypeInvalid     = errors.New("generate type invalid")
	ErrEventNotFound           = errors.New("no matching event found")
	ErrEventSourceUnavailable  = errors.New("event source unavailable")
	ErrQueueUnavailable        = errors.New("task queue unavailable")
)
