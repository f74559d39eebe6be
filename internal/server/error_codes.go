package server

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument    = 1000
	ErrCodeInvalidJSON        = 1001
	ErrCodeRequestTooLarge    = 1002
	ErrCodeInvalidQuery       = 1003
	ErrCodeInvalidID          = 1004
	ErrCodeInvalidStatus      = 1005
	ErrCodeInvalidScope       = 1006
	ErrCodeInvalidEntity      = 1007
	ErrCodeInvalidSlug        = 1008
	ErrCodeMissingRequired    = 1009
	ErrCodeInvalidImage       = 1010
	ErrCodeUnsupportedImage   = 1011
	ErrCodeImageTooLarge      = 1012
	ErrCodeInvalidRole        = 1013
	ErrCodeInvalidSearchQuery = 1014
	ErrCodeInvalidPassword    = 1015
	ErrCodeInvalidReference   = 1016

	// Domain state (2xxx)
	ErrCodeRecordNotFound  = 2001
	ErrCodeArticleNotFound = 2002
	ErrCodeMediaNotFound   = 2003
	ErrCodeUserNotFound    = 2004
	ErrCodeDuplicate       = 2101
	ErrCodeConflict        = 2102
	ErrCodeMediaInUse      = 2103

	// Auth & limits (3xxx)
	ErrCodeUnauthorized      = 3001
	ErrCodeForbidden         = 3002
	ErrCodeResourceExhausted = 3003

	// Internal/system (4xxx)
	ErrCodeInternal       = 4001
	ErrCodeStoreFailure   = 4002
	ErrCodeStorageFailure = 4003
	ErrCodeNotImplemented = 4005
)

func defaultErrorCodeByStatus(status int) int {
	switch status {
	case 400:
		return ErrCodeInvalidArgument
	case 401:
		return ErrCodeUnauthorized
	case 403:
		return ErrCodeForbidden
	case 404:
		return ErrCodeRecordNotFound
	case 409:
		return ErrCodeConflict
	case 413:
		return ErrCodeRequestTooLarge
	case 429:
		return ErrCodeResourceExhausted
	case 500:
		return ErrCodeInternal
	case 501:
		return ErrCodeNotImplemented
	default:
		return 0
	}
}
