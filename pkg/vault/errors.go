package vault

import "errors"

var (
	// ErrItemNotFound is returned by reads when no item exists for the
	// key, or when the platform reported any failure other than a
	// cancelled or failed authentication. The two cases are deliberately
	// not distinguished.
	ErrItemNotFound = errors.New("item not found")

	// ErrUserCancelled is returned by reads when the user dismissed the
	// authentication prompt or failed to authenticate.
	ErrUserCancelled = errors.New("user cancelled authentication")

	// ErrOperationFailed is returned by writes on any failure. Write
	// outcomes carry no subtype distinction.
	ErrOperationFailed = errors.New("operation failed")

	// ErrEmptyIdentifier is returned by Obtain and ObtainShared when the
	// vault identifier is empty.
	ErrEmptyIdentifier = errors.New("vault identifier must not be empty")

	// ErrEmptyGroup is returned by ObtainShared when the access group is
	// empty.
	ErrEmptyGroup = errors.New("access group must not be empty")
)
