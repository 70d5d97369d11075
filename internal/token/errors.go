package token

import "errors"

var (
	// ErrNoToken means the partner never connected a Google account.
	ErrNoToken = errors.New("no oauth token stored for partner")

	// ErrExpiredNoRefresh means the access token is expired and there is no
	// refresh token to renew it with. Retrying cannot fix either condition.
	ErrExpiredNoRefresh = errors.New("access token expired and no refresh token available")
)

// IsPermanent reports whether the error cannot be resolved by waiting and
// retrying the job.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrNoToken) || errors.Is(err, ErrExpiredNoRefresh)
}
