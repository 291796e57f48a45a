package vision

import "errors"

// ErrRateLimited marks a remote classification failure caused by quota
// or rate limiting. The session controller checks for it with
// errors.Is to apply the long backoff instead of the normal retry.
var ErrRateLimited = errors.New("classifier rate limited")
