package youtube

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Classified fetch failures. Tool adapters pick these apart with errors.Is,
// errors.As and IsTimeout to build user-facing messages.
var (
	// ErrNoCaptions: the watch page carries no caption track data at all
	// (marker missing or the advertised track list is empty).
	ErrNoCaptions = errors.New("no caption tracks on watch page")
	// ErrMalformedData: the captionTracks payload did not decode as JSON.
	ErrMalformedData = errors.New("malformed caption track data")
	// ErrNoTrackURL: the selected track has no baseUrl to fetch.
	ErrNoTrackURL = errors.New("caption track has no url")
)

// StatusError reports a non-success HTTP status from either fetch stage.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Status)
}

// IsTimeout reports whether err was caused by a deadline: the scoped client's
// per-call timeout or an outer context deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
