//go:build !linux

package notify

import "errors"

func newSystemNotifier() (Notifier, error) {
	return nil, errors.New("desktop notifications are only supported on Linux")
}
