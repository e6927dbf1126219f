package metrics

import (
	prom "github.com/prometheus/client_golang/prometheus"

	ferrors "git.home.luguber.info/inful/buildplan/internal/foundation/errors"
)

// WriteTextfile atomically writes everything gathered from g to path in the
// Prometheus text exposition format.
func WriteTextfile(path string, g prom.Gatherer) error {
	if err := prom.WriteToTextfile(path, g); err != nil {
		return ferrors.FileSystemError("write metrics textfile").
			WithCause(err).
			Warning().
			WithContext("path", path).
			Build()
	}
	return nil
}
