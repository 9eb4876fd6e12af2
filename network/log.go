package network

import "github.com/rs/zerolog"

// retryLogAdapter adapts retryablehttp.LeveledLogger to zerolog. Retry
// chatter goes to debug; only exhausted retries reach warn.
type retryLogAdapter struct {
	log zerolog.Logger
}

func (a *retryLogAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.log.Warn().Fields(keysAndValues).Msg(msg)
}

func (a *retryLogAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (a *retryLogAdapter) Debug(msg string, keysAndValues ...interface{}) {
	a.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (a *retryLogAdapter) Warn(msg string, keysAndValues ...interface{}) {
	a.log.Debug().Fields(keysAndValues).Msg(msg)
}
