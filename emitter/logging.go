package emitter

import (
	"github.com/retroenv/retrogolib/log"
)

// HasLogger returns true if a logger is resolved, either the emitter's
// own or the one borrowed from the attached container.
func (b *Base) HasLogger() bool {
	return b.logger != nil
}

// HasOwnLogger returns true if the emitter logger overrides the
// container logger.
func (b *Base) HasOwnLogger() bool {
	return b.HasFlag(FlagOwnLogger)
}

// Logger returns the resolved logger, nil if none is available.
func (b *Base) Logger() *log.Logger {
	return b.logger
}

// SetLogger sets the emitter's own logger. Passing nil switches back
// to the logger of the attached container, own state is never deleted,
// only the override is cleared.
func (b *Base) SetLogger(logger *log.Logger) {
	if logger != nil {
		b.logger = logger
		b.flags |= FlagOwnLogger
		return
	}
	b.flags &^= FlagOwnLogger
	b.logger = nil
	if b.code != nil {
		b.logger = b.code.Logger()
	}
}

// ResetLogger switches back to the container logger.
func (b *Base) ResetLogger() {
	b.SetLogger(nil)
}

// HasErrorHandler returns true if an error handler is resolved.
func (b *Base) HasErrorHandler() bool {
	return b.errorHandler != nil
}

// HasOwnErrorHandler returns true if the emitter error handler
// overrides the container error handler.
func (b *Base) HasOwnErrorHandler() bool {
	return b.HasFlag(FlagOwnErrorHandler)
}

// ErrorHandler returns the resolved error handler, nil if none is
// available.
func (b *Base) ErrorHandler() ErrorHandler {
	return b.errorHandler
}

// SetErrorHandler sets the emitter's own error handler. Passing nil
// switches back to the error handler of the attached container.
func (b *Base) SetErrorHandler(handler ErrorHandler) {
	if handler != nil {
		b.errorHandler = handler
		b.flags |= FlagOwnErrorHandler
		return
	}
	b.flags &^= FlagOwnErrorHandler
	b.errorHandler = nil
	if b.code != nil {
		b.errorHandler = b.code.ErrorHandler()
	}
}

// ResetErrorHandler switches back to the container error handler.
func (b *Base) ResetErrorHandler() {
	b.SetErrorHandler(nil)
}

// ReportError passes a reportable error through the resolved error
// handler if one is installed and returns the unchanged error. The
// handler may log, augment or abort, its decision never changes the
// error value surfaced to the caller. A destroyed emitter no longer
// invokes the handler, errors raised during teardown only surface as
// return values.
func (b *Base) ReportError(err error, message string) error {
	if handler := b.errorHandler; handler != nil && !b.IsDestroyed() {
		origin := b.self
		handler.HandleError(err, message, origin)
	}
	return err
}
