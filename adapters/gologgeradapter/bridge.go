package gologgeradapter

import (
	"context"

	"github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-autobuild/logger"
)

// FromLogger exposes l as a go-logger logger so the hook can write through
// the module's own logger implementations.
func FromLogger(l logger.Logger) glog.Logger {
	if l == nil {
		l = logger.Nop()
	}
	return bridge{Logger: l}
}

type bridge struct {
	logger.Logger
}

func (b bridge) WithContext(ctx context.Context) glog.Logger {
	return bridge{Logger: b.Logger.WithContext(ctx)}
}

func (b bridge) WithFields(fields map[string]any) glog.Logger {
	if fl, ok := b.Logger.(logger.FieldsLogger); ok {
		return bridge{Logger: fl.WithFields(fields)}
	}
	return b
}

var _ glog.FieldsLogger = bridge{}
