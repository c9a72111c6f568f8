package logging

import (
	"time"

	"github.com/andaru/netctrl/message"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// MethodLogging is the notification method carrying log entries
const MethodLogging = "logging"

// Notifier sends notifications to the controller
type Notifier interface {
	SendNotification(method string, params message.Params) error
}

// NewNotifyCore returns a zapcore.Core sending each entry enabled by
// level to n as a logging notification. The notification's keyword
// arguments are the entry's fields plus level, logger, msg and time.
//
// The logger given to the notifier itself must not write to this core.
func NewNotifyCore(n Notifier, level zapcore.LevelEnabler) zapcore.Core {
	return &notifyCore{LevelEnabler: level, notifier: n}
}

// Forward returns log teed through a NewNotifyCore forwarding entries
// at level or above to n. Loggers used while sending to n must not be
// derived from the result.
func Forward(log *zap.Logger, n Notifier, level string) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return log.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, NewNotifyCore(n, lvl))
	})), nil
}

type notifyCore struct {
	zapcore.LevelEnabler
	notifier Notifier
	fields   []zapcore.Field
}

func (c *notifyCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = append(append([]zapcore.Field(nil), c.fields...), fields...)
	return &clone
}

func (c *notifyCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *notifyCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}
	kw := enc.Fields
	for k, v := range kw {
		kw[k] = plain(v)
	}
	kw["level"] = ent.Level.String()
	kw["msg"] = ent.Message
	kw["time"] = ent.Time.UTC().Format(time.RFC3339Nano)
	if ent.LoggerName != "" {
		kw["logger"] = ent.LoggerName
	}
	return c.notifier.SendNotification(MethodLogging, message.Params{kw})
}

func (c *notifyCore) Sync() error { return nil }

// plain replaces time values, which msgpack encodes as a timestamp
// extension, with RFC 3339 strings.
func plain(v interface{}) interface{} {
	switch v := v.(type) {
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case map[string]interface{}:
		for k, e := range v {
			v[k] = plain(e)
		}
	case []interface{}:
		for i, e := range v {
			v[i] = plain(e)
		}
	}
	return v
}
