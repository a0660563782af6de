package logger

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

var piiFieldKeys = map[string]struct{}{
	"email":       {},
	"donor_email": {},
}

type redactingCore struct {
	zapcore.Core
}

// NewRedactingCore masks string fields named email or donor_email.
func NewRedactingCore(core zapcore.Core) zapcore.Core {
	return &redactingCore{Core: core}
}

func (c *redactingCore) With(fields []zapcore.Field) zapcore.Core {
	return &redactingCore{Core: c.Core.With(redactFields(fields))}
}

func (c *redactingCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *redactingCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	return c.Core.Write(entry, redactFields(fields))
}

func redactFields(fields []zapcore.Field) []zapcore.Field {
	var out []zapcore.Field
	for i, field := range fields {
		if _, ok := piiFieldKeys[field.Key]; !ok || field.Type != zapcore.StringType {
			continue
		}
		if out == nil {
			out = make([]zapcore.Field, len(fields))
			copy(out, fields)
		}
		out[i].String = MaskEmail(field.String)
	}
	if out == nil {
		return fields
	}
	return out
}

// MaskEmail keeps the first letter of the local part and the domain, e.g.
// "b***@example.org".
func MaskEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		if email == "" {
			return ""
		}
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
