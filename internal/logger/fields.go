package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldComponent names the pipeline stage that emitted the entry.
	FieldComponent = "component"
	// FieldSource names the upstream the component talks to (a model, a host, a file).
	FieldSource = "source"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// If the logger is nil or no fields are supplied, the input logger is returned
// unchanged, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CommonFields returns the component and source fields. Empty values are ignored.
func CommonFields(component, source string) []zap.Field {
	return StringFields(
		StringField{Key: FieldComponent, Value: component},
		StringField{Key: FieldSource, Value: source},
	)
}

// WithCommonFields attaches the component and source fields to the provided logger.
// A nil logger becomes a no-op logger.
func WithCommonFields(logger *zap.Logger, component, source string) *zap.Logger {
	return WithFields(logger, CommonFields(component, source)...)
}
