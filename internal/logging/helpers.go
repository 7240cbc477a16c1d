package logging

import (
	"maps"

	"github.com/goliatone/go-estate/pkg/interfaces"
	"github.com/google/uuid"
)

const (
	fieldContractID = "contract_id"
	fieldReference  = "reference"
)

// WithFields attaches structured fields when the logger supports the optional
// FieldsLogger extension. Nil or empty maps are a no-op.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		copied := make(map[string]any, len(fields))
		maps.Copy(copied, fields)
		return fieldsLogger.WithFields(copied)
	}

	return logger
}

// WithContractContext annotates logger with the contract identity. Zero values are skipped.
func WithContractContext(logger interfaces.Logger, id uuid.UUID, reference string) interfaces.Logger {
	fields := map[string]any{}
	if id != uuid.Nil {
		fields[fieldContractID] = id.String()
	}
	if reference != "" {
		fields[fieldReference] = reference
	}
	return WithFields(logger, fields)
}
