package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	commandValidationCode   = "COMMAND_VALIDATION_FAILED"
	commandContextCanceled  = "COMMAND_CONTEXT_CANCELED"
	commandContextTimeout   = "COMMAND_CONTEXT_TIMEOUT"
	commandContextErrorCode = "COMMAND_CONTEXT_ERROR"
	commandExecuteFailed    = "COMMAND_EXECUTION_FAILED"
)

type failureStage int

const (
	stageValidation failureStage = iota
	stageContext
	stageExecute
)

// commandError categorises err for the named command. Errors that already carry a
// go-errors category, such as the contract service mappings, pass through untouched.
func commandError(commandType string, stage failureStage, err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}

	switch stage {
	case stageValidation:
		return goerrors.Wrap(err, goerrors.CategoryValidation, commandType+": validation failed").
			WithTextCode(commandValidationCode)
	case stageContext:
		code, message := contextFailure(err)
		return goerrors.Wrap(err, goerrors.CategoryCommand, commandType+": "+message).
			WithTextCode(code)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, commandType+": execution failed").
			WithTextCode(commandExecuteFailed)
	}
}

func contextFailure(err error) (code, message string) {
	switch {
	case errors.Is(err, context.Canceled):
		return commandContextCanceled, "execution cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return commandContextTimeout, "deadline exceeded"
	default:
		return commandContextErrorCode, "context error"
	}
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
