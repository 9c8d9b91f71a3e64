package faults

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Code classifies every failure surfaced by the issuance pipeline and its
// surrounding CRUD surface.
type Code string

const (
	CodeValidation           Code = "validation"
	CodeNotFound             Code = "not_found"
	CodeConflict             Code = "conflict"
	CodeRenderingUnavailable Code = "rendering_unavailable"
	CodeStorageUnavailable   Code = "storage_unavailable"
	CodeChainUnavailable     Code = "chain_unavailable"
	CodeChainRejected        Code = "chain_rejected"
	CodeInternal             Code = "internal"
)

// Stage ops. The op names the pipeline step that failed and is safe to
// expose to callers.
const (
	OpCompositorLaunch  = "compositor.launch"
	OpCompositorRender  = "compositor.render"
	OpCompositorCapture = "compositor.capture"
	OpStorePinFile      = "store.pin_file"
	OpStorePinJSON      = "store.pin_json"
	OpMinterQueue       = "minter.queue"
	OpMinterSign        = "minter.sign"
	OpMinterSubmit      = "minter.submit"
	OpMinterConfirm     = "minter.confirm"
	OpMinterReverted    = "minter.reverted"
	OpMinterCounter     = "minter.counter"
)

// Error is the canonical fault wrapper.
type Error struct {
	Code    Code
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

func New(code Code, op, message string, cause error) error {
	return &Error{Code: code, Op: strings.TrimSpace(op), Message: strings.TrimSpace(message), Cause: cause}
}

// Wrap annotates err with a code. An existing *Error is returned as-is so the
// innermost classification wins.
func Wrap(code Code, op string, err error) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return err
	}
	return New(code, op, err.Error(), err)
}

func Validation(op, format string, args ...any) error {
	return New(CodeValidation, op, fmt.Sprintf(format, args...), nil)
}

func NotFound(op, format string, args ...any) error {
	return New(CodeNotFound, op, fmt.Sprintf(format, args...), nil)
}

func Conflict(op, format string, args ...any) error {
	return New(CodeConflict, op, fmt.Sprintf(format, args...), nil)
}

func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

func CodeOf(err error) Code {
	var fe *Error
	if !errors.As(err, &fe) {
		return ""
	}
	return fe.Code
}

func OpOf(err error) string {
	var fe *Error
	if !errors.As(err, &fe) {
		return ""
	}
	return fe.Op
}

// Infrastructure reports whether the code belongs to an external collaborator.
// Infrastructure faults never expose their message to API callers.
func (c Code) Infrastructure() bool {
	switch c {
	case CodeRenderingUnavailable, CodeStorageUnavailable, CodeChainUnavailable, CodeChainRejected, CodeInternal:
		return true
	}
	return false
}

// Classify tags a plain error raised while running op with the stage's
// default code. Context cancellation maps to the same code so a stage
// deadline reads as that stage being unavailable.
func Classify(code Code, op string, err error) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return New(code, op, "deadline exceeded", err)
	}
	if errors.Is(err, context.Canceled) {
		return New(code, op, "canceled", err)
	}
	return New(code, op, err.Error(), err)
}
