// Package errors implements the swap error taxonomy using a generic
// Code[MT]/TypedError pattern: this core speaks JSON-RPC, not gRPC, so
// each Code carries a Disposition that the JSON-RPC transport and the
// block-connect/C7 callers use to decide reject-tx vs reject-rpc vs
// log-only handling.
package errors

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Disposition mirrors the "Disposition" column of the error table.
type Disposition byte

const (
	// DispositionRejectTx means the error fails a single transaction; the
	// node itself is unaffected.
	DispositionRejectTx Disposition = iota
	// DispositionRejectRPC means the error is returned to an RPC/CLI caller.
	DispositionRejectRPC
	// DispositionLogOnly means the error is recorded and the current pass
	// is skipped; no transaction or RPC call is failed outright.
	DispositionLogOnly
	// DispositionRecover means the error triggers C9 recovery.
	DispositionRecover
)

// Code is a namespaced, numbered error kind carrying typed metadata MT.
type Code[MT any] struct {
	Code        uint16
	Name        string
	Disposition Disposition
}

func (c Code[MT]) New(msg string, args ...any) TypedError[MT] {
	return &ErrorImpl[MT]{code: c, cause: fmt.Errorf(msg, args...)}
}

func (c Code[MT]) Wrap(cause error) TypedError[MT] {
	return &ErrorImpl[MT]{code: c, cause: cause}
}

func (c Code[MT]) String() string {
	return fmt.Sprintf("%s (%d)", c.Name, c.Code)
}

type Error interface {
	error
	Log() *log.Entry
	Code() uint16
	CodeName() string
	Disposition() Disposition
	Metadata() map[string]string
}

type TypedError[MT any] interface {
	Error
	WithMetadata(MT) TypedError[MT]
}

type ErrorImpl[MT any] struct {
	code     Code[MT]
	cause    error
	metadata MT
}

func (e *ErrorImpl[MT]) Log() *log.Entry {
	return log.WithField("name", e.code.Name).
		WithField("code", e.code.Code).
		WithField("metadata", e.metadata)
}

func (e *ErrorImpl[MT]) Code() uint16           { return e.code.Code }
func (e *ErrorImpl[MT]) CodeName() string       { return e.code.Name }
func (e *ErrorImpl[MT]) Disposition() Disposition { return e.code.Disposition }

func (e *ErrorImpl[MT]) Error() string {
	return fmt.Sprintf("%s: %s", e.code.String(), e.cause.Error())
}

func (e *ErrorImpl[MT]) WithMetadata(metadata MT) TypedError[MT] {
	e.metadata = metadata
	return e
}

func (e *ErrorImpl[MT]) Metadata() map[string]string {
	return structToStringMap(e.metadata)
}
