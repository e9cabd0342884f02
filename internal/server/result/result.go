// Package result defines the envelope every core service operation returns
// and the numeric error codes external clients branch on. The numbers are a
// compatibility contract: do not renumber.
package result

// Code is a stable machine-checkable outcome code. Zero means success.
type Code int

const (
	CodeOK Code = 0

	CodeListFault           Code = 300
	CodeItemNotFound        Code = 301
	CodeGetFault            Code = 302 // getById: unexpected store fault
	CodeUpdateOwnerMismatch Code = 302 // update: caller is not the owner
	CodeCreateFault         Code = 303
	CodeIDMismatch          Code = 304
	CodeConcurrentUpdate    Code = 305
	CodeUpdateFault         Code = 306
	CodeDeleteNotFound      Code = 307
	CodeDeleteOwnerMismatch Code = 308
	CodeDeleteFault         Code = 309
	CodeExportFault         Code = 310

	CodeBadRequest     Code = 400 // blank required identifier
	CodeDuplicateEmail Code = 400

	CodeFirstNameRequired Code = 1000
	CodeLastNameRequired  Code = 1001
	CodeEmailInvalid      Code = 1002
	CodePasswordRequired  Code = 1003

	CodeLoginEmailNotFound    Code = 2000
	CodeLoginPasswordMismatch Code = 2001
	CodeLoginFault            Code = 2002
)

// Result wraps a service outcome. On failure ErrorCode is non-zero and
// ErrorDescription is set; on success ErrorCode is CodeOK.
type Result[T any] struct {
	Success          bool   `json:"success"`
	Data             T      `json:"data"`
	ErrorCode        Code   `json:"errorCode"`
	ErrorDescription string `json:"errorDescription,omitempty"`
}

// OK returns a successful result carrying data.
func OK[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data, ErrorCode: CodeOK, ErrorDescription: "Success"}
}

// Done returns a successful result without payload.
func Done[T any](description string) Result[T] {
	return Result[T]{Success: true, ErrorCode: CodeOK, ErrorDescription: description}
}

// Fail returns a failed result. A zero code is only legal for peripheral
// operations that have no taxonomy entry.
func Fail[T any](code Code, description string) Result[T] {
	return Result[T]{Success: false, ErrorCode: code, ErrorDescription: description}
}
