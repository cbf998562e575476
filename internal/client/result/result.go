// Package result provides the tagged union returned by repository reads:
// every outcome is either Success carrying data or Error carrying a message.
package result

// Result is sealed: its only implementations are Success[T] and Error[T].
type Result[T any] interface {
	isResult(T)
}

// Success carries the data of a completed operation.
type Success[T any] struct {
	Data T
}

// Error carries the user-facing message of a failed operation.
type Error[T any] struct {
	Message string
}

func (Success[T]) isResult(T) {}
func (Error[T]) isResult(T)   {}

// Ok wraps data in Success.
func Ok[T any](data T) Result[T] {
	return Success[T]{Data: data}
}

// Fail wraps msg in Error.
func Fail[T any](msg string) Result[T] {
	return Error[T]{Message: msg}
}

// Match dispatches on the variant of r. Both branches are mandatory.
// A nil r is treated as an Error with an empty message.
func Match[T, R any](r Result[T], onSuccess func(T) R, onError func(string) R) R {
	switch v := r.(type) {
	case Success[T]:
		return onSuccess(v.Data)
	case Error[T]:
		return onError(v.Message)
	default:
		return onError("")
	}
}
