package serverutils

// SuccessBody is the success envelope every endpoint returns.
type SuccessBody[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

// ErrorBody is the failure envelope.
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func SuccessResponse[T any](message string, data T) SuccessBody[T] {
	return SuccessBody[T]{
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) ErrorBody {
	return ErrorBody{
		Code:    code,
		Message: message,
	}
}
