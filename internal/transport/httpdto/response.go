package httpdto

// Response is the envelope every JSON endpoint answers with.
type Response[T any] struct {
	Success   bool   `json:"success"`
	Data      T      `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func NewSuccessResponse[T any](data T) Response[T] {
	return Response[T]{Success: true, Data: data}
}

func NewErrorResponse(message, code string) Response[any] {
	return Response[any]{Error: message, Code: code}
}

// WithRequestID tags a failure so clients can quote it in bug reports.
func (r Response[T]) WithRequestID(id string) Response[T] {
	r.RequestID = id
	return r
}
