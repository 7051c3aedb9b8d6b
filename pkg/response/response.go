package response

// Response is the uniform API envelope: every endpoint wraps its payload
// as {data, success, message}.
type Response struct {
	Data    interface{} `json:"data"`
	Success bool        `json:"success"`
	Message string      `json:"message"`
}

// Success wraps data in a success envelope with the default message.
func Success(data interface{}) Response {
	return Response{
		Data:    data,
		Success: true,
		Message: "Request successful",
	}
}

// SuccessMessage wraps data in a success envelope with a custom message.
func SuccessMessage(data interface{}, message string) Response {
	return Response{
		Data:    data,
		Success: true,
		Message: message,
	}
}

// Error returns an error envelope wrapping the message.
func Error(message string) Response {
	return Response{
		Data:    nil,
		Success: false,
		Message: message,
	}
}
