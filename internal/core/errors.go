package core

// DomainError 领域校验错误，携带协议错误码，最终变成 *_FAILURE 响应
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string { return e.Message }

func domainErr(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}
