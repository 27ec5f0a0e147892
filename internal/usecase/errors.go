package usecase

const (
	CodeValidation       = "VALIDATION"
	CodeNotFound         = "NOT_FOUND"
	CodeInvalidSignature = "INVALID_SIGNATURE"
	CodeMissingLeadID    = "MISSING_LEAD_ID"
)

type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func IsDomainError(err error) bool {
	_, ok := err.(*DomainError)
	return ok
}

type TechnicalError struct {
	Code    string
	Message string
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func IsTechnicalError(err error) bool {
	_, ok := err.(*TechnicalError)
	return ok
}
