package errcodes

type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

const (
	InternalServerError ErrorCode = "InternalServerError"
	ValidationError     ErrorCode = "ValidationError"
	NotFound            ErrorCode = "NotFound"
	AuthRequired        ErrorCode = "AuthRequired"
	RateLimited         ErrorCode = "RateLimited"
	UpstreamHTTPError   ErrorCode = "UpstreamHttpError"
	NetworkError        ErrorCode = "NetworkError"
	NoTokenFound        ErrorCode = "NoTokenFound"
	JobNotFound         ErrorCode = "JobNotFound"
)
