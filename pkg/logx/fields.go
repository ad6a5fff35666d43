package logx

const (
	FieldAppName         = "app-name"
	FieldAppVersion      = "app-version"
	FieldBatch           = "batch"
	FieldDurationMs      = "duration-ms"
	FieldError           = "error"
	FieldHTTPMethod      = "http-method"
	FieldHTTPRequest     = "http-request"
	FieldHTTPResponse    = "http-response"
	FieldIP              = "ip"
	FieldItem            = "item"
	FieldJobID           = "job-id"
	FieldOrderID         = "order-id"
	FieldProgress        = "progress"
	FieldRequestBody     = "request-body"
	FieldRequestID       = "request-id"
	FieldResponseBody    = "response-body"
	FieldResponseHeaders = "response-headers"
	FieldResponseStatus  = "response-status"
	FieldStack           = "stack"
	FieldStatus          = "status"
	FieldTotal           = "total"
	FieldTraceID         = "trace-id"
	FieldURL             = "url"
	FieldUsername        = "username"
)
