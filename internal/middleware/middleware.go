package middleware

// Request is the part of an exchange a request middleware may touch.
type Request interface {
	RequestHeader(name string) string
	SetRequestHeader(name, value string)
}

// Response is the part of an exchange a response middleware may touch.
type Response interface {
	RequestHeader(name string) string
	StatusCode() int
	SetResponseHeader(name, value string)
}

type RequestMiddleware interface {
	HandleRequest(req Request) error
}

type ResponseMiddleware interface {
	HandleResponse(resp Response) error
}
