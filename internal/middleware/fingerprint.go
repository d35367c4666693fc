package middleware

import (
	"mars_aio/internal/version"
)

type ServerFingerprint struct {
	name string
}

func NewServerFingerprint() *ServerFingerprint {
	return &ServerFingerprint{name: version.ServerName()}
}

func (h *ServerFingerprint) HandleResponse(resp Response) error {
	resp.SetResponseHeader("Server", h.name)
	return nil
}
