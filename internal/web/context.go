package web

import (
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/JonMunkholm/bookingest/internal/ingest"
)

// fileSource describes an uploaded file for published messages. The client
// address goes into the URI so a rejection can be traced to its upload.
func fileSource(r *http.Request, header *multipart.FileHeader) ingest.FileSource {
	username := strings.TrimSpace(r.FormValue("username"))
	if username == "" {
		username = "anonymous"
	}
	uri := url.URL{Scheme: "upload", Host: clientHost(r.RemoteAddr), Path: "/" + header.Filename}
	return ingest.FileSource{
		URI:         uri.String(),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Username:    username,
		Role:        strings.TrimSpace(r.FormValue("role")),
	}
}

// clientHost drops the port from an address already processed by
// TrustedRealIP. IPv6 hosts keep their brackets for use in a URL.
func clientHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = strings.Trim(addr, "[]")
	}
	if strings.Contains(host, ":") {
		return "[" + host + "]"
	}
	return host
}
