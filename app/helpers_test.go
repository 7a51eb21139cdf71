package app

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
)

func formRequest(method, path string, fields map[string]string) *http.Request {
	v := url.Values{}
	for k, val := range fields {
		v.Set(k, val)
	}

	req := httptest.NewRequest(method, path, strings.NewReader(v.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return req
}
