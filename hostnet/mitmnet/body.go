package mitmnet

import (
	"bytes"
	"io"
	"net/http"
)

// readAndRestoreBody drains req.Body for inspection and replaces it with a
// fresh reader over the same bytes, so the proxied request can still be
// forwarded after the firewall has read it.
func readAndRestoreBody(req *http.Request) ([]byte, error) {
	if req.Body == nil {
		return nil, nil
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}

	req.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}
