/*
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package request holds the small JSON-over-HTTP helpers shared by every
// outbound call the service makes.
package request

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds any outbound call made through this package unless
// the caller supplies its own client.
const DefaultTimeout = 30 * time.Second

// ToJSONReq serializes payload and wraps it in a buffer ready to be used as
// an HTTP request body.
func ToJSONReq(payload interface{}) (*bytes.Buffer, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return bytes.NewBuffer(raw), nil
}

// Call sends req with a JSON content type and decodes the response body into
// response. The raw body is returned alongside the response so callers can
// surface upstream error payloads verbatim. A non-JSON or empty body is not
// an error; response is simply left untouched.
func Call(client *http.Client, req *http.Request, response interface{}) (*http.Response, []byte, error) {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return resp, nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, err
	}
	if response != nil && len(body) > 0 {
		// Upstreams occasionally return plain-text errors; keep the raw body
		// and let the caller decide what a decode failure means.
		_ = json.Unmarshal(body, response)
	}
	return resp, body, nil
}

// BearerAuth returns the Authorization header value for a bearer token.
func BearerAuth(token string) string {
	return "Bearer " + token
}
