package web

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/url"
)

const maxBodyBytes = 1 << 20

// readBody returns the request body fields from a urlencoded, multipart or JSON body.
//
// JSON scalars are converted to their string form so numeric ids read the same as form fields.
func readBody(r *http.Request) (url.Values, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/json":
		var fields map[string]any
		dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
		dec.UseNumber()
		if err := dec.Decode(&fields); err != nil {
			return nil, fmt.Errorf("failed to decode body: %w", err)
		}

		values := url.Values{}
		for key, v := range fields {
			switch v := v.(type) {
			case nil:
			case string:
				values.Set(key, v)
			case json.Number, bool:
				values.Set(key, fmt.Sprint(v))
			}
		}
		return values, nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, fmt.Errorf("failed to parse form: %w", err)
		}
		return r.PostForm, nil
	default:
		r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("failed to parse form: %w", err)
		}
		return r.PostForm, nil
	}
}
