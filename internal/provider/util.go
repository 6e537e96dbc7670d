package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// payloadExt guesses a filename extension from the segment's magic
// bytes so multipart uploads carry a type the provider recognizes.
func payloadExt(payload []byte) string {
	switch {
	case len(payload) >= 12 && bytes.Equal(payload[0:4], []byte("RIFF")) && bytes.Equal(payload[8:12], []byte("WAVE")):
		return ".wav"
	case len(payload) >= 4 && bytes.Equal(payload[0:4], []byte("fLaC")):
		return ".flac"
	case len(payload) >= 4 && bytes.Equal(payload[0:4], []byte("OggS")):
		return ".ogg"
	case len(payload) >= 3 && bytes.Equal(payload[0:3], []byte("ID3")),
		len(payload) >= 2 && payload[0] == 0xFF && payload[1]&0xE0 == 0xE0:
		return ".mp3"
	default:
		return ".bin"
	}
}

// apiError builds a ProviderError from a non-2xx response body, pulling
// the provider's message field out of JSON bodies when present.
func apiError(provider string, status int, body []byte) error {
	msg := string(body)
	var decoded struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &decoded); err == nil {
		if decoded.Message != "" {
			msg = decoded.Message
		} else if len(decoded.Error) > 0 {
			var s string
			if json.Unmarshal(decoded.Error, &s) == nil {
				msg = s
			} else {
				var obj struct {
					Message string `json:"message"`
				}
				if json.Unmarshal(decoded.Error, &obj) == nil && obj.Message != "" {
					msg = obj.Message
				}
			}
		}
	}
	if len(msg) > 300 {
		msg = msg[:300]
	}
	return &ProviderError{Provider: provider, StatusCode: status, Message: msg}
}

// transportError wraps a failed round trip as a retryable NetworkError.
func transportError(provider string, err error) error {
	return &NetworkError{Err: fmt.Errorf("%s request: %w", provider, err)}
}
