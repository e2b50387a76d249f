package imaging

import (
	"encoding/base64"
	"errors"
	"strings"
)

const jpegPrefix = "data:image/jpeg;base64,"

var ErrNotDataURL = errors.New("imaging: not a base64 data url")

// EncodeDataURL wraps JPEG bytes in a data URL.
func EncodeDataURL(jpegBytes []byte) string {
	return jpegPrefix + base64.StdEncoding.EncodeToString(jpegBytes)
}

// DecodeDataURL returns the payload of any base64 image data URL.
func DecodeDataURL(url string) ([]byte, error) {
	if !strings.HasPrefix(url, "data:") {
		return nil, ErrNotDataURL
	}
	comma := strings.IndexByte(url, ',')
	if comma < 0 || !strings.HasSuffix(url[:comma], ";base64") {
		return nil, ErrNotDataURL
	}
	return base64.StdEncoding.DecodeString(url[comma+1:])
}
