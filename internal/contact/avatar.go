package contact

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/hpungsan/rolo/internal/errors"
)

// MaxAvatarBytes caps the size of an embedded avatar image.
const MaxAvatarBytes = 2 << 20

// AvatarDataURI encodes image bytes as a data URI. Only image content is accepted.
func AvatarDataURI(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.NewInvalidRequest("avatar image is empty")
	}
	if len(data) > MaxAvatarBytes {
		return "", errors.NewInvalidRequest("avatar image exceeds 2 MiB")
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", errors.NewInvalidRequest("avatar must be an image, got " + mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
