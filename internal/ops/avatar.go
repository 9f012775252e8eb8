package ops

import (
	"strings"

	"github.com/hpungsan/rolo/internal/contact"
	"github.com/hpungsan/rolo/internal/errors"
)

// maxAvatarURIChars bounds an avatar data URI (base64 of MaxAvatarBytes plus prefix).
const maxAvatarURIChars = contact.MaxAvatarBytes/3*4 + 64

func validateAvatar(uri string) error {
	if !strings.HasPrefix(uri, "data:image/") || !strings.Contains(uri, ";base64,") {
		return errors.NewInvalidRequest("avatar must be a base64 image data URI")
	}
	if len(uri) > maxAvatarURIChars {
		return errors.NewInvalidRequest("avatar exceeds 2 MiB")
	}
	return nil
}
