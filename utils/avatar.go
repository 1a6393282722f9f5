// utils/avatar.go
package utils

import (
	"bytes"
	"encoding/base64"
	"errors"
	"mime/multipart"
	"strings"
	"unicode"

	"github.com/disintegration/imaging"
)

// MaxAvatarSize caps uploaded avatar files at 2 MB.
const MaxAvatarSize = 2 << 20

// avatarSide is the bounding box avatars are fitted into before storage.
const avatarSide = 256

var allowedAvatarTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// ProcessAvatarUpload validates, decodes, downscales and re-encodes an
// uploaded avatar image. The result is a PNG data URL small enough to store
// inline in the avatars table, stripped of whatever metadata the original
// carried.
func ProcessAvatarUpload(file *multipart.FileHeader) (string, error) {
	if file.Size > MaxAvatarSize {
		return "", errors.New("avatar file exceeds 2MB limit")
	}
	if ct := file.Header.Get("Content-Type"); !allowedAvatarTypes[ct] {
		return "", errors.New("avatar must be a JPEG, PNG or GIF image")
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", errors.New("invalid image data")
	}

	img = imaging.Fit(img, avatarSide, avatarSide, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// GenerateInitials derives up to two uppercase initials from a display name,
// used as the default avatar for users who never uploaded one.
func GenerateInitials(name string) string {
	fields := strings.Fields(strings.TrimSpace(name))
	if len(fields) == 0 {
		return "?"
	}
	initials := []rune{unicode.ToUpper([]rune(fields[0])[0])}
	if len(fields) > 1 {
		last := fields[len(fields)-1]
		initials = append(initials, unicode.ToUpper([]rune(last)[0]))
	}
	return string(initials)
}
