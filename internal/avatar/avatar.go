// Package avatar derives default avatar URLs and processes uploaded
// avatar images.
package avatar

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/disintegration/imaging"
)

// Size is the fixed square dimension of stored avatars.
const Size = 250

// GravatarURL derives the deterministic default avatar URL for an email
// address. Parameters match the public Gravatar contract: 250px, PG
// rating, "mystery man" fallback.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?s=250&r=pg&d=mm", hex.EncodeToString(sum[:]))
}

// Normalize decodes an uploaded image and crops/scales it to Size×Size.
func Normalize(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode avatar image: %w", err)
	}
	return imaging.Fill(img, Size, Size, imaging.Center, imaging.Lanczos), nil
}
