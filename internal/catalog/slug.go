package catalog

import (
	"fmt"

	gslug "github.com/gosimple/slug"
)

// Slugify turns a display name into a URL-safe slug ("Booster Box!" -> "booster-box").
func Slugify(name string) string {
	return gslug.Make(name)
}

// DedupSlug appends -1, -2, ... sampai dapat slug yg belum dipakai.
// exists dipanggil per kandidat; error dari exists menghentikan pencarian.
func DedupSlug(base string, exists func(slug string) (bool, error)) (string, error) {
	candidate := base
	for i := 1; ; i++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
