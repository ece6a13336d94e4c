package storage

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"eventboard/internal/domain"
)

// keyPrefix is the common root of every reference handed out by the stores.
const keyPrefix = "events/"

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// objectKey builds a storage-relative reference for an upload. The uuid token keeps two
// files with the same original name apart, even within one request.
func objectKey(kind domain.MediaKind, filename string) string {
	return fmt.Sprintf("%s%ss/%s-%s", keyPrefix, kind, uuid.NewString(), sanitizeName(filename))
}

func sanitizeName(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	name = unsafeNameChars.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-.")
	if name == "" {
		return "file"
	}
	if len(name) > 100 {
		name = name[len(name)-100:]
	}
	return name
}

// cleanKey normalises a reference and rejects anything this store could not have produced.
func cleanKey(ref string) (string, error) {
	key := strings.TrimPrefix(path.Clean("/"+ref), "/")
	if !strings.HasPrefix(key, keyPrefix) {
		return "", fmt.Errorf("foreign media reference %q", ref)
	}
	return key, nil
}
