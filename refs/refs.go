// Package refs derives image references from user provided names and the
// registry endpoint reported by ECR. Everything here is pure string
// manipulation, no network and no daemon access.
package refs

import (
	"fmt"
	"path"
	"strings"
)

// Derive returns the local and remote references for an image. The local
// reference is the image as known by the daemon (name:tag) and the remote
// one prefixes the image name with the registry endpoint. ECR reports the
// endpoint with an https:// scheme which has no place in an image
// reference, so that exact prefix is stripped and nothing else.
func Derive(image, tag, endpoint string) (local, remote string) {
	local = fmt.Sprintf("%s:%s", image, tag)
	remote = fmt.Sprintf("%s/%s", strings.TrimPrefix(endpoint, "https://"), image)
	return local, remote
}

// RepositoryName extracts the repository name from an image name: the last
// path segment, or the name itself when there is no separator.
func RepositoryName(image string) string {
	_, repo := path.Split(image)
	return repo
}
