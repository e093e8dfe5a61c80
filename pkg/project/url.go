package project

import (
	"fmt"
	"regexp"
	"strconv"
)

type OwnerKind string

const (
	OwnerOrg  OwnerKind = "org"
	OwnerUser OwnerKind = "user"
)

var projectURLPattern = regexp.MustCompile(`^https://github\.com/(orgs|users)/([^/]+)/projects/(\d+)/?$`)

// ParseURL extracts the owner and project number from a GitHub
// Projects URL like https://github.com/orgs/{org}/projects/{number}.
func ParseURL(url string) (OwnerKind, string, int, error) {
	match := projectURLPattern.FindStringSubmatch(url)
	if match == nil {
		return "", "", 0, fmt.Errorf("invalid project URL format: %s", url)
	}

	number, err := strconv.Atoi(match[3])
	if err != nil {
		return "", "", 0, fmt.Errorf("invalid project number in URL %s: %w", url, err)
	}

	kind := OwnerOrg
	if match[1] == "users" {
		kind = OwnerUser
	}

	return kind, match[2], number, nil
}
