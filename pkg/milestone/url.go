package milestone

import (
	"fmt"
	"regexp"
	"strconv"
)

var milestoneURLPattern = regexp.MustCompile(`^https://github\.com/([^/]+)/([^/]+)/milestone/(\d+)$`)

// ParseURL extracts owner, repository and milestone number from a
// GitHub milestone URL.
func ParseURL(url string) (owner string, name string, number int, err error) {
	match := milestoneURLPattern.FindStringSubmatch(url)
	if match == nil {
		return "", "", 0, fmt.Errorf("invalid milestone URL format: %s", url)
	}

	number, err = strconv.Atoi(match[3])
	if err != nil {
		return "", "", 0, fmt.Errorf("invalid milestone number in URL %s: %w", url, err)
	}

	return match[1], match[2], number, nil
}
