package middleware

import (
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	HeaderAPIVersion     = "X-API-Version"
	ContextKeyAPIVersion = "api_version"

	CurrentAPIVersion = 1
	MinAPIVersion     = 1
)

var acceptVersionRegex = regexp.MustCompile(`application/vnd\.billing\.v(\d+)\+json`)

// APIVersion resolves the requested version from X-API-Version, then from a
// vendor Accept type, and echoes it back. Unknown versions fall back to the
// current one.
func APIVersion() gin.HandlerFunc {
	return func(c *gin.Context) {
		version := resolveAPIVersion(c)
		c.Set(ContextKeyAPIVersion, version)
		c.Header(HeaderAPIVersion, strconv.Itoa(version))
		c.Next()
	}
}

func GetAPIVersion(c *gin.Context) int {
	if v, ok := c.Get(ContextKeyAPIVersion); ok {
		if ver, ok := v.(int); ok {
			return ver
		}
	}
	return CurrentAPIVersion
}

func resolveAPIVersion(c *gin.Context) int {
	if v, ok := supportedVersion(c.GetHeader(HeaderAPIVersion)); ok {
		return v
	}
	if m := acceptVersionRegex.FindStringSubmatch(c.GetHeader("Accept")); len(m) == 2 {
		if v, ok := supportedVersion(m[1]); ok {
			return v
		}
	}
	return CurrentAPIVersion
}

func supportedVersion(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < MinAPIVersion || v > CurrentAPIVersion {
		return 0, false
	}
	return v, true
}
