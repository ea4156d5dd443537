package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/oshokin/mediagrab/internal/constants"
)

// netscapeHeader is the first line yt-dlp expects in a cookie file.
const netscapeHeader = "# Netscape HTTP Cookie File"

// httpOnlyPrefix marks HttpOnly cookies in the Netscape format.
const httpOnlyPrefix = "#HttpOnly_"

// Cookie is a browser cookie reduced to the fields of a Netscape cookie file.
type Cookie struct {
	Domain   string
	Path     string
	Name     string
	Value    string
	Secure   bool
	HTTPOnly bool
	// Expires is a Unix timestamp; zero or negative for session cookies.
	Expires int64
}

// FilterCookies keeps the cookies whose domain belongs to one of the platform domain fragments.
func FilterCookies(cookies []Cookie, domains []string) []Cookie {
	result := make([]Cookie, 0, len(cookies))

	for _, cookie := range cookies {
		host := strings.ToLower(strings.TrimPrefix(cookie.Domain, "."))

		for _, fragment := range domains {
			if matchCookieDomain(host, strings.ToLower(fragment)) {
				result = append(result, cookie)

				break
			}
		}
	}

	return result
}

// FormatNetscape renders cookies as a Netscape cookie file, sorted by domain and name.
func FormatNetscape(cookies []Cookie) string {
	sorted := append([]Cookie(nil), cookies...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Domain != sorted[j].Domain {
			return sorted[i].Domain < sorted[j].Domain
		}

		return sorted[i].Name < sorted[j].Name
	})

	var sb strings.Builder

	sb.WriteString(netscapeHeader)
	sb.WriteString("\n\n")

	for _, cookie := range sorted {
		domain := cookie.Domain
		if cookie.HTTPOnly {
			domain = httpOnlyPrefix + domain
		}

		path := cookie.Path
		if path == "" {
			path = "/"
		}

		expires := cookie.Expires
		if expires < 0 {
			expires = 0
		}

		fmt.Fprintf(&sb, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			domain,
			netscapeBool(strings.HasPrefix(cookie.Domain, ".")),
			path,
			netscapeBool(cookie.Secure),
			strconv.FormatInt(expires, 10),
			cookie.Name,
			cookie.Value,
		)
	}

	return sb.String()
}

// WriteCookieFile writes cookies to path in Netscape format, readable by the owner only.
func WriteCookieFile(path string, cookies []Cookie) error {
	if err := os.MkdirAll(filepath.Dir(path), constants.DefaultFolderPermissions); err != nil {
		return err
	}

	return os.WriteFile(filepath.Clean(path), []byte(FormatNetscape(cookies)), constants.PrivateFilePermissions)
}

// matchCookieDomain compares a cookie domain with a platform fragment on label boundaries.
func matchCookieDomain(host, fragment string) bool {
	if !strings.Contains(fragment, ".") {
		return strings.Contains(host, fragment)
	}

	return host == fragment || strings.HasSuffix(host, "."+fragment)
}

func netscapeBool(v bool) string {
	if v {
		return "TRUE"
	}

	return "FALSE"
}
