package credential

import (
	"net/url"
	"regexp"
	"strings"
)

// scpLikeRegex matches scp-style remotes such as git@host:org/repo.git.
var scpLikeRegex = regexp.MustCompile(`^(?:([^@/]+)@)?([^:/]+):(.*)$`)

// transports git addresses with URL syntax.
var transports = map[string]bool{
	"ssh": true, "git+ssh": true, "ssh+git": true,
	"http": true, "https": true, "git": true, "file": true, "ftp": true, "ftps": true,
}

func parseURL(rawURL string) (*url.URL, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || !transports[u.Scheme] {
		return nil, false
	}
	return u, true
}

// IsSSH reports whether rawURL is reached over SSH.
func IsSSH(rawURL string) bool {
	if u, ok := parseURL(rawURL); ok {
		return strings.Contains(u.Scheme, "ssh")
	}
	return !strings.HasPrefix(rawURL, "/") && scpLikeRegex.MatchString(rawURL)
}

// UsernameFromURL returns the user embedded in rawURL, if any.
func UsernameFromURL(rawURL string) string {
	if u, ok := parseURL(rawURL); ok {
		if u.User != nil {
			return u.User.Username()
		}
		return ""
	}
	if m := scpLikeRegex.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}
	return ""
}

// Output fragments git and ssh print when a remote rejects a request for
// lack of credentials.
var (
	sshAuthMarkers = []string{
		"permission denied (publickey",
		"permission denied, please try again",
		"no supported authentication methods available",
	}
	httpAuthMarkers = []string{
		"authentication failed",
		"could not read username",
		"could not read password",
		"terminal prompts disabled",
		"the requested url returned error: 401",
		"the requested url returned error: 403",
		"invalid username or password",
	}
)

// DetectMethods inspects the output of a failed git command against
// rawURL and returns the authentication methods the remote asked for.
// It returns 0 when the failure was not an authentication failure.
func DetectMethods(rawURL, output string) Method {
	out := strings.ToLower(output)

	if IsSSH(rawURL) {
		for _, marker := range sshAuthMarkers {
			if strings.Contains(out, marker) {
				return MethodSSHKey
			}
		}
		return 0
	}

	for _, marker := range httpAuthMarkers {
		if strings.Contains(out, marker) {
			return MethodUserPass | MethodUsername
		}
	}
	return 0
}
