// Package credential negotiates authentication with git remotes.
//
// A remote that rejects an anonymous attempt reveals which methods it
// accepts. Select turns that method set into exactly one Credential,
// preferring an SSH agent key, then a username and password, then a bare
// username. The chosen Credential is handed to git through environment
// variables so that no secret ever reaches the command line.
package credential

import (
	"strings"
)

// Method is a set of authentication methods a remote accepts.
type Method uint8

const (
	// MethodSSHKey accepts a key held by the SSH agent.
	MethodSSHKey Method = 1 << iota
	// MethodUserPass accepts a plaintext username and password.
	MethodUserPass
	// MethodUsername accepts a username alone.
	MethodUsername
)

// Has reports whether every method in o is in m.
func (m Method) Has(o Method) bool {
	return o != 0 && m&o == o
}

func (m Method) String() string {
	if m == 0 {
		return "none"
	}
	var names []string
	if m.Has(MethodSSHKey) {
		names = append(names, "ssh-key")
	}
	if m.Has(MethodUserPass) {
		names = append(names, "userpass")
	}
	if m.Has(MethodUsername) {
		names = append(names, "username")
	}
	return strings.Join(names, "|")
}

// Credential is one of SSHAgent, UserPass or Username.
type Credential interface {
	// Method is the authentication method the credential satisfies.
	Method() Method
	// Env returns the environment entries that hand the credential to git.
	Env() []string

	sealed()
}

// SSHAgent authenticates with keys from a running SSH agent.
type SSHAgent struct {
	Username string
	Socket   string
}

// UserPass authenticates with a username and password.
type UserPass struct {
	Username string
	Password string
}

// Username authenticates with a username alone.
type Username struct {
	Name string
}

var (
	_ Credential = SSHAgent{}
	_ Credential = UserPass{}
	_ Credential = Username{}
)

func (SSHAgent) Method() Method { return MethodSSHKey }
func (UserPass) Method() Method { return MethodUserPass }
func (Username) Method() Method { return MethodUsername }

func (SSHAgent) sealed() {}
func (UserPass) sealed() {}
func (Username) sealed() {}

// Env points ssh at the agent and forbids interactive fallbacks. A
// username is passed to ssh as its login name.
func (c SSHAgent) Env() []string {
	command := "ssh -o BatchMode=yes"
	if c.Username != "" {
		command += " -l " + shellQuote(c.Username)
	}
	return []string{
		"SSH_AUTH_SOCK=" + c.Socket,
		"GIT_SSH_COMMAND=" + command,
	}
}

// shellQuote quotes s for sh, which git uses to run GIT_SSH_COMMAND.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Env installs a credential helper that answers from the environment.
func (c UserPass) Env() []string {
	return helperEnv(c.Username, c.Password)
}

// Env installs a credential helper that answers with the username only.
func (c Username) Env() []string {
	return helperEnv(c.Name, "")
}

// Variables read by the inline credential helper.
const (
	envUsername = "WOK_GIT_USERNAME"
	envPassword = "WOK_GIT_PASSWORD"
)

// helperScript is run by git through sh. Values come from the environment
// so they are never part of any argv.
const helperScript = `!f() { test "$1" = get || exit 0; ` +
	`test -n "$` + envUsername + `" && echo "username=$` + envUsername + `"; ` +
	`test -n "$` + envPassword + `" && echo "password=$` + envPassword + `"; ` +
	`exit 0; }; f`

// helperEnv resets any configured credential helpers and installs
// helperScript through git's GIT_CONFIG_* environment protocol.
func helperEnv(username, password string) []string {
	env := []string{
		"GIT_CONFIG_COUNT=2",
		"GIT_CONFIG_KEY_0=credential.helper",
		"GIT_CONFIG_VALUE_0=",
		"GIT_CONFIG_KEY_1=credential.helper",
		"GIT_CONFIG_VALUE_1=" + helperScript,
		envUsername + "=" + username,
	}
	if password != "" {
		env = append(env, envPassword+"="+password)
	}
	return env
}
