package credential

import (
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/crypto/ssh/agent"

	"github.com/wokspace/wok/internal/errors"
)

// Prompter asks the user for credentials.
type Prompter interface {
	Prompt(label string) (string, error)
	PromptSecret(label string) (string, error)
}

// Selector picks a Credential for the methods a remote accepts.
type Selector struct {
	// Prompter is used for missing usernames and passwords. A nil Prompter
	// disables every strategy that needs user input.
	Prompter Prompter
	// AgentSocket is the SSH agent socket. Empty means $SSH_AUTH_SOCK.
	AgentSocket string
}

// Select returns one credential for methods, in priority order SSH agent
// key, username and password, bare username.
func (s *Selector) Select(methods Method, usernameFromURL string) (Credential, error) {
	switch {
	case methods.Has(MethodSSHKey):
		socket := s.agentSocket()
		if err := checkAgent(socket); err != nil {
			return nil, fmt.Errorf("%w: ssh agent unavailable: %v", errors.ErrAuthentication, err)
		}
		return SSHAgent{Username: usernameFromURL, Socket: socket}, nil

	case methods.Has(MethodUserPass):
		if s.Prompter == nil {
			return nil, fmt.Errorf("password required but prompting is disabled: %w", errors.ErrAuthentication)
		}
		username := usernameFromURL
		if username == "" {
			var err error
			if username, err = s.Prompter.Prompt("Username"); err != nil {
				return nil, err
			}
		}
		password, err := s.Prompter.PromptSecret("Password")
		if err != nil {
			return nil, err
		}
		return UserPass{Username: username, Password: password}, nil

	case methods.Has(MethodUsername):
		username := usernameFromURL
		if username == "" {
			if s.Prompter == nil {
				return nil, fmt.Errorf("username required but prompting is disabled: %w", errors.ErrAuthentication)
			}
			var err error
			if username, err = s.Prompter.Prompt("Username"); err != nil {
				return nil, err
			}
		}
		return Username{Name: username}, nil

	default:
		return nil, fmt.Errorf("remote accepts no supported method (%s): %w", methods, errors.ErrAuthentication)
	}
}

func (s *Selector) agentSocket() string {
	if s.AgentSocket != "" {
		return s.AgentSocket
	}
	return os.Getenv("SSH_AUTH_SOCK")
}

// checkAgent verifies an agent is listening on socket and holds a key.
func checkAgent(socket string) error {
	if socket == "" {
		return fmt.Errorf("SSH_AUTH_SOCK is not set")
	}

	conn, err := net.DialTimeout("unix", socket, 2*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to ssh agent: %w", err)
	}
	defer conn.Close()

	keys, err := agent.NewClient(conn).List()
	if err != nil {
		return fmt.Errorf("failed to list ssh agent keys: %w", err)
	}
	if len(keys) == 0 {
		return fmt.Errorf("ssh agent holds no keys")
	}
	return nil
}
