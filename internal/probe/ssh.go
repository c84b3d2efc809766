package probe

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
)

// noDirMarker is printed by the remote command when the target path is
// missing or not a directory, so that case is distinguishable from a count.
const noDirMarker = "DIRSENTRY_NO_DIR"

// SSHConfig holds the session settings shared by all remote probes in a run.
type SSHConfig struct {
	User     string
	Port     int
	Password string
	// KeyFile is a path to a PEM private key. When set it takes precedence
	// over Password.
	KeyFile string
	Timeout time.Duration
	// InsecureIgnoreHostKey disables host key verification. Off by default;
	// scheduled jobs should ship a known_hosts callback instead.
	InsecureIgnoreHostKey bool
	HostKeyCallback       ssh.HostKeyCallback
}

// SSH probes directories on remote hosts by running a small POSIX shell
// pipeline over an SSH session. Clients are dialed once per host and shared
// across concurrent tasks via an internal pool.
type SSH struct {
	cfg  SSHConfig
	pool *clientPool
}

func NewSSH(cfg SSHConfig) (*SSH, error) {
	if cfg.User == "" {
		return nil, fmt.Errorf("ssh: user is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 22
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	auth, err := authMethods(cfg)
	if err != nil {
		return nil, err
	}

	hostKey := cfg.HostKeyCallback
	if hostKey == nil {
		if !cfg.InsecureIgnoreHostKey {
			return nil, fmt.Errorf("ssh: host key callback is required unless InsecureIgnoreHostKey is set")
		}
		hostKey = ssh.InsecureIgnoreHostKey()
	}

	clientCfg := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auth,
		HostKeyCallback: hostKey,
		Timeout:         cfg.Timeout,
	}
	return &SSH{cfg: cfg, pool: newClientPool(clientCfg, cfg.Port)}, nil
}

func authMethods(cfg SSHConfig) ([]ssh.AuthMethod, error) {
	if cfg.KeyFile != "" {
		pem, err := os.ReadFile(cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("ssh: read key file: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			return nil, fmt.Errorf("ssh: parse key file: %w", err)
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	}
	if cfg.Password != "" {
		return []ssh.AuthMethod{ssh.Password(cfg.Password)}, nil
	}
	return nil, fmt.Errorf("ssh: either key file or password is required")
}

func (s *SSH) Probe(ctx context.Context, host, path string, maxFiles int) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	client, err := s.pool.get(host)
	if err != nil {
		return Outcome{}, &SessionError{Host: host, Err: err}
	}

	session, err := client.NewSession()
	if err != nil {
		return Outcome{}, &SessionError{Host: host, Err: err}
	}
	defer session.Close()

	out, err := session.Output(countCommand(path))
	if err != nil {
		return Outcome{}, &EnumerationError{Path: path, Err: err}
	}

	count, err := parseCountOutput(path, string(out))
	if err != nil {
		return Outcome{}, err
	}
	return outcomeFor(count, maxFiles), nil
}

// Close releases all pooled host connections. Dial errors are not retried,
// so Close only reports close failures.
func (s *SSH) Close() error {
	return s.pool.closeAll()
}

// countCommand builds the remote pipeline: print a marker if the path is not
// a directory, otherwise the number of immediate regular-file entries.
func countCommand(path string) string {
	p := shellQuote(path)
	return fmt.Sprintf(
		"if [ -d %s ]; then find %s -maxdepth 1 -type f | wc -l; else echo %s; fi",
		p, p, noDirMarker,
	)
}

func parseCountOutput(path, out string) (int, error) {
	out = strings.TrimSpace(out)
	if out == noDirMarker {
		return 0, &PathNotFoundError{Path: path}
	}
	n, err := strconv.Atoi(out)
	if err != nil || n < 0 {
		return 0, &EnumerationError{Path: path, Err: fmt.Errorf("unexpected remote output %q", out)}
	}
	return n, nil
}

// shellQuote wraps s in single quotes, escaping embedded single quotes, so
// arbitrary directory names survive the remote shell.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
