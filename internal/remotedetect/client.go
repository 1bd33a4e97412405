// Package remotedetect discovers terminal profiles on a remote host
// over SSH. When a remote client is configured it takes priority over
// local detection, and the remote host's operating system decides the
// effective platform.
package remotedetect

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
	"pkt.systems/pslog"
	"pkt.systems/termprof/core"
	"pkt.systems/termprof/internal/detect"
	"pkt.systems/termprof/schema"
)

// Config describes how to reach the remote host.
type Config struct {
	// Addr is the host:port of the SSH server.
	Addr string
	// User is the login name.
	User string
	// KeyPath points at a PEM private key. Optional when Password is set.
	KeyPath string
	// Password is used when no key is available.
	Password string
	// KnownHostsPath enables host key verification against an
	// OpenSSH known_hosts file. When empty the host key is not
	// verified and a warning is logged on every dial.
	KnownHostsPath string
	// Timeout bounds the TCP dial. Zero means DefaultTimeout.
	Timeout time.Duration
}

// DefaultTimeout bounds the TCP dial when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Client implements core.ProfileSource and
// core.RemoteEnvironmentProvider against an SSH host.
type Client struct {
	cfg Config
	log pslog.Logger
}

// New validates cfg and returns a Client. No connection is made until
// the first detection or environment call.
func New(cfg Config, logger pslog.Logger) (*Client, error) {
	if cfg.Addr == "" {
		return nil, errors.New("remotedetect: address is required")
	}
	if cfg.User == "" {
		return nil, errors.New("remotedetect: user is required")
	}
	if cfg.KeyPath == "" && cfg.Password == "" {
		return nil, errors.New("remotedetect: a key path or password is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Client{cfg: cfg, log: logger}, nil
}

// Environment reports the remote operating system. A host whose uname
// cannot be interpreted is treated as windows, matching the behavior
// of shells that lack uname entirely.
func (c *Client) Environment(ctx context.Context) (*schema.RemoteEnvironment, error) {
	out, err := c.run(ctx, "uname -s")
	if err != nil {
		return nil, fmt.Errorf("remote environment probe: %w", err)
	}
	env := &schema.RemoteEnvironment{}
	switch strings.TrimSpace(out) {
	case "Linux":
		env.OS = schema.PlatformLinux
	case "Darwin":
		env.OS = schema.PlatformOSX
	default:
		env.OS = schema.PlatformWindows
	}
	return env, nil
}

// DetectProfiles lists profiles available on the remote host.
// Configured entries are taken at face value since their executables
// cannot be probed from here; detected shells come from the remote
// /etc/shells.
func (c *Client) DetectProfiles(ctx context.Context, req core.DetectRequest) ([]schema.Profile, error) {
	var configured []schema.Profile
	for title, entry := range req.ConfiguredProfiles {
		if entry == nil || entry.Extension != "" || entry.Path == "" {
			continue
		}
		configured = append(configured, schema.Profile{
			Name:         schema.ProfileName(title),
			Path:         entry.Path,
			Args:         append([]string(nil), entry.Args...),
			Icon:         entry.Icon,
			Color:        entry.Color,
			OverrideName: entry.OverrideName,
		})
	}
	var detected []schema.Profile
	if req.IncludeDetected && req.Platform != schema.PlatformWindows {
		out, err := c.run(ctx, "cat /etc/shells")
		if err != nil {
			return nil, fmt.Errorf("remote shell listing: %w", err)
		}
		detected = detect.ProfilesFromShellPaths(detect.ParseEtcShells([]byte(out)))
	}
	profiles := detect.Finalize(configured, detected, req)
	c.log.Debug("remote detection pass", "addr", c.cfg.Addr, "profiles", len(profiles))
	return profiles, nil
}

func (c *Client) run(ctx context.Context, command string) (string, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	session, err := conn.NewSession()
	if err != nil {
		return "", fmt.Errorf("ssh session: %w", err)
	}
	defer session.Close()
	out, err := session.Output(command)
	if err != nil {
		return "", fmt.Errorf("ssh command %q: %w", command, err)
	}
	return string(out), nil
}

func (c *Client) dial(ctx context.Context) (*ssh.Client, error) {
	var auth []ssh.AuthMethod
	if c.cfg.KeyPath != "" {
		pem, err := os.ReadFile(c.cfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("read private key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if c.cfg.Password != "" {
		auth = append(auth, ssh.Password(c.cfg.Password))
	}
	hostKey := ssh.InsecureIgnoreHostKey()
	if c.cfg.KnownHostsPath != "" {
		cb, err := knownhosts.New(c.cfg.KnownHostsPath)
		if err != nil {
			return nil, fmt.Errorf("load known hosts: %w", err)
		}
		hostKey = cb
	} else {
		c.log.Warn("remote host key verification disabled", "addr", c.cfg.Addr)
	}
	clientCfg := &ssh.ClientConfig{
		User:            c.cfg.User,
		Auth:            auth,
		HostKeyCallback: hostKey,
		Timeout:         c.cfg.Timeout,
	}
	dialer := net.Dialer{Timeout: c.cfg.Timeout}
	raw, err := dialer.DialContext(ctx, "tcp", c.cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.cfg.Addr, err)
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(raw, c.cfg.Addr, clientCfg)
	if err != nil {
		raw.Close()
		return nil, fmt.Errorf("ssh handshake with %s: %w", c.cfg.Addr, err)
	}
	return ssh.NewClient(sshConn, chans, reqs), nil
}
