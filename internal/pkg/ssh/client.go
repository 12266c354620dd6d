package ssh

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
)

type Config struct {
	Host       string
	Port       int
	Username   string
	PrivateKey string
	Passphrase string
	Timeout    time.Duration
}

// Client wraps a single SSH connection to a node. It is safe to run
// commands from multiple goroutines; each run uses its own session.
type Client struct {
	config Config
	conn   *ssh.Client
}

func NewClient(config Config) *Client {
	return &Client{config: config}
}

// Connect dials the node and completes the SSH handshake. The config
// timeout bounds both phases: ClientConfig.Timeout alone only covers the
// TCP dial, so the version exchange and key exchange run under an explicit
// connection deadline, tightened further by any deadline on ctx.
func (c *Client) Connect(ctx context.Context) error {
	signer, err := c.parsePrivateKey(c.config.PrivateKey, c.config.Passphrase)
	if err != nil {
		return fmt.Errorf("parse private key: %w", err)
	}

	timeout := c.config.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	config := &ssh.ClientConfig{
		User:            c.config.Username,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), // cluster nodes are reimaged and rotate host keys
	}

	addr := fmt.Sprintf("%s:%d", c.config.Host, c.config.Port)
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("ssh dial %s: %w", addr, err)
	}

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetDeadline(deadline)

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		return fmt.Errorf("ssh handshake %s: %w", addr, err)
	}
	conn.SetDeadline(time.Time{})

	c.conn = ssh.NewClient(sshConn, chans, reqs)
	return nil
}

func (c *Client) parsePrivateKey(privateKey, passphrase string) (ssh.Signer, error) {
	if passphrase != "" {
		return ssh.ParsePrivateKeyWithPassphrase([]byte(privateKey), []byte(passphrase))
	}
	return ssh.ParsePrivateKey([]byte(privateKey))
}

// Run executes a command on the remote host, bounded by ctx. Stdout and
// stderr are captured separately as chunks arrive. The exit code is -1 when
// the command could not run at all or the deadline expired.
func (c *Client) Run(ctx context.Context, cmd string) (stdout, stderr string, exitCode int, err error) {
	if c.conn == nil {
		return "", "", -1, fmt.Errorf("ssh connection not established")
	}

	session, err := c.conn.NewSession()
	if err != nil {
		return "", "", -1, fmt.Errorf("create ssh session: %w", err)
	}
	defer session.Close()

	var stdoutBuf, stderrBuf strings.Builder
	session.Stdout = &stdoutBuf
	session.Stderr = &stderrBuf

	done := make(chan error, 1)
	go func() { done <- session.Run(cmd) }()

	select {
	case <-ctx.Done():
		// Closing the session tears down the remote command and
		// unblocks the run goroutine. Wait for it so the stream
		// copiers are finished before the buffers are read.
		session.Close()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			return "", "", -1, ctx.Err()
		}
		return stdoutBuf.String(), stderrBuf.String(), -1, ctx.Err()
	case err = <-done:
	}

	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if err != nil {
		if exitErr, ok := err.(*ssh.ExitError); ok {
			// Command ran, just returned non-zero.
			return stdout, stderr, exitErr.ExitStatus(), nil
		}
		return stdout, stderr, -1, fmt.Errorf("run command: %w", err)
	}

	return stdout, stderr, 0, nil
}

// Wait blocks until the underlying connection terminates. The transport
// watchdog uses this to detect mid-session drops.
func (c *Client) Wait() error {
	if c.conn == nil {
		return fmt.Errorf("ssh connection not established")
	}
	return c.conn.Wait()
}

func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
