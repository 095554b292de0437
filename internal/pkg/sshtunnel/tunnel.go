// Package sshtunnel provides a local TCP forward through an SSH connection,
// used to reach the legacy finance database that is only routable from the
// SSH host. One tunnel serves one call: callers Open, use the local address,
// and must Close on every path.
package sshtunnel

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/nazrin/tadikahub/internal/pkg/apperrors"
	"github.com/nazrin/tadikahub/internal/pkg/logger"
)

const (
	connectTimeout = 15 * time.Second
	readyTimeout   = 20 * time.Second
	readyInterval  = 250 * time.Millisecond
)

// Config holds the SSH endpoint and the target the tunnel forwards to.
type Config struct {
	SSHHost    string
	SSHPort    int
	SSHUser    string
	KeyPath    string
	Passphrase string
	TargetHost string
	TargetPort int
}

// Tunnel is a live local port-forward. The zero value is not usable; use Open.
type Tunnel struct {
	localAddr string
	client    *ssh.Client
	listener  net.Listener
	closeOnce sync.Once
}

// loadSigner reads and parses the private key, failing fast on unsupported
// key configurations before any network I/O is attempted.
func loadSigner(keyPath, passphrase string) (ssh.Signer, error) {
	if strings.HasSuffix(strings.ToLower(keyPath), ".ppk") {
		return nil, fmt.Errorf("%w: %s is a PuTTY key, convert it to OpenSSH format", apperrors.ErrUnsupportedKeyFormat, keyPath)
	}
	if passphrase != "" {
		return nil, fmt.Errorf("%w: passphrase-protected keys are not supported", apperrors.ErrUnsupportedKeyFormat)
	}

	keyData, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key %s: %w", keyPath, err)
	}
	if strings.HasPrefix(strings.TrimSpace(string(keyData)), "PuTTY-User-Key-File") {
		return nil, fmt.Errorf("%w: %s is a PuTTY key, convert it to OpenSSH format", apperrors.ErrUnsupportedKeyFormat, keyPath)
	}

	signer, err := ssh.ParsePrivateKey(keyData)
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if errors.As(err, &missing) {
			return nil, fmt.Errorf("%w: key %s requires a passphrase", apperrors.ErrUnsupportedKeyFormat, keyPath)
		}
		return nil, fmt.Errorf("failed to parse private key %s: %w", keyPath, err)
	}
	return signer, nil
}

// Open establishes the SSH connection and starts forwarding a local port to
// cfg.TargetHost:cfg.TargetPort. On any failure everything already opened is
// torn down before returning.
func Open(cfg Config) (*Tunnel, error) {
	signer, err := loadSigner(cfg.KeyPath, cfg.Passphrase)
	if err != nil {
		return nil, err
	}

	clientCfg := &ssh.ClientConfig{
		User:            cfg.SSHUser,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         connectTimeout,
	}

	sshAddr := fmt.Sprintf("%s:%d", cfg.SSHHost, cfg.SSHPort)
	client, err := ssh.Dial("tcp", sshAddr, clientCfg)
	if err != nil {
		logger.Warn().Err(err).Str("host", sshAddr).Msg("SSH connection failed")
		return nil, fmt.Errorf("ssh connection to %s failed: %w", sshAddr, err)
	}

	// Bind an ephemeral local port for the forward. Binding directly instead
	// of probe-and-release removes the race against another process grabbing
	// the port between allocation and use.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to allocate local forward port: %w", err)
	}

	t := &Tunnel{
		localAddr: listener.Addr().String(),
		client:    client,
		listener:  listener,
	}

	targetAddr := fmt.Sprintf("%s:%d", cfg.TargetHost, cfg.TargetPort)
	go t.serve(targetAddr)

	if err := t.waitReady(); err != nil {
		t.Close()
		return nil, err
	}

	logger.Debug().Str("local", t.localAddr).Str("target", targetAddr).Msg("SSH tunnel ready")
	return t, nil
}

// serve accepts local connections and pipes each through the SSH client to
// the target until the listener is closed.
func (t *Tunnel) serve(targetAddr string) {
	for {
		local, err := t.listener.Accept()
		if err != nil {
			return
		}

		go func(local net.Conn) {
			defer local.Close()

			remote, err := t.client.Dial("tcp", targetAddr)
			if err != nil {
				logger.Warn().Err(err).Str("target", targetAddr).Msg("Tunnel forward dial failed")
				return
			}
			defer remote.Close()

			done := make(chan struct{}, 2)
			go func() {
				_, _ = io.Copy(remote, local)
				done <- struct{}{}
			}()
			go func() {
				_, _ = io.Copy(local, remote)
				done <- struct{}{}
			}()
			<-done
		}(local)
	}
}

// waitReady polls the local port with short-interval connect attempts until
// it accepts or the readiness timeout elapses.
func (t *Tunnel) waitReady() error {
	deadline := time.Now().Add(readyTimeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", t.localAddr, readyInterval)
		if err == nil {
			conn.Close()
			return nil
		}
		time.Sleep(readyInterval)
	}
	return apperrors.ErrTunnelNotReady
}

// LocalAddr returns the host:port the forward listens on.
func (t *Tunnel) LocalAddr() string {
	return t.localAddr
}

// Close tears down the listener and the SSH connection. Safe to call more
// than once and on every exit path.
func (t *Tunnel) Close() {
	t.closeOnce.Do(func() {
		if t.listener != nil {
			_ = t.listener.Close()
		}
		if t.client != nil {
			_ = t.client.Close()
		}
	})
}
