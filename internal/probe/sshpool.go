package probe

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"

	"golang.org/x/crypto/ssh"
	"golang.org/x/sync/singleflight"
)

// clientPool hands out one *ssh.Client per host. Concurrent tasks that
// target the same host share a single dial via singleflight; an established
// client is reused for the rest of the run.
type clientPool struct {
	cfg  *ssh.ClientConfig
	port int

	group singleflight.Group

	mu      sync.Mutex
	clients map[string]*ssh.Client
}

func newClientPool(cfg *ssh.ClientConfig, port int) *clientPool {
	return &clientPool{
		cfg:     cfg,
		port:    port,
		clients: make(map[string]*ssh.Client),
	}
}

func (p *clientPool) get(host string) (*ssh.Client, error) {
	p.mu.Lock()
	if c, ok := p.clients[host]; ok {
		p.mu.Unlock()
		return c, nil
	}
	p.mu.Unlock()

	v, err, _ := p.group.Do(host, func() (any, error) {
		addr := net.JoinHostPort(host, strconv.Itoa(p.port))
		client, err := ssh.Dial("tcp", addr, p.cfg)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.clients[host] = client
		p.mu.Unlock()
		return client, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ssh.Client), nil
}

func (p *clientPool) closeAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for host, c := range p.clients {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", host, err))
		}
		delete(p.clients, host)
	}
	return errors.Join(errs...)
}
