package ports

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"

	"github.com/pranshuparmar/ports/pkg/model"
)

// ContainerTTL bounds how long the host port to container map is reused.
const ContainerTTL = 3 * time.Second

const dockerProxy = "docker-proxy"

// ContainerLister returns host port to container name mappings.
type ContainerLister interface {
	PortMappings(ctx context.Context) (map[uint16]string, error)
}

type dockerLister struct {
	once sync.Once
	cli  *client.Client
	err  error
}

// NewDockerLister talks to the daemon configured by the DOCKER_* environment.
func NewDockerLister() ContainerLister {
	return &dockerLister{}
}

func (d *dockerLister) PortMappings(ctx context.Context) (map[uint16]string, error) {
	d.once.Do(func() {
		d.cli, d.err = client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	})
	if d.err != nil {
		return nil, d.err
	}
	containers, err := d.cli.ContainerList(ctx, container.ListOptions{})
	if err != nil {
		return nil, err
	}

	mappings := make(map[uint16]string)
	for _, c := range containers {
		if len(c.Names) == 0 {
			continue
		}
		name := strings.TrimPrefix(c.Names[0], "/")
		for _, p := range c.Ports {
			if p.PublicPort == 0 || (p.Type != "tcp" && p.Type != "udp") {
				continue
			}
			mappings[p.PublicPort] = name
		}
	}
	return mappings, nil
}

// Containers enriches docker-proxy records with the container that owns the
// forwarded port.
type Containers struct {
	lister  ContainerLister
	cache   *ttlcache.Cache[string, map[uint16]string]
	timeout time.Duration
}

const mappingsKey = "mappings"

func NewContainers(l ContainerLister) *Containers {
	return &Containers{
		lister:  l,
		cache:   ttlcache.New[string, map[uint16]string](ttlcache.WithTTL[string, map[uint16]string](ContainerTTL)),
		timeout: 2 * time.Second,
	}
}

func (c *Containers) mappings() map[uint16]string {
	if item := c.cache.Get(mappingsKey); item != nil {
		return item.Value()
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	m, err := c.lister.PortMappings(ctx)
	if err != nil {
		zap.S().Debugw("container lookup failed", "error", err)
		m = map[uint16]string{}
	}
	c.cache.Set(mappingsKey, m, ttlcache.DefaultTTL)
	return m
}

// Enrich sets Container on docker-proxy records. The daemon is only asked
// when at least one such record is present.
func (c *Containers) Enrich(records []model.PortRecord) {
	if c == nil {
		return
	}
	proxied := false
	for _, r := range records {
		if strings.Contains(r.ProcessName, dockerProxy) {
			proxied = true
			break
		}
	}
	if !proxied {
		return
	}
	m := c.mappings()
	for i := range records {
		if !strings.Contains(records[i].ProcessName, dockerProxy) {
			continue
		}
		if name, ok := m[records[i].Port]; ok {
			records[i].Container = name
		}
	}
}
