package docker

import (
	"context"
	"fmt"
	"strconv"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
)

const anvilPort = nat.Port("8545/tcp")

type (
	ForkOptions struct {
		Image   string
		ForkURL string
		ChainID int64
		// HostPort is bound on 127.0.0.1.
		HostPort int
	}

	// Fork is a running anvil container forking a live network.
	Fork struct {
		ID     string
		RPCURL string
	}
)

// StartFork runs anvil in a container, forking ForkURL, and returns once the container is started.
// The caller must call StopFork; the RPC may take a few seconds to answer.
func (c *Client) StartFork(ctx context.Context, opts ForkOptions) (Fork, error) {
	if err := c.EnsureImage(ctx, opts.Image); err != nil {
		return Fork{}, err
	}

	config := &container.Config{
		Image:      opts.Image,
		Entrypoint: []string{"anvil"},
		Cmd: []string{
			"--fork-url", opts.ForkURL,
			"--chain-id", strconv.FormatInt(opts.ChainID, 10),
			"--host", "0.0.0.0",
			"--port", anvilPort.Port(),
		},
		ExposedPorts: nat.PortSet{anvilPort: struct{}{}},
	}

	hostConfig := &container.HostConfig{
		PortBindings: nat.PortMap{
			anvilPort: []nat.PortBinding{{HostIP: "127.0.0.1", HostPort: strconv.Itoa(opts.HostPort)}},
		},
	}

	resp, err := c.cli.ContainerCreate(ctx, config, hostConfig, nil, nil, "")
	if err != nil {
		return Fork{}, fmt.Errorf("failed to create fork container: %w", err)
	}

	if err := c.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		_ = c.cli.ContainerRemove(context.WithoutCancel(ctx), resp.ID, container.RemoveOptions{Force: true})
		return Fork{}, fmt.Errorf("failed to start fork container: %w", err)
	}

	fork := Fork{ID: resp.ID, RPCURL: fmt.Sprintf("http://127.0.0.1:%d", opts.HostPort)}
	c.logger.
		With("container_id", fork.ID[:12]).
		With("rpc_url", fork.RPCURL).
		With("chain_id", opts.ChainID).
		Info("fork started")

	return fork, nil
}

// StopFork force-removes the fork container.
func (c *Client) StopFork(ctx context.Context, fork Fork) error {
	if err := c.cli.ContainerRemove(ctx, fork.ID, container.RemoveOptions{Force: true}); err != nil {
		return fmt.Errorf("failed to remove fork container: %w", err)
	}

	c.logger.With("container_id", fork.ID[:12]).Info("fork removed")
	return nil
}
