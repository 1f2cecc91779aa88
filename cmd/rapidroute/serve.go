package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rapidroute/rapidroute-go/config"
	"github.com/rapidroute/rapidroute-go/lib/fabric"
	"github.com/rapidroute/rapidroute-go/oracle/remote"
	"github.com/rapidroute/rapidroute-go/route"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var serveOpts struct {
	fabric string
	listen string
	lock   []string
}

func addServeFlags(fs *pflag.FlagSet) {
	fs.StringVar(&serveOpts.fabric, "fabric", "", "fabric description to serve")
	fs.StringVar(&serveOpts.listen, "listen", "127.0.0.1:7070", "host:port or unix:///path.sock")
	fs.StringSliceVar(&serveOpts.lock, "lock", nil, "nodes to mark as permanently in use")
}

// listen opens a unix socket for "unix://" addresses and a tcp listener otherwise.
func listen(addr string) (net.Listener, error) {
	if sock := strings.TrimPrefix(addr, remote.UnixScheme); sock != addr {
		os.Remove(sock)
		return net.Listen("unix", sock)
	}
	return net.Listen("tcp", addr)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("fabric") || cfg.Fabric == "" {
		cfg.Fabric = serveOpts.fabric
	}
	if cfg.Fabric == "" {
		return errors.Wrap(route.ErrInvalidInput, "no fabric given")
	}

	fab, err := fabric.Load(cfg.Fabric)
	if err != nil {
		return err
	}
	for _, node := range serveOpts.lock {
		fab.Lock(route.NodeID(node))
	}

	ln, err := listen(serveOpts.listen)
	if err != nil {
		return errors.Wrapf(err, "listening on %q", serveOpts.listen)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := remote.NewServer(ctx, remote.ServerConfig{
		Listener: ln,
		Oracle:   fab,
	})
	srv.Wait()
	return nil
}
