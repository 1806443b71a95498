package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"

	"github.com/gin-gonic/gin"

	"caretaker/internal/config"
	"caretaker/internal/exitcode"
	"caretaker/internal/mockstore"
	"caretaker/internal/service"
)

// DefaultMockAddr is where mockstore listens without --addr.
const DefaultMockAddr = "127.0.0.1:8080"

func init() {
	Register(&MockstoreCmd{})
}

// MockstoreCmd implements the mockstore command: an in-memory task store
// speaking the same REST contract as the hosted one.
type MockstoreCmd struct {
	addr string

	// ready, if set, is called with the bound address (for testing).
	ready func(net.Addr)
}

// SetAddr sets the listen address (for testing).
func (c *MockstoreCmd) SetAddr(addr string) {
	c.addr = addr
}

// SetReady installs a callback receiving the bound address (for testing).
func (c *MockstoreCmd) SetReady(ready func(net.Addr)) {
	c.ready = ready
}

func (c *MockstoreCmd) Name() string       { return "mockstore" }
func (c *MockstoreCmd) Aliases() []string  { return nil }
func (c *MockstoreCmd) Synopsis() string   { return "Serve an in-memory task store" }
func (c *MockstoreCmd) Usage() string      { return "caretaker mockstore [--addr <host:port>]" }
func (c *MockstoreCmd) NeedsBackend() bool { return false }

func (c *MockstoreCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.addr, "addr", DefaultMockAddr, "")
}

func (c *MockstoreCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	addr := c.addr
	if addr == "" {
		addr = DefaultMockAddr
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := mockstore.NewRouter(mockstore.New(), mockstore.DefaultPrefix, cfg.Log)

	ready := func(a net.Addr) {
		if !cfg.Quiet {
			fmt.Fprintf(out, "serving tasks at http://%s%s\n", a, mockstore.DefaultPrefix)
		}
		if c.ready != nil {
			c.ready(a)
		}
	}
	if err := mockstore.Serve(ctx, addr, router, cfg.Log, ready); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}
