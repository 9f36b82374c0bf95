package cmd

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/scour-dev/scour/pkg/config"
)

// TailCommand creates the tail command. It follows the serve daemon's event
// socket and reprints search event frames as NDJSON on stdout, so shell
// pipelines can watch a running daemon:
//
//	scour tail | jq -r 'select(.type=="error") | .message'
//
// Heartbeat frames are dropped unless --all is given. Connection attempts
// are retried with exponential backoff until the context is cancelled or
// --no-retry turns the first failure into an exit.
func TailCommand() *cli.Command {
	return &cli.Command{
		Name:  "tail",
		Usage: "Follow search events from a running serve daemon",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "socket",
				Usage: "Event socket path (defaults to events.socket from config)",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Include heartbeat frames",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Indent each frame for manual reading",
			},
			&cli.BoolFlag{
				Name:  "no-retry",
				Usage: "Exit on the first connection error instead of reconnecting",
			},
			&cli.DurationFlag{
				Name:  "initial-backoff",
				Usage: "First reconnect delay",
				Value: time.Second,
			},
			&cli.DurationFlag{
				Name:  "max-backoff",
				Usage: "Reconnect delay ceiling",
				Value: 30 * time.Second,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			socket := c.String("socket")
			if socket == "" {
				cfg, err := config.LoadConfig(c.String("config"))
				if err != nil {
					return fmt.Errorf("loading config: %w", err)
				}
				socket = cfg.Events.Socket
			}
			if socket == "" {
				return errors.New("no event socket configured; pass --socket or set events.socket")
			}

			tl := &tailer{
				socket:  socket,
				all:     c.Bool("all"),
				pretty:  c.Bool("pretty"),
				retry:   !c.Bool("no-retry"),
				backoff: c.Duration("initial-backoff"),
				maxWait: c.Duration("max-backoff"),
				out:     os.Stdout,
				status:  os.Stderr,
			}
			return tl.run(ctx)
		},
	}
}

// tailer follows one event socket and reprints its frames on out. Status
// messages go to status so stdout stays pure NDJSON for pipelines.
type tailer struct {
	socket  string
	all     bool
	pretty  bool
	retry   bool
	backoff time.Duration
	maxWait time.Duration

	out    io.Writer
	status io.Writer
}

func (t *tailer) run(ctx context.Context) error {
	if t.backoff <= 0 {
		t.backoff = time.Second
	}
	if t.maxWait < t.backoff {
		t.maxWait = 30 * time.Second
	}

	wait := t.backoff
	for {
		conn, err := net.Dial("unix", t.socket)
		if err != nil {
			if !t.retry {
				return fmt.Errorf("connecting to %s: %w", t.socket, err)
			}
			fmt.Fprintf(t.status, "tail: %v, retrying in %s\n", err, wait)
			if err := t.sleep(ctx, wait); err != nil {
				return err
			}
			wait *= 2
			if wait > t.maxWait {
				wait = t.maxWait
			}
			continue
		}

		fmt.Fprintf(t.status, "tail: following %s\n", t.socket)
		wait = t.backoff

		err = t.follow(ctx, conn)
		switch {
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return err
		case !t.retry:
			return err
		case err != nil:
			fmt.Fprintf(t.status, "tail: %v, reconnecting\n", err)
		default:
			fmt.Fprintln(t.status, "tail: socket closed, reconnecting")
		}
		if err := t.sleep(ctx, 250*time.Millisecond); err != nil {
			return err
		}
	}
}

func (t *tailer) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// follow reads frames off one connection until it closes or the context
// ends. The scanner buffer allows frames up to 512KB.
func (t *tailer) follow(ctx context.Context, conn net.Conn) error {
	defer func() { _ = conn.Close() }()

	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 64*1024), 512*1024)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		t.printFrame(line)
	}
	return sc.Err()
}

// printFrame filters and reprints one frame. Heartbeats and untyped frames
// only pass through when all frames were requested; malformed lines are
// treated the same way.
func (t *tailer) printFrame(line []byte) {
	var frame struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(line, &frame); err != nil {
		if t.all {
			fmt.Fprintf(t.out, "%s\n", line)
		}
		return
	}
	if !t.all && (frame.Type == "" || frame.Type == "heartbeat") {
		return
	}

	if t.pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, line, "", "  "); err == nil {
			buf.WriteByte('\n')
			_, _ = t.out.Write(buf.Bytes())
			return
		}
	}
	fmt.Fprintf(t.out, "%s\n", line)
}
