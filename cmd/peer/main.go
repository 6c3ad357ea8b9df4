package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/PatricioDieck/tcp-peer/internal/config"
	"github.com/PatricioDieck/tcp-peer/internal/logging"
	"github.com/PatricioDieck/tcp-peer/internal/peer"
	"github.com/PatricioDieck/tcp-peer/internal/transport/tcp"
	"github.com/PatricioDieck/tcp-peer/internal/transport/ws"
)

type role int

const (
	roleListen role = iota
	roleConnect
)

var (
	flagConfig    string
	flagTransport string
	flagRaw       bool
	flagLogLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "peer",
	Short: "Symmetric two-peer newline chat over a single connection",
	Long: `peer connects exactly two endpoints over one TCP (or WebSocket) connection.
One side listens and accepts a single peer, the other dials; once connected
both sides read and write as equals. Messages are newline-delimited text.`,
}

var listenCmd = &cobra.Command{
	Use:   "listen <port>",
	Short: "Wait for one peer to connect, then chat",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, err := parsePort(args[0])
		if err != nil {
			return err
		}
		return run(cmd.Context(), roleListen, "", port)
	},
}

var connectCmd = &cobra.Command{
	Use:   "connect <host> <port>",
	Short: "Dial a waiting peer, then chat",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, err := parsePort(args[1])
		if err != nil {
			return err
		}
		return run(cmd.Context(), roleConnect, args[0], port)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to yaml config file")
	rootCmd.PersistentFlags().StringVar(&flagTransport, "transport", "", "connection transport: tcp or ws")
	rootCmd.PersistentFlags().BoolVar(&flagRaw, "raw", false, "keystroke mode: send every key immediately, no framing")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn or error")
	rootCmd.AddCommand(listenCmd, connectCmd)
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	return port, nil
}

// loadConfig applies flag overrides on top of the file (or the defaults).
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if flagConfig != "" {
		var err error
		if cfg, err = config.Load(flagConfig); err != nil {
			return cfg, err
		}
	}
	if flagTransport != "" {
		cfg.Transport = flagTransport
	}
	if flagRaw {
		cfg.RawInput = true
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	return cfg, cfg.Validate()
}

func establish(ctx context.Context, cfg config.Config, r role, host string, port int, log *zap.Logger) (peer.Conn, error) {
	switch cfg.Transport {
	case config.TransportWS:
		if r == roleListen {
			l, err := ws.Listen(fmt.Sprintf(":%d", port))
			if err != nil {
				return nil, err
			}
			log.Info("listening, waiting for one peer", zap.String("addr", l.Addr()), zap.String("transport", "ws"))
			return l.AcceptOne(ctx)
		}
		return ws.Dial(ctx, host, port)

	default:
		if r == roleListen {
			l, err := tcp.Listen(fmt.Sprintf(":%d", port), cfg.ReadBufferSize)
			if err != nil {
				return nil, err
			}
			log.Info("listening, waiting for one peer", zap.String("addr", l.Addr()), zap.String("transport", "tcp"))
			return l.AcceptOne(ctx)
		}
		return tcp.Dial(ctx, host, port, cfg.ReadBufferSize)
	}
}

func newSource(cfg config.Config) (peer.Source, error) {
	if cfg.RawInput {
		return peer.Keys(os.Stdin)
	}
	return peer.Lines(os.Stdin), nil
}

func run(ctx context.Context, r role, host string, port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck // stderr sync failure is uninteresting

	conn, err := establish(ctx, cfg, r, host, port, log)
	if err != nil {
		return err
	}
	log.Info("peer connected", zap.String("peer", conn.RemoteAddr()))

	source, err := newSource(cfg)
	if err != nil {
		conn.Close()
		return err
	}
	defer source.Close()

	if cfg.RawInput {
		fmt.Fprintln(os.Stderr, "type to send; press Ctrl-C to quit")
	} else {
		fmt.Fprintln(os.Stderr, "type a message and press Enter to send; Ctrl-D to quit")
	}

	sess := peer.NewSession(conn, source, peer.ConsoleSink{W: os.Stdout}, peer.Options{
		Raw:            cfg.RawInput,
		MaxMessageSize: cfg.MaxMessageSize,
		Logger:         log,
	})
	// The session closes the connection on every exit path.
	return sess.Run(ctx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
