package cmds

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"go.senan.xyz/flagconf"

	"go.ayling.dev/lrcside"
	"go.ayling.dev/lrcside/clientutil"
	"go.ayling.dev/lrcside/hook"
	"go.ayling.dev/lrcside/lrclib"
	"go.ayling.dev/lrcside/notifications"
)

func Logging() (exit func()) {
	var logLevel slog.LevelVar
	flag.TextVar(&logLevel, "log-level", &logLevel, "set the logging level")

	h := &slogErrorHandler{
		Handler: slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &logLevel}),
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(slog.LevelError)

	return func() {
		if h.hadSlogError.Load() {
			os.Exit(1)
		}
		os.Exit(0)
	}
}

type slogErrorHandler struct {
	slog.Handler
	hadSlogError atomic.Bool
}

func (n *slogErrorHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level == slog.LevelError {
		n.hadSlogError.Store(true)
	}
	return n.Handler.Handle(ctx, r)
}

func WrapClient() {
	chain := clientutil.Chain(
		clientutil.WithLogging(slog.Default()),
		clientutil.WithUserAgent(fmt.Sprintf(`%s/%s`, lrcside.Name, lrcside.Version)),
	)

	http.DefaultTransport = chain(http.DefaultTransport)
}

func FlagParse() {
	userConfig, _ := os.UserConfigDir()
	defaultConfigPath := filepath.Join(userConfig, lrcside.Name, "config")
	configPath := flag.String("config-path", defaultConfigPath, "path config file")

	printVersion := flag.Bool("version", false, "print the version")
	printConfig := flag.Bool("config", false, "print the parsed config")

	flag.Parse()
	flagconf.ReadEnvPrefix = func(_ *flag.FlagSet) string { return lrcside.Name }
	flagconf.ParseEnv()
	flagconf.ParseConfig(*configPath)

	if *printVersion {
		fmt.Printf("%s %s\n", flag.CommandLine.Name(), lrcside.Version)
		os.Exit(0)
	}
	if *printConfig {
		flag.VisitAll(func(f *flag.Flag) {
			fmt.Printf("%-16s %s\n", f.Name, f.Value)
		})
		os.Exit(0)
	}
}

func Lrclib() *lrclib.Client {
	var c lrclib.Client
	flag.StringVar(&c.BaseURL, "lrclib-base-url", lrclib.DefaultBaseURL, "lrclib base url")
	flag.StringVar(&c.UserAgent, "lrclib-user-agent", fmt.Sprintf(`%s/%s ( https://go.ayling.dev/lrcside )`, lrcside.Name, lrcside.Version), "lrclib user agent")
	flag.DurationVar(&c.RateLimit, "lrclib-rate-limit", 0, "lrclib rate limit duration")
	flag.DurationVar(&c.Timeout, "lrclib-timeout", 15*time.Second, "lrclib request timeout")
	flag.BoolVar(&c.InsecureTLS, "lrclib-insecure", true, "skip TLS certificate verification for lrclib requests")
	return &c
}

// WarnInsecure belongs right after FlagParse, it flags the compatibility
// default so operators know their lookups aren't verified.
func WarnInsecure(c *lrclib.Client) {
	if c.InsecureTLS {
		slog.Warn("TLS certificate verification is off for lrclib, pass -lrclib-insecure=false to turn it on")
	}
}

func Notifications() *notifications.Notifications {
	var n notifications.Notifications
	flag.Var(&notificationsParser{&n}, "notification-uri", "add a shoutrrr notification uri for an event")
	return &n
}

func OnWrite() *[]*hook.Hook {
	var hooks []*hook.Hook
	flag.Func("on-write", "add a command to run after each sidecar write, a <path> argument becomes the sidecar path", func(value string) error {
		h, err := hook.New(value)
		if err != nil {
			return err
		}
		hooks = append(hooks, h)
		return nil
	})
	return &hooks
}

var _ flag.Value = (*notificationsParser)(nil)

type notificationsParser struct{ *notifications.Notifications }

func (n *notificationsParser) Set(value string) error {
	eventsRaw, uri, ok := strings.Cut(value, " ")
	if !ok {
		return fmt.Errorf("invalid notification uri format. expected eg \"ev1,ev2 uri\"")
	}
	var lineErrs []error
	for _, ev := range strings.Split(eventsRaw, ",") {
		ev, uri = strings.TrimSpace(ev), strings.TrimSpace(uri)
		err := n.AddURI(notifications.Event(ev), uri)
		lineErrs = append(lineErrs, err)
	}
	return errors.Join(lineErrs...)
}

func (n notificationsParser) String() string {
	if n.Notifications == nil {
		return ""
	}
	var parts []string
	n.Notifications.IterMappings(func(e notifications.Event, uri string) {
		url, _ := url.Parse(uri)
		parts = append(parts, fmt.Sprintf("%s: %s://%s/...", e, url.Scheme, url.Host))
	})
	return strings.Join(parts, ", ")
}
