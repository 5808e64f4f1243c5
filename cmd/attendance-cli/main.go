package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-client/pkg/config"
	"github.com/noah-isme/attendance-client/pkg/logger"
	"github.com/noah-isme/attendance-client/pkg/session"
)

const usage = `Usage: attendance-cli [global flags] <command> [flags]

Commands:
  login      log in with Telegram Mini App init data
  logout     forget the stored session
  whoami     show the logged-in user
  stats      admin dashboard counters
  students   list students (filters: --group --status --payment --search)
  student    show one student with attendance summary, or
             student create|update|delete|assign to manage students
  groups     list groups with teacher names, or show one with --id
  group      group create|update|delete
  teachers   list teachers, or show one with --id
  teacher    teacher create|update|delete
  me         me stats|group for the logged-in student
  teach      teach groups|students|check|submit for the logged-in teacher
  history    teacher attendance history, or --mine for a student's own
  export     download a student's attendance as CSV or PDF

Global flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("attendance-cli", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetInterspersed(false)
	fs.String("api-origin", "", "backend origin, e.g. https://attendance.example.com")
	fs.String("session-backend", "", "session store: file, memory, redis, postgres or none")
	fs.String("session-file", "", "session file path for the file backend")
	fs.String("log-level", "", "log level")
	fs.String("log-file", "", "write logs to this rotated file")
	jsonOut := fs.Bool("json", false, "print JSON instead of tables")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	v, err := config.LoadViper()
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}
	for key, flag := range map[string]string{
		"API_ORIGIN":      "api-origin",
		"SESSION_BACKEND": "session-backend",
		"SESSION_FILE":    "session-file",
		"LOG_LEVEL":       "log-level",
		"LOG_FILE":        "log-file",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			fmt.Fprintf(stderr, "bind flag %s: %v\n", flag, err)
			return 1
		}
	}
	cfg := config.FromViper(v)

	logr := zap.NewNop()
	if cfg.Log.File != "" {
		if logr, err = logger.New(cfg); err != nil {
			fmt.Fprintf(stderr, "init logger: %v\n", err)
			return 1
		}
	}
	defer logr.Sync() //nolint:errcheck

	store, closeStore, err := session.OpenStore(ctx, cfg)
	if err != nil {
		logr.Warn("session store unavailable, continuing in memory", zap.Error(err))
		fmt.Fprintf(stderr, "warning: %v; session will not persist\n", err)
		store = nil
	}
	defer closeStore() //nolint:errcheck

	sess := session.New(store, session.WithLogger(logr))
	a, err := newApp(cfg, sess, logr, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "init client: %v\n", err)
		return 1
	}
	a.json = *jsonOut

	if err := a.dispatch(ctx, fs.Arg(0), fs.Args()[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fs.Usage()
			return 2
		}
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
