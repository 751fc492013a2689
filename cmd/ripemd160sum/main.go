// Command ripemd160sum prints RIPEMD-160 digests of files.
//
//	ripemd160sum [-config file] [-encoding hex|base64] [-workers n]
//	             [-checkpoint-dir dir] [-stats] [file ...]
//
// With no file, or when file is -, standard input is read. With a
// checkpoint directory an interrupted run saves its progress and the next
// run with the same arguments resumes where it stopped, provided the file
// is unchanged. Input that cannot seek, such as a pipe, is never
// checkpointed. A file that cannot be read is reported and the others are
// still printed; the exit status is then 1.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ineyio/ripemd"
	"github.com/ineyio/ripemd/checkpoint"
	"github.com/ineyio/ripemd/meter"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ripemd160sum", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML config file")
	encoding := fs.String("encoding", "", "digest encoding: hex or base64")
	workers := fs.Int("workers", 0, "files hashed in parallel")
	checkpointDir := fs.String("checkpoint-dir", "", "directory for resumable checkpoints")
	stats := fs.Bool("stats", false, "print a summary table to stderr")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg := ripemd.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = ripemd.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "ripemd160sum: %v\n", err)
			return 2
		}
	}
	if *encoding != "" {
		cfg.Encoding = ripemd.Encoding(*encoding)
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *checkpointDir != "" {
		cfg.Checkpoint.Backend = ripemd.BackendFile
		cfg.Checkpoint.Dir = *checkpointDir
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "ripemd160sum: %v\n", err)
		return 2
	}

	logger := cfg.Log.NewLogger(stderr)

	store, err := checkpoint.FromConfig(cfg.Checkpoint)
	if err != nil {
		logger.Error("checkpoint store", "error", err)
		return 1
	}

	rec := &meter.Recorder{}
	opts := []ripemd.Option{
		ripemd.WithMeter(meter.Multi{meter.NewLogMeter(logger), rec}),
	}
	if store != nil {
		opts = append(opts, ripemd.WithCheckpointStore(store))
	}
	summer, err := ripemd.NewSummer(cfg, opts...)
	if err != nil {
		logger.Error("summer", "error", err)
		return 1
	}

	names := fs.Args()
	if len(names) == 0 {
		names = []string{"-"}
	}

	status := sumAll(ctx, summer, names, stdin, stdout, logger)

	if *stats {
		printStats(stderr, rec.Sums())
	}
	return status
}

// sumAll digests names and prints the results in argument order. Files
// are hashed in parallel; standard input is hashed on its own. A failed
// file is logged and does not stop the others.
func sumAll(ctx context.Context, s *ripemd.Summer, names []string, stdin io.Reader, stdout io.Writer, logger *slog.Logger) int {
	enc := s.Config().Encoding

	var files []string
	for _, name := range names {
		if name != "-" {
			files = append(files, name)
		}
	}

	type outcome struct {
		res ripemd.Result
		err error
	}
	outcomes := make(map[string]outcome, len(files))
	results, errs := s.SumEach(ctx, files)
	for i, name := range files {
		outcomes[name] = outcome{res: results[i], err: errs[i]}
	}

	status := 0
	for _, name := range names {
		var o outcome
		if name == "-" {
			o.res, o.err = s.Sum(ctx, "-", stdin)
		} else {
			o = outcomes[name]
		}
		if o.err != nil {
			logger.Error("sum", "name", name, "error", o.err)
			status = 1
			continue
		}
		fmt.Fprintln(stdout, o.res.String(enc))
	}

	if ctx.Err() != nil {
		return 130
	}
	return status
}
