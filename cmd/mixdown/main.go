// Command mixdown renders a JSON mix session to a WAV file.
//
// Usage:
//
//	mixdown [flags] -session mix.json -out mix.wav
//
// Track files are resolved relative to the session file. After writing the
// mix, mixdown prints the peak, RMS and integrated loudness of the result.
//
// Examples:
//
//	mixdown -session song.json -out song.wav
//	mixdown -session song.json -out song.wav -bits 24 -normalize
//	mixdown -session song.json -out song.wav -backend generic -v
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-mix/dsp/buffer"
	"github.com/cwbudde/algo-mix/dsp/core"
	"github.com/cwbudde/algo-mix/internal/audiofile"
	"github.com/cwbudde/algo-mix/measure/levels"
	"github.com/cwbudde/algo-mix/mixer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	session   string
	out       string
	bits      int
	normalize bool
	backend   string
	verbose   bool
	logFormat string
	quiet     bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options

	fs := flag.NewFlagSet("mixdown", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.session, "session", "", "mix session JSON file (required)")
	fs.StringVar(&o.out, "out", "", "output WAV file (required)")
	fs.IntVar(&o.bits, "bits", 16, "output bit depth: 16, 24 or 32")
	fs.BoolVar(&o.normalize, "normalize", false, "normalize the output peak to 0.95")
	fs.StringVar(&o.backend, "backend", "auto", "kernel backend: auto or generic")
	fs.BoolVar(&o.verbose, "v", false, "log per-track processing")
	fs.StringVar(&o.logFormat, "log-format", "text", "log format: text or json")
	fs.BoolVar(&o.quiet, "q", false, "do not print the level report")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: mixdown [flags] -session mix.json -out mix.wav\n\n")
		fmt.Fprintf(stderr, "Renders a mix session to a WAV file.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  mixdown -session song.json -out song.wav\n")
		fmt.Fprintf(stderr, "  mixdown -session song.json -out song.wav -bits 24 -normalize\n")
	}

	if err := fs.Parse(args); err != nil {
		return o, err
	}

	if o.session == "" || o.out == "" {
		fs.Usage()
		return o, errors.New("-session and -out are required")
	}

	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	return o, nil
}

func newLogger(o options, w io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(logrus.InfoLevel)

	if o.verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	switch o.logFormat {
	case "text":
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q (want text or json)", o.logFormat)
	}

	return log, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}

	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	log, err := newLogger(o, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	mix, err := render(ctx, o, log)
	if err != nil {
		log.WithError(err).Error("Mixdown failed")
		return 1
	}

	if o.quiet {
		return 0
	}

	report, err := levels.Measure(mix)
	if err != nil {
		log.WithError(err).Error("Measuring output failed")
		return 1
	}

	if err := printReport(stdout, o.out, report); err != nil {
		fmt.Fprintf(stderr, "error: failed to write report: %v\n", err)
		return 1
	}

	return 0
}

func render(ctx context.Context, o options, log logrus.FieldLogger) (buffer.Audio, error) {
	backend, err := core.ParseBackend(o.backend)
	if err != nil {
		return buffer.Audio{}, err
	}

	f, err := os.Open(o.session)
	if err != nil {
		return buffer.Audio{}, err
	}

	session, err := mixer.ParseSession(f)
	f.Close()

	if err != nil {
		return buffer.Audio{}, err
	}

	dir := filepath.Dir(o.session)
	tracks, master, err := session.Resolve(func(file string) (*buffer.Audio, error) {
		if !filepath.IsAbs(file) {
			file = filepath.Join(dir, file)
		}

		log.WithField("file", file).Debug("Loading track")

		return audiofile.Load(file, audiofile.DefaultLoadOptions())
	})
	if err != nil {
		return buffer.Audio{}, err
	}

	slots := mixer.Layout4
	if len(tracks) > mixer.Layout4 {
		slots = mixer.Layout8
	}

	engine, err := mixer.NewEngine(
		mixer.WithSlots(slots),
		mixer.WithBackend(backend),
		mixer.WithLogger(log),
	)
	if err != nil {
		return buffer.Audio{}, err
	}

	mix, err := engine.MixContext(ctx, tracks, master)
	if err != nil {
		return buffer.Audio{}, err
	}

	if err := audiofile.Save(o.out, mix, audiofile.SaveOptions{BitDepth: o.bits, Normalize: o.normalize}); err != nil {
		return buffer.Audio{}, err
	}

	log.WithFields(logrus.Fields{
		"out":         o.out,
		"bits":        o.bits,
		"sample_rate": mix.SampleRate,
		"frames":      mix.Len(),
	}).Info("Mix written")

	return mix, nil
}

func printReport(w io.Writer, name string, r levels.Report) error {
	if _, err := fmt.Fprintf(w, "%s: %d Hz, %d frames, %.2f s\n", name, r.SampleRate, r.Length,
		float64(r.Length)/float64(r.SampleRate)); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Channel\tPeak [dBFS]\tRMS [dBFS]\tCrest [dB]\tDC\n")
	fmt.Fprintf(tw, "-------\t-----------\t----------\t----------\t--\n")

	item := r.Items[0]
	for c, ch := range item.Channels {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%.4f\n", c, formatDB(ch.PeakDB), formatDB(ch.RMSDB), ch.CrestDB, ch.DC)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Integrated loudness: %s LUFS\n", formatDB(item.Loudness))

	return err
}

func formatDB(v float64) string {
	if math.IsInf(v, -1) {
		return "-inf"
	}

	return fmt.Sprintf("%.2f", v)
}
