package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gordonklaus/ambient"
	"github.com/gordonklaus/ambient/audio"
	"github.com/gordonklaus/ambient/config"
	"github.com/gordonklaus/ambient/render"
	"github.com/gordonklaus/ambient/server"
	"github.com/gordonklaus/ambient/stream"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// Frames buffered between the render path and the broadcaster.
const frameQueue = 50

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ambient",
	Short: "Generate ambient soundscapes from a scene blueprint",
	Long: `ambient turns a JSON scene blueprint into an endless, seeded
procedural soundscape: a pad, a noise texture and an optional lead,
run through a filter, delay, reverb and limiter.

Blueprints are read from a file argument or, with "-", from stdin.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

var playCmd = &cobra.Command{
	Use:   "play <blueprint.json>",
	Short: "Play a blueprint on the audio device until interrupted",
	Long: `Play a blueprint on the default output device.  Ctrl-C fades
out and exits.

Examples:
  ambient play scene.json
  ambient play --output oto --seed 42 scene.json`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the control API and a WebRTC stream",
	Long: `Start the HTTP control API.  POST a blueprint to /api/blueprint,
then POST /api/start.  Browsers can listen by posting an SDP offer to
/offer.

Example:
  ambient serve --port 8080 --output null`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var renderCmd = &cobra.Command{
	Use:   "render <blueprint.json>",
	Short: "Bounce a blueprint to a WAV file",
	Long: `Render a blueprint offline, faster than real time, to 16-bit stereo
WAV.  The last half second fades out.

Example:
  ambient render --seconds 60 -o scene.wav scene.json`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

var validateCmd = &cobra.Command{
	Use:   "validate <blueprint.json>",
	Short: "Check a blueprint and print the settings it maps to",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

var (
	cfg config.Config

	output       string
	sampleRate   float64
	bufferSize   int
	analyserSize int
	seed         int64
	logLevel     string
	port         int
	seconds      float64
	outPath      string
)

func init() {
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(validateCmd)

	// Global flags override the environment
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&output, "output", "portaudio", "Output device ("+strings.Join(audio.Outputs, ", ")+")")
	pf.Float64Var(&sampleRate, "sample-rate", 48000, "Sample rate in Hz")
	pf.IntVar(&bufferSize, "buffer-size", 1024, "Frames per device callback")
	pf.IntVar(&analyserSize, "analyser-size", ambient.DefaultAnalyserSize, "Analysis window in samples (power of two)")
	pf.Int64Var(&seed, "seed", 0, "Random seed (0 seeds from the clock)")
	pf.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	serveCmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on")

	renderCmd.Flags().Float64VarP(&seconds, "seconds", "s", 30, "Length of the bounce")
	renderCmd.Flags().StringVarP(&outPath, "out", "o", "ambient.wav", "Output WAV file")
}

// loadConfig reads the environment, then applies any flags set explicitly.
func loadConfig(cmd *cobra.Command, args []string) error {
	cfg = config.Load()
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output = output
	}
	if flags.Changed("sample-rate") {
		cfg.SampleRate = sampleRate
	}
	if flags.Changed("buffer-size") {
		cfg.BufferSize = bufferSize
	}
	if flags.Changed("analyser-size") {
		cfg.AnalyserSize = analyserSize
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("port") {
		cfg.Port = port
	}
	if flags.Changed("log-level") {
		if err := cfg.LogLevel.UnmarshalText([]byte(strings.ToUpper(logLevel))); err != nil {
			return fmt.Errorf("--log-level: %w", err)
		}
	}
	return nil
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
}

func engineOptions(log *slog.Logger) []ambient.Option {
	opts := []ambient.Option{
		ambient.WithLogger(log),
		ambient.WithParams(audio.Params{SampleRate: cfg.SampleRate, BufferSize: cfg.BufferSize}),
		ambient.WithAnalyserSize(cfg.AnalyserSize),
	}
	if cfg.Seed != 0 {
		opts = append(opts, ambient.WithSeed(cfg.Seed))
	}
	return opts
}

func readBlueprint(path string) (ambient.Blueprint, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return ambient.Blueprint{}, err
		}
		defer f.Close()
		r = f
	}
	return ambient.ParseBlueprint(r)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runPlay(cmd *cobra.Command, args []string) error {
	b, err := readBlueprint(args[0])
	if err != nil {
		return err
	}
	log := newLogger()
	out, err := audio.NewOutput(cfg.Output)
	if err != nil {
		return err
	}
	e, err := ambient.New(append(engineOptions(log), ambient.WithOutput(out))...)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	defer e.Close()

	ctx, stop := signalContext()
	defer stop()
	if _, ok := out.(*audio.Null); ok {
		go clock(ctx, e)
	}
	if err := e.Init(ctx); err != nil {
		return err
	}
	if err := e.Configure(b); err != nil {
		return err
	}
	if err := e.Start(); err != nil {
		return err
	}
	<-ctx.Done()

	if err := e.Stop(); err != nil {
		return err
	}
	// Let the fade-out play before the device closes.
	time.Sleep(time.Second)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	log := newLogger()
	framer := stream.NewFramer(cfg.SampleRate, frameQueue)
	b := stream.NewBroadcaster(framer)
	rtc, err := stream.NewWebRTCHandler(b, int(cfg.SampleRate), log)
	if err != nil {
		return err
	}
	out, err := audio.NewOutput(cfg.Output)
	if err != nil {
		return err
	}
	e, err := ambient.New(append(engineOptions(log),
		ambient.WithOutput(out),
		ambient.WithTap(framer.Write),
	)...)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	defer e.Close()

	ctx, stop := signalContext()
	defer stop()
	if _, ok := out.(*audio.Null); ok {
		go clock(ctx, e)
	}
	if err := e.Init(ctx); err != nil {
		return err
	}

	go b.Run(ctx)
	st := &server.Stream{Broadcaster: b, WebRTC: rtc}
	return server.New(server.Config{Port: cfg.Port}, e, st, log).Run(ctx)
}

// clock drives an engine with no device in real time.
func clock(ctx context.Context, e *ambient.Engine) {
	p := e.Params()
	left, right := make(audio.Audio, p.BufferSize), make(audio.Audio, p.BufferSize)
	t := time.NewTicker(time.Duration(float64(p.BufferSize) / p.SampleRate * float64(time.Second)))
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			e.Process(left, right)
		}
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	b, err := readBlueprint(args[0])
	if err != nil {
		return err
	}
	log := newLogger()
	ctx, stop := signalContext()
	defer stop()

	start := time.Now()
	if err := render.File(ctx, b, outPath, seconds, engineOptions(log)...); err != nil {
		return err
	}
	log.Info("rendered", slog.String("path", outPath), slog.Float64("seconds", seconds), slog.Duration("took", time.Since(start)))
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	b, err := readBlueprint(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(ambient.Derive(b))
}
