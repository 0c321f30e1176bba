package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pixshop/internal/app"
	"pixshop/internal/collage"
	"pixshop/internal/domain"
	"pixshop/internal/imaging"
	"pixshop/internal/infra"
	"pixshop/internal/presets"
	"pixshop/internal/storage"
)

type imageFlags []string

func (f *imageFlags) String() string { return strings.Join(*f, ",") }

func (f *imageFlags) Set(v string) error {
	*f = append(*f, v)
	return nil
}

type cliOptions struct {
	op      domain.Operation
	collage bool
	prompt  string
	preset  string
	images  []string
	hotspot *domain.Hotspot
	styles  []string
	outDir  string
	zip     bool
}

type runner interface {
	Run(ctx context.Context, req domain.Request) domain.Result
}

type collageRunner interface {
	Run(ctx context.Context, src imaging.Resource, styles []collage.Style) (collage.Outcome, error)
}

func parseFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("pixshop", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		opFlag     string
		images     imageFlags
		x, y       int
		stylesFlag string
		opts       cliOptions
	)
	fs.StringVar(&opFlag, "op", "", "operation: "+joinOperations()+" or collage")
	fs.StringVar(&opts.prompt, "prompt", "", "instruction text")
	fs.StringVar(&opts.preset, "preset", "", "preset name used instead of -prompt")
	fs.Var(&images, "image", "input image file (repeat for compose)")
	fs.IntVar(&x, "x", -1, "hotspot x for localized-edit")
	fs.IntVar(&y, "y", -1, "hotspot y for localized-edit")
	fs.StringVar(&stylesFlag, "styles", "", "comma separated collage styles (default all)")
	fs.StringVar(&opts.outDir, "out", "./out", "output directory")
	fs.BoolVar(&opts.zip, "zip", false, "also write the collage as a zip archive")
	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	opts.images = images
	if strings.EqualFold(strings.TrimSpace(opFlag), "collage") {
		opts.collage = true
		if len(images) != 1 {
			return cliOptions{}, errors.New("collage needs exactly one -image")
		}
		for _, s := range strings.Split(stylesFlag, ",") {
			if s = strings.TrimSpace(s); s != "" {
				opts.styles = append(opts.styles, s)
			}
		}
		return opts, nil
	}

	op, err := domain.ParseOperation(opFlag)
	if err != nil {
		return cliOptions{}, err
	}
	opts.op = op
	if x >= 0 || y >= 0 {
		if x < 0 || y < 0 {
			return cliOptions{}, errors.New("-x and -y must be set together")
		}
		opts.hotspot = &domain.Hotspot{X: x, Y: y}
	}
	return opts, nil
}

func joinOperations() string {
	ops := domain.Operations()
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = op.String()
	}
	return strings.Join(names, ", ")
}

func runOperation(ctx context.Context, opts cliOptions, exec runner, catalog *presets.Catalog, store *storage.FileStore, now time.Time, out io.Writer) error {
	prompt := opts.prompt
	if opts.preset != "" {
		if strings.TrimSpace(prompt) != "" {
			return errors.New("use either -prompt or -preset")
		}
		resolved, err := catalog.Resolve(opts.op, opts.preset)
		if err != nil {
			return err
		}
		prompt = resolved
	}
	images := make([]imaging.Resource, 0, len(opts.images))
	for _, path := range opts.images {
		img, err := storage.LoadImage(path)
		if err != nil {
			return err
		}
		images = append(images, img)
	}
	req, err := domain.Build(opts.op, domain.Input{Prompt: prompt, Images: images, Hotspot: opts.hotspot})
	if err != nil {
		return errors.New(opts.op.UserMessage(err))
	}

	result := exec.Run(ctx, req)
	img, ok := result.Image()
	if !ok {
		return errors.New(opts.op.UserMessage(result.Err()))
	}
	key, err := store.WriteImage(ctx, opts.op.OutputName(now), img)
	if err != nil {
		return err
	}
	path, _ := store.Path(key)
	fmt.Fprintf(out, "%s (%s via %s)\n", path, result.Source(), result.Provider())
	return nil
}

func runCollage(ctx context.Context, opts cliOptions, exec collageRunner, store *storage.FileStore, now time.Time, out io.Writer) error {
	styles, err := collage.SelectStyles(opts.styles)
	if err != nil {
		return err
	}
	src, err := storage.LoadImage(opts.images[0])
	if err != nil {
		return err
	}
	outcome, err := exec.Run(ctx, src, styles)
	if err != nil {
		return errors.New(domain.MessageOf(err))
	}
	dir := fmt.Sprintf("collage-%d", now.UnixMilli())
	for _, e := range outcome.Entries {
		key, err := store.WriteImage(ctx, dir+"/"+e.Image.Name(), e.Image)
		if err != nil {
			return err
		}
		path, _ := store.Path(key)
		fmt.Fprintf(out, "%s: %s\n", e.Style, path)
	}
	if opts.zip {
		archive, err := outcome.Archive(now)
		if err != nil {
			return err
		}
		key, err := store.Write(ctx, dir+".zip", archive)
		if err != nil {
			return err
		}
		path, _ := store.Path(key)
		fmt.Fprintf(out, "archive: %s\n", path)
	}
	return nil
}

func main() {
	_ = godotenv.Load()

	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "pixshop: %v\n", err)
		os.Exit(2)
	}

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pixshop: %v\n", err)
		os.Exit(1)
	}
	logger := infra.NewLogger(cfg.AppEnv).With().Str("cmd", "pixshop").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := app.Build(ctx, cfg, &logger, nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build providers")
	}

	outDir := opts.outDir
	if abs, err := filepath.Abs(outDir); err == nil {
		outDir = abs
	}
	store, err := storage.NewFileStore(outDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure output directory")
	}

	now := time.Now()
	if opts.collage {
		err = runCollage(ctx, opts, svc.Collage, store, now, os.Stdout)
	} else {
		err = runOperation(ctx, opts, svc.Orchestrator, presets.Default(), store, now, os.Stdout)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "pixshop: %v\n", err)
		os.Exit(1)
	}
}
