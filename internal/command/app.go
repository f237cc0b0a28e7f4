package command

import (
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"DENAC/internal/assets"
	"DENAC/internal/config"
	"DENAC/internal/logger"
	"DENAC/internal/server"
	"DENAC/internal/services"
)

// BuildApp assembles the denac command line. Output of the prepare and
// render commands goes to out.
func BuildApp(out io.Writer) *cli.App {
	if out == nil {
		out = os.Stdout
	}
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "path to a TOML config file",
		EnvVars: []string{"DENAC_CONFIG"},
	}
	return &cli.App{
		Name:   "denac",
		Usage:  "scroll-driven product page server",
		Flags:  []cli.Flag{configFlag},
		Writer: out,
		Action: func(c *cli.Context) error {
			return runServe(c)
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "serve the landing page",
				Action: runServe,
			},
			{
				Name:  "prepare",
				Usage: "renumber an exported image sequence into frame_N files",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "src", Usage: "directory of exported images", Required: true},
					&cli.StringFlag{Name: "dst", Usage: "frames directory (default: configured frames dir)"},
					&cli.StringSliceFlag{Name: "ext", Usage: "accepted file suffix, repeatable", Value: cli.NewStringSlice(".jpg")},
					&cli.BoolFlag{Name: "verify", Usage: "decode each image header before copying"},
					&cli.BoolFlag{Name: "dry-run", Usage: "print the mapping without copying"},
				},
				Action: func(c *cli.Context) error {
					return runPrepare(c, out)
				},
			},
			{
				Name:  "render",
				Usage: "render frames headlessly",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "progress", Usage: "scroll progress in [0, 1]"},
					&cli.StringFlag{Name: "out", Usage: "output image (.jpg or .png)"},
					&cli.IntFlag{Name: "sweep", Usage: "render N evenly spaced progress values"},
					&cli.StringFlag{Name: "out-dir", Usage: "output directory for --sweep"},
					&cli.IntFlag{Name: "quality", Usage: "JPEG quality", Value: 90},
				},
				Action: func(c *cli.Context) error {
					return runRender(c, out)
				},
			},
		},
	}
}

func loadConfig(c *cli.Context) (config.Config, error) {
	return config.Load(c.String("config"))
}

func newLogger(cfg config.Config, component string) *slog.Logger {
	return logger.New(logger.Options{
		Level:     cfg.LogLevel,
		Writer:    os.Stderr,
		Instance:  cfg.InstanceName,
		Component: component,
	})
}

func runServe(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	// Initialize JSON logging
	log.SetFlags(0)
	log.SetOutput(&logger.JSONLogger{Instance: cfg.InstanceName})
	lg := logger.New(logger.Options{Level: cfg.LogLevel, Instance: cfg.InstanceName})
	slog.SetDefault(lg)

	svc, err := services.New(cfg, lg)
	if err != nil {
		return err
	}
	defer svc.Close()
	svc.Start(c.Context)

	lg.Info("serving", "port", cfg.Port)
	return server.New(cfg, svc, lg).ListenAndServe(c.Context)
}

func runPrepare(c *cli.Context, out io.Writer) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	dst := c.String("dst")
	if dst == "" {
		dst = cfg.FramesDir
	}
	opts := assets.Options{
		Extensions: c.StringSlice("ext"),
		Pattern:    cfg.FramePattern,
		Verify:     c.Bool("verify"),
		DryRun:     c.Bool("dry-run"),
	}
	steps, err := assets.Prepare(c.Context, c.String("src"), dst, opts)
	for _, s := range steps {
		fmt.Fprintf(out, "%s -> %s\n", filepath.Base(s.Source), filepath.Join(dst, s.Target))
	}
	if err != nil {
		return err
	}
	verb := "Copied"
	if opts.DryRun {
		verb = "Would copy"
	}
	fmt.Fprintf(out, "%s %d images to %s\n", verb, len(steps), dst)
	return nil
}

func runRender(c *cli.Context, out io.Writer) error {
	sweep := c.Int("sweep")
	if sweep == 0 && c.String("out") == "" {
		return errors.New("render: either --out or --sweep with --out-dir is required")
	}
	if sweep != 0 && (sweep < 2 || c.String("out-dir") == "") {
		return errors.New("render: --sweep needs at least 2 steps and --out-dir")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	lg := newLogger(cfg, "render")
	svc, err := services.New(cfg, lg)
	if err != nil {
		return err
	}
	defer svc.Close()
	svc.Start(c.Context)
	if err := svc.Frames.Wait(c.Context); err != nil {
		return err
	}

	type job struct {
		path     string
		progress float64
	}
	var jobs []job
	if sweep == 0 {
		jobs = append(jobs, job{c.String("out"), c.Float64("progress")})
	} else {
		if err := os.MkdirAll(c.String("out-dir"), 0o755); err != nil {
			return err
		}
		for i := 0; i < sweep; i++ {
			name := filepath.Join(c.String("out-dir"), fmt.Sprintf("render_%03d.jpg", i+1))
			jobs = append(jobs, job{name, float64(i) / float64(sweep-1)})
		}
	}

	rd := svc.NewRenderer()
	defer rd.Release()
	for _, j := range jobs {
		path, p := j.path, j.progress
		index := svc.Mapper.Index(p)
		if _, ok := svc.Frames.Frame(index); !ok {
			return fmt.Errorf("render: frame %d not loaded", index)
		}
		rd.Draw(index)
		if err := writeImage(path, func(w io.Writer) error {
			if strings.EqualFold(filepath.Ext(path), ".png") {
				return rd.EncodePNG(w)
			}
			return rd.EncodeJPEG(w, c.Int("quality"))
		}); err != nil {
			return err
		}
		fmt.Fprintf(out, "progress %.4f -> frame %d -> %s\n", p, index, path)
	}
	return nil
}

func writeImage(path string, encode func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
