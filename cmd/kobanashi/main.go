// Command kobanashi is the batch video pipeline's CLI: one subcommand per
// stage boundary, dispatched from main() in the same sequential, explicit,
// logged style as the teacher's cmd/api/main.go, using only stdlib flag —
// no cobra/urfave framework appears anywhere in the retrieved pack, so one
// would be a fabricated dependency here.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bobarin/kobanashi/internal/config"
	"github.com/bobarin/kobanashi/internal/models"
	"github.com/bobarin/kobanashi/internal/pipeline"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx := context.Background()
	var err error

	switch os.Args[1] {
	case "generate":
		err = cmdGenerate(ctx, os.Args[2:])
	case "script":
		err = dispatchScript(ctx, os.Args[2:])
	case "audio":
		err = dispatchAudio(ctx, os.Args[2:])
	case "slides":
		err = dispatchSlides(ctx, os.Args[2:])
	case "video":
		err = dispatchVideo(ctx, os.Args[2:])
	case "config":
		err = dispatchConfig(os.Args[2:])
	case "-h", "--help", "help":
		usage()
		return
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("kobanashi: %v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: kobanashi <command> [args]

commands:
  generate <URL|script.yaml>     full pipeline end-to-end
  script create <URL>            S1+S2 only
  script validate <PATH>         validate a script YAML
  audio generate <script.yaml>   S3 only
  slides generate <script.yaml>  S4 only
  video render <script.yaml>     S5+S6 only
  config init                    emit an annotated default config
  config validate <PATH>         validate a config YAML`)
}

func dispatchScript(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("script: expected a subcommand (create, validate)")
	}
	switch args[0] {
	case "create":
		return cmdScriptCreate(ctx, args[1:])
	case "validate":
		return cmdScriptValidate(args[1:])
	default:
		return fmt.Errorf("script: unknown subcommand %q", args[0])
	}
}

func dispatchAudio(ctx context.Context, args []string) error {
	if len(args) < 1 || args[0] != "generate" {
		return fmt.Errorf("audio: expected subcommand 'generate'")
	}
	return cmdAudioGenerate(ctx, args[1:])
}

func dispatchSlides(ctx context.Context, args []string) error {
	if len(args) < 1 || args[0] != "generate" {
		return fmt.Errorf("slides: expected subcommand 'generate'")
	}
	return cmdSlidesGenerate(ctx, args[1:])
}

func dispatchVideo(ctx context.Context, args []string) error {
	if len(args) < 1 || args[0] != "render" {
		return fmt.Errorf("video: expected subcommand 'render'")
	}
	return cmdVideoRender(ctx, args[1:])
}

func dispatchConfig(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("config: expected a subcommand (init, validate)")
	}
	switch args[0] {
	case "init":
		return cmdConfigInit(args[1:])
	case "validate":
		return cmdConfigValidate(args[1:])
	default:
		return fmt.Errorf("config: unknown subcommand %q", args[0])
	}
}

// commonFlags binds the flags every stage subcommand shares.
type commonFlags struct {
	configPath       string
	scenes           string
	apiKey           string
	force            bool
	quiet            bool
	verbose          bool
	dryRun           bool
	allowPlaceholder bool
}

func bindCommonFlags(fs *flag.FlagSet, c *commonFlags, mutating bool) {
	fs.StringVar(&c.configPath, "config", "config.yaml", "path to the pipeline config YAML")
	fs.StringVar(&c.scenes, "scenes", "", "scene range: N, N-M, N-, or -M (1-indexed, inclusive)")
	if mutating {
		fs.StringVar(&c.apiKey, "api-key", "", "override OPENROUTER_API_KEY for this run")
		fs.BoolVar(&c.force, "force", false, "force regeneration even when artifacts already exist")
		fs.BoolVar(&c.dryRun, "dry-run", false, "suppress every outward write/API/subprocess call, logging what would run")
		fs.BoolVar(&c.allowPlaceholder, "allow-placeholder", false, "fall back to silent placeholder audio when VOICEVOX is unreachable")
	}
	fs.BoolVar(&c.quiet, "quiet", false, "suppress informational logging")
	fs.BoolVar(&c.verbose, "verbose", false, "include full error chains on failure")
}

func (c commonFlags) toPipelineFlags() pipeline.Flags {
	return pipeline.Flags{
		Force:            c.force,
		Quiet:            c.quiet,
		Verbose:          c.verbose,
		DryRun:           c.dryRun,
		AllowPlaceholder: c.allowPlaceholder,
	}
}

func loadConfig(c commonFlags, outputOverride string) (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		cfg.OpenRouterAPIKey = c.apiKey
	}
	if outputOverride != "" {
		cfg.Project.OutputDir = outputOverride
	}
	return cfg, nil
}

func reportFailure(stage, input string, err error, verbose bool) error {
	if verbose {
		return fmt.Errorf("%s stage failed for %s: %+v", stage, input, err)
	}
	return fmt.Errorf("%s stage failed for %s: %v", stage, input, err)
}

// cmdGenerate implements `generate <URL|script.yaml>`.
func cmdGenerate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	var c commonFlags
	var output string
	var mcpConfig string
	bindCommonFlags(fs, &c, true)
	fs.StringVar(&output, "output", "", "override project.output_dir")
	fs.StringVar(&mcpConfig, "mcp-config", "", "accepted for interface parity; unused (content fetch is plain HTTP, not an MCP tool)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("generate: expected an input URL or script path")
	}
	input := fs.Arg(0)

	cfg, err := loadConfig(c, output)
	if err != nil {
		return err
	}

	if err := pipeline.New(cfg).Generate(ctx, input, c.scenes, c.toPipelineFlags()); err != nil {
		return reportFailure("generate", input, err, c.verbose)
	}
	return nil
}

// cmdScriptCreate implements `script create <URL>`.
func cmdScriptCreate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("script create", flag.ExitOnError)
	var c commonFlags
	var output string
	bindCommonFlags(fs, &c, true)
	fs.StringVar(&output, "output", "", "override project.output_dir")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("script create: expected an input URL")
	}
	input := fs.Arg(0)

	cfg, err := loadConfig(c, output)
	if err != nil {
		return err
	}

	if err := pipeline.New(cfg).ScriptOnly(ctx, input, c.toPipelineFlags()); err != nil {
		return reportFailure("script", input, err, c.verbose)
	}
	return nil
}

// cmdAudioGenerate implements `audio generate <script.yaml>`.
func cmdAudioGenerate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("audio generate", flag.ExitOnError)
	var c commonFlags
	var speakerID int
	bindCommonFlags(fs, &c, true)
	fs.IntVar(&speakerID, "speaker-id", -1, "override every persona's synthesizer speaker_id for this run")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("audio generate: expected a script.yaml path")
	}
	scriptPath := fs.Arg(0)

	cfg, err := loadConfig(c, "")
	if err != nil {
		return err
	}

	if err := pipeline.New(cfg).AudioOnly(ctx, scriptPath, c.scenes, speakerID, c.toPipelineFlags()); err != nil {
		return reportFailure("audio", scriptPath, err, c.verbose)
	}
	return nil
}

// cmdSlidesGenerate implements `slides generate <script.yaml>`.
func cmdSlidesGenerate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("slides generate", flag.ExitOnError)
	var c commonFlags
	var lang, model string
	var maxConcurrent int
	bindCommonFlags(fs, &c, true)
	fs.StringVar(&lang, "language", "", "language suffix matching the script file (empty for a single-language project)")
	fs.StringVar(&model, "model", "", "override slides.llm.model for this run")
	fs.IntVar(&maxConcurrent, "max-concurrent", 0, "override slides.max_concurrent for this run")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("slides generate: expected a script.yaml path")
	}
	scriptPath := fs.Arg(0)

	cfg, err := loadConfig(c, "")
	if err != nil {
		return err
	}

	if err := pipeline.New(cfg).SlidesOnly(ctx, scriptPath, lang, c.scenes, model, maxConcurrent, c.toPipelineFlags()); err != nil {
		return reportFailure("slides", scriptPath, err, c.verbose)
	}
	return nil
}

// cmdVideoRender implements `video render <script.yaml>`.
func cmdVideoRender(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("video render", flag.ExitOnError)
	var c commonFlags
	var lang, transition, output string
	var fps int
	var progress bool
	bindCommonFlags(fs, &c, true)
	fs.StringVar(&lang, "language", "", "language suffix matching the script/slides/audio (empty for a single-language project)")
	fs.StringVar(&transition, "transition", "", "override video.transition.type for this run")
	fs.IntVar(&fps, "fps", 0, "override style.fps for this run")
	fs.StringVar(&output, "output", "", "override project.output_dir")
	fs.BoolVar(&progress, "progress", false, "log renderer progress (implies --verbose)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("video render: expected a script.yaml path")
	}
	scriptPath := fs.Arg(0)
	if progress {
		c.verbose = true
	}

	cfg, err := loadConfig(c, output)
	if err != nil {
		return err
	}

	if err := pipeline.New(cfg).RenderOnly(ctx, scriptPath, lang, c.scenes, transition, fps, c.toPipelineFlags()); err != nil {
		return reportFailure("video", scriptPath, err, c.verbose)
	}
	return nil
}

// cmdConfigInit implements `config init [--output PATH]`.
func cmdConfigInit(args []string) error {
	fs := flag.NewFlagSet("config init", flag.ExitOnError)
	output := fs.String("output", "config.yaml", "path to write the annotated default config")
	fs.Parse(args)

	if _, err := os.Stat(*output); err == nil {
		return fmt.Errorf("config init: %s already exists, remove it first", *output)
	}

	if err := os.WriteFile(*output, []byte(config.AnnotatedDefault), 0o644); err != nil {
		return fmt.Errorf("config init: %w", err)
	}
	log.Printf("wrote %s", *output)
	return nil
}

// cmdConfigValidate implements `config validate <PATH>`.
func cmdConfigValidate(args []string) error {
	fs := flag.NewFlagSet("config validate", flag.ExitOnError)
	quiet := fs.Bool("quiet", false, "suppress the success message")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("config validate: expected a config path")
	}
	path := fs.Arg(0)

	if _, err := config.Load(path); err != nil {
		return fmt.Errorf("config validate: %w", err)
	}
	if !*quiet {
		log.Printf("%s is valid", path)
	}
	return nil
}

// cmdScriptValidate implements `script validate <PATH>`.
func cmdScriptValidate(args []string) error {
	fs := flag.NewFlagSet("script validate", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to the pipeline config YAML (supplies personas/narration mode)")
	quiet := fs.Bool("quiet", false, "suppress the success message")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("script validate: expected a script path")
	}
	path := fs.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("script validate: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("script validate: %w", err)
	}
	var script models.VideoScript
	if err := yaml.Unmarshal(data, &script); err != nil {
		return fmt.Errorf("script validate: %w", err)
	}

	if err := script.Validate(cfg.Personas, cfg.Narration.Mode); err != nil {
		return fmt.Errorf("script validate: %w", err)
	}
	if !*quiet {
		log.Printf("%s is valid (%d section(s))", path, len(script.Sections))
	}
	return nil
}
