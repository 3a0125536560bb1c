package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/limaJavier/timetabler/internal/config"
	"github.com/limaJavier/timetabler/internal/loader"
	"github.com/limaJavier/timetabler/internal/logger"
	"github.com/limaJavier/timetabler/internal/metrics"
	"github.com/limaJavier/timetabler/internal/render"
	"github.com/limaJavier/timetabler/pkg/constraint"
	"github.com/limaJavier/timetabler/pkg/model"
	"github.com/limaJavier/timetabler/pkg/schedule"
	"github.com/limaJavier/timetabler/pkg/solver"
)

// Exit codes beyond the terminal states' 0 (strict), 1 (relaxed) and 2 (failed)
const (
	exitInvalidInput = 3
	exitIO           = 4
	exitDefect       = 5
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	// Define arguments
	flags := flag.NewFlagSet("timetabler", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPathPtr := flags.String("config", "", "Path to the configuration file (YAML, JSON or TOML); defaults and TIMETABLER_* variables apply otherwise")
	filePathPtr := flags.String("file", "", "Path to the JSON input file")
	csvDirPtr := flags.String("csv", "", "Directory holding classes.csv, courses.csv, teachers.csv, rooms.csv and optionally periods.csv")
	subjectsPathPtr := flags.String("subjects", "", "Path to the department subjects.json file; requires -rooms")
	roomsPathPtr := flags.String("rooms", "", "Path to the department rooms.json file; requires -subjects")
	formatPtr := flags.String("format", "json", "Output format. Allowed values are: \"json\", \"text\", \"csv\", \"pdf\", where \"json\" is the default")
	outFilePathPtr := flags.String("out", "", "Path to the file where the output will be written; if empty, it'll be written into the Standard Output")
	titlePtr := flags.String("title", "Timetable", "Title printed on every PDF page")
	subtitlePtr := flags.String("subtitle", "", "Subtitle printed under the title on every PDF page, such as the department or the semester")
	metricsPathPtr := flags.String("metrics", "", "Path to a file where the solve metrics are written in the Prometheus text format")
	dimacsPathPtr := flags.String("dimacs", "", "Path to a file where the strict model is written as a DIMACS CNF before solving")
	if err := flags.Parse(args); errors.Is(err, flag.ErrHelp) {
		return 0
	} else if err != nil {
		return exitIO
	}

	// Validate arguments
	format, err := render.ParseFormat(*formatPtr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitIO
	}
	sources := 0
	for _, source := range []string{*filePathPtr, *csvDirPtr, *subjectsPathPtr + *roomsPathPtr} {
		if source != "" {
			sources++
		}
	}
	if sources != 1 {
		fmt.Fprintln(stderr, "exactly one input must be specified: -file, -csv or -subjects with -rooms")
		return exitIO
	} else if (*subjectsPathPtr == "") != (*roomsPathPtr == "") {
		fmt.Fprintln(stderr, "-subjects and -rooms must be specified together")
		return exitIO
	}

	// Initialize ambient stack
	cfg, err := config.Load(*configPathPtr)
	if err != nil {
		fmt.Fprintf(stderr, "cannot load configuration: %v\n", err)
		return exitIO
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(stderr, "cannot build logger: %v\n", err)
		return exitIO
	}
	defer log.Sync()

	// Extract input
	var input *loader.Input
	switch {
	case *filePathPtr != "":
		input, err = loader.FromJSON(*filePathPtr)
	case *csvDirPtr != "":
		input, err = loader.FromCSV(*csvDirPtr)
	default:
		input, err = loader.FromLegacy(*subjectsPathPtr, *roomsPathPtr)
	}
	if err != nil {
		log.Error("cannot load input", zap.Error(err))
		return exitIO
	}
	domain, err := input.Domain(cfg.Periods)
	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		log.Error("invalid input", zap.String("entity", validationErr.Entity), zap.String("id", validationErr.Id), zap.String("reason", validationErr.Reason))
		return exitInvalidInput
	} else if err != nil {
		log.Error("invalid input", zap.Error(err))
		return exitInvalidInput
	}
	log.Info("input loaded",
		zap.Int("classes", len(domain.Classes())),
		zap.Int("pairs", len(domain.Pairs())),
		zap.Int("rooms", len(domain.Rooms())),
		zap.Int("periods", len(domain.Periods())),
	)

	if *dimacsPathPtr != "" {
		if err := writeDIMACS(*dimacsPathPtr, domain, cfg.PenaltyMultiplier); err != nil {
			var modelErr *constraint.ModelError
			if errors.As(err, &modelErr) {
				log.Error("some pairs cannot be scheduled at all", zap.Error(err))
				return exitInvalidInput
			}
			log.Error("an error occurred while writing the DIMACS file", zap.Error(err))
			return exitIO
		}
	}

	// Build timetable
	recorder := metrics.NewRecorder()
	orchestrator := solver.NewOrchestrator(cfg.SolverOptions(), log, recorder)
	result, err := orchestrator.Solve(ctx, domain)
	var modelErr *constraint.ModelError
	if errors.As(err, &modelErr) {
		log.Error("some pairs cannot be scheduled at all", zap.Error(err), zap.Any("pairs", modelErr.Pairs))
		return exitInvalidInput
	} else if err != nil {
		log.Error("an error occurred during timetable construction", zap.Error(err))
		return exitIO
	}
	for _, conflict := range result.Diagnostics {
		log.Warn("conflict", zap.Stringer("conflict", conflict))
	}

	// Verify timetable correctness
	timetable, err := schedule.Extract(domain, result)
	var extractionErr *schedule.ExtractionError
	if errors.As(err, &extractionErr) {
		log.Error("solver produced an invalid schedule", zap.String("reason", extractionErr.Reason), zap.Any("assignment", extractionErr.Assignment))
		return exitDefect
	} else if err != nil {
		log.Error("cannot extract schedule", zap.Error(err))
		return exitDefect
	}

	// Write output
	if err := write(stdout, *outFilePathPtr, format, timetable, render.Options{Title: *titlePtr, Subtitle: *subtitlePtr, Generated: time.Now()}); err != nil {
		log.Error("an error occurred while writing the output", zap.Error(err))
		return exitIO
	}
	if *metricsPathPtr != "" {
		if err := recorder.WriteTextfile(*metricsPathPtr); err != nil {
			log.Error("an error occurred while writing the metrics", zap.Error(err))
			return exitIO
		}
	}

	log.Info("done",
		zap.String("run", result.RunId),
		zap.Stringer("state", result.State),
		zap.Int64("objective", result.Objective),
		zap.Bool("proven", lo.EveryBy(result.Phases, solver.PhaseReport.Proven)),
		zap.Int("scheduled", timetable.Stats.Scheduled),
		zap.Int("unmet", timetable.Stats.Unmet),
	)
	return result.State.ExitCode()
}

func write(stdout io.Writer, outFile string, format render.Format, timetable *schedule.Schedule, options render.Options) error {
	if outFile == "" {
		return render.Write(stdout, format, timetable, options)
	}
	file, err := os.Create(outFile)
	if err != nil {
		return err
	}
	if err := render.Write(file, format, timetable, options); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func writeDIMACS(path string, domain *model.Domain, penaltyMultiplier float64) error {
	m, err := constraint.Build(domain, constraint.Strict, constraint.Options{PenaltyMultiplier: penaltyMultiplier})
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(constraint.ToSAT(m).ToDIMACS()), 0666)
}
