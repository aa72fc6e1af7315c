package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sarchlab/flashdv/backdoor"
	"github.com/sarchlab/flashdv/ctrlmodel"
	"github.com/sarchlab/flashdv/flash"
	"github.com/sarchlab/flashdv/monitor"
	"github.com/sarchlab/flashdv/record"
	"github.com/sarchlab/flashdv/seq"
	"github.com/sarchlab/flashdv/stimulus"
)

var (
	seedFlag        int64
	envFileFlag     string
	traceDBFlag     string
	monitorFlag     bool
	monitorPortFlag int
	browserFlag     bool
	timeoutFlag     time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one randomized verification session against the golden model",
	RunE:  runSession,
}

func init() {
	runCmd.Flags().Int64Var(&seedFlag, "seed", 0,
		"random seed, 0 picks one from the clock")
	runCmd.Flags().StringVar(&envFileFlag, "env-file", "",
		"dotenv file with FLASHDV_* distribution knobs")
	runCmd.Flags().StringVar(&traceDBFlag, "trace-db", "",
		"record the run into this SQLite database")
	runCmd.Flags().BoolVar(&monitorFlag, "monitor", false,
		"serve run progress over HTTP")
	runCmd.Flags().IntVar(&monitorPortFlag, "monitor-port", 0,
		"port for the monitoring server, 0 picks a random port")
	runCmd.Flags().BoolVar(&browserFlag, "open-browser", false,
		"open the monitoring page in a browser")
	runCmd.Flags().DurationVar(&timeoutFlag, "op-timeout", 10*time.Second,
		"how long to wait for one operation to complete")

	rootCmd.AddCommand(runCmd)
}

func runSession(_ *cobra.Command, _ []string) error {
	seed := seedFlag
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	fmt.Fprintf(os.Stderr, "Seed %d\n", seed)

	cfg, err := stimulus.ConfigFromEnv(envFileFlag)
	if err != nil {
		return err
	}

	spec := flash.DefaultSpec()
	rng := rand.New(rand.NewSource(seed))

	mem := backdoor.New(spec, rng)
	ctrl := ctrlmodel.MakeBuilder().
		WithSpec(spec).
		WithMem(mem).
		WithTimeout(timeoutFlag).
		Build("Ctrl")

	builder := seq.MakeBuilder().
		WithSpec(spec).
		WithConfig(cfg).
		WithRand(rng).
		WithController(ctrl).
		WithBackdoor(mem)

	if traceDBFlag != "" {
		recorder := record.NewRunRecorder(traceDBFlag)
		defer recorder.Flush()
		builder.WithRecorder(recorder)
	}

	var mon *monitor.Monitor
	if monitorFlag {
		mon = monitor.NewMonitor().WithPortNumber(monitorPortFlag)
		if browserFlag {
			mon.WithBrowser()
		}

		opBound := uint64(cfg.MaxConfigs) * uint64(cfg.MaxOpsPerConfig)
		builder.WithProgress(mon.CreateProgressBar("operations", opBound))
	}

	sequencer := builder.Build("Seq")

	if mon != nil {
		mon.RegisterSequencer(sequencer)
		mon.StartServer()
	}

	if err := sequencer.Run(); err != nil {
		return err
	}

	fmt.Printf("PASS: %d configs, %d operations checked\n",
		sequencer.ConfigsApplied, sequencer.OpsChecked)

	return nil
}
