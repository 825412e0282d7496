package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newWatchCommand(opts *rootOptions) *cobra.Command {
	var schedule string
	var once bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Import new files from the import directory on a schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer ws.Close()

			ctx := ws.context(cmd.Context())
			out := cmd.OutOrStdout()
			pass := func() {
				files, err := scanImportDir(ws.root)
				if err != nil {
					ws.log.Error().Err(err).Msg("scanning import directory")
					return
				}
				if len(files) == 0 {
					ws.log.Debug().Msg("nothing to import")
					return
				}
				if err := runImport(ctx, ws, files, importOptions{quarantine: true}, out); err != nil {
					ws.log.Error().Err(err).Msg("watch pass")
				}
			}

			if once {
				pass()
				return nil
			}

			if schedule == "" {
				schedule = ws.cfg.Import.WatchSchedule
			}
			loc, err := time.LoadLocation(ws.cfg.Import.TimeZone)
			if err != nil {
				return fmt.Errorf("time zone %q: %w", ws.cfg.Import.TimeZone, err)
			}

			cl := cronLogger{ws.log}
			c := cron.New(
				cron.WithLocation(loc),
				cron.WithLogger(cl),
				cron.WithChain(cron.SkipIfStillRunning(cl)),
			)
			if _, err := c.AddFunc(schedule, pass); err != nil {
				return fmt.Errorf("invalid schedule %q: %w", schedule, err)
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			ws.log.Info().Str("schedule", schedule).Str("dir", ws.root).Msg("watching import directory")
			pass()
			c.Start()
			<-ctx.Done()
			<-c.Stop().Done()
			ws.log.Info().Msg("watch stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", "", "cron schedule (default from config)")
	cmd.Flags().BoolVar(&once, "once", false, "run a single pass and exit")

	return cmd
}

// cronLogger routes cron's logging through zerolog.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}

var _ cron.Logger = cronLogger{}
