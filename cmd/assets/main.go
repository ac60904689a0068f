package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/Black-And-White-Club/club-cms/app"
	"github.com/Black-And-White-Club/club-cms/app/eventbus"
	assetservice "github.com/Black-And-White-Club/club-cms/app/modules/asset/application"
	assetevents "github.com/Black-And-White-Club/club-cms/app/modules/asset/infrastructure/events"
	assetqueue "github.com/Black-And-White-Club/club-cms/app/modules/asset/infrastructure/queue"
	assetdb "github.com/Black-And-White-Club/club-cms/app/modules/asset/infrastructure/repositories"
	assetstorage "github.com/Black-And-White-Club/club-cms/app/modules/asset/infrastructure/storage"
	sharedmetrics "github.com/Black-And-White-Club/club-cms/app/shared/metrics"
	"github.com/Black-And-White-Club/club-cms/app/shared/observability"
	"github.com/Black-And-White-Club/club-cms/config"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"
)

type env struct {
	cfg     *config.Config
	obs     observability.Observability
	db      *bun.DB
	bus     eventbus.EventBus
	service *assetservice.AssetService
}

func setup(c *cli.Context) (*env, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	obs := observability.New("club-cms-assets", cfg.Observability.Environment)

	db := app.NewDB(cfg.Postgres.DSN)
	assetdb.RegisterModels(db)

	store, err := assetstorage.NewFilesystem(cfg.Storage.MediaRoot)
	if err != nil {
		db.Close()
		return nil, err
	}
	bus, err := eventbus.New(c.Context, cfg.NATS.URL, obs.Logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	service := assetservice.NewAssetService(
		assetdb.NewRepository(db), store, nil, assetevents.NewBusNotifier(bus, obs.Logger),
		obs.Logger, sharedmetrics.NewNoop(), obs.Tracer, db,
		assetservice.Config{ArchiveRoot: cfg.Storage.ArchiveRoot},
	)
	return &env{cfg: cfg, obs: obs, db: db, bus: bus, service: service}, nil
}

func (e *env) close() {
	e.bus.Close()
	e.db.Close()
}

func main() {
	cliApp := &cli.App{
		Name:  "assets",
		Usage: "image store maintenance",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "Path to the configuration file"},
		},
		Commands: []*cli.Command{
			reconcileCommand(),
			archivedCommand(),
			completeDeleteCommand(),
			jobsCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func reconcileCommand() *cli.Command {
	return &cli.Command{
		Name:  "reconcile",
		Usage: "finish deletes that stopped between the file move and the row delete",
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.close()

			report, err := e.service.ReconcileArchive(c.Context)
			if err != nil {
				return err
			}
			fmt.Printf("scanned=%d completed=%d not_moved=%d missing_file=%d duplicated=%d\n",
				report.Scanned, report.Completed, report.NotMoved, report.MissingFile, report.Duplicated)
			if report.Duplicated > 0 {
				return cli.Exit("some images have both a live and an archived file", 2)
			}
			return nil
		},
	}
}

func archivedCommand() *cli.Command {
	return &cli.Command{
		Name:  "archived",
		Usage: "list archived images",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "since", Usage: `RFC 3339, YYYY-MM-DD or a phrase like "last week"`},
		},
		Action: func(c *cli.Context) error {
			since, err := parseSince(c.String("since"), time.Now())
			if err != nil {
				return err
			}
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.close()

			entries, err := e.service.ListArchived(c.Context, since)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "IMAGE\tCATEGORY\tARCHIVED AT\tPATH")
			for _, entry := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", entry.ImageID, entry.Category, entry.ArchivedAt.Format(time.RFC3339), entry.ArchivePath)
			}
			return tw.Flush()
		},
	}
}

func completeDeleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "complete-delete",
		Usage:     "delete the rows of images whose files are already archived",
		ArgsUsage: "<image-id>...",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return cli.Exit("at least one image id is required", 1)
			}
			ids := make([]uuid.UUID, 0, c.NArg())
			for _, arg := range c.Args().Slice() {
				id, err := uuid.Parse(arg)
				if err != nil {
					return fmt.Errorf("invalid image id %q: %w", arg, err)
				}
				ids = append(ids, id)
			}

			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.close()

			for _, id := range ids {
				if err := e.service.CompleteRowDelete(c.Context, id); err != nil {
					return fmt.Errorf("image %s: %w", id, err)
				}
				fmt.Printf("%s deleted\n", id)
			}
			return nil
		},
	}
}

func jobsCommand() *cli.Command {
	return &cli.Command{
		Name:  "jobs",
		Usage: "list unfinished asset jobs",
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.close()

			ctx, cancel := context.WithTimeout(c.Context, 30*time.Second)
			defer cancel()
			queue, err := assetqueue.NewService(ctx, e.db, e.obs.Logger, e.cfg.Postgres.DSN, sharedmetrics.NewNoop(), 0)
			if err != nil {
				return err
			}
			defer queue.Stop(ctx)

			jobs, err := queue.PendingJobs(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tKIND\tSTATE\tIMAGE\tATTEMPT\tSCHEDULED")
			for _, j := range jobs {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d/%d\t%s\n", j.ID, j.Kind, j.State, j.ImageID, j.Attempt, j.MaxAttempts, j.ScheduledAt)
			}
			return tw.Flush()
		},
	}
}
