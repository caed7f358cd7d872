package main

import (
	"context"
	"os"

	apportion "github.com/k-donn/go-apportion"
	"github.com/k-donn/go-apportion/census"
	"github.com/k-donn/go-apportion/hh"
	leveldb "github.com/ipfs/go-ds-leveldb"
	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

// maxSubscriptionBuffer caps the capacity of the snapshot subscription
// channel. The bus drops and closes a subscriber whose channel is full, so
// runs short enough to fit get a buffer covering every step, while longer
// runs depend on the consumer keeping pace.
const maxSubscriptionBuffer = 1024

var runCmd = cli.Command{
	Name:  "run",
	Usage: "plays an apportionment run over a census dataset",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "dataset",
			Usage: "path to the census CSV file, overriding the manifest",
		},
		&cli.StringFlag{
			Name:  "output",
			Value: "text",
			Usage: "step output format, one of text, json or jsonl",
		},
		&cli.DurationFlag{
			Name:  "interval",
			Usage: "pause between steps, overriding the manifest",
		},
		&cli.Uint64Flag{
			Name:  "steps",
			Usage: "number of seats to allocate, overriding the manifest",
		},
		&cli.PathFlag{
			Name:  "store",
			Usage: "directory to keep run state in, a temporary one when unset",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "log each seat selection",
		},
	},
	Action: func(c *cli.Context) error {
		ctx := c.Context

		level := "error"
		if c.Bool("verbose") {
			level = "debug"
		}
		if err := logging.SetLogLevelRegex("apportion.*", level); err != nil {
			return xerrors.Errorf("setting log level: %w", err)
		}

		m, err := getManifest(c)
		if err != nil {
			return xerrors.Errorf("loading manifest: %w", err)
		}
		if c.IsSet("dataset") {
			m.Dataset = c.String("dataset")
		}
		if c.IsSet("interval") {
			m.PlaybackInterval = c.Duration("interval")
		}
		if c.IsSet("steps") {
			m.Steps = c.Uint64("steps")
		}

		entries, err := census.LoadEntries(m.Dataset)
		if err != nil {
			return xerrors.Errorf("loading census dataset: %w", err)
		}

		storePath := c.Path("store")
		if storePath == "" {
			storePath, err = os.MkdirTemp("", "apportion-*")
			if err != nil {
				return xerrors.Errorf("creating temp dir: %w", err)
			}
		}
		ds, err := leveldb.NewDatastore(storePath, nil)
		if err != nil {
			return xerrors.Errorf("creating a datastore: %w", err)
		}
		defer func() { _ = ds.Close() }()

		runner, err := apportion.New(ctx, *m, entries, ds)
		if err != nil {
			return xerrors.Errorf("assembling run: %w", err)
		}

		w, err := newStepWriter(c.String("output"), c.App.Writer)
		if err != nil {
			return err
		}

		_, total := runner.Progress()
		ch := make(chan *hh.StepSnapshot, subscriptionBuffer(total))
		_, closer := runner.SubscribeForNewSnapshots(ch)
		defer closer()

		errgrp, gctx := errgroup.WithContext(ctx)
		errgrp.Go(func() error { return runner.Run(gctx) })
		errgrp.Go(func() error { return consumeSteps(gctx, ch, w, total) })

		return multierr.Combine(errgrp.Wait(), w.Close())
	},
}

func subscriptionBuffer(total uint64) int {
	if total < maxSubscriptionBuffer {
		return int(total + 1)
	}
	return maxSubscriptionBuffer
}

// consumeSteps renders snapshots off the subscription channel until total
// steps have been written, the bus has dropped the subscription, or the
// context ends.
func consumeSteps(ctx context.Context, ch <-chan *hh.StepSnapshot, w stepWriter, total uint64) error {
	for received := uint64(0); received < total; received++ {
		select {
		case snapshot, ok := <-ch:
			if !ok {
				return xerrors.Errorf("snapshot subscription fell behind after %d of %d steps", received, total)
			}
			if err := w.WriteStep(snapshot); err != nil {
				return xerrors.Errorf("writing step %d: %w", snapshot.Step, err)
			}
		case <-ctx.Done():
			return nil
		}
	}
	return nil
}
