package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/JonMunkholm/listimport/internal/application"
	"github.com/JonMunkholm/listimport/internal/config"
	"github.com/JonMunkholm/listimport/internal/core"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// runOptions are the flags of the run subcommand.
type runOptions struct {
	collection string
	owner      string
	id         string
	policy     string
	mapping    string
}

// request validates the flags and builds the import request. The file
// body is attached by the caller.
func (o runOptions) request() (core.ImportRequest, error) {
	var req core.ImportRequest

	if o.collection == "" {
		return req, errors.New("--collection is required")
	}
	owner, err := uuid.Parse(o.owner)
	if err != nil {
		return req, fmt.Errorf("--owner must be a UUID: %w", err)
	}
	var target uuid.UUID
	if o.id != "" {
		if target, err = uuid.Parse(o.id); err != nil {
			return req, fmt.Errorf("--id must be a UUID: %w", err)
		}
	}
	policy, err := core.ParseDuplicatePolicy(o.policy)
	if err != nil {
		return req, err
	}
	mapping, err := parseMappingFlag(o.mapping)
	if err != nil {
		return req, err
	}

	return core.ImportRequest{
		Collection: o.collection,
		Ref:        core.CollectionRef{OwnerID: owner, CollectionID: target},
		Policy:     policy,
		Mapping:    mapping,
	}, nil
}

func newRunCommand(opts *rootOptions) *cobra.Command {
	var ro runOptions

	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Import a file into a watchlist, list or playlist",
		Long: `Import a list file into one collection and print the report.

Rows that fail are reported and skipped; the rest of the file is still
imported. Press Ctrl+C to stop early and keep the rows already written.

Examples:
  listimport run --collection watchlist --owner $USER_ID ratings.csv
  listimport run --collection playlist --owner $USER_ID --id $PLAYLIST_ID --policy update export.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := ro.request()
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := application.Open(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			req.FileName = filepath.Base(args[0])
			req.Data = f

			job, err := app.Service.Import(ctx, req)
			if job == nil {
				if err == nil {
					err = errors.New("import returned no result")
				}
				return errors.New(core.FormatUserError(err))
			}

			if opts.json {
				if werr := writeJSON(cmd, job); werr != nil {
					return werr
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), renderReport(job))
			}

			if err != nil {
				if errors.Is(err, context.Canceled) {
					return fmt.Errorf("import stopped after %d of %d rows: %w", job.Report.Processed(), job.TotalRows, err)
				}
				return errors.New(core.FormatUserError(err))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&ro.collection, "collection", "", "Collection type (watchlist, list, playlist)")
	cmd.Flags().StringVar(&ro.owner, "owner", "", "Owner user id")
	cmd.Flags().StringVar(&ro.id, "id", "", "Target list or playlist id (not used for the watchlist)")
	cmd.Flags().StringVar(&ro.policy, "policy", "skip", "Duplicate policy (skip, update)")
	cmd.Flags().StringVar(&ro.mapping, "mapping", "", `Column mapping override as JSON, e.g. {"title":0}`)
	_ = cmd.MarkFlagRequired("collection")
	_ = cmd.MarkFlagRequired("owner")

	return cmd
}
