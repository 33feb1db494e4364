package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/quoterag/internal/bootstrap"
	"github.com/kailas-cloud/quoterag/internal/config"
	"github.com/kailas-cloud/quoterag/internal/corpus"
	"github.com/kailas-cloud/quoterag/internal/domain"
	"github.com/kailas-cloud/quoterag/internal/index"
	logpkg "github.com/kailas-cloud/quoterag/internal/logger"
	"github.com/kailas-cloud/quoterag/internal/metrics"
	"github.com/kailas-cloud/quoterag/internal/version"
)

type preloadOptions struct {
	out    string
	append bool
	dryRun bool
}

func newRootCmd() *cobra.Command {
	var opts preloadOptions

	root := &cobra.Command{
		Use:           "quoterag-preload",
		Short:         "Build the historical quote index snapshot",
		Long:          `Embeds the Banco Central del Paraguay quotes of 2025-08-07, 2025-08-08 and 2025-08-11 and saves them as an index snapshot.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env := config.GetEnv()
			cfg, err := config.Load(env)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if opts.out == "" {
				opts.out = cfg.Index.SnapshotPath
			}

			docs, err := corpus.Documents(corpus.BCP())
			if err != nil {
				return fmt.Errorf("build corpus: %w", err)
			}
			if opts.dryRun {
				return printDocuments(cmd.OutOrStdout(), docs)
			}

			logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			metrics.RegisterEmbeddingMetrics()
			metrics.RegisterPipelineMetrics()

			ctx := cmd.Context()
			store, err := bootstrap.OpenCache(ctx, cfg.Cache, logger)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			docEmbedder, queryEmbedder := bootstrap.Embedders(cfg, store, logger)
			idx := index.New(docEmbedder).WithQueryEmbedder(queryEmbedder).WithLogger(logger)

			added, err := preload(ctx, idx, docs, opts)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Index preloaded with %d new documents (%d total): %s\n",
				added, idx.Len(), opts.out)
			return nil
		},
	}

	root.Flags().StringVarP(&opts.out, "out", "o", "", "snapshot path (default: index.snapshot_path from config)")
	root.Flags().BoolVar(&opts.append, "append", false, "load the existing snapshot and add only missing documents")
	root.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the documents without embedding or saving")

	root.AddCommand(newQueryCmd())
	return root
}

// preload embeds docs into idx and saves the snapshot. In append mode the
// existing snapshot is loaded first and documents already present are skipped.
// It returns the number of documents embedded.
func preload(ctx context.Context, idx *index.Index, docs []domain.Document, opts preloadOptions) (int, error) {
	if opts.append {
		if err := idx.Load(opts.out); err != nil && !errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("load existing snapshot: %w", err)
		}
		docs = missing(idx.Documents(), docs)
	}

	if err := idx.AddDocuments(ctx, docs); err != nil {
		return 0, fmt.Errorf("embed corpus: %w", err)
	}
	if err := idx.Save(opts.out); err != nil {
		return 0, fmt.Errorf("save snapshot: %w", err)
	}
	return len(docs), nil
}

// missing returns the docs whose id is not in existing, in order.
func missing(existing, docs []domain.Document) []domain.Document {
	have := make(map[string]struct{}, len(existing))
	for _, d := range existing {
		have[d.ID] = struct{}{}
	}
	var out []domain.Document
	for _, d := range docs {
		if _, ok := have[d.ID]; !ok {
			out = append(out, d)
		}
	}
	return out
}

func printDocuments(w io.Writer, docs []domain.Document) error {
	for _, d := range docs {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", d.ID, d.Text); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d documents\n", len(docs))
	return err
}

func newQueryCmd() *cobra.Command {
	var (
		snapshot string
		k        int
	)

	cmd := &cobra.Command{
		Use:   "query [text]",
		Short: "Query a snapshot and print the nearest documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := config.GetEnv()
			cfg, err := config.Load(env)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if snapshot == "" {
				snapshot = cfg.Index.SnapshotPath
			}

			metrics.RegisterEmbeddingMetrics()
			metrics.RegisterPipelineMetrics()

			docEmbedder, queryEmbedder := bootstrap.Embedders(cfg, nil, zap.NewNop())
			idx := index.New(docEmbedder).WithQueryEmbedder(queryEmbedder)
			if err := idx.Load(snapshot); err != nil {
				return err
			}

			results, err := idx.Query(cmd.Context(), args[0], k)
			if err != nil {
				return err
			}
			for _, r := range results {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%.4f\t%s\t%s\n", r.Score, r.Doc.ID, r.Doc.Text)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&snapshot, "snapshot", "s", "", "snapshot path (default: index.snapshot_path from config)")
	cmd.Flags().IntVarP(&k, "top-k", "k", 5, "number of documents to return")
	return cmd
}
