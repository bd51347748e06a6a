package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/brain-bican/bkbit/config"
	"github.com/brain-bican/bkbit/export"
	"github.com/brain-bican/bkbit/gff"
	"github.com/brain-bican/bkbit/graph"
	"github.com/brain-bican/bkbit/manifest"
	"github.com/brain-bican/bkbit/metrics"
	"github.com/brain-bican/bkbit/watch"
)

// gffFlags carries the annotation-release identity supplied on the command
// line.
type gffFlags struct {
	taxonID         string
	assemblyID      string
	assemblyVersion string
	assemblyLabel   string
	assemblyStrain  string
	genomeLabel     string
	genomeVersion   string
	authority       string
	contentURL      string
	hashAlgorithms  []string
	featureTypes    []string
	output          string
	format          string
	publish         bool
}

func (f *gffFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.taxonID, "taxon-id", "t", "", "Numeric NCBI taxon ID, e.g. 9606")
	cmd.Flags().StringVarP(&f.assemblyID, "assembly-id", "a", "", "Genome assembly accession, e.g. GCF_000001405.40")
	cmd.Flags().StringVar(&f.assemblyVersion, "assembly-version", "", "Genome assembly version")
	cmd.Flags().StringVar(&f.assemblyLabel, "assembly-label", "", "Genome assembly display label")
	cmd.Flags().StringVarP(&f.assemblyStrain, "assembly-strain", "s", "", "Genome assembly strain")
	cmd.Flags().StringVar(&f.genomeLabel, "genome-label", "", "Annotation release label")
	cmd.Flags().StringVar(&f.genomeVersion, "genome-version", "", "Annotation release version")
	cmd.Flags().StringVar(&f.authority, "authority", "", "Annotation authority (NCBI or Ensembl)")
	cmd.Flags().StringVar(&f.contentURL, "content-url", "", "URL the source file was retrieved from")
	cmd.Flags().StringSliceVar(&f.hashAlgorithms, "hash", nil, "Checksum algorithms (SHA256, MD5, SHA1)")
	cmd.Flags().StringSliceVar(&f.featureTypes, "feature-type", nil, "GFF3 feature types to process")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&f.format, "format", "jsonld", "Output format (jsonld or turtle)")
	cmd.Flags().BoolVar(&f.publish, "publish", false, "Publish records to the graph ingest stream")

	_ = cmd.MarkFlagRequired("taxon-id")
	_ = cmd.MarkFlagRequired("authority")
	_ = cmd.MarkFlagRequired("genome-label")
	_ = cmd.MarkFlagRequired("genome-version")
	_ = cmd.MarkFlagRequired("assembly-id")
}

func gffCmd(app *appContext) *cobra.Command {
	var flags gffFlags

	cmd := &cobra.Command{
		Use:   "gff2jsonld SOURCE",
		Short: "Translate a GFF3 annotation release to JSON-LD",
		Long: `Translate a GFF3 genome-annotation file from NCBI or Ensembl into
gene-annotation records and serialize the full object graph.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := app.setup()
			if err != nil {
				return err
			}
			return runGFF(cmd.Context(), cfg, logger, &flags, args[0])
		},
	}

	flags.register(cmd)
	return cmd
}

// runGFF executes one end-to-end translation of a single source file.
func runGFF(ctx context.Context, cfg *config.Config, logger *slog.Logger, flags *gffFlags, source string) error {
	hashes := flags.hashAlgorithms
	if len(hashes) == 0 {
		hashes = cfg.Translator.HashAlgorithms
	}
	featureFilter := flags.featureTypes
	if len(featureFilter) == 0 {
		featureFilter = cfg.Translator.FeatureFilter
	}

	collector := metrics.NewCollector("bkbit")
	translator, err := gff.New(gff.Params{
		Source:          source,
		ContentURL:      flags.contentURL,
		TaxonID:         flags.taxonID,
		AssemblyID:      flags.assemblyID,
		AssemblyVersion: flags.assemblyVersion,
		AssemblyLabel:   flags.assemblyLabel,
		AssemblyStrain:  flags.assemblyStrain,
		GenomeLabel:     flags.genomeLabel,
		GenomeVersion:   flags.genomeVersion,
		Authority:       flags.authority,
		HashAlgorithms:  hashes,
	}, gff.WithLogger(logger), gff.WithMetrics(collector))
	if err != nil {
		return err
	}

	if err := translator.Parse(featureFilter); err != nil {
		return err
	}
	records := translator.Records()
	logger.Info("Translation complete",
		slog.String("source", source),
		slog.Int("records", len(records)))

	if err := writeRecords(records, flags.output, flags.format); err != nil {
		return err
	}

	if flags.publish {
		if cfg.Graph.URL == "" {
			return fmt.Errorf("graph.url is not configured, cannot publish")
		}
		conn, err := graph.Connect(cfg.Graph.URL)
		if err != nil {
			return err
		}
		defer conn.Close()
		publisher := graph.NewPublisher(conn, translator.GenomeAnnotation().ID)
		if err := publisher.PublishRecords(ctx, records); err != nil {
			return err
		}
		logger.Info("Published records to graph ingest stream",
			slog.String("subject", graph.IngestSubject),
			slog.Int("records", len(records)))
	}

	return nil
}

// writeRecords serializes the record graph to the selected destination.
func writeRecords(records []any, output, format string) error {
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch strings.ToLower(format) {
	case "jsonld", "json-ld":
		return export.WriteJSONLD(w, records)
	case "turtle", "ttl":
		return export.WriteTurtle(w, records)
	default:
		return fmt.Errorf("unknown format %q, use jsonld or turtle", format)
	}
}

func manifestCmd(app *appContext) *cobra.Command {
	var (
		workers      int
		listAliquots bool
		output       string
	)

	cmd := &cobra.Command{
		Use:   "filemanifest2jsonld PATTERN...",
		Short: "Translate specimen file manifests to digital-object records",
		Long: `Translate one or more file-manifest CSV exports into digital-object
records. Patterns support doublestar globs, e.g. 'manifests/**/*.csv'.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := app.setup()
			if err != nil {
				return err
			}
			if workers == 0 {
				workers = cfg.Translator.Workers
			}

			paths, err := manifest.ExpandGlobs(args)
			if err != nil {
				return err
			}

			var objects []manifest.DigitalObject
			specimens := make(map[string]bool)
			for _, path := range paths {
				result, err := manifest.Translate(path, workers)
				if err != nil {
					return err
				}
				logger.Info("Translated manifest",
					slog.String("path", path),
					slog.Int("objects", len(result.Objects)),
					slog.Int("specimens", len(result.SpecimenIDs)))
				objects = append(objects, result.Objects...)
				for _, id := range result.SpecimenIDs {
					specimens[id] = true
				}
			}

			if listAliquots {
				f, err := os.Create("file_manifest_library_aliquots.txt")
				if err != nil {
					return fmt.Errorf("create aliquot list: %w", err)
				}
				defer f.Close()
				for _, id := range sortedKeys(specimens) {
					fmt.Fprintln(f, id)
				}
			}

			var w io.Writer = os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer f.Close()
				w = f
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(objects)
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Worker pool size (0 = one per CPU)")
	cmd.Flags().BoolVar(&listAliquots, "list-library-aliquots", false, "Write the distinct specimen IDs to file_manifest_library_aliquots.txt")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func watchCmd(app *appContext) *cobra.Command {
	var flags gffFlags

	cmd := &cobra.Command{
		Use:   "watch DIR",
		Short: "Watch a drop directory and translate arriving annotation files",
		Long: `Watch a directory for new GFF3 files and translate each one as it
settles. Output is written next to the source file with a .jsonld suffix.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := app.setup()
			if err != nil {
				return err
			}

			watchCfg := watch.Config{
				Dir:           args[0],
				DebounceDelay: cfg.Watch.DebounceDelay,
				Extensions:    cfg.Watch.Extensions,
			}
			handler := func(ctx context.Context, path string) error {
				out := outputPathFor(path)
				perFile := flags
				perFile.output = out
				if err := runGFF(ctx, cfg, logger, &perFile, path); err != nil {
					return err
				}
				logger.Info("Wrote translation", slog.String("output", out))
				return nil
			}

			watcher, err := watch.New(watchCfg, handler, logger)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			if err := watcher.Run(ctx); err != nil && err != context.Canceled {
				return err
			}
			logger.Info("Watch stopped")
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// outputPathFor derives the JSON-LD output path for a watched source file.
func outputPathFor(source string) string {
	base := strings.TrimSuffix(source, ".gz")
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + ".jsonld"
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
