package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"transtools/internal/config"
	"transtools/internal/filewalker"
	"transtools/internal/graphexport"
	"transtools/internal/parser"
	"transtools/internal/progress"
	"transtools/internal/record"
	"transtools/internal/report"
	"transtools/internal/store"
	"transtools/internal/strref"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Load()
	applyLogging(cfg)

	rootCmd := &cobra.Command{
		Use:   "transtools",
		Short: "String extraction and translation tracking for Infinity Engine games",
		Long:  "Extracts translatable string IDs from Infinity Engine game exports (dialogs, scripts, items, creatures, tables) and produces grouped listings, cross-reference reports and translation progress charts.",
	}

	rootCmd.AddCommand(dialogsCmd(cfg))
	rootCmd.AddCommand(itemsCmd(cfg))
	rootCmd.AddCommand(creaturesCmd(cfg))
	rootCmd.AddCommand(tablesCmd(cfg))
	rootCmd.AddCommand(progressCmd())
	rootCmd.AddCommand(exportGraphCmd(cfg))
	rootCmd.AddCommand(exportRunCmd(cfg))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// applyLogging adjusts the global logger from configuration: an explicit
// level, and an optional rotating log file next to the console writer.
func applyLogging(cfg *config.Config) {
	if cfg.LogLevel != "" {
		if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
			zerolog.SetGlobalLevel(lvl)
		} else {
			log.Warn().Str("level", cfg.LogLevel).Msg("Unknown log level, keeping default")
		}
	}
	if cfg.LogFile != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    20, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		log.Logger = log.Output(zerolog.MultiLevelWriter(
			zerolog.ConsoleWriter{Out: os.Stderr},
			fileWriter,
		))
	}
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// connectPostgres opens and pings a connection pool.
func connectPostgres(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	log.Info().Msg("Connected to PostgreSQL")
	return pool, nil
}

// connectNeo4j opens and verifies a driver.
func connectNeo4j(ctx context.Context, cfg *config.Config) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""))
	if err != nil {
		return nil, fmt.Errorf("connect Neo4j: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("verify Neo4j connectivity: %w", err)
	}
	log.Info().Msg("Connected to Neo4j")
	return driver, nil
}

type dialogOptions struct {
	min, max  int
	dot       bool
	svg       bool
	storeRun  bool
	graphPush bool
}

func dialogsCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dialogs <d-folder> <baf-folder> <output-dir>",
		Short: "Parse dialog and script exports into grouped string listings",
		Long: `Parses the D (dialog) and BAF (script) text exports, builds the string
graph, partitions it into connected groups and writes DialogGroups.txt
plus a cross-linked HTML overview of all dialog trees.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts dialogOptions
			opts.min, _ = cmd.Flags().GetInt("min")
			opts.max, _ = cmd.Flags().GetInt("max")
			opts.dot, _ = cmd.Flags().GetBool("dot")
			opts.svg, _ = cmd.Flags().GetBool("svg")
			opts.storeRun, _ = cmd.Flags().GetBool("store")
			opts.graphPush, _ = cmd.Flags().GetBool("graph")
			return runDialogs(cfg, args[0], args[1], args[2], opts)
		},
	}

	cmd.Flags().Int("min", cfg.RangeMin, "lowest string ID of the translation range")
	cmd.Flags().Int("max", cfg.RangeMax, "highest string ID of the translation range")
	cmd.Flags().Bool("dot", false, "write a Graphviz DOT file of the dialog graph")
	cmd.Flags().Bool("svg", false, "render the dialog graph to SVG (implies --dot)")
	cmd.Flags().Bool("store", false, "persist the extraction run to PostgreSQL")
	cmd.Flags().Bool("graph", false, "mirror the string graph into Neo4j")

	return cmd
}

// buildRegistry walks the D and BAF folders and runs the parse stages.
// Content before structure: GOTO and EXTERN targets resolve through the
// internal-ID map the content pass fills in. Script passes run last so
// dialogs keep precedence on contested IDs.
func buildRegistry(ctx context.Context, dFolder, bafFolder string) (*strref.Registry, int, int, error) {
	dFiles, err := filewalker.New(".d").Walk(dFolder)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("walk dialog folder: %w", err)
	}
	bafFiles, err := filewalker.New(".baf").Walk(bafFolder)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("walk script folder: %w", err)
	}

	reg := strref.New()
	stages := []struct {
		p     parser.Parser
		files []string
	}{
		{parser.NewDialogContentParser(reg), dFiles},
		{parser.NewDialogStructureParser(reg), dFiles},
		{parser.NewScriptContentParser(reg), bafFiles},
		{parser.NewScriptContentParser(reg), dFiles},
		{parser.NewScriptStructureParser(reg), bafFiles},
		{parser.NewScriptStructureParser(reg), dFiles},
	}
	for _, stage := range stages {
		for i, path := range stage.files {
			select {
			case <-ctx.Done():
				return nil, 0, 0, ctx.Err()
			default:
			}
			log.Debug().
				Str("stage", string(stage.p.Stage())).
				Str("file", filepath.Base(path)).
				Int("n", i+1).
				Int("of", len(stage.files)).
				Msg("Parsing")
			if err := stage.p.Parse(path); err != nil {
				return nil, 0, 0, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	log.Info().Int("strings", reg.Len()).Msg("Parsed string graph")
	return reg, len(dFiles), len(bafFiles), nil
}

// runDialogs handles the `dialogs` command.
func runDialogs(cfg *config.Config, dFolder, bafFolder, outputDir string, opts dialogOptions) error {
	ctx, cancel := setupContext()
	defer cancel()

	reg, dCount, bafCount, err := buildRegistry(ctx, dFolder, bafFolder)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	reg.ChopToRange(opts.min, opts.max)
	groups := strref.Partition(reg, opts.min, opts.max)
	log.Info().Int("groups", len(groups)).Int("strings", reg.Len()).Msg("Partitioned string graph")

	if err := writeFile(filepath.Join(outputDir, "DialogGroups.txt"), func(f *os.File) error {
		return report.WriteGroups(f, groups)
	}); err != nil {
		return err
	}

	if err := writeFile(filepath.Join(outputDir, "DialogOverview.html"), func(f *os.File) error {
		return report.WriteOverview(f, reg, "Dialog overview")
	}); err != nil {
		return err
	}

	if opts.dot || opts.svg {
		dot := report.ToDOT(reg)
		if err := os.WriteFile(filepath.Join(outputDir, "Dialogs.dot"), []byte(dot), 0644); err != nil {
			return fmt.Errorf("write DOT file: %w", err)
		}
		if opts.svg {
			svg, err := report.RenderSVG(ctx, dot)
			if err != nil {
				return fmt.Errorf("render SVG: %w", err)
			}
			if err := os.WriteFile(filepath.Join(outputDir, "Dialogs.svg"), svg, 0644); err != nil {
				return fmt.Errorf("write SVG file: %w", err)
			}
		}
	}

	if opts.storeRun {
		pool, err := connectPostgres(ctx, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		st := store.New(pool)
		if err := st.EnsureSchema(ctx); err != nil {
			return err
		}
		runID, err := st.SaveRun(ctx, reg, groups, opts.min, opts.max)
		if err != nil {
			return fmt.Errorf("save extraction run: %w", err)
		}
		log.Info().Str("run", runID).Msg("Extraction run stored")
	}

	if opts.graphPush {
		driver, err := connectNeo4j(ctx, cfg)
		if err != nil {
			return err
		}
		defer driver.Close(ctx)

		exporter := graphexport.New(driver)
		if err := exporter.EnsureSchema(ctx); err != nil {
			return err
		}
		if err := exporter.Export(ctx, reg); err != nil {
			return fmt.Errorf("export graph: %w", err)
		}
	}

	log.Info().
		Int("dialog_files", dCount).
		Int("script_files", bafCount).
		Str("output", outputDir).
		Msg("Dialog extraction complete")

	return nil
}

func exportGraphCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-graph <d-folder> <baf-folder>",
		Short: "Mirror the parsed string graph into Neo4j",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			min, _ := cmd.Flags().GetInt("min")
			max, _ := cmd.Flags().GetInt("max")
			return runExportGraph(cfg, args[0], args[1], min, max)
		},
	}
	addRangeFlags(cmd, cfg)
	return cmd
}

// runExportGraph handles the `export-graph` command.
func runExportGraph(cfg *config.Config, dFolder, bafFolder string, min, max int) error {
	ctx, cancel := setupContext()
	defer cancel()

	reg, _, _, err := buildRegistry(ctx, dFolder, bafFolder)
	if err != nil {
		return err
	}
	reg.ChopToRange(min, max)

	driver, err := connectNeo4j(ctx, cfg)
	if err != nil {
		return err
	}
	defer driver.Close(ctx)

	exporter := graphexport.New(driver)
	if err := exporter.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := exporter.Export(ctx, reg); err != nil {
		return fmt.Errorf("export graph: %w", err)
	}
	return nil
}

func itemsCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items <itm-folder> <output-dir>",
		Short: "Extract string IDs from ITM files into Items.txt and Items.csv",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			min, _ := cmd.Flags().GetInt("min")
			max, _ := cmd.Flags().GetInt("max")
			return runItems(cfg, args[0], args[1], min, max)
		},
	}
	addRangeFlags(cmd, cfg)
	return cmd
}

// runItems handles the `items` command.
func runItems(cfg *config.Config, folder, outputDir string, min, max int) error {
	ctx, cancel := setupContext()
	defer cancel()

	paths, err := filewalker.New(".itm").Walk(folder)
	if err != nil {
		return fmt.Errorf("walk item folder: %w", err)
	}

	items, err := record.DecodeItems(ctx, paths, cfg.WorkerCount)
	if err != nil {
		return fmt.Errorf("decode items: %w", err)
	}
	items = record.ChopItems(items, min, max)
	log.Info().Int("files", len(paths)).Int("in_range", len(items)).Msg("Decoded items")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := writeFile(filepath.Join(outputDir, "Items.txt"), func(f *os.File) error {
		return report.WriteItemsTXT(f, items, min, max)
	}); err != nil {
		return err
	}
	return writeFile(filepath.Join(outputDir, "Items.csv"), func(f *os.File) error {
		return report.WriteItemsCSV(f, items, min, max)
	})
}

func creaturesCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "creatures <cre-folder> <output-dir>",
		Short: "Extract string IDs from CRE files into Creatures.txt and Creatures.csv",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			min, _ := cmd.Flags().GetInt("min")
			max, _ := cmd.Flags().GetInt("max")
			return runCreatures(cfg, args[0], args[1], min, max)
		},
	}
	addRangeFlags(cmd, cfg)
	return cmd
}

// runCreatures handles the `creatures` command.
func runCreatures(cfg *config.Config, folder, outputDir string, min, max int) error {
	ctx, cancel := setupContext()
	defer cancel()

	paths, err := filewalker.New(".cre").Walk(folder)
	if err != nil {
		return fmt.Errorf("walk creature folder: %w", err)
	}

	creatures, err := record.DecodeCreatures(ctx, paths, cfg.WorkerCount)
	if err != nil {
		return fmt.Errorf("decode creatures: %w", err)
	}
	creatures = record.ChopCreatures(creatures, min, max)
	log.Info().Int("files", len(paths)).Int("in_range", len(creatures)).Msg("Decoded creatures")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := writeFile(filepath.Join(outputDir, "Creatures.txt"), func(f *os.File) error {
		return report.WriteCreaturesTXT(f, creatures, min, max)
	}); err != nil {
		return err
	}
	return writeFile(filepath.Join(outputDir, "Creatures.csv"), func(f *os.File) error {
		return report.WriteCreaturesCSV(f, creatures, min, max)
	})
}

func tablesCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables <2da-folder> <output-dir>",
		Short: "Extract string IDs from 2DA tables into Tables.txt and Tables.csv",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			min, _ := cmd.Flags().GetInt("min")
			max, _ := cmd.Flags().GetInt("max")
			return runTables(cfg, args[0], args[1], min, max)
		},
	}
	addRangeFlags(cmd, cfg)
	return cmd
}

// runTables handles the `tables` command.
func runTables(cfg *config.Config, folder, outputDir string, min, max int) error {
	ctx, cancel := setupContext()
	defer cancel()

	paths, err := filewalker.New(".2da").Walk(folder)
	if err != nil {
		return fmt.Errorf("walk table folder: %w", err)
	}

	tables, err := record.DecodeTables(ctx, paths, cfg.WorkerCount)
	if err != nil {
		return fmt.Errorf("decode tables: %w", err)
	}
	tables = record.ChopTables(tables, min, max)
	log.Info().Int("files", len(paths)).Int("in_range", len(tables)).Msg("Decoded tables")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := writeFile(filepath.Join(outputDir, "Tables.txt"), func(f *os.File) error {
		return report.WriteTablesTXT(f, tables, min, max)
	}); err != nil {
		return err
	}
	return writeFile(filepath.Join(outputDir, "Tables.csv"), func(f *os.File) error {
		return report.WriteTablesCSV(f, tables, min, max)
	})
}

func progressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress <complete-csv> <output-dir>",
		Short: "Update the translation progress chart and history table",
		Long: `Reads the complete string export (CSV), merges the optional out-of-date
export and unused listing into per-string states, appends one column to
Progress.png and one row to Progress.txt in the output directory.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outOfDatePath, _ := cmd.Flags().GetString("out-of-date")
			unusedPath, _ := cmd.Flags().GetString("unused")
			suggestions, _ := cmd.Flags().GetInt("suggestions")
			ignoreUnused, _ := cmd.Flags().GetBool("ignore-unused")
			return runProgress(args[0], args[1], outOfDatePath, unusedPath, suggestions, ignoreUnused)
		},
	}

	cmd.Flags().String("out-of-date", "", "CSV export of out-of-date strings")
	cmd.Flags().String("unused", "", "TXT listing of unused strings")
	cmd.Flags().Int("suggestions", 0, "number of suggested (half-done) strings")
	cmd.Flags().Bool("ignore-unused", false, "exclude unused strings from the progress percentage")

	return cmd
}

// runProgress handles the `progress` command.
func runProgress(completePath, outputDir, outOfDatePath, unusedPath string, suggestions int, ignoreUnused bool) error {
	complete, err := readIDFile(completePath, progress.IDsFromCSV)
	if err != nil {
		return fmt.Errorf("read complete export: %w", err)
	}

	var outOfDate, unused []int
	if outOfDatePath != "" {
		if outOfDate, err = readIDFile(outOfDatePath, progress.IDsFromCSV); err != nil {
			return fmt.Errorf("read out-of-date export: %w", err)
		}
	}
	if unusedPath != "" {
		if unused, err = readIDFile(unusedPath, progress.IDsFromTXT); err != nil {
			return fmt.Errorf("read unused listing: %w", err)
		}
	}

	snap := progress.NewSnapshot(complete, outOfDate, unused)
	log.Info().
		Int("strings", snap.Len()).
		Int("accepted", snap.Count(progress.Accepted)).
		Int("out_of_date", snap.Count(progress.OutOfDate)).
		Int("unused", snap.Count(progress.Unused)).
		Msg("Merged progress snapshot")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := progress.PaintPNG(filepath.Join(outputDir, "Progress.png"), snap); err != nil {
		return fmt.Errorf("paint progress chart: %w", err)
	}
	if err := progress.AppendTable(filepath.Join(outputDir, "Progress.txt"), snap, suggestions, ignoreUnused, time.Now()); err != nil {
		return fmt.Errorf("append progress table: %w", err)
	}

	log.Info().Str("output", outputDir).Msg("Progress update complete")
	return nil
}

func exportRunCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-run <run-id> <output-path>",
		Short: "Export a stored extraction run from PostgreSQL",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			return runExportRun(cfg, args[0], args[1], format)
		},
	}

	cmd.Flags().String("format", "tsv", "Export format: tsv or json")

	return cmd
}

// runExportRun handles the `export-run` command.
func runExportRun(cfg *config.Config, runID, outputPath, format string) error {
	ctx, cancel := setupContext()
	defer cancel()

	pool, err := connectPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	st := store.New(pool)
	switch format {
	case "json":
		return st.ExportJSON(ctx, runID, outputPath)
	default:
		return st.ExportTSV(ctx, runID, outputPath)
	}
}

func addRangeFlags(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().Int("min", cfg.RangeMin, "lowest string ID of the translation range")
	cmd.Flags().Int("max", cfg.RangeMax, "highest string ID of the translation range")
}

// writeFile creates path and hands the open file to write.
func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// readIDFile opens path and parses it with the given reader.
func readIDFile(path string, parse func(r io.Reader) ([]int, error)) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parse(f)
}
