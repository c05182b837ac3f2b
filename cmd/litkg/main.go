package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"litkg/internal/config"
	"litkg/internal/export"
	"litkg/internal/graph"
	"litkg/internal/logging"
	"litkg/internal/ontology"
	"litkg/internal/pipeline"
	"litkg/internal/predict"
	"litkg/internal/storage"
)

var (
	rootCmd = &cobra.Command{
		Use:   "litkg",
		Short: "Literature co-occurrence knowledge graphs, validated against biomedical ontologies",
	}
	dbPath     string
	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "litkg.db", "Path to the local graph database (SQLite)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML configuration file")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(benchmarkCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(graphsCmd)
}

// setup loads configuration and wires the store, logger, and runner shared
// by every subcommand.
func setup() (*config.Config, *storage.SQLiteStore, *pipeline.Runner, *logging.Logger) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	if path := os.Getenv("LITKG_DB"); path != "" && !rootCmd.PersistentFlags().Changed("db") {
		dbPath = path
	}
	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database %s: %v", dbPath, err)
	}

	return cfg, store, pipeline.NewRunner(cfg, store, logger), logger
}

func sourceRefs(urls []string) []ontology.SourceRef {
	refs := make([]ontology.SourceRef, 0, len(urls))
	for _, u := range urls {
		refs = append(refs, ontology.SourceRef{URL: u})
	}
	return refs
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <records.json>",
	Short: "Build a co-occurrence graph from extracted entity records",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		graphName, _ := cmd.Flags().GetString("graph")
		snapshot, _ := cmd.Flags().GetString("snapshot")

		_, store, runner, logger := setup()
		defer store.Close()
		defer logger.Sync()

		fmt.Printf("📄 Ingesting records from %s...\n", args[0])
		start := time.Now()
		g, stats, err := runner.Ingest(context.Background(), args[0], graphName)
		if err != nil {
			log.Fatalf("Ingest failed: %v", err)
		}
		fmt.Printf("✅ Graph %q built in %v: %d nodes, %d edges (%d records, %d without entities).\n",
			g.Name, time.Since(start), g.NodeCount(), g.EdgeCount(), stats.Records, stats.Skipped)

		if snapshot != "" {
			if err := graph.SaveSnapshot(g, snapshot); err != nil {
				log.Fatalf("Failed to write snapshot: %v", err)
			}
			fmt.Printf("💾 Snapshot written to %s\n", snapshot)
		}
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a stored graph against ontology sources",
	Run: func(cmd *cobra.Command, args []string) {
		graphName, _ := cmd.Flags().GetString("graph")
		ontologies, _ := cmd.Flags().GetStringArray("ontology")
		jsonPath, _ := cmd.Flags().GetString("json")

		_, store, runner, logger := setup()
		defer store.Close()
		defer logger.Sync()

		ctx := context.Background()
		g, err := store.LoadGraph(ctx, graphName)
		if err != nil {
			log.Fatalf("Failed to load graph %q: %v", graphName, err)
		}

		fmt.Printf("🔎 Validating graph %q (%d nodes, %d edges)...\n", g.Name, g.NodeCount(), g.EdgeCount())
		report, runID, err := runner.Validate(ctx, g, sourceRefs(ontologies))
		if err != nil {
			log.Fatalf("Validation failed: %v", err)
		}

		fmt.Printf("📊 Nodes: %d valid, %d invalid, precision %.3f\n",
			report.ValidNodes, report.InvalidNodes, report.Precision)
		if report.EdgeReport != nil {
			fmt.Printf("📊 Edges: %d strong, %d weak, avg distance %.2f\n",
				report.EdgeReport.ValidRels, report.EdgeReport.WeakRels, report.EdgeReport.AvgDistance)
		} else {
			fmt.Println("⚠️  No ontology available; edge validation not attempted.")
		}
		if runID != "" {
			fmt.Printf("💾 Run recorded: %s\n", runID)
		}

		if jsonPath != "" {
			raw, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				log.Fatalf("Failed to encode report: %v", err)
			}
			if err := os.WriteFile(jsonPath, raw, 0644); err != nil {
				log.Fatalf("Failed to write report: %v", err)
			}
			fmt.Printf("💾 Report written to %s\n", jsonPath)
		}
	},
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Rank candidate edges of a stored graph by a structural predictor",
	Run: func(cmd *cobra.Command, args []string) {
		graphName, _ := cmd.Flags().GetString("graph")
		strategy, _ := cmd.Flags().GetString("strategy")
		topK, _ := cmd.Flags().GetInt("top")
		merge, _ := cmd.Flags().GetBool("merge")

		_, store, runner, logger := setup()
		defer store.Close()
		defer logger.Sync()

		ctx := context.Background()
		g, err := store.LoadGraph(ctx, graphName)
		if err != nil {
			log.Fatalf("Failed to load graph %q: %v", graphName, err)
		}

		predictions, extended, err := runner.Predict(ctx, g, strategy, topK, merge)
		if err != nil {
			log.Fatalf("Prediction failed: %v", err)
		}

		fmt.Printf("🔮 Top %d candidate edges:\n", len(predictions))
		for i, p := range predictions {
			fmt.Printf("%3d. %s -- %s  (%.4f)\n", i+1, p.Source, p.Target, p.Score)
		}
		if extended != nil {
			fmt.Printf("💾 Extended graph %q saved: %d edges.\n", extended.Name, extended.EdgeCount())
		}
	},
}

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Validate a stored graph against each ontology source in isolation",
	Run: func(cmd *cobra.Command, args []string) {
		graphName, _ := cmd.Flags().GetString("graph")
		ontologies, _ := cmd.Flags().GetStringArray("ontology")

		_, store, runner, logger := setup()
		defer store.Close()
		defer logger.Sync()

		ctx := context.Background()
		g, err := store.LoadGraph(ctx, graphName)
		if err != nil {
			log.Fatalf("Failed to load graph %q: %v", graphName, err)
		}

		fmt.Printf("🧪 Benchmarking graph %q...\n", g.Name)
		rows, err := runner.Benchmark(ctx, g, sourceRefs(ontologies))
		if err != nil {
			log.Fatalf("Benchmark failed: %v", err)
		}

		fmt.Printf("%-30s %10s %10s %10s %10s %10s\n",
			"SOURCE", "CONCEPTS", "VALID", "INVALID", "PRECISION", "AVG DIST")
		for _, row := range rows {
			if row.Error != "" {
				fmt.Printf("%-30s failed: %s\n", row.Source, row.Error)
				continue
			}
			fmt.Printf("%-30s %10d %10d %10d %10.3f %10.2f\n",
				row.Source, row.Concepts, row.ValidNodes, row.InvalidNodes, row.Precision, row.AvgDistance)
		}
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a stored graph to Neo4j",
	Run: func(cmd *cobra.Command, args []string) {
		graphName, _ := cmd.Flags().GetString("graph")

		cfg, store, _, logger := setup()
		defer store.Close()
		defer logger.Sync()

		ctx := context.Background()
		g, err := store.LoadGraph(ctx, graphName)
		if err != nil {
			log.Fatalf("Failed to load graph %q: %v", graphName, err)
		}

		exporter, err := export.NewExporter(ctx, export.Config{
			URI:      cfg.Neo4j.URI,
			User:     cfg.Neo4j.User,
			Password: cfg.Neo4j.Password,
			Database: cfg.Neo4j.Database,
		}, logger)
		if err != nil {
			log.Fatalf("Failed to connect to Neo4j: %v", err)
		}
		defer exporter.Close(ctx)

		nodes, rels, err := exporter.ExportGraph(ctx, g)
		if err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		fmt.Printf("🚀 Exported %d nodes and %d relations from graph %q.\n", nodes, rels, g.Name)
	},
}

var graphsCmd = &cobra.Command{
	Use:   "graphs",
	Short: "List stored graphs",
	Run: func(cmd *cobra.Command, args []string) {
		_, store, _, logger := setup()
		defer store.Close()
		defer logger.Sync()

		infos, err := store.ListGraphs(context.Background())
		if err != nil {
			log.Fatalf("Failed to list graphs: %v", err)
		}
		if len(infos) == 0 {
			fmt.Println("No graphs stored yet.")
			return
		}
		for _, info := range infos {
			fmt.Printf("%-20s %6d nodes %6d edges  updated %s\n",
				info.Name, info.Nodes, info.Edges, info.UpdatedAt.Format(time.RFC3339))
		}
	},
}

func init() {
	ingestCmd.Flags().String("graph", "default", "Name the graph is stored under")
	ingestCmd.Flags().String("snapshot", "", "Optional JSON snapshot output path")

	validateCmd.Flags().String("graph", "default", "Stored graph to validate")
	validateCmd.Flags().StringArray("ontology", nil, "Ontology source URL or path (repeatable; defaults to config)")
	validateCmd.Flags().String("json", "", "Optional path for the full JSON report")

	predictCmd.Flags().String("graph", "default", "Stored graph to predict on")
	predictCmd.Flags().String("strategy", "", fmt.Sprintf("Prediction strategy (%v)", predict.Strategies()))
	predictCmd.Flags().Int("top", 0, "Number of candidates to keep (defaults to config)")
	predictCmd.Flags().Bool("merge", false, "Merge predictions into a '<graph>-extended' graph")

	benchmarkCmd.Flags().String("graph", "default", "Stored graph to benchmark")
	benchmarkCmd.Flags().StringArray("ontology", nil, "Ontology source URL or path (repeatable; defaults to config)")

	exportCmd.Flags().String("graph", "default", "Stored graph to export")
}
