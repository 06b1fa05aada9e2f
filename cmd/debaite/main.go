package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/debaite/debaite/internal/config"
	"github.com/debaite/debaite/internal/core"
	"github.com/debaite/debaite/internal/drift"
	"github.com/debaite/debaite/internal/engine"
	"github.com/debaite/debaite/internal/export"
	"github.com/debaite/debaite/internal/knowledge"
	"github.com/debaite/debaite/internal/observability"
	"github.com/debaite/debaite/internal/persona"
	"github.com/debaite/debaite/internal/storage"
	"github.com/debaite/debaite/provider"
	"github.com/debaite/debaite/web/handlers"
)

var (
	dbPath    string
	cfgPath   string
	verbose   bool
	appConfig *config.Config
	metrics   *observability.Metrics
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "debaite",
	Short: "Multi-agent AI debate orchestrator",
	Long: `debaite orchestrates structured debates between AI agents.

Agents with distinct personas argue a topic through opening statements,
rebuttal rounds and closing arguments, with configurable context modes
that trade token cost against fidelity.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		var err error
		if cfgPath != "" {
			appConfig, err = config.LoadFrom(cfgPath)
		} else {
			appConfig, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		metrics = observability.Default("debaite")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default: ~/.debaite/debaite.db)")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file path (default: ~/.debaite/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(personasCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
}

func getStorage() (storage.Storage, error) {
	path := dbPath
	if path == "" {
		path = storage.DefaultDBPath()
	}

	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		return nil, err
	}

	if err := store.Initialize(); err != nil {
		return nil, err
	}

	return store, nil
}

func getRegistry() (*provider.Registry, error) {
	return appConfig.CreateRegistry()
}

func getPersonas() []persona.Template {
	if appConfig.Templates == "" {
		return nil
	}
	customs, err := persona.LoadFile(appConfig.Templates)
	if err != nil {
		slog.Warn("failed to load persona templates", "path", appConfig.Templates, "error", err)
		return nil
	}
	return customs
}

func getRetriever() knowledge.Retriever {
	if appConfig.Knowledge == "" {
		return nil
	}
	return knowledge.NewFileRetriever(appConfig.Knowledge)
}

// findDebateByPrefix resolves a (possibly abbreviated) debate ID.
func findDebateByPrefix(store storage.Storage, prefix string) (string, error) {
	summaries, err := store.ListDebates(500, 0)
	if err != nil {
		return "", err
	}

	var matches []string
	for _, s := range summaries {
		if strings.HasPrefix(s.ID, prefix) {
			matches = append(matches, s.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no debate found with ID %s", prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ambiguous ID %s matches %d debates", prefix, len(matches))
	}
}

// ============================================================================
// NEW COMMAND
// ============================================================================

var newCmd = &cobra.Command{
	Use:   "new [topic]",
	Short: "Start a new debate",
	Long: `Create and run a new debate on the given topic.

Participants are persona template IDs, comma-separated. Use
"debaite personas" to see what is available.

Examples:
  debaite new "Should AI diagnose patients?"
  debaite new "Universal basic income" -p economist,philosopher,startup_founder
  debaite new "Data privacy" --mode full --rounds 4
  debaite new "API design" --batched --provider openai`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNewDebate,
}

var (
	participantsFlag string
	modeFlag         string
	roundsFlag       int
	windowFlag       int
	summarizeFlag    int
	providerFlag     string
	modelFlag        string
	batchedFlag      bool
	wordLimitFlag    int
)

func init() {
	newCmd.Flags().StringVarP(&participantsFlag, "participants", "p", "medical_researcher,startup_founder,philosopher", "Comma-separated persona template IDs")
	newCmd.Flags().StringVar(&modeFlag, "mode", "", "Context mode: full, summarized, hybrid (default from config)")
	newCmd.Flags().IntVarP(&roundsFlag, "rounds", "r", 0, "Total rounds including opening and closing (default from config)")
	newCmd.Flags().IntVar(&windowFlag, "window", 0, "Sliding window size in rounds (default from config)")
	newCmd.Flags().IntVar(&summarizeFlag, "summarize-every", 0, "Compact after this many response turns (default from config)")
	newCmd.Flags().StringVar(&providerFlag, "provider", "", "Generation provider (default from config)")
	newCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Model override")
	newCmd.Flags().BoolVar(&batchedFlag, "batched", false, "Acquire each stage in a single provider call")
	newCmd.Flags().IntVar(&wordLimitFlag, "word-limit", 0, "Per-response word limit")
}

func runNewDebate(cmd *cobra.Command, args []string) error {
	topic := strings.Join(args, " ")
	defaults := appConfig.Defaults

	modeName := modeFlag
	if modeName == "" {
		modeName = defaults.Mode
	}
	mode, err := core.ParseContextMode(modeName)
	if err != nil {
		return err
	}

	maxRounds := roundsFlag
	if maxRounds == 0 {
		maxRounds = defaults.MaxRounds
	}
	providerName := providerFlag
	if providerName == "" {
		providerName = defaults.Provider
	}
	model := modelFlag
	if model == "" {
		model = defaults.Model
	}
	batched := batchedFlag || defaults.Batched
	windowSize := windowFlag
	if windowSize == 0 {
		windowSize = defaults.WindowSize
	}
	summarizeEvery := summarizeFlag
	if summarizeEvery == 0 {
		summarizeEvery = defaults.SummarizeEvery
	}

	customs := getPersonas()
	domains := knowledge.NewDomainMap(appConfig.Domains)
	var participants []core.Participant
	for _, id := range strings.Split(participantsFlag, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		t := persona.Resolve(id, customs)
		if t == nil {
			return fmt.Errorf("unknown persona template: %s (see: debaite personas)", id)
		}
		participants = append(participants, core.Participant{
			ID:        core.GenerateID(),
			Name:      t.Name,
			Persona:   t.Persona,
			Role:      t.Role,
			Expertise: t.Expertise,
			Style:     t.Style,
			Domain:    domains.DomainFor(t.Role),
		})
	}

	registry, err := getRegistry()
	if err != nil {
		return err
	}
	generator, err := registry.Get(providerName)
	if err != nil {
		return err
	}
	if !generator.Available() {
		return fmt.Errorf("provider %s is not available (missing CLI tool or API key)", providerName)
	}

	var wordLimits map[core.Stage]int
	if wordLimitFlag > 0 {
		wordLimits = map[core.Stage]int{
			core.StageOpening:  wordLimitFlag,
			core.StageRebuttal: wordLimitFlag,
			core.StageClosing:  wordLimitFlag,
		}
	}

	session, err := engine.New(engine.Config{
		Topic:          topic,
		Participants:   participants,
		Mode:           mode,
		MaxRounds:      maxRounds,
		WindowSize:     windowSize,
		SummarizeEvery: summarizeEvery,
		Batched:        batched,
		Model:          model,
		WordLimits:     wordLimits,
	}, engine.Deps{
		Generator: generator,
		Retriever: getRetriever(),
		Drift:     drift.NewController(drift.LexicalEmbedder{}, time.Now().UnixNano()),
		Metrics:   metrics,
	})
	if err != nil {
		return err
	}

	fmt.Printf("\n💬 Debate: %s\n", topic)
	fmt.Printf("   Mode: %s | Rounds: %d | Provider: %s", mode, maxRounds, providerName)
	if batched {
		fmt.Print(" | batched")
	}
	fmt.Println()
	for _, p := range participants {
		fmt.Printf("   • %s, %s %s\n", p.Name, p.Persona, p.Role)
	}
	fmt.Println(strings.Repeat("─", 60))

	session.SetCallbacks(engine.Callbacks{
		OnStageStart: func(stage core.Stage, round int) {
			fmt.Printf("\n━━━ Round %d: %s ━━━\n", round, stageTitle(stage))
		},
		OnTurn: func(res engine.StageResult) {
			fmt.Printf("\n📢 %s\n", res.Participant.Name)
			fmt.Println(strings.Repeat("─", 40))
			fmt.Println(res.Text)
			if res.Analysis != nil && res.Analysis.Corrected {
				fmt.Println("   (response reframed toward", res.Analysis.Domain, "domain)")
			}
		},
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\n\nInterrupted. Saving debate state...")
		cancel()
	}()

	record, runErr := session.Run(ctx)

	if record != nil {
		store, err := getStorage()
		if err != nil {
			return fmt.Errorf("debate finished but storage failed: %w", err)
		}
		defer store.Close()
		if err := store.SaveDebate(record); err != nil {
			return fmt.Errorf("failed to save debate: %w", err)
		}

		if record.Summary != "" {
			fmt.Printf("\n%s\n", strings.Repeat("═", 60))
			fmt.Println("📋 SUMMARY")
			fmt.Println(strings.Repeat("═", 60))
			fmt.Println(record.Summary)
		}
		fmt.Printf("\nSaved debate: %s\n", record.ID[:8])
	}

	if runErr != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("debate failed: %w", runErr)
	}
	return nil
}

func stageTitle(stage core.Stage) string {
	switch stage {
	case core.StageOpening:
		return "Opening Statements"
	case core.StageClosing:
		return "Closing Arguments"
	default:
		return "Rebuttals"
	}
}

// ============================================================================
// LIST COMMAND
// ============================================================================

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all debates",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := getStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		debates, err := store.ListDebates(50, 0)
		if err != nil {
			return err
		}

		if len(debates) == 0 {
			fmt.Println("No debates found. Start one with: debaite new \"Your topic\"")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTOPIC\tMODE\tAGENTS\tTURNS\tCREATED")

		for _, d := range debates {
			shortTopic := d.Topic
			if len(shortTopic) > 35 {
				shortTopic = shortTopic[:32] + "..."
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
				d.ID[:8],
				shortTopic,
				d.Mode,
				d.ParticipantCount,
				d.TurnCount,
				d.CreatedAt.Format("2006-01-02 15:04"),
			)
		}
		w.Flush()

		return nil
	},
}

// ============================================================================
// SHOW COMMAND
// ============================================================================

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show debate details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := getStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		id, err := findDebateByPrefix(store, args[0])
		if err != nil {
			return err
		}
		record, err := store.GetDebate(id)
		if err != nil {
			return err
		}
		if record == nil {
			return fmt.Errorf("debate not found: %s", id)
		}

		fmt.Printf("\n💬 Debate: %s\n", record.Topic)
		fmt.Printf("   ID: %s\n", record.ID)
		fmt.Printf("   Status: %s\n", record.Status)
		fmt.Printf("   Mode: %s\n", record.Mode)
		fmt.Printf("   Created: %s\n", record.CreatedAt.Format(time.RFC3339))
		for _, p := range record.Participants {
			fmt.Printf("   • %s, %s %s\n", p.Name, p.Persona, p.Role)
		}
		fmt.Println()

		maxRound := 0
		for _, t := range record.Turns {
			if t.Round > maxRound {
				maxRound = t.Round
			}
		}

		fmt.Println(strings.Repeat("─", 60))
		for _, turn := range record.Turns {
			if turn.IsSystem() {
				continue
			}
			fmt.Printf("\n📢 Round %d - %s\n", turn.Round, turn.Speaker)
			fmt.Println(strings.Repeat("─", 40))
			fmt.Println(turn.Text)
		}

		if record.Summary != "" {
			fmt.Printf("\n%s\n", strings.Repeat("═", 60))
			fmt.Println("📋 SUMMARY")
			fmt.Println(strings.Repeat("═", 60))
			fmt.Println(record.Summary)
		}

		return nil
	},
}

// ============================================================================
// DELETE COMMAND
// ============================================================================

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a debate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := getStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		id, err := findDebateByPrefix(store, args[0])
		if err != nil {
			return err
		}
		if err := store.DeleteDebate(id); err != nil {
			return err
		}

		fmt.Printf("Deleted debate: %s\n", id)
		return nil
	},
}

// ============================================================================
// EXPORT COMMAND
// ============================================================================

var exportCmd = &cobra.Command{
	Use:   "export [id] [format]",
	Short: "Export debate to file",
	Long: `Export a debate to markdown, PDF, or JSON.

Examples:
  debaite export abc123 markdown
  debaite export abc123 pdf
  debaite export abc123 json -o debate.json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := getStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		id, err := findDebateByPrefix(store, args[0])
		if err != nil {
			return err
		}
		record, err := store.GetDebate(id)
		if err != nil {
			return err
		}
		if record == nil {
			return fmt.Errorf("debate not found: %s", id)
		}

		format := export.Format(strings.ToLower(args[1]))
		exporter, err := export.GetExporter(format)
		if err != nil {
			return err
		}

		outputPath, _ := cmd.Flags().GetString("output")
		if outputPath == "" {
			outputPath = export.GenerateFilename(record, exporter.FileExtension())
		}

		file, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create file: %w", err)
		}
		defer file.Close()

		if err := exporter.Export(record, file); err != nil {
			return fmt.Errorf("failed to export: %w", err)
		}

		fmt.Printf("Exported to: %s\n", outputPath)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "Output file path")
}

// ============================================================================
// PERSONAS COMMAND
// ============================================================================

var personasCmd = &cobra.Command{
	Use:     "personas",
	Short:   "List available persona templates",
	Aliases: []string{"persona"},
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("\nBuilt-in Personas:")
		fmt.Println(strings.Repeat("─", 60))
		for _, t := range persona.Builtin() {
			fmt.Printf("\n%s (%s)\n", t.Name, t.ID)
			fmt.Printf("  %s %s", t.Persona, t.Role)
			if t.Expertise != "" {
				fmt.Printf(" — %s", t.Expertise)
			}
			fmt.Println()
			if t.Description != "" {
				fmt.Printf("  %s\n", t.Description)
			}
		}

		customs := getPersonas()
		if len(customs) > 0 {
			fmt.Println("\nCustom Personas:")
			fmt.Println(strings.Repeat("─", 60))
			for _, t := range customs {
				fmt.Printf("\n%s (%s)\n", t.Name, t.ID)
				fmt.Printf("  %s %s\n", t.Persona, t.Role)
			}
		}
		return nil
	},
}

// ============================================================================
// PROVIDERS COMMAND
// ============================================================================

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List configured AI providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := getRegistry()
		if err != nil {
			return err
		}

		fmt.Println("\nConfigured Providers:")
		fmt.Println(strings.Repeat("─", 50))

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSTATUS")

		for _, name := range registry.Names() {
			p, err := registry.Get(name)
			if err != nil {
				continue
			}
			status := "❌ Not available"
			if p.Available() {
				status = "✅ Available"
			}
			fmt.Fprintf(w, "%s\t%s\n", p.Name(), status)
		}
		w.Flush()
		return nil
	},
}

// ============================================================================
// CONFIG COMMAND
// ============================================================================

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print an example configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(config.GenerateExample())
	},
}

// ============================================================================
// SERVE COMMAND
// ============================================================================

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("port") && appConfig.Server.Port != 0 {
			servePort = appConfig.Server.Port
		}

		store, err := getStorage()
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer store.Close()

		registry, err := getRegistry()
		if err != nil {
			return err
		}

		h := handlers.New(handlers.Deps{
			Storage:   store,
			Registry:  registry,
			Config:    appConfig,
			Retriever: getRetriever(),
			Drift:     drift.NewController(drift.LexicalEmbedder{}, time.Now().UnixNano()),
			Metrics:   metrics,
			Personas:  getPersonas(),
		})

		addr := fmt.Sprintf(":%d", servePort)
		server := &http.Server{
			Addr:              addr,
			Handler:           h.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		fmt.Printf("\n🌐 Starting debaite API server on http://localhost:%d\n\n", servePort)
		fmt.Println("Available endpoints:")
		fmt.Printf("  GET  /api/debates           - List debates\n")
		fmt.Printf("  POST /api/debates           - Create and run a debate\n")
		fmt.Printf("  GET  /api/debates/:id       - Fetch a debate\n")
		fmt.Printf("  GET  /api/debates/:id/export - Export (markdown, pdf, json)\n")
		fmt.Printf("  GET  /api/providers/health  - Probe providers\n")
		fmt.Printf("  GET  /metrics               - Prometheus metrics\n")
		fmt.Println("\nPress Ctrl+C to stop the server")

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.ListenAndServe()
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case <-sigCh:
			fmt.Println("\nShutting down...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(ctx)
		}
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8184, "Server port")
}
