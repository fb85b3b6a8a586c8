package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/partner-match/internal/config"
	"github.com/sells-group/partner-match/internal/lexicon"
)

var lexiconCmd = &cobra.Command{
	Use:   "lexicon",
	Short: "Manage the synonym dictionary",
}

var lexiconImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Load synonym groups from YAML into a SQLite lexicon",
	Long: `Reads a thesaurus YAML file (a top-level "synsets" list of word lists) and
stores every group in a SQLite lexicon usable with lexicon.driver=sqlite.
Without --from the built-in thesaurus is imported.

Examples:
  partner-match lexicon import --db lexicon.db
  partner-match lexicon import --from trades.yaml --db lexicon.db`,
	RunE: runLexiconImport,
}

var lexiconLookupCmd = &cobra.Command{
	Use:   "lookup WORD",
	Short: "Print the synonyms of a word",
	Args:  cobra.ExactArgs(1),
	RunE:  runLexiconLookup,
}

func init() {
	lexiconImportCmd.Flags().String("from", "", "thesaurus YAML file (default: built-in thesaurus)")
	lexiconImportCmd.Flags().String("db", "", "SQLite lexicon path (default: lexicon.path)")
	lexiconLookupCmd.Flags().String("db", "", "look up in this SQLite lexicon instead of the configured one")

	lexiconCmd.AddCommand(lexiconImportCmd, lexiconLookupCmd)
	rootCmd.AddCommand(lexiconCmd)
}

func runLexiconImport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	from, _ := cmd.Flags().GetString("from")
	db, _ := cmd.Flags().GetString("db")
	if db == "" {
		db = cfg.Lexicon.Path
	}
	if db == "" {
		return eris.New("lexicon import: --db or lexicon.path is required")
	}

	var src *lexicon.Thesaurus
	var err error
	if from == "" {
		src, err = lexicon.Embedded(cfg.Lexicon.Stemming)
	} else {
		src, err = lexicon.LoadThesaurus(from, cfg.Lexicon.Stemming)
	}
	if err != nil {
		return eris.Wrap(err, "lexicon import: load groups")
	}

	store, err := lexicon.OpenSQLite(db, cfg.Lexicon.Stemming)
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck

	if err := store.Migrate(ctx); err != nil {
		return err
	}
	n, err := store.Import(ctx, src.Groups())
	if err != nil {
		return err
	}
	synsets, lemmas, err := store.Count(ctx)
	if err != nil {
		return err
	}

	zap.L().Info("lexicon import: complete",
		zap.String("db", db),
		zap.Int("imported", n),
		zap.Int("synsets", synsets),
		zap.Int("lemmas", lemmas),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d synonym groups into %s (%d groups, %d words total)\n", n, db, synsets, lemmas)
	return nil
}

func runLexiconLookup(cmd *cobra.Command, args []string) error {
	lc := cfg.Lexicon
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		lc = config.LexiconConfig{Driver: config.LexiconSQLite, Path: db, Stemming: cfg.Lexicon.Stemming}
	}
	if err := (&config.Config{Lexicon: lc}).Validate("lexicon"); err != nil {
		return err
	}

	lex, err := lexicon.Open(cmd.Context(), lc)
	if err != nil {
		return eris.Wrap(err, "lexicon lookup: open")
	}
	defer lex.Close() //nolint:errcheck

	syns, err := lex.SynonymsOf(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(syns) == 0 {
		fmt.Fprintf(out, "%s: no synonyms\n", args[0])
		return nil
	}
	fmt.Fprintf(out, "%s: %s\n", args[0], strings.Join(syns.Sorted(), ", "))
	return nil
}
