package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"logiscore/internal/repository"
	"logiscore/internal/scoring"
	"logiscore/internal/service"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newQuestionsCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Manage the review question catalog",
	}
	cmd.AddCommand(newQuestionsImportCmd(g), newQuestionsListCmd(g))
	return cmd
}

func newQuestionsImportCmd(g *globalFlags) *cobra.Command {
	var deactivateMissing bool

	cmd := &cobra.Command{
		Use:   "import <catalog.yaml>",
		Short: "Create or update questions from a YAML catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := readCatalogFile(args[0])
			if err != nil {
				return err
			}

			db, err := connect(cmd.Context(), g)
			if err != nil {
				return err
			}
			defer closeDB(db)

			questions := service.NewQuestionService(repository.NewQuestionRepository(db.DB))
			result, err := questions.Import(cmd.Context(), categories, deactivateMissing)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created %d, updated %d, unchanged %d, deactivated %d\n",
				result.Created, result.Updated, result.Unchanged, result.Deactivated)
			return nil
		},
	}

	cmd.Flags().BoolVar(&deactivateMissing, "deactivate-missing", false,
		"Deactivate active questions that are not in the file")
	return cmd
}

func newQuestionsListCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the active catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := connect(cmd.Context(), g)
			if err != nil {
				return err
			}
			defer closeDB(db)

			questions := service.NewQuestionService(repository.NewQuestionRepository(db.DB))
			categories, err := questions.ListActiveCategories(cmd.Context())
			if err != nil {
				return err
			}
			return writeCatalog(cmd.OutOrStdout(), categories)
		},
	}
}

func readCatalogFile(path string) ([]scoring.Category, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeCatalog(f)
}

// decodeCatalog reads a YAML list of categories with their questions
func decodeCatalog(r io.Reader) ([]scoring.Category, error) {
	var categories []scoring.Category
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&categories); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("catalog is empty")
		}
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return categories, nil
}

func writeCatalog(w io.Writer, categories []scoring.Category) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tQUESTION\tTEXT")
	for _, c := range categories {
		for _, q := range c.Questions {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, q.ID, q.Text)
		}
	}
	return tw.Flush()
}
