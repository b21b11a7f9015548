package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"logiscore/internal/repository"
	"logiscore/internal/service"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// companySeed is one entry of a company import file
type companySeed struct {
	service.CreateCompanyInput `yaml:",inline"`
	Branches                   []service.CreateBranchInput `yaml:"branches"`
}

func newCompaniesCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "companies",
		Short: "Manage rated companies",
	}
	cmd.AddCommand(newCompaniesImportCmd(g))
	return cmd
}

func newCompaniesImportCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <companies.yaml>",
		Short: "Create companies and their branches from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			seeds, err := decodeCompanies(f)
			if err != nil {
				return err
			}

			db, err := connect(cmd.Context(), g)
			if err != nil {
				return err
			}
			defer closeDB(db)

			// Creating companies never reads reviews
			companies := service.NewCompanyService(repository.NewCompanyRepository(db.DB), nil)

			var branches int
			for _, seed := range seeds {
				company, err := companies.Create(cmd.Context(), seed.CreateCompanyInput)
				if err != nil {
					return fmt.Errorf("company %q: %w", seed.Name, err)
				}
				for _, b := range seed.Branches {
					if _, err := companies.CreateBranch(cmd.Context(), company.ID, b); err != nil {
						return fmt.Errorf("company %q branch %q: %w", seed.Name, b.Name, err)
					}
					branches++
				}
				slog.Debug("Company imported", "company_id", company.ID, "name", company.Name)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created %d companies with %d branches\n", len(seeds), branches)
			return nil
		},
	}
}

func decodeCompanies(r io.Reader) ([]companySeed, error) {
	var seeds []companySeed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seeds); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("company file is empty")
		}
		return nil, fmt.Errorf("parsing companies: %w", err)
	}
	return seeds, nil
}
