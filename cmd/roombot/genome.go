package main

import (
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baldhumanity/roombots/config"
	"github.com/baldhumanity/roombots/genome"
)

var genomeOpts struct {
	params string
	kind   string
}

var genomeCmd = &cobra.Command{
	Use:   "genome",
	Short: "Create, mutate and cross genome text",
	Long: `Genome text is read from arguments; "-" reads it from stdin.

Examples:
  roombot genome new --kind matrix
  roombot genome new | roombot genome mutate -
  roombot genome grid "$(roombot genome new)"`,
}

var genomeNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Print a minimal genome",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		m, err := newManager()
		if err != nil {
			return err
		}
		id, err := m.CreateGenome()
		if err != nil {
			return err
		}
		return printGenome(cmd, m, id)
	},
}

var genomeMutateCmd = &cobra.Command{
	Use:   "mutate <genome>",
	Short: "Print a mutated copy of a genome",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return breed(cmd, args)
	},
}

var genomeCrossCmd = &cobra.Command{
	Use:   "cross <genome> <genome>",
	Short: "Cross two genomes of the same kind and mutate the child",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return breed(cmd, args)
	},
}

var genomeGridCmd = &cobra.Command{
	Use:   "grid <genome>",
	Short: "Print the value grid a genome describes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager()
		if err != nil {
			return err
		}
		text, err := readGenomeArg(cmd, args[0])
		if err != nil {
			return err
		}
		id, err := m.GenomeFromString(text)
		if err != nil {
			return err
		}
		g, _ := m.Genome(id)

		var rows [][]float64
		switch g := g.(type) {
		case *genome.CppnGenome:
			if rows, err = g.ActivationMatrix(); err != nil {
				return err
			}
		case *genome.MatrixGenome:
			rows = g.Rows()
		}
		out := cmd.OutOrStdout()
		for _, row := range rows {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = fmt.Sprintf("% .4f", v)
			}
			fmt.Fprintln(out, strings.Join(cells, " "))
		}
		return nil
	},
}

func init() {
	pf := genomeCmd.PersistentFlags()
	pf.StringVar(&genomeOpts.params, "params", "", "parameter file with [Genome] and [CppnGenome] sections")
	genomeNewCmd.Flags().StringVar(&genomeOpts.kind, "kind", "", "CPPN or MATRIX (default from parameters)")

	genomeCmd.AddCommand(genomeNewCmd, genomeMutateCmd, genomeCrossCmd, genomeGridCmd)
}

func newManager() (*genome.Manager, error) {
	settings := genome.DefaultSettings()
	if genomeOpts.params != "" {
		src, err := config.Open(genomeOpts.params)
		if err != nil {
			return nil, err
		}
		if settings, err = genome.LoadSettings(src); err != nil {
			return nil, err
		}
	}
	if genomeOpts.kind != "" {
		settings.Kind = genome.Kind(strings.ToUpper(genomeOpts.kind))
		if err := settings.Validate(); err != nil {
			return nil, err
		}
	}
	return genome.NewManager(settings, rand.New(rand.NewSource(seed))), nil
}

// breed loads the parent genomes and prints their child.
func breed(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}
	parents := make([]int, len(args))
	for i, arg := range args {
		text, err := readGenomeArg(cmd, arg)
		if err != nil {
			return err
		}
		if parents[i], err = m.GenomeFromString(text); err != nil {
			return fmt.Errorf("parent %d: %w", i+1, err)
		}
	}
	child, err := m.CreateGenome(parents...)
	if err != nil {
		return err
	}
	return printGenome(cmd, m, child)
}

func printGenome(cmd *cobra.Command, m *genome.Manager, id int) error {
	text, err := m.GenomeToString(id)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

func readGenomeArg(cmd *cobra.Command, arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading genome: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
