package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"character-chat/internal/catalog"
	"character-chat/internal/domain"
)

var charactersCategory string

var charactersCmd = &cobra.Command{
	Use:   "characters",
	Short: "List the available characters",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cat := catalog.Default()
		personas := cat.All()
		if charactersCategory != "" {
			c := domain.Category(charactersCategory)
			if !c.Valid() {
				return fmt.Errorf("unknown category %q", charactersCategory)
			}
			personas = cat.GetByCategory(c)
		}
		return printCharacters(cmd.OutOrStdout(), personas)
	},
}

func init() {
	charactersCmd.Flags().StringVar(&charactersCategory, "category", "", "only list one category (romance, family, friend, pet, helper)")
}

func printCharacters(w io.Writer, personas []domain.Persona) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tDESCRIPTION")
	for _, p := range personas {
		fmt.Fprintf(tw, "%s\t%s %s\t%s\t%s\n", p.ID, p.Emoji, p.Name, p.Category, p.Description)
	}
	return tw.Flush()
}
