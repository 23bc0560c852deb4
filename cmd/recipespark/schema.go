package main

import (
	"encoding/json/jsontext"
	"encoding/json/v2"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recipespark/content-core/internal/domain"
	"github.com/recipespark/content-core/internal/seo"
	"github.com/recipespark/content-core/internal/slug"
)

var schemaCmd = &cobra.Command{
	Use:   "schema <recipe-ref>",
	Short: "Print the JSON-LD for a snapshot recipe",
	Long:  "Print the Schema.org Recipe and BreadcrumbList for a recipe id or slug found in the snapshot.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchema,
}

func runSchema(cmd *cobra.Command, args []string) error {
	st := loadSnapshot()

	var (
		env domain.Envelope[domain.Recipe]
		ok  bool
	)
	if ref := slug.ParseRef(args[0]); ref.IsID {
		env, ok = st.RecipeByID(ref.ID)
	} else {
		env, ok = st.RecipeBySlug(args[0])
	}
	if !ok {
		return fmt.Errorf("recipe %q not found in snapshot", args[0])
	}

	gen := seo.NewSchemaGenerator(cfg.Site.URL, cfg.Site.Name)
	out := []seo.Schema{
		gen.Recipe(&env.Data),
		gen.RecipeBreadcrumbs(&env.Data),
	}

	if err := json.MarshalWrite(cmd.OutOrStdout(), out, jsontext.WithIndent("  ")); err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
