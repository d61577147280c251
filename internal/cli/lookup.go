package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"BillAnalyzer/internal/domain"
	"BillAnalyzer/internal/usecase"
)

type lookupOptions struct {
	number string
	year   string
	json   bool
}

func newLookupCommand(root *rootOptions) *cobra.Command {
	opts := &lookupOptions{}
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Look up and analyze a single bill",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLookup(cmd, root, opts)
		},
	}
	cmd.Flags().StringVar(&opts.number, "number", "", "bill number, e.g. 500")
	cmd.Flags().StringVar(&opts.year, "year", "", "bill year, e.g. 2022")
	cmd.Flags().BoolVar(&opts.json, "json", false, "output the result as JSON")
	_ = cmd.MarkFlagRequired("number")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

func runLookup(cmd *cobra.Command, root *rootOptions, opts *lookupOptions) error {
	id := domain.BillIdentifier{Number: opts.number, Year: opts.year}
	if err := id.Validate(); err != nil {
		return err
	}

	rt, err := root.runtime(cmd, root.loadConfig())
	if err != nil {
		return err
	}

	res, err := rt.Lookup(cmd.Context(), id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("projeto de lei %s não encontrado: %w", id, err)
	case errors.Is(err, domain.ErrResolution):
		return fmt.Errorf("não foi possível extrair os detalhes do projeto: %w", err)
	case err != nil:
		return err
	}

	if opts.json {
		return printLookupJSON(cmd, res)
	}
	printLookup(cmd, res)
	return nil
}

type lookupJSON struct {
	Identifier    domain.BillIdentifier  `json:"identificador"`
	Reference     domain.BillReference   `json:"referencia"`
	Fields        domain.DetailFields    `json:"campos"`
	Analysis      *domain.AnalysisResult `json:"analise,omitempty"`
	AnalysisError string                 `json:"analise_erro,omitempty"`
}

func printLookupJSON(cmd *cobra.Command, res usecase.LookupResult) error {
	out := lookupJSON{
		Identifier: res.Identifier,
		Reference:  res.Reference,
		Fields:     res.Details.Fields(),
		Analysis:   res.Analysis,
	}
	if res.AnalysisErr != nil {
		out.AnalysisError = res.AnalysisErr.Error()
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func printLookup(cmd *cobra.Command, res usecase.LookupResult) {
	d := res.Details
	cmd.Printf("Projeto encontrado! %s\n\n", res.Reference.DetailURL)
	cmd.Printf("Projeto de Lei: %s\n", d.Headline())
	cmd.Println(d.Authors())
	cmd.Printf("Ementa: %s\n\n", d.Summary())

	switch {
	case errors.Is(res.AnalysisErr, domain.ErrNoDocument):
		cmd.Println("PDF não disponível para análise.")
	case res.AnalysisErr != nil:
		cmd.Printf("Análise indisponível: %v\n", res.AnalysisErr)
	case res.Analysis != nil:
		a := res.Analysis
		cmd.Printf("Resultado da Análise GEMINI: %s\n\n", a.SentimentEmoji)
		cmd.Printf("Análise Constitucional: %s\n", a.ConstitutionalAnalysis)
		cmd.Printf("Avaliação de Mérito: %s\n", a.MeritAssessment)
		cmd.Printf("Sugestão de Emendas: %s\n", a.AmendmentSuggestions)
		cmd.Printf("Recomendação de Voto: %s\n", a.VoteRecommendation)
	}
}
