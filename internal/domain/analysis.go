package domain

import (
	"fmt"
	"strings"
)

// AnalysisResult is the five-field opinion returned by the completion service.
type AnalysisResult struct {
	ConstitutionalAnalysis string `json:"analise_constitucional"`
	MeritAssessment        string `json:"avaliacao_merito"`
	AmendmentSuggestions   string `json:"sugestao_emendas"`
	VoteRecommendation     string `json:"recomendacao_voto"`
	SentimentEmoji         string `json:"emoji_avaliacao"`
}

// AnalysisField describes one output key of the structured completion.
type AnalysisField struct {
	Key         string
	Description string
}

// AnalysisFields lists the output keys in the order they are requested and exported.
var AnalysisFields = []AnalysisField{
	{Key: "analise_constitucional", Description: "Compatibilidade com a Constituição Federal e a Constituição Estadual de São Paulo."},
	{Key: "avaliacao_merito", Description: "Efeitos práticos e impactos da medida."},
	{Key: "sugestao_emendas", Description: "Pontos do texto que podem ser aprimorados, com redações alternativas."},
	{Key: "recomendacao_voto", Description: "Posição sugerida (favorável, abstenção ou contrária) com justificativa."},
	{Key: "emoji_avaliacao", Description: "Um único emoji que representa o sentimento geral da análise."},
}

// AnalysisKeys returns the output keys in order.
func AnalysisKeys() []string {
	keys := make([]string, len(AnalysisFields))
	for i, f := range AnalysisFields {
		keys[i] = f.Key
	}
	return keys
}

// Values returns the fields in AnalysisFields order.
func (a AnalysisResult) Values() []string {
	return []string{
		a.ConstitutionalAnalysis,
		a.MeritAssessment,
		a.AmendmentSuggestions,
		a.VoteRecommendation,
		a.SentimentEmoji,
	}
}

// Validate rejects results with any blank field.
func (a AnalysisResult) Validate() error {
	for i, v := range a.Values() {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("field %s is empty", AnalysisFields[i].Key)
		}
	}
	return nil
}

// Attachment is a binary document sent along with the instruction.
type Attachment struct {
	MIMEType string
	Data     []byte
}

// CompletionRequest is what the analysis engine sends to a structured-completion service.
type CompletionRequest struct {
	Instruction string
	Attachment  Attachment
	Fields      []AnalysisField
}
