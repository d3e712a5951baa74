// Package report turns the usable search results into the weekly Markdown report and
// stores it on disk.
package report

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"scout/internal/llm"
	"scout/internal/search"
)

// ErrorHeading starts the report written when synthesis fails.
const ErrorHeading = "# Fout bij het genereren van het rapport"

const systemPromptTemplate = `Je bent een technisch analist die wekelijkse zoekresultaten over Claude Code
beoordeelt en vergelijkt met de huidige setup van de gebruiker.

Je taak:
1. Analyseer de zoekresultaten per categorie.
2. Vergelijk met het systeemontwerp en de huidige setup.
3. Filter wat de gebruiker al toepast.
4. Genereer een rapport in het Nederlands met concrete, bruikbare inzichten.
5. Geef bij elk voorstel aan of het gaat om een kleine verbetering of een
   fundamentele verandering.

Het rapport moet in Markdown en de volgende structuur hebben:

# Claude Code Scout — weekrapport {datum}

## Samenvatting
Korte samenvatting van de belangrijkste vondsten deze week.

## Nieuwe inzichten per categorie
Per categorie: wat is er gevonden, waarom is het relevant, en wat is het
concrete voorstel. Sla categorieën zonder resultaten over.

Gebruik per voorstel dit format:

### [Categorienaam]

**Voorstel:** [korte beschrijving]
**Bron:** [auteur, domein, url — gebruik ALLEEN URLs uit de GEVERIFIEERDE BRONNEN sectie]
**Type:** [klein/fundamenteel]
**Toelichting:** [waarom dit relevant is voor de gebruiker]

` + "```yaml\n# Implementatie-instructie (indien van toepassing)\n```" + `

## Bronnen om in de gaten te houden
Nieuwe auteurs of domeinen die opvallend goed materiaal leverden.

## Paradigma-check
Inzichten die bestaande aannames ter discussie stellen.

BELANGRIJK: Elke zoekresultaat bevat een "GEVERIFIEERDE BRONNEN" sectie met URLs die
daadwerkelijk bestaan. Gebruik UITSLUITEND deze URLs in het rapport. Genereer NOOIT
zelf URLs, gebruik alleen wat er letterlijk in de GEVERIFIEERDE BRONNEN staat.
Als er geen geverifieerde URL beschikbaar is voor een bron, vermeld dan alleen het
domein zonder URL.
`

// SystemPrompt returns the synthesis instruction for the report dated date
// (YYYY-MM-DD). An empty date leaves the placeholder for the model to fill.
func SystemPrompt(date string) string {
	if date == "" {
		return systemPromptTemplate
	}
	return strings.ReplaceAll(systemPromptTemplate, "{datum}", date)
}

// Input is everything the synthesis call sees.
type Input struct {
	Date          string
	Results       []search.Result // usable results only
	SystemDesign  string
	CurrentSetup  string
	LedgerSummary string
}

// BuildPrompt assembles the user message: search results, both reference documents
// and the ledger summary, each under its own heading.
func BuildPrompt(in Input) string {
	var results strings.Builder
	for _, r := range in.Results {
		results.WriteString("\n\n--- ")
		results.WriteString(r.Name)
		results.WriteString(" (")
		results.WriteString(r.ID)
		results.WriteString(") ---\n")
		results.WriteString(r.RawOutput())
	}

	var sb strings.Builder
	sb.WriteString("Hieronder vind je de zoekresultaten van deze week, mijn systeemontwerp,\n")
	sb.WriteString("mijn huidige setup, en mijn gewogen bronnenlijst.\n\n")
	sb.WriteString("Genereer op basis hiervan het weekrapport.\n\n")
	sb.WriteString("## ZOEKRESULTATEN\n\n")
	sb.WriteString(results.String())
	sb.WriteString("\n\n## MIJN SYSTEEMONTWERP\n\n")
	sb.WriteString(in.SystemDesign)
	sb.WriteString("\n\n## MIJN HUIDIGE SETUP\n\n")
	sb.WriteString(in.CurrentSetup)
	sb.WriteString("\n\n## GEWOGEN BRONNENLIJST\n\n")
	sb.WriteString(in.LedgerSummary)
	sb.WriteString("\n")
	return sb.String()
}

// Synthesizer produces the report with one completion call.
type Synthesizer struct {
	completer llm.Completer
	logger    *zap.Logger
}

// NewSynthesizer creates a synthesizer.
func NewSynthesizer(completer llm.Completer, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{completer: completer, logger: logger}
}

// Synthesize returns the report text. A failed call yields a short Markdown document
// describing the error, so a report file is always produced.
func (s *Synthesizer) Synthesize(ctx context.Context, in Input) string {
	report, err := s.completer.CompleteWithSystem(ctx, SystemPrompt(in.Date), BuildPrompt(in))
	if err != nil {
		s.logger.Error("synthesis failed", zap.Error(err))
		return ErrorReport(err)
	}
	s.logger.Info("report generated", zap.Int("chars", len(report)))
	return report
}

// ErrorReport renders err as a minimal report.
func ErrorReport(err error) string {
	return ErrorHeading + "\n\n" + err.Error()
}
