package verifier

import (
	"fmt"
	"strings"

	"github.com/voceria-ai/voceria/internal/domain"
)

const (
	citationHeader = "💡 *Respuesta basada en documentos de la campaña:*\n\n"
	sourcesHeader  = "\n\n📚 **Fuentes:**\n"
)

// AddCitations wraps the response with a grounding header and a numbered
// source list. With no documents the response is returned unchanged.
func (v *Verifier) AddCitations(response string, documents []domain.SearchResult) string {
	if len(documents) == 0 {
		return response
	}

	var b strings.Builder
	b.WriteString(citationHeader)
	b.WriteString(response)
	b.WriteString(sourcesHeader)

	for i, doc := range documents {
		title := doc.Filename
		if title == "" {
			title = "Documento sin título"
		}
		fmt.Fprintf(&b, "[%d] %s (relevancia: %.1f)\n", i+1, title, doc.Score)
	}

	return b.String()
}

// ConfidenceMessage translates a verification result into the short trust
// note shown to the user.
func (v *Verifier) ConfidenceMessage(res domain.VerificationResult) string {
	switch {
	case res.IsVerified && res.Confidence > 0.8:
		return "✅ Alta confiabilidad - Información verificada en documentos oficiales"
	case res.IsVerified:
		return "✓ Información fundamentada en documentos disponibles"
	case res.HallucinationRisk < riskHighBound:
		return "⚠️ Información parcialmente verificada - Algunos detalles pueden requerir confirmación"
	default:
		return "⚠️ Respuesta generada con información limitada - Se recomienda verificar con el equipo"
	}
}
