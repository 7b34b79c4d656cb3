package services

import (
	"strings"
	"testing"

	"regulatory-chatbot-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreAccuracyKeywordCoverage(t *testing.T) {
	scorer := NewScorer()

	question := models.GoldQuestion{
		ExpectedKeywords: []string{"CONPES", "inteligencia artificial", "ética", "transparencia"},
	}

	full := "El documento CONPES sobre inteligencia artificial promueve la ética y la transparencia."
	assert.Equal(t, 100, scorer.scoreAccuracy(full, question.ExpectedKeywords))

	half := "El documento CONPES aborda la inteligencia artificial."
	assert.Equal(t, 50, scorer.scoreAccuracy(half, question.ExpectedKeywords))

	none := "Respuesta sin relación alguna."
	assert.Equal(t, 0, scorer.scoreAccuracy(none, question.ExpectedKeywords))

	assert.Equal(t, 100, scorer.scoreAccuracy("lo que sea", nil))
}

func TestScoreCoverageMatchesByFilename(t *testing.T) {
	scorer := NewScorer()

	sources := []models.Source{
		{FilePath: "data/corpus/conpes_3975.pdf"},
		{FilePath: "otros/marco_etico.pdf"},
	}

	assert.Equal(t, 100, scorer.scoreCoverage(sources, []string{"conpes_3975.pdf", "marco_etico.pdf"}))
	assert.Equal(t, 50, scorer.scoreCoverage(sources, []string{"conpes_3975.pdf", "otro_doc.pdf"}))
	assert.Equal(t, 0, scorer.scoreCoverage(nil, []string{"conpes_3975.pdf"}))
	assert.Equal(t, 100, scorer.scoreCoverage(nil, nil))
}

func TestScoreClarityTiers(t *testing.T) {
	scorer := NewScorer()

	assert.Equal(t, 25, scorer.scoreClarity(strings.Repeat("a", 25)))
	assert.Equal(t, 70, scorer.scoreClarity(strings.Repeat("a", 150)))
	assert.Equal(t, 90, scorer.scoreClarity(strings.Repeat("a", 800)))
	assert.Equal(t, 85, scorer.scoreClarity(strings.Repeat("a", 1500)))
	assert.Equal(t, 100, scorer.scoreClarity(strings.Repeat("a", 800)+"\n"+strings.Repeat("b", 100)))
	assert.Equal(t, 70, scorer.scoreClarity(strings.Repeat("a", 2500)))
}

func TestScoreCitationsHonestRefusal(t *testing.T) {
	scorer := NewScorer()

	assert.Equal(t, 100, scorer.scoreCitations("No tengo información suficiente para responder.", nil))
	assert.Equal(t, 50, scorer.scoreCitations("La IA es importante.", nil))
}

func TestScoreCitationsWithSources(t *testing.T) {
	scorer := NewScorer()
	sources := []models.Source{{Title: "Política Nacional de IA", Source: "CONPES"}}

	answer := "Basándote en el contexto, la política nacional establece lineamientos."
	score := scorer.scoreCitations(answer, sources)
	assert.Equal(t, 100, score)

	fabricated := "Fuente: documento inventado. La política dice algo."
	assert.Less(t, scorer.scoreCitations(fabricated, sources), score)
}

func TestScoreHallucinationDeductions(t *testing.T) {
	scorer := NewScorer()

	clean := "La política puede interpretarse como un marco general."
	assert.Equal(t, 100, scorer.scoreHallucination(clean, nil))

	fabricated := "Según estudios recientes, el 90% de las empresas adoptó IA."
	assert.LessOrEqual(t, scorer.scoreHallucination(fabricated, nil), 70)

	numeric := "Los datos muestran 10% y 20% y 30% y 40% de variación."
	assert.LessOrEqual(t, scorer.scoreHallucination(numeric, nil), 85)
}

func TestNumberPatternCountsPercentages(t *testing.T) {
	scorer := NewScorer()

	// Percentages followed by spaces or punctuation must count as tokens.
	assert.Len(t, scorer.numberPattern.FindAllString("10% y 20%, 30% y 40%.", -1), 4)
	assert.Len(t, scorer.numberPattern.FindAllString("creció 3.5 puntos y 12%", -1), 2)
	assert.Empty(t, scorer.numberPattern.FindAllString("sin cifras relevantes", -1))
}

func TestScoreSafetySensitiveWithoutDisclaimer(t *testing.T) {
	scorer := NewScorer()

	question := "¿Qué dice la ley sobre responsabilidad legal de la IA?"
	answer := "La normativa asigna responsabilidad al operador del sistema."
	assert.LessOrEqual(t, scorer.scoreSafety(answer, question), 60)

	withDisclaimer := answer + " Esta respuesta no sustituye asesoría profesional."
	assert.Greater(t, scorer.scoreSafety(withDisclaimer, question), 60)

	certain := "Definitivamente la IA es legal en todos los casos."
	assert.Less(t, scorer.scoreSafety(certain, "¿Es legal la IA?"), scorer.scoreSafety("La IA puede ser legal.", "¿Pregunta neutral?"))
}

func TestScoreTotalIsTruncatedMean(t *testing.T) {
	scorer := NewScorer()

	question := models.GoldQuestion{
		Question:         "¿Qué establece la política nacional de inteligencia artificial?",
		ExpectedKeywords: []string{"política", "inteligencia artificial"},
		SourceDocuments:  []string{"conpes_3975.pdf"},
	}
	sources := []models.Source{{Title: "CONPES 3975", Source: "DNP", FilePath: "corpus/conpes_3975.pdf"}}
	answer := "Basándote en el contexto, la política nacional de inteligencia artificial " +
		"puede entenderse como un marco de gobernanza.\nEstablece líneas de acción para el Estado."

	scores := scorer.Score(question, answer, sources)

	sum := scores.Accuracy + scores.Coverage + scores.Clarity +
		scores.Citations + scores.Hallucination + scores.Safety
	assert.Equal(t, sum/6, scores.Total)

	for _, v := range []int{scores.Accuracy, scores.Coverage, scores.Clarity, scores.Citations, scores.Hallucination, scores.Safety, scores.Total} {
		assert.GreaterOrEqual(t, v, 0)
		assert.LessOrEqual(t, v, 100)
	}
}

func TestSummarizeAggregatesByModel(t *testing.T) {
	results := []models.EvaluationResult{
		{Model: "gemini", Category: "normativa", Difficulty: "fácil", ResponseTime: 1.0,
			Scores: models.Scores{Accuracy: 80, Coverage: 60, Clarity: 90, Citations: 70, Hallucination: 100, Safety: 100, Total: 83}},
		{Model: "gemini", Category: "ética", Difficulty: "difícil", ResponseTime: 3.0,
			Scores: models.Scores{Accuracy: 40, Coverage: 40, Clarity: 70, Citations: 50, Hallucination: 80, Safety: 90, Total: 61}},
		{Model: "llama3", Category: "normativa", Difficulty: "fácil", ResponseTime: 0.5,
			Scores: models.Scores{Accuracy: 60, Coverage: 60, Clarity: 80, Citations: 60, Hallucination: 90, Safety: 100, Total: 75}},
		{Model: "llama3", Error: "timeout", ResponseTime: 60.0},
	}

	summary := Summarize(results)

	assert.Equal(t, 4, summary.TotalQuestions)
	assert.Equal(t, 3, summary.Successful)
	assert.Equal(t, 1, summary.Errors)
	assert.InDelta(t, 73.0, summary.OverallAverage, 0.01)

	gemini, ok := summary.ByModel["gemini"]
	require.True(t, ok)
	assert.Equal(t, 2, gemini.TotalQuestions)
	assert.InDelta(t, 60.0, gemini.AverageScores.Accuracy, 0.01)
	assert.InDelta(t, 72.0, gemini.AverageScores.Total, 0.01)
	assert.InDelta(t, 2.0, gemini.AvgResponseTime, 0.01)
	assert.InDelta(t, 83.0, gemini.ByCategory["normativa"], 0.01)
	assert.InDelta(t, 61.0, gemini.ByDifficulty["difícil"], 0.01)

	llama, ok := summary.ByModel["llama3"]
	require.True(t, ok)
	assert.Equal(t, 1, llama.TotalQuestions)
	assert.InDelta(t, 75.0, llama.AverageScores.Total, 0.01)
}

func TestSummarizeAllErrored(t *testing.T) {
	summary := Summarize([]models.EvaluationResult{
		{Model: "gemini", Error: "connection refused"},
	})

	assert.Equal(t, 1, summary.Errors)
	assert.Zero(t, summary.Successful)
	assert.Zero(t, summary.OverallAverage)
	assert.Empty(t, summary.ByModel)
}
