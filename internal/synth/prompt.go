package synth

import (
	"fmt"
	"slices"
	"strings"

	"github.com/abhisek/qgen/internal/qgen"
)

const systemPrompt = `Eres un profesor de matemática que prepara ensayos para la PAES (Prueba de Acceso a la Educación Superior) de Chile.

Reglas:
- Recibirás el enunciado de una pregunta ya redactada. No lo modifiques.
- Resuelve la pregunta usando exactamente los valores de las variables entregadas.
- Escribe %d alternativas, de las cuales exactamente una es correcta.
- Los distractores deben reflejar errores frecuentes de los estudiantes, no valores al azar.
- Todas las alternativas deben ser distintas entre sí, también en su valor numérico.
- Expresa fracciones irreducidas y usa coma decimal.
- La explicación muestra la resolución paso a paso, en español y en no más de seis pasos.
- Entrega además cada alternativa y la explicación en LaTeX, en el mismo orden.
- Ajusta la plausibilidad de los distractores a la dificultad indicada: en "easy" pueden ser evidentes, en "hard" deben ser muy cercanos a la respuesta.`

// systemMessage returns the system prompt for the configured option count.
func systemMessage(cfg Config) string {
	n := cfg.NumOptions
	if n <= 0 {
		n = 4
	}
	return fmt.Sprintf(systemPrompt, n)
}

// buildUserMessage describes one filled question to the model.
func buildUserMessage(req qgen.SynthesisRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Prueba: %s\n", req.Level)
	fmt.Fprintf(&b, "Eje: %s\n", req.Subject)
	fmt.Fprintf(&b, "Habilidades: %s\n", strings.Join(req.Skills, ", "))
	fmt.Fprintf(&b, "Dificultad: %s\n", req.Difficulty)
	if req.Context != "" {
		fmt.Fprintf(&b, "Contexto: %s\n", req.Context)
	}

	b.WriteString("\nEnunciado:\n")
	b.WriteString(req.Question)
	b.WriteString("\n")
	if req.QuestionLaTeX != "" {
		b.WriteString("\nEnunciado en LaTeX:\n")
		b.WriteString(req.QuestionLaTeX)
		b.WriteString("\n")
	}

	b.WriteString("\nVariables:\n")
	b.WriteString(buildVariables(req.Variables))

	return b.String()
}

// buildVariables lists the assignment sorted by name so prompts are stable.
func buildVariables(a qgen.Assignment) string {
	if len(a) == 0 {
		return "Ninguna"
	}
	names := make([]string, 0, len(a))
	for name := range a {
		names = append(names, name)
	}
	slices.Sort(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "- %s = %s\n", name, a[name])
	}
	return strings.TrimRight(b.String(), "\n")
}
