package services

import (
	"fmt"
	"strings"
)

// Persona selects the recruiter voice of the screening prompt.
type Persona int

const (
	PersonaGeneric Persona = iota
	PersonaDataScience
	PersonaBackend
	PersonaLLMArchitecture
)

func (p Persona) String() string {
	switch p {
	case PersonaDataScience:
		return "data_science"
	case PersonaBackend:
		return "backend"
	case PersonaLLMArchitecture:
		return "llm_architecture"
	default:
		return "generic"
	}
}

// advancedTerms mark a CV as LLM/architecture oriented.
var advancedTerms = []string{"LangChain", "LLM", "FastAPI", "modular", "agent", "orchestrazione", "deployment"}

type personaRule struct {
	persona Persona
	matches func(role, cvText string) bool
}

// personaRules are evaluated in order; role checks come before CV keyword checks.
var personaRules = []personaRule{
	{
		persona: PersonaDataScience,
		matches: func(role, _ string) bool { return containsFold(role, "data scientist") },
	},
	{
		persona: PersonaBackend,
		matches: func(role, _ string) bool { return containsFold(role, "backend") },
	},
	{
		persona: PersonaLLMArchitecture,
		matches: func(_, cvText string) bool { return containsAnyFold(cvText, advancedTerms) },
	},
}

// SelectPersona returns the first matching persona, or PersonaGeneric.
func SelectPersona(role, cvText string) Persona {
	for _, rule := range personaRules {
		if rule.matches(role, cvText) {
			return rule.persona
		}
	}
	return PersonaGeneric
}

// BackendPersonaMarker appears only in the backend persona instruction.
const BackendPersonaMarker = "esperto in sviluppo backend"

var personaInstructions = map[Persona]string{
	PersonaDataScience: "Sei un recruiter tecnico esperto in data science, machine learning e analisi statistica.\n" +
		"Valuta il CV in base a competenze in Python, ML, deployment, orchestrazione e impatto scientifico.",
	PersonaBackend: "Sei un recruiter tecnico " + BackendPersonaMarker + ", API REST, orchestrazione e architetture modulari.\n" +
		"Valuta il CV in base a competenze in Python, FastAPI, LangChain, logging, error handling e scalabilità.",
	PersonaLLMArchitecture: "Sei un recruiter specializzato in architetture LLM, agenti modulari e orchestrazione.\n" +
		"Analizza il CV con attenzione a LangChain, deployment, modularità e compatibilità con ambienti enterprise.",
	PersonaGeneric: "Sei un recruiter professionista. Analizza il CV e confrontalo con la job description.",
}

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildScreeningPrompt creates the feedback prompt for a CV against a job description.
func (pb *PromptBuilder) BuildScreeningPrompt(cvText, jobDescription, role string) string {
	persona := SelectPersona(role, cvText)

	var b strings.Builder
	b.WriteString(personaInstructions[persona])
	b.WriteString("\nRispondi esclusivamente in italiano.\n")
	b.WriteString("Fornisci un feedback professionale in 3 sezioni:\n")
	b.WriteString("1. Compatibilità tecnica con il ruolo\n")
	b.WriteString("2. Competenze evidenziate (linguaggi, framework, architettura, progetti)\n")
	b.WriteString("3. Suggerimenti per migliorare il profilo\n\n")
	fmt.Fprintf(&b, "CV:\n%s\n\n", cvText)
	fmt.Fprintf(&b, "Job Description:\n%s\n\n", jobDescription)
	b.WriteString("Risposta:")

	return b.String()
}
