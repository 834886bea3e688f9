package intent

import (
	"errors"
	log "log/slog"
)

// Pattern is one entry of the routing table. Every group in Keywords must have
// at least one phrase present, matched on whole words.
type Pattern struct {
	Name     string
	Keywords [][]string
	Parse    func(words []string) (Action, error)
}

func (p Pattern) matches(words []string) bool {
	if len(p.Keywords) == 0 {
		return false
	}
	for _, group := range p.Keywords {
		if !containsAny(words, group) {
			return false
		}
	}
	return true
}

var (
	playTriggers    = []string{"tocar", "toque", "toca"}
	weatherTriggers = []string{"previsão do tempo", "clima", "temperatura"}
	searchTriggers  = []string{"pesquisar", "pesquise", "pesquisa", "quem é", "quem foi", "o que é"}
	openTriggers    = []string{"abrir", "abra", "abre"}
)

// DefaultPatterns is the routing table in priority order: reminder, hardware,
// media and utility, exit. Anything else is conversation.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			Name:     "reminder",
			Keywords: [][]string{{"me lembre", "me lembra", "lembre-me", "lembra-me", "lembre", "lembra", "lembrar"}, {"minuto", "minutos"}},
			Parse:    parseReminder,
		},
		{
			Name:     "volume",
			Keywords: [][]string{{"volume", "mudo", "silenciar", "silencia"}},
			Parse:    parseVolume,
		},
		{
			Name:     "brightness",
			Keywords: [][]string{{"brilho"}},
			Parse:    parseBrightness,
		},
		{
			Name:     "screenshot",
			Keywords: [][]string{{"captura de tela", "print", "printscreen", "screenshot"}},
			Parse:    constant(Screenshot{}),
		},
		{
			Name:     "trash",
			Keywords: [][]string{{"esvaziar a lixeira", "esvaziar lixeira", "esvazie a lixeira", "limpar a lixeira", "limpar lixeira", "esvaziar o lixo"}},
			Parse:    constant(EmptyTrash{}),
		},
		{
			Name:     "lock",
			Keywords: [][]string{{"bloquear", "bloqueie", "bloqueia", "trancar", "tranque", "tranca"}},
			Parse:    constant(LockWorkstation{}),
		},
		{
			Name:     "shutdown",
			Keywords: [][]string{{"desligar o computador", "desligar computador", "desliga o computador", "desligue o computador", "desligar o pc"}},
			Parse:    constant(Shutdown{}),
		},
		{
			Name:     "play",
			Keywords: [][]string{playTriggers},
			Parse: textParser("play", playTriggers,
				set("a", "o", "as", "os", "um", "uma", "música", "musica", "canção", "no", "youtube", "pra", "para", "mim", "por", "favor"),
				promptPlay, func(s string) Action { return Play{Query: s} }),
		},
		{
			Name:     "weather",
			Keywords: [][]string{weatherTriggers},
			Parse: textParser("weather", weatherTriggers,
				set("qual", "é", "a", "o", "como", "está", "esta", "em", "de", "do", "da", "no", "na", "para", "pra", "hoje", "agora", "atual", "cidade"),
				promptWeather, func(s string) Action { return Weather{City: s} }),
		},
		{
			Name:     "search",
			Keywords: [][]string{searchTriggers},
			Parse: textParser("search", searchTriggers,
				set("sobre", "a", "o", "os", "as", "na", "no", "wikipedia", "wiki", "por", "de", "favor"),
				promptSearch, func(s string) Action { return Search{Topic: s} }),
		},
		{
			Name:     "open_app",
			Keywords: [][]string{openTriggers},
			Parse: textParser("open_app", openTriggers,
				set("o", "a", "aplicativo", "app", "programa", "por", "favor"),
				promptOpenApp, func(s string) Action { return OpenApp{Name: s} }),
		},
		{
			Name:     "exit",
			Keywords: [][]string{{"sair", "desligar", "encerrar"}},
			Parse:    constant(Exit{}),
		},
	}
}

type Router struct {
	patterns []Pattern
}

// NewRouter uses DefaultPatterns when none are given.
func NewRouter(patterns ...Pattern) *Router {
	if len(patterns) == 0 {
		patterns = DefaultPatterns()
	}
	return &Router{patterns: patterns}
}

// Match returns the first pattern satisfied by utterance.
func (r *Router) Match(utterance string) (Pattern, bool) {
	words := normalize(utterance)
	for _, p := range r.patterns {
		if p.matches(words) {
			return p, true
		}
	}
	return Pattern{}, false
}

// Route dispatches utterance to the first matching pattern. A failed extraction
// becomes Clarify; no match forwards the utterance verbatim as Converse.
func (r *Router) Route(utterance string) Action {
	p, ok := r.Match(utterance)
	if !ok {
		return Converse{Text: utterance}
	}

	a, err := p.Parse(normalize(utterance))
	if err != nil {
		log.Debug("Extraction failed", "intent", p.Name, "err", err)
		var ee *ExtractError
		if errors.As(err, &ee) {
			return Clarify{Intent: ee.Intent, Prompt: ee.Prompt}
		}
		return Clarify{Intent: p.Name, Prompt: "Desculpe, não entendi. Pode repetir?"}
	}

	log.Debug("Routed", "intent", p.Name)
	return a
}
