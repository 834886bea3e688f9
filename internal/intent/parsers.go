package intent

import (
	"fmt"
	"strings"
)

// ExtractError reports that a pattern matched but its parameters could not be
// read. Prompt is the clarification to speak.
type ExtractError struct {
	Intent string
	Prompt string
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("%s: cannot extract parameters", e.Intent)
}

const (
	promptReminderTime = "Não entendi em quantos minutos devo te lembrar. Pode repetir?"
	promptReminderTask = "Do que você quer que eu te lembre?"
	promptVolume       = "Qual volume você quer? Diga um número de zero a cem."
	promptBrightness   = "Qual brilho você quer? Diga um número de zero a cem."
	promptPlay         = "O que você quer que eu toque?"
	promptWeather      = "De qual cidade você quer saber o clima?"
	promptSearch       = "O que você quer que eu pesquise?"
	promptOpenApp      = "Qual aplicativo você quer abrir?"
)

// maxReminderMinutes is one year.
const maxReminderMinutes = 365 * 24 * 60

var (
	reminderMarkers = func() []string {
		var out []string
		for _, p := range []string{"me lembre", "me lembra", "me lembrar", "lembre-me", "lembra-me", "lembre", "lembra", "lembrar"} {
			out = append(out, p+" de", p+" que", p)
		}
		return out
	}()
	minuteWords        = set("minuto", "minutos")
	durationConnectors = set("em", "daqui", "a", "dentro", "de", "por")
	taskFillers        = set("por", "favor", "de", "que")
)

// parseReminder reads the word right before "minutos" as the delay. The task
// is what remains once the delay, its connectors and the marker are removed.
func parseReminder(words []string) (Action, error) {
	idx := -1
	for i, w := range words {
		if minuteWords[w] {
			idx = i
			break
		}
	}
	if idx < 1 {
		return nil, &ExtractError{Intent: "reminder", Prompt: promptReminderTime}
	}

	minutes, ok := parseCount(words[idx-1])
	if !ok || minutes > maxReminderMinutes {
		return nil, &ExtractError{Intent: "reminder", Prompt: promptReminderTime}
	}

	head := append([]string(nil), words[:idx-1]...)
	for len(head) > 0 && durationConnectors[head[len(head)-1]] {
		head = head[:len(head)-1]
	}
	rest := append(head, words[idx+1:]...)

	task := trimEdges(removeFirst(rest, reminderMarkers), taskFillers)
	if len(task) == 0 {
		return nil, &ExtractError{Intent: "reminder", Prompt: promptReminderTask}
	}

	return Reminder{Task: strings.Join(task, " "), Minutes: minutes}, nil
}

var (
	volumeUp   = []string{"aumentar", "aumenta", "aumente", "subir", "sobe", "suba", "mais alto"}
	volumeDown = []string{"diminuir", "diminui", "diminua", "abaixar", "abaixa", "abaixe", "baixar", "baixa", "mais baixo"}
	volumeMute = []string{"mudo", "silenciar", "silencia", "silencie", "mutar"}
)

// parseVolume prefers an explicit number; directions only apply without one.
func parseVolume(words []string) (Action, error) {
	if n, ok := firstInt(words); ok {
		return VolumeSet{Percent: clampPercent(n)}, nil
	}

	switch {
	case containsAny(words, volumeUp):
		return VolumeStep{Direction: Up}, nil
	case containsAny(words, volumeDown):
		return VolumeStep{Direction: Down}, nil
	case containsAny(words, volumeMute):
		return VolumeMute{}, nil
	}

	return nil, &ExtractError{Intent: "volume", Prompt: promptVolume}
}

func parseBrightness(words []string) (Action, error) {
	n, ok := firstInt(words)
	if !ok {
		return nil, &ExtractError{Intent: "brightness", Prompt: promptBrightness}
	}
	return BrightnessSet{Percent: clampPercent(n)}, nil
}

func clampPercent(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// textParser builds an extractor that removes the trigger phrases anywhere in
// the utterance and filler words at its edges.
func textParser(name string, triggers []string, fillers map[string]bool, prompt string, build func(string) Action) func([]string) (Action, error) {
	return func(words []string) (Action, error) {
		rest := trimEdges(removeAll(words, triggers), fillers)
		if len(rest) == 0 {
			return nil, &ExtractError{Intent: name, Prompt: prompt}
		}
		return build(strings.Join(rest, " ")), nil
	}
}

func constant(a Action) func([]string) (Action, error) {
	return func([]string) (Action, error) { return a, nil }
}
