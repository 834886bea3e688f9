package intent

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoute_Scenarios(t *testing.T) {
	r := NewRouter()

	cases := []struct {
		utterance string
		want      Action
	}{
		{"me lembre de regar as plantas em 10 minutos", Reminder{Task: "regar as plantas", Minutes: 10}},
		{"lembre-me de tomar remédio daqui a 5 minutos", Reminder{Task: "tomar remédio", Minutes: 5}},
		{"em 15 minutos me lembra que tenho reunião", Reminder{Task: "tenho reunião", Minutes: 15}},
		{"me lembre de beber água em dez minutos", Reminder{Task: "beber água", Minutes: 10}},
		{"me lembre de sair em 0 minutos", Reminder{Task: "sair", Minutes: 0}},
		{"clima em lisboa", Weather{City: "lisboa"}},
		{"qual é a temperatura em são paulo hoje", Weather{City: "são paulo"}},
		{"clima de rio de janeiro", Weather{City: "rio de janeiro"}},
		{"clima em belém", Weather{City: "belém"}},
		{"tocar bohemian rhapsody", Play{Query: "bohemian rhapsody"}},
		{"toque a música evidências no youtube", Play{Query: "evidências"}},
		{"pesquisar sobre albert einstein", Search{Topic: "albert einstein"}},
		{"quem é machado de assis?", Search{Topic: "machado de assis"}},
		{"abrir o firefox", OpenApp{Name: "firefox"}},
		{"abra a lixeira", OpenApp{Name: "lixeira"}},
		{"volume 40", VolumeSet{Percent: 40}},
		{"coloca o volume em 75%", VolumeSet{Percent: 75}},
		{"volume 250", VolumeSet{Percent: 100}},
		{"aumentar o volume", VolumeStep{Direction: Up}},
		{"abaixa o volume", VolumeStep{Direction: Down}},
		{"modo mudo", VolumeMute{}},
		{"brilho 30", BrightnessSet{Percent: 30}},
		{"tira um print", Screenshot{}},
		{"faz uma captura de tela", Screenshot{}},
		{"esvaziar a lixeira", EmptyTrash{}},
		{"bloquear a tela", LockWorkstation{}},
		{"desligar o computador", Shutdown{}},
		{"sair", Exit{}},
		{"pode desligar", Exit{}},
		{"Conte uma piada, Astra!", Converse{Text: "Conte uma piada, Astra!"}},
	}

	for _, tc := range cases {
		t.Run(tc.utterance, func(t *testing.T) {
			assert.Equal(t, tc.want, r.Route(tc.utterance))
		})
	}
}

func TestRoute_ClarifiesOnExtractionFailure(t *testing.T) {
	r := NewRouter()

	cases := map[string]string{
		"me lembre de regar as plantas em alguns minutos": "reminder",
		"me lembre em 10 minutos":                         "reminder",
		"minutos me lembre":                               "reminder",
		"volume":                                          "volume",
		"muda o brilho":                                   "brightness",
		"tocar":                                           "play",
		"clima":                                           "weather",
		"pesquisar":                                       "search",
		"abrir":                                           "open_app",
	}

	for utterance, intent := range cases {
		t.Run(utterance, func(t *testing.T) {
			a := r.Route(utterance)
			c, ok := a.(Clarify)
			require.True(t, ok, "got %#v", a)
			assert.Equal(t, intent, c.Intent)
			assert.NotEmpty(t, c.Prompt)
		})
	}
}

func TestRoute_PriorityOrderDisambiguates(t *testing.T) {
	r := NewRouter()

	cases := map[string]string{
		// reminder beats hardware, media and exit
		"me lembre de aumentar o volume em 5 minutos": "reminder",
		"me lembre de desligar a luz em 2 minutos":    "reminder",
		// hardware beats media and exit
		"desligar o computador":          "shutdown",
		"tocar uma música com volume 30": "volume",
		// media beats exit
		"tocar sair da rotina": "play",
		"clima para sair":      "weather",
	}

	for utterance, want := range cases {
		t.Run(utterance, func(t *testing.T) {
			p, ok := r.Match(utterance)
			require.True(t, ok)
			assert.Equal(t, want, p.Name)
		})
	}
}

func TestRoute_FirstDeclaredWinsOnTie(t *testing.T) {
	first := Pattern{Name: "first", Keywords: [][]string{{"parar"}}, Parse: constant(Exit{})}
	second := Pattern{Name: "second", Keywords: [][]string{{"parar"}}, Parse: constant(VolumeMute{})}

	assert.Equal(t, Exit{}, NewRouter(first, second).Route("parar"))
	assert.Equal(t, VolumeMute{}, NewRouter(second, first).Route("parar"))
}

func TestRoute_ReminderNeedsBothMarkers(t *testing.T) {
	r := NewRouter()

	assert.Equal(t, Converse{Text: "me lembre de regar as plantas"}, r.Route("me lembre de regar as plantas"))
	assert.Equal(t, Converse{Text: "faltam 10 minutos"}, r.Route("faltam 10 minutos"))
}

func TestRoute_KeywordsMatchWholeWords(t *testing.T) {
	r := NewRouter()

	assert.Equal(t, Converse{Text: "o estoque acabou"}, r.Route("o estoque acabou"))
	assert.Equal(t, Converse{Text: "temperaturas extremas"}, r.Route("temperaturas extremas"))
}

func TestDefaultPatterns_Order(t *testing.T) {
	var names []string
	for _, p := range DefaultPatterns() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{
		"reminder",
		"volume", "brightness", "screenshot", "trash", "lock", "shutdown",
		"play", "weather", "search", "open_app",
		"exit",
	}, names)
}

func TestRoute_WrappedExtractErrorKeepsPrompt(t *testing.T) {
	p := Pattern{
		Name:     "wrapped",
		Keywords: [][]string{{"lembrete"}},
		Parse: func([]string) (Action, error) {
			return nil, fmt.Errorf("parse: %w", &ExtractError{Intent: "reminder", Prompt: promptReminderTask})
		},
	}

	assert.Equal(t, Clarify{Intent: "reminder", Prompt: promptReminderTask}, NewRouter(p).Route("lembrete"))
}

func TestRoute_ReminderBeyondAYearAsksAgain(t *testing.T) {
	a := NewRouter().Route("me lembre de pagar a conta em 200000000000 minutos")
	assert.Equal(t, Clarify{Intent: "reminder", Prompt: promptReminderTime}, a)
}
