package assistant

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"math"
	"reflect"
	"strconv"
	"strings"

	"astra/internal/intent"
	"astra/internal/media"
	"astra/internal/osctl"
	"astra/internal/weather"
	"astra/internal/wiki"
)

// Spoken replies.
const (
	msgCityNotFound   = "Não achei essa cidade."
	msgWeatherFailed  = "Erro ao verificar o clima."
	msgWikiNotFound   = "Não encontrei nada na wiki."
	msgWikiFailed     = "Não consegui acessar a Wikipédia agora."
	msgVideoNotFound  = "Não encontrei nenhum vídeo para %s."
	msgMediaFailed    = "Não consegui abrir o YouTube."
	msgReminderFailed = "Não consegui criar o lembrete."
	msgAppNotFound    = "Não encontrei o aplicativo %s."
	msgOSFailed       = "Não consegui executar esse comando no sistema."
)

// dispatch carries out a and returns what to say. stop ends the loop.
func (l *Loop) dispatch(ctx context.Context, a intent.Action) (reply string, stop bool) {
	switch a := a.(type) {
	case intent.Play:
		return l.play(ctx, a.Query), false

	case intent.Weather:
		return l.weather(ctx, a.City), false

	case intent.Search:
		return l.search(ctx, a.Topic), false

	case intent.Reminder:
		msg, err := l.deps.Reminders.Schedule(a.Task, a.Minutes)
		if err != nil {
			log.Error("Schedule failed", "task", a.Task, "minutes", a.Minutes, "err", err)
			return msgReminderFailed, false
		}
		return msg, false

	case intent.VolumeSet:
		return l.osReply(l.deps.OS.SetVolume(ctx, a.Percent), fmt.Sprintf("Volume ajustado para %d%%.", a.Percent)), false

	case intent.VolumeStep:
		msg := "Aumentando o volume."
		if a.Direction == intent.Down {
			msg = "Diminuindo o volume."
		}
		return l.osReply(l.deps.OS.StepVolume(ctx, a.Direction == intent.Up), msg), false

	case intent.VolumeMute:
		return l.osReply(l.deps.OS.ToggleMute(ctx), "Alternando o mudo."), false

	case intent.BrightnessSet:
		return l.osReply(l.deps.OS.SetBrightness(ctx, a.Percent), fmt.Sprintf("Brilho ajustado para %d%%.", a.Percent)), false

	case intent.Screenshot:
		path, err := l.deps.OS.Screenshot(ctx)
		if err == nil {
			log.Info("Screenshot saved", "path", path)
		}
		return l.osReply(err, "Captura de tela salva."), false

	case intent.EmptyTrash:
		return l.osReply(l.deps.OS.EmptyTrash(ctx), "Lixeira esvaziada."), false

	case intent.LockWorkstation:
		return l.osReply(l.deps.OS.Lock(ctx), "Bloqueando a estação de trabalho."), false

	case intent.Shutdown:
		delay, err := l.deps.OS.Shutdown(ctx)
		if err != nil {
			return l.osReply(err, ""), false
		}
		return fmt.Sprintf("O computador será desligado em %d minuto(s). %s", int(delay.Minutes()), Farewell), true

	case intent.OpenApp:
		name, err := l.deps.OS.OpenApp(ctx, a.Name)
		if errors.Is(err, osctl.ErrAppNotFound) {
			return fmt.Sprintf(msgAppNotFound, a.Name), false
		}
		return l.osReply(err, fmt.Sprintf("Abrindo %s.", name)), false

	case intent.Converse:
		reply, err := l.deps.Converser.Converse(ctx, a.Text)
		if err != nil {
			log.Error("Conversational model failed", "err", err)
		}
		return reply, false

	case intent.Clarify:
		return a.Prompt, false

	case intent.Exit:
		return Farewell, true
	}

	log.Warn("Unhandled action", "action", actionName(a))
	return "", false
}

func (l *Loop) osReply(err error, ok string) string {
	if err != nil {
		log.Error("OS command failed", "err", err)
		return msgOSFailed
	}
	return ok
}

func (l *Loop) play(ctx context.Context, query string) string {
	err := l.deps.Media.Play(ctx, query)
	switch {
	case err == nil:
		return fmt.Sprintf("Tocando %s.", query)
	case errors.Is(err, media.ErrNotFound):
		return fmt.Sprintf(msgVideoNotFound, query)
	default:
		log.Error("Media failed", "query", query, "err", err)
		return msgMediaFailed
	}
}

func (l *Loop) weather(ctx context.Context, city string) string {
	lat, lon, err := l.deps.Weather.Geocode(ctx, city)
	if err != nil {
		if !errors.Is(err, weather.ErrCityNotFound) {
			log.Error("Geocode failed", "city", city, "err", err)
		}
		return msgCityNotFound
	}

	temp, err := l.deps.Weather.CurrentTemperature(ctx, lat, lon)
	if err != nil {
		log.Error("Forecast failed", "city", city, "err", err)
		return msgWeatherFailed
	}

	return fmt.Sprintf("A temperatura em %s é de %s graus.", city, formatDegrees(temp))
}

func (l *Loop) search(ctx context.Context, topic string) string {
	summary, err := l.deps.Encyclopedia.Summarize(ctx, topic, l.opt.WikiLanguage, l.opt.WikiSentences)
	switch {
	case err == nil:
		return summary
	case errors.Is(err, wiki.ErrNotFound):
		return msgWikiNotFound
	default:
		log.Error("Encyclopedia failed", "topic", topic, "err", err)
		return msgWikiFailed
	}
}

// formatDegrees renders one decimal place at most, with a decimal comma.
func formatDegrees(t float64) string {
	s := strconv.FormatFloat(math.Round(t*10)/10, 'f', -1, 64)
	return strings.Replace(s, ".", ",", 1)
}

func actionName(a intent.Action) string {
	if a == nil {
		return ""
	}
	return strings.ToLower(reflect.TypeOf(a).Name())
}
