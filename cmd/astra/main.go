package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	cli "github.com/spf13/pflag"
	log "log/slog"

	"astra/internal/assistant"
	"astra/internal/audio"
	"astra/internal/bus"
	"astra/internal/config"
	"astra/internal/console"
	"astra/internal/intent"
	"astra/internal/ipc"
	"astra/internal/llm"
	"astra/internal/media"
	"astra/internal/memory"
	"astra/internal/notify"
	"astra/internal/osctl"
	"astra/internal/proxy"
	"astra/internal/reminder"
	"astra/internal/store"
	"astra/internal/tts"
	"astra/internal/weather"
	"astra/internal/wiki"
	"astra/pkg/stt"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, cli.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "astra:", err)
		os.Exit(2)
	}

	log.SetDefault(log.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      logLevelMap[cfg.Log],
		TimeFormat: time.TimeOnly,
	})))

	log.Info("Booting up")

	if err := run(cfg); err != nil {
		log.Error("Astra failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	// A reminders record that cannot be read is never overwritten.
	sched, err := reminder.New(st, nil)
	if err != nil {
		return err
	}

	services, err := proxy.NewHTTPClient(cfg.Proxy, 15*time.Second)
	if err != nil {
		return err
	}
	llmClient, err := proxy.NewHTTPClient(cfg.Proxy, cfg.LLM.Timeout)
	if err != nil {
		return err
	}
	log.Debug("Loaded http clients", "proxy", cfg.Proxy)

	session := memory.NewSession(newModel(cfg, llmClient), st, cfg.LLM.SystemPrompt)

	runner := osctl.ExecRunner{}
	desktop := osctl.New(osctl.Config{
		ScreenshotDir: cfg.OSCtl.ScreenshotDir,
		AppDirs:       cfg.OSCtl.AppDirs,
		VolumeStep:    cfg.OSCtl.VolumeStep,
		ShutdownDelay: cfg.OSCtl.ShutdownDelay,
	}, runner)

	var ducker tts.Ducker
	if cfg.Voice.Duck {
		ducker = osctl.NewDucker(runner, []string{"espeak-ng", "astra"}, 0.3, 10, 150*time.Millisecond)
	}

	listener, closeListener, err := newListener(cfg)
	if err != nil {
		return err
	}
	defer closeListener()

	whisper, err := stt.NewTranscriber(cfg.Speech.Model, stt.Options{
		Language: cfg.Speech.Language,
		Threads:  cfg.Speech.Threads,
	})
	if err != nil {
		return fmt.Errorf("whisper: %w", err)
	}
	defer whisper.Close()
	log.Debug("Loaded whisper", "model", cfg.Speech.Model)

	transcript := console.New(os.Stdout)

	deps := assistant.Deps{
		Speaker:     tts.New(cfg.Voice.Name, ducker),
		Listener:    listener,
		Transcriber: whisper,
		Router:      intent.NewRouter(),
		Reminders:   sched,
		Converser:   session,
		Weather: weather.New(weather.Config{
			OpenCageKey: cfg.Weather.OpenCageKey,
			GeocodeURL:  cfg.Weather.GeocodeURL,
			ForecastURL: cfg.Weather.ForecastURL,
			Language:    cfg.Weather.Language,
		}, services),
		Encyclopedia: wiki.New(services),
		Media:        media.NewYouTube(services, desktop),
		OS:           desktop,
		Transcript:   transcript,
	}
	if cfg.Speech.Beep != "" {
		deps.Cue = notify.NewCue(cfg.Speech.Beep)
	}
	if cfg.Notify.Desktop {
		deps.Notifier = notify.Desktop{AppName: "Astra"}
	}
	if cfg.Bus.URL != "" {
		mirror := bus.NewMirror(cfg.Bus.URL, 5*time.Second)
		defer mirror.Close()
		deps.Mirror = mirror
	}

	err = ipc.Serve(ctx, cfg.Socket, func(m ipc.Message) ipc.Reply {
		switch m.Cmd {
		case ipc.CmdStop:
			log.Info("Stop requested over control socket")
			cancel()
			return ipc.Reply{OK: true}
		case ipc.CmdPing:
			return ipc.Reply{OK: true}
		}
		return ipc.Reply{Error: "unknown command " + m.Cmd}
	})
	if err != nil {
		log.Warn("Control socket unavailable", "err", err)
	}

	log.Info("Boot up - successful")
	transcript.Banner(fmt.Sprintf("memória: %s | conversa: %s/%s", cfg.Storage.Backend, cfg.LLM.Backend, cfg.LLM.Model))

	loop := assistant.New(deps, assistant.Options{
		ListenTimeout: cfg.Speech.ListenTimeout,
		PhraseLimit:   cfg.Speech.PhraseLimit,
		WikiLanguage:  cfg.Wiki.Language,
		WikiSentences: cfg.Wiki.Sentences,
	})
	return loop.Run(ctx)
}

func openStore(cfg *config.Config) (*store.Store, error) {
	var (
		backend store.Backend
		err     error
	)
	switch cfg.Storage.Backend {
	case "sqlite":
		backend, err = store.NewSQLiteBackend(cfg.SQLitePath())
	default:
		backend, err = store.NewFileBackend(cfg.DataDir)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Backend, err)
	}

	log.Debug("Opened store", "backend", cfg.Storage.Backend, "dir", cfg.DataDir)
	return store.New(backend, cfg.Storage.MemoryFile, cfg.Storage.RemindersFile), nil
}

func newModel(cfg *config.Config, client *http.Client) memory.Model {
	if cfg.LLM.Backend == "openai" {
		return llm.NewOpenAI(cfg.LLM.APIKey, cfg.LLM.URL, cfg.LLM.Model, client)
	}
	return llm.NewOllama(cfg.LLM.URL, cfg.LLM.Model, client)
}

type source interface {
	Listen(ctx context.Context, timeout, phraseLimit time.Duration) ([]float32, error)
}

// capture reports the audio package's timeout as the loop's.
type capture struct{ src source }

func (c capture) Listen(ctx context.Context, timeout, phraseLimit time.Duration) ([]float32, error) {
	pcm, err := c.src.Listen(ctx, timeout, phraseLimit)
	if errors.Is(err, audio.ErrTimeout) {
		return nil, assistant.ErrTimeout
	}
	return pcm, err
}

func newListener(cfg *config.Config) (assistant.Listener, func(), error) {
	if cfg.Speech.ReplayDir != "" {
		r, err := audio.NewReplay(cfg.Speech.ReplayDir)
		if err != nil {
			return nil, nil, err
		}
		return capture{r}, func() {}, nil
	}

	mic := audio.NewMicrophone()
	mic.Threshold = cfg.Speech.Threshold
	return capture{mic}, func() { _ = mic.Close() }, nil
}
