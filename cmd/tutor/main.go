// Command tutor is the terminal client: it records the learner through
// the configured capture command, sends each utterance to the gateway
// and plays the tutor's reply clips in order.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nvoisard/bilingo/internal/capture"
	"github.com/nvoisard/bilingo/internal/client"
	"github.com/nvoisard/bilingo/internal/config"
	"github.com/nvoisard/bilingo/internal/lang"
	"github.com/nvoisard/bilingo/internal/logger"
	"github.com/nvoisard/bilingo/internal/playback"
	"github.com/nvoisard/bilingo/internal/session"
	"github.com/nvoisard/bilingo/internal/tutor"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Logs go to stderr so the transcript on stdout stays readable
	log := logger.NewStderr(cfg.LogLevel, "console")

	native := lang.Code(cfg.NativeLang)
	target := lang.Code(cfg.TargetLang)
	if err := lang.ValidatePair(native, target); err != nil {
		log.Fatal().Err(err).Msg("Invalid language configuration")
	}
	if !lang.ValidLevel(cfg.Level) {
		log.Fatal().Str("level", cfg.Level).Msg("Invalid proficiency level")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend := client.NewBackend(cfg.GatewayURL, cfg.APIVersion, cfg.RequestTimeout, logger.Component(log, "backend"))
	sess := session.NewController(backend, logger.Component(log, "session"))
	mic := capture.NewController(capture.NewExecDevice(cfg.RecorderCommand), logger.Component(log, "capture"))
	engine := playback.NewEngine(
		playback.NewExecPlayer(cfg.PlayerCommand),
		playback.NewHTTPFetcher(cfg.GatewayURL),
		logger.Component(log, "playback"),
	)
	history := &tutor.History{}

	fmt.Printf("Bilingo — leçon de %s, niveau %s\n\n", lang.Name(target), cfg.Level)

	turn, err := sess.Start(ctx, native, target, cfg.Level)
	if err != nil {
		fmt.Printf("⚠ Impossible de démarrer la leçon : %v\n", err)
		os.Exit(1)
	}
	s, _ := sess.Session()

	hidden := renderTurn(s, turn)
	playTurn(ctx, engine, &turn)
	history.Append(turn)

	reader := bufio.NewReader(os.Stdin)
loop:
	for ctx.Err() == nil {
		fmt.Println("\n[Entrée] parler · a afficher l'aide · q quitter")
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		switch strings.TrimSpace(line) {
		case "q":
			break loop
		case "a":
			revealHidden(hidden)
			continue
		case "":
			// fall through to recording
		default:
			continue
		}

		if err := mic.Press(ctx); err != nil {
			fmt.Printf("⚠ Micro indisponible : %v\n", err)
			continue
		}
		fmt.Println("Enregistrement... [Entrée] pour terminer")
		if _, err := reader.ReadString('\n'); err != nil {
			mic.Release()
			break
		}

		blob, ok, err := mic.Release()
		if err != nil {
			fmt.Printf("⚠ Échec de l'enregistrement : %v\n", err)
			continue
		}
		if !ok {
			continue
		}

		fmt.Println("Traitement...")
		turn, err := sess.Submit(ctx, blob)
		mic.Settle()
		if err != nil {
			history.Append(tutor.FailedTurn(err))
			fmt.Printf("⚠ Échec de l'envoi : %v\nRéessayez quand vous voulez.\n", err)
			continue
		}

		if turn.UserText != "" {
			fmt.Printf("Vous : %s\n", turn.UserText)
		}
		hidden = renderTurn(s, turn)
		playTurn(ctx, engine, &turn)
		history.Append(turn)
	}

	fmt.Printf("\nFin de la leçon, %d échanges.\n", history.Len())
}

// renderTurn prints the tutor's reply. Segments in the learner's native
// language collapse to a labeled tip; the returned slice holds them for
// on-demand reveal.
func renderTurn(s tutor.Session, turn tutor.Turn) []tutor.Segment {
	var hidden []tutor.Segment
	for _, seg := range turn.Segments {
		d := tutor.Classify(seg, s)
		switch {
		case d.VisibleImmediately && d.Indicator != "":
			fmt.Printf("[%s] %s\n", d.Indicator, seg.Text)
		case d.VisibleImmediately:
			fmt.Println(seg.Text)
		default:
			fmt.Printf("[%s] aide masquée (a pour afficher)\n", d.Indicator)
			hidden = append(hidden, seg)
		}
	}
	for _, line := range tutor.RenderPronunciation(turn.Pronunciation) {
		fmt.Println(line)
	}
	for _, line := range tutor.RenderAnalysis(turn.Analysis) {
		fmt.Println(line)
	}
	return hidden
}

func revealHidden(hidden []tutor.Segment) {
	if len(hidden) == 0 {
		fmt.Println("(aucune aide masquée)")
		return
	}
	for _, seg := range hidden {
		fmt.Printf("[%s] %s\n", lang.Indicator(seg.Lang), seg.Text)
	}
}

// playTurn plays the reply clips in order. A failed clip abandons the
// rest of the sequence and marks the turn, nothing is replayed.
func playTurn(ctx context.Context, engine *playback.Engine, turn *tutor.Turn) {
	if len(turn.AudioSegments) == 0 {
		return
	}
	if err := engine.Play(ctx, turn.AudioSegments); err != nil {
		turn.AudioFailed = true
		fmt.Printf("⚠ Lecture audio interrompue : %v\n", err)
	}
}
