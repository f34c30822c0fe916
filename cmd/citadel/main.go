package main

import (
	"flag"
	"os"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/OscarLo11212821/citadel/pkg/engine"
	"github.com/OscarLo11212821/citadel/pkg/eval/hce"
	"github.com/OscarLo11212821/citadel/pkg/eval/nnue"
	"github.com/OscarLo11212821/citadel/pkg/uci"
)

const (
	name   = "Citadel"
	author = "Citadel authors"
)

var (
	versionName = "dev"
	flgEval     string
	flgNnueFile string
)

// evalSettings is shared with the UCI options so setoption can swap the
// backend at runtime.
type evalSettings struct {
	backend  string
	nnueFile string
	logger   zerolog.Logger
}

func (s *evalSettings) builder() func() engine.Evaluator {
	return func() engine.Evaluator {
		if strings.EqualFold(s.backend, "NNUE") {
			var weights, err = nnue.LoadWeightsFile(s.nnueFile)
			if err != nil {
				s.logger.Warn().Err(err).Str("file", s.nnueFile).
					Msg("nnue load failed, falling back to HCE")
				return hce.NewEvaluationService()
			}
			return nnue.NewEvaluationService(weights)
		}
		return hce.NewEvaluationService()
	}
}

func main() {
	var v = viper.New()
	v.SetEnvPrefix("citadel")
	v.AutomaticEnv()
	v.SetDefault("hash", 16)
	v.SetDefault("eval", "HCE")
	v.SetDefault("nnuefile", "")

	flag.StringVar(&flgEval, "eval", v.GetString("eval"), "evaluation backend (HCE or NNUE)")
	flag.StringVar(&flgNnueFile, "nnuefile", v.GetString("nnuefile"), "path to a CNUE model file")
	flag.Parse()

	var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	log.Logger = logger

	logger.Info().
		Str("version", versionName).
		Str("runtime", runtime.Version()).
		Str("goos", runtime.GOOS).
		Str("goarch", runtime.GOARCH).
		Msg(name)

	var settings = &evalSettings{
		backend:  flgEval,
		nnueFile: flgNnueFile,
		logger:   logger,
	}

	var eng = engine.NewEngine(settings.builder())
	eng.Hash = v.GetInt("hash")

	var onEvalChange = func() error {
		eng.SetEvaluator(settings.builder())
		return nil
	}

	var protocol = uci.New(name, author, versionName, eng, logger,
		[]uci.Option{
			&uci.IntOption{Name: "Hash", Min: 1, Max: 1024, Value: &eng.Hash},
			&uci.IntOption{Name: "Threads", Min: 1, Max: 1, Value: &eng.Threads},
			&uci.ComboOption{Name: "Eval", Vars: []string{"HCE", "NNUE"}, Value: &settings.backend, OnChange: onEvalChange},
			&uci.StringOption{Name: "NnueFile", Value: &settings.nnueFile, OnChange: onEvalChange},
		},
	)
	protocol.Run()
}
