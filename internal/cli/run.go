package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"preop-drug-check/internal/adapters/secrets/configapi"
	mem "preop-drug-check/internal/adapters/storage/memory"
	"preop-drug-check/internal/adapters/workflow/dify"
	"preop-drug-check/internal/config"
	"preop-drug-check/internal/domain/checks"
	"preop-drug-check/internal/platform/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// errCheckFailed ya fue informado por stdout; solo fija el exit code.
var errCheckFailed = errors.New("check failed")

type runOptions struct {
	server    string
	date      string
	drugs     []string
	drugsFile string
	difyURL   string
	user      string
	timeout   time.Duration
	logLevel  string
}

func runCmd() *cobra.Command {
	var opts runOptions

	c := &cobra.Command{
		Use:   "run",
		Short: "Consulta el workflow una vez por medicamento usando la key de <server>/api/config",
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := drugList(opts.drugs, opts.drugsFile)
			if err != nil {
				return err
			}
			log, err := stderrLogger(opts.logLevel)
			if err != nil {
				return err
			}
			return runCheck(cmd.Context(), cmd.OutOrStdout(), log, opts, raw)
		},
	}

	c.Flags().StringVar(&opts.server, "server", "http://localhost:8080", "Servidor que expone /api/config")
	c.Flags().StringVar(&opts.date, "date", checks.Today(time.Now()), "Fecha de cirugía (YYYY-MM-DD)")
	c.Flags().StringArrayVar(&opts.drugs, "drug", nil, "Medicamento (repetible)")
	c.Flags().StringVar(&opts.drugsFile, "drugs-file", "", "Archivo con un medicamento por línea ('-' = stdin)")
	c.Flags().StringVar(&opts.difyURL, "dify-url", config.DefaultDifyBaseURL, "Base URL del workflow Dify")
	c.Flags().StringVar(&opts.user, "user", config.DefaultDifyUser, "Usuario enviado al workflow")
	c.Flags().DurationVar(&opts.timeout, "timeout", config.DefaultDifyTimeout, "Timeout por request")
	c.Flags().StringVar(&opts.logLevel, "log-level", "warn", "debug|info|warn|error")
	return c
}

// runCheck imprime una línea por medicamento, la alerta o la línea de error.
func runCheck(ctx context.Context, out io.Writer, log logger.Logger, opts runOptions, rawDrugs string) error {
	keys, err := configapi.NewClient(configapi.Config{BaseURL: opts.server, Timeout: opts.timeout})
	if err != nil {
		return err
	}
	runner, err := dify.NewClient(dify.Config{
		BaseURL: opts.difyURL,
		User:    opts.user,
		Timeout: opts.timeout,
	})
	if err != nil {
		return err
	}

	svc := checks.NewService(checks.Deps{
		Keys:        keys,
		Runner:      runner,
		Repo:        mem.NewCheckRepo(),
		Logger:      log,
		DefaultUser: opts.user,
	})

	c, err := svc.Run(ctx, checks.Input{RawDrugs: rawDrugs, SurgeryDate: opts.date})
	if err != nil {
		var drugErr *checks.DrugError
		switch {
		case errors.As(err, &drugErr):
			_, _ = fmt.Fprintln(out, checks.FailureLine(err.Error()))
		case checks.AlertMessage(err) != "":
			_, _ = fmt.Fprintln(out, checks.AlertMessage(err))
		default:
			_, _ = fmt.Fprintln(out, checks.FailureLine(err.Error()))
		}
		return errCheckFailed
	}

	for _, line := range c.Lines() {
		_, _ = fmt.Fprintln(out, line)
	}
	return nil
}

// stderrLogger deja stdout solo para los resultados.
func stderrLogger(level string) (logger.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	cfg.OutputPaths = []string{"stderr"}
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.NewZap(l), nil
}

// drugList junta --drug y --drugs-file en el formato del textarea (una línea por medicamento).
func drugList(drugs []string, file string) (string, error) {
	lines := append([]string(nil), drugs...)
	if file != "" {
		fromFile, err := readLines(file)
		if err != nil {
			return "", err
		}
		lines = append(lines, fromFile...)
	}
	return strings.Join(lines, "\n"), nil
}

func readLines(path string) ([]string, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("drugs file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("drugs file: %w", err)
	}
	return out, nil
}
