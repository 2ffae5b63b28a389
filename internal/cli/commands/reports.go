package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"text/tabwriter"

	"PartsKeeper/internal/cli/model"
	"PartsKeeper/internal/config"
)

// download выполняет GET с ?format= и пишет ответ в файл или Out.
func download(ctx context.Context, cfg *config.Config, path, format, out string) error {
	q := url.Values{"format": {format}}
	body, _, err := call(ctx, cfg, http.MethodGet, path+"?"+q.Encode(), nil, nil, http.StatusOK)
	if err != nil {
		return err
	}
	return writeOutput(out, body)
}

type reportCmd struct{}

func (reportCmd) Name() string        { return "report" }
func (reportCmd) Description() string { return "Отчёт по просроченным контрактам" }
func (reportCmd) Usage() string       { return "report [-format text|csv|tsv] [-o file]" }

func (reportCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	format := fs.String("format", "text", "")
	out := fs.String("o", "", "")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return ErrUsage
	}
	return download(ctx, cfg, "/api/parts/expired", *format, *out)
}

type exportCmd struct{}

func (exportCmd) Name() string        { return "export" }
func (exportCmd) Description() string { return "Выгрузить таблицу своих UF" }
func (exportCmd) Usage() string       { return "export [-format csv|tsv] [-o file]" }

func (exportCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	format := fs.String("format", "csv", "")
	out := fs.String("o", "", "")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return ErrUsage
	}
	return download(ctx, cfg, "/api/parts/export", *format, *out)
}

type logsCmd struct{}

func (logsCmd) Name() string        { return "logs" }
func (logsCmd) Description() string { return "Журнал действий (администратор)" }
func (logsCmd) Usage() string       { return "logs [-csv] [-o file]" }

func (logsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("logs", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	asCSV := fs.Bool("csv", false, "")
	out := fs.String("o", "", "")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return ErrUsage
	}
	if *asCSV {
		return download(ctx, cfg, "/api/logs", "csv", *out)
	}
	body, _, err := call(ctx, cfg, http.MethodGet, "/api/logs", nil, nil, http.StatusOK)
	if err != nil {
		return err
	}
	entries, err := decode[[]model.AuditEntry](body)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Timestamp, e.User, e.Action, e.Details)
	}
	return tw.Flush()
}

func init() {
	RegisterCmd(GroupReports, reportCmd{})
	RegisterCmd(GroupReports, exportCmd{})
	RegisterCmd(GroupReports, logsCmd{})
}
