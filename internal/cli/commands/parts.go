package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"text/tabwriter"

	"PartsKeeper/internal/cli/model"
	"PartsKeeper/internal/config"
)

func fetchParts(ctx context.Context, cfg *config.Config, path string) ([]model.Part, error) {
	body, _, err := call(ctx, cfg, http.MethodGet, path, nil, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return decode[[]model.Part](body)
}

// printParts печатает таблицу; withETag добавляет столбец отпечатков для -etag.
func printParts(w io.Writer, parts []model.Part, withETag bool) {
	if len(parts) == 0 {
		fmt.Fprintln(w, "Нет записей")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := "#\tUF\tFRU\tCLIENTE\tDATA_FIM\tSTATUS\t"
	if withETag {
		header += "\tETAG"
	}
	fmt.Fprintln(tw, header)
	for _, p := range parts {
		mark := ""
		if p.Expired {
			mark = "VENCIDO"
		}
		line := fmt.Sprintf("%d\t%s\t%s\t%s\t%s\t%s\t%s", p.Index, p.Region, p.FRU, p.Client, p.EndDate, p.Status, mark)
		if withETag {
			line += "\t" + p.ETag
		}
		fmt.Fprintln(tw, line)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "Всего: %d\n", len(parts))
}

// rowETag возвращает отпечаток строки index. С -etag берётся отпечаток из list;
// с -fru строка перечитывается, и если на позиции теперь другая запчасть
// (таблицу сдвинули), команда отказывается, а не берёт чужой отпечаток.
func rowETag(ctx context.Context, cfg *config.Config, index int, etag, fru string) (string, error) {
	if etag != "" {
		return etag, nil
	}
	fru = strings.TrimSpace(fru)
	if fru == "" {
		return "", ErrUsage
	}
	parts, err := fetchParts(ctx, cfg, "/api/parts")
	if err != nil {
		return "", err
	}
	for _, p := range parts {
		if p.Index != index {
			continue
		}
		if !strings.EqualFold(p.FRU, fru) {
			return "", fmt.Errorf("%w: row %d is now FRU %s, not %s; run list and retry", ErrConflict, index, p.FRU, strings.ToUpper(fru))
		}
		return p.ETag, nil
	}
	return "", fmt.Errorf("%w: row %d not found; run list and retry", ErrConflict, index)
}

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return 0, ErrUsage
	}
	return i, nil
}

func ifMatchHeader(etag string) http.Header {
	return http.Header{"If-Match": {strconv.Quote(etag)}}
}

type listCmd struct{}

func (listCmd) Name() string        { return "list" }
func (listCmd) Description() string { return "Показать записи своих UF" }
func (listCmd) Usage() string       { return "list [-expired] [-etag]" }

func (listCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	expired := fs.Bool("expired", false, "только просроченные")
	withETag := fs.Bool("etag", false, "показать отпечатки строк")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return ErrUsage
	}
	path := "/api/parts"
	if *expired {
		path = "/api/parts/expired"
	}
	parts, err := fetchParts(ctx, cfg, path)
	if err != nil {
		return err
	}
	printParts(Out, parts, *withETag)
	return nil
}

type addCmd struct{}

func (addCmd) Name() string        { return "add" }
func (addCmd) Description() string { return "Завести запчасть" }
func (addCmd) Usage() string {
	return "add -uf <UF> -fru <FRU> -cliente <nome> -serial <SN> -fim <dd/mm/aaaa> [-sla ..] [-sub1 ..] [-sub2 ..] [-sub3 ..] [-desc ..] [-maq ..]"
}

func (addCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	var in model.NewPart
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&in.Region, "uf", "", "UF")
	fs.StringVar(&in.FRU, "fru", "", "FRU (7 символов)")
	fs.StringVar(&in.Sub1, "sub1", "", "")
	fs.StringVar(&in.Sub2, "sub2", "", "")
	fs.StringVar(&in.Sub3, "sub3", "", "")
	fs.StringVar(&in.Description, "desc", "", "описание")
	fs.StringVar(&in.Machines, "maq", "", "máquinas")
	fs.StringVar(&in.ClientName, "cliente", "", "cliente")
	fs.StringVar(&in.Serial, "serial", "", "número de série")
	fs.StringVar(&in.EndDate, "fim", "", "data fim")
	fs.StringVar(&in.SLA, "sla", "", "SLA")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return ErrUsage
	}
	body, _, err := call(ctx, cfg, http.MethodPost, "/api/parts", in, nil, http.StatusCreated)
	if err != nil {
		return err
	}
	p, err := decode[model.Part](body)
	if err != nil {
		return err
	}
	fmt.Fprintln(Out, "Created:")
	fmt.Fprintf(Out, "  #:       %d\n", p.Index)
	fmt.Fprintf(Out, "  cliente: %s\n", p.Client)
	return nil
}

type renewCmd struct{}

func (renewCmd) Name() string        { return "renew" }
func (renewCmd) Description() string { return "Продлить просроченный контракт" }
func (renewCmd) Usage() string {
	return "renew (-etag <etag> | -fru <FRU>) <index> <dd/mm/aaaa> [sla]"
}

func (renewCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("renew", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	etag := fs.String("etag", "", "отпечаток строки из list")
	fru := fs.String("fru", "", "FRU строки, которую видели в list")
	if err := fs.Parse(args); err != nil || fs.NArg() < 2 || fs.NArg() > 3 {
		return ErrUsage
	}
	index, err := parseIndex(fs.Arg(0))
	if err != nil {
		return err
	}
	in := model.Renewal{EndDate: fs.Arg(1), SLA: fs.Arg(2)}
	tag, err := rowETag(ctx, cfg, index, *etag, *fru)
	if err != nil {
		return err
	}
	body, _, err := call(ctx, cfg, http.MethodPut, "/api/parts/"+strconv.Itoa(index), in, ifMatchHeader(tag), http.StatusOK)
	if err != nil {
		return err
	}
	p, err := decode[model.Part](body)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Renewed #%d: %s\n", p.Index, p.Client)
	return nil
}

type deleteCmd struct{}

func (deleteCmd) Name() string        { return "delete" }
func (deleteCmd) Description() string { return "Удалить строку" }
func (deleteCmd) Usage() string       { return "delete (-etag <etag> | -fru <FRU>) <index>" }

func (deleteCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	etag := fs.String("etag", "", "отпечаток строки из list")
	fru := fs.String("fru", "", "FRU строки, которую видели в list")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return ErrUsage
	}
	index, err := parseIndex(fs.Arg(0))
	if err != nil {
		return err
	}
	tag, err := rowETag(ctx, cfg, index, *etag, *fru)
	if err != nil {
		return err
	}
	if _, _, err := call(ctx, cfg, http.MethodDelete, "/api/parts/"+strconv.Itoa(index), nil, ifMatchHeader(tag), http.StatusNoContent); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Deleted #%d\n", index)
	return nil
}

func init() {
	RegisterCmd(GroupParts, listCmd{})
	RegisterCmd(GroupParts, addCmd{})
	RegisterCmd(GroupParts, renewCmd{})
	RegisterCmd(GroupParts, deleteCmd{})
}
