package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/jessevdk/go-flags"
	"github.com/karupanerura/arithmetic-evaluator/internal/batch"
	"github.com/karupanerura/arithmetic-evaluator/internal/expression"
	"github.com/karupanerura/arithmetic-evaluator/internal/server"
	"github.com/karupanerura/arithmetic-evaluator/internal/types"
	"github.com/mattn/go-isatty"
	"google.golang.org/api/option"
)

type Option struct {
	File               string `short:"f" long:"file" description:"[OPTIONAL] Batch file of expressions (.yaml or .json)" required:"false"`
	Listen             string `short:"l" long:"listen" description:"[OPTIONAL] Listen host and port to serve the evaluation API" required:"false"`
	Audience           string `long:"audience" description:"[OPTIONAL] Require Google ID tokens issued for this audience to call the API" required:"false"`
	Parallelism        int    `short:"p" long:"parallelism" description:"[OPTIONAL] Number of batch expressions evaluated at once (0 means unlimited)" default:"0"`
	JSON               bool   `long:"json" description:"[OPTIONAL] Print results as JSON"`
	Strict             bool   `long:"strict" description:"[OPTIONAL] Reject input left over after a complete expression"`
	RightAssocExponent bool   `long:"right-assoc-exponent" description:"[OPTIONAL] Group ^ from the right (2^3^2 = 2^(3^2))"`
}

func (o *Option) parseOptions() []expression.ParseOption {
	var opts []expression.ParseOption
	if o.Strict {
		opts = append(opts, expression.Strict())
	}
	if o.RightAssocExponent {
		opts = append(opts, expression.RightAssociativeExponent())
	}
	return opts
}

const (
	banner = `Hello! Welcome to Arithmetic expression evaluator.
You can calculate value for expression such as 2*3+(4-5)+2^3/4.
Allowed numbers: positive, negative and decimals.
Supported operations: Add, Subtract, Multiply, Divide, PowerOf(^), BitwiseAnd(&), BitwiseOr(|).
Enter your arithmetic expression below:`
	failureMessage = "Error in evaluating expression. Please enter valid expression"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout))
}

func run(args []string, stdin io.Reader, stdout io.Writer) int {
	var opt Option
	parser := flags.NewParser(&opt, flags.Default)
	parser.Usage = "[OPTIONS] [--] [EXPRESSION...]"
	rest, err := parser.ParseArgs(separateExpressionArgs(args))
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return 0
		} else {
			parser.WriteHelp(stdout)
			return 1
		}
	}
	if (opt.File != "" && opt.Listen != "") || (len(rest) != 0 && (opt.File != "" || opt.Listen != "")) {
		parser.WriteHelp(stdout)
		return 1
	}

	// server mode
	if opt.Listen != "" {
		err = serveEvaluations(opt.Listen, server.Config{
			Audience:         opt.Audience,
			ValidatorOptions: []option.ClientOption{option.WithUserAgent("arithmetic-evaluator")},
			ParseOptions:     opt.parseOptions(),
		})
		if err != nil {
			log.Printf("failed to serve evaluations: %v", err)
			return 1
		}
		return 0
	}

	// batch mode
	if opt.File != "" {
		return runBatch(stdout, opt.File, batch.Options{
			Parallelism:  opt.Parallelism,
			ParseOptions: opt.parseOptions(),
		})
	}

	if len(rest) != 0 {
		printResult(stdout, strings.Join(rest, " "), opt.JSON, opt.parseOptions())
		return 0
	}

	// interactive mode
	if f, ok := stdin.(interface{ Fd() uintptr }); ok && isatty.IsTerminal(f.Fd()) {
		fmt.Fprintln(stdout, banner)
	}
	reader := bufio.NewReader(stdin)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			printResult(stdout, strings.TrimRight(line, "\r\n"), opt.JSON, opt.parseOptions())
		}
		if errors.Is(err, io.EOF) {
			return 0
		} else if err != nil {
			log.Printf("failed to read expression: %v", err)
			return 1
		}
	}
}

var valueOptions = map[string]struct{}{
	"-f": {}, "--file": {},
	"-l": {}, "--listen": {},
	"--audience": {},
	"-p": {}, "--parallelism": {},
}

// separateExpressionArgs inserts "--" before the first argument that reads as
// a negative operand such as "-5+2" or "-(1)", so that it is not taken as a flag.
func separateExpressionArgs(args []string) []string {
	for i, arg := range args {
		if arg == "--" {
			return args
		}
		if i > 0 {
			if _, ok := valueOptions[args[i-1]]; ok {
				continue
			}
		}
		operand := strings.TrimLeft(arg, "-")
		if operand == arg || operand == "" || !strings.ContainsRune("0123456789.(", rune(operand[0])) {
			continue
		}

		separated := make([]string, 0, len(args)+1)
		separated = append(separated, args[:i]...)
		separated = append(separated, "--")
		return append(separated, args[i:]...)
	}
	return args
}

func printResult(w io.Writer, source string, asJSON bool, opts []expression.ParseOption) {
	ret, err := expression.EvaluateString(source, opts...)
	if asJSON {
		o := map[string]any{"expression": source}
		if err != nil {
			o["error"] = types.NewExceptionByError(err).Exception()
		} else {
			o["result"] = formatNumber(ret)
		}
		if err = dumpJSON(w, o); err != nil {
			log.Printf("failed to dump result as JSON: %v", err)
		}
		return
	}

	if err != nil {
		fmt.Fprintf(w, "%s\n\n", failureMessage)
		return
	}
	fmt.Fprintf(w, "The computed number is %s\n\n", formatNumber(ret))
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func runBatch(w io.Writer, filePath string, opts batch.Options) int {
	entries, err := loadBatch(filePath)
	if err != nil {
		log.Printf("failed to load batch: %v", err)
		return 1
	}

	results, err := batch.Run(context.Background(), entries, opts)
	if err != nil {
		log.Printf("failed to run batch: %v", err)
		return 1
	}

	summary := batch.Summarize(results)
	if err = dumpJSON(w, map[string]any{"results": results, "summary": summary}); err != nil {
		log.Printf("failed to dump batch results: %v", err)
		return 1
	}
	if summary.Failed != 0 {
		return 1
	}
	return 0
}

func loadBatch(filePath string) ([]batch.Entry, error) {
	var parseBatch func(io.Reader) ([]batch.Entry, error)
	switch filepath.Ext(filePath) {
	case ".json":
		parseBatch = batch.ParseBatchJSON
	case ".yaml", ".yml":
		parseBatch = batch.ParseBatchYAML
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", filePath)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("os.Open(%q): %w", filePath, err)
	}
	defer f.Close()

	entries, err := parseBatch(f)
	if err != nil {
		return nil, fmt.Errorf("batch.ParseBatch: %w", err)
	}
	return entries, nil
}

func serveEvaluations(listen string, config server.Config) error {
	handler, err := server.NewHTTPHandler(context.Background(), config, nil)
	if err != nil {
		return err
	}

	srv := http.Server{
		Handler: handler,
		Addr:    listen,
	}

	log.Printf("Listen HTTP on %s", listen)
	if err := srv.ListenAndServe(); errors.Is(err, http.ErrServerClosed) {
		return nil
	} else if err != nil {
		return err
	}
	return nil
}

func dumpJSON(w io.Writer, v any) error {
	opts := []json.EncodeOptionFunc{json.DisableHTMLEscape()}
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		if isatty.IsTerminal(f.Fd()) {
			opts = append(opts, json.Colorize(json.DefaultColorScheme))
		}
	}

	b, err := json.MarshalIndentWithOption(v, "", "\t", opts...)
	if err != nil {
		return fmt.Errorf("json.MarshalIndentWithOption: %w", err)
	}

	if _, err = w.Write(b); err != nil {
		return fmt.Errorf("w.Write: %w", err)
	}
	if _, err = io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("io.WriteString: %w", err)
	}
	return nil
}
