package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/datasweeper/internal/chart"
	"github.com/JonMunkholm/datasweeper/internal/core"
)

type convertOptions struct {
	Dedupe    bool
	Impute    bool
	Columns   []string
	Format    string
	OutDir    string
	Chart     bool
	Preview   bool
	Force     bool
	ChartRows int
}

func newConvertCmd() *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "convert FILE...",
		Short: "Convert files between CSV and Excel, cleaning them on the way",
		Long: `Run each file through the sweeper pipeline and write the result.

Cleaning steps run in the order dedupe, impute. --columns keeps only the
named columns, in the order given. Unsupported files are reported and
skipped; the command fails if any file could not be processed.

Example: sweep convert sales.csv --dedupe --impute --columns region,total --format excel --out ./clean --chart`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd.Context(), args, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().BoolVar(&opts.Dedupe, "dedupe", false, "Remove duplicate rows")
	cmd.Flags().BoolVar(&opts.Impute, "impute", false, "Fill missing numeric values with the column mean")
	cmd.Flags().StringSliceVar(&opts.Columns, "columns", nil, "Columns to keep (default: all)")
	cmd.Flags().StringVar(&opts.Format, "format", "csv", "Output format: csv|excel")
	cmd.Flags().StringVar(&opts.OutDir, "out", ".", "Output directory")
	cmd.Flags().BoolVar(&opts.Chart, "chart", false, "Also write an SVG bar chart of the first two numeric columns")
	cmd.Flags().BoolVar(&opts.Preview, "preview", false, "Print the first rows of each input")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Allow overwriting an input file")
	cmd.Flags().IntVar(&opts.ChartRows, "chart-rows", 100, "Most rows drawn in a chart (0 for all)")

	return cmd
}

// fileState turns the flags into the widget state a browser user would set.
func (o convertOptions) fileState() (core.FileState, error) {
	st := core.DefaultFileState()

	choice, err := core.ParseChoice(o.Format)
	if err != nil {
		return st, err
	}

	st.SetClean(o.Dedupe || o.Impute || o.Columns != nil)
	if o.Dedupe {
		if err := st.Trigger(core.ActionDedupe); err != nil {
			return st, err
		}
	}
	if o.Impute {
		if err := st.Trigger(core.ActionImpute); err != nil {
			return st, err
		}
	}
	if o.Columns != nil {
		st.SelectColumns(o.Columns)
	}
	st.SetVisualize(o.Chart)
	if err := st.RequestConversion(choice); err != nil {
		return st, err
	}
	return st, nil
}

func runConvert(ctx context.Context, paths []string, opts convertOptions, stdout, stderr io.Writer) error {
	st, err := opts.fileState()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p := core.NewPipeline(core.DefaultPreviewRows, opts.ChartRows)

	failed := 0
	for _, path := range paths {
		if err := convertOne(ctx, p, path, st, opts, stdout, stderr); err != nil {
			fmt.Fprintf(stderr, "%s: %s\n", path, core.FormatUserError(err))
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(paths))
	}
	return nil
}

func convertOne(ctx context.Context, p *core.Pipeline, path string, st core.FileState, opts convertOptions, stdout, stderr io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	res := p.Run(ctx, core.UploadedFile{ID: path, Name: filepath.Base(path), Data: data}, st)
	if res.Err != nil {
		return res.Err
	}

	if opts.Preview {
		writeRecords(stdout, res.Preview.Records())
	}
	for _, n := range res.Notices {
		fmt.Fprintf(stdout, "%s: %s\n", path, n)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(stderr, "%s: warning: %s\n", path, w)
	}
	if res.ExportErr != nil {
		return res.ExportErr
	}

	out := filepath.Join(opts.OutDir, res.Download.FileName)
	if !opts.Force && samePath(out, path) {
		return fmt.Errorf("refusing to overwrite input %s (use --force)", path)
	}
	if err := os.WriteFile(out, res.Download.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(stdout, "%s -> %s (%d rows, %d columns)\n", path, out, res.Table.Rows(), res.Table.Width())

	if res.Chart != nil {
		svg := strings.TrimSuffix(out, filepath.Ext(out)) + ".svg"
		if err := writeChart(svg, res.Chart); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s -> %s (chart)\n", path, svg)
	}
	return nil
}

func writeChart(path string, data *core.ChartData) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return chart.BarSVG(f, data, chart.DefaultOptions)
}

func writeRecords(w io.Writer, records [][]string) {
	for _, rec := range records {
		fmt.Fprintln(w, strings.Join(rec, "\t"))
	}
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
