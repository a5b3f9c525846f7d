package cmd

import (
	"errors"
	"fmt"
	"strings"

	cfgpkg "github.com/KaramelBytes/premium-explorer/internal/config"
	"github.com/KaramelBytes/premium-explorer/internal/explorer"
	"github.com/KaramelBytes/premium-explorer/internal/report"
	"github.com/KaramelBytes/premium-explorer/internal/risk"
	"github.com/KaramelBytes/premium-explorer/internal/utils"
	"github.com/spf13/cobra"
)

// datasetFlags are the loader, classifier and output flags shared by the
// commands that read a dataset.
type datasetFlags struct {
	delimiter   string
	sheetName   string
	sheetIndex  int
	maxRows     int
	labelPolicy string
	seed        uint64
	format      string
	output      string
}

func (f *datasetFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',', ';', 'tab' (default: by extension)")
	c.Flags().StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to read (default: first sheet)")
	c.Flags().IntVar(&f.sheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index to read")
	c.Flags().IntVar(&f.maxRows, "max-rows", 0, "read at most this many data rows (0 = all)")
	c.Flags().StringVar(&f.labelPolicy, "label-policy", "", "cluster labeling: rank or fixed (overrides config)")
	c.Flags().Uint64Var(&f.seed, "seed", 0, "k-means seed (overrides config)")
	c.Flags().StringVarP(&f.format, "format", "f", "", "output format: markdown, text, json, yaml (overrides config)")
	c.Flags().StringVarP(&f.output, "output", "o", "", "write the result to this file instead of stdout")
}

// settings returns the loaded config or built-in defaults.
func settings() *cfgpkg.Global {
	if cfg != nil {
		return cfg
	}
	return &cfgpkg.Global{
		OutputFormat: string(report.FormatMarkdown),
		LogLevel:     "disabled",
		Risk: cfgpkg.Risk{
			LabelPolicy: string(risk.PolicyRank),
			KMeans:      risk.DefaultKMeansOptions(),
		},
	}
}

func (f *datasetFlags) dataPath(args []string) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}
	if p := settings().DataPath; p != "" {
		return p, nil
	}
	return "", errors.New("no dataset given: pass a file or set data_path with 'premex config set data_path <file>'")
}

func (f *datasetFlags) options(cmd *cobra.Command) (explorer.Options, error) {
	s := settings()
	opt := explorer.DefaultOptions()
	switch strings.ToLower(f.delimiter) {
	case "":
	case ",":
		opt.Load.Delimiter = ','
	case ";":
		opt.Load.Delimiter = ';'
	case "\t", "tab":
		opt.Load.Delimiter = '\t'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
	}
	opt.Load.SheetName = s.SheetName
	if f.sheetName != "" {
		opt.Load.SheetName = f.sheetName
	}
	if f.sheetIndex > 0 {
		opt.Load.SheetIndex = f.sheetIndex
	}
	opt.Load.MaxRows = s.MaxRows
	if f.maxRows > 0 {
		opt.Load.MaxRows = f.maxRows
	}

	rs := s.Risk
	if cmd.Flags().Changed("label-policy") {
		rs.LabelPolicy = f.labelPolicy
	}
	rc, err := rs.Classifier()
	if err != nil {
		return opt, err
	}
	if cmd.Flags().Changed("seed") {
		rc.KMeans.Seed = f.seed
	}
	opt.Risk = rc
	return opt, nil
}

func (f *datasetFlags) reportFormat(cmd *cobra.Command) (report.Format, error) {
	if cmd.Flags().Changed("format") {
		return report.ParseFormat(f.format)
	}
	return report.ParseFormat(settings().OutputFormat)
}

// writeResult prints b or saves it atomically to f.output.
func (f *datasetFlags) writeResult(cmd *cobra.Command, b []byte) error {
	if f.output == "" {
		_, err := cmd.OutOrStdout().Write(b)
		return err
	}
	if err := utils.SafeWriteFile(f.output, b); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote %s\n", f.output)
	return nil
}

// render opens the dataset, builds the dashboard for sel and writes the
// requested sections.
func (f *datasetFlags) render(cmd *cobra.Command, args []string, sel explorer.Selection, sections []report.Section) error {
	path, err := f.dataPath(args)
	if err != nil {
		return err
	}
	opt, err := f.options(cmd)
	if err != nil {
		return err
	}
	format, err := f.reportFormat(cmd)
	if err != nil {
		return err
	}
	sess, err := explorer.Open(cmd.Context(), path, opt)
	if err != nil {
		return err
	}
	d, err := sess.Dashboard(sel)
	if err != nil {
		return err
	}
	b, err := report.Render(d, report.Options{Format: format, Sections: sections})
	if err != nil {
		return err
	}
	return f.writeResult(cmd, b)
}
