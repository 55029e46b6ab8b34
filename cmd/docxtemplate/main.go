package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate"
)

const version = "0.1.0"

type renderOptions struct {
	template   string
	data       string
	out        string
	format     string
	configFile string
	strict     bool
	compact    bool
	locale     string
	logLevel   string
}

func main() {
	if err := newRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "docxtemplate",
		Short:         "Render DOCX and WordprocessingML templates against XML data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.AddCommand(newRenderCommand(stdout, stderr), newValidateCommand(stdout), &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "docxtemplate version %s\n", version)
		},
	})
	return rootCmd
}

func newRenderCommand(stdout, stderr io.Writer) *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a template with data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			engine := docxtemplate.NewWithConfig(config)
			engine.SetLogger(docxtemplate.NewLogger(stderr, docxtemplate.ParseLogLevel(config.LogLevel)))
			return runRender(engine, opts, stdout)
		},
	}

	cmd.Flags().StringVarP(&opts.template, "template", "t", "", "Path to the template (.docx or .xml)")
	cmd.Flags().StringVarP(&opts.data, "data", "d", "", "Path to the XML data file, - for stdin")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output path, stdout when empty (xml only)")
	cmd.Flags().StringVar(&opts.format, "format", "", "Template format: docx or xml, taken from the template extension when empty")
	cmd.Flags().StringVarP(&opts.configFile, "config", "c", "", "Path to a YAML configuration file")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail on expressions that select no data")
	cmd.Flags().BoolVar(&opts.compact, "compact", false, "Strip insignificant whitespace from rendered XML")
	cmd.Flags().StringVar(&opts.locale, "locale", "", "Locale used to render item indexes")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error, off)")
	_ = cmd.MarkFlagRequired("template")

	return cmd
}

func newValidateCommand(stdout io.Writer) *cobra.Command {
	var (
		template  string
		maxIssues int
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a DOCX template for malformed directives and unknown tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(template)
			if err != nil {
				return docxtemplate.NewDocumentError("read", template, err)
			}
			engine := docxtemplate.New()
			engine.SetLogger(docxtemplate.NewLogger(io.Discard, docxtemplate.LogOff))
			result, err := engine.ValidateTemplate(docxtemplate.ValidateTemplateInput{DocxBytes: content, MaxIssues: maxIssues})
			if err != nil {
				return err
			}

			for _, issue := range result.Issues {
				line := fmt.Sprintf("%s %s %s#%d", issue.Severity, issue.Code, issue.Location.Part, issue.Location.MarkerOrdinal)
				if issue.Tag != "" {
					line += " " + issue.Tag
				}
				line += ": " + issue.Message
				if len(issue.Suggestions) > 0 {
					line += fmt.Sprintf(" (did you mean %q?)", issue.Suggestions[0])
				}
				fmt.Fprintln(stdout, line)
			}
			if !result.Valid {
				return fmt.Errorf("template has %d error(s)", result.Summary.ErrorCount)
			}
			fmt.Fprintf(stdout, "ok: %d markers checked\n", result.Summary.CheckedMarkers)
			return nil
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "", "Path to the DOCX template")
	cmd.Flags().IntVar(&maxIssues, "max-issues", 0, "Report at most this many issues, 0 for all")
	_ = cmd.MarkFlagRequired("template")

	return cmd
}

// loadConfig layers explicitly set flags over the config file and environment.
func loadConfig(cmd *cobra.Command, opts renderOptions) (*docxtemplate.Config, error) {
	config := docxtemplate.ConfigFromEnvironment()
	if opts.configFile != "" {
		var err error
		if config, err = docxtemplate.LoadConfigFile(opts.configFile); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("strict") {
		config.StrictMode = opts.strict
	}
	if flags.Changed("compact") {
		config.CompactOutput = opts.compact
	}
	if flags.Changed("locale") {
		config.Locale = opts.locale
	}
	if flags.Changed("log-level") {
		config.LogLevel = strings.ToLower(opts.logLevel)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func runRender(engine *docxtemplate.Engine, opts renderOptions, stdout io.Writer) error {
	format, err := templateFormat(opts)
	if err != nil {
		return err
	}

	dataSource, closeData, err := openData(opts.data)
	if err != nil {
		return err
	}
	defer func() { _ = closeData() }()

	switch format {
	case "docx":
		if opts.out == "" {
			return fmt.Errorf("--out is required for docx templates")
		}
		content, err := os.ReadFile(opts.template)
		if err != nil {
			return docxtemplate.NewDocumentError("read", opts.template, err)
		}
		out, err := os.Create(opts.out)
		if err != nil {
			return docxtemplate.NewDocumentError("create", opts.out, err)
		}
		if err := engine.RenderDocx(bytes.NewReader(content), int64(len(content)), dataSource, out); err != nil {
			out.Close()
			return err
		}
		return out.Close()

	default:
		template, err := os.Open(opts.template)
		if err != nil {
			return docxtemplate.NewDocumentError("read", opts.template, err)
		}
		defer template.Close()

		if opts.out == "" {
			return engine.RenderXML(template, dataSource, stdout)
		}
		out, err := os.Create(opts.out)
		if err != nil {
			return docxtemplate.NewDocumentError("create", opts.out, err)
		}
		if err := engine.RenderXML(template, dataSource, out); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	}
}

func templateFormat(opts renderOptions) (string, error) {
	format := strings.ToLower(opts.format)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(opts.template)), ".")
	}
	switch format {
	case "docx", "xml":
		return format, nil
	default:
		return "", fmt.Errorf("unsupported template format %q, use --format docx or --format xml", format)
	}
}

// openData returns the data source: stdin for "-", nothing for an empty path.
func openData(path string) (io.Reader, func() error, error) {
	switch path {
	case "":
		return nil, func() error { return nil }, nil
	case "-":
		return os.Stdin, func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, docxtemplate.NewDocumentError("read", path, err)
	}
	return f, f.Close, nil
}
