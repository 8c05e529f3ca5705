package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/resume-scorer/internal/logger"
	"github.com/spigell/resume-scorer/internal/scoring"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

type analyzeOptions struct {
	resume string
	jd     string
	jdFile string
	noLLM  bool
	format string
}

var analyzeOpts analyzeOptions

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score a resume file against a job description and print the report",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		analyze(cmd, analyzeOpts)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeOpts.resume, "resume", "r", "", "resume file (txt, pdf, doc, docx)")
	analyzeCmd.Flags().StringVar(&analyzeOpts.jd, "jd", "", "job description text")
	analyzeCmd.Flags().StringVar(&analyzeOpts.jdFile, "jd-file", "", "file with the job description")
	analyzeCmd.Flags().BoolVar(&analyzeOpts.noLLM, "no-llm", false, "skip the LLM enhancement")
	analyzeCmd.Flags().StringVarP(&analyzeOpts.format, "format", "o", formatJSON, "output format: json or yaml")

	analyzeCmd.MarkFlagRequired("resume")
	analyzeCmd.MarkFlagsMutuallyExclusive("jd", "jd-file")
}

func analyze(cmd *cobra.Command, opts analyzeOptions) {
	// stdout carries the report only.
	logger, err := logger.New(logger.Options{JSON: viper.GetBool("json"), Debug: viper.GetBool("debug"), Stderr: true})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := checkFormat(opts.format); err != nil {
		logger.Fatal("invalid flags", zap.Error(err))
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	jobText, err := jobDescription(opts, promptJobDescription)
	if err != nil {
		logger.Fatal("reading the job description", zap.Error(err))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	p, err := buildPipeline(ctx, config, nil, logger)
	if err != nil {
		logger.Fatal("building the analysis pipeline", zap.Error(err))
	}

	report, err := p.analyzer.AnalyzeFile(ctx, opts.resume, jobText, !opts.noLLM)
	if err != nil {
		logger.Fatal("analysis failed", zap.Error(err), zap.String("resume", opts.resume))
	}

	if err := writeReport(cmd.OutOrStdout(), report, opts.format); err != nil {
		logger.Fatal("writing the report", zap.Error(err))
	}
}

func checkFormat(format string) error {
	switch format {
	case formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unsupported format %q (expected %s or %s)", format, formatJSON, formatYAML)
}

// jobDescription resolves --jd, then --jd-file, then asks interactively.
func jobDescription(opts analyzeOptions, ask func() (string, error)) (string, error) {
	if strings.TrimSpace(opts.jd) != "" {
		return opts.jd, nil
	}

	if opts.jdFile != "" {
		data, err := os.ReadFile(opts.jdFile)
		if err != nil {
			return "", fmt.Errorf("reading job description file: %w", err)
		}
		if strings.TrimSpace(string(data)) == "" {
			return "", fmt.Errorf("job description file %q is empty", opts.jdFile)
		}
		return string(data), nil
	}

	return ask()
}

func promptJobDescription() (string, error) {
	prompt := promptui.Prompt{
		Label: "Job description",
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("job description is required")
			}
			return nil
		},
	}

	return prompt.Run()
}

func writeReport(w io.Writer, report *scoring.MatchReport, format string) error {
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	return checkFormat(format)
}
