package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dibaisales/central/internal/application/conversion"
	"github.com/dibaisales/central/internal/domain/mapping"
	"github.com/dibaisales/central/internal/infrastructure/config"
	"github.com/dibaisales/central/internal/infrastructure/logger"
)

const commandTimeout = 10 * time.Minute

// options are shared by every subcommand.
type options struct {
	in      string
	out     string
	verbose bool

	funnel string
	user   string
	excel  bool
}

// app is built lazily so that --help works without a config file.
type app struct {
	opts *options
	svc  *conversion.Service
	cfg  *config.Config
	log  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{opts: &options{}}

	root := &cobra.Command{
		Use:   "salesopsctl",
		Short: "Run the sales-operations spreadsheet conversions on local files",
		Long: `salesopsctl runs the same conversions as the HTTP service against files on
disk: the CRM lead bundle, the Speedio/Assertiva registry, the Salesforce
contacts export, the partner phone extractor and the email extractor.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	root.PersistentFlags().StringVarP(&a.opts.in, "in", "i", "", "input spreadsheet (.xlsx, .xls or .csv)")
	root.PersistentFlags().StringVarP(&a.opts.out, "out", "o", "", "output file or directory (defaults to the current directory)")
	root.PersistentFlags().BoolVarP(&a.opts.verbose, "verbose", "v", false, "enable debug logging")
	_ = root.MarkPersistentFlagRequired("in")

	root.AddCommand(
		a.convertCmd(),
		a.archiveCmd("registry", "Unify a Speedio/Assertiva export into the registry layout",
			func(ctx context.Context, up conversion.Upload) (*conversion.Archive, error) {
				return a.svc.UnifyRegistry(ctx, up)
			}),
		a.archiveCmd("salesforce", "Export a registry spreadsheet as Salesforce contacts",
			func(ctx context.Context, up conversion.Upload) (*conversion.Archive, error) {
				return a.svc.ExportSalesforce(ctx, up)
			}),
		a.archiveCmd("phones", "Extract one row per partner phone",
			func(ctx context.Context, up conversion.Upload) (*conversion.Archive, error) {
				return a.svc.ExtractPartnerPhones(ctx, up)
			}),
		a.emailsCmd(),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logCfg := &logger.Config{Level: "warn", Format: "console", Output: "stderr"}
	if a.opts.verbose {
		logCfg.Level = "debug"
	}
	log, err := logger.New(logCfg, "salesopsctl")
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	a.cfg = cfg
	a.log = log
	a.svc = conversion.NewService(mapping.NewMapper(mapping.NewTransformRegistry()), log,
		conversion.WithMaxRows(cfg.Conversion.MaxRows))
	return nil
}

func (a *app) convertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a lead export into the CRM company and deal tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := conversion.LeadBundleRequest{
				Funnel: firstNonBlank(a.opts.funnel, a.cfg.Conversion.DefaultFunnel),
				User:   firstNonBlank(a.opts.user, a.cfg.Conversion.DefaultUser),
			}
			if req.Funnel == "" || req.User == "" {
				return fmt.Errorf("--funnel and --user are required")
			}
			return a.run(cmd, func(ctx context.Context, up conversion.Upload) (*conversion.Archive, error) {
				return a.svc.ConvertLeads(ctx, up, req)
			})
		},
	}
	cmd.Flags().StringVar(&a.opts.funnel, "funnel", "", "sales funnel stamped on every deal")
	cmd.Flags().StringVar(&a.opts.user, "user", "", "responsible user stamped on every row")
	return cmd
}

func (a *app) archiveCmd(use, short string, fn func(context.Context, conversion.Upload) (*conversion.Archive, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, fn)
		},
	}
}

func (a *app) emailsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emails",
		Short: "List the distinct partner emails, optionally as a workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			up, err := readUpload(a.opts.in)
			if err != nil {
				return err
			}
			res, err := a.svc.ExtractEmails(ctx, up, a.opts.excel)
			if err != nil {
				return err
			}
			for _, e := range res.Emails {
				fmt.Fprintln(cmd.OutOrStdout(), e)
			}
			if !a.opts.excel {
				return nil
			}
			body, err := base64.StdEncoding.DecodeString(res.ExcelBase64)
			if err != nil {
				return fmt.Errorf("decode email workbook: %w", err)
			}
			path, err := writeArchive(a.opts.out, &conversion.Archive{Name: conversion.EmailsSheet + ".xlsx", Body: body})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&a.opts.excel, "excel", false, "also write the emails as an .xlsx workbook")
	return cmd
}

func (a *app) run(cmd *cobra.Command, fn func(context.Context, conversion.Upload) (*conversion.Archive, error)) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	up, err := readUpload(a.opts.in)
	if err != nil {
		return err
	}
	archive, err := fn(ctx, up)
	if err != nil {
		return err
	}
	path, err := writeArchive(a.opts.out, archive)
	if err != nil {
		return err
	}
	a.log.Debug("conversion written", zap.String("command", cmd.Name()), zap.String("path", path))
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", path)
	return nil
}

func readUpload(path string) (conversion.Upload, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return conversion.Upload{}, fmt.Errorf("read input: %w", err)
	}
	return conversion.Upload{Filename: filepath.Base(path), Content: content}, nil
}

// writeArchive writes archive to out. An empty out or an existing directory
// receives the archive under its own name.
func writeArchive(out string, archive *conversion.Archive) (string, error) {
	path := out
	if path == "" {
		path = archive.Name
	} else if info, err := os.Stat(out); (err == nil && info.IsDir()) || strings.HasSuffix(out, string(os.PathSeparator)) {
		if err := os.MkdirAll(out, 0o755); err != nil {
			return "", fmt.Errorf("create output dir: %w", err)
		}
		path = filepath.Join(out, archive.Name)
	}
	if err := os.WriteFile(path, archive.Body, 0o644); err != nil {
		return "", fmt.Errorf("write output: %w", err)
	}
	return path, nil
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
