package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/example/go-matcha-text/internal/cleaners"
	"github.com/example/go-matcha-text/internal/config"
	"github.com/example/go-matcha-text/internal/doctor"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	var sweep bool
	var sweepDryRun bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run local environment checks",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			backend, err := config.NormalizeBackend(cfg.Phonemizer.Backend)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(os.Stdout, "backend: %s\n", backend)

			exe := cfg.Phonemizer.EspeakPath
			if exe == "" {
				exe = "espeak-ng"
			}

			dcfg := doctor.Config{
				EspeakVersion: func() (string, error) {
					return probeEspeakVersion(exe)
				},
				SkipEspeak: backend == config.BackendGoruut,
				Pipelines:  cleaners.Names(),
				LookupPipeline: func(name string) error {
					_, err := cleaners.Lookup(name)
					return err
				},
			}

			result := doctor.Run(dcfg, os.Stdout)

			if sweep || sweepDryRun {
				sres := doctor.SweepTemps("", sweepDryRun)
				for _, dir := range sres.Found {
					_, _ = fmt.Fprintf(os.Stdout, "stale espeak temp: %s\n", dir)
				}
				for _, e := range sres.Errors {
					_, _ = fmt.Fprintf(os.Stdout, "%s temp sweep: %v\n", doctor.FailMark, e)
				}
				_, _ = fmt.Fprintf(
					os.Stdout,
					"%s temp sweep: found %d, removed %d\n",
					doctor.PassMark,
					len(sres.Found),
					len(sres.Removed),
				)
			}

			if result.Failed() {
				for _, f := range result.Failures() {
					fmt.Fprintf(os.Stderr, "FAIL: %s\n", f)
				}

				return errors.New("doctor checks failed")
			}

			_, _ = fmt.Fprintln(os.Stdout, "doctor checks passed")

			return nil
		},
	}

	cmd.Flags().BoolVar(&sweep, "sweep-temps", false, "Remove stale espeak temp directories left by crashed engines")
	cmd.Flags().BoolVar(&sweepDryRun, "sweep-dry-run", false, "Report stale espeak temp directories without removing them")

	return cmd
}

// probeEspeakVersion runs `espeak-ng --version` and returns its output.
func probeEspeakVersion(exe string) (string, error) {
	out, err := exec.CommandContext(context.Background(), exe, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("%s --version failed: %w", exe, err)
	}

	return strings.TrimSpace(string(out)), nil
}
