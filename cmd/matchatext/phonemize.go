package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/go-matcha-text/internal/cleaners"
	"github.com/example/go-matcha-text/internal/config"
	"github.com/example/go-matcha-text/internal/phonemizer"
	"github.com/example/go-matcha-text/internal/sequence"
	"github.com/example/go-matcha-text/internal/symbols"
	"github.com/spf13/cobra"
)

func newPhonemizeCmd() *cobra.Command {
	var text string
	var pipeline string
	var showIDs bool
	var intersperse bool
	var chunk bool
	var maxChunkChars int

	cmd := &cobra.Command{
		Use:   "phonemize",
		Short: "Run text through a cleaner pipeline and print phonemes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			inputText, err := readInputText(text, os.Stdin)
			if err != nil {
				return err
			}

			selectedPipeline := cfg.Text.Pipeline
			if pipeline != "" {
				selectedPipeline = pipeline
			}

			backend, err := config.NormalizeBackend(cfg.Phonemizer.Backend)
			if err != nil {
				return err
			}
			factory, err := phonemizer.NewFactory(backend, cfg.Phonemizer.EspeakPath)
			if err != nil {
				return err
			}

			pool := phonemizer.NewPool(factory, phonemizer.Languages()...)
			defer func() { _ = pool.Close() }()

			enc := sequence.NewEncoder(pool)

			chunks := []string{inputText}
			if chunk {
				chunks = cleaners.ChunkBySentence(inputText, maxChunkChars)
			}

			for _, c := range chunks {
				res, err := enc.Encode(cmd.Context(), c, selectedPipeline, "cli")
				if err != nil {
					return err
				}

				fmt.Fprintln(os.Stdout, res.Phonemes)

				if showIDs || intersperse || cfg.Text.Intersperse {
					ids := res.IDs
					if intersperse || cfg.Text.Intersperse {
						ids = sequence.Intersperse(ids, symbols.PadID)
					}
					fmt.Fprintln(os.Stdout, formatIDs(ids))
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Text to phonemize (if empty, read from stdin)")
	cmd.Flags().StringVar(&pipeline, "pipeline", "", "Cleaner pipeline name (overrides config)")
	cmd.Flags().BoolVar(&showIDs, "ids", false, "Also print the encoded symbol id sequence")
	cmd.Flags().BoolVar(&intersperse, "intersperse", false, "Interleave the pad id into the printed sequence (implies --ids)")
	cmd.Flags().BoolVar(&chunk, "chunk", false, "Split input into sentence chunks and phonemize each on its own line")
	cmd.Flags().IntVar(&maxChunkChars, "max-chunk-chars", 220, "Maximum characters per chunk when --chunk is enabled")

	return cmd
}

func readInputText(text string, stdin io.Reader) (string, error) {
	if strings.TrimSpace(text) != "" {
		return cleaners.Normalize(text)
	}

	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}

	input, err := cleaners.Normalize(string(b))
	if err != nil {
		return "", fmt.Errorf("either provide --text or pipe text on stdin")
	}
	return input, nil
}

func formatIDs(ids []int64) string {
	var sb strings.Builder
	for i, id := range ids {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%d", id)
	}
	return sb.String()
}
