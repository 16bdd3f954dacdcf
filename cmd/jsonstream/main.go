// Command jsonstream exercises the library end to end: it verifies or
// reformats JSON documents, feeding the parser in fixed-size chunks the
// way an embedding application would.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aledsdavies/jsonstream/runtime/gen"
	"github.com/aledsdavies/jsonstream/runtime/parser"
)

func main() {
	var (
		indent            string
		allowComments     bool
		noValidateStrings bool
		chunkSize         int
	)

	rootCmd := &cobra.Command{
		Use:           "jsonstream",
		Short:         "Stream-oriented JSON verification and reformatting",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&allowComments, "allow-comments", false, "Permit // and /* */ comments in the input")
	rootCmd.PersistentFlags().BoolVar(&noValidateStrings, "no-validate-strings", false, "Skip UTF-8 validation of input strings")
	rootCmd.PersistentFlags().IntVar(&chunkSize, "chunk-size", 4096, "Read size used to feed the parser")

	reformatCmd := &cobra.Command{
		Use:   "reformat [file]",
		Short: "Parse JSON and pretty-print it to stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReformat(args, indent, allowComments, noValidateStrings, chunkSize)
		},
	}
	reformatCmd.Flags().StringVar(&indent, "indent", "  ", "Indent string for beautified output")

	verifyCmd := &cobra.Command{
		Use:   "verify [file]",
		Short: "Check that the input is valid JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(args, allowComments, noValidateStrings, chunkSize)
		},
	}

	rootCmd.AddCommand(reformatCmd, verifyCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// getInputReader returns the input source: the named file, or stdin when
// no argument was given.
func getInputReader(args []string) (io.Reader, func() error, error) {
	if len(args) == 0 {
		return os.Stdin, func() error { return nil }, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("error opening input: %w", err)
	}
	return f, f.Close, nil
}

// parserOpts translates the shared flags into parser options.
func parserOpts(allowComments, noValidateStrings bool) []parser.Opt {
	var opts []parser.Opt
	if allowComments {
		opts = append(opts, parser.AllowComments())
	}
	if noValidateStrings {
		opts = append(opts, parser.DontValidateStrings())
	}
	return opts
}

// feed drives the parser over the whole input in chunkSize chunks and
// renders any error against the offending chunk.
func feed(p *parser.Parser, r io.Reader, chunkSize int) error {
	chunk := make([]byte, chunkSize)
	for {
		n, readErr := r.Read(chunk)
		if n > 0 {
			if err := p.Parse(chunk[:n]); err != nil {
				return fmt.Errorf("%s", p.ErrorString(true, chunk[:n]))
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("error reading input: %w", readErr)
		}
	}
	if err := p.Finish(); err != nil {
		return fmt.Errorf("%s", p.ErrorString(false, nil))
	}
	return nil
}

// reformatCallbacks pipes every parser event straight into the generator.
func reformatCallbacks(g *gen.Generator) parser.Callbacks {
	return parser.Callbacks{
		OnNull:       func() bool { return g.Null() == nil },
		OnBool:       func(val bool) bool { return g.Bool(val) == nil },
		OnNumber:     func(raw []byte) bool { return g.Number(raw) == nil },
		OnString:     func(val []byte) bool { return g.String(val) == nil },
		OnStartMap:   func() bool { return g.MapOpen() == nil },
		OnMapKey:     func(key []byte) bool { return g.String(key) == nil },
		OnEndMap:     func() bool { return g.MapClose() == nil },
		OnStartArray: func() bool { return g.ArrayOpen() == nil },
		OnEndArray:   func() bool { return g.ArrayClose() == nil },
	}
}

func runReformat(args []string, indent string, allowComments, noValidateStrings bool, chunkSize int) error {
	reader, closeFunc, err := getInputReader(args)
	if err != nil {
		return err
	}
	defer func() { _ = closeFunc() }()

	g, err := gen.New(gen.Beautify(), gen.Indent(indent))
	if err != nil {
		return err
	}
	g.PrintCallback(func(b []byte) {
		_, _ = os.Stdout.Write(b)
	})

	p, err := parser.New(reformatCallbacks(g), parserOpts(allowComments, noValidateStrings)...)
	if err != nil {
		return err
	}
	defer p.Free()

	return feed(p, reader, chunkSize)
}

func runVerify(args []string, allowComments, noValidateStrings bool, chunkSize int) error {
	reader, closeFunc, err := getInputReader(args)
	if err != nil {
		return err
	}
	defer func() { _ = closeFunc() }()

	p, err := parser.New(parser.Callbacks{}, parserOpts(allowComments, noValidateStrings)...)
	if err != nil {
		return err
	}
	defer p.Free()

	if err := feed(p, reader, chunkSize); err != nil {
		return err
	}
	fmt.Println("JSON is valid")
	return nil
}
