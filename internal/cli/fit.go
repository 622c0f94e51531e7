package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
	"github.com/matzehuels/forcegraph/pkg/viewport"
)

type fitOpts struct {
	width, height float64
	padding       float64
	box           string
	jsonOut       bool
}

type fitOutput struct {
	Box       viewport.ContentBox `json:"box"`
	Transform viewport.Transform  `json:"transform"`
}

// fitCommand creates the fit command for computing a view transform.
func (c *CLI) fitCommand() *cobra.Command {
	var opts fitOpts

	cmd := &cobra.Command{
		Use:   "fit [drawing.svg|-]",
		Short: "Compute the transform that fits content into a container",
		Long: `Compute the transform that fits content into a container.

The content box is read from the root viewBox of an SVG document, or given
directly with --box x,y,width,height. The result is the uniform scale and
translation that centers the content in the container, never enlarging it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("padding") {
				opts.padding = c.Config.Viewport.Padding
			}
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return runFit(cmd.OutOrStdout(), cmd.InOrStdin(), input, opts)
		},
	}

	cmd.Flags().Float64Var(&opts.width, "width", 0, "container width (required)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "container height (required)")
	cmd.Flags().Float64Var(&opts.padding, "padding", 0, "padding inside the container (default: viewport.padding)")
	cmd.Flags().StringVar(&opts.box, "box", "", "content box as x,y,width,height instead of an SVG")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the result as JSON")
	cmd.MarkFlagRequired("width")
	cmd.MarkFlagRequired("height")

	return cmd
}

func runFit(w io.Writer, stdin io.Reader, input string, opts fitOpts) error {
	box, err := fitBox(stdin, input, opts.box)
	if err != nil {
		return err
	}
	if err := errors.ValidateDimensions(opts.width, opts.height); err != nil {
		return err
	}
	t := viewport.Fit(opts.width, opts.height, box, opts.padding)

	if opts.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(fitOutput{Box: box, Transform: t})
	}

	kv := func(k, v string) {
		fmt.Fprintln(w, styleKey.Render(k)+" "+StyleValue.Render(v))
	}
	kv("box", fmt.Sprintf("%g %g %g %g", box.X, box.Y, box.Width, box.Height))
	kv("scale", strconv.FormatFloat(t.Scale, 'g', 6, 64))
	kv("translate", fmt.Sprintf("%g %g", t.TranslateX, t.TranslateY))
	if box.Degenerate() {
		fmt.Fprintln(w, StyleWarning.Render("content box is degenerate; identity transform used"))
	}
	return nil
}

// fitBox resolves the content box from --box or from an SVG document.
func fitBox(stdin io.Reader, input, boxFlag string) (viewport.ContentBox, error) {
	if boxFlag != "" {
		if input != "" {
			return viewport.ContentBox{}, errors.New(errors.ErrCodeInvalidInput, "give either an SVG document or --box, not both")
		}
		return parseBox(boxFlag)
	}

	var (
		data []byte
		err  error
	)
	switch input {
	case "":
		return viewport.ContentBox{}, errors.New(errors.ErrCodeInvalidInput, "an SVG document or --box is required")
	case pipeline.Stdin:
		data, err = io.ReadAll(stdin)
	default:
		data, err = os.ReadFile(input)
	}
	if err != nil {
		if os.IsNotExist(err) {
			return viewport.ContentBox{}, errors.New(errors.ErrCodeFileNotFound, "file not found: %s", input)
		}
		return viewport.ContentBox{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", input)
	}
	return viewport.BoxFromSVG(data)
}

// parseBox parses "x,y,width,height".
func parseBox(s string) (viewport.ContentBox, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 4 {
		return viewport.ContentBox{}, errors.New(errors.ErrCodeInvalidInput, "box must be x,y,width,height, got %q", s)
	}
	var v [4]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return viewport.ContentBox{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "box must be x,y,width,height, got %q", s)
		}
		v[i] = n
	}
	return viewport.ContentBox{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
}
