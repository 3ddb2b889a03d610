package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/benoitkugler/svgmerge/svgclean"
	"github.com/benoitkugler/svgmerge/svgdoc"
	"github.com/benoitkugler/svgmerge/svgedit"
	"github.com/benoitkugler/svgmerge/svgfetch"
	"github.com/benoitkugler/svgmerge/svgraster"
	"github.com/spf13/cobra"
)

var (
	sanitizeInPlace bool
	fetchRaw        bool
	previewScale    float64
)

var dimsCmd = &cobra.Command{
	Use:   "dims <svg>...",
	Short: "Print the native dimensions of SVG files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDims,
}

var sanitizeCmd = &cobra.Command{
	Use:   "sanitize <svg>",
	Short: "Remove the style rules forcing animation timings to zero",
	Args:  cobra.ExactArgs(1),
	RunE:  runSanitize,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Download an SVG document",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetch,
}

var previewCmd = &cobra.Command{
	Use:   "preview <layout|svg>",
	Short: "Render a layout or an SVG file to PNG",
	Long: "preview rasterizes a saved layout, or a single .svg file, to PNG.\n" +
		"Text, images, clipping and masks are not rendered.",
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	sanitizeCmd.Flags().BoolVarP(&sanitizeInPlace, "write", "w", false, "write the result to the file instead of stdout")
	fetchCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")
	fetchCmd.Flags().BoolVar(&fetchRaw, "raw", false, "do not sanitize the downloaded document")
	previewCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: the input with a .png extension)")
	previewCmd.Flags().Float64Var(&previewScale, "scale", 1, "pixels per canvas unit")
}

func runDims(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		dims := svgdoc.ExtractDimensions(string(content))
		fmt.Fprintf(w, "%s\t%s\t%s\n", path, svgdoc.FormatNumber(dims.Width), svgdoc.FormatNumber(dims.Height))
	}
	return w.Flush()
}

func runSanitize(cmd *cobra.Command, args []string) error {
	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	clean := svgclean.Sanitize(string(content))
	if !sanitizeInPlace {
		_, err := fmt.Fprint(cmd.OutOrStdout(), clean)
		return err
	}
	if clean == string(content) {
		logger.Info("nothing to sanitize", "path", path)
		return nil
	}
	return writeOutput(cmd, path, []byte(clean))
}

func runFetch(cmd *cobra.Command, args []string) error {
	fetcher := svgfetch.New(appConfig.FetcherConfig())
	res, err := fetcher.Fetch(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	content := res.Content
	if !fetchRaw {
		content = svgclean.Sanitize(content)
	}
	logger.Debug("document fetched", "url", res.URL, "content_type", res.ContentType, "bytes", len(res.Content))
	return writeOutput(cmd, outputPath, []byte(content))
}

func runPreview(cmd *cobra.Command, args []string) error {
	path := args[0]
	var buf bytes.Buffer
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		img, err := svgraster.RasterIcon(string(content), previewScale)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := svgraster.EncodePNG(&buf, img); err != nil {
			return err
		}
	} else {
		l, err := readLayoutFile(path)
		if err != nil {
			return err
		}
		if err := svgedit.PreviewLayout(logger, &buf, l, previewScale); err != nil {
			return err
		}
	}

	out := outputPath
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ".png"
	}
	return writeOutput(cmd, out, buf.Bytes())
}
