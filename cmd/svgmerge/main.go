// Command svgmerge composes SVG documents into a single SVG file,
// from saved layouts or directly from files, and serves the HTTP API.
package main

func main() {
	Execute()
}
