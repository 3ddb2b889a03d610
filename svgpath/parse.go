package svgpath

import (
	"errors"
	"fmt"

	"github.com/tdewolff/parse/v2/strconv"
)

var (
	errParamMismatch = errors.New("svgpath: param mismatch")
	errNoMoveTo      = errors.New("svgpath: path data must start with a moveto")
)

// pathCursor compiles the path data grammar into a Path.
type pathCursor struct {
	d   []byte
	pos int

	path           Path
	x, y           float64 // current point
	startX, startY float64 // start of the current sub-path
	cntlX, cntlY   float64 // last control point, reflected by S and T
	lastKey        byte
}

// Compile parses the `d` attribute of a path element.
// Relative commands are resolved and arcs are approximated by cubic
// bezier curves, so that the result only contains absolute
// MoveTo, LineTo, QuadTo, CubicTo and Close operations.
// On error, the path compiled so far is returned, which is what
// SVG renderers are expected to draw.
func Compile(d string) (Path, error) {
	c := pathCursor{d: []byte(d)}
	err := c.compile()
	return c.path, err
}

// ParseNumbers parses a list of numbers separated by
// white spaces and/or commas, such as in the points or
// viewBox attributes.
func ParseNumbers(s string) ([]float64, error) {
	c := pathCursor{d: []byte(s)}
	var out []float64
	for {
		c.skipSeparators()
		if c.pos >= len(c.d) {
			return out, nil
		}
		f, err := c.readNumber()
		if err != nil {
			return out, err
		}
		out = append(out, f)
	}
}

func isCommand(b byte) bool {
	switch b {
	case 'M', 'm', 'L', 'l', 'H', 'h', 'V', 'v', 'C', 'c', 'S', 's',
		'Q', 'q', 'T', 't', 'A', 'a', 'Z', 'z':
		return true
	}
	return false
}


func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}

func (c *pathCursor) skipSeparators() {
	for c.pos < len(c.d) && (isSpace(c.d[c.pos]) || c.d[c.pos] == ',') {
		c.pos++
	}
}

func (c *pathCursor) compile() error {
	var cmd byte
	for {
		c.skipSeparators()
		if c.pos >= len(c.d) {
			return nil
		}
		if b := c.d[c.pos]; isCommand(b) {
			cmd = b
			c.pos++
		} else if cmd == 0 {
			return errNoMoveTo
		} else if cmd == 'Z' || cmd == 'z' {
			return fmt.Errorf("svgpath: unexpected %q after closepath", b)
		}
		if c.lastKey == 0 && cmd != 'M' && cmd != 'm' {
			return errNoMoveTo
		}
		if err := c.addSeg(cmd); err != nil {
			return err
		}
		// extra coordinates after a moveto are implicit lineto commands
		switch cmd {
		case 'M':
			cmd = 'L'
		case 'm':
			cmd = 'l'
		}
	}
}

// readNumber reads a number in the grammar of path data.
// "1.5.5" is read as 1.5 followed by .5, and "10-5" as 10 then -5.
func (c *pathCursor) readNumber() (float64, error) {
	c.skipSeparators()
	f, n := strconv.ParseFloat(c.d[c.pos:])
	if n == 0 {
		return 0, errParamMismatch
	}
	c.pos += n
	return f, nil
}

// readFlag reads an arc flag, which may not be followed by a separator.
func (c *pathCursor) readFlag() (bool, error) {
	c.skipSeparators()
	if c.pos >= len(c.d) {
		return false, errParamMismatch
	}
	switch c.d[c.pos] {
	case '0':
		c.pos++
		return false, nil
	case '1':
		c.pos++
		return true, nil
	}
	return false, errParamMismatch
}

func (c *pathCursor) readNumbers(n int) ([]float64, error) {
	out := make([]float64, n)
	for i := range out {
		var err error
		if out[i], err = c.readNumber(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *pathCursor) closePath() {
	c.path.Stop(true)
	c.x, c.y = c.startX, c.startY
	c.cntlX, c.cntlY = c.x, c.y
}

// addSeg reads the arguments of `cmd` and adds the segment to the path.
func (c *pathCursor) addSeg(cmd byte) error {
	if cmd == 'Z' || cmd == 'z' {
		c.closePath()
		c.lastKey = cmd
		return nil
	}
	// a drawing command right after a closepath starts a
	// new sub-path at the same initial point
	if (c.lastKey == 'Z' || c.lastKey == 'z') && cmd != 'M' && cmd != 'm' {
		c.path.Start(toFixedP(c.x, c.y))
	}

	var ox, oy float64 // origin of relative commands
	rel := 'a' <= cmd && cmd <= 'z'
	if rel {
		ox, oy = c.x, c.y
	}

	switch cmd {
	case 'M', 'm':
		p, err := c.readNumbers(2)
		if err != nil {
			return err
		}
		c.x, c.y = ox+p[0], oy+p[1]
		c.startX, c.startY = c.x, c.y
		c.path.Start(toFixedP(c.x, c.y))
	case 'L', 'l':
		p, err := c.readNumbers(2)
		if err != nil {
			return err
		}
		c.x, c.y = ox+p[0], oy+p[1]
		c.path.Line(toFixedP(c.x, c.y))
	case 'H', 'h':
		p, err := c.readNumbers(1)
		if err != nil {
			return err
		}
		c.x = ox + p[0]
		c.path.Line(toFixedP(c.x, c.y))
	case 'V', 'v':
		p, err := c.readNumbers(1)
		if err != nil {
			return err
		}
		c.y = oy + p[0]
		c.path.Line(toFixedP(c.x, c.y))
	case 'C', 'c':
		p, err := c.readNumbers(6)
		if err != nil {
			return err
		}
		c.cntlX, c.cntlY = ox+p[2], oy+p[3]
		c.x, c.y = ox+p[4], oy+p[5]
		c.path.CubeBezier(toFixedP(ox+p[0], oy+p[1]), toFixedP(c.cntlX, c.cntlY), toFixedP(c.x, c.y))
	case 'S', 's':
		p, err := c.readNumbers(4)
		if err != nil {
			return err
		}
		x1, y1 := c.reflectControl('C', 'c', 'S', 's')
		c.cntlX, c.cntlY = ox+p[0], oy+p[1]
		c.x, c.y = ox+p[2], oy+p[3]
		c.path.CubeBezier(toFixedP(x1, y1), toFixedP(c.cntlX, c.cntlY), toFixedP(c.x, c.y))
	case 'Q', 'q':
		p, err := c.readNumbers(4)
		if err != nil {
			return err
		}
		c.cntlX, c.cntlY = ox+p[0], oy+p[1]
		c.x, c.y = ox+p[2], oy+p[3]
		c.path.QuadBezier(toFixedP(c.cntlX, c.cntlY), toFixedP(c.x, c.y))
	case 'T', 't':
		p, err := c.readNumbers(2)
		if err != nil {
			return err
		}
		c.cntlX, c.cntlY = c.reflectControl('Q', 'q', 'T', 't')
		c.x, c.y = ox+p[0], oy+p[1]
		c.path.QuadBezier(toFixedP(c.cntlX, c.cntlY), toFixedP(c.x, c.y))
	case 'A', 'a':
		radii, err := c.readNumbers(3)
		if err != nil {
			return err
		}
		large, err := c.readFlag()
		if err != nil {
			return err
		}
		sweep, err := c.readFlag()
		if err != nil {
			return err
		}
		end, err := c.readNumbers(2)
		if err != nil {
			return err
		}
		c.x, c.y = c.path.addArc(arc{
			rx: radii[0], ry: radii[1], rotation: radii[2],
			large: large, sweep: sweep,
			x: ox + end[0], y: oy + end[1],
		}, c.x, c.y)
	default:
		return fmt.Errorf("svgpath: unknown command %q", cmd)
	}

	switch cmd {
	case 'C', 'c', 'S', 's', 'Q', 'q', 'T', 't':
	default:
		c.cntlX, c.cntlY = c.x, c.y
	}
	c.lastKey = cmd
	return nil
}

// reflectControl returns the reflection of the last control point
// about the current point, if the previous command is one of `keys`,
// or the current point otherwise.
func (c *pathCursor) reflectControl(keys ...byte) (float64, float64) {
	for _, k := range keys {
		if c.lastKey == k {
			return 2*c.x - c.cntlX, 2*c.y - c.cntlY
		}
	}
	return c.x, c.y
}
