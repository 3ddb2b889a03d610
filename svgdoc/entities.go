package svgdoc

import (
	"encoding/xml"
	"fmt"
	"html"
	"maps"
	"strings"

	"github.com/dlclark/regexp2"
)

// entityDecl matches the internal general entities of a DOCTYPE, such as
// <!ENTITY ns_svg "http://www.w3.org/2000/svg">.
// Parameter entities (%) and external entities (SYSTEM, PUBLIC) are not matched.
var entityDecl = regexp2.MustCompile(`<!ENTITY\s+([^\s%"'<>]+)\s+(?:"([^"]*)"|'([^']*)')\s*>`, regexp2.None)

// entityRef matches the entity references of a markup fragment,
// along with the sections where `&` is not a reference.
var entityRef = regexp2.MustCompile(`<!--.*?-->|<!\[CDATA\[.*?\]\]>|<\?.*?\?>|&([A-Za-z_:][\w.:-]*);`, regexp2.Singleline)

// DeclaredEntities returns the entities declared in the internal subset
// of the DOCTYPE directive `dir`, or nil.
// Character references in the values are expanded.
func DeclaredEntities(dir []byte) map[string]string {
	m, err := entityDecl.FindStringMatch(string(dir))
	var out map[string]string
	for ; m != nil && err == nil; m, err = entityDecl.FindNextMatch(m) {
		if out == nil {
			out = make(map[string]string)
		}
		value := m.GroupByNumber(2)
		if len(value.Captures) == 0 {
			value = m.GroupByNumber(3)
		}
		name := m.GroupByNumber(1).String()
		if _, ok := out[name]; !ok { // the first declaration is binding
			out[name] = html.UnescapeString(value.String())
		}
	}
	return out
}

// EntityMap returns the entities known to the readers of this module:
// the HTML named entities, extended (or overridden) by `declared`.
func EntityMap(declared map[string]string) map[string]string {
	if len(declared) == 0 {
		return xml.HTMLEntity
	}
	out := make(map[string]string, len(xml.HTMLEntity)+len(declared))
	maps.Copy(out, xml.HTMLEntity)
	maps.Copy(out, declared)
	return out
}

// PortableInner returns Inner with its entity references rewritten so
// that the fragment is well-formed without the DOCTYPE of its document:
// declared entities are expanded, HTML named entities become numeric
// character references. The predefined XML entities are kept.
func (r *Root) PortableInner() string {
	if !strings.Contains(r.Inner, "&") {
		return r.Inner
	}
	out, err := entityRef.ReplaceFunc(r.Inner, func(m regexp2.Match) string {
		ref := m.String()
		name := m.GroupByNumber(1)
		if len(name.Captures) == 0 { // comment, CDATA or processing instruction
			return ref
		}
		return r.resolveRef(name.String(), ref)
	}, -1, -1)
	if err != nil {
		return r.Inner
	}
	return out
}

func (r *Root) resolveRef(name, ref string) string {
	switch name {
	case "amp", "lt", "gt", "quot", "apos":
		return ref
	}
	if v, ok := r.Entities[name]; ok {
		return EscapeAttr(v)
	}
	if v, ok := xml.HTMLEntity[name]; ok {
		var b strings.Builder
		for _, c := range v {
			fmt.Fprintf(&b, "&#%d;", c)
		}
		return b.String()
	}
	return ref
}
