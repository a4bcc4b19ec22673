// Package template transpiles component templates into server side rendering modules.
package template

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/viewc/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/net/html"
)

const internalImport = `import { create_ssr_component as $$create, escape as $$escape, attr as $$attr, ` +
	`spread as $$spread, to_array as $$to_array, validate_component as $$validate, ` +
	`warn_unknown_props as $$warn_unknown, store_get as $$store_get } from "viewc/internal";`

// Transpiler compiles template sources to ES modules exporting an SSR component.
type Transpiler struct{}

// New creates a new Transpiler.
func New() *Transpiler {
	return &Transpiler{}
}

// Transpile compiles source into a module whose default export renders the component.
func (t *Transpiler) Transpile(
	ctx context.Context, filename, source string, cfg domain.TranspileConfig,
) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if cfg.Generate != "" && cfg.Generate != "ssr" {
		return "", zerr.With(zerr.Wrap(domain.ErrTranspileFailed, "unsupported generate target"),
			"generate", cfg.Generate)
	}

	g := &generator{
		filename: filename,
		src:      source,
		cfg:      cfg,
		regions:  []*region{{}},
		stores:   make(map[string]bool),
	}
	code, err := g.run()
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to transpile template"), "file", filename)
	}
	return code, nil
}

type tagKind int

const (
	kindElement tagKind = iota
	kindInstanceScript
	kindModuleScript
	kindStyle
	kindComponent
	kindSlot
	kindHead
)

type openTag struct {
	name string
	kind tagKind
	// raw marks nested script and style elements whose content is emitted verbatim.
	raw bool
}

type block struct {
	kind    segmentKind
	hasElse bool
	// each is the loop counter suffix of an each block.
	each int
}

// region is a render function body with its own block stack.
type region struct {
	blocks []block
}

type generator struct {
	filename string
	src      string
	cfg      domain.TranspileConfig

	w       writer
	stack   []openTag
	regions []*region
	offset  int
	started bool
	pre     int
	counter int

	instance strings.Builder
	module   strings.Builder
	css      strings.Builder

	stores     map[string]bool
	storeOrder []string
}

func (g *generator) run() (string, error) {
	z := html.NewTokenizer(strings.NewReader(g.src))
	for {
		tt := z.Next()
		raw := string(z.Raw())

		var err error
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return g.finish()
			}
			return "", lineError(z.Err(), g.line(0))
		case html.TextToken:
			err = g.text(raw)
		case html.StartTagToken, html.SelfClosingTagToken:
			err = g.startTag(raw)
		case html.EndTagToken:
			err = g.endTag(raw)
		case html.CommentToken:
			if g.cfg.PreserveComments {
				g.emitStatic(raw)
			}
		case html.DoctypeToken:
			g.emitStatic(raw)
		}
		if err != nil {
			return "", err
		}
		g.offset += len(raw)
	}
}

func (g *generator) line(rel int) int {
	end := min(g.offset+rel, len(g.src))
	return strings.Count(g.src[:end], "\n") + 1
}

func (g *generator) top() *openTag {
	if len(g.stack) == 0 {
		return nil
	}
	return &g.stack[len(g.stack)-1]
}

func (g *generator) region() *region {
	return g.regions[len(g.regions)-1]
}

func (g *generator) emitStatic(s string) {
	if s == "" {
		return
	}
	g.started = true
	g.w.static(s)
}

func (g *generator) emitExpr(e string) {
	g.started = true
	g.w.expr(e)
}

func (g *generator) noteStores(expr string) {
	for _, name := range storeRefs(expr) {
		if !g.stores[name] {
			g.stores[name] = true
			g.storeOrder = append(g.storeOrder, name)
		}
	}
}

func (g *generator) text(raw string) error {
	if top := g.top(); top != nil {
		switch {
		case top.kind == kindInstanceScript:
			g.instance.WriteString(raw)
			return nil
		case top.kind == kindModuleScript:
			g.module.WriteString(raw)
			return nil
		case top.kind == kindStyle:
			g.css.WriteString(raw)
			return nil
		case top.raw:
			g.emitStatic(raw)
			return nil
		}
	}

	segs, at, err := parseText(raw)
	if err != nil {
		return lineError(err, g.line(at))
	}
	for _, seg := range segs {
		if err := g.segment(seg); err != nil {
			return exprError(err, g.line(seg.offset), seg.text)
		}
	}
	return nil
}

func (g *generator) segment(seg segment) error {
	switch seg.kind {
	case segStatic:
		text := seg.text
		if !g.cfg.PreserveWhitespace && g.pre == 0 {
			text = collapseWhitespace(text)
			if !g.started && len(g.regions) == 1 {
				text = strings.TrimLeft(text, " ")
			}
		}
		g.emitStatic(text)

	case segExpr:
		g.noteStores(seg.text)
		g.emitExpr("$$escape(" + seg.text + ")")

	case segHTML:
		g.noteStores(seg.text)
		g.emitExpr("String((" + seg.text + ") ?? \"\")")

	case segIf:
		g.noteStores(seg.text)
		g.push(block{kind: segIf})
		g.w.stmt("if (" + seg.text + ") {")

	case segElseIf:
		b := g.peek()
		if b == nil || b.kind != segIf || b.hasElse {
			return domain.ErrUnexpectedBlock
		}
		g.noteStores(seg.text)
		g.w.stmt("} else if (" + seg.text + ") {")

	case segElse:
		b := g.peek()
		if b == nil || b.hasElse {
			return domain.ErrUnexpectedBlock
		}
		switch b.kind {
		case segIf:
			g.w.stmt("} else {")
		case segEach:
			g.w.stmt(fmt.Sprintf("} if ($$each_%d.length === 0) {", b.each))
		default:
			return domain.ErrUnexpectedBlock
		}
		b.hasElse = true

	case segEndIf:
		return g.pop(segIf, "}")

	case segEach:
		clause, ok := parseEach(seg.text)
		if !ok {
			return domain.ErrUnexpectedBlock
		}
		g.noteStores(clause.list)
		n := g.counter
		g.counter++
		g.push(block{kind: segEach, each: n})
		g.w.stmt(fmt.Sprintf(
			"{ const $$each_%[1]d = $$to_array(%[2]s); for (let $$i_%[1]d = 0; $$i_%[1]d < $$each_%[1]d.length; $$i_%[1]d++) { const %[3]s = $$each_%[1]d[$$i_%[1]d];",
			n, clause.list, clause.pattern))
		if clause.index != "" {
			g.w.stmt(fmt.Sprintf("const %s = $$i_%d;", clause.index, n))
		}

	case segEndEach:
		return g.pop(segEach, "} }")

	case segKey:
		g.noteStores(seg.text)
		g.push(block{kind: segKey})
		g.w.stmt("{")

	case segEndKey:
		return g.pop(segKey, "}")

	case segConst:
		g.noteStores(seg.text)
		g.w.stmt("const " + seg.text + ";")
	}
	return nil
}

func (g *generator) push(b block) {
	r := g.region()
	r.blocks = append(r.blocks, b)
}

func (g *generator) peek() *block {
	r := g.region()
	if len(r.blocks) == 0 {
		return nil
	}
	return &r.blocks[len(r.blocks)-1]
}

// pop closes the innermost block, which must be of kind.
func (g *generator) pop(kind segmentKind, closing string) error {
	b := g.peek()
	if b == nil || b.kind != kind {
		return domain.ErrUnexpectedBlock
	}
	r := g.region()
	r.blocks = r.blocks[:len(r.blocks)-1]
	g.w.stmt(closing)
	return nil
}

func (g *generator) startTag(raw string) error {
	t, err := parseStartTag(raw)
	if err != nil {
		return lineError(err, g.line(0))
	}
	lower := strings.ToLower(t.name)

	if len(g.stack) == 0 && (lower == "script" || lower == "style") {
		if t.selfClosing {
			return nil
		}
		kind := kindStyle
		if lower == "script" {
			kind = kindInstanceScript
			if value, ok := staticAttr(t, "context"); ok && value == "module" {
				kind = kindModuleScript
			}
		}
		g.stack = append(g.stack, openTag{name: lower, kind: kind})
		return nil
	}
	if top := g.top(); top != nil && top.raw {
		g.emitStatic(raw)
		return nil
	}

	for _, a := range t.attrs {
		for _, v := range a.values {
			if v.isExpr {
				g.noteStores(v.expr)
			}
		}
	}

	switch {
	case lower == "viewc:head" || lower == "svelte:head":
		g.w.stmt(`{ const $$head = (() => { let $$out = "";`)
		g.regions = append(g.regions, &region{})
		g.stack = append(g.stack, openTag{name: lower, kind: kindHead})
		if t.selfClosing {
			return g.close(g.stack[len(g.stack)-1])
		}
		return nil

	case lower == "viewc:component" || lower == "svelte:component":
		ctor, ok := exprAttr(t, "this")
		if !ok {
			return lineError(zerr.With(zerr.Wrap(domain.ErrTranspileFailed, "dynamic component requires this={...}"),
				"tag", t.name), g.line(0))
		}
		return g.component(t, ctor)

	case lower == "slot":
		name, ok := staticAttr(t, "name")
		if !ok {
			name = "default"
		}
		q := jsString(name)
		g.started = true
		if t.selfClosing {
			g.w.stmt(fmt.Sprintf("if ($$slots[%[1]s]) { $$out += $$slots[%[1]s]({}); }", q))
			return nil
		}
		g.w.stmt(fmt.Sprintf("if ($$slots[%[1]s]) { $$out += $$slots[%[1]s]({}); } else {", q))
		g.stack = append(g.stack, openTag{name: lower, kind: kindSlot})
		return nil

	case isComponent(t.name):
		return g.component(t, t.name)
	}

	g.emitStatic("<" + t.name)
	g.attributes(t.attrs)
	if voidElements[lower] {
		g.emitStatic(">")
		return nil
	}
	if t.selfClosing {
		g.emitStatic("></" + t.name + ">")
		return nil
	}
	g.emitStatic(">")
	if lower == "pre" || lower == "textarea" {
		g.pre++
	}
	g.stack = append(g.stack, openTag{name: t.name, kind: kindElement, raw: lower == "script" || lower == "style"})
	return nil
}

func (g *generator) component(t tag, ctor string) error {
	g.started = true
	call := fmt.Sprintf("$$validate(%s, %s).$$render($$result, %s, ", ctor, jsString(ctor), g.props(t.attrs))
	if t.selfClosing {
		g.w.expr(call + "{})")
		return nil
	}
	g.w.stmt("$$out += " + call + `{ default: () => { let $$out = "";`)
	g.regions = append(g.regions, &region{})
	g.stack = append(g.stack, openTag{name: t.name, kind: kindComponent})
	return nil
}

func (g *generator) endTag(raw string) error {
	name := endTagName(raw)
	lower := strings.ToLower(name)

	idx := -1
	for i := len(g.stack) - 1; i >= 0; i-- {
		open := g.stack[i]
		if open.name == name || (open.kind != kindComponent && strings.ToLower(open.name) == lower) {
			idx = i
			break
		}
		if open.raw || open.kind != kindElement {
			break
		}
	}
	if idx < 0 {
		if top := g.top(); top != nil && top.raw {
			g.emitStatic(raw)
			return nil
		}
		if isComponent(name) || strings.Contains(lower, ":") || lower == "slot" {
			return lineError(zerr.With(zerr.Wrap(domain.ErrUnexpectedBlock, "unexpected closing tag"),
				"tag", name), g.line(0))
		}
		g.emitStatic(raw)
		return nil
	}

	for len(g.stack) > idx {
		open := g.stack[len(g.stack)-1]
		if err := g.close(open); err != nil {
			return err
		}
	}
	return nil
}

// close emits the end of open and removes it from the stack.
func (g *generator) close(open openTag) error {
	g.stack = g.stack[:len(g.stack)-1]

	switch open.kind {
	case kindInstanceScript, kindModuleScript, kindStyle:
		return nil

	case kindElement:
		g.emitStatic("</" + open.name + ">")
		if l := strings.ToLower(open.name); l == "pre" || l == "textarea" {
			g.pre--
		}
		return nil

	case kindSlot:
		g.w.stmt("}")
		return nil
	}

	if err := g.closeRegion(open.name); err != nil {
		return err
	}
	if open.kind == kindComponent {
		g.w.stmt("return $$out; } });")
		return nil
	}

	g.w.stmt("return $$out; })();")
	if g.cfg.Hydratable {
		id := fmt.Sprintf("%08x", uint32(xxhash.Sum64String(g.filename)))
		g.w.stmt(fmt.Sprintf(`$$result.head += "<!-- HEAD_%[1]s_START -->" + $$head + "<!-- HEAD_%[1]s_END -->"; }`, id))
	} else {
		g.w.stmt("$$result.head += $$head; }")
	}
	return nil
}

func (g *generator) closeRegion(name string) error {
	r := g.region()
	if len(r.blocks) > 0 {
		return lineError(zerr.With(zerr.Wrap(domain.ErrUnclosedBlock, "block left open inside element"),
			"tag", name), g.line(0))
	}
	g.regions = g.regions[:len(g.regions)-1]
	return nil
}

func (g *generator) finish() (string, error) {
	for len(g.stack) > 0 {
		open := g.stack[len(g.stack)-1]
		if open.kind != kindElement {
			return "", lineError(zerr.With(zerr.Wrap(domain.ErrUnclosedBlock, "element is never closed"),
				"tag", open.name), g.line(0))
		}
		if err := g.close(open); err != nil {
			return "", err
		}
	}
	if b := g.peek(); b != nil {
		return "", lineError(zerr.With(zerr.Wrap(domain.ErrUnclosedBlock, "block is never closed"),
			"block", blockName(b.kind)), g.line(0))
	}
	if !g.cfg.PreserveWhitespace {
		g.w.trimTrailingSpace()
	}
	return g.assemble(), nil
}

func (g *generator) assemble() string {
	script := parseInstanceScript(g.instance.String())
	for _, stmt := range script.reactive {
		g.noteStores(stmt)
	}
	name := componentName(g.filename)
	markup := g.w.String()

	var b strings.Builder
	b.WriteString(internalImport + "\n")
	for _, imp := range script.imports {
		b.WriteString(imp + "\n")
	}
	if module := strings.TrimSpace(g.module.String()); module != "" {
		b.WriteString(module + "\n")
	}

	fmt.Fprintf(&b, "\nconst $$Component = $$create(%s, ($$result, $$props, $$slots) => {\n", jsString(name))
	for _, p := range script.props {
		if p.def == "" {
			fmt.Fprintf(&b, "\tlet %[1]s = $$props.%[1]s;\n", p.name)
			continue
		}
		fmt.Fprintf(&b, "\tlet %[1]s = $$props.%[1]s === undefined ? (%[2]s) : $$props.%[1]s;\n", p.name, p.def)
	}
	if g.cfg.Dev {
		known := make([]string, 0, len(script.props))
		for _, p := range script.props {
			known = append(known, jsString(p.name))
		}
		fmt.Fprintf(&b, "\t$$warn_unknown(%s, $$props, [%s]);\n", jsString(name), strings.Join(known, ", "))
	}
	for _, line := range script.body {
		if strings.TrimSpace(line) != "" {
			b.WriteString("\t" + strings.TrimLeft(line, " \t") + "\n")
		}
	}
	for _, store := range g.storeOrder {
		if script.declared["$"+store] {
			continue
		}
		fmt.Fprintf(&b, "\tlet $%[1]s = $$store_get(%[1]s);\n", store)
	}
	for _, stmt := range script.reactive {
		b.WriteString("\t" + stmt + "\n")
	}
	if css := strings.TrimSpace(g.css.String()); g.cfg.CSS && css != "" {
		fmt.Fprintf(&b, "\t$$result.css.add(%s);\n", jsString(css))
	}
	b.WriteString("\tlet $$out = \"\";\n")
	b.WriteString(markup)
	b.WriteString("\treturn $$out;\n});\n\nexport default $$Component;\n")
	return b.String()
}

// attributes emits element attributes, static ones inline and dynamic ones through $$attr.
func (g *generator) attributes(attrs []attribute) {
	for _, a := range attrs {
		if a.spread {
			g.emitExpr("$$spread(" + a.values[0].expr + ")")
			continue
		}
		name, ok := attributeName(a.name)
		if !ok {
			continue
		}
		switch {
		case a.values == nil:
			g.emitStatic(" " + name)
		case allStatic(a.values):
			g.emitStatic(" " + name + `="` + html.EscapeString(staticText(a.values)) + `"`)
		default:
			boolean := booleanAttributes[strings.ToLower(name)]
			g.emitExpr(fmt.Sprintf("$$attr(%s, %s, %t)", jsString(name), valueExpr(a.values), boolean))
		}
	}
}

// props renders component attributes as a props object literal.
func (g *generator) props(attrs []attribute) string {
	parts := make([]string, 0, len(attrs))
	for _, a := range attrs {
		if a.spread {
			parts = append(parts, "...("+a.values[0].expr+")")
			continue
		}
		if a.name == "this" || a.name == "slot" {
			continue
		}
		name, ok := attributeName(a.name)
		if !ok {
			continue
		}
		key := jsString(name)
		switch {
		case a.values == nil:
			parts = append(parts, key+": true")
		case len(a.values) == 1 && a.values[0].isExpr:
			parts = append(parts, key+": ("+a.values[0].expr+")")
		case allStatic(a.values):
			parts = append(parts, key+": "+jsString(staticText(a.values)))
		default:
			parts = append(parts, key+": "+valueExpr(a.values))
		}
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

var directives = []string{"on", "class", "style", "use", "transition", "in", "out", "animate", "let"}

// attributeName maps directive attributes to the name rendered on the server.
// Directives without server output report false.
func attributeName(name string) (string, bool) {
	prefix, rest, ok := strings.Cut(name, ":")
	if !ok {
		return name, true
	}
	if prefix == "bind" {
		return rest, rest != ""
	}
	return name, !slices.Contains(directives, prefix)
}

func allStatic(values []attrValue) bool {
	for _, v := range values {
		if v.isExpr {
			return false
		}
	}
	return true
}

func staticText(values []attrValue) string {
	var b strings.Builder
	for _, v := range values {
		b.WriteString(v.static)
	}
	return b.String()
}

func valueExpr(values []attrValue) string {
	if len(values) == 1 && values[0].isExpr {
		return "(" + values[0].expr + ")"
	}
	parts := []string{`""`}
	for _, v := range values {
		if v.isExpr {
			parts = append(parts, "(("+v.expr+") ?? \"\")")
			continue
		}
		parts = append(parts, jsString(v.static))
	}
	return strings.Join(parts, " + ")
}

func staticAttr(t tag, name string) (string, bool) {
	for _, a := range t.attrs {
		if a.name == name && !a.spread && allStatic(a.values) {
			return staticText(a.values), true
		}
	}
	return "", false
}

func exprAttr(t tag, name string) (string, bool) {
	for _, a := range t.attrs {
		if a.name == name && len(a.values) == 1 && a.values[0].isExpr {
			return a.values[0].expr, true
		}
	}
	return "", false
}

// componentName derives a display name from a template path, "nav-bar.tmpl" becoming "NavBar".
func componentName(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	var b strings.Builder
	upper := true
	for i := 0; i < len(base); i++ {
		c := base[i]
		if !isIdentChar(c) || c == '$' {
			upper = true
			continue
		}
		if upper && c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upper = false
		b.WriteByte(c)
	}
	if b.Len() == 0 || !isIdentStart(b.String()[0]) {
		return "Component" + b.String()
	}
	return b.String()
}

func blockName(kind segmentKind) string {
	switch kind {
	case segIf:
		return "if"
	case segEach:
		return "each"
	case segKey:
		return "key"
	default:
		return "unknown"
	}
}
