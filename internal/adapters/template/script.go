package template

import (
	"regexp"
	"strings"
)

var (
	importStart  = regexp.MustCompile(`^\s*import[\s{*'"]`)
	importEnd    = regexp.MustCompile(`(from\s*['"][^'"]+['"]|^\s*import\s*['"][^'"]+['"])\s*;?\s*$`)
	exportLet    = regexp.MustCompile(`^\s*export\s+let\s+`)
	exportOther  = regexp.MustCompile(`^(\s*)export\s+((?:async\s+)?(?:const|function|class)\b)`)
	reactiveStmt = regexp.MustCompile(`^\s*\$:\s*`)
	declaration  = regexp.MustCompile(`\b(?:let|const|var|function|class)\s+([A-Za-z_$][\w$]*)`)
	assignment   = regexp.MustCompile(`^([A-Za-z_$][\w$]*)\s*=([^=].*)$`)
)

type prop struct {
	name string
	def  string
}

// instanceScript is the component script split into its module level and per-render parts.
type instanceScript struct {
	imports  []string
	props    []prop
	body     []string
	reactive []string
	declared map[string]bool
}

// parseInstanceScript hoists imports, turns export let into props and collects $: statements.
// Statements are recognized line by line; a statement continues while brackets are open.
func parseInstanceScript(src string) instanceScript {
	s := instanceScript{declared: make(map[string]bool)}
	lines := strings.Split(src, "\n")

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		switch {
		case importStart.MatchString(line):
			stmt := line
			for !importEnd.MatchString(stmt) && i+1 < len(lines) {
				i++
				stmt += "\n" + lines[i]
			}
			s.imports = append(s.imports, strings.TrimSpace(stmt))
			s.declareImport(stmt)

		case exportLet.MatchString(line):
			stmt, next := joinBalanced(lines, i)
			i = next
			decl := strings.TrimSuffix(strings.TrimSpace(exportLet.ReplaceAllString(stmt, "")), ";")
			for _, part := range splitTopLevel(decl, ',') {
				name, def, _ := strings.Cut(part, "=")
				name = strings.TrimSpace(name)
				if !isIdentifier(name) {
					continue
				}
				s.props = append(s.props, prop{name: name, def: strings.TrimSpace(def)})
				s.declared[name] = true
			}

		case reactiveStmt.MatchString(line):
			stmt, next := joinBalanced(lines, i)
			i = next
			s.reactive = append(s.reactive, s.reactiveStatement(reactiveStmt.ReplaceAllString(stmt, "")))

		default:
			line = exportOther.ReplaceAllString(line, "$1$2")
			for _, m := range declaration.FindAllStringSubmatch(line, -1) {
				s.declared[m[1]] = true
			}
			s.body = append(s.body, line)
		}
	}
	return s
}

func (s *instanceScript) reactiveStatement(stmt string) string {
	stmt = strings.TrimSpace(stmt)
	m := assignment.FindStringSubmatch(stmt)
	if m == nil || s.declared[m[1]] {
		return stmt
	}
	s.declared[m[1]] = true
	return "let " + stmt
}

func (s *instanceScript) declareImport(stmt string) {
	head, _, ok := strings.Cut(stmt, " from ")
	if !ok {
		return
	}
	head = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(head), "import"))
	head = strings.NewReplacer("{", ",", "}", ",", "*", ",").Replace(head)
	for _, part := range strings.Split(head, ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		name := fields[len(fields)-1]
		if isIdentifier(name) {
			s.declared[name] = true
		}
	}
}

// joinBalanced joins lines starting at i until brackets are balanced.
func joinBalanced(lines []string, i int) (string, int) {
	stmt := lines[i]
	for bracketDepth(stmt) > 0 && i+1 < len(lines) {
		i++
		stmt += "\n" + lines[i]
	}
	return stmt, i
}
