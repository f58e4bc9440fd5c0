package code

import (
	"fmt"
	"regexp"
	"strings"
)

// lineScan holds the security and quality findings of a line-level pass.
// These fields are language-independent, so unsupported languages still
// produce them.
type lineScan struct {
	secrets         []string
	sqlRisks        []string
	vulnerabilities []string
	xssRisks        []string

	antipatterns []string
	codeSmells   []string
	deprecated   []string
	todos        []string
}

var (
	reSecret      = regexp.MustCompile(`(?i)(password|passwd|secret|api_?key|token|private_?key)\s*[:=]\s*["'][^"']{4,}["']`)
	reSQLConcat   = regexp.MustCompile(`(?i)(SELECT|INSERT|UPDATE|DELETE)\b.*["']\s*(\+|%|\|\|)\s*\w|(\+|%)\s*["'].*\b(FROM|WHERE|VALUES)\b`)
	reSQLFormat   = regexp.MustCompile(`(?i)(execute|query|exec)\w*\(\s*(f["']|["'].*%s|.*\.format\()`)
	reVuln        = regexp.MustCompile(`(?i)\b(eval|exec)\s*\(|pickle\.loads?\(|yaml\.load\(|os\.system\(|subprocess\..*shell\s*=\s*True|child_process`)
	reXSS         = regexp.MustCompile(`(?i)\.innerHTML\s*=|document\.write\s*\(|dangerouslySetInnerHTML|v-html=`)
	reTodo        = regexp.MustCompile(`(?i)\b(TODO|FIXME|HACK|XXX)\b[:\s]?(.*)`)
	reDeprecated  = regexp.MustCompile(`(?i)@deprecated|DeprecationWarning|\.Deprecated\b|ioutil\.`)
	reAntipattern = regexp.MustCompile(`(?i)^\s*except\s*:\s*$|^\s*except\s+Exception\s*:|^\s*global\s+\w|catch\s*\(\s*\)|panic\(\s*nil\s*\)`)
	rePrintDebug  = regexp.MustCompile(`^\s*(print\(|console\.log\(|fmt\.Println\()`)
)

// scanLines runs the regex pass over the file contents. Findings carry
// the 1-based line number so snapshots stay actionable.
func scanLines(content []byte) *lineScan {
	scan := &lineScan{}
	for i, line := range strings.Split(string(content), "\n") {
		lineNo := i + 1

		if m := reSecret.FindString(line); m != "" {
			scan.secrets = append(scan.secrets, finding(lineNo, strings.TrimSpace(m)))
		}
		if reSQLConcat.MatchString(line) || reSQLFormat.MatchString(line) {
			scan.sqlRisks = append(scan.sqlRisks, finding(lineNo, strings.TrimSpace(line)))
		}
		if m := reVuln.FindString(line); m != "" {
			scan.vulnerabilities = append(scan.vulnerabilities, finding(lineNo, strings.TrimSpace(m)))
		}
		if m := reXSS.FindString(line); m != "" {
			scan.xssRisks = append(scan.xssRisks, finding(lineNo, strings.TrimSpace(m)))
		}
		if reAntipattern.MatchString(line) {
			scan.antipatterns = append(scan.antipatterns, finding(lineNo, strings.TrimSpace(line)))
		}
		if rePrintDebug.MatchString(line) {
			scan.codeSmells = append(scan.codeSmells, finding(lineNo, "print-style debugging"))
		}
		if m := reDeprecated.FindString(line); m != "" {
			scan.deprecated = append(scan.deprecated, finding(lineNo, strings.TrimSpace(m)))
		}
		if m := reTodo.FindStringSubmatch(line); m != nil {
			text := strings.TrimSpace(m[2])
			if text == "" {
				text = m[1]
			}
			scan.todos = append(scan.todos, finding(lineNo, text))
		}
	}
	return scan
}

func finding(line int, detail string) string {
	const maxDetail = 120
	if len(detail) > maxDetail {
		detail = detail[:maxDetail] + "..."
	}
	return fmt.Sprintf("L%d: %s", line, detail)
}
