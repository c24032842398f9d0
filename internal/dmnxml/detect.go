package dmnxml

import (
	"regexp"

	"github.com/specialistvlad/dmngrid/internal/model"
)

// DetectConstantReferences returns, in table order, the constants whose name
// occurs in expression as a whole word. A match must not be preceded or
// followed by a letter, digit or underscore.
func DetectConstantReferences(expression string, constants []model.Constant) []model.Constant {
	var found []model.Constant
	for _, c := range constants {
		if c.Name == "" {
			continue
		}
		re := regexp.MustCompile(`(?:^|[^\p{L}\p{N}_])` + regexp.QuoteMeta(c.Name) + `(?:$|[^\p{L}\p{N}_])`)
		if re.MatchString(expression) {
			found = append(found, c)
		}
	}
	return found
}
