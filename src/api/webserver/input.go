package webserver

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"

	"github.com/selfai-labs/selfai/src/companions"
)

// The HTML tokenizer folds CR and CRLF into LF; do the same before comparing.
var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

func newSanitizer() *bluemonday.Policy {
	return bluemonday.StrictPolicy()
}

// plain trims in, rejecting any text the strict policy would alter.
func (s *server) plain(field, in string) (string, error) {
	in = lineBreaks.Replace(in)
	if html.UnescapeString(s.sanitizer.Sanitize(in)) != in {
		return "", fmt.Errorf("%w: %s must not contain markup", companions.ErrValidation, field)
	}
	return strings.TrimSpace(in), nil
}

func checkLen(field, value string, minRunes, maxRunes int) error {
	if !utf8.ValidString(value) {
		return fmt.Errorf("%s contains invalid characters", field)
	}
	n := utf8.RuneCountInString(value)
	if n < minRunes || n > maxRunes {
		return fmt.Errorf("%s must be between %d and %d characters", field, minRunes, maxRunes)
	}
	return nil
}

func uintParam(c *gin.Context, name string) (uint64, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func identityQuery(c *gin.Context, name string) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		badRequest(c, name+" is required")
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func intQuery(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}
