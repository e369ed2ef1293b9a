package tutorial

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// extractYAML returns the body of the first ```yaml fenced block in s. When
// no fence is present the whole string is returned trimmed, since some
// models answer with bare YAML.
func extractYAML(s string) string {
	lower := strings.ToLower(s)
	start := strings.Index(lower, "```yaml")
	if start < 0 {
		start = strings.Index(lower, "```yml")
		if start < 0 {
			return strings.TrimSpace(s)
		}
	}
	body := s[start:]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		return ""
	}
	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// decodeYAML unmarshals the fenced YAML in a model response into out.
func decodeYAML(response string, out any) error {
	block := extractYAML(response)
	if block == "" {
		return fmt.Errorf("response contains no yaml block")
	}
	if err := yaml.Unmarshal([]byte(block), out); err != nil {
		return fmt.Errorf("parse yaml block: %w", err)
	}
	return nil
}
