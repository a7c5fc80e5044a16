package agent

import (
	"fmt"
	"strings"

	"github.com/m-mizutani/kioku/pkg/model"
)

// serviceVocabulary is the fixed set of service names recognized in
// queries for narrative templating
var serviceVocabulary = []string{
	"netflix", "github", "google", "amazon", "spotify", "facebook",
	"twitter", "instagram", "apple", "microsoft", "dropbox", "slack",
	"discord", "paypal", "linkedin", "reddit", "steam", "zoom", "notion",
}

// detectService returns the display name of the first vocabulary service
// mentioned in the query, or ""
func detectService(query string) string {
	q := strings.ToLower(query)
	for _, service := range serviceVocabulary {
		if strings.Contains(q, service) {
			return strings.ToUpper(service[:1]) + service[1:]
		}
	}
	return ""
}

// narrate composes the reply sentence from the extraction result. It is
// deterministic templating: no model call, so the common path stays fast
// and cannot fail.
func narrate(query string, fact *model.ExtractedFact) string {
	if !fact.Found() {
		return "I couldn't find that in your notes."
	}

	service := detectService(query)

	switch fact.Type {
	case model.DataTypePassword:
		if service != "" {
			return fmt.Sprintf("Here's your %s password.", service)
		}
		return "Here's the password you asked for."
	case model.DataTypeEmail:
		if service != "" {
			return fmt.Sprintf("Here's the email address for %s.", service)
		}
		return "Here's the email address you asked for."
	case model.DataTypeCode:
		if service != "" {
			return fmt.Sprintf("Here's your %s recovery code.", service)
		}
		return "Here's the code you asked for."
	case model.DataTypeURL:
		if service != "" {
			return fmt.Sprintf("Here's the link for %s.", service)
		}
		return "Here's the link you asked for."
	default:
		if service != "" {
			return fmt.Sprintf("Here's what I found about %s.", service)
		}
		return "Here's what I found in your notes."
	}
}
