package templates

import (
	"context"
	"regexp"

	"gorm.io/gorm"

	"github.com/alanwtom/travora-backend/pkg/db/models"
	"github.com/alanwtom/travora-backend/pkg/logger"
)

// Resolver maps trigger events to catalog entries. Immutable once built; safe
// for concurrent use.
type Resolver struct {
	byEvent map[string]models.NotificationTemplate
}

// NewResolver indexes the given templates by trigger event. Later duplicates
// win, which lets a database load layer on top of the built-in catalog.
func NewResolver(catalog []models.NotificationTemplate) *Resolver {
	byEvent := make(map[string]models.NotificationTemplate, len(catalog))
	for _, tmpl := range catalog {
		byEvent[tmpl.TriggerEvent] = tmpl
	}
	return &Resolver{byEvent: byEvent}
}

// Load reads the template table and returns a resolver over it. When the
// table is empty or unreadable it falls back to the built-in catalog so the
// pipeline keeps working against a fresh or degraded database.
func Load(ctx context.Context, db *gorm.DB, logg *logger.Logger) *Resolver {
	var rows []models.NotificationTemplate
	if err := db.WithContext(ctx).Find(&rows).Error; err != nil {
		if logg != nil {
			logg.Error(ctx, "loading notification templates, using built-in catalog", err)
		}
		return NewResolver(Catalog())
	}
	if len(rows) == 0 {
		if logg != nil {
			logg.Warn(ctx, "notification template table empty, using built-in catalog")
		}
		return NewResolver(Catalog())
	}
	return NewResolver(rows)
}

// Resolve looks up the template for a trigger event.
func (r *Resolver) Resolve(triggerEvent string) (models.NotificationTemplate, bool) {
	tmpl, ok := r.byEvent[triggerEvent]
	return tmpl, ok
}

// Len reports the catalog size.
func (r *Resolver) Len() int {
	return len(r.byEvent)
}

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// Render substitutes {key} tokens in the template's title and body from the
// given data maps. Tokens with no matching key are left verbatim so a missing
// field degrades the copy instead of breaking delivery.
func Render(tmpl models.NotificationTemplate, titleData, bodyData map[string]string) (title, body string) {
	return substitute(tmpl.TitleTemplate, titleData), substitute(tmpl.BodyTemplate, bodyData)
}

func substitute(text string, data map[string]string) string {
	if len(data) == 0 {
		return text
	}
	return placeholderRe.ReplaceAllStringFunc(text, func(token string) string {
		key := token[1 : len(token)-1]
		if value, ok := data[key]; ok {
			return value
		}
		return token
	})
}
