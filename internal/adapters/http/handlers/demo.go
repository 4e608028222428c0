package handlers

import (
	"cmp"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/lingo-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/lingo-service/internal/platform/i18n"
)

// CodeGreeting is the catalog code of the demo greeting.
const CodeGreeting = "greeting.hello"

const defaultGreetingName = "world"

// DemoHandler serves localized success content.
type DemoHandler struct {
	translator *i18n.Translator
}

// NewDemoHandler creates a new demo handler.
func NewDemoHandler(translator *i18n.Translator) *DemoHandler {
	return &DemoHandler{
		translator: translator,
	}
}

// Greeting handles GET /api/v1/demo/i18n?name=. The greeting is rendered in
// the best locale from Accept-Language and written as plain text.
//
// @Summary Localized greeting
// @Tags demo
// @Produce plain
// @Param name query string false "Name to greet"
// @Success 200 {string} string "Hello, world!"
// @Router /api/v1/demo/i18n [get]
func (h *DemoHandler) Greeting(c *gin.Context) {
	var query dto.GreetingQuery
	if err := dto.BindQueryAndValidate(c, &query); err != nil {
		dto.RespondWithError(c, err)
		return
	}

	locales := i18n.ParseAcceptLanguage(c.GetHeader("Accept-Language"))
	message := h.translator.Message(CodeGreeting, locales, map[string]string{
		"name": cmp.Or(query.Name, defaultGreetingName),
	})

	c.String(http.StatusOK, message)
}

// RegisterDemoRoutes registers the demo routes on the given group.
func (h *DemoHandler) RegisterDemoRoutes(rg *gin.RouterGroup) {
	rg.GET("/demo/i18n", h.Greeting)
}
