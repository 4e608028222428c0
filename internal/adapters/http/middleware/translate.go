package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/text/language"

	"github.com/jsamuelsen/lingo-service/internal/domain"
	"github.com/jsamuelsen/lingo-service/internal/platform/i18n"
	"github.com/jsamuelsen/lingo-service/internal/platform/logging"
)

// DefaultMaxErrorBodyBytes bounds how much of a failure body is buffered.
// Larger bodies are treated as undecodable.
const DefaultMaxErrorBodyBytes int64 = 4 << 20

const (
	headerAcceptLanguage = "Accept-Language"
	headerContentLength  = "Content-Length"
	contentTypeJSON      = "application/json; charset=utf-8"
	noLocale             = "none"
)

var errorsTranslated = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "errors_translated_total",
	Help: "Failure responses rewritten into localized error documents.",
}, []string{"code", "locale"})

// TranslationConfig configures ErrorTranslation.
type TranslationConfig struct {
	// Translator renders failure bodies. Without one, messages are the raw
	// codes.
	Translator *i18n.Translator

	// MaxBodyBytes caps the buffered failure body. Zero means
	// DefaultMaxErrorBodyBytes.
	MaxBodyBytes int64
}

// ErrorTranslation returns middleware that rewrites failure responses into
// localized error documents.
//
// Responses with a status below 400 are streamed to the client untouched.
// For a status of 400 or above the body produced downstream is buffered,
// decoded as an error tree, translated for the locales in Accept-Language
// and written back as {code, message, children} with the original status.
// An undecodable body is replaced by the generic internal error. Nothing is
// written when the client has already gone away.
//
// It must wrap every middleware that turns faults into bodies (recovery,
// admission, timeout) so that those bodies are translated too.
func ErrorTranslation(cfg TranslationConfig) gin.HandlerFunc {
	limit := cfg.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxErrorBodyBytes
	}

	translator := cfg.Translator
	if translator == nil {
		translator = i18n.NewTranslator(nil, language.Und)
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		original := c.Writer

		w := &translatingWriter{ResponseWriter: original, limit: limit}
		c.Writer = w

		c.Next()

		c.Writer = original

		if !w.needsTranslation() {
			return
		}

		if ctx.Err() != nil {
			logging.FromContext(ctx).Debug("client gone, dropping error response",
				slog.Int("status", original.Status()),
			)

			return
		}

		node := w.decode()
		req := i18n.ParseAcceptLanguage(c.GetHeader(headerAcceptLanguage))
		translated := translator.Translate(node, translator.Config(req, node.Args))

		body, err := json.Marshal(translated)
		if err != nil {
			logging.FromContext(ctx).Error("encoding translated error", slog.String("error", err.Error()))
			return
		}

		header := original.Header()
		header.Del(headerContentLength)
		header.Set("Content-Type", contentTypeJSON)

		if _, err := original.Write(body); err != nil {
			logging.FromContext(ctx).Debug("writing translated error", slog.String("error", err.Error()))
		}

		locale := translated.Locale
		if locale == "" {
			locale = noLocale
		}

		errorsTranslated.WithLabelValues(translated.Code, locale).Inc()

		logging.Trace(ctx, "error translated",
			slog.String("code", translated.Code),
			slog.String("locale", locale),
			slog.Int("status", original.Status()),
		)
	}
}

// translatingWriter decides on the first body write whether the response
// is a failure. Successful responses go straight to the wrapped writer;
// failure bodies are held back for translation.
type translatingWriter struct {
	gin.ResponseWriter

	limit    int64
	buf      bytes.Buffer
	decided  bool
	failed   bool
	overflow bool
}

func (w *translatingWriter) decide() {
	if w.decided {
		return
	}

	w.decided = true
	w.failed = w.ResponseWriter.Status() >= http.StatusBadRequest
}

// needsTranslation reports whether the response ended as a failure,
// including failures that never wrote a body.
func (w *translatingWriter) needsTranslation() bool {
	if w.decided {
		return w.failed
	}

	return w.ResponseWriter.Status() >= http.StatusBadRequest && !w.ResponseWriter.Written()
}

func (w *translatingWriter) decode() domain.ErrorNode {
	if w.overflow || w.buf.Len() == 0 {
		return domain.InternalErrorNode()
	}

	var node domain.ErrorNode
	if err := json.Unmarshal(w.buf.Bytes(), &node); err != nil || !node.Valid() {
		return domain.InternalErrorNode()
	}

	return node
}

func (w *translatingWriter) Write(data []byte) (int, error) {
	w.decide()

	if !w.failed {
		return w.ResponseWriter.Write(data)
	}

	w.hold(data)

	return len(data), nil
}

func (w *translatingWriter) WriteString(s string) (int, error) {
	w.decide()

	if !w.failed {
		return w.ResponseWriter.WriteString(s)
	}

	w.hold([]byte(s))

	return len(s), nil
}

func (w *translatingWriter) hold(data []byte) {
	if w.overflow {
		return
	}

	if int64(w.buf.Len()+len(data)) > w.limit {
		w.overflow = true
		w.buf.Reset()

		return
	}

	w.buf.Write(data)
}

func (w *translatingWriter) WriteHeaderNow() {
	w.decide()

	if !w.failed {
		w.ResponseWriter.WriteHeaderNow()
	}
}

// Written reports true once a failure has been captured so that inner
// layers do not try to write a second response.
func (w *translatingWriter) Written() bool {
	if w.decided && w.failed {
		return true
	}

	return w.ResponseWriter.Written()
}

func (w *translatingWriter) Size() int {
	if w.decided && w.failed {
		return w.buf.Len()
	}

	return w.ResponseWriter.Size()
}

func (w *translatingWriter) Flush() {
	w.decide()

	if !w.failed {
		w.ResponseWriter.Flush()
	}
}

func (w *translatingWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	w.decided = true
	w.failed = false

	return w.ResponseWriter.Hijack()
}
