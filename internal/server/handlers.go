package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"folio/internal/cache"
	"folio/internal/httputil"
	"folio/internal/media"
	"folio/internal/resolver"
	"folio/internal/works"
)

type errorResponse struct {
	Error string `json:"error"`
}

type oembedResponse struct {
	HTML string `json:"html"`
}

type workResponse struct {
	Work   *media.Work `json:"work"`
	Embeds []string    `json:"embeds"`
}

type healthResponse struct {
	Status string      `json:"status"`
	Cache  cache.Stats `json:"cache"`
}

func (s *Server) handleOEmbed(c echo.Context) error {
	rawURL := c.QueryParam("url")

	embed, err := s.resolver.Resolve(c.Request().Context(), rawURL)
	if err != nil {
		status, msg := resolveStatus(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("oembed resolution failed", "url", rawURL, "error", err)
		}
		return c.JSON(status, errorResponse{Error: msg})
	}

	return c.JSON(http.StatusOK, oembedResponse{HTML: embed.HTML})
}

// resolveStatus maps a resolver error to its HTTP status and public message.
func resolveStatus(err error) (int, string) {
	switch resolver.KindOf(err) {
	case resolver.KindInvalidInput:
		return http.StatusBadRequest, resolver.ErrMissingURL.Error()
	case resolver.KindUnsupportedProvider:
		return http.StatusBadRequest, resolver.ErrUnsupportedProvider.Error()
	case resolver.KindUpstreamUnavailable:
		return http.StatusBadGateway, resolver.ErrUpstreamUnavailable.Error()
	case resolver.KindNoEmbedHTML:
		return http.StatusBadGateway, resolver.ErrNoEmbedHTML.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

func (s *Server) handleWorks(c echo.Context) error {
	list, err := s.catalog.All()
	if err != nil {
		s.logger.Error("listing works", "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: resolver.ErrUnexpected.Error()})
	}

	out := make([]media.Work, len(list))
	for i, w := range list {
		w.Content = ""
		out[i] = w
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleWork(c echo.Context) error {
	w, err := s.catalog.Get(c.Param("slug"))
	if err != nil {
		var verr *httputil.ValidationError
		switch {
		case errors.Is(err, works.ErrNotFound):
			return c.JSON(http.StatusNotFound, errorResponse{Error: works.ErrNotFound.Error()})
		case errors.As(err, &verr):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid slug"})
		default:
			s.logger.Error("loading work", "slug", c.Param("slug"), "error", err)
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: resolver.ErrUnexpected.Error()})
		}
	}

	embeds := works.EmbedLinks(w.Content)
	if embeds == nil {
		embeds = []string{}
	}
	return c.JSON(http.StatusOK, workResponse{Work: w, Embeds: embeds})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Status: "ok", Cache: s.resolver.CacheStats()})
}
