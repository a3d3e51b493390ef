package links

import (
	"net/url"
	"strings"

	"go.uber.org/zap"
)

const sharePath = "/share/"

type Builder struct {
	logger  *zap.Logger
	baseURL string
}

// New builds public share links under baseURL. A trailing slash is ignored;
// an empty base yields relative links.
func New(logger *zap.Logger, baseURL string) *Builder {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base != "" {
		if u, err := url.Parse(base); err != nil || u.Scheme == "" || u.Host == "" {
			logger.Warn("public base url is not absolute, share links will be relative", zap.String("base_url", baseURL))
			base = ""
		}
	}

	return &Builder{
		logger:  logger,
		baseURL: base,
	}
}

func (b *Builder) ShareURL(shareID string) string {
	return b.baseURL + sharePath + url.PathEscape(shareID)
}
