package panel

import (
	"context"
	"log/slog"
	"time"

	"zupos_panel/internal/cache"
	"zupos_panel/internal/handlers"
	"zupos_panel/internal/menu"
	"zupos_panel/internal/session"
	"zupos_panel/internal/webpanel"
)

// MenuSource reads each session's menu from the web panel with that
// session's cookies, cached per session for ttl.
func MenuSource(client *webpanel.Client, c cache.Cache, languageID int, ttl time.Duration, logger *slog.Logger, observer menu.FetchObserver) handlers.MenuSourceFunc {
	return func(st *session.State) menu.Source {
		backend := st.Backend()
		return &menu.PanelSource{
			Payload: func(ctx context.Context) ([]byte, error) {
				return client.MenuList(ctx, backend, languageID)
			},
			Cache:    c,
			CacheKey: menu.CacheKey(st.ID),
			TTL:      ttl,
			Logger:   logger,
			Observer: observer,
		}
	}
}
