package commerce

import (
	"net/http"

	"github.com/de-tools/ops-atlas/pkg/services/config"
	"github.com/de-tools/ops-atlas/pkg/store/client"
)

func FromConfig(cfg config.Commerce, httpClient *http.Client) Client {
	return NewClient(Config{
		StoreDomain: cfg.StoreDomain,
		AdminToken:  cfg.AdminToken,
		APIVersion:  cfg.APIVersion,
		HTTPClient:  client.Instrument(httpClient, Upstream),
	})
}
