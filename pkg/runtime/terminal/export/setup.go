package export

import (
	"fmt"
	"text/template"

	"github.com/de-tools/ops-atlas/pkg/services/credentials"
)

// HandleAuthorizeURL prints the consent URL for the operator to open.
func (c *Reporter) HandleAuthorizeURL(url string) error {
	_, err := fmt.Fprintf(c.writer, "Open this URL in a browser to authorize access:\n\n%s\n", url)
	return err
}

// HandleSetup prints the minted values as environment assignments.
func (c *Reporter) HandleSetup(result *credentials.SetupResult) error {
	tmpl := `
Copy these values into your deployment configuration:

XERO_REFRESH_TOKEN={{.RefreshToken}}
XERO_TENANT_ID={{.TenantID}}
`
	t, err := template.New("setup").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, result)
}
