package lambda

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/rs/zerolog"
)

// Adapter serves API Gateway HTTP API invocations through an http.Handler.
// Each invocation is independent.
type Adapter struct {
	proxy  *httpadapter.HandlerAdapterV2
	logger zerolog.Logger
}

func NewAdapter(logger zerolog.Logger, handler http.Handler) *Adapter {
	return &Adapter{proxy: httpadapter.NewV2(handler), logger: logger}
}

// Handle is the function passed to lambda.Start. An invocation the proxy
// cannot translate is answered with a 400 instead of failing the function.
func (a *Adapter) Handle(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	if event.RawPath == "" {
		event.RawPath = "/"
	}
	if event.RequestContext.HTTP.Method == "" {
		event.RequestContext.HTTP.Method = http.MethodGet
	}

	resp, err := a.proxy.ProxyWithContext(ctx, event)
	if err != nil {
		a.logger.Error().Err(err).Str("path", event.RawPath).Msg("failed to proxy invocation")
		return events.APIGatewayV2HTTPResponse{
			StatusCode: http.StatusBadRequest,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       `{"error":"Bad request"}`,
		}, nil
	}
	return resp, nil
}
