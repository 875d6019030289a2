package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"applygen-backend/internal/bootstrap"
	"applygen-backend/internal/shared/config"
	"applygen-backend/internal/shared/server/respond"
	"applygen-backend/internal/shared/telemetry"
)

var (
	initOnce  sync.Once
	initErr   error
	ginLambda *ginadapter.GinLambdaV2
)

func initApp() {
	cfg := config.Load()
	app, err := bootstrap.Build(cfg)
	if err != nil {
		initErr = err
		return
	}
	ginLambda = ginadapter.NewV2(app.Router)
}

func handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		telemetry.Error("lambda.bootstrap_failed", map[string]any{"error": initErr.Error()})
		return bootstrapFailure(initErr), nil
	}
	if ginLambda == nil {
		return jsonResponse(http.StatusInternalServerError, "internal_error", "router not initialized"), nil
	}
	return ginLambda.ProxyWithContext(ctx, req)
}

func bootstrapFailure(err error) events.APIGatewayV2HTTPResponse {
	if errors.Is(err, config.ErrConfiguration) {
		return jsonResponse(http.StatusServiceUnavailable, "misconfigured", err.Error())
	}
	return jsonResponse(http.StatusInternalServerError, "internal_error", "bootstrap failed")
}

func jsonResponse(status int, code, message string) events.APIGatewayV2HTTPResponse {
	body, _ := json.Marshal(respond.ErrorResponse{Error: respond.ErrorBody{Code: code, Message: message}})
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

func main() {
	lambda.Start(handler)
}
